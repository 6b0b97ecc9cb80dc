// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/quill/internal/platform/sec"
)

/*
TestDecodeHex verifies the sentinel substitution for undecodable input.
*/
func TestDecodeHex(t *testing.T) {
	assert.Equal(t, []byte{0xde, 0xad}, sec.DecodeHex("dead"))
	assert.Equal(t, sec.Sentinel, sec.DecodeHex("zz"))
	assert.Equal(t, sec.Sentinel, sec.DecodeHex("abc"))
	assert.Empty(t, sec.DecodeHex(""))
}

/*
TestEqual covers matching, mismatching and length-mismatched secrets.
*/
func TestEqual(t *testing.T) {
	assert.True(t, sec.Equal([]byte("token"), []byte("token")))
	assert.False(t, sec.Equal([]byte("token"), []byte("tokem")))
	assert.False(t, sec.Equal([]byte("token"), []byte("tok")))
	assert.False(t, sec.Equal(sec.Sentinel, []byte{0x00, 0x01}))
}

/*
TestRandomBytes checks length and that two draws differ.
*/
func TestRandomBytes(t *testing.T) {
	first, err := sec.RandomBytes(32)
	require.NoError(t, err)
	second, err := sec.RandomBytes(32)
	require.NoError(t, err)

	assert.Len(t, first, 32)
	assert.NotEqual(t, first, second)
}

/*
TestDeriveCSRFToken checks determinism and the dependence on both inputs.
*/
func TestDeriveCSRFToken(t *testing.T) {
	sessionID := []byte("0123456789abcdef0123456789abcdef")
	secret := []byte("server-secret")

	token := sec.DeriveCSRFToken(sessionID, secret, sec.MinIterations)
	assert.Len(t, token, 32)

	// Lower work factors are raised to the floor, so the result is identical.
	assert.Equal(t, token, sec.DeriveCSRFToken(sessionID, secret, 1))
	assert.NotEqual(t, token, sec.DeriveCSRFToken(sessionID, []byte("other-secret"), sec.MinIterations))
}

/*
TestPasswordHash_RoundTrip verifies hashing, checking and the stored layout.
*/
func TestPasswordHash_RoundTrip(t *testing.T) {
	hash, err := sec.HashPassword("correct horse")
	require.NoError(t, err)

	parts := strings.Split(hash, "$")
	require.Len(t, parts, 3)
	assert.Equal(t, "pbkdf2:sha256:310000", parts[0])
	assert.Len(t, parts[1], 32)
	assert.Len(t, parts[2], 64)

	assert.True(t, sec.CheckPasswordHash("correct horse", hash))
	assert.False(t, sec.CheckPasswordHash("correct horsf", hash))

	other, err := sec.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salts must differ")
}

/*
TestCheckPasswordHash_KnownVector checks compatibility against the RFC 7914
PBKDF2-HMAC-SHA256 vector (P="passwd", S="salt", c=1).
*/
func TestCheckPasswordHash_KnownVector(t *testing.T) {
	digest := "55ac046e56e3089fec1691c22544b605f94185216dde0465e68b9d57c20dacbc"
	_, err := hex.DecodeString(digest)
	require.NoError(t, err)

	assert.True(t, sec.CheckPasswordHash("passwd", "pbkdf2:sha256:1$salt$"+digest))
	assert.False(t, sec.CheckPasswordHash("passwe", "pbkdf2:sha256:1$salt$"+digest))
}

/*
TestCheckPasswordHash_Malformed ensures unsupported layouts never match.
*/
func TestCheckPasswordHash_Malformed(t *testing.T) {
	hashes := []string{
		"",
		"plain",
		"pbkdf2:sha256:1$salt",
		"pbkdf2:sha1:1$salt$00",
		"scrypt:32768:8:1$salt$00",
		"pbkdf2:sha256:x$salt$00",
		"pbkdf2:sha256:1$salt$zz",
		"$2a$10$abcdefghijklmnopqrstuv",
	}

	for _, hash := range hashes {
		assert.False(t, sec.CheckPasswordHash("password", hash), hash)
	}
}

/*
TestDummyPasswordHash makes sure the dummy hash is well-formed and stable.
*/
func TestDummyPasswordHash(t *testing.T) {
	dummy := sec.DummyPasswordHash()
	assert.Equal(t, dummy, sec.DummyPasswordHash())
	assert.True(t, strings.HasPrefix(dummy, "pbkdf2:sha256:310000$"))
	assert.False(t, sec.CheckPasswordHash("", dummy))
}

/*
TestUniqueBytes retries taken candidates and gives up after the bound.
*/
func TestUniqueBytes(t *testing.T) {
	sequence := [][]byte{{1}, {2}, {3}}
	draws := 0
	random := func(n int) ([]byte, error) {
		candidate := sequence[draws%len(sequence)]
		draws++
		return candidate, nil
	}

	// 1. First two candidates are taken
	taken := map[byte]bool{1: true, 2: true}
	candidate, err := sec.UniqueBytes(random, 1, 5, func(c []byte) (bool, error) { return taken[c[0]], nil })
	require.NoError(t, err)
	assert.Equal(t, []byte{3}, candidate)
	assert.Equal(t, 3, draws)

	// 2. Everything is taken
	_, err = sec.UniqueBytes(random, 1, 5, func([]byte) (bool, error) { return true, nil })
	assert.ErrorIs(t, err, sec.ErrIdentifierExhausted)
}
