// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

// # Password Hashing
//
// Hashes use the `pbkdf2:sha256:<iterations>$<salt>$<hex digest>` layout so that
// accounts created by earlier deployments keep working.

const (
	passwordMethod     = "pbkdf2"
	passwordDigest     = "sha256"
	passwordSaltLength = 32
	saltAlphabet       = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// HashPassword hashes a plain-text password with a fresh salt.
func HashPassword(plainTextPassword string) (string, error) {
	salt, err := generateSalt(passwordSaltLength)
	if err != nil {
		return "", fmt.Errorf("sec_password_salt_failed: %w", err)
	}

	digest := pbkdf2.Key([]byte(plainTextPassword), []byte(salt), MinIterations, derivedKeyLength, sha256.New)
	method := passwordMethod + ":" + passwordDigest + ":" + strconv.Itoa(MinIterations)

	return method + "$" + salt + "$" + hex.EncodeToString(digest), nil
}

// CheckPasswordHash compares a plain-text password with a stored hash.
// Malformed or unsupported hashes never match.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	parts := strings.SplitN(existingHash, "$", 3)
	if len(parts) != 3 {
		return false
	}

	method := strings.Split(parts[0], ":")
	if len(method) != 3 || method[0] != passwordMethod || method[1] != passwordDigest {
		return false
	}

	iterations, err := strconv.Atoi(method[2])
	if err != nil || iterations <= 0 {
		return false
	}

	expected, err := hex.DecodeString(parts[2])
	if err != nil {
		return false
	}

	actual := pbkdf2.Key([]byte(plainTextPassword), []byte(parts[1]), iterations, len(expected), sha256.New)
	return Equal(actual, expected)
}

var dummyHash = sync.OnceValue(func() string {
	hash, err := HashPassword("quill-dummy-password")
	if err != nil {
		panic(fmt.Sprintf("sec: dummy password hash: %v", err))
	}
	return hash
})

// DummyPasswordHash returns a valid hash that no user owns. Login checks against
// it when the username is unknown so both paths cost one full derivation.
func DummyPasswordHash() string {
	return dummyHash()
}

func generateSalt(length int) (string, error) {
	alphabetSize := big.NewInt(int64(len(saltAlphabet)))

	var builder strings.Builder
	builder.Grow(length)

	for range length {
		index, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		builder.WriteByte(saltAlphabet[index.Int64()])
	}

	return builder.String(), nil
}
