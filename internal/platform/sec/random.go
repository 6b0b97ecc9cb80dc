// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package sec holds the cryptographic primitives used by the session and
authentication layers.

Contents:

  - Randomness: opaque identifiers and one-time token values.
  - Comparison: hex decoding with a guaranteed-mismatch sentinel and
    constant-time equality.
  - Derivation: PBKDF2-HMAC-SHA256 for CSRF tokens and password hashes.

Nothing in this package touches storage or HTTP.
*/
package sec

import (
	"crypto/rand"
	"errors"
	"fmt"
)

// ErrIdentifierExhausted is returned when every drawn candidate was already taken.
var ErrIdentifierExhausted = errors.New("sec: no free identifier after retries")

// RandomSource produces n cryptographically random bytes.
type RandomSource func(n int) ([]byte, error)

// RandomBytes reads n bytes from the operating system CSPRNG.
func RandomBytes(n int) ([]byte, error) {
	buffer := make([]byte, n)
	if _, err := rand.Read(buffer); err != nil {
		return nil, fmt.Errorf("sec_random_read_failed: %w", err)
	}
	return buffer, nil
}

/*
UniqueBytes draws n random bytes until taken reports the candidate as free.

Parameters:
  - random: source of randomness, usually [RandomBytes]
  - n: candidate length
  - attempts: upper bound on draws
  - taken: storage lookup for an existing candidate

Returns:
  - []byte: a candidate that was free at lookup time
  - error: [ErrIdentifierExhausted], or a random/lookup failure
*/
func UniqueBytes(random RandomSource, n, attempts int, taken func(candidate []byte) (bool, error)) ([]byte, error) {
	for range attempts {
		candidate, err := random(n)
		if err != nil {
			return nil, err
		}

		exists, err := taken(candidate)
		if err != nil {
			return nil, err
		}
		if !exists {
			return candidate, nil
		}
	}
	return nil, ErrIdentifierExhausted
}
