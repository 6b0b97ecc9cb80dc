// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// MinIterations is the lowest PBKDF2 work factor accepted anywhere in the system.
	MinIterations = 310_000

	// derivedKeyLength matches the SHA-256 digest size.
	derivedKeyLength = sha256.Size
)

/*
DeriveCSRFToken computes PBKDF2-HMAC-SHA256(sessionID, secret).

The session id is the PBKDF2 password and the server secret is the salt, so
tokens stay identical to the ones stored by earlier deployments.

Parameters:
  - sessionID: raw session identifier bytes
  - secret: server key
  - iterations: work factor, raised to [MinIterations] when lower

Returns:
  - []byte: 32 derived bytes
*/
func DeriveCSRFToken(sessionID, secret []byte, iterations int) []byte {
	if iterations < MinIterations {
		iterations = MinIterations
	}
	return pbkdf2.Key(sessionID, secret, iterations, derivedKeyLength, sha256.New)
}
