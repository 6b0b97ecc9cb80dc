// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/subtle"
	"encoding/hex"
)

// Sentinel replaces submitted hex that fails to decode. It never equals a
// generated token because generated tokens are at least 32 bytes long.
var Sentinel = []byte{0x00}

// DecodeHex decodes submitted hex, substituting [Sentinel] on any decode failure.
// It never returns an error so callers keep one code path for good and bad input.
func DecodeHex(submitted string) []byte {
	decoded, err := hex.DecodeString(submitted)
	if err != nil {
		return append([]byte(nil), Sentinel...)
	}
	return decoded
}

// Equal compares two secrets in constant time with respect to their contents.
func Equal(left, right []byte) bool {
	return subtle.ConstantTimeCompare(left, right) == 1
}
