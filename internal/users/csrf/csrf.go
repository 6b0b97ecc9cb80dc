// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package csrf binds anti-forgery tokens to sessions.
//
// The token is derived once when the session is created and stored with it, so
// it stays valid across tabs until the session is replaced. Clients read it
// from GET /api/v1/auth/session and echo it in every state-changing request.
package csrf

import (
	"encoding/hex"

	"github.com/taibuivan/quill/internal/platform/sec"
	"github.com/taibuivan/quill/internal/users/session"
)

// FieldToken is the JSON field carrying the submitted token.
const FieldToken = "csrf_token"

// Issue returns the session token as exposed to clients.
func Issue(current *session.Session) string {
	return hex.EncodeToString(current.CSRFToken)
}

// Validate compares a submitted hex token with the session token in constant time.
// Undecodable input is replaced by a sentinel so the comparison always runs.
func Validate(submitted string, sessionToken []byte) bool {
	return sec.Equal(sec.DecodeHex(submitted), sessionToken)
}
