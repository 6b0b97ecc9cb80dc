// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session manages server-side sessions.

The client only carries an opaque identifier (hex in the SESSIONID cookie).
Everything else, the CSRF token, the expiry and the owning user, lives in the
sessions table, so a session can be revoked by deleting its row.

# Lifecycle

  - Created anonymous (user id 0) on first contact or after logout.
  - Replaced by a new authenticated session on login. User ids are never
    rewritten in place.
  - Superseded by a fresh anonymous session when the presented id is unknown,
    malformed or expired. The stale row is left for the janitor.
*/
package session

import (
	"encoding/hex"

	"github.com/taibuivan/quill/pkg/timestamp"
)

// AnonymousUserID marks a session that belongs to nobody.
const AnonymousUserID int64 = 0

// # Domain Entities

// Session is one row of the sessions table.
type Session struct {
	ID        []byte
	CSRFToken []byte
	Expires   timestamp.Timestamp
	UserID    int64
}

// IsAnonymous reports whether no user is bound to the session.
func (session *Session) IsAnonymous() bool {
	return session.UserID == AnonymousUserID
}

// Expired reports whether the current time is past the session expiry.
func (session *Session) Expired() bool {
	return session.Expires.Expired()
}

// IDHex is the identifier as carried by the cookie.
func (session *Session) IDHex() string {
	return hex.EncodeToString(session.ID)
}
