// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// SessionTable represents the 'sessions' table
type SessionTable struct {
	Table     string
	SessionID string
	CSRFToken string
	Expires   string
	UserID    string
}

// Session is the schema definition for sessions
var Session = SessionTable{
	Table:     "sessions",
	SessionID: "session_id",
	CSRFToken: "csrf_token",
	Expires:   "expires",
	UserID:    "user_id",
}

// Columns returns all standard column names
func (t SessionTable) Columns() []string {
	return []string{t.SessionID, t.CSRFToken, t.Expires, t.UserID}
}
