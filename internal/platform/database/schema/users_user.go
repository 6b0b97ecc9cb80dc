// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns of the Quill database.
//
// Repositories refer to these descriptors instead of string literals so a
// renamed column is a one-line change.
package schema

// UserTable represents the 'users' table
type UserTable struct {
	Table         string
	ID            string
	Username      string
	Email         string
	Password      string
	LoginAttempts string
	IsLocked      string
	IsVerified    string
	IsAdmin       string
}

// User is the schema definition for users
var User = UserTable{
	Table:         "users",
	ID:            "id",
	Username:      "username",
	Email:         "email",
	Password:      "password",
	LoginAttempts: "login_attempts",
	IsLocked:      "is_locked",
	IsVerified:    "is_verified",
	IsAdmin:       "is_admin",
}

// Columns returns all standard column names
func (t UserTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Email, t.Password, t.LoginAttempts, t.IsLocked, t.IsVerified, t.IsAdmin,
	}
}
