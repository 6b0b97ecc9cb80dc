// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// OTPTable represents the 'otps' table
type OTPTable struct {
	Table   string
	ID      string
	Value   string
	Expires string
	Type    string
	UserID  string
}

// OTP is the schema definition for otps
var OTP = OTPTable{
	Table:   "otps",
	ID:      "id",
	Value:   "value",
	Expires: "expires",
	Type:    "type",
	UserID:  "user_id",
}

// Columns returns all standard column names
func (t OTPTable) Columns() []string {
	return []string{t.ID, t.Value, t.Expires, t.Type, t.UserID}
}
