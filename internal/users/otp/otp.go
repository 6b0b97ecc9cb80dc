// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package otp manages one-time tokens.

A token is a random value scoped to one user and one purpose, with an expiry.
Every flow that checks a token follows the same sequence whether or not a row
exists: when none is stored, a [Placeholder] with a value no client can submit
and an expiry in the past takes its place. Callers therefore always decode,
compare and check expiry, and the response time does not reveal whether a
token was issued.

Consumption rule: after a check the row is deleted if the whole check succeeded
or if the token has expired. A wrong but live token stays, so the user may retry.
*/
package otp

import (
	"encoding/hex"
	"errors"

	"github.com/taibuivan/quill/pkg/timestamp"
)

// Type scopes a token to one purpose. The values are stored in the type column.
type Type string

const (
	// EmailVerification confirms ownership of the registered address.
	EmailVerification Type = "email_token"
	// AccountLock releases an account locked after too many failed logins.
	AccountLock Type = "account_lock_token"
	// PasswordReset authorizes an anonymous password change.
	PasswordReset Type = "password_reset"
)

// ErrUnknownType is returned when a token is requested for an unsupported purpose.
var ErrUnknownType = errors.New("otp: unknown token type")

// Valid reports whether t is one of the supported purposes.
func (t Type) Valid() bool {
	switch t {
	case EmailVerification, AccountLock, PasswordReset:
		return true
	}
	return false
}

// placeholderValue is shorter than any generated token, so it can never match one.
var placeholderValue = []byte{0x00, 0x01}

// # Domain Entities

// OTP is one row of the otps table.
type OTP struct {
	ID      int64
	Value   []byte
	Expires timestamp.Timestamp
	Type    Type
	UserID  int64
}

// Placeholder stands in for a missing token. It is never stored and never deleted.
func Placeholder(userID int64, tokenType Type) *OTP {
	return &OTP{
		ID:      0,
		Value:   append([]byte(nil), placeholderValue...),
		Expires: timestamp.Now(-1),
		Type:    tokenType,
		UserID:  userID,
	}
}

// IsPlaceholder reports whether the token was substituted for a missing row.
func (token *OTP) IsPlaceholder() bool {
	return token.ID == 0
}

// Expired reports whether the token has passed its expiry.
func (token *OTP) Expired() bool {
	return token.Expires.Expired()
}

// ValueHex is the value as sent to the user.
func (token *OTP) ValueHex() string {
	return hex.EncodeToString(token.Value)
}
