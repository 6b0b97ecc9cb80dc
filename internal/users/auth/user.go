// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements accounts and the authentication state machine.

It owns the user records and orchestrates the session and one-time token
managers into the account flows: registration, login with attempt throttling,
logout, email verification, account unlock and password reset.

# Architecture

  - Service: account flows. Every read-modify-write runs in one transaction.
  - Guard: ordered capability gates (login, verified, admin) over an [Identity].
  - Sessions: middleware that resolves the session cookie into an [Identity].
  - Notifier: renders account emails and hands them to the mail dispatcher.

Failures that could reveal whether an account exists share one generic message.
*/
package auth

import (
	"github.com/taibuivan/quill/internal/users/session"
)

// # Domain Entities

// User represents a registered account.
type User struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	PasswordHash  string `json:"-"` // Explicitly omitted from JSON for security.
	LoginAttempts int    `json:"-"`
	IsLocked      bool   `json:"is_locked"`
	IsVerified    bool   `json:"is_verified"`
	IsAdmin       bool   `json:"is_admin"`
}

// Identity is the resolved caller of one request.
//
// Session is never nil. User is nil for anonymous sessions.
type Identity struct {
	Session *session.Session
	User    *User
}

// IsAnonymous reports whether no account is bound to the request.
func (identity *Identity) IsAnonymous() bool {
	return identity == nil || identity.User == nil || identity.Session.IsAnonymous()
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldCSRFToken          = "csrf_token"
	FieldUsername           = "username"
	FieldEmail              = "email"
	FieldPassword           = "password"
	FieldPasswordConfirm    = "password_confirm"
	FieldNewPassword        = "new_password"
	FieldNewPasswordConfirm = "new_password_confirm"
	FieldVerificationToken  = "verification_token"
	FieldUnlockToken        = "unlock_token"
	FieldOTP                = "otp"
)

// # Client Messages

const (
	messageVerificationFailed = "Verification failed."
	messageUnlockFailed       = "Account unlocking failed. You might have wrong username, wrong token or your account is not locked anymore."
	messageResetFailed        = "Failed to reset the password"
	messageCSRFInvalid        = "Invalid CSRF token."
	messageUsernameTaken      = "Username is already taken."
	messageEmailTaken         = "Email is already registered."
)
