// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError], plus the account field
// rules (username, email, password) shared by registration and admin flows.
//
// # Architecture
//
// This package is used in the service layer, never in storage. It ensures that
// business logic only operates on semantically valid data.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/taibuivan/quill/internal/platform/apperr"
)

// # Account Field Rules

const (
	// UsernameMaxLength bounds usernames in characters.
	UsernameMaxLength = 255
	// EmailMaxLength bounds email addresses in characters.
	EmailMaxLength = 255
	// PasswordMinLength is the shortest accepted password.
	PasswordMinLength = 8
	// PasswordMaxLength is the longest accepted password.
	PasswordMaxLength = 255
)

var (
	usernameRegex = regexp.MustCompile(`^[a-z0-9_]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9.][a-zA-Z0-9]+)+@[a-zA-Z]+\.[a-zA-Z]+$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// ValidUsername reports whether username uses only a-z, 0-9 and underscores.
func ValidUsername(username string) bool {
	return utf8.RuneCountInString(username) <= UsernameMaxLength && usernameRegex.MatchString(username)
}

// ValidEmail reports whether email matches the accepted address shape.
func ValidEmail(email string) bool {
	return utf8.RuneCountInString(email) <= EmailMaxLength && emailRegex.MatchString(email)
}

// ValidPassword reports whether password has an accepted length and no whitespace.
func ValidPassword(password string) bool {
	length := utf8.RuneCountInString(password)
	if length < PasswordMinLength || length > PasswordMaxLength {
		return false
	}
	return strings.IndexFunc(password, unicode.IsSpace) == -1
}

// # Validator

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// Username fails unless the value satisfies [ValidUsername].
func (v *Validator) Username(field, value string) *Validator {
	if !ValidUsername(value) {
		v.add(field, "Invalid username. Username must only contain lowercase letters a-z, numbers and underscores.")
	}
	return v
}

// Email fails unless the value satisfies [ValidEmail].
func (v *Validator) Email(field, value string) *Validator {
	if !ValidEmail(value) {
		v.add(field, "Invalid email address.")
	}
	return v
}

// Password fails unless the value satisfies [ValidPassword].
func (v *Validator) Password(field, value string) *Validator {
	if !ValidPassword(value) {
		v.add(field, fmt.Sprintf(
			"Invalid password. Password must be at least %d characters long and it cannot contain any whitespace characters (spaces, tabs, etc...)",
			PasswordMinLength,
		))
	}
	return v
}

// Matches fails if confirmation differs from value.
func (v *Validator) Matches(field, value, confirmation string) *Validator {
	if value != confirmation {
		v.add(field, "The passwords don't match.")
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method. Call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}
