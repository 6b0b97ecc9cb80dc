// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/quill/internal/platform/apperr"
	"github.com/taibuivan/quill/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "content", "Hello", false},
		{"empty_string", "content", "", true},
		{"whitespace_only", "content", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidUsername checks the lowercase/digit/underscore rule and length bound.
*/
func TestValidUsername(t *testing.T) {
	tests := []struct {
		username string
		isValid  bool
	}{
		{"alice", true},
		{"user_01", true},
		{"_", true},
		{"", false},
		{"Alice", false},
		{"al ice", false},
		{"al-ice", false},
		{"ålice", false},
		{strings.Repeat("a", 255), true},
		{strings.Repeat("a", 256), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.isValid, validate.ValidUsername(tt.username), tt.username)
	}
}

/*
TestValidEmail checks the accepted address shape.
*/
func TestValidEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		isValid bool
	}{
		{"valid_email", "test@example.com", true},
		{"dotted_local", "first.last@example.org", true},
		{"short_local", "ab@example.com", false},
		{"invalid_format", "invalid-email", false},
		{"missing_domain", "test@", false},
		{"subdomain", "test@mail.example.com", false},
		{"empty", "", false},
		{"too_long", strings.Repeat("a", 250) + "@b.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isValid, validate.ValidEmail(tt.email))
		})
	}
}

/*
TestValidPassword checks length bounds and the whitespace ban.
*/
func TestValidPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		isValid  bool
	}{
		{"valid", "hunter22!", true},
		{"exact_min", "12345678", true},
		{"too_short", "1234567", false},
		{"space", "hunter 22!", false},
		{"tab", "hunter\t22!", false},
		{"unicode_space", "hunter\u00a022!", false},
		{"exact_max", strings.Repeat("x", 255), true},
		{"too_long", strings.Repeat("x", 256), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isValid, validate.ValidPassword(tt.password))
		})
	}
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Username("username", "writer").
		Email("email", "writer@quill.com").
		Password("password", "long-enough").
		Matches("password_confirm", "long-enough", "long-enough").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Username("username", "Bad Name").      // Fails
		Email("email", "not-an-email").        // Fails
		Password("password", "short").         // Fails
		Matches("password_confirm", "a", "b"). // Fails
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	// Should accumulate all 4 errors
	assert.Len(t, ae.Details, 4)
}
