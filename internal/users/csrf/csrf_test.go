// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package csrf_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/quill/internal/platform/sec"
	"github.com/taibuivan/quill/internal/users/csrf"
	"github.com/taibuivan/quill/internal/users/session"
)

/*
TestValidate accepts the issued token only.
*/
func TestValidate(t *testing.T) {
	token := sec.DeriveCSRFToken([]byte("session-id"), []byte("secret"), sec.MinIterations)
	current := &session.Session{CSRFToken: token}
	issued := csrf.Issue(current)

	tests := []struct {
		name      string
		submitted string
		valid     bool
	}{
		{"issued", issued, true},
		{"uppercase_hex", strings.ToUpper(issued), true},
		{"missing", "", false},
		{"not_hex", "zz", false},
		{"odd_length", issued[:len(issued)-1], false},
		{"truncated", issued[:len(issued)-2], false},
		{"other_token", strings.Repeat("00", len(token)), false},
		{"sentinel", "00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, csrf.Validate(tt.submitted, current.CSRFToken))
		})
	}
}
