// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"net/http"

	"github.com/taibuivan/quill/internal/platform/apperr"
	"github.com/taibuivan/quill/internal/platform/ctxkey"
	"github.com/taibuivan/quill/internal/platform/respond"
)

const (
	messageLoginRequired = "Authentication required"
	messageAdminRequired = "Administrator privileges required"
)

// # Identity Context

// WithIdentity returns a new context carrying identity.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, ctxkey.KeyIdentity, identity)
}

// IdentityFrom returns the identity resolved by [Sessions], or nil outside it.
func IdentityFrom(ctx context.Context) *Identity {
	identity, _ := ctx.Value(ctxkey.KeyIdentity).(*Identity)
	return identity
}

// # Capability Gates

// Level is one of the ordered access layers. Each layer implies the ones below it.
type Level int

const (
	// LevelLogin requires an authenticated session.
	LevelLogin Level = iota + 1
	// LevelVerified additionally requires a verified email address.
	LevelVerified
	// LevelAdmin additionally requires the admin flag.
	LevelAdmin
)

/*
Check evaluates the gates up to level in order and returns the first failure.
It never changes state.

Returns:
  - nil when every gate passes
  - 401 UNAUTHORIZED, 403 VERIFICATION_REQUIRED or 403 FORBIDDEN
*/
func Check(identity *Identity, level Level) error {
	if identity.IsAnonymous() {
		return apperr.Unauthorized(messageLoginRequired)
	}
	if level >= LevelVerified && !identity.User.IsVerified {
		return apperr.VerificationRequired()
	}
	if level >= LevelAdmin && !identity.User.IsAdmin {
		return apperr.Forbidden(messageAdminRequired)
	}
	return nil
}

// Require returns middleware that rejects requests failing [Check] at level.
func Require(level Level) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if err := Check(IdentityFrom(request.Context()), level); err != nil {
				respond.Error(writer, request, err)
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}

// RequireLogin rejects anonymous callers.
func RequireLogin(next http.Handler) http.Handler { return Require(LevelLogin)(next) }

// RequireVerified rejects anonymous and unverified callers.
func RequireVerified(next http.Handler) http.Handler { return Require(LevelVerified)(next) }

// RequireAdmin rejects everyone but verified administrators.
func RequireAdmin(next http.Handler) http.Handler { return Require(LevelAdmin)(next) }
