// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/taibuivan/quill/internal/platform/apperr"
	"github.com/taibuivan/quill/internal/platform/constants"
	"github.com/taibuivan/quill/internal/platform/ctxutil"
	"github.com/taibuivan/quill/internal/platform/dberr"
	"github.com/taibuivan/quill/internal/platform/respond"
	"github.com/taibuivan/quill/internal/users/session"
)

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	Secure bool
}

/*
Sessions resolves the session cookie into an [Identity] for every request.

A missing, unknown or expired cookie yields a new anonymous session and the
cookie is rewritten. A session whose account no longer exists is ended and
replaced by an anonymous one. The request logger gains a user_id attribute.
*/
func Sessions(manager *session.Manager, users UserRepository, cookie CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()

			var raw string
			if existing, err := request.Cookie(constants.SessionCookieName); err == nil {
				raw = existing.Value
			}

			current, created, err := manager.Load(ctx, raw)
			if err != nil {
				respond.Error(writer, request, apperr.Internal(err))
				return
			}

			identity := &Identity{Session: current}
			if !current.IsAnonymous() {
				user, err := users.Find(ctx, current.UserID)
				switch {
				case err == nil:
					identity.User = user
				case errors.Is(err, dberr.ErrNotFound):
					if err := manager.End(ctx, current.ID); err != nil {
						respond.Error(writer, request, apperr.Internal(err))
						return
					}
					if identity.Session, err = manager.Create(ctx, session.AnonymousUserID); err != nil {
						respond.Error(writer, request, apperr.Internal(err))
						return
					}
					created = true
				default:
					respond.Error(writer, request, apperr.Internal(err))
					return
				}
			}

			if created {
				SetSessionCookie(writer, identity.Session, cookie)
			}

			logger := ctxutil.GetLogger(ctx)
			if identity.User != nil {
				logger = logger.With(slog.Int64("user_id", identity.User.ID))
			}

			ctx = ctxutil.WithLogger(WithIdentity(ctx, identity), logger)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// SetSessionCookie sends the hex session id to the client.
func SetSessionCookie(writer http.ResponseWriter, current *session.Session, cookie CookieConfig) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    current.IDHex(),
		Path:     constants.SessionCookiePath,
		Expires:  current.Expires.Time(),
		HttpOnly: true,
		Secure:   cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
