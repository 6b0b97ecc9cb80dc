// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	stdctx "context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taibuivan/quill/internal/platform/apperr"
	"github.com/taibuivan/quill/internal/platform/ctxutil"
	"github.com/taibuivan/quill/internal/platform/database/schema"
	"github.com/taibuivan/quill/internal/platform/dberr"
	"github.com/taibuivan/quill/internal/platform/sec"
	"github.com/taibuivan/quill/internal/users/csrf"
	"github.com/taibuivan/quill/internal/users/otp"
	"github.com/taibuivan/quill/internal/users/session"
)

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	CSRFToken string
	Username  string
	Password  string
}

/*
ValidateLogin checks credentials without changing any state.

An invalid CSRF token fails fast. An unknown username still pays for one hash
comparison against a dummy hash. Locked accounts fail even with the right
password. Every failure is the same AUTHENTICATION_FAILED error.

Returns:
  - *User: the authenticated account
  - err: AuthenticationFailed or storage errors
*/
func (service *Service) ValidateLogin(context stdctx.Context, current *session.Session, input LoginInput) (*User, error) {
	if !csrf.Validate(input.CSRFToken, current.CSRFToken) {
		return nil, apperr.AuthenticationFailed()
	}

	user, err := service.users.FindByUsername(context, input.Username)
	if errors.Is(err, dberr.ErrNotFound) {
		sec.CheckPasswordHash(input.Password, sec.DummyPasswordHash())
		return nil, apperr.AuthenticationFailed()
	}
	if err != nil {
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) || user.IsLocked {
		return nil, apperr.AuthenticationFailed()
	}

	return user, nil
}

/*
RecordAttempt counts one failed login against username.

Inside one transaction: an unknown user is ignored. A locked user whose lock
token is still live is ignored. A locked user whose lock has elapsed (or whose
lock token is gone) is unlocked and the counter starts over. The counter is
then incremented and the account locked once it exceeds the policy maximum.

Returns:
  - *User: the updated account, nil when nothing was recorded
  - bool: true when this attempt locked the account
  - err: storage errors
*/
func (service *Service) RecordAttempt(context stdctx.Context, username string) (*User, bool, error) {
	var (
		recorded *User
		maxed    bool
	)

	err := service.db.Atomic(context, func(context stdctx.Context) error {
		user, err := service.users.FindByUsernameForUpdate(context, username)
		if errors.Is(err, dberr.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("auth_service_attempt_lookup_failed: %w", err)
		}

		if user.IsLocked {
			lock, err := service.tokens.Lookup(context, user.ID, otp.AccountLock)
			if err != nil {
				return err
			}
			if !lock.Expired() {
				return nil
			}

			// The lock has elapsed: start over.
			if err := service.tokens.Consume(context, lock, false); err != nil {
				return err
			}
			user.IsLocked = false
			user.LoginAttempts = 0
		}

		user.LoginAttempts++
		if user.LoginAttempts > service.policy.MaxLoginAttempts {
			user.IsLocked = true
			maxed = true
		}

		_, err = service.users.Update(user.ID).
			Set(schema.User.LoginAttempts, user.LoginAttempts).
			Set(schema.User.IsLocked, user.IsLocked).
			Commit(context)
		if err != nil {
			return fmt.Errorf("auth_service_attempt_failed: %w", err)
		}

		recorded = user
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return recorded, maxed, nil
}

/*
Login authenticates the caller and replaces the anonymous session with an
authenticated one.

Every rejected login, including one with a bad CSRF token, is recorded as an
attempt against the submitted username. When that attempt locks the
account an unlock token is issued and emailed. The response is the same
generic error either way.

Returns:
  - *session.Session: the new authenticated session
  - *User: the account
  - err: AuthenticationFailed or storage errors
*/
func (service *Service) Login(context stdctx.Context, current *session.Session, input LoginInput) (*session.Session, *User, error) {
	user, err := service.ValidateLogin(context, current, input)
	if err != nil {
		if apperr.As(err) == nil {
			return nil, nil, err
		}
		if recordErr := service.failLogin(context, input.Username); recordErr != nil {
			return nil, nil, recordErr
		}
		return nil, nil, err
	}

	var promoted *session.Session
	err = service.db.Atomic(context, func(context stdctx.Context) error {
		var err error
		promoted, err = service.sessions.Promote(context, current.ID, user.ID)
		if err != nil {
			return fmt.Errorf("auth_service_promote_failed: %w", err)
		}

		_, err = service.users.Update(user.ID).Set(schema.User.LoginAttempts, 0).Commit(context)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	user.LoginAttempts = 0
	ctxutil.GetLogger(context).Info("login_succeeded", slog.Int64("user_id", user.ID))
	return promoted, user, nil
}

// failLogin records the attempt and issues the unlock token when it locked the account.
func (service *Service) failLogin(context stdctx.Context, username string) error {
	var (
		user  *User
		token *otp.OTP
	)

	err := service.db.Atomic(context, func(context stdctx.Context) error {
		recorded, maxed, err := service.RecordAttempt(context, username)
		if err != nil || !maxed {
			return err
		}

		user = recorded
		token, err = service.tokens.Replace(context, user.ID, otp.AccountLock, service.policy.AccountLockDuration)
		return err
	})
	if err != nil {
		return err
	}

	if token != nil {
		ctxutil.GetLogger(context).Warn("account_locked",
			slog.Int64("user_id", user.ID),
			slog.Int("attempts", user.LoginAttempts),
		)
		service.notifier.AccountLocked(context, user, token)
	}
	return nil
}

/*
Logout ends the caller's session and opens a fresh anonymous one.

Returns:
  - *session.Session: the new anonymous session
  - err: TokenInvalid or storage errors
*/
func (service *Service) Logout(context stdctx.Context, current *session.Session, csrfToken string) (*session.Session, error) {
	if !csrf.Validate(csrfToken, current.CSRFToken) {
		return nil, apperr.TokenInvalid(messageCSRFInvalid)
	}

	var fresh *session.Session
	err := service.db.Atomic(context, func(context stdctx.Context) error {
		if err := service.sessions.End(context, current.ID); err != nil {
			return err
		}

		var err error
		fresh, err = service.sessions.Create(context, session.AnonymousUserID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return fresh, nil
}
