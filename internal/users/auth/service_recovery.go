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
	"github.com/taibuivan/quill/internal/platform/validate"
	"github.com/taibuivan/quill/internal/users/csrf"
	"github.com/taibuivan/quill/internal/users/otp"
	"github.com/taibuivan/quill/internal/users/session"
)

// # Account Unlock

// UnlockInput identifies the locked account and carries the emailed token.
type UnlockInput struct {
	CSRFToken string
	Username  string
	Token     string
}

/*
Unlock releases a locked account.

Success requires an existing user, a valid CSRF token and either a matching
live token or an expired stored one. On success the lock and the attempt
counter are cleared. The stored token is deleted on success or expiry.

Returns:
  - err: TokenInvalid with one message for every failure, or storage errors
*/
func (service *Service) Unlock(context stdctx.Context, current *session.Session, input UnlockInput) error {
	unlocked := false
	var userID int64

	err := service.db.Atomic(context, func(context stdctx.Context) error {
		user, err := service.users.FindByUsernameForUpdate(context, input.Username)
		if err != nil && !errors.Is(err, dberr.ErrNotFound) {
			return fmt.Errorf("auth_service_unlock_lookup_failed: %w", err)
		}

		// An unknown user looks up id 0 so both paths run the same queries.
		if user != nil {
			userID = user.ID
		}
		stored, err := service.tokens.Lookup(context, userID, otp.AccountLock)
		if err != nil {
			return err
		}

		csrfValid := csrf.Validate(input.CSRFToken, current.CSRFToken)
		tokenValid := otp.Validate(input.Token, stored)
		lapsed := !stored.IsPlaceholder() && stored.Expired()
		unlocked = user != nil && csrfValid && (tokenValid || lapsed)

		if unlocked {
			_, err := service.users.Update(user.ID).
				Set(schema.User.IsLocked, false).
				Set(schema.User.LoginAttempts, 0).
				Commit(context)
			if err != nil {
				return fmt.Errorf("auth_service_unlock_failed: %w", err)
			}
		}

		return service.tokens.Consume(context, stored, unlocked)
	})
	if err != nil {
		return err
	}

	logger := ctxutil.GetLogger(context)
	if !unlocked {
		logger.Warn("account_unlock_failed", slog.String("username", input.Username))
		return apperr.TokenInvalid(messageUnlockFailed)
	}

	logger.Info("account_unlocked", slog.Int64("user_id", userID))
	return nil
}

// # Password Reset

// ResetRequestInput identifies the account asking for a reset token.
type ResetRequestInput struct {
	CSRFToken string
	Username  string
	Email     string
}

/*
RequestReset emails a password reset token.

A token is issued only when the username and email belong to the same
verified, unlocked account. The answer is the same whether or not one was sent.

Returns:
  - err: Forbidden for authenticated callers, TokenInvalid or storage errors
*/
func (service *Service) RequestReset(context stdctx.Context, current *session.Session, input ResetRequestInput) error {
	if !current.IsAnonymous() {
		return apperr.Forbidden("Log out to reset a forgotten password.")
	}
	if !csrf.Validate(input.CSRFToken, current.CSRFToken) {
		return apperr.TokenInvalid(messageCSRFInvalid)
	}

	var (
		user  *User
		token *otp.OTP
	)

	err := service.db.Atomic(context, func(context stdctx.Context) error {
		found, err := service.users.FindByUsername(context, input.Username)
		if errors.Is(err, dberr.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("auth_service_reset_lookup_failed: %w", err)
		}

		if found.Email != input.Email || !found.IsVerified || found.IsLocked {
			return nil
		}

		user = found
		token, err = service.tokens.Replace(context, user.ID, otp.PasswordReset, service.policy.PasswordResetLifetime)
		return err
	})
	if err != nil {
		return err
	}

	if token != nil {
		service.notifier.PasswordReset(context, user, token)
	}
	return nil
}

// ResetInput carries an anonymous password reset.
type ResetInput struct {
	CSRFToken          string
	Username           string
	Email              string
	Token              string
	NewPassword        string
	NewPasswordConfirm string
}

/*
ResetPassword sets a new password using an emailed token.

Success requires a valid token and CSRF token, an unlocked verified account
matching username and email, and a valid confirmed new password. The stored
token is deleted on success or expiry. Existing sessions of the account end.

Returns:
  - err: TokenInvalid("Failed to reset the password"), a ValidationError when
    only the new password is rejected, or storage errors
*/
func (service *Service) ResetPassword(context stdctx.Context, current *session.Session, input ResetInput) error {
	if !current.IsAnonymous() {
		return apperr.Forbidden("Use the authenticated password change instead.")
	}

	passwordErr := newPasswordRules(input.NewPassword, input.NewPasswordConfirm)

	// Hash before the transaction. Every request with a well-formed password pays the same cost.
	var hash string
	if passwordErr == nil {
		var err error
		if hash, err = sec.HashPassword(input.NewPassword); err != nil {
			return fmt.Errorf("auth_service_hash_failed: %w", err)
		}
	}

	var (
		reset      bool
		ownerValid bool
		userID     int64
	)

	err := service.db.Atomic(context, func(context stdctx.Context) error {
		user, err := service.users.FindByUsernameForUpdate(context, input.Username)
		if err != nil && !errors.Is(err, dberr.ErrNotFound) {
			return fmt.Errorf("auth_service_reset_lookup_failed: %w", err)
		}

		// An unknown user looks up id 0 so both paths run the same queries.
		if user != nil {
			userID = user.ID
		}
		stored, err := service.tokens.Lookup(context, userID, otp.PasswordReset)
		if err != nil {
			return err
		}

		csrfValid := csrf.Validate(input.CSRFToken, current.CSRFToken)
		tokenValid := otp.Validate(input.Token, stored)
		ownerValid = user != nil && user.Email == input.Email && user.IsVerified && !user.IsLocked &&
			csrfValid && tokenValid
		reset = ownerValid && passwordErr == nil

		if reset {
			if _, err := service.users.Update(user.ID).Set(schema.User.Password, hash).Commit(context); err != nil {
				return fmt.Errorf("auth_service_reset_failed: %w", err)
			}
			if _, err := service.sessions.EndAll(context, user.ID); err != nil {
				return err
			}
		}

		return service.tokens.Consume(context, stored, reset)
	})
	if err != nil {
		return err
	}

	if !reset {
		// The token proved ownership, so the password rules can be reported.
		if ownerValid {
			return passwordErr
		}
		return apperr.TokenInvalid(messageResetFailed)
	}

	ctxutil.GetLogger(context).Info("password_reset", slog.Int64("user_id", userID))
	return nil
}

// ChangeInput carries an authenticated password change.
type ChangeInput struct {
	CSRFToken          string
	Password           string
	NewPassword        string
	NewPasswordConfirm string
}

/*
ChangePassword sets a new password for a logged in, verified caller who knows
the current one. No token is involved.

Returns:
  - err: TokenInvalid("Failed to reset the password"), ValidationError or storage errors
*/
func (service *Service) ChangePassword(context stdctx.Context, identity *Identity, input ChangeInput) error {
	if identity.IsAnonymous() {
		return apperr.Unauthorized(messageLoginRequired)
	}
	user := identity.User

	csrfValid := csrf.Validate(input.CSRFToken, identity.Session.CSRFToken)
	currentValid := sec.CheckPasswordHash(input.Password, user.PasswordHash)
	if !csrfValid || !currentValid || !user.IsVerified {
		return apperr.TokenInvalid(messageResetFailed)
	}

	if err := newPasswordRules(input.NewPassword, input.NewPasswordConfirm); err != nil {
		return err
	}

	hash, err := sec.HashPassword(input.NewPassword)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	if _, err := service.users.Update(user.ID).Set(schema.User.Password, hash).Commit(context); err != nil {
		return fmt.Errorf("auth_service_change_password_failed: %w", err)
	}

	user.PasswordHash = hash
	ctxutil.GetLogger(context).Info("password_changed", slog.Int64("user_id", user.ID))
	return nil
}

func newPasswordRules(password, confirmation string) error {
	validator := &validate.Validator{}
	validator.Password(FieldNewPassword, password).
		Matches(FieldNewPasswordConfirm, password, confirmation)
	return validator.Err()
}
