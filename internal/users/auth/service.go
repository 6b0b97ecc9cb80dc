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
	"github.com/taibuivan/quill/internal/platform/database"
	"github.com/taibuivan/quill/internal/platform/database/schema"
	"github.com/taibuivan/quill/internal/platform/dberr"
	"github.com/taibuivan/quill/internal/platform/sec"
	"github.com/taibuivan/quill/internal/platform/validate"
	"github.com/taibuivan/quill/internal/users/csrf"
	"github.com/taibuivan/quill/internal/users/otp"
	"github.com/taibuivan/quill/internal/users/session"
)

// # Contracts & Types

// Policy holds lockout thresholds and token lifetimes in hours.
type Policy struct {
	MaxLoginAttempts          int
	EmailVerificationLifetime int
	AccountLockDuration       int
	PasswordResetLifetime     int
}

// Service implements the account flows.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, throttling
// or token handling must be reviewed by the security team.
type Service struct {
	db       *database.DB
	users    UserRepository
	sessions *session.Manager
	tokens   *otp.Manager
	notifier *Notifier
	policy   Policy
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	db *database.DB,
	users UserRepository,
	sessions *session.Manager,
	tokens *otp.Manager,
	notifier *Notifier,
	policy Policy,
) *Service {
	return &Service{
		db:       db,
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		notifier: notifier,
		policy:   policy,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	CSRFToken       string
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
}

/*
Register validates, hashes, and persists a new unverified account, then emails
an email verification token.

Parameters:
  - context: stdctx.Context
  - current: the caller's session, used for the CSRF check
  - input: RegisterInput

Returns:
  - *User: Created entity
  - err: TokenInvalid, ValidationError, Conflict or storage errors
*/
func (service *Service) Register(context stdctx.Context, current *session.Session, input RegisterInput) (*User, error) {
	if !csrf.Validate(input.CSRFToken, current.CSRFToken) {
		return nil, apperr.TokenInvalid(messageCSRFInvalid)
	}

	validator := &validate.Validator{}
	validator.Username(FieldUsername, input.Username).
		Email(FieldEmail, input.Email).
		Password(FieldPassword, input.Password).
		Matches(FieldPasswordConfirm, input.Password, input.PasswordConfirm)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Hash outside the transaction so the write lock is held briefly.
	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := &User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
	}

	var token *otp.OTP
	err = service.db.Atomic(context, func(context stdctx.Context) error {
		if err := service.ensureAvailable(context, user.Username, user.Email); err != nil {
			return err
		}

		id, err := service.users.Create(context, user)
		if errors.Is(err, dberr.ErrUniqueViolation) {
			return apperr.Conflict(messageUsernameTaken)
		}
		if err != nil {
			return fmt.Errorf("auth_service_register_failed: %w", err)
		}
		user.ID = id

		token, err = service.tokens.Replace(context, user.ID, otp.EmailVerification, service.policy.EmailVerificationLifetime)
		return err
	})
	if err != nil {
		return nil, err
	}

	service.notifier.Verification(context, user, token)

	ctxutil.GetLogger(context).Info("account_registered", slog.Int64("user_id", user.ID))
	return user, nil
}

// ensureAvailable reports taken usernames and emails with distinct messages.
func (service *Service) ensureAvailable(context stdctx.Context, username, email string) error {
	_, err := service.users.FindByUsername(context, username)
	if err == nil {
		return apperr.Conflict(messageUsernameTaken)
	}
	if !errors.Is(err, dberr.ErrNotFound) {
		return fmt.Errorf("auth_service_lookup_failed: %w", err)
	}

	_, err = service.users.FindByEmail(context, email)
	if err == nil {
		return apperr.Conflict(messageEmailTaken)
	}
	if !errors.Is(err, dberr.ErrNotFound) {
		return fmt.Errorf("auth_service_lookup_failed: %w", err)
	}

	return nil
}

// # Email Verification

/*
Verify confirms the caller's email address with the token sent at registration.

Success requires a valid CSRF token and a live matching token. The stored token
is deleted on success or when it has expired, so the failure is committed too.

Returns:
  - err: TokenInvalid("Verification failed.") or storage errors
*/
func (service *Service) Verify(context stdctx.Context, identity *Identity, submitted, csrfToken string) error {
	if identity.IsAnonymous() {
		return apperr.Unauthorized(messageLoginRequired)
	}
	userID := identity.User.ID

	verified := false
	err := service.db.Atomic(context, func(context stdctx.Context) error {
		stored, err := service.tokens.Lookup(context, userID, otp.EmailVerification)
		if err != nil {
			return err
		}

		csrfValid := csrf.Validate(csrfToken, identity.Session.CSRFToken)
		tokenValid := otp.Validate(submitted, stored)
		verified = csrfValid && tokenValid

		if verified {
			if _, err := service.users.Update(userID).Set(schema.User.IsVerified, true).Commit(context); err != nil {
				return fmt.Errorf("auth_service_verify_failed: %w", err)
			}
		}

		return service.tokens.Consume(context, stored, verified)
	})
	if err != nil {
		return err
	}

	if !verified {
		return apperr.TokenInvalid(messageVerificationFailed)
	}

	identity.User.IsVerified = true
	ctxutil.GetLogger(context).Info("account_verified", slog.Int64("user_id", userID))
	return nil
}

// ResendVerification replaces the caller's email token and sends it again.
func (service *Service) ResendVerification(context stdctx.Context, identity *Identity, csrfToken string) error {
	if identity.IsAnonymous() {
		return apperr.Unauthorized(messageLoginRequired)
	}
	if !csrf.Validate(csrfToken, identity.Session.CSRFToken) {
		return apperr.TokenInvalid(messageCSRFInvalid)
	}
	if identity.User.IsVerified {
		return apperr.Conflict("Account is already verified.")
	}

	token, err := service.tokens.Replace(context, identity.User.ID, otp.EmailVerification, service.policy.EmailVerificationLifetime)
	if err != nil {
		return err
	}

	service.notifier.Verification(context, identity.User, token)
	return nil
}
