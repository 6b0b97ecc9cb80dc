// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package admin implements account management for administrators.

Every operation assumes the caller already passed the admin gate and still
checks the CSRF token of the caller's session. Changes that alter what an
account may do (promotion, deletion) end the account's sessions so the new
state applies on its next request.
*/
package admin

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
	"github.com/taibuivan/quill/internal/users/auth"
	"github.com/taibuivan/quill/internal/users/csrf"
	"github.com/taibuivan/quill/internal/users/session"
	"github.com/taibuivan/quill/pkg/pagination"
)

const resourceUser = "User"

// # Service Layer

// Service orchestrates administrative changes to accounts.
type Service struct {
	db       *database.DB
	users    auth.UserRepository
	sessions *session.Manager
}

// NewService constructs a new [Service] with its dependencies.
func NewService(db *database.DB, users auth.UserRepository, sessions *session.Manager) *Service {
	return &Service{db: db, users: users, sessions: sessions}
}

func checkCSRF(identity *auth.Identity, submitted string) error {
	if !csrf.Validate(submitted, identity.Session.CSRFToken) {
		return apperr.TokenInvalid("Invalid CSRF token.")
	}
	return nil
}

// # Queries

/*
ListUsers returns one page of accounts ordered by id.

Returns:
  - []*auth.User: the page, possibly empty
  - int: total number of accounts
  - error: storage failures
*/
func (service *Service) ListUsers(context stdctx.Context, params pagination.Params) ([]*auth.User, int, error) {
	params = params.Within(pagination.Users)
	users, err := service.users.List(context, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("admin_service_list_failed: %w", err)
	}

	total, err := service.users.Count(context)
	if err != nil {
		return nil, 0, fmt.Errorf("admin_service_count_failed: %w", err)
	}

	if users == nil {
		users = []*auth.User{}
	}
	return users, total, nil
}

// GetUser returns one account or a 404.
func (service *Service) GetUser(context stdctx.Context, id int64) (*auth.User, error) {
	user, err := service.users.Find(context, id)
	if err != nil {
		return nil, dberr.Wrap(err, resourceUser)
	}
	return user, nil
}

// # Mutations

// CreateUserInput holds the fields of an account created by an administrator.
type CreateUserInput struct {
	CSRFToken string
	Username  string
	Email     string
	Password  string
}

/*
CreateUser persists a verified account. No verification email is sent.

Returns:
  - *auth.User: Created entity
  - error: TokenInvalid, ValidationError, Conflict or storage errors
*/
func (service *Service) CreateUser(context stdctx.Context, identity *auth.Identity, input CreateUserInput) (*auth.User, error) {
	if err := checkCSRF(identity, input.CSRFToken); err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.Username(auth.FieldUsername, input.Username).
		Email(auth.FieldEmail, input.Email).
		Password(auth.FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("admin_service_hash_failed: %w", err)
	}

	user := &auth.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		IsVerified:   true,
	}

	user.ID, err = service.users.Create(context, user)
	if errors.Is(err, dberr.ErrUniqueViolation) {
		return nil, apperr.Conflict("Username or email is already taken.")
	}
	if err != nil {
		return nil, fmt.Errorf("admin_service_create_failed: %w", err)
	}

	ctxutil.GetLogger(context).Info("admin_user_created",
		slog.Int64("admin_id", identity.User.ID),
		slog.Int64("target_user_id", user.ID),
	)
	return user, nil
}

// ChangeUsername renames an account.
func (service *Service) ChangeUsername(context stdctx.Context, identity *auth.Identity, id int64, csrfToken, username string) (*auth.User, error) {
	if err := checkCSRF(identity, csrfToken); err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	if err := validator.Username(auth.FieldUsername, username).Err(); err != nil {
		return nil, err
	}

	return service.change(context, identity, id, "admin_username_changed", schema.User.Username, username)
}

// ChangeEmail replaces the address of an account.
func (service *Service) ChangeEmail(context stdctx.Context, identity *auth.Identity, id int64, csrfToken, email string) (*auth.User, error) {
	if err := checkCSRF(identity, csrfToken); err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	if err := validator.Email(auth.FieldEmail, email).Err(); err != nil {
		return nil, err
	}

	return service.change(context, identity, id, "admin_email_changed", schema.User.Email, email)
}

// MarkVerified sets the verified flag without a token.
func (service *Service) MarkVerified(context stdctx.Context, identity *auth.Identity, id int64, csrfToken string) (*auth.User, error) {
	if err := checkCSRF(identity, csrfToken); err != nil {
		return nil, err
	}
	return service.change(context, identity, id, "admin_user_verified", schema.User.IsVerified, true)
}

// Promote grants the admin flag and ends the account's sessions.
func (service *Service) Promote(context stdctx.Context, identity *auth.Identity, id int64, csrfToken string) (*auth.User, error) {
	if err := checkCSRF(identity, csrfToken); err != nil {
		return nil, err
	}

	var promoted *auth.User
	err := service.db.Atomic(context, func(context stdctx.Context) error {
		var err error
		if promoted, err = service.change(context, identity, id, "admin_user_promoted", schema.User.IsAdmin, true); err != nil {
			return err
		}
		if id == identity.User.ID {
			return nil
		}
		_, err = service.sessions.EndAll(context, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return promoted, nil
}

// change applies one column assignment and returns the updated account.
func (service *Service) change(context stdctx.Context, identity *auth.Identity, id int64, event, column string, value any) (*auth.User, error) {
	affected, err := service.users.Update(id).Set(column, value).Commit(context)
	if errors.Is(err, dberr.ErrUniqueViolation) {
		return nil, apperr.Conflict("Username or email is already taken.")
	}
	if err != nil {
		return nil, fmt.Errorf("admin_service_update_failed: %w", err)
	}
	if affected == 0 {
		return nil, apperr.NotFound(resourceUser)
	}

	ctxutil.GetLogger(context).Info(event,
		slog.Int64("admin_id", identity.User.ID),
		slog.Int64("target_user_id", id),
	)
	return service.GetUser(context, id)
}

/*
DeleteUser removes an account with its tokens and posts, and ends its sessions.
Administrators cannot delete themselves.
*/
func (service *Service) DeleteUser(context stdctx.Context, identity *auth.Identity, id int64, csrfToken string) error {
	if err := checkCSRF(identity, csrfToken); err != nil {
		return err
	}
	if id == identity.User.ID {
		return apperr.Conflict("Administrators cannot delete their own account.")
	}

	err := service.db.Atomic(context, func(context stdctx.Context) error {
		if _, err := service.users.Find(context, id); err != nil {
			return dberr.Wrap(err, resourceUser)
		}
		if _, err := service.sessions.EndAll(context, id); err != nil {
			return err
		}
		return service.users.Delete(context, id)
	})
	if err != nil {
		return err
	}

	ctxutil.GetLogger(context).Warn("admin_user_deleted",
		slog.Int64("admin_id", identity.User.ID),
		slog.Int64("target_user_id", id),
	)
	return nil
}
