// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"

	"github.com/taibuivan/quill/internal/platform/database"
)

// # User Data Access

// UserRepository defines the data access contract for accounts.
//
// Lookups return dberr.ErrNotFound when no row matches. The ForUpdate variants
// lock the row for the rest of the surrounding transaction where the database
// supports row locks.
type UserRepository interface {

	/*
		Create persists a new user and returns its generated id.

		Returns:
		  - int64: row id
		  - error: dberr.ErrUniqueViolation when the username or email is taken
	*/
	Create(context context.Context, user *User) (int64, error)

	// Find retrieves a user by id.
	Find(context context.Context, id int64) (*User, error)

	// FindByUsername retrieves a user by exact username.
	FindByUsername(context context.Context, username string) (*User, error)

	// FindByUsernameForUpdate is FindByUsername with a row lock.
	FindByUsernameForUpdate(context context.Context, username string) (*User, error)

	// FindByEmail retrieves a user by exact email.
	FindByEmail(context context.Context, email string) (*User, error)

	// Update opens a change set on one user. Nothing is written until Commit.
	Update(id int64) *database.Changeset

	// Delete removes a user. Tokens and posts cascade.
	Delete(context context.Context, id int64) error

	// List returns one page of users ordered by id.
	List(context context.Context, limit, offset int) ([]*User, error)

	// Count returns the number of users.
	Count(context context.Context) (int, error)
}
