// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"

	"github.com/taibuivan/quill/internal/platform/database"
	"github.com/taibuivan/quill/internal/platform/database/schema"
	"github.com/taibuivan/quill/pkg/query"
)

// SQLUserRepository implements [UserRepository] on the users table.
type SQLUserRepository struct {
	table *database.Table[User]
}

// NewUserRepository creates a user repository over db.
func NewUserRepository(db *database.DB) *SQLUserRepository {
	return &SQLUserRepository{
		table: database.NewTable(db, schema.User.Table, schema.User.Columns(), scanUser),
	}
}

func scanUser(row database.Scanner) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.LoginAttempts, &user.IsLocked, &user.IsVerified, &user.IsAdmin,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create implements [UserRepository].
func (repository *SQLUserRepository) Create(context context.Context, user *User) (int64, error) {
	return repository.table.InsertReturning(context, schema.User.ID,
		query.Set(schema.User.Username, user.Username),
		query.Set(schema.User.Email, user.Email),
		query.Set(schema.User.Password, user.PasswordHash),
		query.Set(schema.User.LoginAttempts, user.LoginAttempts),
		query.Set(schema.User.IsLocked, user.IsLocked),
		query.Set(schema.User.IsVerified, user.IsVerified),
		query.Set(schema.User.IsAdmin, user.IsAdmin),
	)
}

// Find implements [UserRepository].
func (repository *SQLUserRepository) Find(context context.Context, id int64) (*User, error) {
	return repository.table.Get(context, query.Eq(schema.User.ID, id))
}

// FindByUsername implements [UserRepository].
func (repository *SQLUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	return repository.table.Get(context, query.Eq(schema.User.Username, username))
}

// FindByUsernameForUpdate implements [UserRepository].
func (repository *SQLUserRepository) FindByUsernameForUpdate(context context.Context, username string) (*User, error) {
	return repository.table.GetForUpdate(context, query.Eq(schema.User.Username, username))
}

// FindByEmail implements [UserRepository].
func (repository *SQLUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	return repository.table.Get(context, query.Eq(schema.User.Email, email))
}

// Update implements [UserRepository].
func (repository *SQLUserRepository) Update(id int64) *database.Changeset {
	return repository.table.Update(query.Eq(schema.User.ID, id))
}

// Delete implements [UserRepository].
func (repository *SQLUserRepository) Delete(context context.Context, id int64) error {
	if _, err := repository.table.Delete(context, query.Eq(schema.User.ID, id)); err != nil {
		return fmt.Errorf("user_repo_delete_failed: %w", err)
	}
	return nil
}

// List implements [UserRepository].
func (repository *SQLUserRepository) List(context context.Context, limit, offset int) ([]*User, error) {
	return repository.table.Page(context, schema.User.ID, false, limit, offset)
}

// Count implements [UserRepository].
func (repository *SQLUserRepository) Count(context context.Context) (int, error) {
	return repository.table.Count(context)
}
