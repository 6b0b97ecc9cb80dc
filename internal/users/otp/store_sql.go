// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package otp

import (
	"context"
	"fmt"

	"github.com/taibuivan/quill/internal/platform/database"
	"github.com/taibuivan/quill/internal/platform/database/schema"
	"github.com/taibuivan/quill/pkg/query"
)

// SQLRepository implements [Repository] on the otps table.
type SQLRepository struct {
	table *database.Table[OTP]
}

// NewRepository creates a token repository over db.
func NewRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{
		table: database.NewTable(db, schema.OTP.Table, schema.OTP.Columns(), scanOTP),
	}
}

func scanOTP(row database.Scanner) (*OTP, error) {
	token := &OTP{}
	var tokenType string
	if err := row.Scan(&token.ID, &token.Value, &token.Expires, &tokenType, &token.UserID); err != nil {
		return nil, err
	}
	token.Type = Type(tokenType)
	return token, nil
}

// Insert implements [Repository].
func (repository *SQLRepository) Insert(context context.Context, token *OTP) (int64, error) {
	return repository.table.InsertReturning(context, schema.OTP.ID,
		query.Set(schema.OTP.Value, token.Value),
		query.Set(schema.OTP.Expires, token.Expires),
		query.Set(schema.OTP.Type, string(token.Type)),
		query.Set(schema.OTP.UserID, token.UserID),
	)
}

// Find implements [Repository].
func (repository *SQLRepository) Find(context context.Context, userID int64, tokenType Type) (*OTP, error) {
	return repository.table.Get(context,
		query.Eq(schema.OTP.UserID, userID),
		query.Eq(schema.OTP.Type, string(tokenType)),
	)
}

// ExistsValue implements [Repository].
func (repository *SQLRepository) ExistsValue(context context.Context, value []byte) (bool, error) {
	count, err := repository.table.Count(context, query.Eq(schema.OTP.Value, value))
	if err != nil {
		return false, fmt.Errorf("otp_repo_exists_failed: %w", err)
	}
	return count > 0, nil
}

// Delete implements [Repository].
func (repository *SQLRepository) Delete(context context.Context, id int64) error {
	if _, err := repository.table.Delete(context, query.Eq(schema.OTP.ID, id)); err != nil {
		return fmt.Errorf("otp_repo_delete_failed: %w", err)
	}
	return nil
}

// DeleteFor implements [Repository].
func (repository *SQLRepository) DeleteFor(context context.Context, userID int64, tokenType Type) error {
	_, err := repository.table.Delete(context,
		query.Eq(schema.OTP.UserID, userID),
		query.Eq(schema.OTP.Type, string(tokenType)),
	)
	if err != nil {
		return fmt.Errorf("otp_repo_delete_for_failed: %w", err)
	}
	return nil
}

// List implements [Repository].
func (repository *SQLRepository) List(context context.Context) ([]*OTP, error) {
	return repository.table.Query(context)
}
