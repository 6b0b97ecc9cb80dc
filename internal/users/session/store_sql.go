// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"fmt"

	"github.com/taibuivan/quill/internal/platform/database"
	"github.com/taibuivan/quill/internal/platform/database/schema"
	"github.com/taibuivan/quill/pkg/query"
)

// SQLRepository implements [Repository] on the sessions table.
type SQLRepository struct {
	table *database.Table[Session]
}

// NewRepository creates a session repository over db.
func NewRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{
		table: database.NewTable(db, schema.Session.Table, schema.Session.Columns(), scanSession),
	}
}

func scanSession(row database.Scanner) (*Session, error) {
	session := &Session{}
	if err := row.Scan(&session.ID, &session.CSRFToken, &session.Expires, &session.UserID); err != nil {
		return nil, err
	}
	return session, nil
}

// Insert implements [Repository].
func (repository *SQLRepository) Insert(context context.Context, session *Session) error {
	return repository.table.Insert(context,
		query.Set(schema.Session.SessionID, session.ID),
		query.Set(schema.Session.CSRFToken, session.CSRFToken),
		query.Set(schema.Session.Expires, session.Expires),
		query.Set(schema.Session.UserID, session.UserID),
	)
}

// Find implements [Repository].
func (repository *SQLRepository) Find(context context.Context, id []byte) (*Session, error) {
	return repository.table.Get(context, query.Eq(schema.Session.SessionID, id))
}

// Delete implements [Repository].
func (repository *SQLRepository) Delete(context context.Context, id []byte) error {
	if _, err := repository.table.Delete(context, query.Eq(schema.Session.SessionID, id)); err != nil {
		return fmt.Errorf("session_repo_delete_failed: %w", err)
	}
	return nil
}

// DeleteByUser implements [Repository].
func (repository *SQLRepository) DeleteByUser(context context.Context, userID int64) (int64, error) {
	deleted, err := repository.table.Delete(context, query.Eq(schema.Session.UserID, userID))
	if err != nil {
		return 0, fmt.Errorf("session_repo_delete_by_user_failed: %w", err)
	}
	return deleted, nil
}

// List implements [Repository].
func (repository *SQLRepository) List(context context.Context) ([]*Session, error) {
	return repository.table.Query(context)
}
