// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post

import (
	"context"
	"fmt"

	"github.com/taibuivan/quill/internal/platform/database"
	"github.com/taibuivan/quill/internal/platform/database/schema"
	"github.com/taibuivan/quill/pkg/query"
)

// SQLRepository implements [Repository] on the posts table.
type SQLRepository struct {
	table *database.Table[Post]
}

// NewRepository creates a post repository over db.
func NewRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{
		table: database.NewTable(db, schema.Post.Table, schema.Post.Columns(), scanPost),
	}
}

func scanPost(row database.Scanner) (*Post, error) {
	post := &Post{}
	if err := row.Scan(&post.ID, &post.Created, &post.Content, &post.AuthorID); err != nil {
		return nil, err
	}
	return post, nil
}

// Create implements [Repository].
func (repository *SQLRepository) Create(context context.Context, post *Post) (int64, error) {
	return repository.table.InsertReturning(context, schema.Post.ID,
		query.Set(schema.Post.Created, post.Created),
		query.Set(schema.Post.Content, post.Content),
		query.Set(schema.Post.AuthorID, post.AuthorID),
	)
}

// Find implements [Repository].
func (repository *SQLRepository) Find(context context.Context, id, authorID int64) (*Post, error) {
	return repository.table.Get(context,
		query.Eq(schema.Post.ID, id),
		query.Eq(schema.Post.AuthorID, authorID),
	)
}

// Update implements [Repository].
func (repository *SQLRepository) Update(id, authorID int64) *database.Changeset {
	return repository.table.Update(
		query.Eq(schema.Post.ID, id),
		query.Eq(schema.Post.AuthorID, authorID),
	)
}

// Delete implements [Repository].
func (repository *SQLRepository) Delete(context context.Context, id, authorID int64) (int64, error) {
	deleted, err := repository.table.Delete(context,
		query.Eq(schema.Post.ID, id),
		query.Eq(schema.Post.AuthorID, authorID),
	)
	if err != nil {
		return 0, fmt.Errorf("post_repo_delete_failed: %w", err)
	}
	return deleted, nil
}

// List implements [Repository].
func (repository *SQLRepository) List(context context.Context, limit, offset int) ([]*Post, error) {
	return repository.table.Page(context, schema.Post.ID, true, limit, offset)
}

// Count implements [Repository].
func (repository *SQLRepository) Count(context context.Context) (int, error) {
	return repository.table.Count(context)
}
