// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post

import (
	"context"

	"github.com/taibuivan/quill/internal/platform/database"
)

// Repository defines the data access contract for posts.
type Repository interface {
	// Create persists a post and returns its id.
	Create(context context.Context, post *Post) (int64, error)

	// Find retrieves a post written by authorID. Posts of other authors are not found.
	Find(context context.Context, id, authorID int64) (*Post, error)

	// Update opens a change set on one post of authorID.
	Update(id, authorID int64) *database.Changeset

	// Delete removes a post of authorID and reports how many rows were removed.
	Delete(context context.Context, id, authorID int64) (int64, error)

	// List returns one page of posts, newest first.
	List(context context.Context, limit, offset int) ([]*Post, error)

	// Count returns the number of posts.
	Count(context context.Context) (int, error)
}
