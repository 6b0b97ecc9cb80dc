// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/quill/internal/blog/post"
	"github.com/taibuivan/quill/internal/platform/apperr"
	"github.com/taibuivan/quill/internal/platform/database/databasetest"
	"github.com/taibuivan/quill/internal/users/auth"
	"github.com/taibuivan/quill/internal/users/session"
	"github.com/taibuivan/quill/pkg/pagination"
	"github.com/taibuivan/quill/pkg/timestamp"
)

// author builds an identity with a fixed CSRF token so no derivation is needed.
func author(t *testing.T, users *auth.SQLUserRepository, username string) (*auth.Identity, string) {
	t.Helper()
	user := &auth.User{Username: username, Email: username + "@example.com", PasswordHash: "x", IsVerified: true}
	var err error
	user.ID, err = users.Create(context.Background(), user)
	require.NoError(t, err)

	current := &session.Session{ID: []byte(username), CSRFToken: []byte{0xca, 0xfe}, Expires: timestamp.Now(1), UserID: user.ID}
	return &auth.Identity{Session: current, User: user}, "cafe"
}

func code(err error) string {
	if appError := apperr.As(err); appError != nil {
		return appError.Code
	}
	return ""
}

/*
TestPosts covers publishing, listing and author-scoped changes.
*/
func TestPosts(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)
	users := auth.NewUserRepository(db)
	service := post.NewService(post.NewRepository(db), users)

	alice, aliceCSRF := author(t, users, "alice")
	bob, bobCSRF := author(t, users, "bob")

	// 1. Create
	first, err := service.Create(ctx, alice, aliceCSRF, "hello")
	require.NoError(t, err)
	second, err := service.Create(ctx, bob, bobCSRF, "world")
	require.NoError(t, err)

	_, err = service.Create(ctx, alice, "beef", "no csrf")
	assert.Equal(t, "TOKEN_INVALID", code(err))
	_, err = service.Create(ctx, alice, aliceCSRF, "   ")
	assert.Equal(t, "VALIDATION_ERROR", code(err))
	_, err = service.Create(ctx, alice, aliceCSRF, strings.Repeat("x", post.ContentMaxLength+1))
	assert.Equal(t, "VALIDATION_ERROR", code(err))

	// 2. List, newest first, with authors
	posts, total, err := service.List(ctx, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, "bob", posts[0].Author)
	assert.Equal(t, "alice", posts[1].Author)
	assert.True(t, first.Created.Equal(posts[1].Created))

	// 3. Only the author can edit
	_, err = service.Edit(ctx, bob, first.ID, bobCSRF, "hijacked")
	assert.Equal(t, "NOT_FOUND", code(err))

	edited, err := service.Edit(ctx, alice, first.ID, aliceCSRF, "hello again")
	require.NoError(t, err)
	assert.Equal(t, "hello again", edited.Content)

	// 4. Only the author can delete
	assert.Equal(t, "NOT_FOUND", code(service.Delete(ctx, alice, second.ID, aliceCSRF)))
	require.NoError(t, service.Delete(ctx, bob, second.ID, bobCSRF))

	_, total, err = service.List(ctx, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	// 5. Deleting the author cascades to posts
	require.NoError(t, users.Delete(ctx, alice.User.ID))
	_, total, err = service.List(ctx, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}
