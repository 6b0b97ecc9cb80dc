// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post

import (
	"context"
	"errors"
	"fmt"

	"github.com/taibuivan/quill/internal/platform/apperr"
	"github.com/taibuivan/quill/internal/platform/database/schema"
	"github.com/taibuivan/quill/internal/platform/dberr"
	"github.com/taibuivan/quill/internal/platform/validate"
	"github.com/taibuivan/quill/internal/users/auth"
	"github.com/taibuivan/quill/internal/users/csrf"
	"github.com/taibuivan/quill/pkg/pagination"
	"github.com/taibuivan/quill/pkg/timestamp"
)

const resourcePost = "Post"

// Service implements the post use cases.
type Service struct {
	posts Repository
	users auth.UserRepository
}

// NewService constructs a new [Service].
func NewService(posts Repository, users auth.UserRepository) *Service {
	return &Service{posts: posts, users: users}
}

func validateContent(content string) error {
	validator := &validate.Validator{}
	validator.Required(FieldContent, content).
		MaxLen(FieldContent, content, ContentMaxLength)
	return validator.Err()
}

func checkCSRF(identity *auth.Identity, submitted string) error {
	if !csrf.Validate(submitted, identity.Session.CSRFToken) {
		return apperr.TokenInvalid("Invalid CSRF token.")
	}
	return nil
}

/*
List returns one page of posts, newest first, with author names resolved.

Returns:
  - []*Post: the page, possibly empty
  - int: total number of posts
  - error: storage failures
*/
func (service *Service) List(context context.Context, params pagination.Params) ([]*Post, int, error) {
	params = params.Within(pagination.Posts)
	posts, err := service.posts.List(context, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("post_service_list_failed: %w", err)
	}

	total, err := service.posts.Count(context)
	if err != nil {
		return nil, 0, fmt.Errorf("post_service_count_failed: %w", err)
	}

	authors := make(map[int64]string)
	for _, post := range posts {
		name, ok := authors[post.AuthorID]
		if !ok {
			user, err := service.users.Find(context, post.AuthorID)
			switch {
			case err == nil:
				name = user.Username
			case !errors.Is(err, dberr.ErrNotFound):
				return nil, 0, fmt.Errorf("post_service_author_failed: %w", err)
			}
			authors[post.AuthorID] = name
		}
		post.Author = name
	}

	if posts == nil {
		posts = []*Post{}
	}
	return posts, total, nil
}

// Create publishes a post for the caller. Created uses the current time.
func (service *Service) Create(context context.Context, identity *auth.Identity, csrfToken, content string) (*Post, error) {
	if err := checkCSRF(identity, csrfToken); err != nil {
		return nil, err
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}

	post := &Post{
		Created:  timestamp.Now(0),
		Content:  content,
		AuthorID: identity.User.ID,
		Author:   identity.User.Username,
	}

	id, err := service.posts.Create(context, post)
	if err != nil {
		return nil, fmt.Errorf("post_service_create_failed: %w", err)
	}
	post.ID = id
	return post, nil
}

// Edit replaces the content of one of the caller's posts.
func (service *Service) Edit(context context.Context, identity *auth.Identity, id int64, csrfToken, content string) (*Post, error) {
	if err := checkCSRF(identity, csrfToken); err != nil {
		return nil, err
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}

	affected, err := service.posts.Update(id, identity.User.ID).Set(schema.Post.Content, content).Commit(context)
	if err != nil {
		return nil, fmt.Errorf("post_service_edit_failed: %w", err)
	}
	if affected == 0 {
		return nil, apperr.NotFound(resourcePost)
	}

	post, err := service.posts.Find(context, id, identity.User.ID)
	if err != nil {
		return nil, dberr.Wrap(err, resourcePost)
	}
	post.Author = identity.User.Username
	return post, nil
}

// Delete removes one of the caller's posts.
func (service *Service) Delete(context context.Context, identity *auth.Identity, id int64, csrfToken string) error {
	if err := checkCSRF(identity, csrfToken); err != nil {
		return err
	}

	deleted, err := service.posts.Delete(context, id, identity.User.ID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return apperr.NotFound(resourcePost)
	}
	return nil
}
