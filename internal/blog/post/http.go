// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/quill/internal/platform/request"
	"github.com/taibuivan/quill/internal/platform/respond"
	"github.com/taibuivan/quill/internal/users/auth"
	"github.com/taibuivan/quill/pkg/pagination"
)

// Handler implements the HTTP layer for posts.
type Handler struct {
	postService *Service
}

// NewHandler constructs a new post [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{postService: service}
}

// Routes returns a [chi.Router] with the post endpoints, all behind [auth.RequireVerified].
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(auth.RequireVerified)

	router.Get("/", handler.list)
	router.Post("/", handler.create)
	router.Patch("/{id}", handler.edit)
	router.Delete("/{id}", handler.delete)

	return router
}

type postRequest struct {
	CSRFToken string `json:"csrf_token"`
	Content   string `json:"content"`
}

type deleteRequest struct {
	CSRFToken string `json:"csrf_token"`
}

// GET /api/v1/posts.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request, pagination.Posts)

	posts, total, err := handler.postService.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, posts, pagination.NewMeta(params, total))
}

// POST /api/v1/posts.
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input postRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.postService.Create(request.Context(), auth.IdentityFrom(request.Context()), input.CSRFToken, input.Content)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, post)
}

/*
PATCH /api/v1/posts/{id}.

Response:
  - 200: Post
  - 404: NOT_FOUND for unknown posts and posts of other authors
*/
func (handler *Handler) edit(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input postRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.postService.Edit(request.Context(), auth.IdentityFrom(request.Context()), id, input.CSRFToken, input.Content)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, post)
}

// DELETE /api/v1/posts/{id}.
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input deleteRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.postService.Delete(request.Context(), auth.IdentityFrom(request.Context()), id, input.CSRFToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
