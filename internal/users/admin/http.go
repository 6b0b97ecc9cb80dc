// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/quill/internal/platform/request"
	"github.com/taibuivan/quill/internal/platform/respond"
	"github.com/taibuivan/quill/internal/users/auth"
	"github.com/taibuivan/quill/pkg/pagination"
)

// Handler implements the HTTP layer for account administration.
type Handler struct {
	adminService *Service
}

// NewHandler constructs a new admin [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{adminService: service}
}

// Routes returns a [chi.Router] with the admin endpoints, all behind [auth.RequireAdmin].
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(auth.RequireAdmin)

	router.Get("/users", handler.listUsers)
	router.Post("/users", handler.createUser)
	router.Get("/users/{id}", handler.getUser)
	router.Patch("/users/{id}/username", handler.changeUsername)
	router.Patch("/users/{id}/email", handler.changeEmail)
	router.Post("/users/{id}/verify", handler.markVerified)
	router.Post("/users/{id}/promote", handler.promote)
	router.Delete("/users/{id}", handler.deleteUser)

	return router
}

type csrfRequest struct {
	CSRFToken string `json:"csrf_token"`
}

type createUserRequest struct {
	CSRFToken string `json:"csrf_token"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type usernameRequest struct {
	CSRFToken string `json:"csrf_token"`
	Username  string `json:"username"`
}

type emailRequest struct {
	CSRFToken string `json:"csrf_token"`
	Email     string `json:"email"`
}

/*
GET /api/v1/admin/users.

Response:
  - 200: []User with pagination meta
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request, pagination.Users)

	users, total, err := handler.adminService.ListUsers(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params, total))
}

// POST /api/v1/admin/users.
func (handler *Handler) createUser(writer http.ResponseWriter, request *http.Request) {
	var input createUserRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.adminService.CreateUser(request.Context(), auth.IdentityFrom(request.Context()), CreateUserInput{
		CSRFToken: input.CSRFToken,
		Username:  input.Username,
		Email:     input.Email,
		Password:  input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

// GET /api/v1/admin/users/{id}.
func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.adminService.GetUser(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// PATCH /api/v1/admin/users/{id}/username.
func (handler *Handler) changeUsername(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input usernameRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.adminService.ChangeUsername(request.Context(), auth.IdentityFrom(request.Context()), id, input.CSRFToken, input.Username)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// PATCH /api/v1/admin/users/{id}/email.
func (handler *Handler) changeEmail(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input emailRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.adminService.ChangeEmail(request.Context(), auth.IdentityFrom(request.Context()), id, input.CSRFToken, input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// POST /api/v1/admin/users/{id}/verify.
func (handler *Handler) markVerified(writer http.ResponseWriter, request *http.Request) {
	handler.flag(writer, request, handler.adminService.MarkVerified)
}

// POST /api/v1/admin/users/{id}/promote.
func (handler *Handler) promote(writer http.ResponseWriter, request *http.Request) {
	handler.flag(writer, request, handler.adminService.Promote)
}

type flagFunc func(ctx context.Context, identity *auth.Identity, id int64, csrfToken string) (*auth.User, error)

// flag runs a CSRF-only mutation on the user named in the URL.
func (handler *Handler) flag(writer http.ResponseWriter, request *http.Request, apply flagFunc) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input csrfRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := apply(request.Context(), auth.IdentityFrom(request.Context()), id, input.CSRFToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// DELETE /api/v1/admin/users/{id}.
func (handler *Handler) deleteUser(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input csrfRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.adminService.DeleteUser(request.Context(), auth.IdentityFrom(request.Context()), id, input.CSRFToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
