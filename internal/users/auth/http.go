// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/quill/internal/platform/limiter"
	"github.com/taibuivan/quill/internal/platform/middleware"
	requestutil "github.com/taibuivan/quill/internal/platform/request"
	"github.com/taibuivan/quill/internal/platform/respond"
	"github.com/taibuivan/quill/internal/users/csrf"
	"github.com/taibuivan/quill/internal/users/session"
)

// # Definitions & Constructors

// Throttles holds one per-IP budget for each credential-bearing endpoint.
// A nil budget disables limiting for that endpoint.
type Throttles struct {
	Register limiter.Limiter
	Login    limiter.Limiter
	Unlock   limiter.Limiter
	Reset    limiter.Limiter
}

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// Every route runs behind [Sessions], so an [Identity] is always present.
type Handler struct {
	authService *Service
	cookie      CookieConfig
	throttles   Throttles
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, cookie CookieConfig, throttles Throttles) *Handler {
	return &Handler{authService: service, cookie: cookie, throttles: throttles}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - GET  /session                : CSRF token and identity of the caller.
//   - POST /register               : Creates an unverified account.
//   - POST /login                  : Authenticates and rotates the session.
//   - POST /logout                 : Ends the session.
//   - POST /verify                 : Confirms the email address.
//   - POST /verify/resend          : Issues a new verification token.
//   - POST /unlock                 : Releases a locked account.
//   - POST /reset-password/request : Emails a reset token.
//   - POST /reset-password         : Sets a new password.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/session", handler.sessionInfo)
	router.Post("/logout", handler.logout)

	router.With(throttle(handler.throttles.Register)).Post("/register", handler.register)
	router.With(throttle(handler.throttles.Login)).Post("/login", handler.login)
	router.With(throttle(handler.throttles.Unlock)).Post("/unlock", handler.unlock)
	router.With(throttle(handler.throttles.Reset)).Post("/reset-password/request", handler.requestReset)
	router.With(throttle(handler.throttles.Reset)).Post("/reset-password", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(RequireLogin)
		r.Post("/verify", handler.verify)
		r.Post("/verify/resend", handler.resendVerification)
	})

	return router
}

func throttle(budget limiter.Limiter) func(http.Handler) http.Handler {
	if budget == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.RateLimit(budget)
}

// # Request Payloads

type csrfRequest struct {
	CSRFToken string `json:"csrf_token"`
}

type registerRequest struct {
	CSRFToken       string `json:"csrf_token"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type loginRequest struct {
	CSRFToken string `json:"csrf_token"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

type verifyRequest struct {
	CSRFToken         string `json:"csrf_token"`
	VerificationToken string `json:"verification_token"`
}

type unlockRequest struct {
	CSRFToken   string `json:"csrf_token"`
	Username    string `json:"username"`
	UnlockToken string `json:"unlock_token"`
}

type resetRequestRequest struct {
	CSRFToken string `json:"csrf_token"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

type resetPasswordRequest struct {
	CSRFToken          string `json:"csrf_token"`
	Username           string `json:"username"`
	Email              string `json:"email"`
	OTP                string `json:"otp"`
	Password           string `json:"password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

// # Response Payloads

// sessionResponse describes the caller after a request.
type sessionResponse struct {
	CSRFToken     string `json:"csrf_token"`
	Authenticated bool   `json:"authenticated"`
	User          *User  `json:"user,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func describe(current *session.Session, user *User) sessionResponse {
	return sessionResponse{
		CSRFToken:     csrf.Issue(current),
		Authenticated: user != nil,
		User:          user,
	}
}

/*
GET /api/v1/auth/session.

Description: Returns the CSRF token bound to the caller's session and, when
logged in, the account.

Response:
  - 200: sessionResponse
*/
func (handler *Handler) sessionInfo(writer http.ResponseWriter, request *http.Request) {
	identity := IdentityFrom(request.Context())
	respond.OK(writer, describe(identity.Session, identity.User))
}

/*
POST /api/v1/auth/register.

Request:
  - Body: registerRequest

Response:
  - 201: User: Created account (unverified)
  - 400: VALIDATION_ERROR or TOKEN_INVALID
  - 409: CONFLICT: Username or Email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity := IdentityFrom(request.Context())
	user, err := handler.authService.Register(request.Context(), identity.Session, RegisterInput{
		CSRFToken:       input.CSRFToken,
		Username:        input.Username,
		Email:           input.Email,
		Password:        input.Password,
		PasswordConfirm: input.PasswordConfirm,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
POST /api/v1/auth/login.

Description: Verifies credentials and replaces the session cookie with an
authenticated session.

Response:
  - 200: sessionResponse for the new session
  - 401: AUTHENTICATION_FAILED for every credential failure
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity := IdentityFrom(request.Context())
	promoted, user, err := handler.authService.Login(request.Context(), identity.Session, LoginInput{
		CSRFToken: input.CSRFToken,
		Username:  input.Username,
		Password:  input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	SetSessionCookie(writer, promoted, handler.cookie)
	respond.OK(writer, describe(promoted, user))
}

/*
POST /api/v1/auth/logout.

Response:
  - 200: sessionResponse for the new anonymous session
  - 400: TOKEN_INVALID
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	var input csrfRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity := IdentityFrom(request.Context())
	fresh, err := handler.authService.Logout(request.Context(), identity.Session, input.CSRFToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	SetSessionCookie(writer, fresh, handler.cookie)
	respond.OK(writer, describe(fresh, nil))
}

/*
POST /api/v1/auth/verify.

Response:
  - 200: messageResponse
  - 400: TOKEN_INVALID "Verification failed."
  - 401: UNAUTHORIZED
*/
func (handler *Handler) verify(writer http.ResponseWriter, request *http.Request) {
	var input verifyRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.authService.Verify(request.Context(), IdentityFrom(request.Context()), input.VerificationToken, input.CSRFToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: "Email verified."})
}

// POST /api/v1/auth/verify/resend.
func (handler *Handler) resendVerification(writer http.ResponseWriter, request *http.Request) {
	var input csrfRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResendVerification(request.Context(), IdentityFrom(request.Context()), input.CSRFToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: "A new verification email is on its way."})
}

/*
POST /api/v1/auth/unlock.

Response:
  - 200: messageResponse
  - 400: TOKEN_INVALID with one message for every failure
*/
func (handler *Handler) unlock(writer http.ResponseWriter, request *http.Request) {
	var input unlockRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity := IdentityFrom(request.Context())
	err := handler.authService.Unlock(request.Context(), identity.Session, UnlockInput{
		CSRFToken: input.CSRFToken,
		Username:  input.Username,
		Token:     input.UnlockToken,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: "Account unlocked."})
}

/*
POST /api/v1/auth/reset-password/request.

Response:
  - 200: messageResponse, whether or not an email was sent
*/
func (handler *Handler) requestReset(writer http.ResponseWriter, request *http.Request) {
	var input resetRequestRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity := IdentityFrom(request.Context())
	err := handler.authService.RequestReset(request.Context(), identity.Session, ResetRequestInput{
		CSRFToken: input.CSRFToken,
		Username:  input.Username,
		Email:     input.Email,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: "If the account exists and is verified, a reset token has been sent."})
}

/*
POST /api/v1/auth/reset-password.

Description: Anonymous callers reset with an emailed token. Logged in callers
change their password by supplying the current one.

Response:
  - 200: messageResponse
  - 400: TOKEN_INVALID "Failed to reset the password" or VALIDATION_ERROR
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity := IdentityFrom(request.Context())

	var err error
	if identity.IsAnonymous() {
		err = handler.authService.ResetPassword(request.Context(), identity.Session, ResetInput{
			CSRFToken:          input.CSRFToken,
			Username:           input.Username,
			Email:              input.Email,
			Token:              input.OTP,
			NewPassword:        input.NewPassword,
			NewPasswordConfirm: input.NewPasswordConfirm,
		})
	} else {
		err = handler.authService.ChangePassword(request.Context(), identity, ChangeInput{
			CSRFToken:          input.CSRFToken,
			Password:           input.Password,
			NewPassword:        input.NewPassword,
			NewPasswordConfirm: input.NewPasswordConfirm,
		})
	}
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: "Password updated."})
}
