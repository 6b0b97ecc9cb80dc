// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/quill/internal/platform/constants"
	"github.com/taibuivan/quill/internal/platform/limiter"
	"github.com/taibuivan/quill/internal/users/otp"
)

type client struct {
	t      *testing.T
	http   *http.Client
	server *httptest.Server
}

func newClient(t *testing.T, f *fixture, throttles Throttles) *client {
	t.Helper()

	cookie := CookieConfig{Secure: false}
	router := chi.NewRouter()
	router.Use(Sessions(f.sessions, f.users, cookie))
	router.Mount("/api/v1/auth", NewHandler(f.service, cookie, throttles).Routes())
	router.With(RequireAdmin).Get("/admin-only", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &client{t: t, http: &http.Client{Jar: jar}, server: server}
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&payload).Encode(body))
	}

	request, err := http.NewRequest(method, c.server.URL+path, &payload)
	require.NoError(c.t, err)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.http.Do(request)
	require.NoError(c.t, err)
	defer response.Body.Close()

	decoded := map[string]any{}
	_ = json.NewDecoder(response.Body).Decode(&decoded)
	return response.StatusCode, decoded
}

// csrf fetches the token bound to the client's current session.
func (c *client) csrf() (string, bool) {
	c.t.Helper()
	status, body := c.do(http.MethodGet, "/api/v1/auth/session", nil)
	require.Equal(c.t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	return data["csrf_token"].(string), data["authenticated"].(bool)
}

/*
TestHTTP_SessionCookie issues an HttpOnly cookie once and keeps the session stable.
*/
func TestHTTP_SessionCookie(t *testing.T) {
	f := newFixture(t, 10)
	c := newClient(t, f, Throttles{})

	response, err := http.Get(c.server.URL + "/api/v1/auth/session")
	require.NoError(t, err)
	_ = response.Body.Close()

	var sessionCookie *http.Cookie
	for _, cookie := range response.Cookies() {
		if cookie.Name == constants.SessionCookieName {
			sessionCookie = cookie
		}
	}
	require.NotNil(t, sessionCookie)
	assert.True(t, sessionCookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, sessionCookie.SameSite)
	assert.Equal(t, "/", sessionCookie.Path)

	first, authenticated := c.csrf()
	assert.False(t, authenticated)
	second, _ := c.csrf()
	assert.Equal(t, first, second)
}

/*
TestHTTP_AccountFlow registers, logs in, verifies and logs out over HTTP.
*/
func TestHTTP_AccountFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	c := newClient(t, f, Throttles{})

	// 1. Guarded endpoints reject anonymous callers
	status, body := c.do(http.MethodPost, "/api/v1/auth/verify", map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body["code"])

	// 2. Register
	token, _ := c.csrf()
	status, _ = c.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"csrf_token":       token,
		"username":         "olga",
		"email":            "olga@example.com",
		"password":         testPassword,
		"password_confirm": testPassword,
	})
	require.Equal(t, http.StatusCreated, status)

	// 3. Login rotates the session and the CSRF token
	status, body = c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"csrf_token": token, "username": "olga", "password": testPassword,
	})
	require.Equal(t, http.StatusOK, status)
	loginToken := body["data"].(map[string]any)["csrf_token"].(string)
	assert.NotEqual(t, token, loginToken)

	current, authenticated := c.csrf()
	assert.True(t, authenticated)
	assert.Equal(t, loginToken, current)

	// 4. Unverified accounts are stopped by the verified gate
	status, body = c.do(http.MethodGet, "/admin-only", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "VERIFICATION_REQUIRED", body["code"])

	// 5. Verify
	user, err := f.users.FindByUsername(ctx, "olga")
	require.NoError(t, err)
	verification := f.token(t, user.ID, otp.EmailVerification)

	status, body = c.do(http.MethodPost, "/api/v1/auth/verify", map[string]string{
		"csrf_token": current, "verification_token": "00",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, messageVerificationFailed, body["error"])

	status, _ = c.do(http.MethodPost, "/api/v1/auth/verify", map[string]string{
		"csrf_token": current, "verification_token": verification.ValueHex(),
	})
	assert.Equal(t, http.StatusOK, status)

	// 6. Verified but not admin
	status, body = c.do(http.MethodGet, "/admin-only", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])

	// 7. Logout
	status, _ = c.do(http.MethodPost, "/api/v1/auth/logout", map[string]string{"csrf_token": current})
	require.Equal(t, http.StatusOK, status)
	_, authenticated = c.csrf()
	assert.False(t, authenticated)
}

/*
TestHTTP_DeletedUser downgrades a session whose account was removed.
*/
func TestHTTP_DeletedUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	user := f.createUser(t, "pete", true)
	c := newClient(t, f, Throttles{})

	token, _ := c.csrf()
	status, _ := c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"csrf_token": token, "username": "pete", "password": testPassword,
	})
	require.Equal(t, http.StatusOK, status)

	require.NoError(t, f.users.Delete(ctx, user.ID))

	_, authenticated := c.csrf()
	assert.False(t, authenticated)
}

/*
TestHTTP_LoginThrottle answers 429 once the per-IP login budget is spent.
*/
func TestHTTP_LoginThrottle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	f := newFixture(t, 10)
	c := newClient(t, f, Throttles{Login: limiter.PerWindow(ctx, 2, time.Minute)})

	token, _ := c.csrf()
	login := map[string]string{"csrf_token": token, "username": "nobody", "password": testPassword}

	for range 2 {
		status, body := c.do(http.MethodPost, "/api/v1/auth/login", login)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "AUTHENTICATION_FAILED", body["code"])
	}

	status, body := c.do(http.MethodPost, "/api/v1/auth/login", login)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", body["code"])
}
