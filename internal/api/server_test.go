// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/quill/internal/api"
	"github.com/taibuivan/quill/internal/blog/post"
	"github.com/taibuivan/quill/internal/platform/config"
	"github.com/taibuivan/quill/internal/platform/database/databasetest"
	"github.com/taibuivan/quill/internal/platform/limiter"
	"github.com/taibuivan/quill/internal/platform/mailer"
	"github.com/taibuivan/quill/internal/platform/middleware"
	"github.com/taibuivan/quill/internal/platform/sec"
	"github.com/taibuivan/quill/internal/users/admin"
	"github.com/taibuivan/quill/internal/users/auth"
	"github.com/taibuivan/quill/internal/users/otp"
	"github.com/taibuivan/quill/internal/users/session"
)

type discardSender struct{}

func (discardSender) Send(context.Context, string, mailer.Message) {}

func newServer(t *testing.T, deps api.HealthDependencies) *httptest.Server {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := databasetest.Open(t)
	if deps.CheckDatabase == nil {
		deps.CheckDatabase = db.Ping
	}

	sessions := session.NewManager(session.NewRepository(db), session.Config{
		Secret:        []byte("test-secret"),
		Iterations:    sec.MinIterations,
		LifetimeHours: 24,
	})
	users := auth.NewUserRepository(db)
	service := auth.NewService(db, users, sessions, otp.NewManager(otp.NewRepository(db)),
		auth.NewNotifier(discardSender{}, "http://quill.test"),
		auth.Policy{MaxLoginAttempts: 3, EmailVerificationLifetime: 2, AccountLockDuration: 2, PasswordResetLifetime: 1},
	)

	open := limiter.PerWindow(ctx, 100, time.Minute)
	cookie := auth.CookieConfig{}
	liveness, readiness := api.NewHealthHandlers(deps, logger)

	proxies, err := middleware.NewProxyTrust(nil)
	require.NoError(t, err)

	server := api.NewServer(ctx, &config.Config{ServerPort: "0", Environment: "development"}, logger, proxies, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Sessions:  auth.Sessions(sessions, users, cookie),
		Auth:      auth.NewHandler(service, cookie, auth.Throttles{Register: open, Login: open, Unlock: open, Reset: open}),
		Posts:     post.NewHandler(post.NewService(post.NewRepository(db), users)),
		Admin:     admin.NewHandler(admin.NewService(db, users, sessions)),
	})

	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)
	return httpServer
}

func call(t *testing.T, client *http.Client, method, url string, body any) (int, map[string]any) {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	request, err := http.NewRequest(method, url, &payload)
	require.NoError(t, err)
	request.Header.Set("Content-Type", "application/json")

	response, err := client.Do(request)
	require.NoError(t, err)
	defer response.Body.Close()

	decoded := map[string]any{}
	_ = json.NewDecoder(response.Body).Decode(&decoded)
	return response.StatusCode, decoded
}

func errorCode(body map[string]any) string {
	code, _ := body["code"].(string)
	return code
}

/*
TestHealth covers liveness and readiness including a failing dependency.
*/
func TestHealth(t *testing.T) {
	// 1. Healthy
	server := newServer(t, api.HealthDependencies{})
	status, body := call(t, server.Client(), http.MethodGet, server.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["data"].(map[string]any)["status"])

	status, body = call(t, server.Client(), http.MethodGet, server.URL+"/ready", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["data"].(map[string]any)["status"])

	// 2. Degraded cache
	degraded := newServer(t, api.HealthDependencies{
		CheckCache: func(context.Context) error { return errors.New("connection refused") },
	})
	status, body = call(t, degraded.Client(), http.MethodGet, degraded.URL+"/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "degraded", body["data"].(map[string]any)["status"])
}

/*
TestRoutes checks that every route group is mounted behind the session layer.
*/
func TestRoutes(t *testing.T) {
	server := newServer(t, api.HealthDependencies{})
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	// 1. Session endpoint issues a cookie and a CSRF token
	status, body := call(t, client, http.MethodGet, server.URL+"/api/v1/auth/session", nil)
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.False(t, data["authenticated"].(bool))
	csrfToken := data["csrf_token"].(string)
	assert.NotEmpty(t, csrfToken)

	// 2. Anonymous visitors are rejected by the guarded groups
	status, body = call(t, client, http.MethodGet, server.URL+"/api/v1/posts", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, _ = call(t, client, http.MethodGet, server.URL+"/api/v1/admin/users", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// 3. A fresh account can log in but is unverified
	status, _ = call(t, client, http.MethodPost, server.URL+"/api/v1/auth/register", map[string]string{
		"csrf_token":       csrfToken,
		"username":         "alice",
		"email":            "alice@example.com",
		"password":         "correct-horse-battery",
		"password_confirm": "correct-horse-battery",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body = call(t, client, http.MethodPost, server.URL+"/api/v1/auth/login", map[string]string{
		"csrf_token": csrfToken,
		"username":   "alice",
		"password":   "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, body["data"].(map[string]any)["authenticated"].(bool))

	status, body = call(t, client, http.MethodGet, server.URL+"/api/v1/posts", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "VERIFICATION_REQUIRED", errorCode(body))

	// 4. Unknown routes
	status, _ = call(t, client, http.MethodGet, server.URL+"/api/v1/nothing", nil)
	assert.Equal(t, http.StatusNotFound, status)
}
