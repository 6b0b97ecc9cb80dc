// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/quill/internal/platform/config"
)

/*
TestLoad_Defaults verifies the documented defaults when only required variables are set.
*/
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite://quill.db")
	t.Setenv("SESSION_SECRET", "secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.True(t, cfg.IsDevelopment())
	assert.Empty(t, cfg.RedisURL)

	assert.Equal(t, 24, cfg.Session.LifetimeHours)
	assert.Equal(t, time.Hour, cfg.Session.PurgeInterval)
	assert.Equal(t, 310000, cfg.Session.Iterations)
	assert.True(t, cfg.Session.CookieSecure)

	assert.Equal(t, 10, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, 2, cfg.Auth.EmailVerificationLifetime)
	assert.Equal(t, 2, cfg.Auth.AccountLockDuration)
	assert.Equal(t, 1, cfg.Auth.PasswordResetLifetime)
	assert.Equal(t, time.Minute, cfg.Auth.RateWindow)
	assert.Equal(t, 20, cfg.Auth.RateLimit)
	assert.Empty(t, cfg.TrustedProxies)

	assert.Equal(t, "http://localhost:8080", cfg.PublicOrigin())

	assert.Empty(t, cfg.Mail.Host)
	assert.Equal(t, 465, cfg.Mail.Port)
	assert.True(t, cfg.Mail.UseSSL)
}

/*
TestLoad_MissingRequired fails without the session secret.
*/
func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite://quill.db")
	t.Setenv("SESSION_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}

/*
TestLoad_RejectsWeakSettings covers the post-parse validation.
*/
func TestLoad_RejectsWeakSettings(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite://quill.db")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("SESSION_CSRF_ITERATIONS", "1000")
	t.Setenv("MAX_LOGIN_ATTEMPTS", "0")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_CSRF_ITERATIONS")
	assert.Contains(t, err.Error(), "MAX_LOGIN_ATTEMPTS")
}

/*
TestLoad_RejectsBrokenLimits covers limiter, lifetime and proxy settings that
would crash startup or disable a protection.
*/
func TestLoad_RejectsBrokenLimits(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"rate_limit_zero", "AUTH_RATE_LIMIT", "0"},
		{"rate_limit_negative", "AUTH_RATE_LIMIT", "-3"},
		{"rate_window_zero", "AUTH_RATE_WINDOW", "0s"},
		{"verification_lifetime", "EMAIL_VERIFICATION_TOKEN_LIFETIME_HOURS", "0"},
		{"lock_duration", "ACCOUNT_LOCK_DURATION_HOURS", "-1"},
		{"reset_lifetime", "PASSWORD_RESET_TOKEN_LIFETIME_HOURS", "0"},
		{"trusted_proxies", "TRUSTED_PROXIES", "10.0.0.0/8,proxy.local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "sqlite://quill.db")
			t.Setenv("SESSION_SECRET", "secret")
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

/*
TestLoad_TrustedProxies splits the comma separated list.
*/
func TestLoad_TrustedProxies(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite://quill.db")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,192.0.2.10")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.10"}, cfg.TrustedProxies)
}

/*
TestPublicOrigin strips the path from the public URL.
*/
func TestPublicOrigin(t *testing.T) {
	cfg := &config.Config{PublicURL: "https://quill.example.com/app/"}
	assert.Equal(t, "https://quill.example.com", cfg.PublicOrigin())
}
