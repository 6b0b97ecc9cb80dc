// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, Mailer) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/quill/internal/platform/sec"
)

// # Configuration Schema

// Config holds all runtime configuration for the Quill API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`
	PublicURL   string `env:"PUBLIC_URL"   envDefault:"http://localhost:8080"`

	// Relational Database: postgres://... or sqlite://path
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// Key-Value Cache (Redis). Optional: the auth limiter falls back to memory.
	RedisURL string `env:"REDIS_URL"`

	// Reverse proxies (CIDR or IP) whose X-Forwarded-For / X-Real-IP headers are believed.
	// Empty means clients are identified by their socket address only.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// Session settings
	Session SessionConfig `envPrefix:"SESSION_"`

	// Authentication policy
	Auth AuthConfig

	// Outbound email
	Mail MailConfig
}

// SessionConfig controls server-side session records.
type SessionConfig struct {
	// Secret is the server key mixed into every CSRF token.
	Secret        string        `env:"SECRET,required,notEmpty"`
	LifetimeHours int           `env:"LIFETIME_HOURS" envDefault:"24"`
	PurgeInterval time.Duration `env:"PURGE_INTERVAL" envDefault:"1h"`
	CookieSecure  bool          `env:"COOKIE_SECURE"  envDefault:"true"`
	// Iterations is the PBKDF2 work factor for CSRF derivation.
	Iterations int `env:"CSRF_ITERATIONS" envDefault:"310000"`
}

// AuthConfig holds lockout thresholds and token lifetimes.
type AuthConfig struct {
	MaxLoginAttempts          int           `env:"MAX_LOGIN_ATTEMPTS"                      envDefault:"10"`
	EmailVerificationLifetime int           `env:"EMAIL_VERIFICATION_TOKEN_LIFETIME_HOURS" envDefault:"2"`
	AccountLockDuration       int           `env:"ACCOUNT_LOCK_DURATION_HOURS"             envDefault:"2"`
	PasswordResetLifetime     int           `env:"PASSWORD_RESET_TOKEN_LIFETIME_HOURS"     envDefault:"1"`
	RateLimit                 int           `env:"AUTH_RATE_LIMIT"                         envDefault:"20"`
	RateWindow                time.Duration `env:"AUTH_RATE_WINDOW"                        envDefault:"1m"`
}

// MailConfig describes the SMTP relay. An empty Host writes messages to stdout.
type MailConfig struct {
	Host      string `env:"SMTP_HOST"`
	Port      int    `env:"SMTP_PORT"       envDefault:"465"`
	UseSSL    bool   `env:"SMTP_USE_SSL"    envDefault:"true"`
	Username  string `env:"SMTP_USERNAME"`
	Password  string `env:"SMTP_PASSWORD"`
	Sender    string `env:"EMAIL_SENDER"    envDefault:"no-reply@quill.local"`
	QueueSize int    `env:"MAIL_QUEUE_SIZE" envDefault:"64"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// validate rejects values that would silently weaken the auth layer.
func (c *Config) validate() error {
	var errs []error

	if c.Session.LifetimeHours <= 0 {
		errs = append(errs, errors.New("SESSION_LIFETIME_HOURS must be positive"))
	}
	if c.Session.Iterations < sec.MinIterations {
		errs = append(errs, fmt.Errorf("SESSION_CSRF_ITERATIONS must be at least %d", sec.MinIterations))
	}
	if c.Auth.MaxLoginAttempts <= 0 {
		errs = append(errs, errors.New("MAX_LOGIN_ATTEMPTS must be positive"))
	}
	if c.Auth.EmailVerificationLifetime <= 0 {
		errs = append(errs, errors.New("EMAIL_VERIFICATION_TOKEN_LIFETIME_HOURS must be positive"))
	}
	if c.Auth.AccountLockDuration <= 0 {
		errs = append(errs, errors.New("ACCOUNT_LOCK_DURATION_HOURS must be positive"))
	}
	if c.Auth.PasswordResetLifetime <= 0 {
		errs = append(errs, errors.New("PASSWORD_RESET_TOKEN_LIFETIME_HOURS must be positive"))
	}
	if c.Auth.RateLimit <= 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT must be positive"))
	}
	if c.Auth.RateWindow <= 0 {
		errs = append(errs, errors.New("AUTH_RATE_WINDOW must be positive"))
	}
	for _, proxy := range c.TrustedProxies {
		if !validProxy(proxy) {
			errs = append(errs, fmt.Errorf("TRUSTED_PROXIES entry %q is neither an IP nor a CIDR", proxy))
		}
	}
	if parsed, err := url.Parse(c.PublicURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		errs = append(errs, errors.New("PUBLIC_URL must be an absolute URL"))
	}
	if c.Mail.QueueSize <= 0 {
		errs = append(errs, errors.New("MAIL_QUEUE_SIZE must be positive"))
	}

	return errors.Join(errs...)
}

func validProxy(entry string) bool {
	entry = strings.TrimSpace(entry)
	if strings.Contains(entry, "/") {
		_, _, err := net.ParseCIDR(entry)
		return err == nil
	}
	return net.ParseIP(entry) != nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// PublicOrigin returns the scheme and host of PublicURL, as sent in the Origin header.
func (c *Config) PublicOrigin() string {
	parsed, err := url.Parse(c.PublicURL)
	if err != nil {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}
