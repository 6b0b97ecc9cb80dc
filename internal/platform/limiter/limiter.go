// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package limiter throttles requests per key (usually a client IP).

Two implementations share the [Limiter] interface:

  - [FixedWindow] counts hits in Redis, so every server instance shares one budget.
  - [Memory] keeps a token bucket per key in process, for single-node deployments
    and for running without Redis.

Account lockout in the auth service is the per-user defence. The limiter is the
per-client one and sits in front of the credential endpoints.
*/
package limiter

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable wraps backend failures. Callers decide whether to fail open.
var ErrUnavailable = errors.New("limiter: backend unavailable")

// Decision is the outcome of one [Limiter.Allow] call.
type Decision struct {
	Allowed bool
	// RetryAfter is how long the client should wait. Zero when allowed.
	RetryAfter time.Duration
}

// Limiter decides whether one more hit for key fits the budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}
