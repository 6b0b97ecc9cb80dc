// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/taibuivan/quill/internal/platform/constants"
	"github.com/taibuivan/quill/internal/platform/dberr"
	"github.com/taibuivan/quill/internal/platform/sec"
	"github.com/taibuivan/quill/pkg/timestamp"
)

// Config holds the session policy.
type Config struct {
	// Secret is mixed into every CSRF token.
	Secret []byte
	// Iterations is the PBKDF2 work factor for CSRF derivation.
	Iterations int
	// LifetimeHours is how long a new session stays valid.
	LifetimeHours int
}

// Manager creates, resolves and ends sessions.
type Manager struct {
	repository Repository
	config     Config
	random     sec.RandomSource
}

// NewManager creates a session manager.
func NewManager(repository Repository, config Config) *Manager {
	return &Manager{
		repository: repository,
		config:     config,
		random:     sec.RandomBytes,
	}
}

/*
Create persists a new session for userID (0 for anonymous).

The identifier is drawn until no stored session uses it. The insert is the
final authority: a collision at insert time draws again.

Returns:
  - *Session: the stored session
  - error: storage failures or [sec.ErrIdentifierExhausted]
*/
func (manager *Manager) Create(ctx context.Context, userID int64) (*Session, error) {
	for range constants.MaxIdentifierAttempts {
		id, err := sec.UniqueBytes(manager.random, constants.SessionIDBytes, constants.MaxIdentifierAttempts, func(candidate []byte) (bool, error) {
			return manager.exists(ctx, candidate)
		})
		if err != nil {
			return nil, fmt.Errorf("session_id_failed: %w", err)
		}

		session := &Session{
			ID:        id,
			CSRFToken: sec.DeriveCSRFToken(id, manager.config.Secret, manager.config.Iterations),
			Expires:   timestamp.Now(manager.config.LifetimeHours),
			UserID:    userID,
		}

		err = manager.repository.Insert(ctx, session)
		if errors.Is(err, dberr.ErrUniqueViolation) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("session_insert_failed: %w", err)
		}
		return session, nil
	}

	return nil, fmt.Errorf("session_id_failed: %w", sec.ErrIdentifierExhausted)
}

func (manager *Manager) exists(ctx context.Context, id []byte) (bool, error) {
	_, err := manager.repository.Find(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, dberr.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

/*
Load resolves the identifier presented by the client.

A missing, malformed, unknown or expired identifier yields a fresh anonymous
session. Stale rows are left in place.

Parameters:
  - rawID: hex identifier from the cookie, possibly empty

Returns:
  - *Session: always usable unless storage fails
  - bool: true when a new session was created
  - error: storage failures only
*/
func (manager *Manager) Load(ctx context.Context, rawID string) (*Session, bool, error) {
	id, err := hex.DecodeString(rawID)
	if rawID == "" || err != nil {
		return manager.fresh(ctx)
	}

	session, err := manager.repository.Find(ctx, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return manager.fresh(ctx)
	}
	if err != nil {
		return nil, false, fmt.Errorf("session_load_failed: %w", err)
	}

	if session.Expired() {
		return manager.fresh(ctx)
	}

	return session, false, nil
}

func (manager *Manager) fresh(ctx context.Context) (*Session, bool, error) {
	session, err := manager.Create(ctx, AnonymousUserID)
	if err != nil {
		return nil, false, err
	}
	return session, true, nil
}

// End deletes the session. Ending an unknown session is a no-op.
func (manager *Manager) End(ctx context.Context, id []byte) error {
	return manager.repository.Delete(ctx, id)
}

// EndAll deletes every session of userID. Used when an account changes privilege or is removed.
func (manager *Manager) EndAll(ctx context.Context, userID int64) (int64, error) {
	return manager.repository.DeleteByUser(ctx, userID)
}

/*
Promote replaces session id with a new authenticated session for userID.
Callers run it inside a transaction together with the login bookkeeping.
*/
func (manager *Manager) Promote(ctx context.Context, id []byte, userID int64) (*Session, error) {
	if err := manager.End(ctx, id); err != nil {
		return nil, err
	}
	return manager.Create(ctx, userID)
}

// PurgeExpired deletes expired sessions and reports how many were removed.
func (manager *Manager) PurgeExpired(ctx context.Context) (int, error) {
	sessions, err := manager.repository.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("session_purge_failed: %w", err)
	}

	purged := 0
	for _, session := range sessions {
		if !session.Expired() {
			continue
		}
		if err := manager.repository.Delete(ctx, session.ID); err != nil {
			return purged, fmt.Errorf("session_purge_failed: %w", err)
		}
		purged++
	}
	return purged, nil
}
