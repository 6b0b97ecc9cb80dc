// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package otp

import (
	"context"
	"errors"
	"fmt"

	"github.com/taibuivan/quill/internal/platform/constants"
	"github.com/taibuivan/quill/internal/platform/dberr"
	"github.com/taibuivan/quill/internal/platform/sec"
	"github.com/taibuivan/quill/pkg/timestamp"
)

// Manager issues, looks up and consumes one-time tokens.
type Manager struct {
	repository Repository
	random     sec.RandomSource
}

// NewManager creates a token manager.
func NewManager(repository Repository) *Manager {
	return &Manager{repository: repository, random: sec.RandomBytes}
}

/*
Generate stores a new token for userID valid for lifetimeHours.

Existing tokens of the same type are left alone. Flows that must keep a single
token per purpose call [Manager.Replace].

Returns:
  - *OTP: the stored token, including its id
  - error: [ErrUnknownType], storage failures or [sec.ErrIdentifierExhausted]
*/
func (manager *Manager) Generate(ctx context.Context, userID int64, tokenType Type, lifetimeHours int) (*OTP, error) {
	if !tokenType.Valid() {
		return nil, ErrUnknownType
	}

	for range constants.MaxIdentifierAttempts {
		value, err := sec.UniqueBytes(manager.random, constants.OTPBytes, constants.MaxIdentifierAttempts, func(candidate []byte) (bool, error) {
			return manager.repository.ExistsValue(ctx, candidate)
		})
		if err != nil {
			return nil, fmt.Errorf("otp_value_failed: %w", err)
		}

		token := &OTP{
			Value:   value,
			Expires: timestamp.Now(lifetimeHours),
			Type:    tokenType,
			UserID:  userID,
		}

		token.ID, err = manager.repository.Insert(ctx, token)
		if errors.Is(err, dberr.ErrUniqueViolation) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("otp_insert_failed: %w", err)
		}
		return token, nil
	}

	return nil, fmt.Errorf("otp_value_failed: %w", sec.ErrIdentifierExhausted)
}

// Replace deletes every token of the same type for userID, then generates a new one.
func (manager *Manager) Replace(ctx context.Context, userID int64, tokenType Type, lifetimeHours int) (*OTP, error) {
	if err := manager.repository.DeleteFor(ctx, userID, tokenType); err != nil {
		return nil, err
	}
	return manager.Generate(ctx, userID, tokenType, lifetimeHours)
}

/*
Lookup returns the stored token of userID for tokenType, or a [Placeholder]
when none exists. It only fails on storage errors.
*/
func (manager *Manager) Lookup(ctx context.Context, userID int64, tokenType Type) (*OTP, error) {
	token, err := manager.repository.Find(ctx, userID, tokenType)
	if errors.Is(err, dberr.ErrNotFound) {
		return Placeholder(userID, tokenType), nil
	}
	if err != nil {
		return nil, fmt.Errorf("otp_lookup_failed: %w", err)
	}
	return token, nil
}

// Validate reports whether submitted (hex) equals the token value and the token is live.
// The comparison runs in constant time and also runs for undecodable input.
func Validate(submitted string, token *OTP) bool {
	matches := sec.Equal(sec.DecodeHex(submitted), token.Value)
	return matches && !token.Expired()
}

/*
Consume applies the consumption rule after a check.

The stored row is deleted when succeeded is true or when the token has expired.
Placeholders are never deleted.
*/
func (manager *Manager) Consume(ctx context.Context, token *OTP, succeeded bool) error {
	if token.IsPlaceholder() {
		return nil
	}
	if !succeeded && !token.Expired() {
		return nil
	}
	if err := manager.repository.Delete(ctx, token.ID); err != nil {
		return fmt.Errorf("otp_consume_failed: %w", err)
	}
	return nil
}

// PurgeExpired deletes expired tokens and reports how many were removed.
func (manager *Manager) PurgeExpired(ctx context.Context) (int, error) {
	tokens, err := manager.repository.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("otp_purge_failed: %w", err)
	}

	purged := 0
	for _, token := range tokens {
		if !token.Expired() {
			continue
		}
		if err := manager.repository.Delete(ctx, token.ID); err != nil {
			return purged, fmt.Errorf("otp_purge_failed: %w", err)
		}
		purged++
	}
	return purged, nil
}
