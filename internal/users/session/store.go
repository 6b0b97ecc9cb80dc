// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import "context"

// # Session Data Access

// Repository defines the data access contract for sessions.
type Repository interface {

	/*
		Insert persists a new session.

		Returns:
		  - error: dberr.ErrUniqueViolation when the identifier is taken
	*/
	Insert(context context.Context, session *Session) error

	/*
		Find returns the session with the given raw identifier.

		Returns:
		  - *Session: Hydrated entity
		  - error: dberr.ErrNotFound or database errors
	*/
	Find(context context.Context, id []byte) (*Session, error)

	// Delete removes one session. Deleting a missing session is not an error.
	Delete(context context.Context, id []byte) error

	// DeleteByUser removes every session of a user and reports how many were removed.
	DeleteByUser(context context.Context, userID int64) (int64, error)

	// List returns every stored session. Used by the janitor.
	List(context context.Context) ([]*Session, error)
}
