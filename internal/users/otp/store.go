// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package otp

import "context"

// # Token Data Access

// Repository defines the data access contract for one-time tokens.
type Repository interface {

	/*
		Insert persists a new token and returns its generated id.

		Returns:
		  - int64: row id
		  - error: dberr.ErrUniqueViolation when the value is taken
	*/
	Insert(context context.Context, token *OTP) (int64, error)

	/*
		Find returns the token of a user for one purpose.

		Returns:
		  - *OTP: Hydrated entity
		  - error: dberr.ErrNotFound or database errors
	*/
	Find(context context.Context, userID int64, tokenType Type) (*OTP, error)

	// ExistsValue reports whether any token has the given value.
	ExistsValue(context context.Context, value []byte) (bool, error)

	// Delete removes one token by id.
	Delete(context context.Context, id int64) error

	// DeleteFor removes every token of a user for one purpose.
	DeleteFor(context context.Context, userID int64, tokenType Type) error

	// List returns every stored token. Used by the janitor.
	List(context context.Context) ([]*OTP, error)
}
