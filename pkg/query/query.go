// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package query builds parameterized SQL statements for a small set of table
operations.

It is not an ORM. Every statement targets one table, and every predicate is a
conjunction of column equalities. Values never appear in the SQL text; they
travel in [Statement.Args] and are bound by the driver.

Usage:

	statement, err := query.Select("sessions", "session_id", "expires").
	    Where(query.Eq("session_id", id)).
	    Build(query.Postgres)

Identifiers (table and column names) are validated against a strict pattern so
that a caller can never splice arbitrary text into a statement.
*/
package query

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrInvalidIdentifier is returned when a table or column name fails validation.
	ErrInvalidIdentifier = errors.New("query: invalid identifier")

	// ErrNoValues is returned by INSERT and UPDATE builders with nothing to write.
	ErrNoValues = errors.New("query: no values")
)

// identifierPattern allows an optional schema qualifier: `users` or `auth.users`.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// # Dialects

// Dialect selects placeholder syntax and optional clauses.
type Dialect int

const (
	// Postgres uses $1, $2, ... placeholders and supports row locks.
	Postgres Dialect = iota
	// SQLite uses ? placeholders. Writers are serialized by the engine.
	SQLite
)

// String returns the dialect name.
func (dialect Dialect) String() string {
	switch dialect {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// Placeholder renders the n-th (1-based) bind parameter.
func (dialect Dialect) Placeholder(n int) string {
	if dialect == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// SupportsRowLocks reports whether SELECT ... FOR UPDATE is available.
func (dialect Dialect) SupportsRowLocks() bool {
	return dialect == Postgres
}

// # Statement Parts

// Statement is rendered SQL plus its positional arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Pair is a column and a value. It is used both for equality predicates and for assignments.
type Pair struct {
	Column string
	Value  any
}

// Eq builds an equality predicate.
func Eq(column string, value any) Pair {
	return Pair{Column: column, Value: value}
}

// Set builds an assignment for INSERT and UPDATE.
func Set(column string, value any) Pair {
	return Pair{Column: column, Value: value}
}

// ValidIdentifier reports whether name is safe to splice into SQL.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

func checkIdentifiers(names ...string) error {
	for _, name := range names {
		if !ValidIdentifier(name) {
			return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
		}
	}
	return nil
}

// args accumulates bind values and renders their placeholders.
type args struct {
	dialect Dialect
	values  []any
}

func (a *args) bind(value any) string {
	a.values = append(a.values, value)
	return a.dialect.Placeholder(len(a.values))
}

// where renders ` WHERE a = $1 AND b = $2`, or nothing for an empty predicate.
func (a *args) where(predicates []Pair) (string, error) {
	if len(predicates) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(predicates))
	for _, predicate := range predicates {
		if err := checkIdentifiers(predicate.Column); err != nil {
			return "", err
		}
		clauses = append(clauses, predicate.Column+" = "+a.bind(predicate.Value))
	}

	return " WHERE " + strings.Join(clauses, " AND "), nil
}
