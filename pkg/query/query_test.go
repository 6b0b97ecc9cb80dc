// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/quill/pkg/query"
)

/*
TestSelect_Build renders SELECT for both dialects.
*/
func TestSelect_Build(t *testing.T) {
	tests := []struct {
		name    string
		builder *query.SelectBuilder
		dialect query.Dialect
		sql     string
		args    []any
	}{
		{
			name:    "all_columns_no_predicate",
			builder: query.Select("users"),
			dialect: query.Postgres,
			sql:     "SELECT * FROM users",
		},
		{
			name:    "postgres_predicates",
			builder: query.Select("otps", "id", "value").Where(query.Eq("user_id", 7), query.Eq("type", "email_token")),
			dialect: query.Postgres,
			sql:     "SELECT id, value FROM otps WHERE user_id = $1 AND type = $2",
			args:    []any{7, "email_token"},
		},
		{
			name:    "sqlite_predicates",
			builder: query.Select("otps", "id").Where(query.Eq("user_id", 7), query.Eq("type", "email_token")),
			dialect: query.SQLite,
			sql:     "SELECT id FROM otps WHERE user_id = ? AND type = ?",
			args:    []any{7, "email_token"},
		},
		{
			name:    "order_limit_offset",
			builder: query.Select("users", "id").OrderBy("id", true).Limit(20).Offset(40),
			dialect: query.SQLite,
			sql:     "SELECT id FROM users ORDER BY id DESC LIMIT 20 OFFSET 40",
		},
		{
			name:    "row_lock_postgres",
			builder: query.Select("users", "id").Where(query.Eq("username", "ann")).ForUpdate(),
			dialect: query.Postgres,
			sql:     "SELECT id FROM users WHERE username = $1 FOR UPDATE",
			args:    []any{"ann"},
		},
		{
			name:    "row_lock_dropped_on_sqlite",
			builder: query.Select("users", "id").Where(query.Eq("username", "ann")).ForUpdate(),
			dialect: query.SQLite,
			sql:     "SELECT id FROM users WHERE username = ?",
			args:    []any{"ann"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			statement, err := tt.builder.Build(tt.dialect)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, statement.SQL)
			assert.Equal(t, tt.args, statement.Args)
		})
	}
}

/*
TestInsert_Build checks column order, placeholders and RETURNING.
*/
func TestInsert_Build(t *testing.T) {
	statement, err := query.Insert("posts").
		Values(query.Set("created", "10:00 01.01.2026"), query.Set("content", "hi"), query.Set("author_id", int64(3))).
		Returning("id").
		Build(query.Postgres)

	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO posts (created, content, author_id) VALUES ($1, $2, $3) RETURNING id", statement.SQL)
	assert.Equal(t, []any{"10:00 01.01.2026", "hi", int64(3)}, statement.Args)

	_, err = query.Insert("posts").Build(query.Postgres)
	assert.ErrorIs(t, err, query.ErrNoValues)
}

/*
TestUpdate_Build checks that SET arguments precede WHERE arguments.
*/
func TestUpdate_Build(t *testing.T) {
	statement, err := query.Update("users").
		Set("login_attempts", 0).
		Set("is_locked", false).
		Where(query.Eq("id", int64(9))).
		Build(query.Postgres)

	require.NoError(t, err)
	assert.Equal(t, "UPDATE users SET login_attempts = $1, is_locked = $2 WHERE id = $3", statement.SQL)
	assert.Equal(t, []any{0, false, int64(9)}, statement.Args)

	_, err = query.Update("users").Where(query.Eq("id", 1)).Build(query.SQLite)
	assert.ErrorIs(t, err, query.ErrNoValues)
}

/*
TestDeleteAndCount_Build covers the remaining statement kinds.
*/
func TestDeleteAndCount_Build(t *testing.T) {
	statement, err := query.Delete("sessions").Where(query.Eq("user_id", int64(4))).Build(query.SQLite)
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM sessions WHERE user_id = ?", statement.SQL)

	statement, err = query.Delete("sessions").Build(query.SQLite)
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM sessions", statement.SQL)

	statement, err = query.Count("users").Where(query.Eq("is_admin", true)).Build(query.Postgres)
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM users WHERE is_admin = $1", statement.SQL)
}

/*
TestBuild_RejectsInvalidIdentifiers makes sure names are never spliced unchecked.
*/
func TestBuild_RejectsInvalidIdentifiers(t *testing.T) {
	builders := map[string]interface {
		Build(query.Dialect) (query.Statement, error)
	}{
		"table":     query.Select("users; DROP TABLE users"),
		"column":    query.Select("users", "id, password"),
		"predicate": query.Select("users").Where(query.Eq("1=1 OR id", 1)),
		"order":     query.Select("users").OrderBy("id DESC", false),
		"insert":    query.Insert("users").Values(query.Set("na-me", "x")),
		"update":    query.Update("users").Set("a b", 1),
		"returning": query.Insert("users").Values(query.Set("id", 1)).Returning("*"),
		"delete":    query.Delete("").Where(query.Eq("id", 1)),
	}

	for name, builder := range builders {
		t.Run(name, func(t *testing.T) {
			_, err := builder.Build(query.Postgres)
			assert.ErrorIs(t, err, query.ErrInvalidIdentifier)
		})
	}

	assert.True(t, query.ValidIdentifier("auth.users"))
	assert.False(t, query.ValidIdentifier("auth.users.id"))
}
