// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package databasetest provides migrated throwaway SQLite databases for tests.
package databasetest

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/quill/internal/platform/database"
	"github.com/taibuivan/quill/internal/platform/migration"
)

// Open creates a migrated SQLite database in a temporary directory.
// The pool is closed when the test ends.
func Open(t testing.TB) *database.DB {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	url := "sqlite://" + filepath.Join(t.TempDir(), "quill.db")

	require.NoError(t, migration.RunUp(url, logger))

	db, err := database.Open(context.Background(), url, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}
