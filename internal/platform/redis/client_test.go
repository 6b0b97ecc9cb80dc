// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	quillredis "github.com/taibuivan/quill/internal/platform/redis"
)

/*
TestNewClient connects to an in-process server and pings it.
*/
func TestNewClient(t *testing.T) {
	server := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client, err := quillredis.NewClient(context.Background(), "redis://"+server.Addr(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.NoError(t, quillredis.Ping(context.Background(), client))

	// A stopped server fails the health check.
	server.Close()
	assert.Error(t, quillredis.Ping(context.Background(), client))
}

/*
TestNewClient_InvalidURL rejects malformed connection strings.
*/
func TestNewClient_InvalidURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := quillredis.NewClient(context.Background(), "not a url", logger)
	assert.Error(t, err)
}
