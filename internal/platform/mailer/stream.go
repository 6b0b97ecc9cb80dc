// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailer

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Stream writes each message to an io.Writer instead of sending it.
type Stream struct {
	mu     sync.Mutex
	writer io.Writer
	sender string
}

// NewStream creates a transport writing to writer.
func NewStream(writer io.Writer, sender string) *Stream {
	return &Stream{writer: writer, sender: sender}
}

// Deliver implements [Transport].
func (transport *Stream) Deliver(_ context.Context, recipient string, message Message) error {
	transport.mu.Lock()
	defer transport.mu.Unlock()

	_, err := fmt.Fprintf(transport.writer,
		"From: %s\nTo: %s\nSubject: %s\nContent-Type: %s; charset=UTF-8\n\n%s\n\n",
		transport.sender, recipient, message.Subject, message.ContentType, message.Body,
	)
	if err != nil {
		return fmt.Errorf("mailer_stream_failed: %w", err)
	}
	return nil
}
