// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type recordingTransport struct {
	mu        sync.Mutex
	delivered []envelope
	block     chan struct{}
	err       error
}

func (transport *recordingTransport) Deliver(_ context.Context, recipient string, message Message) error {
	if transport.block != nil {
		<-transport.block
	}
	transport.mu.Lock()
	defer transport.mu.Unlock()
	transport.delivered = append(transport.delivered, envelope{recipient: recipient, message: message})
	return transport.err
}

func (transport *recordingTransport) count() int {
	transport.mu.Lock()
	defer transport.mu.Unlock()
	return len(transport.delivered)
}

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

/*
TestDispatcher_DrainsOnClose delivers every queued message before Close returns.
*/
func TestDispatcher_DrainsOnClose(t *testing.T) {
	transport := &recordingTransport{}
	dispatcher := NewDispatcher(transport, 8, discardLogger())

	for i := 0; i < 5; i++ {
		dispatcher.Send(context.Background(), "alice@mail.com", Message{Subject: "hello"})
	}
	dispatcher.Close()

	assert.Equal(t, 5, transport.count())
	assert.Zero(t, dispatcher.Dropped())

	// Sends after Close are ignored.
	dispatcher.Send(context.Background(), "alice@mail.com", Message{Subject: "late"})
	dispatcher.Close()
	assert.Equal(t, 5, transport.count())
}

/*
TestDispatcher_DropsWhenFull never blocks the caller.
*/
func TestDispatcher_DropsWhenFull(t *testing.T) {
	transport := &recordingTransport{block: make(chan struct{})}
	dispatcher := NewDispatcher(transport, 1, discardLogger())

	// The worker takes the first message and blocks; the second fills the queue.
	dispatcher.Send(context.Background(), "a@mail.com", Message{Subject: "1"})
	require.Eventually(t, func() bool { return len(dispatcher.queue) == 0 }, timeout, tick)
	dispatcher.Send(context.Background(), "a@mail.com", Message{Subject: "2"})
	dispatcher.Send(context.Background(), "a@mail.com", Message{Subject: "3"})

	assert.EqualValues(t, 1, dispatcher.Dropped())

	close(transport.block)
	dispatcher.Close()
	assert.Equal(t, 2, transport.count())
}

/*
TestDispatcher_LogsFailures keeps running after a transport error.
*/
func TestDispatcher_LogsFailures(t *testing.T) {
	var logs bytes.Buffer
	var logsMu sync.Mutex
	logger := slog.New(slog.NewTextHandler(&lockedWriter{mu: &logsMu, writer: &logs}, nil))

	transport := &recordingTransport{err: errors.New("relay refused")}
	dispatcher := NewDispatcher(transport, 4, logger)

	dispatcher.Send(context.Background(), "a@mail.com", Message{Subject: "1"})
	dispatcher.Send(context.Background(), "a@mail.com", Message{Subject: "2"})
	dispatcher.Close()

	assert.Equal(t, 2, transport.count())
	logsMu.Lock()
	defer logsMu.Unlock()
	assert.Contains(t, logs.String(), "mail_delivery_failed")
	assert.Contains(t, logs.String(), "relay refused")
}

/*
TestStream_Deliver writes headers and body.
*/
func TestStream_Deliver(t *testing.T) {
	var out bytes.Buffer
	transport := NewStream(&out, "no-reply@quill.local")

	err := transport.Deliver(context.Background(), "alice@mail.com", Message{
		Subject:     "Verify your account",
		Body:        "<p>token</p>",
		ContentType: ContentTypeHTML,
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "From: no-reply@quill.local\n")
	assert.Contains(t, out.String(), "To: alice@mail.com\n")
	assert.Contains(t, out.String(), "Subject: Verify your account\n")
	assert.Contains(t, out.String(), "Content-Type: text/html; charset=UTF-8\n")
	assert.Contains(t, out.String(), "<p>token</p>")
}

/*
TestSMTP_Compose builds the go-mail message and rejects bad addresses.
*/
func TestSMTP_Compose(t *testing.T) {
	transport := NewSMTP(SMTPConfig{Host: "smtp.example.com", Port: 465, Sender: "no-reply@quill.local"})

	msg, err := transport.compose("alice@mail.com", Message{Subject: "Hi", Body: "body", ContentType: ContentTypeHTML})
	require.NoError(t, err)

	recipients, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"alice@mail.com"}, recipients)
	assert.Equal(t, []string{"Hi"}, msg.GetGenHeader(mail.HeaderSubject))

	_, err = transport.compose("not an address", Message{Subject: "Hi"})
	assert.Error(t, err)

	bad := NewSMTP(SMTPConfig{Sender: "broken"})
	_, err = bad.compose("alice@mail.com", Message{Subject: "Hi"})
	assert.Error(t, err)
}

type lockedWriter struct {
	mu     *sync.Mutex
	writer io.Writer
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writer.Write(p)
}
