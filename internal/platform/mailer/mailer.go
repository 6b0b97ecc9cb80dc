// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mailer delivers outbound email.

A [Message] is rendered by the caller and handed to a [Transport]. Request
handlers never talk to a transport directly: they enqueue on a [Dispatcher],
which delivers in the background so a slow relay never holds a request (or a
database transaction) open.

Transports:

  - [SMTP] relays through a mail server (go-mail).
  - [Stream] writes messages to an io.Writer, used when no relay is configured.
*/
package mailer

import (
	"context"
)

// Content types accepted by [Message.ContentType].
const (
	ContentTypeHTML  = "text/html"
	ContentTypePlain = "text/plain"
)

// Message is one rendered email.
type Message struct {
	Subject     string
	Body        string
	ContentType string
}

// Transport delivers a message to one recipient.
type Transport interface {
	Deliver(ctx context.Context, recipient string, message Message) error
}
