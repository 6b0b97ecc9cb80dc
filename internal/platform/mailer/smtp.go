// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPConfig describes the relay.
type SMTPConfig struct {
	Host     string
	Port     int
	UseSSL   bool
	Username string
	Password string
	Sender   string
}

// SMTP delivers through a relay, opening one connection per message.
type SMTP struct {
	config SMTPConfig
}

// NewSMTP creates an SMTP transport.
func NewSMTP(config SMTPConfig) *SMTP {
	return &SMTP{config: config}
}

// Deliver implements [Transport].
func (transport *SMTP) Deliver(ctx context.Context, recipient string, message Message) error {
	msg, err := transport.compose(recipient, message)
	if err != nil {
		return err
	}

	options := []mail.Option{mail.WithPort(transport.config.Port)}
	if transport.config.UseSSL {
		options = append(options, mail.WithSSL())
	} else {
		options = append(options, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if transport.config.Username != "" {
		options = append(options,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(transport.config.Username),
			mail.WithPassword(transport.config.Password),
		)
	}

	client, err := mail.NewClient(transport.config.Host, options...)
	if err != nil {
		return fmt.Errorf("mailer_client_failed: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mailer_send_failed: %w", err)
	}
	return nil
}

func (transport *SMTP) compose(recipient string, message Message) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if err := msg.From(transport.config.Sender); err != nil {
		return nil, fmt.Errorf("mailer_sender_invalid: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return nil, fmt.Errorf("mailer_recipient_invalid: %w", err)
	}

	contentType := mail.TypeTextPlain
	if message.ContentType == ContentTypeHTML {
		contentType = mail.TypeTextHTML
	}

	msg.Subject(message.Subject)
	msg.SetBodyString(contentType, message.Body)

	return msg, nil
}
