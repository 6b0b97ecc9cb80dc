// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"strings"

	"github.com/taibuivan/quill/internal/platform/ctxutil"
	"github.com/taibuivan/quill/internal/platform/mailer"
	"github.com/taibuivan/quill/internal/users/otp"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Sender queues a message for delivery. [mailer.Dispatcher] satisfies it.
type Sender interface {
	Send(ctx context.Context, recipient string, message mailer.Message)
}

// Notifier renders account emails and hands them to a [Sender].
type Notifier struct {
	sender    Sender
	publicURL string
}

// NewNotifier creates a notifier whose links point below publicURL.
func NewNotifier(sender Sender, publicURL string) *Notifier {
	return &Notifier{sender: sender, publicURL: strings.TrimRight(publicURL, "/")}
}

type emailData struct {
	Username string
	Token    string
	Expires  string
	Link     string
}

// Verification sends the email confirmation token.
func (notifier *Notifier) Verification(ctx context.Context, user *User, token *otp.OTP) {
	notifier.send(ctx, user, "Verify your Quill account", "verification.html", token,
		notifier.link("/verify", url.Values{"token": {token.ValueHex()}}))
}

// AccountLocked sends the unlock token after a lockout.
func (notifier *Notifier) AccountLocked(ctx context.Context, user *User, token *otp.OTP) {
	notifier.send(ctx, user, "Your Quill account is locked", "account_locked.html", token,
		notifier.link("/unlock", url.Values{"username": {user.Username}, "token": {token.ValueHex()}}))
}

// PasswordReset sends the password reset token.
func (notifier *Notifier) PasswordReset(ctx context.Context, user *User, token *otp.OTP) {
	notifier.send(ctx, user, "Reset your Quill password", "password_reset.html", token,
		notifier.link("/reset-password", url.Values{"username": {user.Username}, "token": {token.ValueHex()}}))
}

func (notifier *Notifier) send(ctx context.Context, user *User, subject, name string, token *otp.OTP, link string) {
	body, err := render(name, emailData{
		Username: user.Username,
		Token:    token.ValueHex(),
		Expires:  token.Expires.String(),
		Link:     link,
	})
	if err != nil {
		ctxutil.GetLogger(ctx).Error("mail_render_failed",
			slog.String("template", name),
			slog.Any("error", err),
		)
		return
	}

	notifier.sender.Send(ctx, user.Email, mailer.Message{
		Subject:     subject,
		Body:        body,
		ContentType: mailer.ContentTypeHTML,
	})
}

func (notifier *Notifier) link(path string, values url.Values) string {
	return notifier.publicURL + path + "?" + values.Encode()
}

func render(name string, data emailData) (string, error) {
	var buffer bytes.Buffer
	if err := templates.ExecuteTemplate(&buffer, name, data); err != nil {
		return "", fmt.Errorf("auth_render_failed: %w", err)
	}
	return buffer.String(), nil
}
