// Package mailer delivers account lifecycle emails.
package mailer

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Template names, also used as metric labels.
const (
	TemplateVerification  = "verification"
	TemplatePasswordReset = "password_reset"
	TemplateAccountLocked = "account_locked"
	TemplateWelcome       = "welcome"
)

// Mailer is the outbound surface the identity service depends on.
type Mailer interface {
	SendVerification(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
	SendAccountLocked(ctx context.Context, email string, unlockAt time.Time) error
	SendWelcome(ctx context.Context, email, name string) error
}

// Message is a rendered email ready for a transport.
type Message struct {
	Template string
	To       string
	Subject  string
	Text     string
	Link     string
}

// renderer builds messages with links rooted at the frontend URL.
type renderer struct {
	baseURL string
}

func newRenderer(frontendURL string) renderer {
	base := strings.TrimRight(strings.TrimSpace(frontendURL), "/")
	if base == "" {
		base = "http://localhost:8080"
	}
	return renderer{baseURL: base}
}

func (r renderer) link(path, token string) string {
	return fmt.Sprintf("%s%s?token=%s", r.baseURL, path, url.QueryEscape(token))
}

func (r renderer) verification(email, token string) Message {
	link := r.link("/auth/verify-email", token)
	return Message{
		Template: TemplateVerification,
		To:       email,
		Subject:  "Verify Your StreamFlix Email",
		Link:     link,
		Text: "Please verify your email by clicking the link below:\n" + link +
			"\n\nThis link expires in 24 hours.",
	}
}

func (r renderer) passwordReset(email, token string) Message {
	link := r.link("/auth/reset-password", token)
	return Message{
		Template: TemplatePasswordReset,
		To:       email,
		Subject:  "Reset Your StreamFlix Password",
		Link:     link,
		Text: "Click the link below to reset your password:\n" + link +
			"\n\nThis link expires in 1 hour.",
	}
}

func (r renderer) accountLocked(email string, unlockAt time.Time) Message {
	return Message{
		Template: TemplateAccountLocked,
		To:       email,
		Subject:  "Your StreamFlix Account Has Been Locked",
		Text: "Your account has been temporarily locked due to multiple failed login attempts.\n\n" +
			"Account will be unlocked at: " + unlockAt.UTC().Format(time.RFC3339),
	}
}

func (r renderer) welcome(email, name string) Message {
	if strings.TrimSpace(name) == "" {
		name = "User"
	}
	return Message{
		Template: TemplateWelcome,
		To:       email,
		Subject:  "Welcome to StreamFlix",
		Text:     fmt.Sprintf("Hello %s,\n\nWelcome to StreamFlix! Your account has been successfully created.", name),
	}
}
