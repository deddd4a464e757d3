package mailer

import (
	"context"
	"time"

	"github.com/angelmondragon/streamflix-backend/pkg/logger"
	"github.com/angelmondragon/streamflix-backend/pkg/metrics"
)

// LogMailer writes every message to the structured log instead of sending it.
type LogMailer struct {
	logg      *logger.Logger
	render    renderer
	metrics   *metrics.MailMetrics
	delivered func(Message)
}

// NewLogMailer returns the default development mailer.
func NewLogMailer(logg *logger.Logger, frontendURL string, m *metrics.MailMetrics) *LogMailer {
	return &LogMailer{logg: logg, render: newRenderer(frontendURL), metrics: m}
}

func (l *LogMailer) SendVerification(ctx context.Context, email, token string) error {
	return l.deliver(ctx, l.render.verification(email, token))
}

func (l *LogMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	return l.deliver(ctx, l.render.passwordReset(email, token))
}

func (l *LogMailer) SendAccountLocked(ctx context.Context, email string, unlockAt time.Time) error {
	return l.deliver(ctx, l.render.accountLocked(email, unlockAt))
}

func (l *LogMailer) SendWelcome(ctx context.Context, email, name string) error {
	return l.deliver(ctx, l.render.welcome(email, name))
}

func (l *LogMailer) deliver(ctx context.Context, msg Message) error {
	if l.logg != nil {
		fields := map[string]any{
			"mail_template": msg.Template,
			"mail_to":       msg.To,
			"mail_subject":  msg.Subject,
		}
		if msg.Link != "" {
			fields["mail_link"] = msg.Link
		}
		l.logg.Info(l.logg.WithFields(ctx, fields), "email queued to log sink")
	}
	l.metrics.IncSent(msg.Template, "logged")
	if l.delivered != nil {
		l.delivered(msg)
	}
	return nil
}
