package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/streamflix-backend/pkg/config"
	"github.com/angelmondragon/streamflix-backend/pkg/logger"
	"github.com/angelmondragon/streamflix-backend/pkg/metrics"
	"github.com/sony/gobreaker/v2"
	"gopkg.in/gomail.v2"
)

// ErrMailUnavailable is returned while the SMTP breaker is open.
var ErrMailUnavailable = errors.New("mail transport unavailable")

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends through an SMTP relay behind a circuit breaker.
type SMTPMailer struct {
	from    string
	dialer  sender
	breaker *gobreaker.CircuitBreaker[any]
	render  renderer
	logg    *logger.Logger
	metrics *metrics.MailMetrics
}

// NewSMTPMailer builds the SMTP transport from cfg.
func NewSMTPMailer(cfg config.MailConfig, frontendURL string, logg *logger.Logger, m *metrics.MailMetrics) (*SMTPMailer, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	return newSMTPMailer(cfg, dialer, frontendURL, logg, m), nil
}

func newSMTPMailer(cfg config.MailConfig, dialer sender, frontendURL string, logg *logger.Logger, m *metrics.MailMetrics) *SMTPMailer {
	threshold := cfg.BreakerMaxFailures
	if threshold == 0 {
		threshold = 5
	}
	settings := gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logg != nil {
				ctx := logg.WithFields(context.Background(), map[string]any{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				})
				logg.Warn(ctx, "mail circuit breaker state changed")
			}
			m.SetBreakerOpen(to == gobreaker.StateOpen)
		},
	}
	return &SMTPMailer{
		from:    cfg.From,
		dialer:  dialer,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
		render:  newRenderer(frontendURL),
		logg:    logg,
		metrics: m,
	}
}

func (s *SMTPMailer) SendVerification(ctx context.Context, email, token string) error {
	return s.send(ctx, s.render.verification(email, token))
}

func (s *SMTPMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	return s.send(ctx, s.render.passwordReset(email, token))
}

func (s *SMTPMailer) SendAccountLocked(ctx context.Context, email string, unlockAt time.Time) error {
	return s.send(ctx, s.render.accountLocked(email, unlockAt))
}

func (s *SMTPMailer) SendWelcome(ctx context.Context, email, name string) error {
	return s.send(ctx, s.render.welcome(email, name))
}

func (s *SMTPMailer) send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out := gomail.NewMessage()
	out.SetHeader("From", s.from)
	out.SetHeader("To", msg.To)
	out.SetHeader("Subject", msg.Subject)
	out.SetBody("text/plain", msg.Text)

	_, err := s.breaker.Execute(func() (any, error) {
		return nil, s.dialer.DialAndSend(out)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		s.metrics.IncSent(msg.Template, "rejected")
		return ErrMailUnavailable
	case err != nil:
		s.metrics.IncSent(msg.Template, "failed")
		return fmt.Errorf("send %s email: %w", msg.Template, err)
	}

	s.metrics.IncSent(msg.Template, "sent")
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "mail_template", msg.Template), "email sent")
	}
	return nil
}
