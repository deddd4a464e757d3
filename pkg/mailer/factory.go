package mailer

import (
	"github.com/angelmondragon/streamflix-backend/pkg/config"
	"github.com/angelmondragon/streamflix-backend/pkg/logger"
	"github.com/angelmondragon/streamflix-backend/pkg/metrics"
)

// New picks the transport configured by cfg.Mail.
func New(cfg *config.Config, logg *logger.Logger, m *metrics.MailMetrics) (Mailer, error) {
	if cfg.Mail.IsSMTP() {
		return NewSMTPMailer(cfg.Mail, cfg.Frontend.URL, logg, m)
	}
	return NewLogMailer(logg, cfg.Frontend.URL, m), nil
}
