package notify

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joao-fontenele/orderdesk/internal/config"
)

// FromConfig builds the Notifier selected by MAIL_TRANSPORT.
func FromConfig(cfg config.Mail, logger *slog.Logger) (Notifier, error) {
	switch cfg.Transport {
	case config.MailSMTP:
		return NewSMTPNotifier(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.From,
		})
	case config.MailHTTP:
		client := &http.Client{
			Timeout:   20 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
		return NewHTTPNotifier(cfg.ServiceURL, client), nil
	case config.MailLog:
		return NewLogNotifier(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
	}
}
