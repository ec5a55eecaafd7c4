// Package config reads service configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type MailTransport string

const (
	MailSMTP MailTransport = "smtp"
	MailHTTP MailTransport = "http"
	MailLog  MailTransport = "log"
)

type Mail struct {
	Transport    MailTransport
	From         string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	ServiceURL   string
}

type Config struct {
	Port              string
	PostgresURL       string
	KafkaBrokers      []string
	OrderTopic        string
	AdminUser         string
	AdminPasswordHash string
	AdminEmail        string
	Mail              Mail
	CatalogFile       string
	FontDir           string
	OTLPEndpoint      string
	MigrationsPath    string
}

// Load reads envFile when it exists, then the process environment.
// Variables already set in the environment win over the file.
func Load(envFile, defaultPort string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Port:              getenv("PORT", defaultPort),
		PostgresURL:       os.Getenv("POSTGRES_URL"),
		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		OrderTopic:        getenv("ORDER_TOPIC", "order.created"),
		AdminUser:         getenv("ADMIN_USER", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		CatalogFile:       os.Getenv("CATALOG_FILE"),
		FontDir:           os.Getenv("FONT_DIR"),
		OTLPEndpoint:      os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		MigrationsPath:    getenv("MIGRATIONS_PATH", "file://migrations"),
		Mail: Mail{
			Transport:    MailTransport(strings.ToLower(getenv("MAIL_TRANSPORT", string(MailLog)))),
			From:         os.Getenv("MAIL_FROM"),
			SMTPHost:     os.Getenv("SMTP_HOST"),
			SMTPUsername: os.Getenv("SMTP_USERNAME"),
			SMTPPassword: os.Getenv("SMTP_PASSWORD"),
			ServiceURL:   os.Getenv("EMAIL_SERVICE_URL"),
		},
	}

	port, err := strconv.Atoi(getenv("SMTP_PORT", "587"))
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SMTP_PORT must be a port number, got %q", os.Getenv("SMTP_PORT"))
	}
	cfg.Mail.SMTPPort = port

	switch cfg.Mail.Transport {
	case MailLog:
	case MailSMTP:
		if cfg.Mail.SMTPHost == "" || cfg.Mail.From == "" {
			return nil, errors.New("SMTP_HOST and MAIL_FROM are required when MAIL_TRANSPORT is smtp")
		}
	case MailHTTP:
		if cfg.Mail.ServiceURL == "" {
			return nil, errors.New("EMAIL_SERVICE_URL is required when MAIL_TRANSPORT is http")
		}
	default:
		return nil, fmt.Errorf("MAIL_TRANSPORT must be smtp, http or log, got %q", cfg.Mail.Transport)
	}

	return cfg, nil
}

// Require reports the first named variable that has no value.
func (c *Config) Require(names ...string) error {
	values := map[string]string{
		"POSTGRES_URL":        c.PostgresURL,
		"KAFKA_BROKERS":       strings.Join(c.KafkaBrokers, ","),
		"ADMIN_PASSWORD_HASH": c.AdminPasswordHash,
		"ADMIN_EMAIL":         c.AdminEmail,
		"MAIL_FROM":           c.Mail.From,
		"EMAIL_SERVICE_URL":   c.Mail.ServiceURL,
	}
	for _, name := range names {
		v, known := values[name]
		if !known {
			v = os.Getenv(name)
		}
		if v == "" {
			return fmt.Errorf("%s environment variable is required", name)
		}
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
