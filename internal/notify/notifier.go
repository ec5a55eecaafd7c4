// Package notify delivers order documents by email.
package notify

import (
	"context"
	"log/slog"
)

type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

type Message struct {
	To         string      `json:"to"`
	Subject    string      `json:"subject"`
	Body       string      `json:"body"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// LogNotifier only logs messages. It stands in for a mail server in
// development.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	attrs := []any{"to", msg.To, "subject", msg.Subject}
	if msg.Attachment != nil {
		attrs = append(attrs, "attachment", msg.Attachment.Filename, "attachment_bytes", len(msg.Attachment.Data))
	}
	n.logger.Info("email sent", attrs...)
	return nil
}
