package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/orderdesk/internal/config"
)

func TestHTTPNotifier_Send(t *testing.T) {
	t.Run("posts message to relay", func(t *testing.T) {
		var got Message
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/send", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		n := NewHTTPNotifier(server.URL, server.Client())
		err := n.Send(context.Background(), Message{
			To:      "admin@example.com",
			Subject: "Yeni Sipariş #1",
			Body:    "hello",
			Attachment: &Attachment{
				Filename:    "siparis-1.pdf",
				ContentType: "application/pdf",
				Data:        []byte("%PDF-1.3"),
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "admin@example.com", got.To)
		assert.Equal(t, "Yeni Sipariş #1", got.Subject)
		require.NotNil(t, got.Attachment)
		assert.Equal(t, []byte("%PDF-1.3"), got.Attachment.Data)
	})

	t.Run("returns error on non-200", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		n := NewHTTPNotifier(server.URL, server.Client())
		err := n.Send(context.Background(), Message{To: "a@example.com"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("returns error when relay unreachable", func(t *testing.T) {
		n := NewHTTPNotifier("http://localhost:99999", &http.Client{})
		err := n.Send(context.Background(), Message{To: "a@example.com"})
		assert.Error(t, err)
	})
}

func TestLogNotifier_Send(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := n.Send(context.Background(), Message{
		To:         "a@example.com",
		Subject:    "test",
		Attachment: &Attachment{Filename: "siparis-7.pdf", Data: []byte("abc")},
	})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"to":"a@example.com"`)
	assert.Contains(t, buf.String(), `"attachment":"siparis-7.pdf"`)
	assert.Contains(t, buf.String(), `"attachment_bytes":3`)
}

func TestNewSMTPNotifier(t *testing.T) {
	t.Run("requires host", func(t *testing.T) {
		_, err := NewSMTPNotifier(SMTPConfig{From: "shop@example.com"})
		assert.Error(t, err)
	})

	t.Run("requires sender", func(t *testing.T) {
		_, err := NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com"})
		assert.Error(t, err)
	})

	t.Run("applies defaults", func(t *testing.T) {
		n, err := NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com", From: "shop@example.com"})
		require.NoError(t, err)
		assert.Equal(t, 587, n.cfg.Port)
		assert.NotZero(t, n.cfg.Timeout)
	})
}

func TestSMTPNotifier_buildMessage(t *testing.T) {
	n, err := NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com", From: "shop@example.com"})
	require.NoError(t, err)

	t.Run("attaches document", func(t *testing.T) {
		m, err := n.buildMessage(Message{
			To:         "customer@example.com",
			Subject:    "Siparişiniz",
			Body:       "Teşekkürler",
			Attachment: &Attachment{Filename: "siparis-3.pdf", ContentType: "application/pdf", Data: []byte("%PDF")},
		})
		require.NoError(t, err)

		attachments := m.GetAttachments()
		require.Len(t, attachments, 1)
		assert.Equal(t, "siparis-3.pdf", attachments[0].Name)

		var out bytes.Buffer
		_, err = m.WriteTo(&out)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "customer@example.com")
	})

	t.Run("rejects invalid recipient", func(t *testing.T) {
		_, err := n.buildMessage(Message{To: "not-an-address", Subject: "x", Body: "y"})
		assert.Error(t, err)
	})
}


func TestFromConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	n, err := FromConfig(config.Mail{Transport: config.MailLog}, logger)
	require.NoError(t, err)
	assert.IsType(t, &LogNotifier{}, n)

	n, err = FromConfig(config.Mail{Transport: config.MailHTTP, ServiceURL: "http://email:8084"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &HTTPNotifier{}, n)

	n, err = FromConfig(config.Mail{Transport: config.MailSMTP, SMTPHost: "smtp.example.com", SMTPPort: 587, From: "shop@example.com"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &SMTPNotifier{}, n)

	_, err = FromConfig(config.Mail{Transport: "fax"}, logger)
	assert.Error(t, err)
}
