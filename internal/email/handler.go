package email

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/joao-fontenele/orderdesk/internal/notify"
)

const maxMessageBytes = 10 << 20

// Handler relays messages posted by the order services to a Notifier,
// usually the SMTP one.
type Handler struct {
	notifier notify.Notifier
	logger   *slog.Logger
}

func NewHandler(notifier notify.Notifier, logger *slog.Logger) *Handler {
	return &Handler{
		notifier: notifier,
		logger:   logger,
	}
}

type sendResponse struct {
	Status string `json:"status"`
}

func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var msg notify.Message
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBytes)).Decode(&msg); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg.To = strings.TrimSpace(msg.To)
	if msg.To == "" {
		h.writeError(w, http.StatusBadRequest, "recipient is required")
		return
	}
	if msg.Attachment != nil && msg.Attachment.Filename == "" {
		h.writeError(w, http.StatusBadRequest, "attachment filename is required")
		return
	}

	if err := h.notifier.Send(r.Context(), msg); err != nil {
		h.logger.Error("failed to relay email", "error", err, "to", msg.To, "subject", msg.Subject)
		h.writeError(w, http.StatusBadGateway, "mail delivery failed")
		return
	}

	h.logger.Info("email relayed", "to", msg.To, "subject", msg.Subject)

	h.writeJSON(w, http.StatusOK, sendResponse{Status: "sent"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
