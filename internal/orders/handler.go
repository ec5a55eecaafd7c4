package orders

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/joao-fontenele/orderdesk/internal/domain"
)

const maxBodyBytes = 1 << 20

// Dispatcher runs the side effects of a committed order. Its failure never
// undoes the order.
type Dispatcher interface {
	Dispatch(ctx context.Context, order domain.Order) (domain.DeliveryStatus, error)
}

type Handler struct {
	service    *Service
	dispatcher Dispatcher
	logger     *slog.Logger
}

func NewHandler(service *Service, dispatcher Dispatcher, logger *slog.Logger) *Handler {
	return &Handler{
		service:    service,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

type createOrderRequest struct {
	CustomerName string          `json:"customer_name"`
	Phone        string          `json:"phone"`
	Email        string          `json:"email"`
	Note         string          `json:"note"`
	Items        json.RawMessage `json:"items"`
	ItemsJSON    string          `json:"items_json"`
}

type orderResponse struct {
	Order        domain.Order          `json:"order"`
	Total        domain.Money          `json:"total"`
	TotalDisplay string                `json:"total_display"`
	Delivery     domain.DeliveryStatus `json:"delivery"`
}

func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Catalog().Products())
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.service.Submit(r.Context(), req)
	if err != nil {
		h.writeOrderError(w, err)
		return
	}

	delivery := domain.DeliverySent
	if h.dispatcher != nil {
		// The order is committed; a client disconnect must not cut the
		// notification short.
		delivery, err = h.dispatcher.Dispatch(context.WithoutCancel(r.Context()), *order)
		if err != nil {
			h.logger.Error("order recorded but delivery failed", "error", err, "order_id", order.ID)
			delivery = domain.DeliveryDegraded
		}
	}

	total := order.Total()
	h.writeJSON(w, http.StatusCreated, orderResponse{
		Order:        *order,
		Total:        total,
		TotalDisplay: total.String(),
		Delivery:     delivery,
	})
}

type previewRequest struct {
	Items []RawLineItem `json:"items"`
}

func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.writeJSON(w, http.StatusOK, h.service.Preview(req.Items))
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (Request, error) {
	var mediaType string
	if ct := r.Header.Get("Content-Type"); ct != "" {
		var err error
		if mediaType, _, err = mime.ParseMediaType(ct); err != nil {
			return Request{}, err
		}
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if mediaType == "multipart/form-data" {
			if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
				return Request{}, err
			}
		} else if err := r.ParseForm(); err != nil {
			return Request{}, err
		}
		return Request{
			CustomerName: r.PostFormValue("customer_name"),
			Phone:        r.PostFormValue("phone"),
			Email:        r.PostFormValue("email"),
			Note:         r.PostFormValue("note"),
			Items:        []byte(r.PostFormValue("items_json")),
		}, nil
	default:
		var body createOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return Request{}, err
		}
		items := []byte(body.ItemsJSON)
		if trimmed := strings.TrimSpace(string(body.Items)); trimmed != "" && trimmed != "null" {
			items = body.Items
		}
		return Request{
			CustomerName: body.CustomerName,
			Phone:        body.Phone,
			Email:        body.Email,
			Note:         body.Note,
			Items:        items,
		}, nil
	}
}

func (h *Handler) writeOrderError(w http.ResponseWriter, err error) {
	var oe *OrderError
	if IsClientError(err) && errors.As(err, &oe) {
		message := oe.Message
		if message == "" {
			message = oe.Kind.Error()
		}
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": message, "code": KindName(err)})
		return
	}

	h.logger.Error("failed to submit order", "error", err)
	h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error", "code": KindName(err)})
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
