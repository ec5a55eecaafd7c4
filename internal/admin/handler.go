// Package admin serves the shop owner's reporting views.
package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/joao-fontenele/orderdesk/internal/auth"
	"github.com/joao-fontenele/orderdesk/internal/document"
	"github.com/joao-fontenele/orderdesk/internal/domain"
	"github.com/joao-fontenele/orderdesk/internal/orders"
)

type Store interface {
	ListOrdersWithItems(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	SumQuantityByProduct(ctx context.Context) ([]orders.ProductQuantity, error)
	DeleteAllOrders(ctx context.Context) error
}

type Renderer interface {
	Render(order domain.Order) ([]byte, error)
}

type Handler struct {
	store    Store
	renderer Renderer
	logger   *slog.Logger
}

func NewHandler(store Store, renderer Renderer, logger *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		renderer: renderer,
		logger:   logger,
	}
}

type orderView struct {
	domain.Order
	Total        domain.Money `json:"total"`
	TotalDisplay string       `json:"total_display"`
}

func newOrderView(o domain.Order) orderView {
	total := o.Total()
	return orderView{Order: o, Total: total, TotalDisplay: total.String()}
}

type statView struct {
	orders.ProductQuantity
	QuantityDisplay string `json:"quantity_display"`
}

func (h *Handler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListOrdersWithItems(r.Context())
	if err != nil {
		h.logger.Error("failed to list orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	views := make([]orderView, 0, len(list))
	for _, o := range list {
		views = append(views, newOrderView(o))
	}
	h.writeJSON(w, http.StatusOK, views)
}

func (h *Handler) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := h.lookupOrder(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, newOrderView(*order))
}

func (h *Handler) HandleDocument(w http.ResponseWriter, r *http.Request) {
	order, ok := h.lookupOrder(w, r)
	if !ok {
		return
	}

	doc, err := h.renderer.Render(*order)
	if err != nil {
		h.logger.Error("failed to render order document", "error", err, "order_id", order.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", document.Filename(order.ID)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		h.logger.Error("failed to write order document", "error", err, "order_id", order.ID)
	}
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.SumQuantityByProduct(r.Context())
	if err != nil {
		h.logger.Error("failed to sum quantities", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	views := make([]statView, 0, len(stats))
	for _, s := range stats {
		views = append(views, statView{
			ProductQuantity: s,
			QuantityDisplay: document.FormatQuantity(s.TotalQuantity) + " " + s.UnitLabel,
		})
	}
	h.writeJSON(w, http.StatusOK, views)
}

func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListOrdersWithItems(r.Context())
	if err != nil {
		h.logger.Error("failed to list orders for export", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="siparisler.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := WriteCSV(w, list); err != nil {
		h.logger.Error("failed to write export", "error", err)
	}
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteAllOrders(r.Context()); err != nil {
		h.logger.Error("failed to reset orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	principal, _ := auth.PrincipalFrom(r.Context())
	h.logger.Warn("all orders deleted", "admin", principal.Username)
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) lookupOrder(w http.ResponseWriter, r *http.Request) (*domain.Order, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "invalid order id")
		return nil, false
	}

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "order_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return nil, false
	}
	return order, true
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
