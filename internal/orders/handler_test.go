package orders

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/orderdesk/internal/domain"
)

type fakeDispatcher struct {
	status     domain.DeliveryStatus
	err        error
	dispatched []domain.Order
}

func (f *fakeDispatcher) Dispatch(_ context.Context, order domain.Order) (domain.DeliveryStatus, error) {
	f.dispatched = append(f.dispatched, order)
	return f.status, f.err
}

func newTestHandler(store OrderStore, dispatcher Dispatcher) *Handler {
	return NewHandler(newTestService(store), dispatcher, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type createResponse struct {
	Order        domain.Order          `json:"order"`
	Total        domain.Money          `json:"total"`
	TotalDisplay string                `json:"total_display"`
	Delivery     domain.DeliveryStatus `json:"delivery"`
}

func TestHandler_HandleCreate(t *testing.T) {
	t.Run("creates order from json body", func(t *testing.T) {
		store := &memoryStore{}
		dispatcher := &fakeDispatcher{status: domain.DeliveryQueued}
		handler := newTestHandler(store, dispatcher)

		body := `{"customer_name":"Ali","phone":"123","items":[{"code":"YD_ET","quantity":5},{"code":"T_BUDU","quantity":1}]}`
		req := httptest.NewRequest(http.MethodPost, "/order", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp createResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, int64(1), resp.Order.ID)
		assert.Len(t, resp.Order.Items, 2)
		assert.Equal(t, domain.Money(9200), resp.Total)
		assert.Equal(t, "92,00 €", resp.TotalDisplay)
		assert.Equal(t, domain.DeliverySent, resp.Delivery)

		require.Len(t, dispatcher.dispatched, 1)
		assert.Equal(t, int64(1), dispatcher.dispatched[0].ID)
	})

	t.Run("creates order from form with items_json", func(t *testing.T) {
		store := &memoryStore{}
		handler := newTestHandler(store, &fakeDispatcher{status: domain.DeliveryQueued})

		form := url.Values{}
		form.Set("customer_name", "Ali")
		form.Set("phone", "123")
		form.Set("email", "ali@example.com")
		form.Set("items_json", `[{"code":"T_BUDU","quantity":2.3}]`)
		req := httptest.NewRequest(http.MethodPost, "/order", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var resp createResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "ali@example.com", resp.Order.Email)
		assert.Equal(t, domain.Money(5400), resp.Total)
		assert.Equal(t, domain.DeliveryQueued, resp.Delivery)
	})

	t.Run("accepts items_json inside json body", func(t *testing.T) {
		handler := newTestHandler(&memoryStore{}, nil)

		body := `{"customer_name":"Ali","phone":"123","items_json":"[{\"code\":\"T_BUDU\",\"quantity\":1}]"}`
		req := httptest.NewRequest(http.MethodPost, "/order", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("rejects malformed content type", func(t *testing.T) {
		store := &memoryStore{}
		dispatcher := &fakeDispatcher{}
		handler := newTestHandler(store, dispatcher)

		body := `{"customer_name":"Ali","phone":"123","items":[{"code":"T_BUDU","quantity":1}]}`
		req := httptest.NewRequest(http.MethodPost, "/order", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json; charset")
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid request body")
		assert.Equal(t, 0, store.count())
		assert.Empty(t, dispatcher.dispatched)
	})

	t.Run("missing content type is read as json", func(t *testing.T) {
		store := &memoryStore{}
		handler := newTestHandler(store, nil)

		body := `{"customer_name":"Ali","phone":"123","items":[{"code":"T_BUDU","quantity":1}]}`
		req := httptest.NewRequest(http.MethodPost, "/order", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, 1, store.count())
	})

	t.Run("dispatch failure keeps the order", func(t *testing.T) {
		store := &memoryStore{}
		handler := newTestHandler(store, &fakeDispatcher{err: errors.New("smtp down")})

		body := `{"customer_name":"Ali","phone":"123","items":[{"code":"T_BUDU","quantity":1}]}`
		req := httptest.NewRequest(http.MethodPost, "/order", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp createResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, domain.DeliveryDegraded, resp.Delivery)
		assert.Equal(t, int64(1), resp.Order.ID)
		assert.Equal(t, 1, store.count())
	})

	t.Run("rejects below minimum with product message", func(t *testing.T) {
		store := &memoryStore{}
		dispatcher := &fakeDispatcher{}
		handler := newTestHandler(store, dispatcher)

		body := `{"customer_name":"Ali","phone":"123","items":[{"code":"YD_ET","quantity":4.7}]}`
		req := httptest.NewRequest(http.MethodPost, "/order", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "below_minimum", resp["code"])
		assert.Equal(t, "Genç Dana Eti: minimum order is 5 kg", resp["error"])
		assert.Equal(t, 0, store.count())
		assert.Empty(t, dispatcher.dispatched)
	})

	t.Run("rejects unknown product", func(t *testing.T) {
		handler := newTestHandler(&memoryStore{}, nil)

		body := `{"customer_name":"Ali","phone":"123","items":[{"code":"UNKNOWN_CODE","quantity":1}]}`
		req := httptest.NewRequest(http.MethodPost, "/order", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "unknown_product", resp["code"])
		assert.Contains(t, resp["error"], "UNKNOWN_CODE")
	})

	t.Run("invalid json body", func(t *testing.T) {
		handler := newTestHandler(&memoryStore{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/order", strings.NewReader(`{invalid`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("store failure is an internal error", func(t *testing.T) {
		dispatcher := &fakeDispatcher{}
		handler := newTestHandler(&memoryStore{err: errors.New("db down")}, dispatcher)

		body := `{"customer_name":"Ali","phone":"123","items":[{"code":"T_BUDU","quantity":1}]}`
		req := httptest.NewRequest(http.MethodPost, "/order", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		handler.HandleCreate(rec, req)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		var resp map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "internal server error", resp["error"])
		assert.Empty(t, dispatcher.dispatched)
	})
}

func TestHandler_HandlePreview(t *testing.T) {
	handler := newTestHandler(&memoryStore{}, nil)

	body := `{"items":[{"code":"YD_ET","quantity":"4.7"},{"code":"T_BUDU","quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/order/preview", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.HandlePreview(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp PreviewResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, domain.Money(5850+5400), resp.Total)
}

func TestHandler_HandleCatalog(t *testing.T) {
	handler := newTestHandler(&memoryStore{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	rec := httptest.NewRecorder()

	handler.HandleCatalog(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var products []domain.Product
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&products))
	assert.Len(t, products, 8)
	assert.Equal(t, "YD_ET", products[0].Code)
}
