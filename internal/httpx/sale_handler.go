package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-flash-sale.git/internal/flashsale"
	"github.com/ariefcatur/go-flash-sale.git/internal/redisx"
)

type SaleHandler struct {
	Sales  *flashsale.Service
	Orders *flashsale.Repo
	Redis  *redis.Client
	Auth   func(http.Handler) http.Handler
}

type purchaseReq struct {
	ProductID string `json:"product_id"`
}

func (h *SaleHandler) Register(r *chi.Mux) {
	r.Get("/api/flash-sale/products/current", h.listCurrent)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth)
		r.Post("/api/flash-sale/purchase", h.purchase)
		r.Get("/api/flash-sale/orders/{id}", h.getOrder)
	})
}

func (h *SaleHandler) listCurrent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	views, err := h.Sales.ListActive(ctx)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *SaleHandler) purchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing product_id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Sales.Purchase(ctx, UserID(ctx), req.ProductID)
	if err != nil {
		writeErr(w, purchaseStatus(err), err)
		return
	}

	// cache hasil supaya GET order cepat
	key := fmt.Sprintf(redisx.KeyOrderStatus, res.OrderID)
	if b, err := json.Marshal(res); err == nil {
		_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *SaleHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) coba cache
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	// 2) fallback DB
	o, err := h.Orders.GetOrder(ctx, orderID)
	if err != nil {
		writeErr(w, http.StatusNotFound, flashsale.ErrOrderNotFound)
		return
	}
	body := map[string]any{
		"order_id":   o.ID,
		"product_id": o.ProductID,
		"amount":     o.Amount,
		"status":     string(o.Status),
		"ordered_at": o.OrderedAt,
	}
	b, _ := json.Marshal(body)
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// purchaseStatus: penolakan bisnis = 409, resource hilang = 404,
// kalah lock = 503 (retryable).
func purchaseStatus(err error) int {
	switch {
	case flashsale.IsRetryable(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, flashsale.ErrNoActiveSale),
		errors.Is(err, flashsale.ErrProductNotFound),
		errors.Is(err, flashsale.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, flashsale.ErrAlreadyPurchasedToday),
		errors.Is(err, flashsale.ErrSoldOut),
		errors.Is(err, flashsale.ErrOutOfStock),
		errors.Is(err, flashsale.ErrInsufficientBalance):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
