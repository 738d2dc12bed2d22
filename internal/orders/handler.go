package orders

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tiendahub/orders-backend/internal/auth"
	"github.com/tiendahub/orders-backend/internal/cart"
	"github.com/tiendahub/orders-backend/internal/domain"
	"github.com/tiendahub/orders-backend/internal/messaging"
)

// ReceiptGenerator produces the receipt artifact for a committed order and
// returns its pointer. Any implementation that can do that satisfies the
// order flow; the default one renders a PDF.
type ReceiptGenerator interface {
	GenerateFor(ctx context.Context, orderID string) (string, error)
}

type Handler struct {
	builder  *cart.Builder
	repo     *Repository
	producer *messaging.Producer
	receipts ReceiptGenerator
	logger   *slog.Logger
}

// NewHandler wires the order endpoints. producer and receipts are both
// optional: with a producer the receipt is generated by the worker consuming
// order.created; without one, receipts (when set) runs in-process after the
// commit. Neither path blocks or fails order creation.
func NewHandler(builder *cart.Builder, repo *Repository, producer *messaging.Producer, receipts ReceiptGenerator, logger *slog.Logger) *Handler {
	return &Handler{
		builder:  builder,
		repo:     repo,
		producer: producer,
		receipts: receipts,
		logger:   logger,
	}
}

type createOrderRequest struct {
	Items    []cart.LineItem   `json:"items"`
	Shipping cart.ShippingData `json:"shipping_data"`
	Payment  cart.PaymentData  `json:"payment_data"`
}

type createOrderResponse struct {
	OrderID         string             `json:"order_id"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	Status          domain.OrderStatus `json:"status"`
	Items           int                `json:"items"`
	ShippingAddress string             `json:"shipping_address"`
	PaymentMethod   string             `json:"payment_method"`
	ReceiptURL      string             `json:"receipt_url,omitempty"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.builder.Build(r.Context(), cart.Input{
		UserID:   principal.ID,
		Items:    req.Items,
		Shipping: req.Shipping,
		Payment:  req.Payment,
	})
	if err != nil {
		h.writeBuildError(w, err)
		return
	}

	if err := h.repo.Create(r.Context(), order); err != nil {
		// A concurrent order may have taken the stock between pricing and
		// the decrement; that surfaces here with full rollback.
		if errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrProductNotFound) {
			h.writeError(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error("failed to create order", "error", err, "user_id", principal.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.scheduleReceipt(r.Context(), order)

	h.logger.Info("order created", "order_id", order.ID, "user_id", order.UserID, "total", order.TotalAmount)
	h.writeJSON(w, http.StatusCreated, createOrderResponse{
		OrderID:         order.ID,
		TotalAmount:     order.TotalAmount,
		Status:          order.Status,
		Items:           len(order.Items),
		ShippingAddress: order.Shipping.Address + ", " + order.Shipping.City,
		PaymentMethod:   strings.TrimSpace(order.Payment.CardType + " " + order.Payment.CardMasked),
	})
}

// scheduleReceipt kicks off post-commit receipt generation. The order is
// already durable; failures here are logged and retried later, never
// surfaced to the creation caller.
func (h *Handler) scheduleReceipt(ctx context.Context, order *domain.Order) {
	if h.producer != nil {
		event := domain.OrderCreatedEvent{
			OrderID:   order.ID,
			UserID:    order.UserID,
			Timestamp: order.CreatedAt,
		}
		if err := h.producer.Publish(ctx, order.ID, event); err != nil {
			h.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
		}
		return
	}

	if h.receipts == nil {
		return
	}

	go func() {
		genCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := h.receipts.GenerateFor(genCtx, order.ID); err != nil {
			h.logger.Error("failed to generate receipt", "error", err, "order_id", order.ID)
		}
	}()
}

func (h *Handler) writeBuildError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidCardNumber):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrProductNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		h.writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("failed to build order", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "order_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	if !principal.CanAccessOrder(order.UserID) {
		h.writeError(w, http.StatusForbidden, "you do not have access to this order")
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	summaries, err := h.repo.ListByUser(r.Context(), principal.ID)
	if err != nil {
		h.logger.Error("failed to list orders", "error", err, "user_id", principal.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, summaries)
}

func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !principal.Privileged() {
		h.writeError(w, http.StatusForbidden, "administrative role required")
		return
	}

	summaries, err := h.repo.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list all orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, summaries)
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !principal.Privileged() {
		h.writeError(w, http.StatusForbidden, "administrative role required")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.repo.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidStatus) {
			h.writeError(w, http.StatusBadRequest, "invalid status: must be one of pending, shipped, delivered, cancelled")
			return
		}
		h.logger.Error("failed to update order status", "error", err, "order_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	h.logger.Info("order status updated", "order_id", order.ID, "status", order.Status)
	h.writeJSON(w, http.StatusOK, order)
}

// HandleGenerateReceipt re-runs receipt generation for a committed order.
// Safe to call any number of times: an order whose pointer is already set
// keeps it and no duplicate artifact is produced.
func (h *Handler) HandleGenerateReceipt(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	if h.receipts == nil {
		h.writeError(w, http.StatusServiceUnavailable, "receipt generation unavailable")
		return
	}

	order, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "order_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if !principal.CanAccessOrder(order.UserID) {
		h.writeError(w, http.StatusForbidden, "you do not have access to this order")
		return
	}

	receiptURL, err := h.receipts.GenerateFor(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to generate receipt", "error", err, "order_id", id)
		h.writeError(w, http.StatusInternalServerError, "receipt generation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"receipt_url": receiptURL})
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
