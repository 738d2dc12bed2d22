// Package worker consumes order.created events and drives post-commit
// receipt generation. The order is already durable when an event arrives;
// nothing here can unwind it.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tiendahub/orders-backend/internal/domain"
)

// Generator is the receipt capability the handler drives.
type Generator interface {
	GenerateFor(ctx context.Context, orderID string) (string, error)
}

type ReceiptHandler struct {
	receipts Generator
	logger   *slog.Logger
}

func NewReceiptHandler(receipts Generator, logger *slog.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		receipts: receipts,
		logger:   logger,
	}
}

// Handle processes one order.created event. Generation failures are logged
// and swallowed: the order stays valid with a null receipt pointer and the
// retry endpoint can re-invoke generation later. A malformed payload is the
// only hard error.
func (h *ReceiptHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order created event: %w", err)
	}

	h.logger.Info("processing order created event", "order_id", event.OrderID, "user_id", event.UserID)

	receiptURL, err := h.receipts.GenerateFor(ctx, event.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			h.logger.Warn("order gone before receipt generation", "order_id", event.OrderID)
			return nil
		}
		h.logger.Error("receipt generation failed", "error", err, "order_id", event.OrderID)
		return nil
	}

	h.logger.Info("receipt ready", "order_id", event.OrderID, "receipt_url", receiptURL)
	return nil
}
