package receipt

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tiendahub/orders-backend/internal/domain"
)

// OrderStore is the slice of the orders repository the service needs: load a
// committed snapshot and patch the receipt pointer.
type OrderStore interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	SetReceiptURL(ctx context.Context, id, receiptURL string) error
}

// Service generates the receipt for a committed order. GenerateFor is
// idempotent and safe to re-invoke at any time after the order commit: an
// order whose pointer is already set short-circuits without rendering.
type Service struct {
	store    OrderStore
	renderer Renderer
	logger   *slog.Logger
}

func NewService(store OrderStore, renderer Renderer, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		renderer: renderer,
		logger:   logger,
	}
}

func (s *Service) GenerateFor(ctx context.Context, orderID string) (string, error) {
	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("load order %s: %w", orderID, err)
	}
	if order == nil {
		return "", domain.ErrOrderNotFound
	}

	if order.ReceiptURL != "" {
		return order.ReceiptURL, nil
	}

	receiptURL, err := s.renderer.Render(order)
	if err != nil {
		return "", fmt.Errorf("render receipt for order %s: %w", orderID, err)
	}

	if err := s.store.SetReceiptURL(ctx, orderID, receiptURL); err != nil {
		return "", fmt.Errorf("store receipt pointer for order %s: %w", orderID, err)
	}

	s.logger.Info("receipt generated", "order_id", orderID, "receipt_url", receiptURL)
	return receiptURL, nil
}
