package receipt

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendahub/orders-backend/internal/domain"
)

func sampleOrder() *domain.Order {
	return &domain.Order{
		ID:          "7f9c3f2a-1b2c-4d5e-8f90-a1b2c3d4e5f6",
		UserID:      "user-1",
		TotalAmount: decimal.RequireFromString("418.48"),
		Status:      domain.OrderStatusPending,
		CreatedAt:   time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		Items: []domain.OrderItem{
			{ProductID: "prod-1", ProductName: "Keyboard", Quantity: 2,
				UnitPrice: decimal.RequireFromString("149.99"), Subtotal: decimal.RequireFromString("299.98")},
			{ProductID: "prod-2", ProductName: "Mouse", Quantity: 3,
				UnitPrice: decimal.RequireFromString("39.50"), Subtotal: decimal.RequireFromString("118.50")},
		},
		Shipping: &domain.ShippingInfo{
			FullName: "Ana Torres", Email: "ana@example.com",
			Address: "Calle 10 #4-21", City: "Bogota", ZipCode: "110111",
		},
		Payment: &domain.PaymentInfo{
			TransactionID: "txn-123", CardType: "VISA", CardMasked: "4111XXXXXXXX1111",
		},
	}
}

func TestPDFRenderWritesDeterministicArtifact(t *testing.T) {
	dir := t.TempDir()
	renderer := NewPDF(dir, "/uploads/receipts")

	order := sampleOrder()
	url, err := renderer.Render(order)
	require.NoError(t, err)

	assert.Equal(t, "/uploads/receipts/receipt_"+order.ID+".pdf", url)

	info, err := os.Stat(filepath.Join(dir, FileName(order.ID)))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPDFRenderCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "receipts")
	renderer := NewPDF(dir, "/uploads/receipts")

	_, err := renderer.Render(sampleOrder())
	require.NoError(t, err)

	_, err = os.Stat(dir)
	assert.NoError(t, err)
}

type memStore struct {
	orders map[string]*domain.Order
	sets   int
}

func (m *memStore) GetByID(_ context.Context, id string) (*domain.Order, error) {
	return m.orders[id], nil
}

func (m *memStore) SetReceiptURL(_ context.Context, id, receiptURL string) error {
	m.sets++
	if order, ok := m.orders[id]; ok && order.ReceiptURL == "" {
		order.ReceiptURL = receiptURL
	}
	return nil
}

type countingRenderer struct {
	renders int
	url     string
}

func (c *countingRenderer) Render(order *domain.Order) (string, error) {
	c.renders++
	return c.url, nil
}

func TestServiceGenerateForIsIdempotent(t *testing.T) {
	order := sampleOrder()
	store := &memStore{orders: map[string]*domain.Order{order.ID: order}}
	renderer := &countingRenderer{url: "/uploads/receipts/" + FileName(order.ID)}
	svc := NewService(store, renderer, slog.Default())

	first, err := svc.GenerateFor(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, renderer.url, first)
	assert.Equal(t, 1, renderer.renders)

	// Re-invocation finds the pointer already set and renders nothing new.
	second, err := svc.GenerateFor(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, renderer.renders)
	assert.Equal(t, 1, store.sets)
}

func TestServiceGenerateForUnknownOrder(t *testing.T) {
	store := &memStore{orders: map[string]*domain.Order{}}
	svc := NewService(store, &countingRenderer{}, slog.Default())

	_, err := svc.GenerateFor(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
