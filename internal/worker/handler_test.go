package worker

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendahub/orders-backend/internal/domain"
)

type fakeGenerator struct {
	calls   []string
	url     string
	err     error
}

func (f *fakeGenerator) GenerateFor(_ context.Context, orderID string) (string, error) {
	f.calls = append(f.calls, orderID)
	return f.url, f.err
}

func TestHandleGeneratesReceipt(t *testing.T) {
	gen := &fakeGenerator{url: "/uploads/receipts/receipt_o1.pdf"}
	h := NewReceiptHandler(gen, slog.Default())

	err := h.Handle(context.Background(), []byte(`{"order_id": "o1", "user_id": "u1"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"o1"}, gen.calls)
}

func TestHandleRejectsMalformedPayload(t *testing.T) {
	gen := &fakeGenerator{}
	h := NewReceiptHandler(gen, slog.Default())

	err := h.Handle(context.Background(), []byte(`{not json`))
	require.Error(t, err)
	assert.Empty(t, gen.calls)
}

func TestHandleSwallowsGenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("disk full")}
	h := NewReceiptHandler(gen, slog.Default())

	// Non-fatal: the order stays valid and generation is retryable later.
	err := h.Handle(context.Background(), []byte(`{"order_id": "o1"}`))
	assert.NoError(t, err)
}

func TestHandleSkipsMissingOrder(t *testing.T) {
	gen := &fakeGenerator{err: domain.ErrOrderNotFound}
	h := NewReceiptHandler(gen, slog.Default())

	err := h.Handle(context.Background(), []byte(`{"order_id": "gone"}`))
	assert.NoError(t, err)
}
