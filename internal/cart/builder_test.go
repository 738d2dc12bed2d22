package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendahub/orders-backend/internal/domain"
)

type fakeCatalog struct {
	products map[string]*domain.Product
	err      error
}

func (f *fakeCatalog) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.products[id], nil
}

func price(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func validInput() Input {
	return Input{
		UserID: "user-1",
		Items:  []LineItem{{ProductID: "prod-1", Quantity: 2}},
		Shipping: ShippingData{
			FullName: "Ana Torres",
			Email:    "ana@example.com",
			Phone:    "3001234567",
			Address:  "Calle 10 #4-21",
			City:     "Bogota",
			ZipCode:  "110111",
		},
		Payment: PaymentData{
			TransactionID: "txn-123",
			CardNumber:    "4111111111111111",
		},
	}
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{products: map[string]*domain.Product{
		"prod-1": {ID: "prod-1", Name: "Keyboard", Price: price("149.99"), Stock: 10},
		"prod-2": {ID: "prod-2", Name: "Mouse", Price: price("39.50"), Stock: 3},
	}}
}

func TestBuildPricesCartAndComputesTotal(t *testing.T) {
	builder := NewBuilder(testCatalog())

	in := validInput()
	in.Items = []LineItem{
		{ProductID: "prod-1", Quantity: 2},
		{ProductID: "prod-2", Quantity: 3},
	}

	order, err := builder.Build(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, order.Items, 2)
	assert.Equal(t, "Keyboard", order.Items[0].ProductName)
	assert.True(t, order.Items[0].Subtotal.Equal(price("299.98")), "got %s", order.Items[0].Subtotal)
	assert.True(t, order.Items[1].Subtotal.Equal(price("118.50")), "got %s", order.Items[1].Subtotal)

	// 2*149.99 + 3*39.50
	assert.True(t, order.TotalAmount.Equal(price("418.48")), "got %s", order.TotalAmount)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "user-1", order.UserID)
}

func TestBuildSnapshotsUnitPrice(t *testing.T) {
	catalog := testCatalog()
	builder := NewBuilder(catalog)

	order, err := builder.Build(context.Background(), validInput())
	require.NoError(t, err)

	// A later catalog price change must not affect the built order.
	catalog.products["prod-1"].Price = price("999.99")
	assert.True(t, order.Items[0].UnitPrice.Equal(price("149.99")))
}

func TestBuildProductNotFound(t *testing.T) {
	builder := NewBuilder(testCatalog())

	in := validInput()
	in.Items = []LineItem{{ProductID: "prod-missing", Quantity: 1}}

	_, err := builder.Build(context.Background(), in)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	var notFound *domain.ProductNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "prod-missing", notFound.ProductID)
}

func TestBuildInsufficientStock(t *testing.T) {
	builder := NewBuilder(testCatalog())

	in := validInput()
	in.Items = []LineItem{{ProductID: "prod-2", Quantity: 5}}

	_, err := builder.Build(context.Background(), in)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "prod-2", stockErr.ProductID)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)
}

func TestBuildMasksCardNumber(t *testing.T) {
	builder := NewBuilder(testCatalog())

	order, err := builder.Build(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "4111XXXXXXXX1111", order.Payment.CardMasked)
	assert.Equal(t, "VISA", order.Payment.CardType, "type detected from number when absent")
}

func TestBuildRejectsInvalidCardNumber(t *testing.T) {
	builder := NewBuilder(testCatalog())

	in := validInput()
	in.Payment.CardNumber = "1234"

	_, err := builder.Build(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidCardNumber)
}

func TestBuildAllowsMissingCardNumber(t *testing.T) {
	builder := NewBuilder(testCatalog())

	in := validInput()
	in.Payment.CardNumber = ""
	in.Payment.CardType = "VISA"

	order, err := builder.Build(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, order.Payment.CardMasked)
	assert.Equal(t, "VISA", order.Payment.CardType)
}

func TestBuildValidation(t *testing.T) {
	builder := NewBuilder(testCatalog())

	tests := []struct {
		name   string
		mutate func(*Input)
		field  string
	}{
		{"missing user", func(in *Input) { in.UserID = "" }, "user_id"},
		{"empty cart", func(in *Input) { in.Items = nil }, "items"},
		{"zero quantity", func(in *Input) { in.Items[0].Quantity = 0 }, "items.quantity"},
		{"negative quantity", func(in *Input) { in.Items[0].Quantity = -2 }, "items.quantity"},
		{"missing product id", func(in *Input) { in.Items[0].ProductID = "" }, "items.product_id"},
		{"missing name", func(in *Input) { in.Shipping.FullName = "" }, "shipping.full_name"},
		{"missing address", func(in *Input) { in.Shipping.Address = "" }, "shipping.address"},
		{"missing city", func(in *Input) { in.Shipping.City = "" }, "shipping.city"},
		{"missing zip", func(in *Input) { in.Shipping.ZipCode = "" }, "shipping.zip_code"},
		{"malformed email", func(in *Input) { in.Shipping.Email = "not-an-email" }, "shipping.email"},
		{"missing transaction id", func(in *Input) { in.Payment.TransactionID = " " }, "payment.transaction_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := builder.Build(context.Background(), in)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)

			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestBuildPropagatesCatalogError(t *testing.T) {
	boom := errors.New("connection refused")
	builder := NewBuilder(&fakeCatalog{err: boom})

	_, err := builder.Build(context.Background(), validInput())
	assert.ErrorIs(t, err, boom)
}
