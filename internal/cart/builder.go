// Package cart validates and prices an incoming cart, assembling the order
// aggregate that the transactional writer persists. Nothing in this package
// mutates state.
package cart

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tiendahub/orders-backend/internal/domain"
	"github.com/tiendahub/orders-backend/internal/payment"
)

// LineItem is one product-quantity request from the caller's cart.
type LineItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type ShippingData struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	ZipCode  string `json:"zip_code"`
	Notes    string `json:"notes"`
}

// PaymentData carries the caller's payment metadata. CardNumber, when
// present, is the raw number: it is masked here and never leaves this
// package unmasked.
type PaymentData struct {
	TransactionID string `json:"transaction_id"`
	CardType      string `json:"card_type"`
	CardNumber    string `json:"card_number"`
}

type Input struct {
	UserID   string
	Items    []LineItem
	Shipping ShippingData
	Payment  PaymentData
}

// Catalog is the product lookup the builder prices against.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

type Builder struct {
	catalog Catalog
}

func NewBuilder(catalog Catalog) *Builder {
	return &Builder{catalog: catalog}
}

// Build validates the cart, prices every line at the current catalog price,
// masks the payment card and returns the assembled order with status pending.
// It fails with ValidationError, ProductNotFoundError, InsufficientStockError
// or ErrInvalidCardNumber; in every failure case no state has been touched.
func (b *Builder) Build(ctx context.Context, in Input) (*domain.Order, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	pay, err := maskPayment(in.Payment)
	if err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	total := decimal.Zero
	for _, line := range in.Items {
		product, err := b.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, &domain.ProductNotFoundError{ProductID: line.ProductID}
		}
		if product.Stock < line.Quantity {
			return nil, &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   line.Quantity,
				Available:   product.Stock,
			}
		}

		subtotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		items = append(items, domain.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
			Subtotal:    subtotal,
		})
		total = total.Add(subtotal)
	}

	return &domain.Order{
		UserID:      in.UserID,
		TotalAmount: total.Round(2),
		Status:      domain.OrderStatusPending,
		CreatedAt:   time.Now().UTC(),
		Items:       items,
		Shipping: &domain.ShippingInfo{
			FullName: in.Shipping.FullName,
			Email:    in.Shipping.Email,
			Phone:    in.Shipping.Phone,
			Address:  in.Shipping.Address,
			City:     in.Shipping.City,
			ZipCode:  in.Shipping.ZipCode,
			Notes:    in.Shipping.Notes,
		},
		Payment: pay,
	}, nil
}

func validate(in Input) error {
	if in.UserID == "" {
		return &domain.ValidationError{Field: "user_id", Reason: "required"}
	}
	if len(in.Items) == 0 {
		return &domain.ValidationError{Field: "items", Reason: "order must contain at least one product"}
	}
	for _, line := range in.Items {
		if line.ProductID == "" {
			return &domain.ValidationError{Field: "items.product_id", Reason: "required"}
		}
		if line.Quantity <= 0 {
			return &domain.ValidationError{Field: "items.quantity", Reason: "must be a positive integer"}
		}
	}

	required := []struct {
		field, value string
	}{
		{"shipping.full_name", in.Shipping.FullName},
		{"shipping.email", in.Shipping.Email},
		{"shipping.address", in.Shipping.Address},
		{"shipping.city", in.Shipping.City},
		{"shipping.zip_code", in.Shipping.ZipCode},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &domain.ValidationError{Field: r.field, Reason: "required"}
		}
	}
	if !strings.Contains(in.Shipping.Email, "@") {
		return &domain.ValidationError{Field: "shipping.email", Reason: "malformed"}
	}

	if strings.TrimSpace(in.Payment.TransactionID) == "" {
		return &domain.ValidationError{Field: "payment.transaction_id", Reason: "required"}
	}

	return nil
}

func maskPayment(data PaymentData) (*domain.PaymentInfo, error) {
	info := &domain.PaymentInfo{
		TransactionID: data.TransactionID,
		CardType:      data.CardType,
	}

	if data.CardNumber != "" {
		masked, err := payment.MaskCardNumber(data.CardNumber)
		if err != nil {
			return nil, err
		}
		info.CardMasked = masked
		if info.CardType == "" {
			info.CardType = payment.DetectCardType(data.CardNumber)
		}
	}

	return info, nil
}
