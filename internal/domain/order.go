package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidStatus reports whether s is one of the enumerated order statuses.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is one product-quantity pairing within an order. UnitPrice and
// ProductName are snapshots taken at purchase time; later catalog changes do
// not affect them.
type OrderItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type ShippingInfo struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	ZipCode  string `json:"zip_code"`
	Notes    string `json:"notes,omitempty"`
}

// PaymentInfo records the payment reference for an order. CardMasked never
// holds a full card number, only the masked form produced at validation time.
type PaymentInfo struct {
	TransactionID string `json:"transaction_id"`
	CardType      string `json:"card_type"`
	CardMasked    string `json:"card_masked,omitempty"`
}

// Order is the full order aggregate. TotalAmount equals the sum of item
// subtotals at creation time and is never recomputed. ReceiptURL is empty
// until the receipt artifact has been generated.
type Order struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      OrderStatus     `json:"status"`
	ReceiptURL  string          `json:"receipt_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Items       []OrderItem     `json:"items"`
	Shipping    *ShippingInfo   `json:"shipping_info,omitempty"`
	Payment     *PaymentInfo    `json:"payment_info,omitempty"`
}

// OrderSummary is the header-only row returned by order listings.
type OrderSummary struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      OrderStatus     `json:"status"`
	ReceiptURL  string          `json:"receipt_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
