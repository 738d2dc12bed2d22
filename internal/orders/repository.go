package orders

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/tiendahub/orders-backend/internal/catalog"
	"github.com/tiendahub/orders-backend/internal/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create persists the order header, its shipping and payment satellites, the
// line items and the per-item stock decrements as one atomic unit. Any
// failure, including a decrement that would drive stock negative, rolls the
// whole unit back; no partial order is ever visible to other readers.
//
// The receipt pointer is always null at this point: receipt generation runs
// after commit and patches it separately.
func (r *Repository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	order.ID = uuid.New().String()
	order.ReceiptURL = ""

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, total_amount, status, receipt_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULL, $5, $5)
	`, order.ID, order.UserID, order.TotalAmount, order.Status, order.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO shipping_info (order_id, full_name, email, phone, address, city, zip_code, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, order.ID, order.Shipping.FullName, order.Shipping.Email, order.Shipping.Phone,
		order.Shipping.Address, order.Shipping.City, order.Shipping.ZipCode, nullIfEmpty(order.Shipping.Notes))
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payment_info (order_id, transaction_id, card_type, card_masked)
		VALUES ($1, $2, $3, $4)
	`, order.ID, order.Payment.TransactionID, nullIfEmpty(order.Payment.CardType), nullIfEmpty(order.Payment.CardMasked))
	if err != nil {
		return err
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.New().String(), order.ID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice, item.Subtotal)
		if err != nil {
			return err
		}

		if err := catalog.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID reconstructs the full order view: header, items, shipping, payment
// and receipt pointer. Returns nil when the id does not exist.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order := &domain.Order{}
	var receipt sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, total_amount, status, receipt_url, created_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.UserID, &order.TotalAmount, &order.Status, &receipt, &order.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	order.ReceiptURL = receipt.String

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, product_name, quantity, unit_price, subtotal
		FROM order_items
		WHERE order_id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice, &item.Subtotal); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	shipping := &domain.ShippingInfo{}
	var notes sql.NullString
	err = r.db.QueryRowContext(ctx, `
		SELECT full_name, email, phone, address, city, zip_code, notes
		FROM shipping_info
		WHERE order_id = $1
	`, id).Scan(&shipping.FullName, &shipping.Email, &shipping.Phone,
		&shipping.Address, &shipping.City, &shipping.ZipCode, &notes)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	if err == nil {
		shipping.Notes = notes.String
		order.Shipping = shipping
	}

	payInfo := &domain.PaymentInfo{}
	var cardType, cardMasked sql.NullString
	err = r.db.QueryRowContext(ctx, `
		SELECT transaction_id, card_type, card_masked
		FROM payment_info
		WHERE order_id = $1
	`, id).Scan(&payInfo.TransactionID, &cardType, &cardMasked)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	if err == nil {
		payInfo.CardType = cardType.String
		payInfo.CardMasked = cardMasked.String
		order.Payment = payInfo
	}

	return order, nil
}

// ListByUser returns the user's orders, most recent first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.OrderSummary, error) {
	return r.listSummaries(ctx, `
		SELECT id, user_id, total_amount, status, receipt_url, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
}

// ListAll returns every order, most recent first. Callers gate this behind
// the privileged-role check.
func (r *Repository) ListAll(ctx context.Context) ([]domain.OrderSummary, error) {
	return r.listSummaries(ctx, `
		SELECT id, user_id, total_amount, status, receipt_url, created_at
		FROM orders
		ORDER BY created_at DESC
	`)
}

func (r *Repository) listSummaries(ctx context.Context, query string, args ...any) ([]domain.OrderSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	summaries := []domain.OrderSummary{}
	for rows.Next() {
		var s domain.OrderSummary
		var receipt sql.NullString
		if err := rows.Scan(&s.ID, &s.UserID, &s.TotalAmount, &s.Status, &receipt, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.ReceiptURL = receipt.String
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}

// UpdateStatus transitions an order to one of the enumerated statuses. An
// unrecognized status fails with ErrInvalidStatus before touching storage.
// Returns nil when the order does not exist.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !domain.ValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// SetReceiptURL patches the receipt pointer onto an already-committed order.
// The update is idempotent: setting the same pointer again is a no-op, and an
// order whose pointer is already set is left untouched.
func (r *Repository) SetReceiptURL(ctx context.Context, id, receiptURL string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET receipt_url = $2, updated_at = NOW()
		WHERE id = $1 AND (receipt_url IS NULL OR receipt_url = $2)
	`, id, receiptURL)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	err = r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)
	`, id).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrOrderNotFound
	}

	// Pointer already set to something else; leave it alone.
	return nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
