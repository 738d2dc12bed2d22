package domain

import "github.com/shopspring/decimal"

// Product is the inventory-relevant slice of the catalog: current price and
// stock. Stock never goes negative; decrements that would breach that are
// rejected inside the order transaction.
type Product struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}
