// Package receipt produces the durable receipt artifact for a committed
// order and patches its pointer onto the order record. Generation runs
// strictly after the order transaction commits and never unwinds it.
package receipt

import (
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/tiendahub/orders-backend/internal/domain"
)

// Renderer turns an order snapshot into a stored document and returns its
// public pointer. Anything that can do that plugs into the order flow.
type Renderer interface {
	Render(order *domain.Order) (string, error)
}

// PDF renders receipts as PDF files under dir. The file name is derived from
// the order id, so the location is deterministic and collision-free, and
// re-rendering the same order overwrites rather than duplicates.
type PDF struct {
	dir          string
	publicPrefix string
}

func NewPDF(dir, publicPrefix string) *PDF {
	return &PDF{
		dir:          dir,
		publicPrefix: publicPrefix,
	}
}

// FileName returns the artifact name for an order id.
func FileName(orderID string) string {
	return "receipt_" + orderID + ".pdf"
}

func (p *PDF) Render(order *domain.Order) (string, error) {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", err
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.Cell(0, 10, "PAYMENT RECEIPT")
	doc.Ln(14)

	doc.SetFont("Helvetica", "", 12)
	doc.Cell(0, 7, "Order #"+order.ID)
	doc.Ln(7)
	doc.Cell(0, 7, "Date: "+order.CreatedAt.Format("2006-01-02 15:04"))
	doc.Ln(12)

	if order.Shipping != nil {
		doc.SetFont("Helvetica", "B", 13)
		doc.Cell(0, 8, "CUSTOMER")
		doc.Ln(8)
		doc.SetFont("Helvetica", "", 11)
		doc.Cell(0, 6, "Name: "+order.Shipping.FullName)
		doc.Ln(6)
		doc.Cell(0, 6, "Email: "+order.Shipping.Email)
		doc.Ln(6)
		doc.Cell(0, 6, "Ship to: "+order.Shipping.Address+", "+order.Shipping.City+" "+order.Shipping.ZipCode)
		doc.Ln(10)
	}

	if order.Payment != nil {
		doc.SetFont("Helvetica", "B", 13)
		doc.Cell(0, 8, "PAYMENT")
		doc.Ln(8)
		doc.SetFont("Helvetica", "", 11)
		doc.Cell(0, 6, "Method: "+strings.TrimSpace(order.Payment.CardType+" "+order.Payment.CardMasked))
		doc.Ln(6)
		doc.Cell(0, 6, "Transaction: "+order.Payment.TransactionID)
		doc.Ln(10)
	}

	if len(order.Items) > 0 {
		doc.SetFont("Helvetica", "B", 13)
		doc.Cell(0, 8, "ITEMS")
		doc.Ln(8)
		doc.SetFont("Helvetica", "", 11)
		for _, item := range order.Items {
			line := item.ProductName + " x" + strconv.Itoa(item.Quantity) + " = $" + item.Subtotal.StringFixed(2)
			doc.Cell(0, 6, line)
			doc.Ln(6)
		}
		doc.Ln(4)
	}

	doc.SetFont("Helvetica", "B", 15)
	doc.Cell(0, 9, "TOTAL: $"+order.TotalAmount.StringFixed(2))
	doc.Ln(14)

	doc.SetFont("Helvetica", "", 9)
	doc.Cell(0, 5, "Thank you for your purchase!")

	fileName := FileName(order.ID)
	if err := doc.OutputFileAndClose(filepath.Join(p.dir, fileName)); err != nil {
		return "", err
	}

	return path.Join(p.publicPrefix, fileName), nil
}
