// Package receipt renders order receipts as PDF and optionally archives them
// to S3.
package receipt

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"restaurant-pos/internal/microservices/pos/domain/dao"
)

const title = "Restaurant POS"

func money(f float64) string {
	return "$" + decimal.NewFromFloat(f).StringFixed(2)
}

// Render lays out one A4 page: header, a line per item and the totals block.
func Render(o dao.Order) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(o.OrderNumber, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, "Order: "+o.OrderNumber, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Customer: "+tr(o.CustomerName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Type: "+string(o.OrderType)+detail(o), "", 1, "L", false, 0, "")
	if !o.CreatedAt.IsZero() {
		pdf.CellFormat(0, 6, "Date: "+o.CreatedAt.UTC().Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(100, 7, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, it := range o.Items {
		pdf.CellFormat(100, 6, tr(it.Name), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", it.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, money(it.Price), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, money(it.Price*float64(it.Quantity)), "", 1, "R", false, 0, "")
		if it.Notes != "" {
			pdf.SetFont("Arial", "I", 8)
			pdf.CellFormat(0, 5, "  "+tr(it.Notes), "", 1, "L", false, 0, "")
			pdf.SetFont("Arial", "", 10)
		}
	}
	pdf.Ln(2)

	totals := []struct {
		label string
		value float64
	}{
		{"Subtotal", o.Subtotal},
		{"Tax", o.Tax},
		{"Discount", -o.Discount},
	}
	for _, t := range totals {
		pdf.CellFormat(150, 6, t.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, money(t.value), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(150, 8, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, money(o.TotalAmount), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt %s: %w", o.OrderNumber, err)
	}
	return buf.Bytes(), nil
}

func detail(o dao.Order) string {
	switch o.OrderType {
	case dao.OrderTypeDineIn:
		return fmt.Sprintf(" (table %d)", o.TableNumber)
	case dao.OrderTypeDelivery:
		return " to " + o.DeliveryAddress
	}
	return ""
}
