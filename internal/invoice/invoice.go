// Package invoice renders sale invoices as A4 PDF documents.
package invoice

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"tirehub/backend/internal/domain"
)

const gstRatePercent = 9.0

// ShopInfo is the letterhead printed on every invoice.
type ShopInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
	GSTIN   string
}

type Renderer struct {
	shop ShopInfo
}

func NewRenderer(shop ShopInfo) *Renderer {
	if shop.Name == "" {
		shop.Name = "Tire Shop"
	}
	return &Renderer{shop: shop}
}

// Render produces the PDF bytes for one sale. Selling prices are treated as
// GST-inclusive, so the CGST/SGST lines are carved out of the sale total and
// the grand total always matches the amount the customer paid.
func (r *Renderer) Render(sale domain.Sale) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, r.shop.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	if r.shop.Address != "" {
		pdf.CellFormat(0, 5, r.shop.Address, "", 1, "C", false, 0, "")
	}
	contact := ""
	if r.shop.Phone != "" {
		contact = "Phone: " + r.shop.Phone
	}
	if r.shop.Email != "" {
		if contact != "" {
			contact += "  |  "
		}
		contact += "Email: " + r.shop.Email
	}
	if contact != "" {
		pdf.CellFormat(0, 5, contact, "", 1, "C", false, 0, "")
	}
	if r.shop.GSTIN != "" {
		pdf.CellFormat(0, 5, "GSTIN: "+r.shop.GSTIN, "", 1, "C", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, "TAX INVOICE", "T", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 6, "Invoice No: "+sale.InvoiceID, "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, "Date: "+sale.SaleDate.Format("02 Jan 2006 15:04"), "", 1, "R", false, 0, "")
	pdf.CellFormat(95, 6, "Customer: "+sale.CustomerName, "", 0, "L", false, 0, "")
	mobile := sale.CustomerMobile
	if mobile == "" {
		mobile = "-"
	}
	pdf.CellFormat(95, 6, "Mobile: "+mobile, "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, "Payment Mode: "+sale.PaymentMode, "", 1, "L", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(12, 8, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(88, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, "Rate", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for i, item := range sale.Items {
		name := fmt.Sprintf("%s %s", item.TireBrand, item.TireSize)
		pdf.CellFormat(12, 8, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(88, 8, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, formatAmount(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, formatAmount(item.TotalPrice), "1", 1, "R", false, 0, "")
	}

	taxable := sale.TotalAmount / (1 + 2*gstRatePercent/100)
	gst := taxable * gstRatePercent / 100

	pdf.Ln(2)
	summaryRow(pdf, "Subtotal", formatAmount(sale.Subtotal), false)
	if sale.DiscountAmount > 0 {
		summaryRow(pdf, "Discount", "-"+formatAmount(sale.DiscountAmount), false)
	}
	summaryRow(pdf, fmt.Sprintf("CGST @ %.0f%%", gstRatePercent), formatAmount(gst), false)
	summaryRow(pdf, fmt.Sprintf("SGST @ %.0f%%", gstRatePercent), formatAmount(gst), false)
	summaryRow(pdf, "Grand Total", formatAmount(sale.TotalAmount), true)

	if sale.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 5, "Notes: "+sale.Notes, "", "L", false)
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, "Thank you for your business!", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, "Goods once sold will not be taken back.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func summaryRow(pdf *gofpdf.Fpdf, label string, value string, bold bool) {
	if bold {
		pdf.SetFont("Arial", "B", 11)
	} else {
		pdf.SetFont("Arial", "", 10)
	}
	pdf.CellFormat(120, 7, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, label, "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, value, "", 1, "R", false, 0, "")
}

func formatAmount(v float64) string {
	return fmt.Sprintf("Rs. %.2f", v)
}
