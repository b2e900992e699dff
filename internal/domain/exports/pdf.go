package exports

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"capworks/internal/domain/customers"
	"capworks/internal/domain/wages"
)

func newDocument(title string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, title)
	pdf.Ln(12)
	return pdf
}

// WriteWageSheetPDF renders every slip as a table section.
func WriteWageSheetPDF(w io.Writer, slips []wages.WageSlip, currency string, generatedAt time.Time) error {
	pdf := newDocument("Wage Sheet")
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.Format("2006-01-02 15:04")))
	pdf.Ln(10)

	grand := decimal.Zero
	for _, slip := range slips {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, fmt.Sprintf("Worker: %s", slip.WorkerID))
		pdf.Ln(8)

		pdf.SetFont("Helvetica", "B", 10)
		for _, col := range []struct {
			label string
			width float64
		}{{"Cap type", 60}, {"Units", 25}, {"Dozens", 25}, {"Rate/dozen", 35}, {"Amount", 35}} {
			pdf.CellFormat(col.width, 7, col.label, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 10)
		for _, line := range slip.Lines {
			pdf.CellFormat(60, 7, line.CapTypeName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(25, 7, fmt.Sprintf("%d", line.Units), "1", 0, "R", false, 0, "")
			pdf.CellFormat(25, 7, fmt.Sprintf("%d", line.Dozens), "1", 0, "R", false, 0, "")
			pdf.CellFormat(35, 7, line.RatePerDozen.StringFixed(2), "1", 0, "R", false, 0, "")
			pdf.CellFormat(35, 7, line.Amount.StringFixed(2), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(145, 7, "Total", "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, fmt.Sprintf("%s %s", slip.Total.StringFixed(2), currency), "1", 0, "R", false, 0, "")
		pdf.Ln(12)
		grand = grand.Add(slip.Total)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Wage bill: %s %s", grand.StringFixed(2), currency))
	return pdf.Output(w)
}

// WriteReceiptPDF renders a payment receipt. customer may be nil when the
// customer record has since been removed.
func WriteReceiptPDF(w io.Writer, payment customers.Payment, customer *customers.Customer, currency string) error {
	pdf := newDocument("Payment Receipt")
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Receipt: %s", payment.ID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Date: %s", payment.CreatedAt.Format("2006-01-02")))
	pdf.Ln(7)
	if customer != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Customer: %s", customer.Name))
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("Phone: %s", customer.Phone))
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("Location: %s", customer.Location))
	} else {
		pdf.Cell(0, 8, fmt.Sprintf("Customer: %s", payment.CustomerID))
	}
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %s %s", payment.TotalAmount.StringFixed(2), currency))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Received: %s %s", payment.ReceivedAmount.StringFixed(2), currency))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Outstanding: %s %s", payment.Outstanding().StringFixed(2), currency))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Mode: %s", payment.Mode))
	if payment.Reference != "" {
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("Reference: %s", payment.Reference))
	}
	return pdf.Output(w)
}

// SaveFile renders into dir/name, creating dir when needed, and returns the
// written path.
func SaveFile(dir, name string, render func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := render(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
