package infra

// pdf.go renders read-only reports with go-pdf/fpdf:
//   - cash-flow summary (totals, active deposits, pending customer balances)
//   - per-customer statement (orders, payments, recognized sales)
//   - per-order sheet (customer, piece details, payments, outstanding balance)
// Rendering never touches the store; it only formats report DTOs.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nazim1903/Businesstracker/internal/dto"
	"github.com/nazim1903/Businesstracker/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

const pdfMargin = 15.0

func newDocument(title, subtitle string) (*fpdf.Fpdf, float64) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*pdfMargin

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, subtitle, "", 1, "L", false, 0, "")
	pdf.Ln(3)
	pdf.Line(pdfMargin, pdf.GetY(), pageW-pdfMargin, pdf.GetY())
	pdf.Ln(4)
	return pdf, contentW
}

func section(pdf *fpdf.Fpdf, w float64, title string) {
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(w, 7, title, "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
}

func amountRow(pdf *fpdf.Fpdf, w float64, label string, v decimal.Decimal) {
	pdf.CellFormat(w*0.7, 6, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(w*0.3, 6, money(v), "", 1, "R", false, 0, "")
}

func money(v decimal.Decimal) string {
	if v.IsNegative() {
		return "-$" + v.Neg().StringFixed(2)
	}
	return "$" + v.StringFixed(2)
}

// table writes a header row and body rows; widths are fractions of w.
func table(pdf *fpdf.Fpdf, w float64, widths []float64, header []string, rows [][]string) {
	pdf.SetFont("Helvetica", "B", 8)
	for i, h := range header {
		pdf.CellFormat(w*widths[i], 6, h, "B", 0, align(i, len(header)), false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 8)
	for _, r := range rows {
		for i, c := range r {
			pdf.CellFormat(w*widths[i], 5, truncate(c, int(widths[i]*110)), "", 0, align(i, len(r)), false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(rows) == 0 {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(w, 5, "None", "", 1, "L", false, 0, "")
	}
}

func align(i, n int) string {
	if i == n-1 {
		return "R"
	}
	return "L"
}

func truncate(s string, max int) string {
	r := []rune(s)
	if max < 4 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// WriteCashFlowPDF renders the dashboard report to w.
func WriteCashFlowPDF(w io.Writer, r *dto.DashboardReport) error {
	pdf, cw := newDocument("Cash Flow Report", "Generated "+r.GeneratedAt.Format("2006-01-02 15:04 MST"))

	section(pdf, cw, "Totals")
	amountRow(pdf, cw, "Total incoming (incl. deposits)", r.TotalIncoming)
	amountRow(pdf, cw, "Total outgoing", r.TotalOutgoing)
	amountRow(pdf, cw, "Company payments", r.TotalCompanyPayments)
	amountRow(pdf, cw, "Personal account", r.TotalPersonalPayments)
	pdf.SetFont("Helvetica", "B", 10)
	amountRow(pdf, cw, "Current balance", r.CurrentBalance)
	pdf.SetFont("Helvetica", "", 9)
	amountRow(pdf, cw, "Active deposits held", r.ActiveDepositsTotal)
	amountRow(pdf, cw, "Total profit", r.TotalProfit)
	amountRow(pdf, cw, "Half profit", r.HalfProfit)

	section(pdf, cw, "Active orders with deposits")
	rows := make([][]string, 0, len(r.ActiveOrdersWithDeposits))
	for _, o := range r.ActiveOrdersWithDeposits {
		rows = append(rows, []string{o.CustomerName, o.ProductName, o.Status, money(o.TotalPrice), money(o.DepositAmount)})
	}
	table(pdf, cw, []float64{0.25, 0.3, 0.15, 0.15, 0.15},
		[]string{"Customer", "Product", "Status", "Total", "Deposit"}, rows)

	section(pdf, cw, "Pending from customers")
	rows = rows[:0]
	for _, b := range r.CustomerBalances {
		rows = append(rows, []string{b.CustomerName, money(b.TotalSales), money(b.TotalReceived), money(b.PendingBalance)})
	}
	table(pdf, cw, []float64{0.4, 0.2, 0.2, 0.2},
		[]string{"Customer", "Sales", "Received", "Pending"}, rows)
	pdf.SetFont("Helvetica", "B", 9)
	amountRow(pdf, cw, "Total pending", r.TotalPendingFromCustomers)

	return output(pdf, w)
}

// WriteStatementPDF renders one customer's statement to w.
func WriteStatementPDF(w io.Writer, r *dto.CustomerReport) error {
	pdf, cw := newDocument("Customer Statement", r.Customer.Name)

	section(pdf, cw, "Balance")
	amountRow(pdf, cw, "Total sales", r.TotalSales)
	amountRow(pdf, cw, "Total received", r.TotalReceived)
	pdf.SetFont("Helvetica", "B", 10)
	amountRow(pdf, cw, "Pending balance", r.PendingBalance)

	section(pdf, cw, "Orders")
	rows := make([][]string, 0, len(r.Orders))
	for _, o := range r.Orders {
		deposit := "-"
		if o.Deposit != nil {
			deposit = money(*o.Deposit)
		}
		rows = append(rows, []string{o.CreatedAt.Format("2006-01-02"), o.ProductName, o.Status, deposit, money(o.TotalPrice)})
	}
	table(pdf, cw, []float64{0.15, 0.35, 0.15, 0.15, 0.2},
		[]string{"Date", "Product", "Status", "Deposit", "Total"}, rows)

	section(pdf, cw, "Payments")
	rows = rows[:0]
	for _, p := range r.Payments {
		rows = append(rows, []string{p.Date.Format("2006-01-02"), p.Type, p.Status, p.Description, money(p.Amount)})
	}
	table(pdf, cw, []float64{0.15, 0.15, 0.15, 0.35, 0.2},
		[]string{"Date", "Type", "Status", "Description", "Amount"}, rows)

	section(pdf, cw, "Sales")
	rows = rows[:0]
	for _, p := range r.Products {
		rows = append(rows, []string{p.CreatedAt.Format("2006-01-02"), p.Code, p.Name, money(p.Profit), money(p.SalePrice)})
	}
	table(pdf, cw, []float64{0.15, 0.2, 0.3, 0.15, 0.2},
		[]string{"Date", "Code", "Product", "Profit", "Sale"}, rows)

	return output(pdf, w)
}

// WriteOrderStatementPDF renders one order with its customer and payments to w.
func WriteOrderStatementPDF(w io.Writer, r *dto.OrderReport) error {
	o := r.Order
	pdf, cw := newDocument("Order Details", o.ProductName+" for "+r.Customer.Name)

	section(pdf, cw, "Customer")
	textRow(pdf, cw, "Name", r.Customer.Name)
	if r.Customer.Email != nil {
		textRow(pdf, cw, "Email", *r.Customer.Email)
	}
	if r.Customer.Phone != nil {
		textRow(pdf, cw, "Phone", *r.Customer.Phone)
	}

	section(pdf, cw, "Order status")
	textRow(pdf, cw, "Status", statusLabel(o.Status))
	textRow(pdf, cw, "Created", o.CreatedAt.Format("2006-01-02"))
	if o.Status == model.OrderCompleted {
		textRow(pdf, cw, "Completed", o.ModifiedAt.Format("2006-01-02"))
	}

	section(pdf, cw, "Product details")
	textRow(pdf, cw, "Product", o.ProductName)
	if o.GoldKarat != nil {
		textRow(pdf, cw, "Gold karat", *o.GoldKarat)
	}
	if o.DiamondCarat != nil {
		diamond := *o.DiamondCarat + "ct"
		if o.DiamondType != nil {
			diamond += " " + *o.DiamondType
		}
		textRow(pdf, cw, "Diamond", diamond)
	}
	if o.Size != nil {
		textRow(pdf, cw, "Size", *o.Size)
	}
	if d := strings.TrimSpace(o.Details); d != "" {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(cw, 6, "Details", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(cw, 5, d, "", "L", false)
	}
	if n := len(o.Images); n > 0 {
		textRow(pdf, cw, "Images", fmt.Sprintf("%d attached", n))
	}

	section(pdf, cw, "Amounts")
	amountRow(pdf, cw, "Total price", o.TotalPrice)
	deposit := decimal.Zero
	if o.Deposit != nil {
		deposit = *o.Deposit
	}
	amountRow(pdf, cw, "Deposit", deposit)
	amountRow(pdf, cw, "Paid", r.TotalPaid)
	pdf.SetFont("Helvetica", "B", 10)
	amountRow(pdf, cw, "Outstanding", r.Outstanding)

	section(pdf, cw, "Payments")
	rows := make([][]string, 0, len(r.Payments))
	for _, p := range r.Payments {
		rows = append(rows, []string{p.Date.Format("2006-01-02"), p.Type, p.Status, p.Description, money(p.Amount)})
	}
	table(pdf, cw, []float64{0.15, 0.15, 0.15, 0.35, 0.2},
		[]string{"Date", "Type", "Status", "Description", "Amount"}, rows)

	return output(pdf, w)
}

func textRow(pdf *fpdf.Fpdf, w float64, label, value string) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(w*0.3, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(w*0.7, 6, truncate(value, 80), "", 1, "L", false, 0, "")
}

// statusLabel turns "in_progress" into "In Progress".
func statusLabel(status string) string {
	words := strings.Split(status, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func output(pdf *fpdf.Fpdf, w io.Writer) error {
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: render: %w", err)
	}
	return nil
}

// SavePDF renders into storagePath/name (the directory is created if needed)
// and returns the file path.
func SavePDF(storagePath, name string, render func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, name)
	f, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("pdf: create file: %w", err)
	}
	if err := render(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
