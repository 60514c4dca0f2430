package export

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/finanzas/internal/model"
	"github.com/go-pdf/fpdf"
)

type rgb struct{ r, g, b int }

var (
	green     = rgb{34, 197, 94}
	red       = rgb{239, 68, 68}
	grey      = rgb{100, 100, 100}
	lightGrey = rgb{150, 150, 150}
	stripe    = rgb{249, 250, 251}
	incomeBg  = rgb{220, 252, 231}
	incomeFg  = rgb{21, 128, 61}
	expenseBg = rgb{254, 226, 226}
	expenseFg = rgb{185, 28, 28}
)

// column widths in mm, matching Columns.
var widths = []float64{25, 45, 35, 30, 30, 25}

const (
	margin    = 14.0
	rowHeight = 7.0
	tableTop  = 75.0
)

// PDFWriter renders a Report as an A4 PDF.
type PDFWriter struct {
	logger   *slog.Logger
	compress bool
}

// NewPDFWriter creates a PDF renderer.
func NewPDFWriter() *PDFWriter {
	return &PDFWriter{
		logger:   slog.Default().With("component", "pdf"),
		compress: true,
	}
}

// Write renders r into w.
func (p *PDFWriter) Write(w io.Writer, r Report) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(p.compress)
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(false, 0)
	doc.AliasNbPages("")
	tr := doc.UnicodeTranslatorFromDescriptor("")

	pageWidth, pageHeight := doc.GetPageSize()

	doc.SetFooterFunc(func() {
		doc.SetFont("Helvetica", "", 8)
		setText(doc, lightGrey)
		doc.SetXY(0, pageHeight-12)
		doc.CellFormat(pageWidth, 4, tr(fmt.Sprintf("Página %d de {nb}", doc.PageNo())), "", 0, "C", false, 0, "")
	})

	doc.AddPage()
	p.writeHeading(doc, tr, r)

	doc.SetY(tableTop)
	p.writeTableHeader(doc, tr)

	for i, row := range r.Rows() {
		if doc.GetY()+rowHeight > pageHeight-20 {
			doc.AddPage()
			p.writeTableHeader(doc, tr)
		}
		p.writeRow(doc, tr, i, row, r.Transactions[i].Type == model.TransactionIncome)
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}

	p.logger.Info("rendered pdf",
		"transactions", len(r.Transactions),
		"pages", doc.PageCount())
	return nil
}

func (p *PDFWriter) writeHeading(doc *fpdf.Fpdf, tr func(string) string, r Report) {
	doc.SetFont("Helvetica", "", 18)
	setText(doc, green)
	doc.Text(margin, 22, "Historial de Transacciones")

	doc.SetFont("Helvetica", "", 10)
	setText(doc, grey)
	doc.Text(margin, 30, "Generado el: "+r.GeneratedAt.Format("02/01/2006"))
	doc.Text(margin, 36, fmt.Sprintf("Total de transacciones: %d", r.Summary.Count))

	doc.SetFont("Helvetica", "", 12)
	setText(doc, rgb{})
	doc.Text(margin, 46, "Resumen Financiero:")

	doc.SetFont("Helvetica", "", 10)
	setText(doc, green)
	doc.Text(margin, 53, tr("Ingresos: "+FormatCurrency(r.Summary.Income, "ARS")))
	setText(doc, red)
	doc.Text(margin, 59, tr("Egresos: "+FormatCurrency(r.Summary.Expenses, "ARS")))
	if r.Summary.Balance.IsNegative() {
		setText(doc, red)
	} else {
		setText(doc, green)
	}
	doc.Text(margin, 65, tr("Balance: "+FormatCurrency(r.Summary.Balance, "ARS")))
}

func (p *PDFWriter) writeTableHeader(doc *fpdf.Fpdf, tr func(string) string) {
	doc.SetFont("Helvetica", "B", 10)
	setFill(doc, green)
	doc.SetTextColor(255, 255, 255)
	doc.SetX(margin)
	for i, col := range Columns {
		doc.CellFormat(widths[i], rowHeight, tr(col), "", 0, "L", true, 0, "")
	}
	doc.Ln(rowHeight)
}

func (p *PDFWriter) writeRow(doc *fpdf.Fpdf, tr func(string) string, index int, row []string, income bool) {
	doc.SetFont("Helvetica", "", 9)
	doc.SetX(margin)

	striped := index%2 == 1
	if striped {
		setFill(doc, stripe)
	}

	for i, cell := range row {
		text := fit(doc, tr, cell, widths[i]-2)
		align := "L"
		fill := striped

		switch i {
		case 4:
			align = "R"
			doc.SetFont("Helvetica", "B", 9)
			if income {
				setText(doc, green)
			} else {
				setText(doc, red)
			}
		case 5:
			align = "C"
			fill = true
			if income {
				setFill(doc, incomeBg)
				setText(doc, incomeFg)
			} else {
				setFill(doc, expenseBg)
				setText(doc, expenseFg)
			}
		default:
			doc.SetFont("Helvetica", "", 9)
			setText(doc, rgb{})
		}

		doc.CellFormat(widths[i], rowHeight, text, "", 0, align, fill, 0, "")
	}
	doc.Ln(rowHeight)
}

// fit truncates s with an ellipsis so it renders within width. It returns
// the translated string ready for the core fonts.
func fit(doc *fpdf.Fpdf, tr func(string) string, s string, width float64) string {
	if doc.GetStringWidth(tr(s)) <= width {
		return tr(s)
	}
	runes := []rune(s)
	for len(runes) > 0 && doc.GetStringWidth(tr(string(runes)+"...")) > width {
		runes = runes[:len(runes)-1]
	}
	return tr(string(runes) + "...")
}

func setText(doc *fpdf.Fpdf, c rgb) { doc.SetTextColor(c.r, c.g, c.b) }

func setFill(doc *fpdf.Fpdf, c rgb) { doc.SetFillColor(c.r, c.g, c.b) }
