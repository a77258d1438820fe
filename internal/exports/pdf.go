package exports

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

const (
	pdfFont       = "Arial"
	pdfRowHeight  = 7.0
	pdfLineHeight = 5.0
	pdfFooterText = "Thank you for your business! If you have any questions about this invoice, please contact us."
)

type pdfColumn struct {
	title string
	width float64
	align string
}

var pdfColumns = []pdfColumn{
	{"Item", 10, "C"},
	{"Description", 28, "C"},
	{"Consignment Note", 30, "C"},
	{"Delivery Date", 22, "C"},
	{"Qty", 10, "C"},
	{"Weight KG", 18, "R"},
	{"U/ Price", 20, "R"},
	{"Disc. %", 14, "R"},
	{"Total", 28, "R"},
}

// RenderPDF writes inv as an A4 invoice.
func RenderPDF(w io.Writer, inv *Invoice) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+inv.Number, true)
	pdf.SetAuthor(inv.Letterhead.CompanyName, true)
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-14)
		pdf.SetFont(pdfFont, "I", 8)
		pdf.SetTextColor(108, 117, 125)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	drawLetterhead(pdf, inv, tr)
	drawTableHeader(pdf, inv.Letterhead.Currency)

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	pdf.SetFont(pdfFont, "", 9)
	pdf.SetTextColor(72, 75, 81)
	for _, line := range inv.Lines {
		if pdf.GetY()+pdfRowHeight > pageHeight-bottom {
			pdf.AddPage()
			drawTableHeader(pdf, inv.Letterhead.Currency)
			pdf.SetFont(pdfFont, "", 9)
			pdf.SetTextColor(72, 75, 81)
		}
		cells := []string{
			fmt.Sprint(line.Item),
			tr(line.Description),
			tr(line.ConsignmentNote),
			line.DeliveryDate,
			fmt.Sprint(line.Qty),
			line.Weight.StringFixed(3),
			line.UnitPrice.StringFixed(2),
			line.Discount.StringFixed(2),
			line.Total.StringFixed(2),
		}
		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, pdfRowHeight, cells[i], "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	drawTotal(pdf, inv.Total)

	pdf.Ln(8)
	pdf.SetFont(pdfFont, "", 9)
	pdf.SetTextColor(108, 117, 125)
	pdf.MultiCell(0, pdfLineHeight, pdfFooterText, "", "C", false)

	return pdf.Output(w)
}

func drawLetterhead(pdf *fpdf.Fpdf, inv *Invoice, tr func(string) string) {
	pdf.SetFont(pdfFont, "B", 22)
	pdf.SetTextColor(64, 118, 212)
	pdf.CellFormat(0, 12, "INVOICE", "B", 1, "L", false, 0, "")
	pdf.Ln(3)

	left := []string{inv.Letterhead.CompanyName}
	left = append(left, inv.Letterhead.Address...)
	contact := make([]string, 0, 2)
	if inv.Letterhead.Phone != "" {
		contact = append(contact, "TEL: "+inv.Letterhead.Phone)
	}
	if inv.Letterhead.Fax != "" {
		contact = append(contact, "FAX: "+inv.Letterhead.Fax)
	}
	if len(contact) > 0 {
		left = append(left, strings.Join(contact, "    "))
	}
	left = append(left, "", "BILL TO: "+inv.BillTo)

	right := []string{
		"No. : " + inv.Number,
		"Your Ref. : " + inv.Reference,
		"Terms : " + inv.Letterhead.Terms,
		"Date : " + inv.IssuedAt.Format(invoiceDateLayout),
		fmt.Sprintf("Page : %d of {nb}", pdf.PageNo()),
	}

	pdf.SetTextColor(72, 75, 81)
	rows := len(left)
	if len(right) > rows {
		rows = len(right)
	}
	for i := 0; i < rows; i++ {
		pdf.SetFont(pdfFont, "", 9)
		if i == 0 {
			pdf.SetFont(pdfFont, "B", 10)
		}
		pdf.CellFormat(110, pdfLineHeight, tr(at(left, i)), "", 0, "L", false, 0, "")
		pdf.SetFont(pdfFont, "", 9)
		pdf.CellFormat(0, pdfLineHeight, tr(at(right, i)), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}

func drawTableHeader(pdf *fpdf.Fpdf, currency string) {
	pdf.SetFont(pdfFont, "B", 9)
	pdf.SetFillColor(243, 248, 250)
	pdf.SetDrawColor(221, 221, 221)
	pdf.SetTextColor(72, 75, 81)
	for _, col := range pdfColumns {
		title := col.title
		if currency != "" && (title == "U/ Price" || title == "Total") {
			title += " " + currency
		}
		pdf.CellFormat(col.width, pdfRowHeight+1, title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

func drawTotal(pdf *fpdf.Fpdf, total decimal.Decimal) {
	labelWidth := 0.0
	for _, col := range pdfColumns[:len(pdfColumns)-1] {
		labelWidth += col.width
	}
	pdf.SetFont(pdfFont, "B", 9)
	pdf.SetFillColor(233, 246, 255)
	pdf.CellFormat(labelWidth, pdfRowHeight+1, "Total Price:", "1", 0, "R", true, 0, "")
	pdf.CellFormat(pdfColumns[len(pdfColumns)-1].width, pdfRowHeight+1, total.StringFixed(2), "1", 1, "R", true, 0, "")
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
