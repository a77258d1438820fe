package exports

import (
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/multierr"
)

const (
	excelSheet       = "Invoice"
	excelHeaderRow   = 8
	excelMoneyFormat = "#,##0.00"
	excelWeightFmt   = "0.000"
)

var excelHeaders = []string{
	"Item",
	"Manifest No",
	"Description",
	"Consignment Note",
	"Consignor",
	"Consignee",
	"Delivery Date",
	"Qty",
	"Weight KG",
	"U/ Price",
	"Disc. %",
	"Total",
}

// RenderExcel writes inv as a single-sheet workbook.
func RenderExcel(w io.Writer, inv *Invoice) (err error) {
	f := excelize.NewFile()
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	if err = f.SetSheetName("Sheet1", excelSheet); err != nil {
		return err
	}

	styles, err := newExcelStyles(f)
	if err != nil {
		return err
	}

	set := func(cell string, value any) {
		err = multierr.Append(err, f.SetCellValue(excelSheet, cell, value))
	}
	style := func(from, to string, id int) {
		err = multierr.Append(err, f.SetCellStyle(excelSheet, from, to, id))
	}

	set("A1", "INVOICE")
	style("A1", "A1", styles.title)
	set("A3", inv.Letterhead.CompanyName)
	style("A3", "A3", styles.bold)
	for i, line := range inv.Letterhead.Address {
		if i >= 2 {
			break
		}
		set(cellName(1, 4+i), line)
	}
	set("A6", "BILL TO: "+inv.BillTo)
	set("J3", "No. :")
	set("K3", inv.Number)
	set("J4", "Your Ref. :")
	set("K4", inv.Reference)
	set("J5", "Terms :")
	set("K5", inv.Letterhead.Terms)
	set("J6", "Date :")
	set("K6", inv.IssuedAt.Format(invoiceDateLayout))

	headers := make([]any, len(excelHeaders))
	for i, h := range excelHeaders {
		if inv.Letterhead.Currency != "" && (h == "U/ Price" || h == "Total") {
			h += " " + inv.Letterhead.Currency
		}
		headers[i] = h
	}
	err = multierr.Append(err, f.SetSheetRow(excelSheet, cellName(1, excelHeaderRow), &headers))
	style(cellName(1, excelHeaderRow), cellName(len(excelHeaders), excelHeaderRow), styles.header)

	row := excelHeaderRow
	for _, line := range inv.Lines {
		row++
		values := []any{
			line.Item,
			line.ManifestNo,
			line.Description,
			line.ConsignmentNote,
			line.Consignor,
			line.Consignee,
			line.DeliveryDate,
			line.Qty,
			line.Weight.InexactFloat64(),
			line.UnitPrice.InexactFloat64(),
			line.Discount.InexactFloat64(),
			line.Total.InexactFloat64(),
		}
		err = multierr.Append(err, f.SetSheetRow(excelSheet, cellName(1, row), &values))
	}
	if len(inv.Lines) > 0 {
		style(cellName(9, excelHeaderRow+1), cellName(9, row), styles.weight)
		style(cellName(10, excelHeaderRow+1), cellName(12, row), styles.money)
	}

	row++
	set(cellName(11, row), "Total Price:")
	set(cellName(12, row), inv.Total.InexactFloat64())
	style(cellName(1, row), cellName(11, row), styles.totalLabel)
	style(cellName(12, row), cellName(12, row), styles.total)

	err = multierr.Append(err, f.SetColWidth(excelSheet, "A", "A", 6))
	err = multierr.Append(err, f.SetColWidth(excelSheet, "B", "G", 18))
	err = multierr.Append(err, f.SetColWidth(excelSheet, "H", "L", 12))
	if err != nil {
		return err
	}
	return f.Write(w)
}

type excelStyles struct {
	title      int
	bold       int
	header     int
	money      int
	weight     int
	totalLabel int
	total      int
}

func newExcelStyles(f *excelize.File) (excelStyles, error) {
	var (
		s   excelStyles
		err error
	)
	add := func(style *excelize.Style) int {
		id, styleErr := f.NewStyle(style)
		err = multierr.Append(err, styleErr)
		return id
	}
	border := []excelize.Border{
		{Type: "left", Color: "DDDDDD", Style: 1},
		{Type: "right", Color: "DDDDDD", Style: 1},
		{Type: "top", Color: "DDDDDD", Style: 1},
		{Type: "bottom", Color: "DDDDDD", Style: 1},
	}
	moneyFmt := excelMoneyFormat
	weightFmt := excelWeightFmt

	s.title = add(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 20, Color: "4076D4"}})
	s.bold = add(&excelize.Style{Font: &excelize.Font{Bold: true}})
	s.header = add(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F3F8FA"}},
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	s.money = add(&excelize.Style{CustomNumFmt: &moneyFmt, Border: border})
	s.weight = add(&excelize.Style{CustomNumFmt: &weightFmt, Border: border})
	s.totalLabel = add(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E9F6FF"}},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	s.total = add(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		Fill:         excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E9F6FF"}},
		CustomNumFmt: &moneyFmt,
		Border:       border,
	})
	return s, err
}

func cellName(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "A1"
	}
	return name
}
