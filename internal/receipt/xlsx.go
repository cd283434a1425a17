package receipt

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	itemsSheet  = "Items"
	totalsSheet = "Totals"
)

// ImportFromXLSX replaces the line items with the rows of the first sheet of
// the workbook read from r. Rows follow the CSV layout. A workbook that cannot
// be read leaves the items untouched.
func (e *Editor) ImportFromXLSX(r io.Reader) bool {
	f, err := excelize.OpenReader(r)
	if err != nil {
		slog.Error("Error opening workbook", "error", err)
		return false
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		slog.Error("Workbook has no sheets")
		return false
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		slog.Error("Error reading sheet", "sheet", sheets[0], "error", err)
		return false
	}

	cols := positionalColumns
	if len(rows) > 0 && isHeader(strings.Join(rows[0], ",")) {
		cols = headerColumns(rows[0])
		rows = rows[1:]
	}

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		if strings.Join(row, "") == "" {
			continue
		}
		records = append(records, row)
	}

	count := e.importRecords(records, cols)
	if count == 0 {
		slog.Warn("No items imported from workbook", "sheet", sheets[0])
		return false
	}
	slog.Info("Imported items from workbook", "sheet", sheets[0], "count", count)
	return true
}

// ExportXLSX writes the live receipt as a workbook with an Items sheet, laid out
// so ImportFromXLSX can read it back, and a Totals sheet
func (e *Editor) ExportXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", itemsSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	headings := []interface{}{"Name", "Description", "Price", "Quantity", "Amount"}
	if err := f.SetSheetRow(itemsSheet, "A1", &headings); err != nil {
		return fmt.Errorf("writing headings: %w", err)
	}

	rowNo := 2
	for _, item := range e.receipt.Items {
		values := []interface{}{item.Name, item.Description, item.Price, item.Quantity, item.Amount()}
		if err := f.SetSheetRow(itemsSheet, fmt.Sprintf("A%d", rowNo), &values); err != nil {
			return fmt.Errorf("writing item %s: %w", item.ID, err)
		}
		rowNo++
	}

	if _, err := f.NewSheet(totalsSheet); err != nil {
		return fmt.Errorf("creating totals sheet: %w", err)
	}
	totals := []struct {
		label string
		value float64
	}{
		{"Subtotal", e.Subtotal()},
		{"Discount", e.DiscountValue()},
		{"Tax", e.TaxValue()},
		{"Total", e.Total()},
	}
	for i, t := range totals {
		values := []interface{}{t.label, t.value}
		if err := f.SetSheetRow(totalsSheet, fmt.Sprintf("A%d", i+1), &values); err != nil {
			return fmt.Errorf("writing %s: %w", strings.ToLower(t.label), err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
