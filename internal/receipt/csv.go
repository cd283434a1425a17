package receipt

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

const unnamedItem = "Unnamed Item"

var (
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
)

// columns maps record positions to line item fields; -1 means absent
type columns struct {
	name, description, price, quantity int
}

// positionalColumns is the layout used when the input has no header row
var positionalColumns = columns{name: 0, description: 1, price: 2, quantity: 3}

// isHeader reports whether a first line names both the name and price columns
func isHeader(line string) bool {
	line = strings.ToLower(line)
	return strings.Contains(line, "name") && strings.Contains(line, "price")
}

// headerColumns maps each field to the first header cell that names it
func headerColumns(header []string) columns {
	cols := columns{name: -1, description: -1, price: -1, quantity: -1}
	for i, cell := range header {
		cell = strings.ToLower(strings.TrimSpace(cell))
		switch {
		case cols.name < 0 && strings.Contains(cell, "name"):
			cols.name = i
		case cols.price < 0 && strings.Contains(cell, "price"):
			cols.price = i
		case cols.description < 0 && strings.Contains(cell, "desc"):
			cols.description = i
		case cols.quantity < 0 && (strings.Contains(cell, "qty") || strings.Contains(cell, "quantity")):
			cols.quantity = i
		}
	}
	return cols
}

// ImportFromCSV replaces the line items with the rows of csvData and reports
// whether at least one row was imported. Existing items are discarded even
// when nothing could be imported.
func (e *Editor) ImportFromCSV(csvData string) bool {
	lines := strings.Split(csvData, "\n")

	cols := positionalColumns
	start := 0
	if isHeader(lines[0]) {
		cols = headerColumns(splitCSVLine(strings.TrimSpace(lines[0])))
		start = 1
	}

	records := make([][]string, 0, len(lines))
	for _, line := range lines[start:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		records = append(records, splitCSVLine(line))
	}

	count := e.importRecords(records, cols)
	if count == 0 {
		slog.Warn("No items imported from CSV", "lines", len(lines))
		return false
	}
	slog.Info("Imported items from CSV", "count", count)
	return true
}

// importRecords clears the items and appends one item per record with at
// least two fields. It returns the number of imported items.
func (e *Editor) importRecords(records [][]string, cols columns) int {
	e.receipt.Items = []LineItem{}

	for _, values := range records {
		if len(values) < 2 {
			continue
		}

		name := field(values, cols.name)
		if name == "" {
			name = unnamedItem
		}
		e.receipt.Items = append(e.receipt.Items, LineItem{
			ID:          e.idGenerator.Generate(),
			Name:        name,
			Description: field(values, cols.description),
			Price:       parsePrice(field(values, cols.price)),
			Quantity:    parseQuantity(field(values, cols.quantity)),
		})
	}
	return len(e.receipt.Items)
}

func field(values []string, i int) string {
	if i < 0 || i >= len(values) {
		return ""
	}
	return values[i]
}

// parsePrice reads the leading decimal number of s, or 0
func parsePrice(s string) float64 {
	v, err := strconv.ParseFloat(floatPrefix.FindString(strings.TrimSpace(s)), 64)
	if err != nil {
		return 0
	}
	return v
}

// parseQuantity reads the leading integer of s; zero and unparsable values become 1
func parseQuantity(s string) float64 {
	v, err := strconv.Atoi(intPrefix.FindString(strings.TrimSpace(s)))
	if err != nil || v == 0 {
		return 1
	}
	return float64(v)
}

// splitCSVLine splits line on commas outside double quotes and trims each field.
// Inside quotes a doubled quote ("") yields a literal quote.
func splitCSVLine(line string) []string {
	var (
		result   []string
		current  strings.Builder
		inQuotes bool
	)

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; {
		case r == '"' && inQuotes && i+1 < len(runes) && runes[i+1] == '"':
			current.WriteRune('"')
			i++
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			result = append(result, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(result, strings.TrimSpace(current.String()))
}
