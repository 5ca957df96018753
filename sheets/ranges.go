package sheets

import (
	"fmt"
	"strconv"
	"strings"
)

// WriteRange derives the two-column output range that lines up with
// readRange: same sheet, same first row, n rows tall, starting at column col.
//
//	WriteRange("Sheet1!A2:A", "B", 3) == "Sheet1!B2:C4"
func WriteRange(readRange, col string, n int) (string, error) {
	sheet, cells := splitSheet(readRange)

	start := cells
	if i := strings.IndexByte(cells, ':'); i >= 0 {
		start = cells[:i]
	}
	_, row, err := splitCell(start)
	if err != nil {
		return "", fmt.Errorf("sheets: read range %q: %w", readRange, err)
	}
	if row == 0 {
		row = 1
	}

	col = strings.ToUpper(strings.TrimSpace(col))
	if !isColumn(col) {
		return "", fmt.Errorf("sheets: invalid column %q", col)
	}

	end := row + n - 1
	if n < 1 {
		end = row
	}
	return fmt.Sprintf("%s%s%d:%s%d", sheet, col, row, NextColumn(col), end), nil
}

// NextColumn returns the column letter after col ("B" → "C", "Z" → "AA").
func NextColumn(col string) string {
	b := []byte(strings.ToUpper(col))
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 'Z' {
			b[i]++
			return string(b)
		}
		b[i] = 'A'
	}
	return "A" + string(b)
}

// splitSheet separates "Sheet1!A2:A" into ("Sheet1!", "A2:A"). The sheet
// part keeps its "!" and any quoting.
func splitSheet(rng string) (string, string) {
	if i := strings.LastIndexByte(rng, '!'); i >= 0 {
		return rng[:i+1], rng[i+1:]
	}
	return "", rng
}

// splitCell splits "AB12" into ("AB", 12). A bare column yields row 0.
func splitCell(cell string) (string, int, error) {
	cell = strings.ToUpper(strings.TrimSpace(cell))
	i := 0
	for i < len(cell) && cell[i] >= 'A' && cell[i] <= 'Z' {
		i++
	}
	col, digits := cell[:i], cell[i:]
	if col == "" {
		return "", 0, fmt.Errorf("missing column in %q", cell)
	}
	if digits == "" {
		return col, 0, nil
	}
	row, err := strconv.Atoi(digits)
	if err != nil || row < 1 {
		return "", 0, fmt.Errorf("invalid row in %q", cell)
	}
	return col, row, nil
}

func isColumn(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
