package trip

import (
	"fmt"
	"strings"
)

// Table is a raw tabular input: a header and string cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Has reports whether the header contains col.
func (t *Table) Has(col string) bool {
	for _, h := range t.Header {
		if h == col {
			return true
		}
	}
	return false
}

// Missing returns the required columns absent from the header.
func (t *Table) Missing(required []string) []string {
	var missing []string
	for _, col := range required {
		if !t.Has(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// Validate checks the table is non-empty and carries every required column.
func (t *Table) Validate(required []string) error {
	if len(t.Header) == 0 || len(t.Rows) == 0 {
		return fmt.Errorf("table is empty")
	}
	if missing := t.Missing(required); len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Records returns each row as a column-name keyed map. Short rows are padded
// with blanks and cells beyond the header are ignored.
func (t *Table) Records() []map[string]string {
	out := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		rec := make(map[string]string, len(t.Header))
		for j, col := range t.Header {
			if j < len(row) {
				rec[col] = row[j]
			} else {
				rec[col] = ""
			}
		}
		out[i] = rec
	}
	return out
}

// RowFromFields projects a field map back onto header order.
func RowFromFields(header []string, fields map[string]string) []string {
	row := make([]string, len(header))
	for i, col := range header {
		row[i] = fields[col]
	}
	return row
}
