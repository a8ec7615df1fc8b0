package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"salesdash/domain/core"
)

// Table is a loaded sales dataset: trimmed headers and raw string cells.
// It is read-only once constructed.
type Table struct {
	Source  string
	headers []string
	index   map[string]int
	rows    [][]string
}

// Group is one category of a GroupNumeric split
type Group struct {
	Key    string
	Values []float64
}

// NewTable builds a table; rows shorter than the header are padded with blanks
func NewTable(source string, headers []string, rows [][]string) (*Table, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("dataset %q has no header row", source)
	}

	t := &Table{
		Source:  source,
		headers: make([]string, len(headers)),
		index:   make(map[string]int, len(headers)),
		rows:    make([][]string, 0, len(rows)),
	}
	for i, h := range headers {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		t.headers[i] = h
		if _, dup := t.index[h]; !dup && h != "" {
			t.index[h] = i
		}
	}

	for _, r := range rows {
		row := make([]string, len(headers))
		copy(row, r)
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// Headers returns a copy of the column names
func (t *Table) Headers() []string {
	out := make([]string, len(t.headers))
	copy(out, t.headers)
	return out
}

// Len is the number of data rows
func (t *Table) Len() int { return len(t.rows) }

// HasColumns reports whether every named column is present
func (t *Table) HasColumns(cols ...string) bool {
	return len(t.MissingColumns(cols...)) == 0
}

// MissingColumns lists the named columns the table lacks, in argument order
func (t *Table) MissingColumns(cols ...string) []string {
	var missing []string
	for _, c := range cols {
		if _, ok := t.index[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// Numeric returns the parseable values of a column; blanks and non-numeric cells are skipped
func (t *Table) Numeric(col string) ([]float64, error) {
	idx, ok := t.index[col]
	if !ok {
		return nil, fmt.Errorf("column %q: %w", col, core.ErrMissingColumn)
	}

	out := make([]float64, 0, len(t.rows))
	for _, r := range t.rows {
		if v, ok := ParseNumber(r[idx]); ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// Categorical returns the trimmed cell values of a column, blanks included
func (t *Table) Categorical(col string) ([]string, error) {
	idx, ok := t.index[col]
	if !ok {
		return nil, fmt.Errorf("column %q: %w", col, core.ErrMissingColumn)
	}

	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = strings.TrimSpace(r[idx])
	}
	return out, nil
}

// GroupNumeric splits valueCol by groupCol, groups ordered by first appearance.
// Rows with a blank group or a non-numeric value are dropped.
func (t *Table) GroupNumeric(groupCol, valueCol string) ([]Group, error) {
	if missing := t.MissingColumns(groupCol, valueCol); len(missing) > 0 {
		return nil, fmt.Errorf("columns %s: %w", strings.Join(missing, ", "), core.ErrMissingColumn)
	}
	gi, vi := t.index[groupCol], t.index[valueCol]

	var groups []Group
	pos := make(map[string]int)
	for _, r := range t.rows {
		key := strings.TrimSpace(r[gi])
		if key == "" {
			continue
		}
		v, ok := ParseNumber(r[vi])
		if !ok {
			continue
		}
		i, seen := pos[key]
		if !seen {
			i = len(groups)
			pos[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Values = append(groups[i].Values, v)
	}
	return groups, nil
}

var currencyMarks = []string{"₹", "Rs.", "INR", "$", "€", "£", "¥", "USD", "EUR", "GBP"}

// ParseNumber reads a spreadsheet cell as a float. It tolerates currency marks,
// a trailing percent sign, comma thousands separators and (123) negatives.
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
		negative = true
	}
	for _, mark := range currencyMarks {
		s = strings.ReplaceAll(s, mark, "")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}
