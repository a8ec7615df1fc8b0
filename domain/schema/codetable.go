package schema

import (
	"fmt"

	"salesdash/domain/core"
)

// CodeEntry pairs a human-readable label with its model code
type CodeEntry struct {
	Label string `json:"label" yaml:"label"`
	Code  int    `json:"code" yaml:"code"`
}

// CodeTable is an immutable label-to-code mapping for one categorical attribute.
// Entry order is the order the dropdown presents.
type CodeTable struct {
	attribute string
	entries   []CodeEntry
	byLabel   map[string]int
}

// NewCodeTable builds a table from explicit entries, rejecting duplicate labels,
// duplicate codes and negative codes.
func NewCodeTable(attribute string, entries []CodeEntry) (*CodeTable, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: code table for %s is empty", core.ErrInvalidSchema, attribute)
	}

	t := &CodeTable{
		attribute: attribute,
		entries:   make([]CodeEntry, len(entries)),
		byLabel:   make(map[string]int, len(entries)),
	}
	seenCodes := make(map[int]string, len(entries))

	for i, e := range entries {
		if e.Code < 0 {
			return nil, fmt.Errorf("%w: %s label %q has negative code %d", core.ErrInvalidSchema, attribute, e.Label, e.Code)
		}
		if _, dup := t.byLabel[e.Label]; dup {
			return nil, fmt.Errorf("%w: %s label %q", core.ErrDuplicateLabel, attribute, e.Label)
		}
		if other, dup := seenCodes[e.Code]; dup {
			return nil, fmt.Errorf("%w: %s code %d used by %q and %q", core.ErrDuplicateCode, attribute, e.Code, other, e.Label)
		}
		seenCodes[e.Code] = e.Label
		t.byLabel[e.Label] = e.Code
		t.entries[i] = e
	}

	return t, nil
}

// Enumerate assigns codes 0..n-1 in label order
func Enumerate(attribute string, labels ...string) (*CodeTable, error) {
	entries := make([]CodeEntry, len(labels))
	for i, label := range labels {
		entries[i] = CodeEntry{Label: label, Code: i}
	}
	return NewCodeTable(attribute, entries)
}

// IntegerRange builds a table whose labels are the decimal strings of lo..hi
// mapped to themselves, used for already-numeric dropdowns.
func IntegerRange(attribute string, lo, hi int) (*CodeTable, error) {
	if hi < lo {
		return nil, fmt.Errorf("%w: %s range %d..%d", core.ErrInvalidSchema, attribute, lo, hi)
	}
	entries := make([]CodeEntry, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		entries = append(entries, CodeEntry{Label: fmt.Sprintf("%d", v), Code: v})
	}
	return NewCodeTable(attribute, entries)
}

// Encode returns the code for label
func (t *CodeTable) Encode(label string) (int, error) {
	code, ok := t.byLabel[label]
	if !ok {
		return 0, core.NewUnknownLabelError(t.attribute, label)
	}
	return code, nil
}

// Labels returns the dropdown labels in presentation order
func (t *CodeTable) Labels() []string {
	labels := make([]string, len(t.entries))
	for i, e := range t.entries {
		labels[i] = e.Label
	}
	return labels
}

// Entries returns a copy of the table entries
func (t *CodeTable) Entries() []CodeEntry {
	out := make([]CodeEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of labels
func (t *CodeTable) Len() int {
	return len(t.entries)
}

// Attribute returns the attribute name the table encodes
func (t *CodeTable) Attribute() string {
	return t.attribute
}

// First returns the first label, the dropdown default
func (t *CodeTable) First() string {
	return t.entries[0].Label
}
