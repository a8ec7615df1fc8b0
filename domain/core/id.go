package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	PredictionID ID
	VariantName  ID
	ChartID      ID
)

func (id PredictionID) String() string { return ID(id).String() }
func (n VariantName) String() string   { return ID(n).String() }
func (id ChartID) String() string      { return ID(id).String() }

// NewPredictionID returns a time-ordered prediction identifier
func NewPredictionID() PredictionID {
	return PredictionID(NewID())
}

// ParseVariantName normalizes and validates a variant name
func ParseVariantName(s string) (VariantName, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return "", fmt.Errorf("variant name cannot be empty")
	}
	for _, r := range name {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return "", fmt.Errorf("variant name %q contains invalid character %q", s, r)
		}
	}
	return VariantName(name), nil
}

// ParseChartID parses a string into ChartID
func ParseChartID(s string) (ChartID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("chart ID cannot be empty")
	}
	return ChartID(s), nil
}
