// Package variant describes one configured dashboard: which model artifact, which
// feature schema, which dataset and how the insight panel treats missing columns.
package variant

import (
	"fmt"
	"strings"

	"salesdash/domain/core"
	"salesdash/domain/schema"
)

// GuardPolicy decides what the insight panel does when a chart's columns are absent
type GuardPolicy string

const (
	// GuardStrict fails the chart and stops the panel, matching the first dashboard
	GuardStrict GuardPolicy = "strict"
	// GuardSkip silently skips charts whose columns are absent
	GuardSkip GuardPolicy = "guarded"
)

// ParseGuardPolicy accepts the YAML/env spelling of a policy
func ParseGuardPolicy(s string) (GuardPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "guarded", "skip":
		return GuardSkip, nil
	case "strict":
		return GuardStrict, nil
	default:
		return "", fmt.Errorf("unknown guard policy %q", s)
	}
}

// Variant is one dashboard configuration
type Variant struct {
	Name        core.VariantName
	Title       string
	Heading     string // optional header above the prediction form
	FormTitle   string
	ButtonLabel string
	ResultLabel string
	Currency    string
	ModelPath   string
	DatasetPath string
	Guard       GuardPolicy
	Description string // markdown
	Schema      *schema.Schema
}

// Validate checks the fields every dashboard needs
func (v *Variant) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("%w: variant has no name", core.ErrInvalidSchema)
	}
	if v.Schema == nil {
		return fmt.Errorf("%w: variant %s has no feature schema", core.ErrInvalidSchema, v.Name)
	}
	if strings.TrimSpace(v.ModelPath) == "" {
		return fmt.Errorf("%w: variant %s has no model path", core.ErrInvalidSchema, v.Name)
	}
	if v.Guard != GuardStrict && v.Guard != GuardSkip {
		return fmt.Errorf("%w: variant %s has guard policy %q", core.ErrInvalidSchema, v.Name, v.Guard)
	}
	return nil
}

// WithDefaults fills presentation fields left blank
func (v Variant) WithDefaults() Variant {
	if v.Title == "" {
		v.Title = "Sales Trends Dashboard"
	}
	if v.FormTitle == "" {
		v.FormTitle = "Enter product and customer details"
	}
	if v.ButtonLabel == "" {
		v.ButtonLabel = "Predict Selling Price"
	}
	if v.ResultLabel == "" {
		v.ResultLabel = "Predicted Selling Price"
	}
	if v.Currency == "" {
		v.Currency = "₹"
	}
	if v.Guard == "" {
		v.Guard = GuardSkip
	}
	return v
}
