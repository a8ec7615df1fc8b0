package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"salesdash/domain/core"
)

// Inputs holds raw widget values keyed by feature name
type Inputs map[string]string

// FeatureVector is the fixed-order numeric tuple handed to the model
type FeatureVector []float64

// Assemble encodes inputs into a vector in schema order. Absent values take the
// widget default; present values are parsed, bounds-checked and encoded.
func (s *Schema) Assemble(in Inputs) (FeatureVector, error) {
	vec := make(FeatureVector, len(s.features))
	for i, f := range s.features {
		raw, ok := in[f.Name]
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			raw = f.DefaultInput()
		}

		v, err := f.value(raw)
		if err != nil {
			return nil, err
		}
		vec[i] = v
	}
	return vec, nil
}

func (f FeatureSpec) value(raw string) (float64, error) {
	if f.IsCategorical() {
		code, err := f.Codes.Encode(raw)
		if err != nil {
			return 0, err
		}
		return float64(code), nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s = %q", core.ErrInvalidNumber, f.Label, raw)
	}
	if f.Min != nil && v < *f.Min {
		return 0, fmt.Errorf("%w: %s = %v is below %v", core.ErrOutOfRange, f.Label, v, *f.Min)
	}
	if f.Max != nil && v > *f.Max {
		return 0, fmt.Errorf("%w: %s = %v is above %v", core.ErrOutOfRange, f.Label, v, *f.Max)
	}
	if f.Integer && v != float64(int64(v)) {
		return 0, fmt.Errorf("%w: %s must be a whole number, got %v", core.ErrInvalidNumber, f.Label, v)
	}
	return v, nil
}

// Merge overlays non-empty values from other onto a copy of in
func (in Inputs) Merge(other Inputs) Inputs {
	out := make(Inputs, len(in)+len(other))
	for k, v := range in {
		out[k] = v
	}
	for k, v := range other {
		if strings.TrimSpace(v) != "" {
			out[k] = v
		}
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
