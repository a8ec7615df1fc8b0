package schema

import (
	"fmt"
	"strings"

	"salesdash/domain/core"
)

// Kind distinguishes numeric inputs from dropdown selections
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
)

// FeatureSpec describes one position of the feature vector and the widget that feeds it
type FeatureSpec struct {
	Name    string     `json:"name"`
	Label   string     `json:"label"`
	Kind    Kind       `json:"kind"`
	Codes   *CodeTable `json:"-"`
	Default float64    `json:"default"`
	Min     *float64   `json:"min,omitempty"`
	Max     *float64   `json:"max,omitempty"`
	Step    float64    `json:"step,omitempty"`
	Integer bool       `json:"integer,omitempty"`
	Group   int        `json:"group"`
}

// IsCategorical reports whether the feature is fed by a dropdown
func (f FeatureSpec) IsCategorical() bool {
	return f.Kind == KindCategorical
}

// DefaultInput returns the widget's initial raw value
func (f FeatureSpec) DefaultInput() string {
	if f.IsCategorical() {
		return f.Codes.First()
	}
	if f.Integer {
		return fmt.Sprintf("%d", int64(f.Default))
	}
	return formatFloat(f.Default)
}

// Schema is the ordered feature list a model artifact was trained on.
// Order is a positional contract with the model.
type Schema struct {
	features []FeatureSpec
	index    map[string]int
}

// New validates and builds a schema
func New(features []FeatureSpec) (*Schema, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: no features", core.ErrInvalidSchema)
	}

	s := &Schema{
		features: make([]FeatureSpec, len(features)),
		index:    make(map[string]int, len(features)),
	}
	for i, f := range features {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: feature %d has no name", core.ErrInvalidSchema, i)
		}
		if _, dup := s.index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate feature %q", core.ErrInvalidSchema, name)
		}
		switch f.Kind {
		case KindCategorical:
			if f.Codes == nil {
				return nil, fmt.Errorf("%w: categorical feature %q has no code table", core.ErrInvalidSchema, name)
			}
		case KindNumeric:
			if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
				return nil, fmt.Errorf("%w: feature %q min %v > max %v", core.ErrInvalidSchema, name, *f.Min, *f.Max)
			}
		default:
			return nil, fmt.Errorf("%w: feature %q has unknown kind %q", core.ErrInvalidSchema, name, f.Kind)
		}
		if f.Label == "" {
			f.Label = humanize(name)
		}
		if f.Group < 1 {
			f.Group = 1
		}
		f.Name = name
		s.features[i] = f
		s.index[name] = i
	}
	return s, nil
}

// Width is the arity of the assembled feature vector
func (s *Schema) Width() int {
	return len(s.features)
}

// Features returns a copy of the ordered feature specs
func (s *Schema) Features() []FeatureSpec {
	out := make([]FeatureSpec, len(s.features))
	copy(out, s.features)
	return out
}

// Names returns the feature names in vector order
func (s *Schema) Names() []string {
	names := make([]string, len(s.features))
	for i, f := range s.features {
		names[i] = f.Name
	}
	return names
}

// Feature looks up a feature by name
func (s *Schema) Feature(name string) (FeatureSpec, bool) {
	i, ok := s.index[name]
	if !ok {
		return FeatureSpec{}, false
	}
	return s.features[i], true
}

// Groups returns features bucketed by form column, columns in ascending order
func (s *Schema) Groups() [][]FeatureSpec {
	maxGroup := 0
	for _, f := range s.features {
		if f.Group > maxGroup {
			maxGroup = f.Group
		}
	}
	groups := make([][]FeatureSpec, maxGroup)
	for _, f := range s.features {
		groups[f.Group-1] = append(groups[f.Group-1], f)
	}
	return groups
}

// DefaultInputs returns the initial form state
func (s *Schema) DefaultInputs() Inputs {
	in := make(Inputs, len(s.features))
	for _, f := range s.features {
		in[f.Name] = f.DefaultInput()
	}
	return in
}

// ValidateWidth asserts the schema matches a model's declared input width
func (s *Schema) ValidateWidth(modelWidth int) error {
	if s.Width() != modelWidth {
		return fmt.Errorf("%w: schema declares %d features, model expects %d", core.ErrSchemaMismatch, s.Width(), modelWidth)
	}
	return nil
}

// ValidateNames checks the vector order against the columns a model was trained
// on. Names compare case-insensitively, so Cost_Price matches cost_price.
func (s *Schema) ValidateNames(trained []string) error {
	if err := s.ValidateWidth(len(trained)); err != nil {
		return err
	}
	for i, f := range s.features {
		if !strings.EqualFold(f.Name, strings.TrimSpace(trained[i])) {
			return fmt.Errorf("%w: position %d is %s, model was trained on %s", core.ErrSchemaMismatch, i, f.Name, trained[i])
		}
	}
	return nil
}

func humanize(name string) string {
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
