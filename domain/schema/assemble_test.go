package schema

import (
	"testing"

	"salesdash/domain/core"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func testSchema(t *testing.T) *Schema {
	t.Helper()
	season, err := NewCodeTable("season", []CodeEntry{{"Summer", 0}, {"Winter", 1}, {"All season", 2}})
	require.NoError(t, err)
	brand, err := Enumerate("brand", "Forever 21", "Ralph Lauren", "Nike")
	require.NoError(t, err)

	s, err := New([]FeatureSpec{
		{Name: "profit_margin", Kind: KindNumeric},
		{Name: "cost_price", Kind: KindNumeric, Min: floatPtr(0)},
		{Name: "brand", Kind: KindCategorical, Codes: brand, Group: 2},
		{Name: "season", Kind: KindCategorical, Codes: season, Group: 2},
		{Name: "quantity_sold", Kind: KindNumeric, Default: 1, Integer: true, Group: 3},
	})
	require.NoError(t, err)
	return s
}

func TestAssemble_OrderAndEncoding(t *testing.T) {
	s := testSchema(t)

	vec, err := s.Assemble(Inputs{
		"profit_margin": "10",
		"cost_price":    "500",
		"brand":         "Nike",
		"season":        "Winter",
		"quantity_sold": "2",
	})
	require.NoError(t, err)

	want := FeatureVector{10, 500, 2, 1, 2}
	if diff := cmp.Diff(want, vec); diff != "" {
		t.Errorf("feature vector mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, vec, s.Width())
}

func TestAssemble_DefaultsFillGaps(t *testing.T) {
	s := testSchema(t)

	vec, err := s.Assemble(Inputs{"cost_price": "  "})
	require.NoError(t, err)

	// brand and season fall back to the first dropdown entry, quantity to 1
	if diff := cmp.Diff(FeatureVector{0, 0, 0, 0, 1}, vec); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_Errors(t *testing.T) {
	s := testSchema(t)

	tests := []struct {
		name   string
		inputs Inputs
		target error
	}{
		{"unknown label", Inputs{"brand": "Prada"}, core.ErrUnknownLabel},
		{"not a number", Inputs{"cost_price": "cheap"}, core.ErrInvalidNumber},
		{"below min", Inputs{"cost_price": "-5"}, core.ErrOutOfRange},
		{"nan", Inputs{"cost_price": "NaN"}, core.ErrInvalidNumber},
		{"inf", Inputs{"cost_price": "Inf"}, core.ErrInvalidNumber},
		{"negative infinity", Inputs{"cost_price": "-infinity"}, core.ErrInvalidNumber},
		{"fractional integer", Inputs{"quantity_sold": "1.5"}, core.ErrInvalidNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Assemble(tt.inputs)
			assert.ErrorIs(t, err, tt.target)
			assert.True(t, core.IsInputError(err))
		})
	}
}

func TestNew_RejectsBadSchemas(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, core.ErrInvalidSchema)

	_, err = New([]FeatureSpec{{Name: "a", Kind: KindNumeric}, {Name: "a", Kind: KindNumeric}})
	assert.ErrorIs(t, err, core.ErrInvalidSchema)

	_, err = New([]FeatureSpec{{Name: "brand", Kind: KindCategorical}})
	assert.ErrorIs(t, err, core.ErrInvalidSchema)

	_, err = New([]FeatureSpec{{Name: "x", Kind: "text"}})
	assert.ErrorIs(t, err, core.ErrInvalidSchema)

	_, err = New([]FeatureSpec{{Name: "x", Kind: KindNumeric, Min: floatPtr(5), Max: floatPtr(1)}})
	assert.ErrorIs(t, err, core.ErrInvalidSchema)
}

func TestValidateWidth(t *testing.T) {
	s := testSchema(t)
	assert.NoError(t, s.ValidateWidth(5))
	assert.ErrorIs(t, s.ValidateWidth(21), core.ErrSchemaMismatch)
}

func TestValidateNames(t *testing.T) {
	s := testSchema(t)
	assert.NoError(t, s.ValidateNames([]string{"Profit_Margin", "Cost_Price", "Brand", "Season", "Quantity_Sold"}))

	err := s.ValidateNames([]string{"cost_price", "profit_margin", "brand", "season", "quantity_sold"})
	assert.ErrorIs(t, err, core.ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "position 0")

	assert.ErrorIs(t, s.ValidateNames([]string{"profit_margin"}), core.ErrSchemaMismatch)
}

func TestGroupsAndLabels(t *testing.T) {
	s := testSchema(t)

	groups := s.Groups()
	require.Len(t, groups, 3)
	assert.Len(t, groups[0], 2)
	assert.Len(t, groups[1], 2)
	assert.Len(t, groups[2], 1)

	f, ok := s.Feature("profit_margin")
	require.True(t, ok)
	assert.Equal(t, "Profit Margin", f.Label)

	assert.Equal(t, "1", s.DefaultInputs()["quantity_sold"])
	assert.Equal(t, "Summer", s.DefaultInputs()["season"])
}

func TestInputsMerge(t *testing.T) {
	base := Inputs{"a": "1", "b": "2"}
	merged := base.Merge(Inputs{"b": "3", "c": "", "d": "4"})

	assert.Equal(t, Inputs{"a": "1", "b": "3", "d": "4"}, merged)
	assert.Equal(t, "2", base["b"])
}
