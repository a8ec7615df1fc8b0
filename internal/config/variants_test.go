package config

import (
	"os"
	"path/filepath"
	"testing"

	"salesdash/domain/core"
	"salesdash/domain/variant"
	"salesdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinCatalog_Arity(t *testing.T) {
	catalog, err := BuiltinCatalog()
	require.NoError(t, err)

	gb, err := catalog.Get("gb21")
	require.NoError(t, err)
	assert.Equal(t, 21, gb.Schema.Width())
	assert.Equal(t, variant.GuardStrict, gb.Guard)

	rf, err := catalog.Get("rf15")
	require.NoError(t, err)
	assert.Equal(t, 15, rf.Schema.Width())
	assert.Equal(t, variant.GuardSkip, rf.Guard)

	_, err = catalog.Get("nope")
	assert.ErrorIs(t, err, core.ErrVariantNotFound)
}

func TestBuiltinCatalog_EveryDropdownValueEncodesDistinctly(t *testing.T) {
	catalog, err := BuiltinCatalog()
	require.NoError(t, err)

	for _, name := range catalog.Names() {
		v, err := catalog.Get(core.VariantName(name))
		require.NoError(t, err)

		for _, f := range v.Schema.Features() {
			if !f.IsCategorical() {
				continue
			}
			seen := make(map[int]string)
			for _, label := range f.Codes.Labels() {
				code, err := f.Codes.Encode(label)
				require.NoError(t, err, "%s/%s: %q", name, f.Name, label)
				assert.GreaterOrEqual(t, code, 0)
				if other, dup := seen[code]; dup {
					t.Errorf("%s/%s: %q and %q share code %d", name, f.Name, other, label, code)
				}
				seen[code] = label
			}
		}
	}
}

func TestBuiltinCatalog_EncodingsDifferPerVariant(t *testing.T) {
	catalog, err := BuiltinCatalog()
	require.NoError(t, err)
	gb, _ := catalog.Get("gb21")
	rf, _ := catalog.Get("rf15")

	gbSeason, _ := gb.Schema.Feature("season")
	rfSeason, _ := rf.Schema.Feature("season")

	gbSummer, err := gbSeason.Codes.Encode("Summer")
	require.NoError(t, err)
	rfSummer, err := rfSeason.Codes.Encode("Summer")
	require.NoError(t, err)
	assert.Equal(t, 2, gbSummer)
	assert.Equal(t, 0, rfSummer)

	rfPayment, _ := rf.Schema.Feature("payment_method")
	_, err = rfPayment.Codes.Encode("NetBanking")
	assert.ErrorIs(t, err, core.ErrUnknownLabel)
}

func TestBuiltinCatalog_VectorOrder(t *testing.T) {
	catalog, err := BuiltinCatalog()
	require.NoError(t, err)
	rf, _ := catalog.Get("rf15")

	assert.Equal(t, []string{
		"profit_margin", "cost_price", "purchase_frequency", "store_rating",
		"price_elasticity", "demand_index", "customer_age", "total_sales",
		"return_rate", "discount_percentage", "stock_availability",
		"payment_method", "brand", "season", "quantity_sold",
	}, rf.Schema.Names())
}

const thirdVariantYAML = `
variants:
  - name: alt15
    title: Sales Trends Dashboard
    button_label: Predict optimal Price
    result_label: Predicted Optimal Price
    model: alt.json
    guard: guarded
    features:
      - {name: profit_margin}
      - {name: cost_price, min: 0}
      - {name: payment_method, codes: [{label: Cash, code: 0}, {label: Card, code: 1}]}
      - {name: brand, labels: [Nike, Zara]}
      - {name: season, labels: [Winter, Summer], group: 3}
      - {name: sales_category, range: [0, 4]}
      - {name: quantity_sold, default: 1, integer: true}
`

func TestLoadCatalog_MergesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "variants.yaml")
	require.NoError(t, os.WriteFile(path, []byte(thirdVariantYAML), 0o644))

	cfg := &Config{
		Paths:   PathConfig{ModelDir: "/models", VariantsFile: path, DatasetPath: "/data/sales.csv"},
		Display: DisplayConfig{Currency: "$"},
	}
	catalog, err := LoadCatalog(cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"alt15", "gb21", "rf15"}, catalog.Names())

	alt, err := catalog.Get("alt15")
	require.NoError(t, err)
	assert.Equal(t, 7, alt.Schema.Width())
	assert.Equal(t, filepath.Join("/models", "alt.json"), alt.ModelPath)
	assert.Equal(t, "/data/sales.csv", alt.DatasetPath)
	assert.Equal(t, "$", alt.Currency)

	payment, ok := alt.Schema.Feature("payment_method")
	require.True(t, ok)
	code, err := payment.Codes.Encode("Card")
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	gb, err := catalog.Get("gb21")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/models", "Sales_Trends_prediction_model_gb1.json"), gb.ModelPath)
}

func TestExampleVariantsFile(t *testing.T) {
	cfg := &Config{Paths: PathConfig{VariantsFile: filepath.Join("..", "..", "variants.example.yaml")}}
	catalog, err := LoadCatalog(cfg)
	require.NoError(t, err)

	opt, err := catalog.Get("opt15")
	require.NoError(t, err)
	rf, err := catalog.Get("rf15")
	require.NoError(t, err)
	assert.Equal(t, rf.Schema.Names(), opt.Schema.Names())
	assert.Equal(t, variant.GuardSkip, opt.Guard)

	brand, ok := opt.Schema.Feature("brand")
	require.True(t, ok)
	assert.Equal(t, 20, brand.Codes.Len())
	code, err := brand.Codes.Encode("Nike")
	require.NoError(t, err)
	assert.Equal(t, 2, code)
}

func TestMergeYAML_RejectsCollidingCodes(t *testing.T) {
	catalog, err := BuiltinCatalog()
	require.NoError(t, err)

	err = catalog.MergeYAML([]byte(`
variants:
  - name: broken
    model: b.json
    features:
      - {name: season, codes: [{label: Winter, code: 0}, {label: Summer, code: 0}]}
`))
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	assert.ErrorIs(t, err, core.ErrDuplicateCode)
}

func TestSelect(t *testing.T) {
	catalog, err := BuiltinCatalog()
	require.NoError(t, err)

	selected, err := catalog.Select([]string{"rf15", "gb21"})
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, core.VariantName("rf15"), selected[0].Name)

	_, err = catalog.Select([]string{"missing"})
	assert.ErrorIs(t, err, core.ErrVariantNotFound)
}
