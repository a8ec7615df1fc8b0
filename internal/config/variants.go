package config

import (
	"fmt"
	"os"
	"sort"

	"salesdash/domain/core"
	"salesdash/domain/schema"
	"salesdash/domain/variant"
	"salesdash/internal/errors"

	"gopkg.in/yaml.v3"
)

// DefaultDatasetPath is the sales dataset shipped next to the model artifacts
const DefaultDatasetPath = "Multiclass Clothing Sales Dataset.csv"

var brandLabels = []string{
	"Forever 21", "Ralph Lauren", "Nike", "Zara", "Wrangler", "Balenciaga",
	"Uniqlo", "Reebok", "Gucci", "Louis Vuitton", "Tommy Hilfiger", "Under Armour",
	"Calvin Klein", "Puma", "Diesel", "Versace", "Levi’s", "Adidas", "H&M", "GAP",
}

// VariantFile is the YAML document accepted by VARIANTS_FILE
type VariantFile struct {
	Variants []VariantDoc `yaml:"variants"`
}

// VariantDoc is one dashboard declared in YAML
type VariantDoc struct {
	Name        string       `yaml:"name"`
	Title       string       `yaml:"title"`
	Heading     string       `yaml:"heading"`
	FormTitle   string       `yaml:"form_title"`
	ButtonLabel string       `yaml:"button_label"`
	ResultLabel string       `yaml:"result_label"`
	Currency    string       `yaml:"currency"`
	Model       string       `yaml:"model"`
	Dataset     string       `yaml:"dataset"`
	Guard       string       `yaml:"guard"`
	Description string       `yaml:"description"`
	Features    []FeatureDoc `yaml:"features"`
}

// FeatureDoc is one feature of a YAML variant, in vector order
type FeatureDoc struct {
	Name    string             `yaml:"name"`
	Label   string             `yaml:"label"`
	Kind    string             `yaml:"kind"`
	Labels  []string           `yaml:"labels"` // enumerated 0..n-1
	Codes   []schema.CodeEntry `yaml:"codes"`  // explicit assignments
	Range   []int              `yaml:"range"`  // [lo, hi] integer dropdown
	Default float64            `yaml:"default"`
	Min     *float64           `yaml:"min"`
	Max     *float64           `yaml:"max"`
	Step    float64            `yaml:"step"`
	Integer bool               `yaml:"integer"`
	Group   int                `yaml:"group"`
}

// Catalog holds every known variant by name
type Catalog struct {
	variants map[core.VariantName]variant.Variant
}

// LoadCatalog returns the built-in variants overlaid with VARIANTS_FILE, if any
func LoadCatalog(cfg *Config) (*Catalog, error) {
	catalog, err := BuiltinCatalog()
	if err != nil {
		return nil, err
	}

	if cfg.Paths.VariantsFile != "" {
		data, err := os.ReadFile(cfg.Paths.VariantsFile)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read variants file %s", cfg.Paths.VariantsFile)
		}
		if err := catalog.MergeYAML(data); err != nil {
			return nil, errors.Wrapf(err, "failed to load variants file %s", cfg.Paths.VariantsFile)
		}
	}

	for name, v := range catalog.variants {
		if v.Currency == "" || v.Currency == "₹" {
			v.Currency = cfg.Display.Currency
		}
		v.ModelPath = cfg.ResolveModelPath(v.ModelPath)
		if cfg.Paths.DatasetPath != "" {
			v.DatasetPath = cfg.Paths.DatasetPath
		}
		catalog.variants[name] = v
	}
	return catalog, nil
}

// BuiltinCatalog returns the dashboards recovered from the original scripts
func BuiltinCatalog() (*Catalog, error) {
	c := &Catalog{variants: make(map[core.VariantName]variant.Variant)}
	for _, build := range []func() (variant.Variant, error){sellingPriceVariant, optimalPriceVariant} {
		v, err := build()
		if err != nil {
			return nil, err
		}
		c.variants[v.Name] = v
	}
	return c, nil
}

// MergeYAML adds or replaces variants declared in a YAML document
func (c *Catalog) MergeYAML(data []byte) error {
	var doc VariantFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	for i, vd := range doc.Variants {
		v, err := vd.build()
		if err != nil {
			return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("variant %d (%s): %w", i, vd.Name, err))
		}
		c.variants[v.Name] = v
	}
	return nil
}

// Get returns a variant by name
func (c *Catalog) Get(name core.VariantName) (variant.Variant, error) {
	v, ok := c.variants[name]
	if !ok {
		return variant.Variant{}, fmt.Errorf("%w %q", core.ErrVariantNotFound, name)
	}
	return v, nil
}

// Select resolves the configured active list in order
func (c *Catalog) Select(names []string) ([]variant.Variant, error) {
	out := make([]variant.Variant, 0, len(names))
	for _, raw := range names {
		name, err := core.ParseVariantName(raw)
		if err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, err)
		}
		v, err := c.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Names lists known variants alphabetically
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.variants))
	for name := range c.variants {
		names = append(names, name.String())
	}
	sort.Strings(names)
	return names
}

func (vd VariantDoc) build() (variant.Variant, error) {
	name, err := core.ParseVariantName(vd.Name)
	if err != nil {
		return variant.Variant{}, err
	}
	guard, err := variant.ParseGuardPolicy(vd.Guard)
	if err != nil {
		return variant.Variant{}, err
	}

	specs := make([]schema.FeatureSpec, 0, len(vd.Features))
	for _, fd := range vd.Features {
		spec, err := fd.build()
		if err != nil {
			return variant.Variant{}, err
		}
		specs = append(specs, spec)
	}
	s, err := schema.New(specs)
	if err != nil {
		return variant.Variant{}, err
	}

	v := variant.Variant{
		Name:        name,
		Title:       vd.Title,
		Heading:     vd.Heading,
		FormTitle:   vd.FormTitle,
		ButtonLabel: vd.ButtonLabel,
		ResultLabel: vd.ResultLabel,
		Currency:    vd.Currency,
		ModelPath:   vd.Model,
		DatasetPath: vd.Dataset,
		Guard:       guard,
		Description: vd.Description,
		Schema:      s,
	}.WithDefaults()
	if v.DatasetPath == "" {
		v.DatasetPath = DefaultDatasetPath
	}
	return v, v.Validate()
}

func (fd FeatureDoc) build() (schema.FeatureSpec, error) {
	spec := schema.FeatureSpec{
		Name:    fd.Name,
		Label:   fd.Label,
		Kind:    schema.Kind(fd.Kind),
		Default: fd.Default,
		Min:     fd.Min,
		Max:     fd.Max,
		Step:    fd.Step,
		Integer: fd.Integer,
		Group:   fd.Group,
	}
	if spec.Kind == "" {
		spec.Kind = schema.KindNumeric
		if len(fd.Labels) > 0 || len(fd.Codes) > 0 || len(fd.Range) > 0 {
			spec.Kind = schema.KindCategorical
		}
	}
	if spec.Kind != schema.KindCategorical {
		return spec, nil
	}

	var err error
	switch {
	case len(fd.Codes) > 0:
		spec.Codes, err = schema.NewCodeTable(fd.Name, fd.Codes)
	case len(fd.Labels) > 0:
		spec.Codes, err = schema.Enumerate(fd.Name, fd.Labels...)
	case len(fd.Range) == 2:
		spec.Codes, err = schema.IntegerRange(fd.Name, fd.Range[0], fd.Range[1])
	default:
		err = fmt.Errorf("%w: categorical feature %s needs labels, codes or a [lo, hi] range", core.ErrInvalidSchema, fd.Name)
	}
	return spec, err
}

// sellingPriceVariant is the 21-feature gradient boosting dashboard
func sellingPriceVariant() (variant.Variant, error) {
	b := newSchemaBuilder()
	b.integerRange("product_category", "Product Category", 0, 9, 1)
	b.enumerated("brand", "Brand", 1, brandLabels...)
	b.enumerated("gender", "Gender", 1, "Male", "Female", "Unisex")
	b.enumerated("size", "Size", 1, "S", "M", "L", "XL", "XXL")
	b.enumerated("color", "Color", 1, "Red", "Blue", "Green", "Black", "White")
	b.enumerated("season", "Season", 1, "Winter", "All-Season", "Summer")
	b.enumerated("payment_method", "Payment Method", 2, "Card", "Cash", "UPI", "NetBanking")
	b.enumerated("customer_type", "Customer Type", 2, "New", "Returning")
	b.numeric("cost_price", "Cost Price", 0, 2)
	b.numeric("discount_percentage", "Discount Percentage", 0, 2)
	b.integer("quantity_sold", "Quantity Sold", 1, 2)
	b.numeric("total_sales", "Total Sales", 0, 2)
	b.integer("stock_availability", "Stock Availability", 1, 2)
	b.integer("customer_age", "Customer Age", 25, 3)
	b.numeric("purchase_frequency", "Purchase Frequency", 0, 3)
	b.numeric("store_rating", "Store Rating", 0, 3)
	b.numeric("return_rate", "Return Rate", 0, 3)
	b.integerRange("sales_category", "Sales Category", 0, 9, 3)
	b.numeric("demand_index", "Demand Index", 0, 3)
	b.numeric("price_elasticity", "Price Elasticity", 0, 3)
	b.numeric("profit_margin", "Profit Margin", 0, 3)

	s, err := b.build()
	if err != nil {
		return variant.Variant{}, err
	}
	return variant.Variant{
		Name:        "gb21",
		Title:       "Sales Trends Dashboard",
		ButtonLabel: "Predict Selling Price",
		ResultLabel: "Predicted Selling Price",
		ModelPath:   "Sales_Trends_prediction_model_gb1.json",
		DatasetPath: DefaultDatasetPath,
		Guard:       variant.GuardStrict,
		Description: "Gradient boosting model over **21** product and customer attributes.",
		Schema:      s,
	}.WithDefaults(), nil
}

// optimalPriceVariant is the 15-feature random forest dashboard
func optimalPriceVariant() (variant.Variant, error) {
	b := newSchemaBuilder()
	b.numeric("profit_margin", "Profit Margin", 0, 1)
	b.numeric("cost_price", "Cost Price", 0, 1)
	b.numeric("purchase_frequency", "Purchase Frequency", 0, 1)
	b.numeric("store_rating", "Store Rating", 0, 1)
	b.numeric("price_elasticity", "Price Elasticity", 0, 1)
	b.numeric("demand_index", "Demand Index", 0, 2)
	b.integer("customer_age", "Customer Age", 25, 2)
	b.numeric("total_sales", "Total Sales", 0, 2)
	b.numeric("return_rate", "Return Rate", 0, 2)
	b.numeric("discount_percentage", "Discount Percentage", 0, 2)
	b.integer("stock_availability", "Stock Availability", 1, 3)
	b.coded("payment_method", "Payment Method", 3, []schema.CodeEntry{{Label: "Card", Code: 0}, {Label: "UPI", Code: 1}, {Label: "Cash", Code: 2}})
	b.enumerated("brand", "Brand", 3, brandLabels...)
	b.coded("season", "Season", 3, []schema.CodeEntry{{Label: "Summer", Code: 0}, {Label: "Winter", Code: 1}, {Label: "All season", Code: 2}})
	b.integer("quantity_sold", "Quantity Sold", 1, 3)

	s, err := b.build()
	if err != nil {
		return variant.Variant{}, err
	}
	return variant.Variant{
		Name:        "rf15",
		Title:       "Sales Trends Dashboard",
		Heading:     "Predict Selling Price",
		ButtonLabel: "Predict optimal Price",
		ResultLabel: "Predicted Optimal Price",
		ModelPath:   "Sales_Trends_prediction_model_rf.json",
		DatasetPath: DefaultDatasetPath,
		Guard:       variant.GuardSkip,
		Description: "Random forest model over **15** pricing, customer and catalogue attributes.",
		Schema:      s,
	}.WithDefaults(), nil
}

// schemaBuilder collects feature specs and the first table error
type schemaBuilder struct {
	specs []schema.FeatureSpec
	err   error
}

func newSchemaBuilder() *schemaBuilder {
	return &schemaBuilder{}
}

func (b *schemaBuilder) numeric(name, label string, def float64, group int) {
	b.specs = append(b.specs, schema.FeatureSpec{Name: name, Label: label, Kind: schema.KindNumeric, Default: def, Step: 0.01, Group: group})
}

func (b *schemaBuilder) integer(name, label string, def float64, group int) {
	b.specs = append(b.specs, schema.FeatureSpec{Name: name, Label: label, Kind: schema.KindNumeric, Default: def, Step: 1, Integer: true, Group: group})
}

func (b *schemaBuilder) categorical(name, label string, group int, table *schema.CodeTable, err error) {
	if err != nil && b.err == nil {
		b.err = err
	}
	b.specs = append(b.specs, schema.FeatureSpec{Name: name, Label: label, Kind: schema.KindCategorical, Codes: table, Group: group})
}

func (b *schemaBuilder) enumerated(name, label string, group int, labels ...string) {
	table, err := schema.Enumerate(name, labels...)
	b.categorical(name, label, group, table, err)
}

func (b *schemaBuilder) coded(name, label string, group int, entries []schema.CodeEntry) {
	table, err := schema.NewCodeTable(name, entries)
	b.categorical(name, label, group, table, err)
}

func (b *schemaBuilder) integerRange(name, label string, lo, hi, group int) {
	table, err := schema.IntegerRange(name, lo, hi)
	b.categorical(name, label, group, table, err)
}

func (b *schemaBuilder) build() (*schema.Schema, error) {
	if b.err != nil {
		return nil, b.err
	}
	return schema.New(b.specs)
}
