package insights

import (
	"github.com/wcharczuk/go-chart/v2/drawing"

	"salesdash/domain/core"
)

// ChartKind selects the drawing routine for a spec
type ChartKind string

const (
	KindHistogram ChartKind = "histogram"
	KindBoxplot   ChartKind = "boxplot"
)

// Chart identifiers, in page order
const (
	ChartDistributions    core.ChartID = "distributions"
	ChartCategoryQuantity core.ChartID = "category_quantity"
	ChartSeasonPrice      core.ChartID = "season_price"
)

// HistogramBins matches the bin count used by the dashboard's distribution panels
const HistogramBins = 30

var histogramColor = drawing.ColorFromHex("1f77b4")

// pastel and set2 follow the seaborn palettes of the same names
var (
	pastelPalette = hexPalette("a1c9f4", "ffb482", "8de5a1", "ff9f9b", "d0bbff", "debb9b", "fab0e4", "cfcfcf", "fffea3", "b9f2f0")
	set2Palette   = hexPalette("66c2a5", "fc8d62", "8da0cb", "e78ac3", "a6d854", "ffd92f", "e5c494", "b3b3b3")
)

// Spec is one fixed chart of the insight panel
type Spec struct {
	ID       core.ChartID
	Kind     ChartKind
	Section  string
	Title    string
	Subtitle string

	// histogram
	Columns []string

	// boxplot
	GroupColumn  string
	ValueColumn  string
	Palette      []drawing.Color
	RotateLabels bool
}

// Required lists every dataset column the chart reads
func (s Spec) Required() []string {
	if s.Kind == KindHistogram {
		return s.Columns
	}
	return []string{s.GroupColumn, s.ValueColumn}
}

// DefaultSpecs returns the three dashboard charts in display order
func DefaultSpecs() []Spec {
	return []Spec{
		{
			ID:      ChartDistributions,
			Kind:    KindHistogram,
			Section: "📌 Key Metric Distributions",
			Title:   "Key Metric Distributions",
			Columns: []string{"Selling_Price", "Discount_Percentage", "Quantity_Sold"},
		},
		{
			ID:           ChartCategoryQuantity,
			Kind:         KindBoxplot,
			Section:      "🛒 Sales vs Product Category",
			Title:        "Quantity Sold by Product Category",
			Subtitle:     "Quantity Sold by Product Category",
			GroupColumn:  "Product_Category",
			ValueColumn:  "Quantity_Sold",
			Palette:      pastelPalette,
			RotateLabels: true,
		},
		{
			ID:          ChartSeasonPrice,
			Kind:        KindBoxplot,
			Section:     "🕒 Seasonal Trends",
			Title:       "Selling Price Across Seasons",
			Subtitle:    "Selling Price Across Seasons",
			GroupColumn: "Season",
			ValueColumn: "Selling_Price",
			Palette:     set2Palette,
		},
	}
}

func hexPalette(hex ...string) []drawing.Color {
	out := make([]drawing.Color, len(hex))
	for i, h := range hex {
		out[i] = drawing.ColorFromHex(h)
	}
	return out
}
