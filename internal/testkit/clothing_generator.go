package testkit

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"

	"salesdash/domain/dataset"
)

// ClothingColumns is the header of the clothing sales dataset, in file order
var ClothingColumns = []string{
	"Product_Category", "Brand", "Gender", "Size", "Color", "Season",
	"Payment_Method", "Customer_Type", "Cost_Price", "Selling_Price",
	"Discount_Percentage", "Quantity_Sold", "Total_Sales", "Stock_Availability",
	"Customer_Age", "Purchase_Frequency", "Store_Rating", "Return_Rate",
	"Sales_Category", "Demand_Index", "Price_Elasticity", "Profit_Margin",
}

// ClothingGeneratorConfig configures the clothing sales generator
type ClothingGeneratorConfig struct {
	Rows        int      `json:"rows"`
	Seed        int64    `json:"seed"`
	DropColumns []string `json:"drop_columns,omitempty"`
}

// DefaultClothingConfig returns sensible defaults for dashboard demos
func DefaultClothingConfig() ClothingGeneratorConfig {
	return ClothingGeneratorConfig{
		Rows: 1000,
		Seed: 42,
	}
}

// ClothingDataGenerator produces a deterministic synthetic sales table
type ClothingDataGenerator struct {
	config ClothingGeneratorConfig
	rng    *rand.Rand
}

// NewClothingDataGenerator creates a generator seeded from config
func NewClothingDataGenerator(config ClothingGeneratorConfig) *ClothingDataGenerator {
	return &ClothingDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

var (
	categories = []string{"Shirts", "Jeans", "Dresses", "Jackets", "Sweaters", "T-Shirts", "Shorts", "Skirts", "Hoodies", "Activewear"}
	brands     = []string{
		"Forever 21", "Ralph Lauren", "Nike", "Zara", "Wrangler", "Balenciaga",
		"Uniqlo", "Reebok", "Gucci", "Louis Vuitton", "Tommy Hilfiger", "Under Armour",
		"Calvin Klein", "Puma", "Diesel", "Versace", "Levi’s", "Adidas", "H&M", "GAP",
	}
	luxury = map[string]bool{"Balenciaga": true, "Gucci": true, "Louis Vuitton": true, "Versace": true, "Ralph Lauren": true}
)

// Generate returns headers and string rows, without the configured dropped columns
func (g *ClothingDataGenerator) Generate() ([]string, [][]string) {
	keep := make([]int, 0, len(ClothingColumns))
	headers := make([]string, 0, len(ClothingColumns))
	dropped := make(map[string]bool, len(g.config.DropColumns))
	for _, c := range g.config.DropColumns {
		dropped[c] = true
	}
	for i, c := range ClothingColumns {
		if !dropped[c] {
			keep = append(keep, i)
			headers = append(headers, c)
		}
	}

	rows := make([][]string, 0, g.config.Rows)
	for i := 0; i < g.config.Rows; i++ {
		full := g.sale()
		row := make([]string, len(keep))
		for j, idx := range keep {
			row[j] = full[idx]
		}
		rows = append(rows, row)
	}
	return headers, rows
}

// Table wraps Generate in a dataset table
func (g *ClothingDataGenerator) Table() (*dataset.Table, error) {
	headers, rows := g.Generate()
	return dataset.NewTable(fmt.Sprintf("synthetic(seed=%d)", g.config.Seed), headers, rows)
}

// WriteCSV writes the generated rows as CSV
func (g *ClothingDataGenerator) WriteCSV(w io.Writer) error {
	headers, rows := g.Generate()
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// sale generates one row in ClothingColumns order
func (g *ClothingDataGenerator) sale() []string {
	category := g.rng.Intn(len(categories))
	brand := brands[g.rng.Intn(len(brands))]
	season := g.weighted([]string{"Winter", "All-Season", "Summer"}, []float64{0.3, 0.3, 0.4})

	cost := 200 + g.rng.Float64()*1800
	if luxury[brand] {
		cost *= 2.5
	}
	if season == "Winter" {
		cost *= 1.2
	}
	margin := 10 + g.rng.Float64()*40
	discount := math.Round(g.rng.Float64()*50*100) / 100
	selling := cost * (1 + margin/100) * (1 - discount/200)

	quantity := 1 + int(math.Abs(g.rng.NormFloat64())*2)
	if quantity > 10 {
		quantity = 10
	}
	if category == 5 || category == 6 { // t-shirts and shorts sell in bulk
		quantity += g.rng.Intn(3)
	}

	return []string{
		categories[category],
		brand,
		g.pick("Male", "Female", "Unisex"),
		g.pick("S", "M", "L", "XL", "XXL"),
		g.pick("Red", "Blue", "Green", "Black", "White"),
		season,
		g.weighted([]string{"Card", "Cash", "UPI", "NetBanking"}, []float64{0.35, 0.2, 0.35, 0.1}),
		g.pick("New", "Returning"),
		money(cost),
		money(selling),
		money(discount),
		strconv.Itoa(quantity),
		money(selling * float64(quantity)),
		strconv.Itoa(g.rng.Intn(500)),
		strconv.Itoa(18 + g.rng.Intn(53)),
		strconv.Itoa(1 + g.rng.Intn(20)),
		strconv.FormatFloat(math.Round((1+g.rng.Float64()*4)*10)/10, 'f', 1, 64),
		money(g.rng.Float64() * 30),
		strconv.Itoa(g.rng.Intn(10)),
		money(g.rng.Float64() * 100),
		money(-0.2 - g.rng.Float64()*2.3),
		money(margin),
	}
}

func (g *ClothingDataGenerator) pick(values ...string) string {
	return values[g.rng.Intn(len(values))]
}

func (g *ClothingDataGenerator) weighted(values []string, weights []float64) string {
	r := g.rng.Float64()
	cumulative := 0.0
	for i, weight := range weights {
		cumulative += weight
		if r <= cumulative {
			return values[i]
		}
	}
	return values[0]
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
