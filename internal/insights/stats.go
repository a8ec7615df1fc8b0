package insights

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"salesdash/domain/core"
)

// Summary describes one plotted column
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

func summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, core.ErrInsufficientData
	}
	data := stats.Float64Data(values)
	mean, err := stats.Mean(data)
	if err != nil {
		return Summary{}, err
	}
	lo, _ := stats.Min(data)
	hi, _ := stats.Max(data)
	sd := 0.0
	if len(values) > 1 {
		if sd, err = stats.StandardDeviationSample(data); err != nil {
			return Summary{}, err
		}
	}
	return Summary{Count: len(values), Mean: mean, StdDev: sd, Min: lo, Max: hi}, nil
}

// histogram holds equal-width bin counts over [Dividers[0], Dividers[n]]
type histogram struct {
	Dividers []float64
	Counts   []float64
}

func (h histogram) binWidth() float64 {
	return h.Dividers[1] - h.Dividers[0]
}

// binValues counts sorted values into n equal-width bins spanning the data
func binValues(sorted []float64, n int) histogram {
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi == lo {
		lo, hi = lo-0.5, hi+0.5
	}
	dividers := make([]float64, n+1)
	floats.Span(dividers, lo, hi)
	// the upper bound is exclusive; nudge it so the maximum lands in the last bin
	dividers[n] = math.Nextafter(hi, math.Inf(1))
	return histogram{
		Dividers: dividers,
		Counts:   stat.Histogram(nil, dividers, sorted, nil),
	}
}

// scottBandwidth is the Gaussian KDE bandwidth sigma * n^(-1/5)
func scottBandwidth(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sd, err := stats.StandardDeviationSample(values)
	if err != nil || sd == 0 || math.IsNaN(sd) {
		return 0
	}
	return sd * math.Pow(float64(len(values)), -0.2)
}

// kde evaluates a Gaussian kernel density estimate at each grid point
func kde(values, grid []float64, bandwidth float64) []float64 {
	out := make([]float64, len(grid))
	if bandwidth <= 0 || len(values) == 0 {
		return out
	}
	kernels := make([]distuv.Normal, len(values))
	for i, v := range values {
		kernels[i] = distuv.Normal{Mu: v, Sigma: bandwidth}
	}
	n := float64(len(values))
	for j, x := range grid {
		sum := 0.0
		for i := range kernels {
			sum += kernels[i].Prob(x)
		}
		out[j] = sum / n
	}
	return out
}

// boxStats are the Tukey boxplot statistics of one group
type boxStats struct {
	Q1, Median, Q3 float64
	LowWhisker     float64
	HighWhisker    float64
	Outliers       []float64
}

// computeBox uses linearly interpolated quartiles and 1.5*IQR whiskers
// clamped to the most extreme observation inside the fences.
func computeBox(values []float64) (boxStats, error) {
	if len(values) == 0 {
		return boxStats{}, core.ErrInsufficientData
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	b := boxStats{
		Q1:     stat.Quantile(0.25, stat.LinInterp, sorted, nil),
		Median: stat.Quantile(0.5, stat.LinInterp, sorted, nil),
		Q3:     stat.Quantile(0.75, stat.LinInterp, sorted, nil),
	}
	iqr := b.Q3 - b.Q1
	lowFence, highFence := b.Q1-1.5*iqr, b.Q3+1.5*iqr

	b.LowWhisker, b.HighWhisker = b.Q1, b.Q3
	for _, v := range sorted {
		if v >= lowFence {
			b.LowWhisker = math.Min(v, b.Q1)
			break
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i] <= highFence {
			b.HighWhisker = math.Max(sorted[i], b.Q3)
			break
		}
	}
	for _, v := range sorted {
		if v < lowFence || v > highFence {
			b.Outliers = append(b.Outliers, v)
		}
	}
	return b, nil
}
