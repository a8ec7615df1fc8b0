package insights

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"
	"sort"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"

	"salesdash/domain/core"
	"salesdash/domain/dataset"
)

const kdeGridPoints = 128

var (
	edgeColor   = drawing.ColorFromHex("3a3a3a")
	barEdge     = drawing.ColorWhite
	outlierSize = 3.0
)

// pointStyle renders markers without connecting lines
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    outlierSize,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color, width float64) chart.Style {
	return chart.Style{StrokeColor: col, StrokeWidth: width}
}

// renderHistogram draws one distribution panel: counts per bin plus the KDE
// scaled to counts.
func renderHistogram(column string, values []float64, width, height int) ([]byte, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: column %q has no numeric values", core.ErrInsufficientData, column)
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	h := binValues(sorted, HistogramBins)

	series := make([]chart.Series, 0, HistogramBins+1)
	maxCount := 0.0
	for i, c := range h.Counts {
		if c == 0 {
			continue
		}
		maxCount = math.Max(maxCount, c)
		x0, x1 := h.Dividers[i], h.Dividers[i+1]
		series = append(series, chart.ContinuousSeries{
			XValues: []float64{x0, x0, x1, x1},
			YValues: []float64{0, c, c, 0},
			Style: chart.Style{
				StrokeColor: barEdge,
				StrokeWidth: 1,
				FillColor:   histogramColor.WithAlpha(170),
			},
		})
	}

	lo, hi := h.Dividers[0], h.Dividers[HistogramBins]
	if bw := scottBandwidth(sorted); bw > 0 {
		grid := make([]float64, kdeGridPoints)
		floats.Span(grid, lo, hi)
		density := kde(sorted, grid, bw)
		scale := float64(len(sorted)) * h.binWidth()
		for i := range density {
			density[i] *= scale
			maxCount = math.Max(maxCount, density[i])
		}
		series = append(series, chart.ContinuousSeries{
			Name:    "kde",
			XValues: grid,
			YValues: density,
			Style:   lineStyle(histogramColor, 2),
		})
	}

	yMax := maxCount * 1.1
	ch := chart.Chart{
		Title:      "Distribution of " + column,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  column,
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
			Ticks: niceTicks(lo, hi, 6),
		},
		YAxis: chart.YAxis{
			Name:  "Count",
			Range: &chart.ContinuousRange{Min: 0, Max: yMax},
			Ticks: niceTicks(0, yMax, 5),
		},
		Series: series,
	}
	return renderPNG(ch)
}

// renderBoxplot draws one box per group at x = 1..n
func renderBoxplot(spec Spec, groups []dataset.Group, width, height int) ([]byte, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: no %s values grouped by %s", core.ErrInsufficientData, spec.ValueColumn, spec.GroupColumn)
	}

	// boxes are drawn as a thick vertical stroke; size it to ~60% of a slot
	boxPx := math.Max(4, float64(width-120)/float64(len(groups))*0.6)
	const half = 0.3

	var series []chart.Series
	ticks := make([]chart.Tick, 0, len(groups))
	yLo, yHi := math.Inf(1), math.Inf(-1)
	for i, g := range groups {
		b, err := computeBox(g.Values)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", g.Key, err)
		}
		x := float64(i + 1)
		col := spec.Palette[i%len(spec.Palette)]
		ticks = append(ticks, chart.Tick{Value: x, Label: g.Key})

		series = append(series,
			chart.ContinuousSeries{XValues: []float64{x, x}, YValues: []float64{b.Q1, b.Q3}, Style: lineStyle(col, boxPx)},
			chart.ContinuousSeries{
				XValues: []float64{x - half, x - half, x + half, x + half, x - half},
				YValues: []float64{b.Q1, b.Q3, b.Q3, b.Q1, b.Q1},
				Style:   lineStyle(edgeColor, 1),
			},
			chart.ContinuousSeries{XValues: []float64{x - half, x + half}, YValues: []float64{b.Median, b.Median}, Style: lineStyle(edgeColor, 2)},
			chart.ContinuousSeries{XValues: []float64{x, x}, YValues: []float64{b.LowWhisker, b.Q1}, Style: lineStyle(edgeColor, 1)},
			chart.ContinuousSeries{XValues: []float64{x, x}, YValues: []float64{b.Q3, b.HighWhisker}, Style: lineStyle(edgeColor, 1)},
			chart.ContinuousSeries{XValues: []float64{x - half/2, x + half/2}, YValues: []float64{b.LowWhisker, b.LowWhisker}, Style: lineStyle(edgeColor, 1)},
			chart.ContinuousSeries{XValues: []float64{x - half/2, x + half/2}, YValues: []float64{b.HighWhisker, b.HighWhisker}, Style: lineStyle(edgeColor, 1)},
		)
		yLo, yHi = math.Min(yLo, b.LowWhisker), math.Max(yHi, b.HighWhisker)

		if len(b.Outliers) > 0 {
			xs := make([]float64, len(b.Outliers))
			for j := range xs {
				xs[j] = x
			}
			series = append(series, chart.ContinuousSeries{XValues: xs, YValues: b.Outliers, Style: pointStyle(edgeColor)})
			yLo = math.Min(yLo, b.Outliers[0])
			yHi = math.Max(yHi, b.Outliers[len(b.Outliers)-1])
		}
	}

	yLo, yHi = niceAxisBounds(yLo, yHi)
	padBottom := 16
	xAxis := chart.XAxis{
		Name:  spec.GroupColumn,
		Range: &chart.ContinuousRange{Min: 0.5, Max: float64(len(groups)) + 0.5},
		Ticks: ticks,
	}
	if spec.RotateLabels {
		xAxis.TickStyle = chart.Style{TextRotationDegrees: 45}
		padBottom = 70
	}

	ch := chart.Chart{
		Title:      spec.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: padBottom}},
		XAxis:      xAxis,
		YAxis: chart.YAxis{
			Name:  spec.ValueColumn,
			Range: &chart.ContinuousRange{Min: yLo, Max: yHi},
			Ticks: niceTicks(yLo, yHi, 6),
		},
		Series: series,
	}
	return renderPNG(ch)
}

func renderPNG(ch chart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %q: %w", ch.Title, err)
	}
	return buf.Bytes(), nil
}

// stitchPNG places panels left to right on one canvas
func stitchPNG(panels [][]byte) ([]byte, error) {
	if len(panels) == 1 {
		return panels[0], nil
	}
	imgs := make([]image.Image, len(panels))
	w, h := 0, 0
	for i, p := range panels {
		img, err := png.Decode(bytes.NewReader(p))
		if err != nil {
			return nil, fmt.Errorf("decode panel %d: %w", i, err)
		}
		imgs[i] = img
		w += img.Bounds().Dx()
		if dy := img.Bounds().Dy(); dy > h {
			h = dy
		}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	x := 0
	for _, img := range imgs {
		b := img.Bounds()
		draw.Draw(canvas, image.Rect(x, 0, x+b.Dx(), b.Dy()), img, b.Min, draw.Over)
		x += b.Dx()
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// niceAxisBounds pads [min,max] by 5% and rounds outward
func niceAxisBounds(min, max float64) (float64, float64) {
	if max <= min {
		max = min + 1
	}
	span := max - min
	a, b := min-span*0.05, max+span*0.05
	mag := math.Pow(10, math.Floor(math.Log10(span)))
	if !math.IsInf(mag, 0) && mag > 0 {
		a = math.Floor(a/mag) * mag
		b = math.Ceil(b/mag) * mag
	}
	return a, b
}

// niceTicks generates about n ticks on 1/2/2.5/5 steps covering [min,max]
func niceTicks(min, max float64, n int) []chart.Tick {
	if n < 2 || math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	bestStep, bestScore := mag, math.MaxFloat64
	for _, c := range []float64{1, 2, 2.5, 5, 10} {
		step := c * mag
		count := math.Max(2, math.Ceil(span/step))
		if score := math.Abs(count - float64(n)); score < bestScore {
			bestScore, bestStep = score, step
		}
	}

	var ticks []chart.Tick
	for v := math.Ceil(min/bestStep) * bestStep; v <= max+bestStep*1e-9; v += bestStep {
		ticks = append(ticks, chart.Tick{Value: v, Label: formatTick(v)})
		if len(ticks) > n+2 {
			break
		}
	}
	return ticks
}

func formatTick(v float64) string {
	if math.Abs(v) < 1e-9 {
		return "0"
	}
	return strconv.FormatFloat(math.Round(v*1e6)/1e6, 'f', -1, 64)
}
