package insights

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"salesdash/domain/core"
	"salesdash/domain/dataset"
	"salesdash/domain/variant"
	"salesdash/internal"
)

// Chart is a rendered insight chart. Columns lists what was actually plotted.
type Chart struct {
	ID        core.ChartID       `json:"id"`
	Section   string             `json:"section"`
	Title     string             `json:"title"`
	Subtitle  string             `json:"subtitle,omitempty"`
	Columns   []string           `json:"columns"`
	Summaries map[string]Summary `json:"summaries"`
	PNG       []byte             `json:"-"`
}

// Skipped records a chart or panel the guarded policy left out
type Skipped struct {
	ID      core.ChartID `json:"id"`
	Columns []string     `json:"missing_columns"`
	Partial bool         `json:"partial"`
}

// Gallery is the insight panel of one variant. Charts holds every chart that
// rendered, in page order. When Err is set, rendering stopped at Failed and
// no later chart is present.
type Gallery struct {
	Charts  []Chart      `json:"charts"`
	Skipped []Skipped    `json:"skipped,omitempty"`
	Failed  core.ChartID `json:"failed,omitempty"`
	Err     error        `json:"-"`
}

// Chart returns a rendered chart by ID
func (g *Gallery) Chart(id core.ChartID) (*Chart, bool) {
	for i := range g.Charts {
		if g.Charts[i].ID == id {
			return &g.Charts[i], true
		}
	}
	return nil, false
}

// ErrorMessage is the text shown in place of the failed chart
func (g *Gallery) ErrorMessage() string {
	if g.Err == nil {
		return ""
	}
	return g.Err.Error()
}

// Renderer draws the fixed chart specs against a dataset
type Renderer struct {
	specs  []Spec
	width  int
	height int
	logger *internal.Logger
}

// NewRenderer creates a renderer producing width x height panels
func NewRenderer(width, height int, logger *internal.Logger) *Renderer {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Renderer{specs: DefaultSpecs(), width: width, height: height, logger: logger}
}

// Specs returns the chart specs in page order
func (r *Renderer) Specs() []Spec {
	return r.specs
}

type outcome struct {
	chart   *Chart
	skipped *Skipped
	err     error
}

// Render draws every chart concurrently and then applies the guard policy in
// page order. The returned error is only set when ctx is cancelled.
func (r *Renderer) Render(ctx context.Context, tbl *dataset.Table, guard variant.GuardPolicy) (*Gallery, error) {
	results := make([]outcome, len(r.specs))

	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range r.specs {
		i, spec := i, spec
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.renderOne(spec, tbl, guard)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	gallery := &Gallery{}
	for i, res := range results {
		spec := r.specs[i]
		if res.skipped != nil {
			gallery.Skipped = append(gallery.Skipped, *res.skipped)
			r.logger.Debug("[Insights] %s: skipped columns %v", spec.ID, res.skipped.Columns)
		}
		if res.err != nil {
			gallery.Err = fmt.Errorf("%s: %w", spec.Title, res.err)
			gallery.Failed = spec.ID
			r.logger.Warn("[Insights] %s failed, later charts not rendered: %v", spec.ID, res.err)
			break
		}
		if res.chart != nil {
			gallery.Charts = append(gallery.Charts, *res.chart)
		}
	}
	return gallery, nil
}

func (r *Renderer) renderOne(spec Spec, tbl *dataset.Table, guard variant.GuardPolicy) outcome {
	missing := tbl.MissingColumns(spec.Required()...)
	if len(missing) > 0 && guard == variant.GuardStrict {
		return outcome{err: core.NewMissingColumnError(string(spec.ID), missing[0])}
	}

	switch spec.Kind {
	case KindHistogram:
		return r.renderDistributions(spec, tbl, missing)
	case KindBoxplot:
		if len(missing) > 0 {
			return outcome{skipped: &Skipped{ID: spec.ID, Columns: missing}}
		}
		return r.renderGroupedBox(spec, tbl)
	default:
		return outcome{err: fmt.Errorf("unknown chart kind %q", spec.Kind)}
	}
}

// renderDistributions draws one histogram panel per present column
func (r *Renderer) renderDistributions(spec Spec, tbl *dataset.Table, missing []string) outcome {
	var skipped *Skipped
	if len(missing) > 0 {
		skipped = &Skipped{ID: spec.ID, Columns: missing, Partial: len(missing) < len(spec.Columns)}
		if !skipped.Partial {
			return outcome{skipped: skipped}
		}
	}

	chart := &Chart{ID: spec.ID, Section: spec.Section, Title: spec.Title, Summaries: map[string]Summary{}}
	var panels [][]byte
	for _, col := range spec.Columns {
		values, err := tbl.Numeric(col)
		if errors.Is(err, core.ErrMissingColumn) {
			continue
		}
		if err != nil {
			return outcome{skipped: skipped, err: err}
		}
		summary, err := summarize(values)
		if err != nil {
			return outcome{skipped: skipped, err: fmt.Errorf("column %q: %w", col, err)}
		}
		png, err := renderHistogram(col, values, r.width, r.height)
		if err != nil {
			return outcome{skipped: skipped, err: err}
		}
		panels = append(panels, png)
		chart.Columns = append(chart.Columns, col)
		chart.Summaries[col] = summary
	}

	img, err := stitchPNG(panels)
	if err != nil {
		return outcome{skipped: skipped, err: err}
	}
	chart.PNG = img
	return outcome{chart: chart, skipped: skipped}
}

func (r *Renderer) renderGroupedBox(spec Spec, tbl *dataset.Table) outcome {
	groups, err := tbl.GroupNumeric(spec.GroupColumn, spec.ValueColumn)
	if err != nil {
		return outcome{err: err}
	}
	all := make([]float64, 0, tbl.Len())
	for _, g := range groups {
		all = append(all, g.Values...)
	}
	summary, err := summarize(all)
	if err != nil {
		return outcome{err: fmt.Errorf("column %q: %w", spec.ValueColumn, err)}
	}

	img, err := renderBoxplot(spec, groups, r.width, r.height)
	if err != nil {
		return outcome{err: err}
	}
	return outcome{chart: &Chart{
		ID:        spec.ID,
		Section:   spec.Section,
		Title:     spec.Title,
		Subtitle:  spec.Subtitle,
		Columns:   []string{spec.GroupColumn, spec.ValueColumn},
		Summaries: map[string]Summary{spec.ValueColumn: summary},
		PNG:       img,
	}}
}
