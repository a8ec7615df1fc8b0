package ui

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"salesdash/domain/core"
	"salesdash/domain/prediction"
	"salesdash/domain/schema"
	"salesdash/internal/container"
	"salesdash/internal/errors"
	"salesdash/internal/insights"
)

// field is one form widget with its current value
type field struct {
	Spec    schema.FeatureSpec
	Value   string
	Options []string
}

type navItem struct {
	Name   core.VariantName
	Title  string
	Active bool
}

type chartView struct {
	Chart *insights.Chart
	URL   string
}

// section is one expander of the insight panel
type section struct {
	Title  string
	Charts []chartView
}

type pageData struct {
	Title        string
	Header       string
	Nav          []navItem
	Dashboard    *container.Dashboard
	Description  template.HTML
	Columns      [][]field
	Result       *prediction.Prediction
	Error        string
	Sections     []section
	Skipped      []insights.Skipped
	InsightError string
	Footer       template.HTML
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Redirect(http.StatusFound, "/v/"+string(s.container.DefaultVariant()))
}

func (s *Server) handleHealth(c *gin.Context) {
	names := make([]string, 0)
	for _, d := range s.container.Dashboards() {
		names = append(names, string(d.Variant.Name))
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "variants": names})
}

func (s *Server) handleDashboard(c *gin.Context) {
	d, err := s.dashboard(c)
	if err != nil {
		s.renderError(c, err)
		return
	}
	s.renderTemplate(c, http.StatusOK, "index.html", s.page(d, d.Variant.Schema.DefaultInputs(), nil, nil))
}

// handlePredict is the button press: encode, assemble, predict and re-render
// the whole page with the submitted inputs retained.
func (s *Server) handlePredict(c *gin.Context) {
	d, err := s.dashboard(c)
	if err != nil {
		s.renderError(c, err)
		return
	}

	inputs := make(schema.Inputs)
	for _, name := range d.Variant.Schema.Names() {
		if v, ok := c.GetPostForm(name); ok {
			inputs[name] = v
		}
	}
	form := d.Variant.Schema.DefaultInputs().Merge(inputs)

	p, err := s.container.Pricing.Predict(c.Request.Context(), d.Variant.Name, inputs)
	if err != nil {
		s.logger.Debug("[Predict] %s rejected: %v", d.Variant.Name, err)
		s.renderTemplate(c, errors.HTTPStatus(err), "index.html", s.page(d, form, nil, err))
		return
	}
	s.renderTemplate(c, http.StatusOK, "index.html", s.page(d, form, p, nil))
}

func (s *Server) handleChart(c *gin.Context) {
	d, err := s.dashboard(c)
	if err != nil {
		c.String(errors.HTTPStatus(err), err.Error())
		return
	}

	id, err := core.ParseChartID(strings.TrimSuffix(c.Param("chart"), ".png"))
	if err != nil {
		c.String(http.StatusNotFound, err.Error())
		return
	}
	chart, ok := d.Gallery.Chart(id)
	if !ok {
		err := errors.Wrap(core.NewNotFoundError("chart", string(id)), "chart not rendered")
		c.String(errors.HTTPStatus(err), err.Error())
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", chart.PNG)
}

func (s *Server) dashboard(c *gin.Context) (*container.Dashboard, error) {
	return s.container.Dashboard(core.VariantName(strings.ToLower(c.Param("variant"))))
}

func (s *Server) renderError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("[Server] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.String(status, err.Error())
}

// page builds the view model of one dashboard render
func (s *Server) page(d *container.Dashboard, form schema.Inputs, result *prediction.Prediction, predictErr error) pageData {
	v := d.Variant
	data := pageData{
		Title:        v.Title,
		Header:       "🛍️ AI Sales Trends Intelligence Dashboard",
		Dashboard:    d,
		Description:  renderMarkdown(v.Description),
		Result:       result,
		Skipped:      d.Gallery.Skipped,
		InsightError: d.Gallery.ErrorMessage(),
		Footer:       s.footer,
	}
	if predictErr != nil {
		data.Error = predictErr.Error()
	}

	for _, other := range s.container.Dashboards() {
		data.Nav = append(data.Nav, navItem{
			Name:   other.Variant.Name,
			Title:  other.Variant.ResultLabel,
			Active: other.Variant.Name == v.Name,
		})
	}

	for _, group := range v.Schema.Groups() {
		col := make([]field, 0, len(group))
		for _, f := range group {
			w := field{Spec: f, Value: form[f.Name]}
			if f.IsCategorical() {
				w.Options = f.Codes.Labels()
			}
			col = append(col, w)
		}
		data.Columns = append(data.Columns, col)
	}

	for i := range d.Gallery.Charts {
		chart := &d.Gallery.Charts[i]
		view := chartView{Chart: chart, URL: "/charts/" + string(v.Name) + "/" + string(chart.ID) + ".png"}
		if n := len(data.Sections); n > 0 && data.Sections[n-1].Title == chart.Section {
			data.Sections[n-1].Charts = append(data.Sections[n-1].Charts, view)
			continue
		}
		data.Sections = append(data.Sections, section{Title: chart.Section, Charts: []chartView{view}})
	}
	return data
}
