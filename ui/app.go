package ui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"salesdash/domain/core"
	"salesdash/domain/schema"
	"salesdash/internal"
	"salesdash/internal/container"
	"salesdash/internal/errors"
	"salesdash/ports"
)

// App is the JSON API mounted under /api/v1
type App struct {
	router    *chi.Mux
	container *container.Container
	logger    *internal.Logger
}

type variantInfo struct {
	Name        core.VariantName `json:"name"`
	Title       string           `json:"title"`
	ResultLabel string           `json:"result_label"`
	Currency    string           `json:"currency"`
	Guard       string           `json:"guard"`
	Width       int              `json:"width"`
	Model       ports.ModelInfo  `json:"model"`
	Default     bool             `json:"default"`
}

type featureInfo struct {
	schema.FeatureSpec
	Position int      `json:"position"`
	Labels   []string `json:"labels,omitempty"`
	Codes    []int    `json:"codes,omitempty"`
}

// predictRequest accepts each input as a JSON string or number
type predictRequest struct {
	Inputs map[string]interface{} `json:"inputs"`
}

// formInputs converts the JSON scalars to the text the form would have posted
func (req predictRequest) formInputs() (schema.Inputs, error) {
	in := make(schema.Inputs, len(req.Inputs))
	for name, v := range req.Inputs {
		switch v := v.(type) {
		case string:
			in[name] = v
		case json.Number:
			in[name] = v.String()
		case nil:
		default:
			return nil, errors.InvalidInput(fmt.Sprintf("input %s must be a string or a number", name))
		}
	}
	return in, nil
}

func newAPI(c *container.Container) *App {
	app := &App{
		router:    chi.NewRouter(),
		container: c,
		logger:    c.Logger,
	}
	app.setupMiddleware()
	app.setupRoutes()
	return app
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the API routes
func (a *App) setupRoutes() {
	a.router.Get("/variants", a.handleListVariants)
	a.router.Route("/variants/{variant}", func(r chi.Router) {
		r.Get("/schema", a.handleSchema)
		r.Post("/predict", a.handlePredict)
		r.Get("/predictions", a.handlePredictions)
		r.Get("/insights", a.handleInsights)
	})
	a.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		a.writeError(w, errors.NotFound("endpoint "+r.URL.Path))
	})
}

func (a *App) handleListVariants(w http.ResponseWriter, r *http.Request) {
	def := a.container.DefaultVariant()
	out := make([]variantInfo, 0)
	for _, d := range a.container.Dashboards() {
		v := d.Variant
		out = append(out, variantInfo{
			Name:        v.Name,
			Title:       v.Title,
			ResultLabel: v.ResultLabel,
			Currency:    v.Currency,
			Guard:       string(v.Guard),
			Width:       v.Schema.Width(),
			Model:       d.Model.Info(),
			Default:     v.Name == def,
		})
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{"variants": out})
}

func (a *App) handleSchema(w http.ResponseWriter, r *http.Request) {
	d, err := a.dashboard(r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	features := d.Variant.Schema.Features()
	out := make([]featureInfo, len(features))
	for i, f := range features {
		info := featureInfo{FeatureSpec: f, Position: i}
		if f.IsCategorical() {
			for _, e := range f.Codes.Entries() {
				info.Labels = append(info.Labels, e.Label)
				info.Codes = append(info.Codes, e.Code)
			}
		}
		out[i] = info
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"variant":  d.Variant.Name,
		"width":    d.Variant.Schema.Width(),
		"features": out,
	})
}

func (a *App) handlePredict(w http.ResponseWriter, r *http.Request) {
	d, err := a.dashboard(r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	var req predictRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		a.writeError(w, errors.InvalidInput("request body must be JSON with an inputs object: "+err.Error()))
		return
	}
	inputs, err := req.formInputs()
	if err != nil {
		a.writeError(w, err)
		return
	}

	p, err := a.container.Pricing.Predict(r.Context(), d.Variant.Name, inputs)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, p)
}

func (a *App) handlePredictions(w http.ResponseWriter, r *http.Request) {
	d, err := a.dashboard(r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			a.writeError(w, errors.InvalidInput("limit must be an integer"))
			return
		}
	}

	items, err := a.container.Pricing.Recent(r.Context(), d.Variant.Name, limit)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{"variant": d.Variant.Name, "predictions": items})
}

func (a *App) handleInsights(w http.ResponseWriter, r *http.Request) {
	d, err := a.dashboard(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"variant": d.Variant.Name,
		"guard":   d.Variant.Guard,
		"charts":  d.Gallery.Charts,
		"skipped": d.Gallery.Skipped,
		"failed":  d.Gallery.Failed,
		"error":   d.Gallery.ErrorMessage(),
	})
}

func (a *App) dashboard(r *http.Request) (*container.Dashboard, error) {
	return a.container.Dashboard(core.VariantName(chi.URLParam(r, "variant")))
}

func (a *App) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn("[API] failed to encode response: %v", err)
	}
}

func (a *App) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("[API] %v", err)
	}
	a.writeJSON(w, status, map[string]interface{}{"error": err.Error(), "code": errors.GetCode(err)})
}
