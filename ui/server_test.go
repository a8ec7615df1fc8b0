package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal"
	"salesdash/internal/config"
	"salesdash/internal/container"
	"salesdash/internal/insights"
)

func writeLinearModel(t *testing.T, dir, name string, width int) {
	t.Helper()
	coef := make([]string, width)
	for i := range coef {
		coef[i] = "1"
	}
	doc := fmt.Sprintf(`{"format":"salesdash-model/v1","kind":"linear","n_features":%d,"intercept":100,"coef":[%s]}`,
		width, strings.Join(coef, ","))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(doc), 0o644))
}

// newTestServer boots both built-in dashboards over linear models and the synthetic dataset
func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	writeLinearModel(t, dir, "Sales_Trends_prediction_model_gb1.json", 21)
	writeLinearModel(t, dir, "Sales_Trends_prediction_model_rf.json", 15)

	cfg := &config.Config{
		Server:   config.ServerConfig{Port: "0", GinMode: "test"},
		Paths:    config.PathConfig{ModelDir: dir, DatasetPath: container.SyntheticDataset},
		Display:  config.DisplayConfig{Currency: "₹", ChartWidth: 320, ChartHeight: 240},
		Variants: config.VariantSelection{Active: []string{"gb21", "rf15"}, Default: "gb21"},
		LogLevel: "ERROR",
	}
	c, err := container.New(cfg, internal.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, c.Bootstrap(context.Background()))
	t.Cleanup(func() { _ = c.Shutdown(context.Background()) })

	s := NewServer(c, os.DirFS("."))
	require.NoError(t, s.Initialize())
	return s
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestIndexRedirectsToDefaultVariant(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/v/gb21", rec.Header().Get("Location"))
}

func TestDashboardPage(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/v/rf15", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<title>Sales Trends Dashboard</title>")
	assert.Contains(t, body, "AI Sales Trends Intelligence Dashboard")
	assert.Contains(t, body, "Predict optimal Price")
	assert.Contains(t, body, `name="profit_margin"`)
	assert.Contains(t, body, `<option value="All season"`)
	assert.Contains(t, body, "/charts/rf15/distributions.png")
	assert.Contains(t, body, "<strong>Maansi Tomer</strong>")
	assert.Equal(t, 3, strings.Count(body, `class="column"`))
}

func TestDashboardPage_UnknownVariant(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/v/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPredictForm(t *testing.T) {
	s := newTestServer(t)

	form := url.Values{
		"profit_margin": {"10"},
		"cost_price":    {"500"},
		"quantity_sold": {"2"},
		"brand":         {"Nike"},
		"season":        {"Summer"},
	}
	rec := serve(s, postForm("/v/rf15/predict", form))
	require.Equal(t, http.StatusOK, rec.Code)

	// 100 + 10 + 500 + 25 (age) + 1 (stock) + 2 (Nike) + 0 (Summer) + 2 (quantity)
	body := rec.Body.String()
	assert.Contains(t, body, "Predicted Optimal Price: ₹640.00")
	assert.Contains(t, body, `value="500"`, "inputs are retained across the re-render")
}

func TestPredictForm_UnknownLabel(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, postForm("/v/rf15/predict", url.Values{"brand": {"Prada"}}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Prada")
	assert.NotContains(t, rec.Body.String(), "alert success")
}

func TestPredictForm_NonFiniteNumber(t *testing.T) {
	s := newTestServer(t)

	for _, raw := range []string{"Inf", "NaN"} {
		rec := serve(s, postForm("/v/rf15/predict", url.Values{"cost_price": {raw}}))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, raw)
		assert.NotContains(t, rec.Body.String(), "∞")
		assert.NotContains(t, rec.Body.String(), "alert success")
	}
}

func TestChartPNG(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/charts/gb21/"+string(insights.ChartSeasonPrice)+".png", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/charts/gb21/unknown.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticAssets(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/static/css/dashboard.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "#4CAF50")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","variants":["gb21","rf15"]}`, rec.Body.String())
}

func TestAPI_Variants(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/variants", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Variants []struct {
			Name    string `json:"name"`
			Width   int    `json:"width"`
			Default bool   `json:"default"`
		} `json:"variants"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Variants, 2)
	assert.Equal(t, "gb21", body.Variants[0].Name)
	assert.Equal(t, 21, body.Variants[0].Width)
	assert.True(t, body.Variants[0].Default)
	assert.Equal(t, 15, body.Variants[1].Width)
}

func TestAPI_Schema(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/variants/rf15/schema", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Width    int `json:"width"`
		Features []struct {
			Name     string   `json:"name"`
			Position int      `json:"position"`
			Labels   []string `json:"labels"`
			Codes    []int    `json:"codes"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Features, 15)
	assert.Equal(t, "profit_margin", body.Features[0].Name)

	season := body.Features[13]
	assert.Equal(t, "season", season.Name)
	assert.Equal(t, []string{"Summer", "Winter", "All season"}, season.Labels)
	assert.Equal(t, []int{0, 1, 2}, season.Codes)
}

func TestAPI_PredictAndLog(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/variants/rf15/predict",
		strings.NewReader(`{"inputs":{"cost_price":"500","brand":"Nike"}}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var p struct {
		Value     float64   `json:"value"`
		Formatted string    `json:"formatted"`
		Features  []float64 `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, 629.0, p.Value)
	assert.Equal(t, "₹629.00", p.Formatted)
	assert.Len(t, p.Features, 15)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/variants/rf15/predictions?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "₹629.00")
}

func TestAPI_PredictNumericJSON(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/variants/rf15/predict",
		strings.NewReader(`{"inputs":{"cost_price":500,"profit_margin":12.5,"brand":"Nike"}}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var p struct {
		Value float64 `json:"value"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	// same inputs as TestAPI_PredictAndLog plus profit_margin 12.5
	assert.Equal(t, 641.5, p.Value)
}

func TestAPI_PredictErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"unknown label", "/api/v1/variants/rf15/predict", `{"inputs":{"season":"Monsoon"}}`, 422, "INVALID_INPUT"},
		{"not a number", "/api/v1/variants/gb21/predict", `{"inputs":{"cost_price":"abc"}}`, 422, "INVALID_INPUT"},
		{"nan", "/api/v1/variants/rf15/predict", `{"inputs":{"cost_price":"NaN"}}`, 422, "INVALID_INPUT"},
		{"inf", "/api/v1/variants/rf15/predict", `{"inputs":{"cost_price":"Inf"}}`, 422, "INVALID_INPUT"},
		{"negative infinity", "/api/v1/variants/gb21/predict", `{"inputs":{"cost_price":"-infinity"}}`, 422, "INVALID_INPUT"},
		{"boolean input", "/api/v1/variants/rf15/predict", `{"inputs":{"cost_price":true}}`, 422, "INVALID_INPUT"},
		{"malformed body", "/api/v1/variants/gb21/predict", `{"inputs":`, 422, "INVALID_INPUT"},
		{"unknown variant", "/api/v1/variants/xx/predict", `{"inputs":{}}`, 404, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			rec := serve(s, req)
			assert.Equal(t, tt.status, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["code"])
		})
	}

	// rejected inputs never reach the prediction log
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/variants/rf15/predictions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var log struct {
		Predictions []json.RawMessage `json:"predictions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &log))
	assert.Empty(t, log.Predictions)
}

func TestAPI_Insights(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/variants/gb21/insights", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Charts []struct {
			ID string `json:"id"`
		} `json:"charts"`
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Charts, 3)
	assert.Equal(t, "distributions", body.Charts[0].ID)
	assert.Empty(t, body.Error)
}
