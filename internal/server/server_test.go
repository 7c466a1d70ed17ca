package server

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/happydash/internal/dataset"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `Country name,Year,Happiness Score,GDP per Capita,Social support
A,2020,5.0,1.0,0.5
B,2020,7.0,2.0,0.8
A,2021,6.0,1.2,0.6
`

func newTestServer(t *testing.T, csv string) *Server {
	t.Helper()
	ds, err := dataset.ReadCSV(strings.NewReader(csv), "final_data.csv", dataset.DefaultOptions())
	require.NoError(t, err)
	return New(ds, Config{CORSOrigins: []string{"http://localhost:3000"}}, zerolog.Nop())
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

type dashboard struct {
	Stats struct {
		Rows          int      `json:"rows"`
		MeanHappiness *float64 `json:"mean_happiness"`
		MeanGDP       *float64 `json:"mean_gdp"`
	} `json:"stats"`
	KPIs []string `json:"kpis"`
	View struct {
		Records []map[string]any `json:"records"`
	} `json:"view"`
	Series  []map[string]any `json:"series"`
	Scatter []map[string]any `json:"scatter"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) dashboard {
	t.Helper()
	var d dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d), rec.Body.String())
	return d
}

func TestHealthCheck(t *testing.T) {
	rec := do(t, newTestServer(t, sample), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestGetOptions(t *testing.T) {
	rec := do(t, newTestServer(t, sample), http.MethodGet, "/api/options", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var opt struct {
		Years     []int    `json:"years"`
		Countries []string `json:"countries"`
		ScoreMin  float64  `json:"score_min"`
		ScoreMax  float64  `json:"score_max"`
		Marks     []int    `json:"marks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opt))
	assert.Equal(t, []int{2020, 2021}, opt.Years)
	assert.Equal(t, []string{"A", "B"}, opt.Countries)
	assert.Equal(t, 5.0, opt.ScoreMin)
	assert.Equal(t, 7.0, opt.ScoreMax)
	assert.Equal(t, []int{5, 6, 7}, opt.Marks)
}

func TestGetDashboardFiltersByYear(t *testing.T) {
	rec := do(t, newTestServer(t, sample), http.MethodGet, "/api/dashboard?year=2020", "")
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode(t, rec)
	assert.Equal(t, 2, d.Stats.Rows)
	require.NotNil(t, d.Stats.MeanHappiness)
	assert.InDelta(t, 6.0, *d.Stats.MeanHappiness, 1e-9)
	assert.Equal(t, "Avg Happiness Score: 6.00", d.KPIs[0])
	require.Len(t, d.View.Records, 2)
	assert.Equal(t, "A", d.View.Records[0]["Country name"])
	assert.Equal(t, "B", d.View.Records[1]["Country name"])
	assert.Len(t, d.Series, 2)
	assert.Len(t, d.Scatter, 2)
}

func TestGetDashboardDefaultsToEverything(t *testing.T) {
	d := decode(t, do(t, newTestServer(t, sample), http.MethodGet, "/api/dashboard", ""))
	assert.Equal(t, 3, d.Stats.Rows)
}

func TestGetDashboardCountriesAndCommaYears(t *testing.T) {
	rec := do(t, newTestServer(t, sample), http.MethodGet, "/api/dashboard?years=2020,2021&country=A&min=5.5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode(t, rec)
	require.Len(t, d.View.Records, 1)
	assert.EqualValues(t, 2021, d.View.Records[0]["Year"])
}

func TestGetDashboardEmptyViewHasNullMeans(t *testing.T) {
	rec := do(t, newTestServer(t, sample), http.MethodGet, "/api/dashboard?min=10&max=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"mean_happiness":null`)
	d := decode(t, rec)
	assert.Nil(t, d.Stats.MeanHappiness)
	assert.Nil(t, d.Stats.MeanGDP)
	assert.Equal(t, "Avg Happiness Score: n/a", d.KPIs[0])
}

func TestGetDashboardBadInput(t *testing.T) {
	s := newTestServer(t, sample)
	for _, target := range []string{
		"/api/dashboard?min=8&max=2",
		"/api/dashboard?year=twenty",
		"/api/dashboard?min=abc",
	} {
		rec := do(t, s, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), `"error"`, target)
	}
	rec := do(t, s, http.MethodGet, "/api/dashboard?min=8&max=2", "")
	assert.Contains(t, rec.Body.String(), "invalid score range")
}

func TestPostDashboard(t *testing.T) {
	s := newTestServer(t, sample)
	rec := do(t, s, http.MethodPost, "/api/dashboard", `{"years":[2020],"countries":[],"score_range":{"low":0,"high":10}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	d := decode(t, rec)
	assert.Equal(t, 2, d.Stats.Rows)

	rec = do(t, s, http.MethodPost, "/api/dashboard", `{"countries":["B"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode(t, rec).Stats.Rows)

	rec = do(t, s, http.MethodPost, "/api/dashboard", `{"score_range":{"low":9,"high":1}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/dashboard", `{"year":[2020]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmptyDatasetConflicts(t *testing.T) {
	s := newTestServer(t, "Country name,Year,Happiness Score,GDP per Capita,Social support\n")
	assert.Equal(t, http.StatusConflict, do(t, s, http.MethodGet, "/api/options", "").Code)
	rec := do(t, s, http.MethodGet, "/api/dashboard", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "dataset final_data.csv is empty")
}

func TestSummaryPage(t *testing.T) {
	s := newTestServer(t, sample)
	rec := do(t, s, http.MethodGet, "/?year=2020&country=%3Cscript%3Ealert(1)%3C/script%3E&country=A", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, "World Happiness Dashboard")
	assert.Contains(t, body, "Avg Happiness Score: 5.00")
	assert.NotContains(t, body, "<script>")
}

func TestSummaryPageRendersLinksInertly(t *testing.T) {
	s := newTestServer(t, sample)
	q := url.Values{"country": {"[x](javascript:alert(1))"}}
	rec := do(t, s, http.MethodGet, "/?"+q.Encode(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, `href="javascript:`)
	assert.Contains(t, body, "Avg Happiness Score: n/a")
}

func TestInfiniteBoundsAreRejected(t *testing.T) {
	s := newTestServer(t, sample)
	for _, target := range []string{
		"/api/dashboard?min=-inf",
		"/api/dashboard?max=inf",
		"/?min=-inf",
	} {
		rec := do(t, s, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "bounds must be finite numbers", target)
	}
	rec := do(t, s, http.MethodPost, "/api/dashboard", `{"score_range":{"low":-1e400}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWriteJSONEncodeFailureIs500(t *testing.T) {
	s := newTestServer(t, sample)
	rec := httptest.NewRecorder()
	s.writeJSON(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, math.Inf(1))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to encode response"}`, rec.Body.String())
}

func TestMetricsExposeUpdates(t *testing.T) {
	s := newTestServer(t, sample)
	do(t, s, http.MethodGet, "/api/dashboard", "")
	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `happydash_updates_total{outcome="ok"}`)
	assert.Contains(t, rec.Body.String(), "happydash_update_duration_seconds")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, sample)
	req := httptest.NewRequest(http.MethodOptions, "/api/dashboard", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, sample)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
