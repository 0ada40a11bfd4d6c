package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"child-health-tracker/internal/growth"
	"child-health-tracker/internal/report"
	"child-health-tracker/internal/screening"
)

const sampleProfile = `{
  "name": "하준",
  "birth_date": "2023-01-01T00:00:00Z",
  "gender": "MALE",
  "growth_history": [
    {"date": "2024-01-01T00:00:00Z", "height": 76.0, "weight": 9.8},
    {"date": "2023-07-01T00:00:00Z", "height": 67.5},
    {"date": "2023-09-01T00:00:00Z"}
  ]
}`

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunAnalyze(t *testing.T) {
	var out bytes.Buffer
	if err := runAnalyze(&out, writeProfile(t, sampleProfile), growth.MetricHeight); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got analysisOutput
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if got.Insight.Metric != growth.MetricHeight || !got.Insight.HasComparison {
		t.Errorf("insight = %+v", got.Insight)
	}
	if got.Insight.AgeMonths != 12 || got.Insight.Value != 76.0 {
		t.Errorf("latest record not used: %+v", got.Insight)
	}
	if !got.MonthDomain.Contains(6) || !got.MonthDomain.Contains(12) {
		t.Errorf("month domain %+v should cover both samples", got.MonthDomain)
	}
	if got.ValueDomain.Min >= got.ValueDomain.Max {
		t.Errorf("value domain = %+v", got.ValueDomain)
	}
}

func TestRunAnalyze_NoData(t *testing.T) {
	var out bytes.Buffer
	if err := runAnalyze(&out, writeProfile(t, sampleProfile), growth.MetricHead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got analysisOutput
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Insight.HasComparison || got.Insight.Status != growth.StatusCaution {
		t.Errorf("expected data-needed insight, got %+v", got.Insight)
	}
}

func TestRunAnalyze_Errors(t *testing.T) {
	var out bytes.Buffer
	if err := runAnalyze(&out, writeProfile(t, sampleProfile), "bmi"); !errors.Is(err, growth.ErrInvalidMetric) {
		t.Errorf("expected ErrInvalidMetric, got %v", err)
	}
	if err := runAnalyze(&out, filepath.Join(t.TempDir(), "missing.json"), growth.MetricHeight); err == nil {
		t.Error("expected error for missing file")
	}
	if err := runAnalyze(&out, writeProfile(t, "{not json"), growth.MetricHeight); err == nil {
		t.Error("expected error for malformed profile")
	}
}

func TestRouter_HealthAndCORS(t *testing.T) {
	r := newRouter(zerolog.Nop(), growth.NewHandler(nil), screening.NewHandler(nil), report.NewHandler(nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/profiles", nil))
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Errorf("preflight status = %d body = %q", rec.Code, rec.Body.String())
	}
}

func TestRouter_StagesRoute(t *testing.T) {
	r := newRouter(zerolog.Nop(), growth.NewHandler(nil), screening.NewHandler(nil), report.NewHandler(nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stages", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stages []screening.Stage
	if err := json.Unmarshal(rec.Body.Bytes(), &stages); err != nil {
		t.Fatal(err)
	}
	if len(stages) != len(screening.Stages()) {
		t.Errorf("got %d stages", len(stages))
	}
}
