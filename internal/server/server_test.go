package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gridwatch/powerdash/internal/api"
)

func fakeCollector(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	reply := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(body))
		}
	}
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/power/last7", reply(`{"success":true,"count":2,"data":[
		{"id":2,"voltage":230.5,"current":4.2,"power_watts":950,"energy_kwh":10.2,"frequency":50,"power_factor":0.97,"timestamp":"2026-08-30T10:00:05Z"},
		{"id":1,"voltage":229.9,"current":4.0,"power_watts":900,"energy_kwh":10.1,"frequency":50,"power_factor":0.96,"timestamp":"2026-08-30T10:00:00Z"}
	]}`))
	mux.HandleFunc("/power/statistics", reply(`{"success":true,"data":{"days":7,"avg_power":925,"total_energy":3.4,"samples":240}}`))
	mux.HandleFunc("/power/analysis/peak-usage", reply(`{"success":true,"data":[{"hour":"2026-08-30T09:00:00Z","energy_kwh":1.2,"avg_power":1200}]}`))
	mux.HandleFunc("/power/analysis/load-pattern", reply(`{"success":true,"data":[{"hour_of_day":9,"avg_power":800,"max_power":1500}]}`))
	mux.HandleFunc("/power/analysis/power-factor", reply(`{"success":true,"data":{"average":0.95,"minimum":0.82,"below_good":3,"samples":240}}`))
	mux.HandleFunc("/power/alerts", reply(`{"success":true,"count":1,"data":[
		{"id":"a1","type":"energy_usage","severity":"warning","message":"Usage above typical","value":1.1,"threshold":0.8,"date":"2026-08-30T09:30:00Z","isRead":false}
	]}`))
	mux.HandleFunc("/power/alerts/summary", reply(`{"success":true,"data":{"total":1,"critical":0,"warning":1,"info":0,"unread":1}}`))
	mux.HandleFunc("/power/reports/monthly", reply(`{"success":true,"count":1,"data":[
		{"month":8,"year":2026,"totalEnergy":120.5,"avgDailyEnergy":4.0,"peakDate":"2026-08-15T00:00:00Z","costLocal":174086,"costUsd":11.23}
	]}`))
	mux.HandleFunc("/power/reports/current-month", reply(`{"success":true,"data":
		{"month":8,"year":2026,"totalEnergy":120.5,"avgDailyEnergy":4.0,"peakDate":"2026-08-15T00:00:00Z","costLocal":174086,"costUsd":11.23}
	}`))
	history := reply(`{"success":true,"count":1,"data":[{"period":"2026-08-30T09:00:00Z","energy_kwh":0.9,"avg_power":900,"peak_power":1500}]}`)
	mux.HandleFunc("/power/hourly/all", history)
	mux.HandleFunc("/power/daily/all", history)
	mux.HandleFunc("/power/monthly/all", history)
	return httptest.NewServer(mux)
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	collector := fakeCollector(t)
	t.Cleanup(collector.Close)
	return New(api.New(collector.URL), 7, time.Hour, time.Hour), collector
}

func TestRealtimePageRendersSnapshot(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "badge disconnected") {
		t.Error("expected the disconnected badge before the first refresh")
	}

	s.Sampler().Refresh(context.Background())

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(rec.Body.String(), "badge connected") {
		t.Error("expected the connected badge after a successful refresh")
	}
}

func TestAPIRealtimeIncludesCost(t *testing.T) {
	s, _ := newTestServer(t)
	s.Sampler().Refresh(context.Background())

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/realtime", nil))

	var payload struct {
		Connected  bool `json:"connected"`
		FocusIndex int  `json:"focusIndex"`
		Buffer     []struct {
			PowerWatts float64 `json:"power_watts"`
		} `json:"buffer"`
		HourlyCost *struct {
			Local float64 `json:"local"`
			USD   float64 `json:"usd"`
		} `json:"hourlyCost"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if !payload.Connected {
		t.Error("expected connected=true")
	}
	if len(payload.Buffer) != 2 {
		t.Fatalf("buffer length = %d, want 2", len(payload.Buffer))
	}
	if payload.HourlyCost == nil || payload.HourlyCost.Local <= 0 {
		t.Errorf("expected a positive hourly cost, got %+v", payload.HourlyCost)
	}
}

func TestOverviewReflectsPolledState(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	s.refreshStatistics(ctx)
	s.refreshAnalysis(ctx)
	s.refreshAlerts(ctx)
	s.refreshReports(ctx)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/overview", nil))

	body := rec.Body.String()
	for _, want := range []string{`"avg_power":925`, `"warning":1`, `"totalEnergy":120.5`, `"average":0.95`} {
		if !strings.Contains(body, want) {
			t.Errorf("overview missing %s in %s", want, body)
		}
	}
}

func TestPagesRenderWithoutData(t *testing.T) {
	s, _ := newTestServer(t)
	for _, path := range []string{"/analysis", "/alerts", "/reports", "/history"} {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", path, rec.Code)
		}
	}
}

func TestHealthzReportsUpstream(t *testing.T) {
	s, collector := newTestServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if !strings.Contains(rec.Body.String(), "online") {
		t.Errorf("expected online, got %s", rec.Body.String())
	}

	collector.Close()
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if !strings.Contains(rec.Body.String(), "offline") {
		t.Errorf("expected offline, got %s", rec.Body.String())
	}
}

func TestUnknownPathIs404(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
