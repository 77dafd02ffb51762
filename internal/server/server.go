// Package server is the dashboard web app: it polls the collector on
// per-page intervals, holds the realtime sampler, and renders the pages.
package server

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gridwatch/powerdash/internal/api"
	"github.com/gridwatch/powerdash/internal/derive"
	"github.com/gridwatch/powerdash/internal/domain"
	"github.com/gridwatch/powerdash/internal/poller"
	"github.com/gridwatch/powerdash/internal/sampler"
)

// Poll intervals per page, matching how fresh each page needs to be.
const (
	statisticsEvery = 30 * time.Second
	alertsEvery     = 30 * time.Second
	analysisEvery   = 60 * time.Second
	reportsEvery    = 5 * time.Minute
	historyEvery    = 5 * time.Minute
)

type Server struct {
	mux  *http.ServeMux
	tmpl *template.Template
	api  *api.Client
	smp  *sampler.Sampler
	hub  *hub

	mu       sync.RWMutex
	analysis analysisState
	stats    *domain.Statistics
	alerts   alertsState
	reports  reportsState
	history  historyState

	tasks  []*poller.Task
	cancel context.CancelFunc
}

func New(client *api.Client, window int, refreshEvery, advanceEvery time.Duration) *Server {
	s := &Server{
		mux:  http.NewServeMux(),
		tmpl: parseTemplates(),
		api:  client,
		hub:  newHub(),
	}

	s.smp = sampler.New(func(ctx context.Context) ([]domain.PowerReading, error) {
		readings, err := client.Last7(ctx)
		if err != nil {
			return nil, err
		}
		if len(readings) > window {
			readings = readings[:window]
		}
		return readings, nil
	}, refreshEvery, advanceEvery)
	s.smp.OnUpdate(func(snap sampler.Snapshot) {
		s.hub.send(realtimePayload(snap))
	})

	s.routes()
	return s
}

// Start launches the sampler and the per-page pollers. Stop releases them.
func (s *Server) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.smp.Start(ctx)
	s.tasks = []*poller.Task{
		poller.Run(ctx, "analysis", analysisEvery, s.refreshAnalysis),
		poller.Run(ctx, "statistics", statisticsEvery, s.refreshStatistics),
		poller.Run(ctx, "alerts", alertsEvery, s.refreshAlerts),
		poller.Run(ctx, "reports", reportsEvery, s.refreshReports),
		poller.Run(ctx, "history", historyEvery, s.refreshHistory),
	}
}

func (s *Server) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.smp.Stop()
	for _, t := range s.tasks {
		t.Stop()
	}
	s.hub.close()
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleRealtime)
	s.mux.HandleFunc("/analysis", s.handleAnalysis)
	s.mux.HandleFunc("/alerts", s.handleAlerts)
	s.mux.HandleFunc("/reports", s.handleReports)
	s.mux.HandleFunc("/history", s.handleHistory)
	s.mux.HandleFunc("/ws", s.handleWebSocket)
	s.mux.HandleFunc("/api/realtime", s.handleAPIRealtime)
	s.mux.HandleFunc("/api/overview", s.handleAPIOverview)
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Sampler exposes the realtime sampler, mainly so callers can trigger an
// immediate refresh.
func (s *Server) Sampler() *sampler.Sampler { return s.smp }

// realtimePayload is what the websocket and /api/realtime hand out: the
// sampler snapshot plus the cost of running the focused load for one hour.
func realtimePayload(snap sampler.Snapshot) map[string]any {
	payload := map[string]any{
		"buffer":     snap.Buffer,
		"focusIndex": snap.FocusIndex,
		"focus":      snap.Focus,
		"connected":  snap.Connected,
		"updatedAt":  snap.UpdatedAt,
	}
	if snap.Focus != nil {
		payload["hourlyCost"] = derive.CostOf(derive.WattsToKWh(snap.Focus.PowerWatts, 1))
	}
	return payload
}

func (s *Server) handleRealtime(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	snap := s.smp.Snapshot()
	s.render(w, "realtime", map[string]any{
		"Title":        "Realtime",
		"Snapshot":     snap,
		"SnapshotJSON": toJSON(realtimePayload(snap)),
	})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	analysis := s.analysis
	s.mu.RUnlock()
	s.render(w, "analysis", map[string]any{
		"Title":    "Analysis",
		"Analysis": analysis,
	})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	alerts := s.alerts
	s.mu.RUnlock()
	s.render(w, "alerts", map[string]any{
		"Title":  "Alerts",
		"Alerts": alerts,
	})
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	reports := s.reports
	s.mu.RUnlock()
	s.render(w, "reports", map[string]any{
		"Title":   "Reports",
		"Reports": reports,
	})
}

type historySection struct {
	Name    string
	Layout  string
	Buckets []domain.EnergyBucket
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	history := s.history
	s.mu.RUnlock()
	s.render(w, "history", map[string]any{
		"Title": "History",
		"Sections": []historySection{
			{Name: "Hourly", Layout: "Jan 2 15:04", Buckets: history.Hourly},
			{Name: "Daily", Layout: "Jan 2", Buckets: history.Daily},
			{Name: "Monthly", Layout: "Jan 2006", Buckets: history.Monthly},
		},
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.hub.serve(w, r, realtimePayload(s.smp.Snapshot()))
}

func (s *Server) handleAPIRealtime(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, realtimePayload(s.smp.Snapshot()))
}

func (s *Server) handleAPIOverview(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	overview := map[string]any{
		"statistics": s.stats,
		"analysis": map[string]any{
			"peakUsage":   s.analysis.Peak,
			"loadPattern": s.analysis.Load,
			"powerFactor": s.analysis.PowerFactor,
		},
		"alerts":  map[string]any{"items": s.alerts.Alerts, "summary": s.alerts.Summary},
		"reports": map[string]any{"monthly": s.reports.Monthly, "currentMonth": s.reports.Current},
	}
	s.mu.RUnlock()
	writeJSON(w, overview)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "online"
	if err := s.api.Health(ctx); err != nil {
		status = "offline"
	}
	writeJSON(w, map[string]string{"upstream": status})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func toJSON(v any) template.JS {
	b, _ := json.Marshal(v)
	return template.JS(b)
}
