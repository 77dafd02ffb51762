package server

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/gridwatch/powerdash/internal/domain"
)

// Each page owns one state struct, refreshed by its own poller and replaced
// wholesale per poll. A failed fetch logs a warning and keeps the previous
// value, so pages render stale data rather than errors.

type analysisState struct {
	Peak        []domain.PeakUsage
	Load        []domain.LoadPattern
	PowerFactor *domain.PowerFactorSummary
}

type alertsState struct {
	Alerts  []domain.Alert
	Summary *domain.AlertSummary
}

type reportsState struct {
	Monthly []domain.MonthlyReport
	Current *domain.MonthlyReport
}

type historyState struct {
	Hourly  []domain.EnergyBucket
	Daily   []domain.EnergyBucket
	Monthly []domain.EnergyBucket
}

func (s *Server) refreshAnalysis(ctx context.Context) {
	peak, err := s.api.PeakUsage(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("peak usage fetch failed")
	}
	load, err := s.api.LoadPattern(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("load pattern fetch failed")
	}
	pf, err := s.api.PowerFactor(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("power factor fetch failed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if peak != nil {
		s.analysis.Peak = peak
	}
	if load != nil {
		s.analysis.Load = load
	}
	if pf != nil {
		s.analysis.PowerFactor = pf
	}
}

func (s *Server) refreshStatistics(ctx context.Context) {
	stats, err := s.api.Statistics(ctx, 7)
	if err != nil {
		log.Warn().Err(err).Msg("statistics fetch failed")
		return
	}
	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()
}

func (s *Server) refreshAlerts(ctx context.Context) {
	alerts, err := s.api.Alerts(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("alerts fetch failed")
	}
	summary, err := s.api.AlertSummary(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("alert summary fetch failed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if alerts != nil {
		s.alerts.Alerts = alerts
	}
	if summary != nil {
		s.alerts.Summary = summary
	}
}

func (s *Server) refreshReports(ctx context.Context) {
	monthly, err := s.api.MonthlyReports(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("monthly reports fetch failed")
	}
	current, err := s.api.CurrentMonthReport(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("current month report fetch failed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if monthly != nil {
		s.reports.Monthly = monthly
	}
	if current != nil {
		s.reports.Current = current
	}
}

func (s *Server) refreshHistory(ctx context.Context) {
	hourly, err := s.api.HourlyAll(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("hourly history fetch failed")
	}
	daily, err := s.api.DailyAll(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("daily history fetch failed")
	}
	monthly, err := s.api.MonthlyAll(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("monthly history fetch failed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if hourly != nil {
		s.history.Hourly = hourly
	}
	if daily != nil {
		s.history.Daily = daily
	}
	if monthly != nil {
		s.history.Monthly = monthly
	}
}
