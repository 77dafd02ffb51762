package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/gridwatch/powerdash/internal/domain"
	"github.com/gridwatch/powerdash/internal/repository"
)

// Voltage band considered healthy for a 230V nominal supply.
const (
	VoltageLow  = 200.0
	VoltageHigh = 250.0
)

type Services struct {
	Repos    *repository.Repos
	Readings *ReadingService
}

func New(db *sqlx.DB) *Services {
	repos := repository.New(db)
	return &Services{
		Repos:    repos,
		Readings: &ReadingService{repos: repos},
	}
}

type ReadingService struct {
	repos *repository.Repos
}

// FromMQTT decodes a reading published on the readings topic, stores it and
// evaluates alerts against it.
func (s *ReadingService) FromMQTT(topic string, payload []byte) error {
	var r domain.PowerReading
	if err := json.Unmarshal(payload, &r); err != nil {
		return fmt.Errorf("decode reading: %w", err)
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	if err := s.repos.InsertReading(&r); err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}

	hourly, err := s.repos.HourlyEnergy()
	if err != nil {
		log.Warn().Err(err).Msg("hourly energy lookup failed, skipping alert evaluation")
		return nil
	}
	for _, a := range AlertsFor(&r, hourly) {
		if err := s.repos.InsertAlert(&a); err != nil {
			log.Error().Err(err).Str("type", a.Type).Msg("alert insert failed")
		}
	}
	return nil
}
