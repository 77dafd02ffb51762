package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/gridwatch/powerdash/internal/derive"
	"github.com/gridwatch/powerdash/internal/domain"
)

// AlertsFor evaluates a freshly ingested reading plus the rolling hourly
// energy figure and returns the alerts it raises. Pure except for ID
// generation.
func AlertsFor(r *domain.PowerReading, hourlyKWh float64) []domain.Alert {
	var alerts []domain.Alert

	status, desc := derive.Classify(hourlyKWh, derive.Hourly)
	switch status {
	case derive.High:
		alerts = append(alerts, domain.Alert{
			ID:        uuid.NewString(),
			Type:      "energy_usage",
			Severity:  "warning",
			Message:   desc,
			Value:     hourlyKWh,
			Threshold: 0.8,
			Date:      r.Timestamp,
		})
	case derive.VeryHigh:
		alerts = append(alerts, domain.Alert{
			ID:        uuid.NewString(),
			Type:      "energy_usage",
			Severity:  "critical",
			Message:   desc,
			Value:     hourlyKWh,
			Threshold: 1.5,
			Date:      r.Timestamp,
		})
	}

	if r.Voltage < VoltageLow || r.Voltage > VoltageHigh {
		threshold := VoltageLow
		if r.Voltage > VoltageHigh {
			threshold = VoltageHigh
		}
		alerts = append(alerts, domain.Alert{
			ID:        uuid.NewString(),
			Type:      "voltage",
			Severity:  "info",
			Message:   fmt.Sprintf("Voltage %.1fV outside the %.0f-%.0fV band", r.Voltage, VoltageLow, VoltageHigh),
			Value:     r.Voltage,
			Threshold: threshold,
			Date:      r.Timestamp,
		})
	}

	return alerts
}
