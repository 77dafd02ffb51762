package repository

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gridwatch/powerdash/internal/domain"
)

type Repos struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }

func (r *Repos) InsertReading(rd *domain.PowerReading) error {
	return r.db.QueryRow(
		`INSERT INTO readings(voltage, current, power_watts, energy_kwh, frequency, power_factor, timestamp)
		 VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		rd.Voltage, rd.Current, rd.PowerWatts, rd.EnergyKWh, rd.Frequency, rd.PowerFactor, rd.Timestamp,
	).Scan(&rd.ID)
}

func (r *Repos) LatestReadings(n int) ([]domain.PowerReading, error) {
	var out []domain.PowerReading
	err := r.db.Select(&out,
		`SELECT id, voltage, current, power_watts, energy_kwh, frequency, power_factor, timestamp
		 FROM readings ORDER BY timestamp DESC LIMIT $1`, n)
	return out, err
}

func (r *Repos) Statistics(days int) (*domain.Statistics, error) {
	var out domain.Statistics
	err := r.db.Get(&out, fmt.Sprintf(
		`SELECT
			COALESCE(MIN(voltage),0) AS min_voltage, COALESCE(AVG(voltage),0) AS avg_voltage, COALESCE(MAX(voltage),0) AS max_voltage,
			COALESCE(MIN(current),0) AS min_current, COALESCE(AVG(current),0) AS avg_current, COALESCE(MAX(current),0) AS max_current,
			COALESCE(MIN(power_watts),0) AS min_power, COALESCE(AVG(power_watts),0) AS avg_power, COALESCE(MAX(power_watts),0) AS max_power,
			COALESCE(MAX(energy_kwh) - MIN(energy_kwh),0) AS total_energy,
			COUNT(*) AS samples
		 FROM readings WHERE timestamp >= NOW() - INTERVAL '%d days'`, days))
	if err != nil {
		return nil, err
	}
	out.Days = days
	return &out, nil
}

// PeakUsage returns the heaviest hours of the window, by energy consumed.
func (r *Repos) PeakUsage(days, limit int) ([]domain.PeakUsage, error) {
	var out []domain.PeakUsage
	err := r.db.Select(&out, fmt.Sprintf(
		`SELECT date_trunc('hour', timestamp) AS hour,
			MAX(energy_kwh) - MIN(energy_kwh) AS energy_kwh,
			AVG(power_watts) AS avg_power
		 FROM readings WHERE timestamp >= NOW() - INTERVAL '%d days'
		 GROUP BY 1 ORDER BY energy_kwh DESC LIMIT $1`, days), limit)
	return out, err
}

func (r *Repos) LoadPattern(days int) ([]domain.LoadPattern, error) {
	var out []domain.LoadPattern
	err := r.db.Select(&out, fmt.Sprintf(
		`SELECT EXTRACT(HOUR FROM timestamp)::int AS hour_of_day,
			AVG(power_watts) AS avg_power,
			MAX(power_watts) AS max_power
		 FROM readings WHERE timestamp >= NOW() - INTERVAL '%d days'
		 GROUP BY 1 ORDER BY 1`, days))
	return out, err
}

func (r *Repos) PowerFactorSummary(days int) (*domain.PowerFactorSummary, error) {
	var out domain.PowerFactorSummary
	err := r.db.Get(&out, fmt.Sprintf(
		`SELECT
			COALESCE(AVG(power_factor),0) AS average,
			COALESCE(MIN(power_factor),0) AS minimum,
			COUNT(*) FILTER (WHERE power_factor < 0.85) AS below_good,
			COUNT(*) AS samples
		 FROM readings WHERE timestamp >= NOW() - INTERVAL '%d days'`, days))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// EnergyBuckets groups the full history by the given granularity
// (hour, day or month).
func (r *Repos) EnergyBuckets(granularity string) ([]domain.EnergyBucket, error) {
	switch granularity {
	case "hour", "day", "month":
	default:
		return nil, fmt.Errorf("unsupported granularity %q", granularity)
	}
	var out []domain.EnergyBucket
	err := r.db.Select(&out, fmt.Sprintf(
		`SELECT date_trunc('%s', timestamp) AS period,
			MAX(energy_kwh) - MIN(energy_kwh) AS energy_kwh,
			AVG(power_watts) AS avg_power,
			MAX(power_watts) AS peak_power
		 FROM readings GROUP BY 1 ORDER BY 1`, granularity))
	return out, err
}

func (r *Repos) InsertAlert(a *domain.Alert) error {
	_, err := r.db.Exec(
		`INSERT INTO alerts(id, type, severity, message, value, threshold, date, is_read)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.Type, a.Severity, a.Message, a.Value, a.Threshold, a.Date, a.IsRead)
	return err
}

func (r *Repos) ListAlerts(limit int) ([]domain.Alert, error) {
	var out []domain.Alert
	err := r.db.Select(&out,
		`SELECT id, type, severity, message, value, threshold, date, is_read
		 FROM alerts ORDER BY date DESC LIMIT $1`, limit)
	return out, err
}

func (r *Repos) AlertSummary() (*domain.AlertSummary, error) {
	var out domain.AlertSummary
	err := r.db.Get(&out,
		`SELECT COUNT(*) AS total,
			COUNT(*) FILTER (WHERE severity = 'critical') AS critical,
			COUNT(*) FILTER (WHERE severity = 'warning') AS warning,
			COUNT(*) FILTER (WHERE severity = 'info') AS info,
			COUNT(*) FILTER (WHERE NOT is_read) AS unread
		 FROM alerts`)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repos) MonthlyReports() ([]domain.MonthlyReport, error) {
	var out []domain.MonthlyReport
	err := r.db.Select(&out,
		`WITH daily AS (
			SELECT date_trunc('day', timestamp) AS day,
				MAX(energy_kwh) - MIN(energy_kwh) AS energy
			FROM readings GROUP BY 1
		)
		SELECT EXTRACT(MONTH FROM day)::int AS month,
			EXTRACT(YEAR FROM day)::int AS year,
			SUM(energy) AS total_energy,
			AVG(energy) AS avg_daily_energy,
			(ARRAY_AGG(day ORDER BY energy DESC))[1] AS peak_date
		FROM daily GROUP BY 1, 2 ORDER BY year, month`)
	return out, err
}

func (r *Repos) CurrentMonthReport() (*domain.MonthlyReport, error) {
	var out domain.MonthlyReport
	err := r.db.Get(&out,
		`WITH daily AS (
			SELECT date_trunc('day', timestamp) AS day,
				MAX(energy_kwh) - MIN(energy_kwh) AS energy
			FROM readings
			WHERE date_trunc('month', timestamp) = date_trunc('month', NOW())
			GROUP BY 1
		)
		SELECT COALESCE(EXTRACT(MONTH FROM NOW())::int, 0) AS month,
			COALESCE(EXTRACT(YEAR FROM NOW())::int, 0) AS year,
			COALESCE(SUM(energy),0) AS total_energy,
			COALESCE(AVG(energy),0) AS avg_daily_energy,
			COALESCE((ARRAY_AGG(day ORDER BY energy DESC))[1], NOW()) AS peak_date
		FROM daily`)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// HourlyEnergy is the energy consumed over the last hour, used by alert
// evaluation on ingest.
func (r *Repos) HourlyEnergy() (float64, error) {
	var kwh float64
	err := r.db.Get(&kwh,
		`SELECT COALESCE(MAX(energy_kwh) - MIN(energy_kwh), 0)
		 FROM readings WHERE timestamp >= NOW() - INTERVAL '1 hour'`)
	return kwh, err
}
