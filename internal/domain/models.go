package domain

import (
	"encoding/json"
	"time"
)

// Envelope is the response wrapper every /power/* endpoint uses.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Count   *int            `json:"count,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type PowerReading struct {
	ID          int64     `db:"id" json:"id"`
	Voltage     float64   `db:"voltage" json:"voltage"`
	Current     float64   `db:"current" json:"current"`
	PowerWatts  float64   `db:"power_watts" json:"power_watts"`
	EnergyKWh   float64   `db:"energy_kwh" json:"energy_kwh"`
	Frequency   float64   `db:"frequency" json:"frequency"`
	PowerFactor float64   `db:"power_factor" json:"power_factor"`
	Timestamp   time.Time `db:"timestamp" json:"timestamp"`
}

type Alert struct {
	ID        string    `db:"id" json:"id"`
	Type      string    `db:"type" json:"type"`
	Severity  string    `db:"severity" json:"severity"` // info|warning|critical
	Message   string    `db:"message" json:"message"`
	Value     float64   `db:"value" json:"value"`
	Threshold float64   `db:"threshold" json:"threshold"`
	Date      time.Time `db:"date" json:"date"`
	IsRead    bool      `db:"is_read" json:"isRead"`
}

type AlertSummary struct {
	Total    int `db:"total" json:"total"`
	Critical int `db:"critical" json:"critical"`
	Warning  int `db:"warning" json:"warning"`
	Info     int `db:"info" json:"info"`
	Unread   int `db:"unread" json:"unread"`
}

type MonthlyReport struct {
	Month          int       `db:"month" json:"month"`
	Year           int       `db:"year" json:"year"`
	TotalEnergy    float64   `db:"total_energy" json:"totalEnergy"`
	AvgDailyEnergy float64   `db:"avg_daily_energy" json:"avgDailyEnergy"`
	PeakDate       time.Time `db:"peak_date" json:"peakDate"`
	CostLocal      float64   `json:"costLocal"`
	CostUSD        float64   `json:"costUsd"`
}

// Statistics aggregates one metric over a day window.
type Statistics struct {
	Days        int     `json:"days"`
	MinVoltage  float64 `db:"min_voltage" json:"min_voltage"`
	AvgVoltage  float64 `db:"avg_voltage" json:"avg_voltage"`
	MaxVoltage  float64 `db:"max_voltage" json:"max_voltage"`
	MinCurrent  float64 `db:"min_current" json:"min_current"`
	AvgCurrent  float64 `db:"avg_current" json:"avg_current"`
	MaxCurrent  float64 `db:"max_current" json:"max_current"`
	MinPower    float64 `db:"min_power" json:"min_power"`
	AvgPower    float64 `db:"avg_power" json:"avg_power"`
	MaxPower    float64 `db:"max_power" json:"max_power"`
	TotalEnergy float64 `db:"total_energy" json:"total_energy"`
	Samples     int     `db:"samples" json:"samples"`
}

type PeakUsage struct {
	Hour      time.Time `db:"hour" json:"hour"`
	EnergyKWh float64   `db:"energy_kwh" json:"energy_kwh"`
	AvgPower  float64   `db:"avg_power" json:"avg_power"`
}

// LoadPattern is the average load for one hour-of-day bucket.
type LoadPattern struct {
	HourOfDay int     `db:"hour_of_day" json:"hour_of_day"`
	AvgPower  float64 `db:"avg_power" json:"avg_power"`
	MaxPower  float64 `db:"max_power" json:"max_power"`
}

type PowerFactorSummary struct {
	Average   float64 `db:"average" json:"average"`
	Minimum   float64 `db:"minimum" json:"minimum"`
	BelowGood int     `db:"below_good" json:"below_good"` // samples under 0.85
	Samples   int     `db:"samples" json:"samples"`
}

// EnergyBucket is one row of the hourly/daily/monthly history endpoints.
type EnergyBucket struct {
	Period    time.Time `db:"period" json:"period"`
	EnergyKWh float64   `db:"energy_kwh" json:"energy_kwh"`
	AvgPower  float64   `db:"avg_power" json:"avg_power"`
	PeakPower float64   `db:"peak_power" json:"peak_power"`
}
