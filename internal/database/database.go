package database

import (
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"
)

func Connect() (*sqlx.DB, error) {
	dsn := viper.GetString("DB_DSN")
	return sqlx.Connect("pgx", dsn)
}

// EnsureSchema creates the collector tables when they do not exist yet,
// so a fresh database works without a separate migration step.
func EnsureSchema(db *sqlx.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS readings (
			id BIGSERIAL PRIMARY KEY,
			voltage DOUBLE PRECISION NOT NULL,
			current DOUBLE PRECISION NOT NULL,
			power_watts DOUBLE PRECISION NOT NULL,
			energy_kwh DOUBLE PRECISION NOT NULL,
			frequency DOUBLE PRECISION NOT NULL,
			power_factor DOUBLE PRECISION NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_timestamp ON readings (timestamp DESC)`,
		`CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			severity TEXT NOT NULL,
			message TEXT NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			threshold DOUBLE PRECISION NOT NULL,
			date TIMESTAMPTZ NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_date ON alerts (date DESC)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
