package db

import (
	"context"
	"fmt"
)

// schemaStatements creates the environmental_data table. Column names are
// the snake_case forms of the Reading JSON fields.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS environmental_data (
		id              BIGSERIAL PRIMARY KEY,
		timestamp       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		temperature     DOUBLE PRECISION NOT NULL,
		humidity        DOUBLE PRECISION NOT NULL,
		sound_intensity DOUBLE PRECISION NOT NULL,
		rain_intensity  DOUBLE PRECISION NOT NULL,
		co              DOUBLE PRECISION NOT NULL,
		co2             DOUBLE PRECISION NOT NULL,
		smoke           DOUBLE PRECISION NOT NULL,
		nh3             DOUBLE PRECISION NOT NULL,
		lpg             DOUBLE PRECISION NOT NULL,
		benzene         DOUBLE PRECISION NOT NULL,
		latitude        DOUBLE PRECISION NOT NULL,
		longitude       DOUBLE PRECISION NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_environmental_data_timestamp
		ON environmental_data (timestamp)`,
}

// EnsureSchema applies the idempotent DDL. It runs at ingest-api startup
// when DB_AUTO_MIGRATE is enabled.
func EnsureSchema(ctx context.Context, db DBTX) error {
	for i, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
