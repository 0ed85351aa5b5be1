package db

import (
	"context"

	"envmonitor/internal/types"
)

// ReadingRepository persists readings to the environmental_data table.
type ReadingRepository struct {
	db DBTX
}

// NewReadingRepository creates a repository over db.
func NewReadingRepository(db DBTX) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// Create inserts in and returns the stored record. The database assigns id
// and timestamp.
func (r *ReadingRepository) Create(ctx context.Context, in types.ReadingInput) (*types.Reading, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO environmental_data (temperature, humidity, sound_intensity,
		 rain_intensity, co, co2, smoke, nh3, lpg, benzene, latitude, longitude)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, timestamp`,
		in.Temperature,
		in.Humidity,
		in.SoundIntensity,
		in.RainIntensity,
		in.CO,
		in.CO2,
		in.Smoke,
		in.NH3,
		in.LPG,
		in.Benzene,
		in.Latitude,
		in.Longitude,
	)

	reading := &types.Reading{ReadingInput: in}
	if err := row.Scan(&reading.ID, &reading.Timestamp); err != nil {
		return nil, types.NewAppError(types.ErrCodePersistenceFailure, "Failed to create environmental data record", err)
	}
	reading.Timestamp = reading.Timestamp.UTC()
	return reading, nil
}
