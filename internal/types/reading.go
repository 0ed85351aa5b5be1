// Package types holds the domain model shared by the ingestion API and the
// dashboard service: the Reading record, its measurement fields, the error
// taxonomy, and the store contracts implemented by internal/db.
package types

import (
	"context"
	"time"
)

// Field names a single numeric attribute of a Reading. The string value is the
// JSON key used on the wire and in snapshots.
type Field string

const (
	FieldTemperature    Field = "temperature"
	FieldHumidity       Field = "humidity"
	FieldSoundIntensity Field = "soundIntensity"
	FieldRainIntensity  Field = "rainIntensity"
	FieldCO             Field = "co"
	FieldCO2            Field = "co2"
	FieldSmoke          Field = "smoke"
	FieldNH3            Field = "nh3"
	FieldLPG            Field = "lpg"
	FieldBenzene        Field = "benzene"
	FieldLatitude       Field = "latitude"
	FieldLongitude      Field = "longitude"
)

// MeasurementFields lists the environmental measurements in display order.
// Coordinates are not measurements and are excluded.
var MeasurementFields = []Field{
	FieldTemperature,
	FieldHumidity,
	FieldSoundIntensity,
	FieldRainIntensity,
	FieldCO,
	FieldCO2,
	FieldSmoke,
	FieldNH3,
	FieldLPG,
	FieldBenzene,
}

// ReadingInput is a reading before persistence: every measurement and the
// coordinate pair, but no identity or timestamp.
type ReadingInput struct {
	Temperature    float64 `json:"temperature" validate:"finite"`
	Humidity       float64 `json:"humidity" validate:"finite"`
	SoundIntensity float64 `json:"soundIntensity" validate:"finite"`
	RainIntensity  float64 `json:"rainIntensity" validate:"finite"`
	CO             float64 `json:"co" validate:"finite"`
	CO2            float64 `json:"co2" validate:"finite"`
	Smoke          float64 `json:"smoke" validate:"finite"`
	NH3            float64 `json:"nh3" validate:"finite"`
	LPG            float64 `json:"lpg" validate:"finite"`
	Benzene        float64 `json:"benzene" validate:"finite"`
	Latitude       float64 `json:"latitude" validate:"finite,gte=-90,lte=90"`
	Longitude      float64 `json:"longitude" validate:"finite,gte=-180,lte=180"`
}

// Reading is one persisted environmental measurement. ID and Timestamp are
// assigned by the store; the record is immutable after creation.
type Reading struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	ReadingInput
}

// Value returns the numeric value of the named field. The boolean is false for
// unknown field names.
func (r ReadingInput) Value(f Field) (float64, bool) {
	switch f {
	case FieldTemperature:
		return r.Temperature, true
	case FieldHumidity:
		return r.Humidity, true
	case FieldSoundIntensity:
		return r.SoundIntensity, true
	case FieldRainIntensity:
		return r.RainIntensity, true
	case FieldCO:
		return r.CO, true
	case FieldCO2:
		return r.CO2, true
	case FieldSmoke:
		return r.Smoke, true
	case FieldNH3:
		return r.NH3, true
	case FieldLPG:
		return r.LPG, true
	case FieldBenzene:
		return r.Benzene, true
	case FieldLatitude:
		return r.Latitude, true
	case FieldLongitude:
		return r.Longitude, true
	default:
		return 0, false
	}
}

// ParseField validates a field name supplied by a caller (e.g. a query string).
func ParseField(s string) (Field, bool) {
	f := Field(s)
	if _, ok := (ReadingInput{}).Value(f); !ok {
		return "", false
	}
	return f, true
}

// ReadingStore hands out per-call sessions against the backing store. One
// session corresponds to one ingestion request; it must be released on every
// exit path.
type ReadingStore interface {
	Acquire(ctx context.Context) (StoreSession, error)
}

// StoreSession is a scoped connection to the reading store.
type StoreSession interface {
	// Ping verifies that the store is reachable over this session.
	Ping(ctx context.Context) error
	// CreateReading persists the input and returns the stored record with its
	// assigned ID and Timestamp.
	CreateReading(ctx context.Context, in ReadingInput) (*Reading, error)
	// Release returns the session to its owner. Safe to call once per Acquire.
	Release()
}
