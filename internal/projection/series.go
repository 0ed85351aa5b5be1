// Package projection derives chart-ready views from a rolling window
// snapshot. Every function is pure: it reads the readings it is given and
// never touches the window itself.
package projection

import (
	"fmt"
	"time"

	"envmonitor/internal/types"
)

// Point is one (timestamp, value) sample of a series.
type Point struct {
	Time  time.Time `json:"t"`
	Value float64   `json:"v"`
}

// Series is the ordered samples of a single field across the window.
type Series struct {
	Field  types.Field `json:"field"`
	Unit   string      `json:"unit"`
	Points []Point     `json:"points"`
}

// Units maps each field to its display unit.
var Units = map[types.Field]string{
	types.FieldTemperature:    "°C",
	types.FieldHumidity:       "%",
	types.FieldSoundIntensity: "dB",
	types.FieldRainIntensity:  "mm/h",
	types.FieldCO:             "ppm",
	types.FieldCO2:            "ppm",
	types.FieldSmoke:          "ppm",
	types.FieldNH3:            "ppm",
	types.FieldLPG:            "ppm",
	types.FieldBenzene:        "ppm",
	types.FieldLatitude:       "°",
	types.FieldLongitude:      "°",
}

// SeriesFor projects the named fields over every reading, in window order.
// An unknown field is a validation error.
func SeriesFor(readings []types.Reading, fields ...types.Field) ([]Series, error) {
	out := make([]Series, 0, len(fields))
	for _, f := range fields {
		if _, ok := (types.ReadingInput{}).Value(f); !ok {
			return nil, types.NewAppError(
				types.ErrCodeValidationInvalidField,
				fmt.Sprintf("unknown field %q", f),
				nil,
			)
		}

		points := make([]Point, len(readings))
		for i, r := range readings {
			v, _ := r.Value(f)
			points[i] = Point{Time: r.Timestamp, Value: v}
		}
		out = append(out, Series{Field: f, Unit: Units[f], Points: points})
	}
	return out, nil
}

// Axis is the visible time range of a chart.
type Axis struct {
	Min time.Time `json:"min"`
	Max time.Time `json:"max"`
}

// TimeAxis returns [now-horizon, now].
func TimeAxis(now time.Time, horizon time.Duration) Axis {
	return Axis{Min: now.Add(-horizon), Max: now}
}
