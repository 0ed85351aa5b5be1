package projection

import (
	"time"

	"envmonitor/internal/types"
)

// Measurement is a single labelled value of the latest reading.
type Measurement struct {
	Field types.Field `json:"field"`
	Value float64     `json:"value"`
	Unit  string      `json:"unit"`
}

// LatestView exposes the newest reading field by field.
type LatestView struct {
	ID           int64         `json:"id"`
	Timestamp    time.Time     `json:"timestamp"`
	Measurements []Measurement `json:"measurements"`
	Latitude     float64       `json:"latitude"`
	Longitude    float64       `json:"longitude"`
	Reading      types.Reading `json:"reading"`
}

// Latest returns the last reading of the window. ok is false when the
// window is empty.
func Latest(readings []types.Reading) (view LatestView, ok bool) {
	if len(readings) == 0 {
		return LatestView{}, false
	}
	r := readings[len(readings)-1]

	ms := make([]Measurement, 0, len(types.MeasurementFields))
	for _, f := range types.MeasurementFields {
		v, _ := r.Value(f)
		ms = append(ms, Measurement{Field: f, Value: v, Unit: Units[f]})
	}

	return LatestView{
		ID:           r.ID,
		Timestamp:    r.Timestamp,
		Measurements: ms,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		Reading:      r,
	}, true
}

// MarkerLabel is the popup text of the sensor marker.
const MarkerLabel = "Sensor Location"

// markerZoom is the initial map zoom around the marker.
const markerZoom = 13

// MapMarker is the coordinate pair a map consumer centers on.
type MapMarker struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label"`
	Zoom      int     `json:"zoom"`
}

// Marker places the sensor at the latest reading's coordinates. ok is false
// when the window is empty.
func Marker(readings []types.Reading) (MapMarker, bool) {
	if len(readings) == 0 {
		return MapMarker{}, false
	}
	r := readings[len(readings)-1]
	return MapMarker{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Label:     MarkerLabel,
		Zoom:      markerZoom,
	}, true
}
