package external

import (
	"context"
	"fmt"
	"strconv"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"envmonitor/internal/types"
)

// influxMeasurement is the InfluxDB measurement every reading is written to.
const influxMeasurement = "environmental_data"

// pointWriter is satisfied by influxdb2 api.WriteAPIBlocking.
type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// InfluxMirror copies persisted readings into an InfluxDB bucket as one
// point per reading, fields keyed by their JSON names.
type InfluxMirror struct {
	writer pointWriter
	close  func()
}

// NewInfluxMirror connects to url with token and writes to org/bucket.
func NewInfluxMirror(url, token, org, bucket string) *InfluxMirror {
	client := influxdb2.NewClient(url, token)
	return &InfluxMirror{
		writer: client.WriteAPIBlocking(org, bucket),
		close:  client.Close,
	}
}

// MirrorReading writes r at its persisted timestamp, tagged with its
// coordinates.
func (m *InfluxMirror) MirrorReading(ctx context.Context, r types.Reading) error {
	fields := make(map[string]any, len(types.MeasurementFields)+1)
	for _, f := range types.MeasurementFields {
		v, _ := r.Value(f)
		fields[string(f)] = v
	}
	fields["id"] = r.ID

	tags := map[string]string{
		string(types.FieldLatitude):  strconv.FormatFloat(r.Latitude, 'f', -1, 64),
		string(types.FieldLongitude): strconv.FormatFloat(r.Longitude, 'f', -1, 64),
	}

	p := influxdb2.NewPoint(influxMeasurement, tags, fields, r.Timestamp)
	if err := m.writer.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("error writing reading %d to InfluxDB: %w", r.ID, err)
	}
	return nil
}

// Close releases the underlying client.
func (m *InfluxMirror) Close() {
	if m.close != nil {
		m.close()
	}
}
