package projection

import (
	"testing"
	"time"

	"envmonitor/internal/types"
)

var epoch = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func sample(id int64, sec int, temp, hum float64) types.Reading {
	return types.Reading{
		ID:        id,
		Timestamp: epoch.Add(time.Duration(sec) * time.Second),
		ReadingInput: types.ReadingInput{
			Temperature:    temp,
			Humidity:       hum,
			SoundIntensity: 45,
			RainIntensity:  2.5,
			CO:             1.1,
			CO2:            410,
			Smoke:          0.3,
			NH3:            12,
			LPG:            0.7,
			Benzene:        0.05,
			Latitude:       1.3521,
			Longitude:      103.8198,
		},
	}
}

func window3() []types.Reading {
	return []types.Reading{
		sample(1, 0, 21.5, 55),
		sample(2, 5, 22.25, 56),
		sample(3, 10, 23, 57.5),
	}
}

func TestSeriesFor_CoversWholeWindowInOrder(t *testing.T) {
	rs := window3()
	series, err := SeriesFor(rs, types.FieldTemperature, types.FieldHumidity)
	if err != nil {
		t.Fatalf("SeriesFor: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("len(series) = %d, want 2", len(series))
	}

	temp := series[0]
	if temp.Field != types.FieldTemperature || temp.Unit != "°C" {
		t.Errorf("series[0] = %s %s", temp.Field, temp.Unit)
	}
	if len(temp.Points) != len(rs) {
		t.Fatalf("len(points) = %d, want %d", len(temp.Points), len(rs))
	}
	for i, p := range temp.Points {
		if !p.Time.Equal(rs[i].Timestamp) {
			t.Errorf("points[%d].Time = %v, want %v", i, p.Time, rs[i].Timestamp)
		}
		if p.Value != rs[i].Temperature {
			t.Errorf("points[%d].Value = %v, want %v", i, p.Value, rs[i].Temperature)
		}
	}
	if series[1].Points[2].Value != 57.5 {
		t.Errorf("humidity[2] = %v, want 57.5", series[1].Points[2].Value)
	}
}

func TestSeriesFor_EmptyWindow(t *testing.T) {
	series, err := SeriesFor(nil, types.FieldCO)
	if err != nil {
		t.Fatalf("SeriesFor: %v", err)
	}
	if len(series) != 1 || series[0].Points == nil || len(series[0].Points) != 0 {
		t.Errorf("series = %+v, want one empty non-nil series", series)
	}
}

func TestSeriesFor_UnknownField(t *testing.T) {
	_, err := SeriesFor(window3(), types.Field("pressure"))
	if types.CodeOf(err) != types.ErrCodeValidationInvalidField {
		t.Errorf("code = %v, want %v", types.CodeOf(err), types.ErrCodeValidationInvalidField)
	}
}

func TestChartFor_Groups(t *testing.T) {
	rs := window3()

	tests := []struct {
		group  ChartGroup
		title  string
		labels []string
		colors []string
	}{
		{
			group:  ChartEnvironment,
			title:  "Temperature & Humidity",
			labels: []string{"Temperature (°C)", "Humidity (%)"},
			colors: []string{"rgb(255, 99, 132)", "rgb(53, 162, 235)"},
		},
		{
			group:  ChartGases,
			title:  "Gas Levels",
			labels: []string{"CO (ppm)", "CO2 (ppm)", "NH3 (ppm)"},
			colors: []string{"rgb(255, 159, 64)", "rgb(75, 192, 192)", "rgb(153, 102, 255)"},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.group), func(t *testing.T) {
			c, err := ChartFor(rs, tt.group)
			if err != nil {
				t.Fatalf("ChartFor: %v", err)
			}
			if c.Title != tt.title {
				t.Errorf("Title = %q, want %q", c.Title, tt.title)
			}
			if len(c.Labels) != len(rs) {
				t.Errorf("len(Labels) = %d, want %d", len(c.Labels), len(rs))
			}
			if len(c.Datasets) != len(tt.labels) {
				t.Fatalf("len(Datasets) = %d, want %d", len(c.Datasets), len(tt.labels))
			}
			for i, ds := range c.Datasets {
				if ds.Label != tt.labels[i] || ds.BorderColor != tt.colors[i] {
					t.Errorf("dataset[%d] = %q %q", i, ds.Label, ds.BorderColor)
				}
				if ds.Tension != 0.1 {
					t.Errorf("dataset[%d].Tension = %v", i, ds.Tension)
				}
				if len(ds.Data) != len(rs) {
					t.Errorf("dataset[%d] has %d points", i, len(ds.Data))
				}
			}
		})
	}
}

func TestChartFor_ValuesParallelLabels(t *testing.T) {
	rs := window3()
	c, err := ChartFor(rs, ChartEnvironment)
	if err != nil {
		t.Fatalf("ChartFor: %v", err)
	}
	for i := range rs {
		if !c.Labels[i].Equal(rs[i].Timestamp) {
			t.Errorf("Labels[%d] = %v", i, c.Labels[i])
		}
		if c.Datasets[0].Data[i] != rs[i].Temperature {
			t.Errorf("temperature[%d] = %v", i, c.Datasets[0].Data[i])
		}
	}
}

func TestChartFor_UnknownGroup(t *testing.T) {
	_, err := ChartFor(window3(), ChartGroup("weather"))
	if types.CodeOf(err) != types.ErrCodeNotFoundChart {
		t.Errorf("code = %v, want %v", types.CodeOf(err), types.ErrCodeNotFoundChart)
	}
}

func TestLatest(t *testing.T) {
	if _, ok := Latest(nil); ok {
		t.Error("Latest(empty) reported data")
	}

	rs := window3()
	v, ok := Latest(rs)
	if !ok {
		t.Fatal("Latest reported no data")
	}
	if v.ID != 3 || !v.Timestamp.Equal(rs[2].Timestamp) {
		t.Errorf("Latest = id %d at %v", v.ID, v.Timestamp)
	}
	if v.Latitude != 1.3521 || v.Longitude != 103.8198 {
		t.Errorf("coords = %v,%v", v.Latitude, v.Longitude)
	}
	if len(v.Measurements) != len(types.MeasurementFields) {
		t.Fatalf("len(Measurements) = %d", len(v.Measurements))
	}
	for i, m := range v.Measurements {
		if m.Field != types.MeasurementFields[i] {
			t.Errorf("Measurements[%d].Field = %s", i, m.Field)
		}
		want, _ := rs[2].Value(m.Field)
		if m.Value != want {
			t.Errorf("%s = %v, want %v", m.Field, m.Value, want)
		}
	}
	if v.Measurements[3].Unit != "mm/h" {
		t.Errorf("rainIntensity unit = %q", v.Measurements[3].Unit)
	}
}

func TestMarker(t *testing.T) {
	if _, ok := Marker(nil); ok {
		t.Error("Marker(empty) reported data")
	}

	rs := window3()
	rs[2].Latitude = 40.7
	rs[2].Longitude = -74
	m, ok := Marker(rs)
	if !ok {
		t.Fatal("Marker reported no data")
	}
	want := MapMarker{Latitude: 40.7, Longitude: -74, Label: "Sensor Location", Zoom: 13}
	if m != want {
		t.Errorf("Marker = %+v, want %+v", m, want)
	}
}

func TestDisplayParams(t *testing.T) {
	tests := []struct {
		width  int
		mobile bool
		aspect float64
		height int
		step   int
		ticks  int
		font   int
		legend int
		box    int
		titles bool
	}{
		{width: 0, mobile: true, aspect: 1.2, height: 250, step: 2, ticks: 4, font: 10, legend: 10, box: 20},
		{width: 375, mobile: true, aspect: 1.2, height: 250, step: 2, ticks: 4, font: 10, legend: 10, box: 20},
		{width: 767, mobile: true, aspect: 1.2, height: 250, step: 2, ticks: 4, font: 10, legend: 10, box: 20},
		{width: 768, mobile: false, aspect: 2, height: 300, step: 1, ticks: 8, font: 12, legend: 20, box: 30, titles: true},
		{width: 1920, mobile: false, aspect: 2, height: 300, step: 1, ticks: 8, font: 12, legend: 20, box: 30, titles: true},
	}

	for _, tt := range tests {
		d := DisplayParams(tt.width)
		if d.Mobile != tt.mobile || d.AspectRatio != tt.aspect || d.ChartHeight != tt.height {
			t.Errorf("width %d: layout = %+v", tt.width, d)
		}
		if d.XStepSize != tt.step || d.XMaxTicks != tt.ticks || d.YMaxTicks != tt.ticks {
			t.Errorf("width %d: ticks = step %d x %d y %d", tt.width, d.XStepSize, d.XMaxTicks, d.YMaxTicks)
		}
		if d.FontSize != tt.font || d.LegendPadding != tt.legend || d.LegendBoxWidth != tt.box {
			t.Errorf("width %d: font %d legend %d box %d", tt.width, d.FontSize, d.LegendPadding, d.LegendBoxWidth)
		}
		if d.ShowAxisTitles != tt.titles {
			t.Errorf("width %d: ShowAxisTitles = %v", tt.width, d.ShowAxisTitles)
		}
		if d.YTickPadding != 10 || d.TimeUnit != "minute" || !d.BeginAtZero {
			t.Errorf("width %d: constants = %+v", tt.width, d)
		}
	}
}

func TestTimeAxis(t *testing.T) {
	now := epoch.Add(10 * time.Minute)
	a := TimeAxis(now, 5*time.Minute)
	if !a.Max.Equal(now) || !a.Min.Equal(epoch.Add(5*time.Minute)) {
		t.Errorf("TimeAxis = %+v", a)
	}
}
