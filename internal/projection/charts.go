package projection

import (
	"fmt"
	"time"

	"envmonitor/internal/types"
)

// ChartGroup names a predefined multi-series chart.
type ChartGroup string

const (
	ChartEnvironment ChartGroup = "environment"
	ChartGases       ChartGroup = "gases"
)

// lineTension is the curve smoothing applied to every dataset.
const lineTension = 0.1

type datasetDef struct {
	field types.Field
	label string
	color string
}

type chartDef struct {
	title    string
	datasets []datasetDef
}

var chartDefs = map[ChartGroup]chartDef{
	ChartEnvironment: {
		title: "Temperature & Humidity",
		datasets: []datasetDef{
			{types.FieldTemperature, "Temperature (°C)", "rgb(255, 99, 132)"},
			{types.FieldHumidity, "Humidity (%)", "rgb(53, 162, 235)"},
		},
	},
	ChartGases: {
		title: "Gas Levels",
		datasets: []datasetDef{
			{types.FieldCO, "CO (ppm)", "rgb(255, 159, 64)"},
			{types.FieldCO2, "CO2 (ppm)", "rgb(75, 192, 192)"},
			{types.FieldNH3, "NH3 (ppm)", "rgb(153, 102, 255)"},
		},
	},
}

// ChartGroups lists the available groups in display order.
func ChartGroups() []ChartGroup {
	return []ChartGroup{ChartEnvironment, ChartGases}
}

// Dataset is one labelled line of a chart. Data is parallel to Chart.Labels.
type Dataset struct {
	Field       types.Field `json:"field"`
	Label       string      `json:"label"`
	BorderColor string      `json:"borderColor"`
	Tension     float64     `json:"tension"`
	Data        []float64   `json:"data"`
}

// Chart is a multi-series chart in the shape line-chart consumers expect:
// shared timestamp labels plus one dataset per field.
type Chart struct {
	Group    ChartGroup  `json:"group"`
	Title    string      `json:"title"`
	Labels   []time.Time `json:"labels"`
	Datasets []Dataset   `json:"datasets"`
}

// ChartFor builds the named chart over readings. An unknown group is a
// not-found error.
func ChartFor(readings []types.Reading, group ChartGroup) (Chart, error) {
	def, ok := chartDefs[group]
	if !ok {
		return Chart{}, types.NewAppError(
			types.ErrCodeNotFoundChart,
			fmt.Sprintf("unknown chart group %q", group),
			nil,
		)
	}

	labels := make([]time.Time, len(readings))
	for i, r := range readings {
		labels[i] = r.Timestamp
	}

	datasets := make([]Dataset, 0, len(def.datasets))
	for _, ds := range def.datasets {
		data := make([]float64, len(readings))
		for i, r := range readings {
			data[i], _ = r.Value(ds.field)
		}
		datasets = append(datasets, Dataset{
			Field:       ds.field,
			Label:       ds.label,
			BorderColor: ds.color,
			Tension:     lineTension,
			Data:        data,
		})
	}

	return Chart{Group: group, Title: def.title, Labels: labels, Datasets: datasets}, nil
}
