// Package generator synthesizes plausible environmental readings in place of
// real sensor hardware.
package generator

import (
	"math"
	"math/rand/v2"
	"sync"

	"envmonitor/internal/types"
)

// Range is a closed sampling interval for one measurement.
type Range struct {
	Min float64
	Max float64
}

// Ranges holds the sampling interval per measurement, keyed by field.
var Ranges = map[types.Field]Range{
	types.FieldTemperature:    {20, 30},   // °C
	types.FieldHumidity:       {40, 70},   // %
	types.FieldSoundIntensity: {30, 70},   // dB
	types.FieldRainIntensity:  {0, 10},    // mm/h
	types.FieldCO:             {0.5, 5},   // ppm
	types.FieldCO2:            {350, 500}, // ppm
	types.FieldSmoke:          {0, 5},     // ppm
	types.FieldNH3:            {0, 25},    // ppm
	types.FieldLPG:            {0, 2},     // ppm
	types.FieldBenzene:        {0, 0.1},   // ppm
}

// Generator produces one reading per call. Latitude and Longitude are fixed.
// It is safe for concurrent use.
type Generator struct {
	Latitude  float64
	Longitude float64

	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a generator seeded from the runtime's random source.
func New(latitude, longitude float64) *Generator {
	return NewWithSource(latitude, longitude, rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NewWithSource returns a generator drawing from src, for deterministic tests.
func NewWithSource(latitude, longitude float64, src rand.Source) *Generator {
	return &Generator{
		Latitude:  latitude,
		Longitude: longitude,
		rng:       rand.New(src),
	}
}

// Generate samples every measurement independently from its range, rounded
// to two decimals.
func (g *Generator) Generate() types.ReadingInput {
	g.mu.Lock()
	defer g.mu.Unlock()

	return types.ReadingInput{
		Temperature:    g.sample(types.FieldTemperature),
		Humidity:       g.sample(types.FieldHumidity),
		SoundIntensity: g.sample(types.FieldSoundIntensity),
		RainIntensity:  g.sample(types.FieldRainIntensity),
		CO:             g.sample(types.FieldCO),
		CO2:            g.sample(types.FieldCO2),
		Smoke:          g.sample(types.FieldSmoke),
		NH3:            g.sample(types.FieldNH3),
		LPG:            g.sample(types.FieldLPG),
		Benzene:        g.sample(types.FieldBenzene),
		Latitude:       g.Latitude,
		Longitude:      g.Longitude,
	}
}

func (g *Generator) sample(f types.Field) float64 {
	r := Ranges[f]
	return round2(r.Min + g.rng.Float64()*(r.Max-r.Min))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
