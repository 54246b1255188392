package telemetry

import (
	"encoding/json"
	"fmt"
	"time"
)

// Reading is one realtime sample published on the data topic:
//
//	{"timestamp": 1714564800, "temperature": 21.4, "humidity": 40.2,
//	 "heatindex": 21.0, "pressure": 1012.3, "light": 512, "airquality": 230}
//
// Every field is required.
type Reading struct {
	Timestamp   time.Time
	Temperature float64
	HeatIndex   float64
	Humidity    float64
	Pressure    float64
	Light       float64
	AirQuality  float64
}

type wireReading struct {
	Timestamp   *float64 `json:"timestamp"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	HeatIndex   *float64 `json:"heatindex"`
	Pressure    *float64 `json:"pressure"`
	Light       *float64 `json:"light"`
	AirQuality  *float64 `json:"airquality"`
}

// DecodeReading parses a realtime payload.
//
// Returns ErrMalformedReading for invalid JSON and ErrMissingField when any
// of the seven keys is absent or null.
func DecodeReading(payload []byte) (Reading, error) {
	var w wireReading
	if err := json.Unmarshal(payload, &w); err != nil {
		return Reading{}, fmt.Errorf("%w: %w", ErrMalformedReading, err)
	}

	required := []struct {
		name string
		v    *float64
	}{
		{"timestamp", w.Timestamp},
		{string(Temperature), w.Temperature},
		{string(Humidity), w.Humidity},
		{string(HeatIndex), w.HeatIndex},
		{string(Pressure), w.Pressure},
		{string(Light), w.Light},
		{string(AirQuality), w.AirQuality},
	}
	for _, r := range required {
		if r.v == nil {
			return Reading{}, fmt.Errorf("%w: %s", ErrMissingField, r.name)
		}
	}

	return Reading{
		Timestamp:   UnixSeconds(*w.Timestamp),
		Temperature: *w.Temperature,
		HeatIndex:   *w.HeatIndex,
		Humidity:    *w.Humidity,
		Pressure:    *w.Pressure,
		Light:       *w.Light,
		AirQuality:  *w.AirQuality,
	}, nil
}

// Value returns the reading for f. Unknown fields return false.
func (r Reading) Value(f Field) (float64, bool) {
	switch f {
	case Temperature:
		return r.Temperature, true
	case HeatIndex:
		return r.HeatIndex, true
	case Humidity:
		return r.Humidity, true
	case Pressure:
		return r.Pressure, true
	case Light:
		return r.Light, true
	case AirQuality:
		return r.AirQuality, true
	default:
		return 0, false
	}
}

// Points expands the reading into one valid Point per field, in canonical order.
func (r Reading) Points() []Point {
	points := make([]Point, 0, len(allFields))
	for _, f := range allFields {
		v, _ := r.Value(f)
		points = append(points, Point{Field: f, Time: r.Timestamp, Value: v, Valid: true})
	}
	return points
}
