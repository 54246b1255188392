package chart

import (
	"encoding/json"
	"time"

	"github.com/HugoHonorez/sensora/internal/telemetry"
)

// ID identifies one chart.
type ID string

// Dashboard charts.
const (
	TemperatureChart ID = "temperature"
	HumidityChart    ID = "humidity"
	PressureChart    ID = "pressure"
	LightChart       ID = "light"
	AirQualityChart  ID = "airquality"
)

// Sample is one (x, y) pair of a series. An invalid sample has no y value.
type Sample struct {
	X     time.Time
	Y     float64
	Valid bool
}

type wireSample struct {
	X *time.Time `json:"x"`
	Y *float64   `json:"y"`
}

// MarshalJSON emits {"x": RFC3339|null, "y": number|null}, the shape
// Chart.js reads. A zero time is written as null.
func (s Sample) MarshalJSON() ([]byte, error) {
	var w wireSample
	if !s.X.IsZero() {
		x := s.X
		w.X = &x
	}
	if s.Valid {
		y := s.Y
		w.Y = &y
	}
	return json.Marshal(w)
}

// UnmarshalJSON reverses MarshalJSON.
func (s *Sample) UnmarshalJSON(data []byte) error {
	var w wireSample
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	s.X = time.Time{}
	if w.X != nil {
		s.X = *w.X
	}
	s.Valid = w.Y != nil
	s.Y = 0
	if w.Y != nil {
		s.Y = *w.Y
	}
	return nil
}

// Dataset is one series plus its static styling.
type Dataset struct {
	Label           string   `json:"label"`
	BorderColor     string   `json:"borderColor"`
	BackgroundColor string   `json:"backgroundColor"`
	Tension         float64  `json:"tension"`
	PointRadius     int      `json:"pointRadius"`
	Data            []Sample `json:"data"`
}

// Chart is a time-scaled line chart.
type Chart struct {
	ID       ID        `json:"id"`
	XLabel   string    `json:"xLabel"`
	YLabel   string    `json:"yLabel"`
	Datasets []Dataset `json:"datasets"`
}

// Snapshot is an immutable copy of every chart at one revision.
type Snapshot struct {
	Revision uint64  `json:"revision"`
	Charts   []Chart `json:"charts"`
}

// Chart returns the chart with the given ID.
func (s Snapshot) Chart(id ID) (Chart, bool) {
	for _, c := range s.Charts {
		if c.ID == id {
			return c, true
		}
	}
	return Chart{}, false
}

// Column returns the series a field is routed to, or nil for an
// unrouted field. The slice is shared with the snapshot.
func (s Snapshot) Column(f telemetry.Field) []Sample {
	slot, ok := Route(f)
	if !ok {
		return nil
	}
	c, ok := s.Chart(slot.Chart)
	if !ok || slot.Index >= len(c.Datasets) {
		return nil
	}
	return c.Datasets[slot.Index].Data
}

// BulkResult reports how many points of a bulk were routed or dropped.
type BulkResult struct {
	Routed   int    `json:"routed"`
	Dropped  int    `json:"dropped"`
	Revision uint64 `json:"revision"`
}
