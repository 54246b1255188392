package realtime

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/HugoHonorez/sensora/internal/infrastructure/config"
	"github.com/HugoHonorez/sensora/internal/infrastructure/mqtt"
	"github.com/HugoHonorez/sensora/internal/telemetry"
)

// PowerSensor is a switchable sensor and where its commands go.
type PowerSensor struct {
	Sensor telemetry.Field `json:"sensor"`
	Device string          `json:"device"`
	Topic  string          `json:"topic"`
}

// powerDevices lists the switchable sensors in display order.
var powerDevices = []struct {
	sensor telemetry.Field
	device string
}{
	{telemetry.Temperature, "dht22"},
	{telemetry.Pressure, "bmp280"},
	{telemetry.Light, "ldr"},
	{telemetry.AirQuality, "mq135"},
}

// DefaultThresholds returns the stock threshold per field.
func DefaultThresholds() map[telemetry.Field]float64 {
	return map[telemetry.Field]float64{
		telemetry.Temperature: 30,
		telemetry.Humidity:    43,
		telemetry.HeatIndex:   35,
		telemetry.Pressure:    1000,
		telemetry.Light:       1000,
		telemetry.AirQuality:  1000,
	}
}

// Renderer builds Views from readings. It holds no per-reading state.
type Renderer struct {
	loc        *time.Location
	thresholds map[telemetry.Field]float64
	sensors    []PowerSensor
}

// NewRenderer builds a renderer from the realtime config section.
// Missing thresholds keep their defaults; power topics default to
// sensors/power/{device}.
func NewRenderer(cfg config.RealtimeConfig, loc *time.Location) (*Renderer, error) {
	if loc == nil {
		loc = time.UTC
	}

	thresholds := DefaultThresholds()
	var unknown []string
	for name, v := range cfg.Thresholds {
		f, ok := telemetry.ParseField(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		thresholds[f] = v
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s", ErrUnknownThreshold, strings.Join(unknown, ", "))
	}

	sensors := make([]PowerSensor, 0, len(powerDevices))
	for _, d := range powerDevices {
		topic := cfg.PowerTopics[string(d.sensor)]
		if topic == "" {
			topic = mqtt.Topics{}.SensorPower(d.device)
		}
		sensors = append(sensors, PowerSensor{Sensor: d.sensor, Device: d.device, Topic: topic})
	}

	return &Renderer{loc: loc, thresholds: thresholds, sensors: sensors}, nil
}

// Sensors returns the switchable sensors.
func (r *Renderer) Sensors() []PowerSensor {
	out := make([]PowerSensor, len(r.sensors))
	copy(out, r.sensors)
	return out
}

// Sensor looks up a switchable sensor by name.
func (r *Renderer) Sensor(name string) (PowerSensor, bool) {
	for _, s := range r.sensors {
		if string(s.Sensor) == name {
			return s, true
		}
	}
	return PowerSensor{}, false
}

// Threshold returns the threshold applied to f.
func (r *Renderer) Threshold(f telemetry.Field) float64 {
	return r.thresholds[f]
}

// Render builds the readout for one reading.
func (r *Renderer) Render(reading telemetry.Reading) View {
	v := View{
		Time:      reading.Timestamp,
		Timestamp: reading.Timestamp.In(r.loc).Format(TimestampLayout),
		Boxes:     make([]Box, 0, len(telemetry.Fields())),
		Controls:  make([]PowerControl, 0, len(r.sensors)),
	}

	for _, p := range reading.Points() {
		threshold := r.thresholds[p.Field]
		v.Boxes = append(v.Boxes, Box{
			Field:     p.Field,
			Value:     p.Value,
			Text:      FormatValue(p.Field, p.Value),
			Threshold: threshold,
			Class:     ThresholdClass(p.Value, threshold),
		})
	}

	for _, s := range r.sensors {
		value, _ := reading.Value(s.Sensor)
		label, class := ControlFor(value)
		v.Controls = append(v.Controls, PowerControl{
			Sensor: s.Sensor,
			Device: s.Device,
			Topic:  s.Topic,
			Label:  label,
			Class:  class,
		})
	}

	return v
}
