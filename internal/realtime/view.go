package realtime

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/HugoHonorez/sensora/internal/telemetry"
)

// CSS classes applied by the dashboard.
const (
	ClassExceeded  = "threshold-exceeded"
	ClassNormal    = "normal"
	ClassStatusOn  = "status-on"
	ClassStatusOff = "status-off"
)

// TimestampLayout is the readout timestamp shape, dd/mm/yyyy hh:mm:ss.
const TimestampLayout = "02/01/2006 15:04:05"

// State is a power command payload.
type State string

// Power states.
const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

// ParseState accepts ON or OFF in any case.
func ParseState(s string) (State, error) {
	switch State(strings.ToUpper(strings.TrimSpace(s))) {
	case StateOn:
		return StateOn, nil
	case StateOff:
		return StateOff, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidState, s)
	}
}

// Box is one readout tile.
type Box struct {
	Field     telemetry.Field `json:"field"`
	Value     float64         `json:"value"`
	Text      string          `json:"text"`
	Threshold float64         `json:"threshold"`
	Class     string          `json:"class"`
}

// PowerControl is the ON/OFF button for one switchable sensor. Label is the
// state a press would publish.
type PowerControl struct {
	Sensor telemetry.Field `json:"sensor"`
	Device string          `json:"device"`
	Topic  string          `json:"topic"`
	Label  State           `json:"label"`
	Class  string          `json:"class"`
}

// View is the rendered readout for one reading.
type View struct {
	Time      time.Time      `json:"time"`
	Timestamp string         `json:"timestamp"`
	Boxes     []Box          `json:"boxes"`
	Controls  []PowerControl `json:"controls"`
}

// Box returns the tile for f.
func (v View) Box(f telemetry.Field) (Box, bool) {
	for _, b := range v.Boxes {
		if b.Field == f {
			return b, true
		}
	}
	return Box{}, false
}

// Control returns the power control for sensor.
func (v View) Control(sensor telemetry.Field) (PowerControl, bool) {
	for _, c := range v.Controls {
		if c.Sensor == sensor {
			return c, true
		}
	}
	return PowerControl{}, false
}

// FormatValue renders a reading the way the readout shows it.
// Light and air quality are shown raw.
func FormatValue(f telemetry.Field, v float64) string {
	switch f {
	case telemetry.Temperature, telemetry.HeatIndex:
		return fmt.Sprintf("%.2f °C", v)
	case telemetry.Humidity:
		return fmt.Sprintf("%.2f %%", v)
	case telemetry.Pressure:
		return fmt.Sprintf("%.2f hPa", v)
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

// ThresholdClass returns ClassExceeded when v is strictly above threshold.
func ThresholdClass(v, threshold float64) string {
	if v > threshold {
		return ClassExceeded
	}
	return ClassNormal
}

// ControlFor returns the label and class of a control given the sensor value.
func ControlFor(v float64) (State, string) {
	if telemetry.IsPoweredOff(v) {
		return StateOn, ClassStatusOn
	}
	return StateOff, ClassStatusOff
}
