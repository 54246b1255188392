package telemetry

// Field names one measured quantity.
type Field string

// Measured fields, as named on the wire.
const (
	Temperature Field = "temperature"
	HeatIndex   Field = "heatindex"
	Humidity    Field = "humidity"
	Pressure    Field = "pressure"
	Light       Field = "light"
	AirQuality  Field = "airquality"
)

// PowerOffSentinel is the value a sensor reports while powered off.
const PowerOffSentinel = -1.0

// allFields is the canonical display and export order.
var allFields = []Field{Temperature, HeatIndex, Humidity, Pressure, Light, AirQuality}

// Fields returns every known field in canonical order.
func Fields() []Field {
	out := make([]Field, len(allFields))
	copy(out, allFields)
	return out
}

// ParseField returns the Field named s, or false if s is not a known field.
func ParseField(s string) (Field, bool) {
	for _, f := range allFields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// IsKnown reports whether f is one of the six measured fields.
func (f Field) IsKnown() bool {
	_, ok := ParseField(string(f))
	return ok
}

func (f Field) String() string {
	return string(f)
}

// IsPoweredOff reports whether v is the power-off sentinel.
func IsPoweredOff(v float64) bool {
	return v == PowerOffSentinel
}
