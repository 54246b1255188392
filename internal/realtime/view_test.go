package realtime

import (
	"errors"
	"testing"
	"time"

	"github.com/HugoHonorez/sensora/internal/infrastructure/config"
	"github.com/HugoHonorez/sensora/internal/telemetry"
)

func brussels(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Brussels")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	return loc
}

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(config.Default().Realtime, brussels(t))
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	return r
}

func reading(temp, light float64) telemetry.Reading {
	return telemetry.Reading{
		Timestamp:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Temperature: temp,
		HeatIndex:   28.4,
		Humidity:    40.5,
		Pressure:    1012.25,
		Light:       light,
		AirQuality:  230.5,
	}
}

func TestThresholdClass_Temperature(t *testing.T) {
	r := testRenderer(t)

	tests := []struct {
		temp float64
		want string
	}{
		{31, ClassExceeded},
		{29, ClassNormal},
		{30, ClassNormal},
		{30.01, ClassExceeded},
	}

	for _, tt := range tests {
		box, ok := r.Render(reading(tt.temp, 500)).Box(telemetry.Temperature)
		if !ok {
			t.Fatal("temperature box missing")
		}
		if box.Class != tt.want {
			t.Errorf("temperature %v: class %q, want %q", tt.temp, box.Class, tt.want)
		}
	}
}

func TestRender_EveryBoxHasExactlyOneClass(t *testing.T) {
	v := testRenderer(t).Render(reading(31, 500))

	if len(v.Boxes) != 6 {
		t.Fatalf("len(Boxes) = %d, want 6", len(v.Boxes))
	}
	want := map[telemetry.Field]string{
		telemetry.Temperature: ClassExceeded,
		telemetry.HeatIndex:   ClassNormal,
		telemetry.Humidity:    ClassNormal,
		telemetry.Pressure:    ClassExceeded,
		telemetry.Light:       ClassNormal,
		telemetry.AirQuality:  ClassNormal,
	}
	for _, b := range v.Boxes {
		if b.Class != want[b.Field] {
			t.Errorf("%s: class %q, want %q", b.Field, b.Class, want[b.Field])
		}
	}
}

func TestRender_Texts(t *testing.T) {
	v := testRenderer(t).Render(reading(21.456, 512))

	want := map[telemetry.Field]string{
		telemetry.Temperature: "21.46 °C",
		telemetry.HeatIndex:   "28.40 °C",
		telemetry.Humidity:    "40.50 %",
		telemetry.Pressure:    "1012.25 hPa",
		telemetry.Light:       "512",
		telemetry.AirQuality:  "230.5",
	}
	for f, text := range want {
		box, _ := v.Box(f)
		if box.Text != text {
			t.Errorf("%s text = %q, want %q", f, box.Text, text)
		}
	}
}

func TestRender_TimestampInDisplayZone(t *testing.T) {
	v := testRenderer(t).Render(reading(20, 500))

	if v.Timestamp != "01/05/2024 14:00:00" {
		t.Errorf("Timestamp = %q, want 01/05/2024 14:00:00", v.Timestamp)
	}

	winter := reading(20, 500)
	winter.Timestamp = time.Date(2024, 1, 15, 23, 30, 5, 0, time.UTC)
	if got := testRenderer(t).Render(winter).Timestamp; got != "16/01/2024 00:30:05" {
		t.Errorf("winter Timestamp = %q, want 16/01/2024 00:30:05", got)
	}
}

func TestRender_PowerControls(t *testing.T) {
	r := testRenderer(t)

	off := r.Render(reading(20, -1))
	ctl, ok := off.Control(telemetry.Light)
	if !ok {
		t.Fatal("light control missing")
	}
	if ctl.Label != StateOn || ctl.Class != ClassStatusOn {
		t.Errorf("light -1: control %s/%s, want ON/status-on", ctl.Label, ctl.Class)
	}
	if ctl.Topic != "sensors/power/ldr" {
		t.Errorf("light topic = %q, want sensors/power/ldr", ctl.Topic)
	}

	on := r.Render(reading(20, 500))
	ctl, _ = on.Control(telemetry.Light)
	if ctl.Label != StateOff || ctl.Class != ClassStatusOff {
		t.Errorf("light 500: control %s/%s, want OFF/status-off", ctl.Label, ctl.Class)
	}

	if len(on.Controls) != 4 {
		t.Errorf("len(Controls) = %d, want 4", len(on.Controls))
	}
	for _, f := range []telemetry.Field{telemetry.Humidity, telemetry.HeatIndex} {
		if _, ok := on.Control(f); ok {
			t.Errorf("%s has a power control", f)
		}
	}
}

func TestNewRenderer_Config(t *testing.T) {
	cfg := config.Default().Realtime
	cfg.Thresholds = map[string]float64{"temperature": 25}
	cfg.PowerTopics = map[string]string{"light": "lab/ldr/power"}

	r, err := NewRenderer(cfg, nil)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	if r.Threshold(telemetry.Temperature) != 25 {
		t.Errorf("temperature threshold = %v, want 25", r.Threshold(telemetry.Temperature))
	}
	if r.Threshold(telemetry.Humidity) != 43 {
		t.Errorf("humidity threshold = %v, want default 43", r.Threshold(telemetry.Humidity))
	}

	light, _ := r.Sensor("light")
	if light.Topic != "lab/ldr/power" {
		t.Errorf("light topic = %q, want override", light.Topic)
	}
	dht, _ := r.Sensor("temperature")
	if dht.Topic != "sensors/power/dht22" || dht.Device != "dht22" {
		t.Errorf("temperature sensor = %+v, want default dht22 topic", dht)
	}
	if _, ok := r.Sensor("humidity"); ok {
		t.Error("humidity reported as switchable")
	}
	if len(r.Sensors()) != 4 {
		t.Errorf("len(Sensors()) = %d, want 4", len(r.Sensors()))
	}

	cfg.Thresholds = map[string]float64{"co2": 800}
	if _, err := NewRenderer(cfg, nil); !errors.Is(err, ErrUnknownThreshold) {
		t.Errorf("NewRenderer() error = %v, want ErrUnknownThreshold", err)
	}
}

func TestParseState(t *testing.T) {
	tests := []struct {
		in      string
		want    State
		wantErr bool
	}{
		{"ON", StateOn, false},
		{"off", StateOff, false},
		{" On ", StateOn, false},
		{"toggle", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseState(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseState(%q) = %q, %v", tt.in, got, err)
		}
		if tt.wantErr && !errors.Is(err, ErrInvalidState) {
			t.Errorf("ParseState(%q) error = %v, want ErrInvalidState", tt.in, err)
		}
	}
}
