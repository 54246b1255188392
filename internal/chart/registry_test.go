package chart

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/HugoHonorez/sensora/internal/telemetry"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func pt(f telemetry.Field, minute int, v float64) telemetry.Point {
	return telemetry.Point{Field: f, Time: t0.Add(time.Duration(minute) * time.Minute), Value: v, Valid: true}
}

func TestNewRegistry_Layout(t *testing.T) {
	snap := NewRegistry().Snapshot()

	want := []struct {
		id       ID
		datasets int
		color    string
	}{
		{TemperatureChart, 2, "red"},
		{HumidityChart, 1, "blue"},
		{PressureChart, 1, "purple"},
		{LightChart, 1, "goldenrod"},
		{AirQualityChart, 1, "green"},
	}

	if len(snap.Charts) != len(want) {
		t.Fatalf("len(Charts) = %d, want %d", len(snap.Charts), len(want))
	}
	for i, w := range want {
		c := snap.Charts[i]
		if c.ID != w.id {
			t.Errorf("Charts[%d].ID = %q, want %q", i, c.ID, w.id)
		}
		if len(c.Datasets) != w.datasets {
			t.Errorf("%s: %d datasets, want %d", c.ID, len(c.Datasets), w.datasets)
		}
		if c.Datasets[0].BorderColor != w.color {
			t.Errorf("%s: border %q, want %q", c.ID, c.Datasets[0].BorderColor, w.color)
		}
		if c.XLabel != "Heure" {
			t.Errorf("%s: x label %q, want Heure", c.ID, c.XLabel)
		}
		for _, ds := range c.Datasets {
			if ds.Tension != 0.3 || ds.PointRadius != 1 {
				t.Errorf("%s/%s: tension %v radius %d", c.ID, ds.Label, ds.Tension, ds.PointRadius)
			}
			if len(ds.Data) != 0 {
				t.Errorf("%s/%s: not empty", c.ID, ds.Label)
			}
		}
	}
	if snap.Revision != 0 {
		t.Errorf("Revision = %d, want 0", snap.Revision)
	}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		field telemetry.Field
		want  Slot
	}{
		{telemetry.Temperature, Slot{TemperatureChart, 0}},
		{telemetry.HeatIndex, Slot{TemperatureChart, 1}},
		{telemetry.Humidity, Slot{HumidityChart, 0}},
		{telemetry.Pressure, Slot{PressureChart, 0}},
		{telemetry.Light, Slot{LightChart, 0}},
		{telemetry.AirQuality, Slot{AirQualityChart, 0}},
	}

	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			got, ok := Route(tt.field)
			if !ok || got != tt.want {
				t.Errorf("Route(%s) = %+v, %v; want %+v", tt.field, got, ok, tt.want)
			}
		})
	}

	if _, ok := Route("co2"); ok {
		t.Error("Route(co2) ok = true")
	}
}

func TestApplyBulk_RoutesInOrder(t *testing.T) {
	r := NewRegistry()

	res := r.ApplyBulk([]telemetry.Point{
		pt(telemetry.Temperature, 0, 20),
		pt(telemetry.HeatIndex, 0, 19),
		pt(telemetry.Temperature, 1, 21),
		pt(telemetry.Humidity, 0, 40),
		{Field: "co2", Time: t0, Value: 400, Valid: true},
		pt(telemetry.Light, 0, 512),
	})

	if res.Routed != 5 || res.Dropped != 1 {
		t.Errorf("BulkResult = %+v, want 5 routed, 1 dropped", res)
	}
	if res.Revision != 1 {
		t.Errorf("Revision = %d, want 1", res.Revision)
	}

	temp := r.Column(telemetry.Temperature)
	if len(temp) != 2 || temp[0].Y != 20 || temp[1].Y != 21 {
		t.Errorf("temperature column = %+v, want [20 21]", temp)
	}
	if !temp[1].X.Equal(t0.Add(time.Minute)) {
		t.Errorf("temperature[1].X = %v", temp[1].X)
	}
	if got := r.Column(telemetry.HeatIndex); len(got) != 1 || got[0].Y != 19 {
		t.Errorf("heatindex column = %+v", got)
	}
	if got := r.Column(telemetry.Pressure); len(got) != 0 {
		t.Errorf("pressure column = %+v, want empty", got)
	}
}

func TestApplyBulk_ReplacesPreviousData(t *testing.T) {
	r := NewRegistry()

	r.ApplyBulk([]telemetry.Point{
		pt(telemetry.Temperature, 0, 20),
		pt(telemetry.Pressure, 0, 1010),
	})
	r.ApplyBulk([]telemetry.Point{
		pt(telemetry.Temperature, 5, 25),
	})

	temp := r.Column(telemetry.Temperature)
	if len(temp) != 1 || temp[0].Y != 25 {
		t.Errorf("temperature column = %+v, want only the second bulk", temp)
	}
	if got := r.Column(telemetry.Pressure); len(got) != 0 {
		t.Errorf("pressure column = %+v, want cleared", got)
	}
	if r.Revision() != 2 {
		t.Errorf("Revision() = %d, want 2", r.Revision())
	}
}

func TestApplyBulk_EmptyClears(t *testing.T) {
	r := NewRegistry()
	r.ApplyBulk([]telemetry.Point{pt(telemetry.Temperature, 0, 20)})
	r.ApplyBulk(nil)

	for _, c := range r.Snapshot().Charts {
		for _, ds := range c.Datasets {
			if len(ds.Data) != 0 {
				t.Errorf("%s/%s has %d samples after empty bulk", c.ID, ds.Label, len(ds.Data))
			}
		}
	}
}

func TestApplyBulk_KeepsNullValues(t *testing.T) {
	r := NewRegistry()
	r.ApplyBulk([]telemetry.Point{
		{Field: telemetry.Humidity, Time: t0, Valid: false},
	})

	col := r.Column(telemetry.Humidity)
	if len(col) != 1 || col[0].Valid {
		t.Fatalf("humidity column = %+v, want one invalid sample", col)
	}
}

func TestClearAllAndRender(t *testing.T) {
	r := NewRegistry()

	var got []Snapshot
	r.OnRender(func(s Snapshot) { got = append(got, s) })

	r.ApplyBulk([]telemetry.Point{pt(telemetry.Light, 0, 100)})
	r.ClearAll()
	if len(got) != 1 {
		t.Fatalf("ClearAll rendered: listener got %d snapshots, want 1", len(got))
	}

	snap := r.Render()
	if len(got) != 2 || got[1].Revision != snap.Revision || snap.Revision != 2 {
		t.Fatalf("listener got %d snapshots, revision %d", len(got), snap.Revision)
	}
	light, _ := snap.Chart(LightChart)
	if len(light.Datasets[0].Data) != 0 {
		t.Error("light series not cleared")
	}
}

func TestSnapshot_IsIsolated(t *testing.T) {
	r := NewRegistry()
	r.ApplyBulk([]telemetry.Point{pt(telemetry.Temperature, 0, 20)})

	snap := r.Snapshot()
	temp, _ := snap.Chart(TemperatureChart)
	temp.Datasets[0].Data[0].Y = 99

	col := r.Column(telemetry.Temperature)
	col[0].Y = 98

	if got := r.Column(telemetry.Temperature)[0].Y; got != 20 {
		t.Errorf("registry mutated through copy: %v", got)
	}
}

func TestOnRender_ReceivesBulkSnapshot(t *testing.T) {
	r := NewRegistry()
	r.OnRender(nil)

	done := make(chan Snapshot, 1)
	r.OnRender(func(s Snapshot) { done <- s })

	r.ApplyBulk([]telemetry.Point{pt(telemetry.AirQuality, 0, 230)})

	snap := <-done
	aq, ok := snap.Chart(AirQualityChart)
	if !ok || len(aq.Datasets[0].Data) != 1 || aq.Datasets[0].Data[0].Y != 230 {
		t.Errorf("listener snapshot airquality = %+v", aq)
	}
}

func TestSample_JSON(t *testing.T) {
	data, err := json.Marshal([]Sample{
		{X: t0, Y: 21.5, Valid: true},
		{X: t0},
		{Y: 19, Valid: true},
	})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `[{"x":"2024-05-01T12:00:00Z","y":21.5},{"x":"2024-05-01T12:00:00Z","y":null},{"x":null,"y":19}]`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	var back []Sample
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !back[0].Valid || back[0].Y != 21.5 || back[1].Valid || !back[2].X.IsZero() {
		t.Errorf("Unmarshal() = %+v", back)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			r.ApplyBulk([]telemetry.Point{pt(telemetry.Temperature, n, float64(n))})
		}(i)
		go func() {
			defer wg.Done()
			_ = r.Snapshot()
			_ = r.Column(telemetry.Temperature)
		}()
	}
	wg.Wait()

	if r.Revision() != 8 {
		t.Errorf("Revision() = %d, want 8", r.Revision())
	}
	if got := r.Column(telemetry.Temperature); len(got) != 1 {
		t.Errorf("temperature column has %d samples, want exactly one bulk", len(got))
	}
}

func TestSnapshot_Column(t *testing.T) {
	r := NewRegistry()
	r.ApplyBulk([]telemetry.Point{
		pt(telemetry.HeatIndex, 0, 22),
		pt(telemetry.HeatIndex, 1, 23),
		pt(telemetry.Light, 0, 400),
	})
	snap := r.Snapshot()

	if got := snap.Column(telemetry.HeatIndex); len(got) != 2 || got[1].Y != 23 {
		t.Errorf("Column(heatindex) = %+v", got)
	}
	if got := snap.Column(telemetry.Temperature); len(got) != 0 {
		t.Errorf("Column(temperature) = %+v, want empty", got)
	}
	if got := snap.Column(telemetry.Field("co2")); got != nil {
		t.Errorf("Column(co2) = %+v, want nil", got)
	}
}
