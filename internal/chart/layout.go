package chart

import "github.com/HugoHonorez/sensora/internal/telemetry"

const (
	xAxisLabel  = "Heure"
	tension     = 0.3
	pointRadius = 1
)

// Slot addresses one dataset within one chart.
type Slot struct {
	Chart ID
	Index int
}

// routes is the fixed field-to-slot table.
var routes = map[telemetry.Field]Slot{
	telemetry.Temperature: {TemperatureChart, 0},
	telemetry.HeatIndex:   {TemperatureChart, 1},
	telemetry.Humidity:    {HumidityChart, 0},
	telemetry.Pressure:    {PressureChart, 0},
	telemetry.Light:       {LightChart, 0},
	telemetry.AirQuality:  {AirQualityChart, 0},
}

// Route returns the slot a field is drawn in.
func Route(f telemetry.Field) (Slot, bool) {
	s, ok := routes[f]
	return s, ok
}

func dataset(label, border, background string) Dataset {
	return Dataset{
		Label:           label,
		BorderColor:     border,
		BackgroundColor: background,
		Tension:         tension,
		PointRadius:     pointRadius,
		Data:            []Sample{},
	}
}

// defaultLayout returns the five empty charts in display order.
func defaultLayout() []Chart {
	return []Chart{
		{
			ID: TemperatureChart, XLabel: xAxisLabel, YLabel: "Température (°C)",
			Datasets: []Dataset{
				dataset("Température (°C)", "red", "rgba(255,99,132,0.2)"),
				dataset("Indice de chaleur (°C)", "orange", "rgba(255,159,64,0.2)"),
			},
		},
		{
			ID: HumidityChart, XLabel: xAxisLabel, YLabel: "Humidité (%)",
			Datasets: []Dataset{dataset("Humidité (%)", "blue", "rgba(54,162,235,0.2)")},
		},
		{
			ID: PressureChart, XLabel: xAxisLabel, YLabel: "Pression (hPa)",
			Datasets: []Dataset{dataset("Pression (hPa)", "purple", "rgba(153,102,255,0.2)")},
		},
		{
			ID: LightChart, XLabel: xAxisLabel, YLabel: "Luminosité",
			Datasets: []Dataset{dataset("Luminosité", "goldenrod", "rgba(255,206,86,0.2)")},
		},
		{
			ID: AirQualityChart, XLabel: xAxisLabel, YLabel: "Qualité de l'air",
			Datasets: []Dataset{dataset("Qualité de l'air", "green", "rgba(86,255,108,0.2)")},
		},
	}
}
