// Package chart holds the five dashboard charts and routes telemetry points
// into their series.
//
// # Layout
//
//	temperature  Température (°C), Indice de chaleur (°C)
//	humidity     Humidité (%)
//	pressure     Pression (hPa)
//	light        Luminosité
//	airquality   Qualité de l'air
//
// # Routing
//
// Each telemetry field maps to exactly one (chart, dataset) slot. Points
// with an unknown field are dropped silently and only show up in the
// sensora_chart_points_total{outcome="dropped"} counter.
//
// # Bulk replacement
//
// ApplyBulk clears every slot, routes the new points in arrival order and
// renders, all under one lock. Readers never observe a half-applied bulk,
// and the last bulk applied wins.
package chart
