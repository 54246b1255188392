// Package api implements the dashboard's HTTP server.
//
// This package provides:
//   - The dashboard page and its assets (package panel)
//   - JSON endpoints for charts, the live readout and the query filter
//   - Power commands for the switchable sensors
//   - CSV, XLSX and PDF exports of the charted data
//   - A WebSocket push hub broadcasting chart and readout updates
//   - Prometheus metrics
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Architecture
//
// The server sits between the browser and the two upstream channels. Query
// requests go out through the query controller and come back as chart
// renders; live readings arrive over MQTT and come back as readout views.
// Both are pushed to subscribed browsers as they happen.
//
// # Graceful Degradation
//
// The server runs with either channel down. Reads keep serving the last
// state; a query or power command that cannot be sent returns 503.
package api
