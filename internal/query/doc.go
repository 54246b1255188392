// Package query talks to the historical query server over WebSocket.
//
// A request selects either a relative range or a custom start/end window,
// plus an aggregation step:
//
//	{"step": "30s", "range": "-1h"}
//	{"step": "1m", "custom": {"start": "2024-05-01T10:00:00.000Z", "end": "2024-05-01T12:00:00.000Z"}}
//
// The server answers with one bulk message per request:
//
//	{"type": "bulk", "data": [{"field": "temperature", "time": "...", "value": 21.4}, ...]}
//
// Each bulk replaces every chart series. Requests made while the channel is
// closed are dropped with a warning; there is no queue, retry or reconnect.
package query
