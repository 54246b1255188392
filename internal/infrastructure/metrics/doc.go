// Package metrics exposes Prometheus counters and gauges for the dashboard.
//
// Collectors are package-level and registered once by Init. Every helper is
// a no-op until Init has run, so packages can record metrics unconditionally
// and tests that never call Init stay quiet.
package metrics
