// Package realtime turns live sensor readings into the dashboard readout
// and publishes sensor power commands.
//
// Readings arrive on the data topic (default sensors/data). Each one is
// rendered into a View: a formatted timestamp, one Box per measured field
// with a threshold class, and one PowerControl per switchable sensor.
// Rendering is a pure function of the latest reading; the service keeps
// only the last View so HTTP clients can read it.
//
// A sensor reporting -1 is powered off, so its control offers ON.
// Pressing a control publishes the offered state, unacknowledged and
// unlocked, to that sensor's power topic:
//
//	temperature  sensors/power/dht22
//	pressure     sensors/power/bmp280
//	light        sensors/power/ldr
//	airquality   sensors/power/mq135
package realtime
