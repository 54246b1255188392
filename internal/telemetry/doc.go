// Package telemetry defines the sensor measurement model shared by the
// query channel, the realtime channel and the exporters.
//
// Six fields are measured: temperature, heatindex, humidity, pressure,
// light and airquality. Historical data arrives as individual points
// ({field, time, value}); realtime data arrives as one Reading carrying
// every field at once.
//
// A reading of -1 (PowerOffSentinel) means the sensor is powered off.
package telemetry
