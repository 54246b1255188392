package telemetry

import "errors"

// Domain-specific errors for telemetry decoding.
var (
	// ErrMalformedReading is returned when a realtime payload is not valid JSON.
	ErrMalformedReading = errors.New("telemetry: malformed reading")

	// ErrMissingField is returned when a realtime payload lacks a required field.
	ErrMissingField = errors.New("telemetry: missing field")

	// ErrInvalidTime is returned when a timestamp is neither RFC3339 nor epoch seconds.
	ErrInvalidTime = errors.New("telemetry: invalid time")
)
