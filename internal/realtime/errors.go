package realtime

import "errors"

// Domain-specific errors for realtime operations.
var (
	// ErrUnknownSensor is returned for a sensor with no power control.
	ErrUnknownSensor = errors.New("realtime: unknown sensor")

	// ErrInvalidState is returned for a power state other than ON or OFF.
	ErrInvalidState = errors.New("realtime: invalid power state")

	// ErrNoReading is returned by Press before any reading has been rendered.
	ErrNoReading = errors.New("realtime: no reading yet")

	// ErrNotAttached is returned when publishing before a broker client is attached.
	ErrNotAttached = errors.New("realtime: broker client not attached")

	// ErrUnknownThreshold is returned when thresholds name an unknown field.
	ErrUnknownThreshold = errors.New("realtime: threshold for unknown field")
)
