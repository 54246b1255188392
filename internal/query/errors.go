package query

import "errors"

// Domain-specific errors for the query channel.
var (
	// ErrNotOpen is returned when a request is made while the channel is closed.
	ErrNotOpen = errors.New("query: channel not open")

	// ErrDialFailed is returned when the query server cannot be reached.
	ErrDialFailed = errors.New("query: dial failed")

	// ErrAlreadyConnected is returned by Connect on an open client.
	ErrAlreadyConnected = errors.New("query: already connected")

	// ErrInvalidFilter is returned when a custom start or end cannot be parsed.
	ErrInvalidFilter = errors.New("query: invalid filter")
)
