package telemetry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Point is one historical measurement. Valid is false when the source
// reported no value for that instant.
type Point struct {
	Field Field
	Time  time.Time
	Value float64
	Valid bool
}

// WirePoint is a point as sent by the query server:
//
//	{"field": "temperature", "time": "2024-05-01T12:00:00+00:00", "value": 21.4}
type WirePoint struct {
	Field string          `json:"field"`
	Time  json.RawMessage `json:"time"`
	Value *float64        `json:"value"`
}

// Point converts the wire form. The field name is kept as sent, even when
// unknown; routing decides what to do with it.
func (w WirePoint) Point() (Point, error) {
	ts, err := ParseTime(w.Time)
	if err != nil {
		return Point{}, fmt.Errorf("field %q: %w", w.Field, err)
	}

	return w.pointAt(ts), nil
}

// UntimedPoint converts the wire form without its time, which is left zero.
// Bulk decoding uses it so a point with a bad time keeps its series position.
func (w WirePoint) UntimedPoint() Point {
	return w.pointAt(time.Time{})
}

func (w WirePoint) pointAt(ts time.Time) Point {
	p := Point{Field: Field(w.Field), Time: ts}
	if w.Value != nil {
		p.Value = *w.Value
		p.Valid = true
	}
	return p
}

// ParseTime accepts an RFC3339 string, or epoch seconds given as a JSON
// number or a numeric string.
func ParseTime(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidTime)
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, fmt.Errorf("%w: %w", ErrInvalidTime, err)
		}
		return ParseTimeString(s)
	}

	sec, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidTime, raw)
	}
	return UnixSeconds(sec), nil
}

// ParseTimeString parses RFC3339 (with or without fractional seconds) or
// epoch seconds.
func ParseTimeString(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidTime)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if sec, err := strconv.ParseFloat(s, 64); err == nil {
		return UnixSeconds(sec), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
}

// UnixSeconds converts fractional epoch seconds to a UTC time.
func UnixSeconds(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC()
}
