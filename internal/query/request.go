package query

import (
	"fmt"
	"time"
)

// Defaults restored by Reset.
const (
	DefaultRange = "-1h"
	DefaultStep  = "30s"
)

// instantLayout matches JavaScript's Date.toISOString, which the server expects.
const instantLayout = "2006-01-02T15:04:05.000Z"

// formLayouts are the datetime shapes accepted from the filter form,
// interpreted in the display location.
var formLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Filter is the user's current query selection.
type Filter struct {
	Range string `json:"range"`
	Step  string `json:"step"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// DefaultFilter returns the one-hour, 30-second filter.
func DefaultFilter() Filter {
	return Filter{Range: DefaultRange, Step: DefaultStep}
}

// Reset restores the default range and step and clears the custom window.
func (f *Filter) Reset() {
	*f = DefaultFilter()
}

// IsCustom reports whether both ends of a custom window are set.
func (f Filter) IsCustom() bool {
	return f.Start != "" && f.End != ""
}

// CustomRange is an absolute query window in UTC.
type CustomRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Request is the JSON message sent to the query server.
// Exactly one of Range and Custom is set.
type Request struct {
	Step   string       `json:"step"`
	Range  string       `json:"range,omitempty"`
	Custom *CustomRange `json:"custom,omitempty"`
}

// BuildRequest turns a filter into a request. A custom window is used only
// when both Start and End are set; otherwise Range is sent.
func BuildRequest(f Filter, loc *time.Location) (Request, error) {
	req := Request{Step: f.Step}

	if !f.IsCustom() {
		req.Range = f.Range
		return req, nil
	}

	start, err := parseInstant(f.Start, loc)
	if err != nil {
		return Request{}, fmt.Errorf("%w: start: %w", ErrInvalidFilter, err)
	}
	end, err := parseInstant(f.End, loc)
	if err != nil {
		return Request{}, fmt.Errorf("%w: end: %w", ErrInvalidFilter, err)
	}

	req.Custom = &CustomRange{
		Start: start.UTC().Format(instantLayout),
		End:   end.UTC().Format(instantLayout),
	}
	return req, nil
}

// parseInstant accepts RFC3339 or a form datetime in loc.
func parseInstant(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range formLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised datetime %q", s)
}
