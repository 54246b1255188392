package export

import "errors"

// Domain errors for the export package.
var (
	// ErrUnknownFormat is returned for a filename or format that is not
	// one of data.csv, data.xlsx or data.pdf.
	ErrUnknownFormat = errors.New("export: unknown format")

	// ErrRender is returned when a rendering library fails.
	ErrRender = errors.New("export: render failed")
)
