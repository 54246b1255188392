package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/HugoHonorez/sensora/internal/chart"
	"github.com/HugoHonorez/sensora/internal/infrastructure/metrics"
)

// Format is an export rendering.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// filenameBase is the download name every format shares.
const filenameBase = "data"

// Formats returns the supported formats.
func Formats() []Format {
	return []Format{FormatCSV, FormatXLSX, FormatPDF}
}

// Filename returns the download name, e.g. data.csv.
func (f Format) Filename() string {
	return filenameBase + "." + string(f)
}

// ContentType returns the MIME type sent with the download.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv;charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// ParseFilename maps data.csv, data.xlsx or data.pdf to its format.
func ParseFilename(name string) (Format, error) {
	base, ext, ok := strings.Cut(strings.ToLower(name), ".")
	if !ok || base != filenameBase {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	for _, f := range Formats() {
		if string(f) == ext {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// SnapshotSource provides the charts to export. *chart.Registry satisfies it.
type SnapshotSource interface {
	Snapshot() chart.Snapshot
}

// Exporter renders the current charts on demand.
//
// Thread Safety: safe for concurrent use; each call takes its own snapshot.
type Exporter struct {
	src   SnapshotSource
	loc   *time.Location
	title string
}

// New creates an exporter writing timestamps in loc.
func New(src SnapshotSource, loc *time.Location, title string) *Exporter {
	if loc == nil {
		loc = time.UTC
	}
	if title == "" {
		title = "Sensor data"
	}
	return &Exporter{src: src, loc: loc, title: title}
}

// Table returns the table for the current charts.
func (e *Exporter) Table() Table {
	return BuildTable(e.src.Snapshot())
}

// Render produces the file contents for f.
func (e *Exporter) Render(f Format) ([]byte, error) {
	start := time.Now()
	data, err := e.render(f, e.Table())

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.ObserveExport(string(f), result, time.Since(start))

	return data, err
}

func (e *Exporter) render(f Format, t Table) ([]byte, error) {
	switch f {
	case FormatCSV:
		var b strings.Builder
		if err := WriteCSV(&b, t, e.loc); err != nil {
			return nil, err
		}
		return []byte(b.String()), nil
	case FormatXLSX:
		return BuildXLSX(t, e.loc)
	case FormatPDF:
		return BuildPDF(t, e.loc, e.title)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}
