package export

import (
	"fmt"
	"time"

	"github.com/HugoHonorez/sensora/internal/chart"
	"github.com/HugoHonorez/sensora/internal/telemetry"
)

// TimeLayout is the row timestamp format.
const TimeLayout = "02/01/06 15:04:05"

// column is one value column of the export.
type column struct {
	field  telemetry.Field
	header string
}

// columns lists the value columns in output order.
var columns = []column{
	{telemetry.Temperature, "Temperature (°C)"},
	{telemetry.HeatIndex, "HeatIndex (°C)"},
	{telemetry.Humidity, "Humidity (%)"},
	{telemetry.Pressure, "Pressure (hPa)"},
	{telemetry.Light, "Light"},
	{telemetry.AirQuality, "AirQuality"},
}

// Header returns the header row, time column first.
func Header() []string {
	h := make([]string, 0, len(columns)+1)
	h = append(h, "Time")
	for _, c := range columns {
		h = append(h, c.header)
	}
	return h
}

// Cell is one value of a row. An invalid cell is written empty.
type Cell struct {
	Value float64
	Valid bool
}

// String formats the cell with two decimals, or "" when empty.
func (c Cell) String() string {
	if !c.Valid {
		return ""
	}
	return fmt.Sprintf("%.2f", c.Value)
}

// Row is one line of the export.
type Row struct {
	Time  time.Time
	Cells []Cell
}

// Table is the positional join of every series.
type Table struct {
	Revision uint64
	Rows     []Row
}

// BuildTable joins the snapshot's series by index, driven by the
// temperature series.
func BuildTable(snap chart.Snapshot) Table {
	series := make([][]chart.Sample, len(columns))
	for i, c := range columns {
		series[i] = snap.Column(c.field)
	}

	driver := series[0]
	rows := make([]Row, 0, len(driver))
	for i, s := range driver {
		row := Row{Time: s.X, Cells: make([]Cell, len(columns))}
		for ci, col := range series {
			if i < len(col) && col[i].Valid {
				row.Cells[ci] = Cell{Value: col[i].Y, Valid: true}
			}
		}
		rows = append(rows, row)
	}

	return Table{Revision: snap.Revision, Rows: rows}
}

// Records returns the table as formatted strings, header first.
func (t Table) Records(loc *time.Location) [][]string {
	if loc == nil {
		loc = time.UTC
	}
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, Header())
	for _, r := range t.Rows {
		rec := make([]string, 0, len(r.Cells)+1)
		rec = append(rec, formatTime(r.Time, loc))
		for _, c := range r.Cells {
			rec = append(rec, c.String())
		}
		out = append(out, rec)
	}
	return out
}

// formatTime renders a row time; a point received without a usable time
// has an empty time cell.
func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(TimeLayout)
}
