package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// CSVSeparator is the field delimiter of CSV exports.
const CSVSeparator = ';'

// WriteCSV writes the table as semicolon separated values.
func WriteCSV(w io.Writer, t Table, loc *time.Location) error {
	cw := csv.NewWriter(w)
	cw.Comma = CSVSeparator

	if err := cw.WriteAll(t.Records(loc)); err != nil {
		return fmt.Errorf("%w: csv: %w", ErrRender, err)
	}
	return nil
}
