package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const sheetName = "data"

// BuildXLSX renders the table as a single-sheet workbook. Values are
// stored as numbers; empty cells are left blank.
func BuildXLSX(t Table, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("%w: xlsx: %w", ErrRender, err)
	}

	for ci, h := range Header() {
		if err := setCell(f, ci, 1, h); err != nil {
			return nil, err
		}
	}

	for ri, r := range t.Rows {
		row := ri + 2
		if err := setCell(f, 0, row, formatTime(r.Time, loc)); err != nil {
			return nil, err
		}
		for ci, c := range r.Cells {
			if !c.Valid {
				continue
			}
			if err := setCell(f, ci+1, row, c.Value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("%w: xlsx: %w", ErrRender, err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, value any) error {
	ref, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return fmt.Errorf("%w: xlsx: %w", ErrRender, err)
	}
	if err := f.SetCellValue(sheetName, ref, value); err != nil {
		return fmt.Errorf("%w: xlsx: %w", ErrRender, err)
	}
	return nil
}
