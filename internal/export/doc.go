// Package export renders the charted series as downloadable tables.
//
// The table is built from one chart snapshot. Rows follow the temperature
// series; every other column is aligned by position, so row i takes the
// i-th sample of each series and leaves the cell empty when a series is
// shorter or the sample has no value.
//
// Three renderings are available:
//
//   - CSV: semicolon separated, the format spreadsheet users open directly
//   - XLSX: one sheet with numeric cells (excelize)
//   - PDF: a landscape table (gofpdf)
//
// Timestamps are written in the display timezone as 02/01/06 15:04:05.
package export
