// Package worksheet renders expenses as an .xlsx workbook.
package worksheet

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"economad/internal/core"
)

// SheetName is the single sheet of every exported workbook.
const SheetName = "Worksheet"

// ContentType is the MIME type of the bytes returned by Build.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrEncode wraps any failure while producing the workbook.
var ErrEncode = errors.New("encode worksheet")

// Header is the first row. The fourth column is intentionally blank.
var Header = []string{"Origin", "Value", "Date", "", "Description"}

// RowValues returns the cells of e in Header order.
func RowValues(e core.Expense) []any {
	return []any{e.Origin.Name, e.Amount.Float64(), e.Date.String(), nil, e.Description}
}

// Build writes a header row plus one row per expense and returns the
// encoded workbook.
func Build(expenses []core.Expense) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("%w: rename sheet: %w", ErrEncode, err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		if h != "" {
			header[i] = h
		}
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrEncode, err)
	}

	for i, e := range expenses {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrEncode, i+2, err)
		}
		row := RowValues(e)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrEncode, i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return buf.Bytes(), nil
}
