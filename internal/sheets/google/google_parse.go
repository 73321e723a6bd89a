package google

import (
	"fmt"
	"strconv"
	"strings"

	"economad/internal/core"
	"economad/internal/worksheet"
)

// idColumn is the sheet column holding the expense ID, right after the
// worksheet layout.
var idColumn = columnLetter(len(worksheet.Header) + 1)

// headerRow is the worksheet header extended with the ID column.
func headerRow() []any {
	row := make([]any, 0, len(worksheet.Header)+1)
	for _, h := range worksheet.Header {
		row = append(row, h)
	}
	return append(row, "ID")
}

// expenseRow renders e with the worksheet layout plus its ID.
func expenseRow(e core.Expense) []any {
	row := worksheet.RowValues(e)
	for i, v := range row {
		if v == nil {
			row[i] = ""
		}
	}
	return append(row, e.ID)
}

// parseIDColumn maps every numeric ID found in a single-column range to its
// 1-based row number. Headers and blank cells are skipped.
func parseIDColumn(values [][]any) map[int64]int {
	ids := make(map[int64]int, len(values))
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(fmt.Sprint(row[0])), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		if _, seen := ids[id]; !seen {
			ids[id] = i + 1
		}
	}
	return ids
}

// columnLetter converts a 1-based column index to its A1 letter.
func columnLetter(n int) string {
	var s string
	for n > 0 {
		n--
		s = string(rune('A'+n%26)) + s
		n /= 26
	}
	return s
}
