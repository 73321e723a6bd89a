// Package memory is an in-process sheets.ExpenseWriter used when no Google
// spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"economad/internal/core"
	"economad/internal/sheets"
	"economad/internal/worksheet"
)

var _ sheets.ExpenseWriter = (*Writer)(nil)

type Writer struct {
	mu   sync.Mutex
	rows [][]any
	ids  map[int64]int
}

func New() *Writer {
	return &Writer{ids: map[int64]int{}}
}

// Append stores the expense row and returns a synthetic row reference.
func (w *Writer) Append(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if row, ok := w.ids[e.ID]; ok {
		return fmt.Sprintf("mem:%d", row), nil
	}
	w.rows = append(w.rows, worksheet.RowValues(e))
	w.ids[e.ID] = len(w.rows)
	return fmt.Sprintf("mem:%d", len(w.rows)), nil
}

// Rows returns a copy of the written rows in order.
func (w *Writer) Rows() [][]any {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([][]any, len(w.rows))
	for i, r := range w.rows {
		out[i] = append([]any(nil), r...)
	}
	return out
}
