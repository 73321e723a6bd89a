package storage

import (
	"testing"

	"economad/internal/core"
)

func TestExpenseWhere(t *testing.T) {
	if where, args := expenseWhere(nil); where != "" || args != nil {
		t.Fatalf("nil filter must not constrain, got %q %v", where, args)
	}
	if where, _ := expenseWhere(&core.ExpenseFilter{Description: "  "}); where != "" {
		t.Fatalf("blank filter must not constrain, got %q", where)
	}

	start, end := core.NewDate(2025, 1, 1), core.NewDate(2025, 1, 31)
	where, args := expenseWhere(&core.ExpenseFilter{
		InitialDate: &start,
		FinalDate:   &end,
		Description: "Food",
		OriginName:  "Market",
	})
	want := " WHERE e.due_date >= ? AND e.due_date <= ? AND instr(lower(e.description), ?) > 0 AND o.name = ? COLLATE NOCASE"
	if where != want {
		t.Fatalf("unexpected clause\n got: %s\nwant: %s", where, want)
	}
	if len(args) != 4 || args[0] != "2025-01-01" || args[1] != "2025-01-31" || args[2] != "food" || args[3] != "Market" {
		t.Fatalf("unexpected args %v", args)
	}
}
