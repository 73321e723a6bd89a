package sheets

import (
	"context"

	"economad/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseWriter appends one stored expense as a spreadsheet row. Writing
	// an expense that is already present returns the existing row reference.
	ExpenseWriter interface {
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)
	}
)
