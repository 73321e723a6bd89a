package storage

import (
	"strings"

	"economad/internal/core"
)

// expenseWhere translates f into a WHERE clause over the expense select
// (aliases e, o, p) and its arguments. A nil or empty filter yields no
// clause.
func expenseWhere(f *core.ExpenseFilter) (string, []any) {
	if f.IsEmpty() {
		return "", nil
	}

	var (
		conds []string
		args  []any
	)
	if f.InitialDate != nil {
		conds = append(conds, "e.due_date >= ?")
		args = append(args, f.InitialDate.String())
	}
	if f.FinalDate != nil {
		conds = append(conds, "e.due_date <= ?")
		args = append(args, f.FinalDate.String())
	}
	if d := strings.TrimSpace(f.Description); d != "" {
		conds = append(conds, "instr(lower(e.description), ?) > 0")
		args = append(args, strings.ToLower(d))
	}
	if o := strings.TrimSpace(f.OriginName); o != "" {
		conds = append(conds, "o.name = ? COLLATE NOCASE")
		args = append(args, o)
	}
	if p := strings.TrimSpace(f.PaymentTypeName); p != "" {
		conds = append(conds, "p.name = ? COLLATE NOCASE")
		args = append(args, p)
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
