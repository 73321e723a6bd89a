package core

import "strings"

// ExpenseFilter narrows a listing. Every field is optional; a nil filter
// matches all expenses. Date bounds are inclusive and apply to DueDate.
type ExpenseFilter struct {
	InitialDate     *Date
	FinalDate       *Date
	Description     string
	OriginName      string
	PaymentTypeName string
}

// IsEmpty reports whether f constrains nothing.
func (f *ExpenseFilter) IsEmpty() bool {
	return f == nil || (f.InitialDate == nil && f.FinalDate == nil &&
		strings.TrimSpace(f.Description) == "" &&
		strings.TrimSpace(f.OriginName) == "" &&
		strings.TrimSpace(f.PaymentTypeName) == "")
}

// Matches applies the filter to an expense in memory.
func (f *ExpenseFilter) Matches(e Expense) bool {
	if f == nil {
		return true
	}
	if f.InitialDate != nil && e.DueDate.Before(f.InitialDate.Time) {
		return false
	}
	if f.FinalDate != nil && e.DueDate.After(f.FinalDate.Time) {
		return false
	}
	if d := strings.TrimSpace(f.Description); d != "" &&
		!strings.Contains(strings.ToLower(e.Description), strings.ToLower(d)) {
		return false
	}
	if o := strings.TrimSpace(f.OriginName); o != "" && !strings.EqualFold(e.Origin.Name, o) {
		return false
	}
	if p := strings.TrimSpace(f.PaymentTypeName); p != "" && !strings.EqualFold(e.PaymentType.Name, p) {
		return false
	}
	return true
}
