package core

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidDateRange is returned when a date range cannot produce a
// per-day figure.
var ErrInvalidDateRange = errors.New("invalid date range")

// DailyIndex divides the sum of expenses by the number of days between
// initial and final, rounding up to two fraction digits. An empty list
// yields zero regardless of the range.
func DailyIndex(expenses []Expense, initial, final Date) (decimal.Decimal, error) {
	if len(expenses) == 0 {
		return decimal.Zero, nil
	}
	days := initial.DaysUntil(final)
	if days <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %s to %s spans %d days", ErrInvalidDateRange, initial, final, days)
	}

	var total Money
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total.Decimal().Div(decimal.NewFromInt(int64(days))).RoundCeil(2), nil
}
