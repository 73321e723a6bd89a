package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// ErrInvalidMonthDescription is returned when a month description does not
// match "<FullEnglishMonthName>/<4-digit year>".
var ErrInvalidMonthDescription = errors.New("invalid month description")

const monthDescriptionLayout = "January/2006"

// MonthWindow is the inclusive range of days of one calendar month.
type MonthWindow struct {
	Start Date
	End   Date
}

// ParseMonthWindow resolves descriptions like "January/2025" (any letter
// case) to the first and last day of that month.
func ParseMonthWindow(description string) (MonthWindow, error) {
	normalized := normalizeMonthDescription(description)
	t, err := time.Parse(monthDescriptionLayout, normalized)
	if err != nil {
		return MonthWindow{}, fmt.Errorf("%w: %q", ErrInvalidMonthDescription, description)
	}
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return MonthWindow{Start: Date{Time: first}, End: Date{Time: last}}, nil
}

// Filter returns the filter selecting expenses due inside the window.
func (w MonthWindow) Filter() *ExpenseFilter {
	start, end := w.Start, w.End
	return &ExpenseFilter{InitialDate: &start, FinalDate: &end}
}

// Label renders the window back in its canonical description form.
func (w MonthWindow) Label() string {
	return w.Start.Format(monthDescriptionLayout)
}

// normalizeMonthDescription title-cases the month part so "JANUARY/2025"
// and "january/2025" parse like "January/2025".
func normalizeMonthDescription(s string) string {
	s = strings.TrimSpace(s)
	name, year, ok := strings.Cut(s, "/")
	if !ok || name == "" {
		return s
	}
	runes := []rune(strings.ToLower(name))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes) + "/" + year
}
