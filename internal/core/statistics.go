package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// StatisticsType selects the grouping key of a statistics report.
type StatisticsType string

const (
	StatisticsByPaymentType StatisticsType = "PAYMENT_TYPE"
	StatisticsByOrigin      StatisticsType = "ORIGIN"
)

// Labels of the synthetic entries appended after the groups.
const (
	TotalLabel     = "TOTAL"
	MoneyLeftLabel = "Money left"
)

var ErrInvalidStatisticsType = errors.New("invalid statistics type")

// ParseStatisticsType accepts PAYMENT_TYPE or ORIGIN in any letter case.
func ParseStatisticsType(s string) (StatisticsType, error) {
	switch t := StatisticsType(strings.ToUpper(strings.TrimSpace(s))); t {
	case StatisticsByPaymentType, StatisticsByOrigin:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatisticsType, s)
	}
}

// key returns the group label of e for this statistics type.
func (t StatisticsType) key(e Expense) string {
	if t == StatisticsByOrigin {
		return e.Origin.Name
	}
	return e.PaymentType.Name
}

// StatisticsEntry is one labelled amount of a report.
type StatisticsEntry struct {
	Label string
	Total Money
}

// Statistics is the result of grouping a month of expenses.
type Statistics struct {
	Type      StatisticsType
	Groups    []StatisticsEntry // descending by total
	Total     Money
	MoneyLeft Money
}

// Entries flattens the report: groups first, then TOTAL and Money left.
func (s Statistics) Entries() []StatisticsEntry {
	out := make([]StatisticsEntry, 0, len(s.Groups)+2)
	out = append(out, s.Groups...)
	out = append(out,
		StatisticsEntry{Label: TotalLabel, Total: s.Total},
		StatisticsEntry{Label: MoneyLeftLabel, Total: s.MoneyLeft},
	)
	return out
}

// BuildStatistics sums expenses per group and derives the money left from
// salary. Groups with equal totals keep the order in which they were first
// seen.
func BuildStatistics(expenses []Expense, kind StatisticsType, salary Money) Statistics {
	index := make(map[string]int)
	var groups []StatisticsEntry
	var total Money

	for _, e := range expenses {
		label := kind.key(e)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, StatisticsEntry{Label: label})
		}
		groups[i].Total = groups[i].Total.Add(e.Amount)
		total = total.Add(e.Amount)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Total.Cents > groups[b].Total.Cents
	})

	return Statistics{
		Type:      kind,
		Groups:    groups,
		Total:     total,
		MoneyLeft: salary.Sub(total),
	}
}
