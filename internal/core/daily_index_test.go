package core

import (
	"errors"
	"testing"
)

func TestDailyIndex(t *testing.T) {
	expenses := []Expense{expenseOf(5000, "a", "b"), expenseOf(5000, "a", "b")}
	got, err := DailyIndex(expenses, NewDate(2025, 1, 1), NewDate(2025, 1, 31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 100.00 / 30 = 3.333.. rounded up
	if got.StringFixed(2) != "3.34" {
		t.Fatalf("expected 3.34, got %s", got.StringFixed(2))
	}
}

func TestDailyIndexExactDivision(t *testing.T) {
	got, err := DailyIndex([]Expense{expenseOf(3000, "a", "b")}, NewDate(2025, 1, 1), NewDate(2025, 1, 31))
	if err != nil || got.StringFixed(2) != "1.00" {
		t.Fatalf("expected 1.00, got %s (err=%v)", got, err)
	}
}

func TestDailyIndexEmpty(t *testing.T) {
	got, err := DailyIndex(nil, NewDate(2025, 1, 31), NewDate(2025, 1, 1))
	if err != nil || !got.IsZero() {
		t.Fatalf("expected zero, got %s (err=%v)", got, err)
	}
}

func TestDailyIndexInvalidRange(t *testing.T) {
	expenses := []Expense{expenseOf(100, "a", "b")}
	for _, r := range [][2]Date{
		{NewDate(2025, 1, 31), NewDate(2025, 1, 1)},
		{NewDate(2025, 1, 1), NewDate(2025, 1, 1)},
	} {
		if _, err := DailyIndex(expenses, r[0], r[1]); !errors.Is(err, ErrInvalidDateRange) {
			t.Fatalf("expected ErrInvalidDateRange, got %v", err)
		}
	}
}
