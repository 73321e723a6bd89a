package core

import (
	"errors"
	"math"
	"testing"
)

func TestParseInstallment(t *testing.T) {
	cases := []struct {
		in   string
		want Installment
		ok   bool
	}{
		{"1/3", Installment{1, 3}, true},
		{" 2/2 ", Installment{2, 2}, true},
		{"a/3", Installment{}, false},
		{"3", Installment{}, false},
		{"0/2", Installment{}, false},
		{"4/3", Installment{}, false},
		{"1/3/4", Installment{}, false},
		{"360/360", Installment{360, 360}, true},
		{"1/361", Installment{}, false},
	}
	for _, tc := range cases {
		got, err := ParseInstallment(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.want, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidInstallment) {
			t.Fatalf("%q expected ErrInvalidInstallment, got %v", tc.in, err)
		}
	}
}

func TestExpandInstallments(t *testing.T) {
	first := validExpense()
	first.ID = 42
	first.DueDate = NewDate(2025, 1, 10)
	first.Installment = Installment{1, 3}

	siblings, err := ExpandInstallments(first)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(siblings) != 2 {
		t.Fatalf("expected 2 siblings, got %d", len(siblings))
	}
	want := []struct{ inst, due string }{
		{"2/3", "2025-02-10"},
		{"3/3", "2025-03-10"},
	}
	for i, s := range siblings {
		if s.Installment.String() != want[i].inst || s.DueDate.String() != want[i].due {
			t.Fatalf("sibling %d: got %s due %s", i, s.Installment, s.DueDate)
		}
		if s.ID != 0 {
			t.Fatalf("sibling %d copied the identity", i)
		}
		if s.Amount != first.Amount || s.Origin != first.Origin || s.Date != first.Date || s.Description != first.Description {
			t.Fatalf("sibling %d does not share the original fields: %+v", i, s)
		}
	}
}

func TestExpandInstallmentsMonthEnd(t *testing.T) {
	first := validExpense()
	first.DueDate = NewDate(2025, 1, 31)
	first.Installment = Installment{1, 3}

	siblings, err := ExpandInstallments(first)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Offsets are computed from the original due date, not chained.
	if siblings[0].DueDate.String() != "2025-02-28" || siblings[1].DueDate.String() != "2025-03-31" {
		t.Fatalf("unexpected due dates %s, %s", siblings[0].DueDate, siblings[1].DueDate)
	}
}

func TestExpandInstallmentsSingle(t *testing.T) {
	siblings, err := ExpandInstallments(validExpense())
	if err != nil || len(siblings) != 0 {
		t.Fatalf("expected no siblings, got %d (err=%v)", len(siblings), err)
	}
}

func TestExpandInstallmentsRejectsNonFirst(t *testing.T) {
	e := validExpense()
	e.Installment = Installment{2, 3}
	if _, err := ExpandInstallments(e); !errors.Is(err, ErrInvalidInstallment) {
		t.Fatalf("expected ErrInvalidInstallment, got %v", err)
	}
}

func TestExpandInstallmentsRejectsOversizedPlan(t *testing.T) {
	for _, total := range []int{MaxInstallments + 1, 50_000_000, math.MaxInt} {
		e := validExpense()
		e.Installment = Installment{1, total}
		if _, err := ExpandInstallments(e); !errors.Is(err, ErrInvalidInstallment) {
			t.Fatalf("total %d: expected ErrInvalidInstallment, got %v", total, err)
		}
		if _, err := FirstInstallment(total); !errors.Is(err, ErrInvalidInstallment) {
			t.Fatalf("total %d: FirstInstallment expected ErrInvalidInstallment, got %v", total, err)
		}
	}
}

func TestExpandInstallmentsLargestPlan(t *testing.T) {
	first := validExpense()
	first.DueDate = NewDate(2025, 1, 31)
	first.Installment = Installment{1, MaxInstallments}

	siblings, err := ExpandInstallments(first)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(siblings) != MaxInstallments-1 {
		t.Fatalf("expected %d siblings, got %d", MaxInstallments-1, len(siblings))
	}
	last := siblings[len(siblings)-1]
	if last.DueDate.String() != "2054-12-31" || last.Installment.String() != "360/360" {
		t.Fatalf("unexpected last installment %s due %s", last.Installment, last.DueDate)
	}
}
