package core

import "testing"

func expenseOf(cents int64, origin, payment string) Expense {
	e := validExpense()
	e.Amount = Money{Cents: cents}
	e.Origin = Origin{Name: origin}
	e.PaymentType = PaymentType{Name: payment}
	return e
}

func TestBuildStatisticsByPaymentType(t *testing.T) {
	expenses := []Expense{
		expenseOf(1000, "Market", "Card"),
		expenseOf(500, "Market", "Cash"),
		expenseOf(2500, "Fuel", "Card"),
	}
	stats := BuildStatistics(expenses, StatisticsByPaymentType, Money{Cents: 10000})

	want := []StatisticsEntry{
		{"Card", Money{3500}},
		{"Cash", Money{500}},
		{TotalLabel, Money{4000}},
		{MoneyLeftLabel, Money{6000}},
	}
	got := stats.Entries()
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestBuildStatisticsTiesKeepEncounterOrder(t *testing.T) {
	expenses := []Expense{
		expenseOf(100, "B", "x"),
		expenseOf(300, "C", "x"),
		expenseOf(100, "A", "x"),
	}
	stats := BuildStatistics(expenses, StatisticsByOrigin, Money{Cents: 1000})
	labels := []string{}
	for _, g := range stats.Groups {
		labels = append(labels, g.Label)
	}
	if len(labels) != 3 || labels[0] != "C" || labels[1] != "B" || labels[2] != "A" {
		t.Fatalf("unexpected order %v", labels)
	}
}

func TestBuildStatisticsEmptyAndOverspent(t *testing.T) {
	stats := BuildStatistics(nil, StatisticsByOrigin, Money{Cents: 1000})
	entries := stats.Entries()
	if len(entries) != 2 || entries[0].Total.Cents != 0 || entries[1].Total.Cents != 1000 {
		t.Fatalf("unexpected entries %+v", entries)
	}

	stats = BuildStatistics([]Expense{expenseOf(1500, "A", "x")}, StatisticsByOrigin, Money{Cents: 1000})
	if stats.MoneyLeft.Cents != -500 {
		t.Fatalf("expected -500, got %d", stats.MoneyLeft.Cents)
	}
}

func TestParseStatisticsType(t *testing.T) {
	if k, err := ParseStatisticsType("origin"); err != nil || k != StatisticsByOrigin {
		t.Fatalf("unexpected %v, %v", k, err)
	}
	if k, err := ParseStatisticsType("PAYMENT_TYPE"); err != nil || k != StatisticsByPaymentType {
		t.Fatalf("unexpected %v, %v", k, err)
	}
	if _, err := ParseStatisticsType("category"); err == nil {
		t.Fatal("expected error")
	}
}
