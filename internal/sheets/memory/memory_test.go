package memory

import (
	"context"
	"testing"

	"economad/internal/core"
)

func expense(id int64) core.Expense {
	return core.Expense{
		ID:          id,
		Amount:      core.Money{Cents: 123},
		Origin:      core.Origin{Name: "Market"},
		PaymentType: core.PaymentType{Name: "Card"},
		Date:        core.NewDate(2025, 1, 1),
		DueDate:     core.NewDate(2025, 1, 1),
		Description: "t",
		Installment: core.SingleInstallment,
	}
}

func TestWriterAppend(t *testing.T) {
	w := New()
	ref, err := w.Append(context.Background(), expense(1))
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	ref, err = w.Append(context.Background(), expense(2))
	if err != nil || ref != "mem:2" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	rows := w.Rows()
	if len(rows) != 2 || rows[0][0] != "Market" || rows[0][1] != 1.23 {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestWriterAppendIsIdempotentPerExpense(t *testing.T) {
	w := New()
	w.Append(context.Background(), expense(5))
	ref, err := w.Append(context.Background(), expense(5))
	if err != nil || ref != "mem:1" || len(w.Rows()) != 1 {
		t.Fatalf("duplicate append wrote a row: ref=%q err=%v rows=%d", ref, err, len(w.Rows()))
	}
}

func TestWriterRejectsInvalid(t *testing.T) {
	w := New()
	if _, err := w.Append(context.Background(), core.Expense{}); err == nil {
		t.Fatal("expected validation error")
	}
}
