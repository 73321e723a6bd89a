package storage

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"economad/internal/core"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func saveTestExpense(t *testing.T, tx Tx, cents int64, origin, payment string, due core.Date, desc string) core.Expense {
	t.Helper()
	ctx := context.Background()
	o, err := tx.FindOrCreateOrigin(ctx, origin)
	require.NoError(t, err)
	p, err := tx.FindOrCreatePaymentType(ctx, payment)
	require.NoError(t, err)
	e := core.Expense{
		Amount:      core.Money{Cents: cents},
		Origin:      o,
		PaymentType: p,
		Date:        due,
		DueDate:     due,
		Description: desc,
		Installment: core.SingleInstallment,
	}
	require.NoError(t, tx.SaveExpense(ctx, &e))
	return e
}

func TestSaveAndGetExpense(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	saved := saveTestExpense(t, repo, 1250, "Market", "Card", core.NewDate(2025, 3, 15), "groceries")
	require.NotZero(t, saved.ID)

	got, err := repo.GetExpense(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Amount, got.Amount)
	assert.Equal(t, "Market", got.Origin.Name)
	assert.Equal(t, "Card", got.PaymentType.Name)
	assert.Equal(t, "2025-03-15", got.DueDate.String())
	assert.Equal(t, core.SingleInstallment, got.Installment)

	_, err = repo.GetExpense(ctx, saved.ID+100)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFindOrCreateIsCaseInsensitive(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first, err := repo.FindOrCreateOrigin(ctx, "Market")
	require.NoError(t, err)
	again, err := repo.FindOrCreateOrigin(ctx, "market")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, err = repo.FindOrCreateOrigin(ctx, "Fuel")
	require.NoError(t, err)
	origins, err := repo.ListOrigins(ctx)
	require.NoError(t, err)
	require.Len(t, origins, 2)
	assert.Equal(t, "Fuel", origins[0].Name)
}

func TestFindExpensesFilter(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	jan := saveTestExpense(t, repo, 100, "Market", "Card", core.NewDate(2025, 1, 31), "Weekly Groceries")
	saveTestExpense(t, repo, 200, "Fuel", "Cash", core.NewDate(2025, 2, 1), "diesel")
	janFirst := saveTestExpense(t, repo, 300, "Fuel", "Card", core.NewDate(2025, 1, 1), "petrol")

	all, err := repo.FindExpenses(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, janFirst.ID, all[0].ID)

	w, err := core.ParseMonthWindow("January/2025")
	require.NoError(t, err)
	inJan, err := repo.FindExpenses(ctx, w.Filter())
	require.NoError(t, err)
	require.Len(t, inJan, 2)
	assert.Equal(t, janFirst.ID, inJan[0].ID)
	assert.Equal(t, jan.ID, inJan[1].ID)

	byDesc, err := repo.FindExpenses(ctx, &core.ExpenseFilter{Description: "groceries"})
	require.NoError(t, err)
	require.Len(t, byDesc, 1)
	assert.Equal(t, jan.ID, byDesc[0].ID)

	byNames, err := repo.FindExpenses(ctx, &core.ExpenseFilter{OriginName: "fuel", PaymentTypeName: "CARD"})
	require.NoError(t, err)
	require.Len(t, byNames, 1)
	assert.Equal(t, janFirst.ID, byNames[0].ID)
}

func TestFindExpensePage(t *testing.T) {
	repo := newTestRepository(t)
	for day := 1; day <= 5; day++ {
		saveTestExpense(t, repo, int64(day*100), "Market", "Card", core.NewDate(2025, 1, day), "")
	}

	page, err := repo.FindExpensePage(context.Background(), nil, core.PageRequest{Number: 1, Size: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "2025-01-03", page.Items[0].DueDate.String())
}

func TestFindExpensePageHugeNumberIsEmpty(t *testing.T) {
	repo := newTestRepository(t)
	saveTestExpense(t, repo, 100, "Market", "Card", core.NewDate(2025, 1, 1), "")

	page, err := repo.FindExpensePage(context.Background(), nil, core.PageRequest{Number: math.MaxInt / 50, Size: 100})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.EqualValues(t, 1, page.TotalElements)
	assert.Equal(t, core.MaxPageNumber, page.Number)
}

func TestInTxRollsBack(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.InTx(ctx, func(tx Tx) error {
		saveTestExpense(t, tx, 100, "Market", "Card", core.NewDate(2025, 1, 1), "")
		return boom
	})
	require.ErrorIs(t, err, boom)

	all, err := repo.FindExpenses(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)

	err = repo.InTx(ctx, func(tx Tx) error {
		saveTestExpense(t, tx, 100, "Market", "Card", core.NewDate(2025, 1, 1), "")
		return nil
	})
	require.NoError(t, err)
	all, err = repo.FindExpenses(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAccountSalary(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	acc, err := repo.GetAccount(ctx)
	require.NoError(t, err)
	assert.False(t, acc.HasSalary())

	acc, err = repo.SetSalary(ctx, core.Money{Cents: 300000})
	require.NoError(t, err)
	require.True(t, acc.HasSalary())
	assert.EqualValues(t, 300000, acc.Salary.Cents)

	_, err = repo.SetSalary(ctx, core.Money{Cents: -1})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestSyncBookkeeping(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	a := saveTestExpense(t, repo, 100, "Market", "Card", core.NewDate(2025, 1, 1), "")
	b := saveTestExpense(t, repo, 200, "Market", "Card", core.NewDate(2025, 1, 2), "")

	pending, err := repo.GetPendingSyncExpenses(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	require.NoError(t, repo.MarkSynced(ctx, a.ID))
	require.NoError(t, repo.MarkSyncError(ctx, b.ID, time.Now().Add(time.Hour)))

	pending, err = repo.GetPendingSyncExpenses(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "retry is not due yet")

	repo.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	pending, err = repo.GetPendingSyncExpenses(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, b.ID, pending[0].ID)
	assert.Equal(t, 1, pending[0].Attempts)
}

func TestSyncErrorParkedAfterMaxAttempts(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	e := saveTestExpense(t, repo, 100, "Market", "Card", core.NewDate(2025, 1, 1), "")

	past := time.Now().Add(-time.Minute)
	for i := 0; i < MaxSyncAttempts; i++ {
		require.NoError(t, repo.MarkSyncError(ctx, e.ID, past))
	}
	pending, err := repo.GetPendingSyncExpenses(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
