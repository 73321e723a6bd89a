package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"economad/internal/core"

	_ "modernc.org/sqlite"
)

var (
	_ Store     = (*SQLiteRepository)(nil)
	_ SyncStore = (*SQLiteRepository)(nil)
)

// SQLiteRepository implements Store and SyncStore on a SQLite file.
type SQLiteRepository struct {
	queryStore
	db  *sql.DB
	now func() time.Time
}

// queryStore implements Tx on top of a Queries bound to either the database
// or an open transaction.
type queryStore struct {
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		queryStore: queryStore{queries: New(db)},
		db:         db,
		now:        time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) InTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(queryStore{queries: r.queries.WithTx(tx)}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func toExpense(row ExpenseRow) (core.Expense, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d date %q: %w", row.ID, row.Date, err)
	}
	due, err := core.ParseDate(row.DueDate)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d due date %q: %w", row.ID, row.DueDate, err)
	}
	inst, err := core.ParseInstallment(row.Installment)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d: %w", row.ID, err)
	}
	return core.Expense{
		ID:          row.ID,
		Amount:      core.Money{Cents: row.AmountCents},
		Origin:      core.Origin{ID: row.OriginID, Name: row.OriginName},
		PaymentType: core.PaymentType{ID: row.PaymentTypeID, Name: row.PaymentTypeName},
		Date:        date,
		DueDate:     due,
		Description: row.Description,
		Installment: inst,
	}, nil
}

func toExpenses(rows []ExpenseRow) ([]core.Expense, error) {
	expenses := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		e, err := toExpense(row)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, nil
}

func (s queryStore) FindExpenses(ctx context.Context, filter *core.ExpenseFilter) ([]core.Expense, error) {
	where, args := expenseWhere(filter)
	rows, err := s.queries.FindExpenses(ctx, where, args)
	if err != nil {
		return nil, fmt.Errorf("find expenses: %w", err)
	}
	return toExpenses(rows)
}

func (s queryStore) FindExpensePage(ctx context.Context, filter *core.ExpenseFilter, page core.PageRequest) (core.Page[core.Expense], error) {
	page = page.Normalize()
	where, args := expenseWhere(filter)

	total, err := s.queries.CountExpenses(ctx, where, args)
	if err != nil {
		return core.Page[core.Expense]{}, fmt.Errorf("count expenses: %w", err)
	}
	rows, err := s.queries.FindExpensesPage(ctx, where, args, page.Size, page.Offset())
	if err != nil {
		return core.Page[core.Expense]{}, fmt.Errorf("find expense page: %w", err)
	}
	expenses, err := toExpenses(rows)
	if err != nil {
		return core.Page[core.Expense]{}, err
	}
	return core.NewPage(expenses, page, total), nil
}

func (s queryStore) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row, err := s.queries.GetExpense(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense by id: %w", err)
	}
	return toExpense(row)
}

func (s queryStore) SaveExpense(ctx context.Context, e *core.Expense) error {
	if e.Origin.ID == 0 || e.PaymentType.ID == 0 {
		return fmt.Errorf("save expense: origin and payment type must be persisted first")
	}
	id, err := s.queries.CreateExpense(ctx, CreateExpenseParams{
		AmountCents:   e.Amount.Cents,
		OriginID:      e.Origin.ID,
		PaymentTypeID: e.PaymentType.ID,
		Date:          e.Date.String(),
		DueDate:       e.DueDate.String(),
		Description:   e.Description,
		Installment:   e.Installment.String(),
	})
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	e.ID = id

	slog.DebugContext(ctx, "Expense saved to SQLite",
		"id", id,
		"amount_cents", e.Amount.Cents,
		"due_date", e.DueDate.String(),
		"installment", e.Installment.String())
	return nil
}

func (s queryStore) FindOrCreateOrigin(ctx context.Context, name string) (core.Origin, error) {
	row, err := findOrCreate(ctx, name, s.queries.GetOriginByName, s.queries.CreateOrigin)
	if err != nil {
		return core.Origin{}, fmt.Errorf("origin %q: %w", name, err)
	}
	return core.Origin{ID: row.ID, Name: row.Name}, nil
}

func (s queryStore) FindOrCreatePaymentType(ctx context.Context, name string) (core.PaymentType, error) {
	row, err := findOrCreate(ctx, name, s.queries.GetPaymentTypeByName, s.queries.CreatePaymentType)
	if err != nil {
		return core.PaymentType{}, fmt.Errorf("payment type %q: %w", name, err)
	}
	return core.PaymentType{ID: row.ID, Name: row.Name}, nil
}

func findOrCreate(ctx context.Context, name string,
	get, create func(context.Context, string) (NamedRow, error)) (NamedRow, error) {
	row, err := get(ctx, name)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return NamedRow{}, err
	}
	return create(ctx, name)
}

func (s queryStore) ListOrigins(ctx context.Context) ([]core.Origin, error) {
	rows, err := s.queries.ListOrigins(ctx)
	if err != nil {
		return nil, fmt.Errorf("list origins: %w", err)
	}
	origins := make([]core.Origin, len(rows))
	for i, r := range rows {
		origins[i] = core.Origin{ID: r.ID, Name: r.Name}
	}
	return origins, nil
}

func (s queryStore) ListPaymentTypes(ctx context.Context) ([]core.PaymentType, error) {
	rows, err := s.queries.ListPaymentTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payment types: %w", err)
	}
	types := make([]core.PaymentType, len(rows))
	for i, r := range rows {
		types[i] = core.PaymentType{ID: r.ID, Name: r.Name}
	}
	return types, nil
}

func (s queryStore) GetAccount(ctx context.Context) (core.Account, error) {
	row, err := s.queries.GetAccount(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, fmt.Errorf("account: %w", ErrNotFound)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	account := core.Account{ID: row.ID, Name: row.Name}
	if row.SalaryCents.Valid {
		account.Salary = &core.Money{Cents: row.SalaryCents.Int64}
	}
	return account, nil
}

func (s queryStore) SetSalary(ctx context.Context, salary core.Money) (core.Account, error) {
	if err := salary.Validate(); err != nil {
		return core.Account{}, err
	}
	if err := s.queries.UpdateAccountSalary(ctx, salary.Cents); err != nil {
		return core.Account{}, fmt.Errorf("update salary: %w", err)
	}
	return s.GetAccount(ctx)
}

// GetPendingSyncExpenses returns expenses that were never pushed to the
// sheet, plus failed ones whose retry time has come.
func (r *SQLiteRepository) GetPendingSyncExpenses(ctx context.Context, limit int) ([]PendingSyncExpense, error) {
	rows, err := r.queries.GetPendingSyncExpenses(ctx, GetPendingSyncExpensesParams{
		MaxAttempts: MaxSyncAttempts,
		Now:         r.now().Unix(),
		Limit:       int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("get pending sync expenses: %w", err)
	}

	expenses := make([]PendingSyncExpense, len(rows))
	for i, e := range rows {
		expenses[i] = PendingSyncExpense{
			ID:        e.ID,
			CreatedAt: e.CreatedAt.Time,
			Attempts:  int(e.SyncAttempts),
		}
	}
	return expenses, nil
}

// MarkSynced marks an expense as successfully synced
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if err := r.queries.MarkExpenseSynced(ctx, id); err != nil {
		return fmt.Errorf("mark expense synced: %w", err)
	}

	slog.InfoContext(ctx, "Expense marked as synced", "id", id)
	return nil
}

// MarkSyncError counts a failed sync and schedules the next attempt.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64, retryAt time.Time) error {
	if err := r.queries.MarkExpenseSyncError(ctx, id, retryAt.Unix()); err != nil {
		return fmt.Errorf("mark expense sync error: %w", err)
	}

	slog.WarnContext(ctx, "Expense marked with sync error", "id", id, "retry_at", retryAt)
	return nil
}
