package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// ExpenseRow is an expense joined with its origin and payment type.
type ExpenseRow struct {
	ID              int64
	AmountCents     int64
	OriginID        int64
	OriginName      string
	PaymentTypeID   int64
	PaymentTypeName string
	Date            string
	DueDate         string
	Description     string
	Installment     string
}

type NamedRow struct {
	ID   int64
	Name string
}

type AccountRow struct {
	ID          int64
	Name        string
	SalaryCents sql.NullInt64
}

type PendingSyncRow struct {
	ID           int64
	CreatedAt    sql.NullTime
	SyncAttempts int64
}

const selectExpenses = `SELECT e.id, e.amount_cents, o.id, o.name, p.id, p.name,
       e.date, e.due_date, e.description, e.installment
FROM expenses e
JOIN origins o ON o.id = e.origin_id
JOIN payment_types p ON p.id = e.payment_type_id`

const orderExpenses = ` ORDER BY e.due_date, e.id`

func scanExpense(row interface{ Scan(...any) error }) (ExpenseRow, error) {
	var r ExpenseRow
	err := row.Scan(&r.ID, &r.AmountCents, &r.OriginID, &r.OriginName,
		&r.PaymentTypeID, &r.PaymentTypeName, &r.Date, &r.DueDate,
		&r.Description, &r.Installment)
	return r, err
}

func (q *Queries) collectExpenses(ctx context.Context, query string, args ...any) ([]ExpenseRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExpenseRow
	for rows.Next() {
		r, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// FindExpenses runs the expense select with an optional WHERE clause.
func (q *Queries) FindExpenses(ctx context.Context, where string, args []any) ([]ExpenseRow, error) {
	return q.collectExpenses(ctx, selectExpenses+where+orderExpenses, args...)
}

func (q *Queries) FindExpensesPage(ctx context.Context, where string, args []any, limit, offset int) ([]ExpenseRow, error) {
	paged := append(append([]any{}, args...), limit, offset)
	return q.collectExpenses(ctx, selectExpenses+where+orderExpenses+` LIMIT ? OFFSET ?`, paged...)
}

func (q *Queries) CountExpenses(ctx context.Context, where string, args []any) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*)
FROM expenses e
JOIN origins o ON o.id = e.origin_id
JOIN payment_types p ON p.id = e.payment_type_id`+where, args...).Scan(&n)
	return n, err
}

func (q *Queries) GetExpense(ctx context.Context, id int64) (ExpenseRow, error) {
	return scanExpense(q.db.QueryRowContext(ctx, selectExpenses+` WHERE e.id = ?`, id))
}

type CreateExpenseParams struct {
	AmountCents   int64
	OriginID      int64
	PaymentTypeID int64
	Date          string
	DueDate       string
	Description   string
	Installment   string
}

const createExpense = `INSERT INTO expenses (
    amount_cents, origin_id, payment_type_id, date, due_date, description, installment
) VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createExpense,
		arg.AmountCents, arg.OriginID, arg.PaymentTypeID,
		arg.Date, arg.DueDate, arg.Description, arg.Installment,
	).Scan(&id)
	return id, err
}

func (q *Queries) getNamed(ctx context.Context, table, name string) (NamedRow, error) {
	var r NamedRow
	err := q.db.QueryRowContext(ctx, `SELECT id, name FROM `+table+` WHERE name = ? COLLATE NOCASE`, name).Scan(&r.ID, &r.Name)
	return r, err
}

func (q *Queries) createNamed(ctx context.Context, table, name string) (NamedRow, error) {
	var r NamedRow
	err := q.db.QueryRowContext(ctx, `INSERT INTO `+table+` (name) VALUES (?) RETURNING id, name`, name).Scan(&r.ID, &r.Name)
	return r, err
}

func (q *Queries) listNamed(ctx context.Context, table string) ([]NamedRow, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name FROM `+table+` ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []NamedRow
	for rows.Next() {
		var r NamedRow
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (q *Queries) GetOriginByName(ctx context.Context, name string) (NamedRow, error) {
	return q.getNamed(ctx, "origins", name)
}

func (q *Queries) CreateOrigin(ctx context.Context, name string) (NamedRow, error) {
	return q.createNamed(ctx, "origins", name)
}

func (q *Queries) ListOrigins(ctx context.Context) ([]NamedRow, error) {
	return q.listNamed(ctx, "origins")
}

func (q *Queries) GetPaymentTypeByName(ctx context.Context, name string) (NamedRow, error) {
	return q.getNamed(ctx, "payment_types", name)
}

func (q *Queries) CreatePaymentType(ctx context.Context, name string) (NamedRow, error) {
	return q.createNamed(ctx, "payment_types", name)
}

func (q *Queries) ListPaymentTypes(ctx context.Context) ([]NamedRow, error) {
	return q.listNamed(ctx, "payment_types")
}

const getAccount = `SELECT id, name, salary_cents FROM accounts WHERE id = 1`

func (q *Queries) GetAccount(ctx context.Context) (AccountRow, error) {
	var r AccountRow
	err := q.db.QueryRowContext(ctx, getAccount).Scan(&r.ID, &r.Name, &r.SalaryCents)
	return r, err
}

const updateAccountSalary = `UPDATE accounts SET salary_cents = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1`

func (q *Queries) UpdateAccountSalary(ctx context.Context, cents int64) error {
	_, err := q.db.ExecContext(ctx, updateAccountSalary, cents)
	return err
}

const getPendingSyncExpenses = `SELECT id, created_at, sync_attempts FROM expenses
WHERE sync_status = 'pending'
   OR (sync_status = 'error' AND sync_attempts < ? AND next_sync_at <= ?)
ORDER BY created_at, id
LIMIT ?`

type GetPendingSyncExpensesParams struct {
	MaxAttempts int64
	Now         int64
	Limit       int64
}

func (q *Queries) GetPendingSyncExpenses(ctx context.Context, arg GetPendingSyncExpensesParams) ([]PendingSyncRow, error) {
	rows, err := q.db.QueryContext(ctx, getPendingSyncExpenses, arg.MaxAttempts, arg.Now, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PendingSyncRow
	for rows.Next() {
		var r PendingSyncRow
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.SyncAttempts); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (q *Queries) MarkExpenseSynced(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `UPDATE expenses SET sync_status = 'synced', synced_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}

const markExpenseSyncError = `UPDATE expenses
SET sync_status = 'error', sync_attempts = sync_attempts + 1, next_sync_at = ?
WHERE id = ?`

func (q *Queries) MarkExpenseSyncError(ctx context.Context, id int64, nextSyncAt int64) error {
	_, err := q.db.ExecContext(ctx, markExpenseSyncError, nextSyncAt, id)
	return err
}
