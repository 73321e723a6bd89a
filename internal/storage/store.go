package storage

import (
	"context"
	"errors"
	"time"

	"economad/internal/core"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ExpenseStore is the expense half of a unit of work.
type ExpenseStore interface {
	// FindExpenses returns every expense matching filter ordered by due date
	// then ID. A nil filter matches everything.
	FindExpenses(ctx context.Context, filter *core.ExpenseFilter) ([]core.Expense, error)
	FindExpensePage(ctx context.Context, filter *core.ExpenseFilter, page core.PageRequest) (core.Page[core.Expense], error)
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	// SaveExpense inserts e and sets its ID.
	SaveExpense(ctx context.Context, e *core.Expense) error
	FindOrCreateOrigin(ctx context.Context, name string) (core.Origin, error)
	FindOrCreatePaymentType(ctx context.Context, name string) (core.PaymentType, error)
	ListOrigins(ctx context.Context) ([]core.Origin, error)
	ListPaymentTypes(ctx context.Context) ([]core.PaymentType, error)
}

// AccountStore reads and updates the account settings.
type AccountStore interface {
	GetAccount(ctx context.Context) (core.Account, error)
	SetSalary(ctx context.Context, salary core.Money) (core.Account, error)
}

// Tx is everything a service can do inside one transaction.
type Tx interface {
	ExpenseStore
	AccountStore
}

// Store is a Tx bound to the database plus transaction control.
type Store interface {
	Tx
	// InTx runs fn in a transaction, committing when it returns nil.
	InTx(ctx context.Context, fn func(Tx) error) error
	Ping(ctx context.Context) error
	Close() error
}

// SyncStore is the bookkeeping used by the spreadsheet sync worker.
type SyncStore interface {
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	GetPendingSyncExpenses(ctx context.Context, limit int) ([]PendingSyncExpense, error)
	MarkSynced(ctx context.Context, id int64) error
	// MarkSyncError records a failed attempt; the expense is offered again
	// by GetPendingSyncExpenses once retryAt has passed, until it has
	// failed MaxSyncAttempts times.
	MarkSyncError(ctx context.Context, id int64, retryAt time.Time) error
}

// MaxSyncAttempts is how many failed appends an expense may accumulate
// before the sweep stops retrying it.
const MaxSyncAttempts = 8

// PendingSyncExpense is an expense the sweep should push: never attempted,
// or failed and due for a retry.
type PendingSyncExpense struct {
	ID        int64
	CreatedAt time.Time
	Attempts  int
}
