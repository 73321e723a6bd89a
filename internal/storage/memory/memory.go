// Package memory is an in-process storage.Store used for development and
// tests. Transactions are emulated by snapshotting the whole state.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"economad/internal/core"
	"economad/internal/storage"
)

var (
	_ storage.Store     = (*Store)(nil)
	_ storage.SyncStore = (*Store)(nil)
)

const (
	syncPending = "pending"
	syncDone    = "synced"
	syncError   = "error"
)

type record struct {
	expense   core.Expense
	status    string
	createdAt time.Time
	attempts  int
	retryAt   time.Time
}

type state struct {
	records      []record
	origins      []core.Origin
	paymentTypes []core.PaymentType
	salary       *core.Money
	nextID       int64
}

func (st *state) clone() state {
	c := state{
		records:      append([]record(nil), st.records...),
		origins:      append([]core.Origin(nil), st.origins...),
		paymentTypes: append([]core.PaymentType(nil), st.paymentTypes...),
		nextID:       st.nextID,
	}
	if st.salary != nil {
		salary := *st.salary
		c.salary = &salary
	}
	return c
}

type Store struct {
	mu sync.Mutex
	st state
}

// New returns a store seeded with the given origin and payment type names.
func New(origins, paymentTypes []string) *Store {
	s := &Store{}
	v := view{st: &s.st}
	for _, name := range dedupe(origins) {
		v.FindOrCreateOrigin(context.Background(), name)
	}
	for _, name := range dedupe(paymentTypes) {
		v.FindOrCreatePaymentType(context.Background(), name)
	}
	return s
}

// NewFromFiles seeds the store from seed_origins.txt and
// seed_payment_types.txt in base. Missing files fall back to defaults.
func NewFromFiles(base string) *Store {
	origins := readLines(filepath.Join(base, "seed_origins.txt"))
	paymentTypes := readLines(filepath.Join(base, "seed_payment_types.txt"))
	if len(paymentTypes) == 0 {
		paymentTypes = []string{"Cash", "Credit Card", "Debit Card"}
	}
	return New(origins, paymentTypes)
}

func (s *Store) do(fn func(v view) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(view{st: &s.st})
}

// InTx runs fn against the live state and restores the snapshot taken
// before it when fn fails.
func (s *Store) InTx(ctx context.Context, fn func(storage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.st.clone()
	if err := fn(view{st: &s.st}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) FindExpenses(ctx context.Context, filter *core.ExpenseFilter) (out []core.Expense, err error) {
	err = s.do(func(v view) error {
		out, err = v.FindExpenses(ctx, filter)
		return err
	})
	return out, err
}

func (s *Store) FindExpensePage(ctx context.Context, filter *core.ExpenseFilter, page core.PageRequest) (out core.Page[core.Expense], err error) {
	err = s.do(func(v view) error {
		out, err = v.FindExpensePage(ctx, filter, page)
		return err
	})
	return out, err
}

func (s *Store) GetExpense(ctx context.Context, id int64) (out core.Expense, err error) {
	err = s.do(func(v view) error {
		out, err = v.GetExpense(ctx, id)
		return err
	})
	return out, err
}

func (s *Store) SaveExpense(ctx context.Context, e *core.Expense) error {
	return s.do(func(v view) error { return v.SaveExpense(ctx, e) })
}

func (s *Store) FindOrCreateOrigin(ctx context.Context, name string) (out core.Origin, err error) {
	err = s.do(func(v view) error {
		out, err = v.FindOrCreateOrigin(ctx, name)
		return err
	})
	return out, err
}

func (s *Store) FindOrCreatePaymentType(ctx context.Context, name string) (out core.PaymentType, err error) {
	err = s.do(func(v view) error {
		out, err = v.FindOrCreatePaymentType(ctx, name)
		return err
	})
	return out, err
}

func (s *Store) ListOrigins(ctx context.Context) (out []core.Origin, err error) {
	err = s.do(func(v view) error {
		out, err = v.ListOrigins(ctx)
		return err
	})
	return out, err
}

func (s *Store) ListPaymentTypes(ctx context.Context) (out []core.PaymentType, err error) {
	err = s.do(func(v view) error {
		out, err = v.ListPaymentTypes(ctx)
		return err
	})
	return out, err
}

func (s *Store) GetAccount(ctx context.Context) (out core.Account, err error) {
	err = s.do(func(v view) error {
		out, err = v.GetAccount(ctx)
		return err
	})
	return out, err
}

func (s *Store) SetSalary(ctx context.Context, salary core.Money) (out core.Account, err error) {
	err = s.do(func(v view) error {
		out, err = v.SetSalary(ctx, salary)
		return err
	})
	return out, err
}

// GetPendingSyncExpenses returns up to limit expenses never synced or due
// for a retry, oldest first.
func (s *Store) GetPendingSyncExpenses(_ context.Context, limit int) ([]storage.PendingSyncExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var out []storage.PendingSyncExpense
	for _, r := range s.st.records {
		if len(out) >= limit {
			break
		}
		retry := r.status == syncError && r.attempts < storage.MaxSyncAttempts && !r.retryAt.After(now)
		if r.status == syncPending || retry {
			out = append(out, storage.PendingSyncExpense{ID: r.expense.ID, CreatedAt: r.createdAt, Attempts: r.attempts})
		}
	}
	return out, nil
}

func (s *Store) MarkSynced(_ context.Context, id int64) error {
	return s.update(id, func(r *record) { r.status = syncDone })
}

func (s *Store) MarkSyncError(_ context.Context, id int64, retryAt time.Time) error {
	return s.update(id, func(r *record) {
		r.status = syncError
		r.attempts++
		r.retryAt = retryAt
	})
}

func (s *Store) update(id int64, fn func(*record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.st.records {
		if s.st.records[i].expense.ID == id {
			fn(&s.st.records[i])
			return nil
		}
	}
	return fmt.Errorf("expense %d: %w", id, storage.ErrNotFound)
}

// view implements storage.Tx over a state the caller has locked.
type view struct {
	st *state
}

func (v view) FindExpenses(_ context.Context, filter *core.ExpenseFilter) ([]core.Expense, error) {
	var out []core.Expense
	for _, r := range v.st.records {
		if filter.Matches(r.expense) {
			out = append(out, r.expense)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate.Time) {
			return out[i].DueDate.Before(out[j].DueDate.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (v view) FindExpensePage(ctx context.Context, filter *core.ExpenseFilter, page core.PageRequest) (core.Page[core.Expense], error) {
	page = page.Normalize()
	all, _ := v.FindExpenses(ctx, filter)
	start := min(page.Offset(), len(all))
	end := min(start+page.Size, len(all))
	return core.NewPage(append([]core.Expense(nil), all[start:end]...), page, int64(len(all))), nil
}

func (v view) GetExpense(_ context.Context, id int64) (core.Expense, error) {
	for _, r := range v.st.records {
		if r.expense.ID == id {
			return r.expense, nil
		}
	}
	return core.Expense{}, fmt.Errorf("expense %d: %w", id, storage.ErrNotFound)
}

func (v view) SaveExpense(_ context.Context, e *core.Expense) error {
	if e.Origin.ID == 0 || e.PaymentType.ID == 0 {
		return fmt.Errorf("save expense: origin and payment type must be persisted first")
	}
	v.st.nextID++
	e.ID = v.st.nextID
	v.st.records = append(v.st.records, record{expense: *e, status: syncPending, createdAt: time.Now()})
	return nil
}

func (v view) FindOrCreateOrigin(_ context.Context, name string) (core.Origin, error) {
	for _, o := range v.st.origins {
		if strings.EqualFold(o.Name, name) {
			return o, nil
		}
	}
	o := core.Origin{ID: int64(len(v.st.origins) + 1), Name: name}
	v.st.origins = append(v.st.origins, o)
	return o, nil
}

func (v view) FindOrCreatePaymentType(_ context.Context, name string) (core.PaymentType, error) {
	for _, p := range v.st.paymentTypes {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	p := core.PaymentType{ID: int64(len(v.st.paymentTypes) + 1), Name: name}
	v.st.paymentTypes = append(v.st.paymentTypes, p)
	return p, nil
}

func (v view) ListOrigins(context.Context) ([]core.Origin, error) {
	out := append([]core.Origin{}, v.st.origins...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (v view) ListPaymentTypes(context.Context) ([]core.PaymentType, error) {
	out := append([]core.PaymentType{}, v.st.paymentTypes...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (v view) GetAccount(context.Context) (core.Account, error) {
	account := core.Account{ID: 1, Name: "default"}
	if v.st.salary != nil {
		salary := *v.st.salary
		account.Salary = &salary
	}
	return account, nil
}

func (v view) SetSalary(ctx context.Context, salary core.Money) (core.Account, error) {
	if err := salary.Validate(); err != nil {
		return core.Account{}, err
	}
	v.st.salary = &salary
	return v.GetAccount(ctx)
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

// dedupe drops blanks and case-insensitive repeats, keeping input order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
