package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"economad/internal/core"
	"economad/internal/metrics"
	"economad/internal/storage"
	"economad/internal/worksheet"
)

// SyncPublisher announces committed expenses to the spreadsheet sync worker.
type SyncPublisher interface {
	PublishExpenseSync(ctx context.Context, id int64) error
}

// ExpenseService runs every expense use case inside one store transaction
// and publishes sync messages for what it commits.
type ExpenseService struct {
	store     storage.Store
	publisher SyncPublisher
	metrics   *metrics.Metrics
}

// NewExpenseService wires the service. publisher and m may be nil.
func NewExpenseService(store storage.Store, publisher SyncPublisher, m *metrics.Metrics) *ExpenseService {
	return &ExpenseService{
		store:     store,
		publisher: publisher,
		metrics:   m,
	}
}

// ListAll returns one page of the expenses matching filter.
func (s *ExpenseService) ListAll(ctx context.Context, filter *core.ExpenseFilter, page core.PageRequest) (core.Page[core.Expense], error) {
	var out core.Page[core.Expense]
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		out, err = tx.FindExpensePage(ctx, filter, page)
		return err
	})
	if err != nil {
		return core.Page[core.Expense]{}, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

// Create stores the expense described by form together with its remaining
// installments and returns everything saved, first installment first.
func (s *ExpenseService) Create(ctx context.Context, form core.ExpenseForm) ([]core.Expense, error) {
	first, err := form.ToExpense()
	if err != nil {
		return nil, err
	}

	var saved []core.Expense
	err = s.store.InTx(ctx, func(tx storage.Tx) error {
		saved = saved[:0]
		origin, err := tx.FindOrCreateOrigin(ctx, first.Origin.Name)
		if err != nil {
			return err
		}
		paymentType, err := tx.FindOrCreatePaymentType(ctx, first.PaymentType.Name)
		if err != nil {
			return err
		}
		e := first
		e.Origin, e.PaymentType = origin, paymentType

		if err := tx.SaveExpense(ctx, &e); err != nil {
			return err
		}
		saved = append(saved, e)

		siblings, err := core.ExpandInstallments(e)
		if err != nil {
			return err
		}
		for i := range siblings {
			if err := tx.SaveExpense(ctx, &siblings[i]); err != nil {
				return fmt.Errorf("installment %s: %w", siblings[i].Installment, err)
			}
			saved = append(saved, siblings[i])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}

	s.recordCreated(saved)
	for _, e := range saved {
		s.publishSync(ctx, e.ID)
	}
	return saved, nil
}

// ListStatisticsByMonth groups the expenses due in month by kind. The
// account salary must be set.
func (s *ExpenseService) ListStatisticsByMonth(ctx context.Context, account *core.Account, month string, kind core.StatisticsType) (core.Statistics, error) {
	if !account.HasSalary() {
		return core.Statistics{}, core.ErrSalaryNotSet
	}
	window, err := core.ParseMonthWindow(month)
	if err != nil {
		return core.Statistics{}, err
	}

	var expenses []core.Expense
	err = s.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		expenses, err = tx.FindExpenses(ctx, window.Filter())
		return err
	})
	if err != nil {
		return core.Statistics{}, fmt.Errorf("statistics for %s: %w", window.Label(), err)
	}
	return core.BuildStatistics(expenses, kind, *account.Salary), nil
}

// GenerateMonthlyWorksheet exports the expenses due in month as .xlsx. An
// empty month exports every expense. The account salary must be set.
func (s *ExpenseService) GenerateMonthlyWorksheet(ctx context.Context, account *core.Account, month string) ([]byte, error) {
	if !account.HasSalary() {
		return nil, core.ErrSalaryNotSet
	}

	var filter *core.ExpenseFilter
	if month != "" {
		window, err := core.ParseMonthWindow(month)
		if err != nil {
			return nil, err
		}
		filter = window.Filter()
	}

	var expenses []core.Expense
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		expenses, err = tx.FindExpenses(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("worksheet expenses: %w", err)
	}

	data, err := worksheet.Build(expenses)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to build worksheet", "month", month, "rows", len(expenses), "error", err)
		return nil, err
	}
	return data, nil
}

// CalculateRelativeDailyIndex averages the expenses due between initial and
// final over the days separating them.
func (s *ExpenseService) CalculateRelativeDailyIndex(ctx context.Context, initial, final core.Date) (decimal.Decimal, error) {
	if final.Before(initial.Time) {
		return decimal.Zero, fmt.Errorf("%w: %s is before %s", core.ErrInvalidDateRange, final, initial)
	}

	var expenses []core.Expense
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		expenses, err = tx.FindExpenses(ctx, &core.ExpenseFilter{InitialDate: &initial, FinalDate: &final})
		return err
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("daily index expenses: %w", err)
	}
	return core.DailyIndex(expenses, initial, final)
}

func (s *ExpenseService) Account(ctx context.Context) (core.Account, error) {
	account, err := s.store.GetAccount(ctx)
	if err != nil {
		return core.Account{}, fmt.Errorf("load account: %w", err)
	}
	return account, nil
}

// SetSalary replaces the account salary, which must be positive.
func (s *ExpenseService) SetSalary(ctx context.Context, salary core.Money) (core.Account, error) {
	if err := salary.Validate(); err != nil {
		return core.Account{}, err
	}
	var account core.Account
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		account, err = tx.SetSalary(ctx, salary)
		return err
	})
	if err != nil {
		return core.Account{}, fmt.Errorf("set salary: %w", err)
	}
	slog.InfoContext(ctx, "Salary updated", "salary", salary.String())
	return account, nil
}

// SeedSalary sets salary only when the account has none yet.
func (s *ExpenseService) SeedSalary(ctx context.Context, salary core.Money) error {
	account, err := s.Account(ctx)
	if err != nil {
		return err
	}
	if account.HasSalary() {
		return nil
	}
	_, err = s.SetSalary(ctx, salary)
	return err
}

func (s *ExpenseService) ListOrigins(ctx context.Context) ([]core.Origin, error) {
	origins, err := s.store.ListOrigins(ctx)
	if err != nil {
		return nil, fmt.Errorf("list origins: %w", err)
	}
	return origins, nil
}

func (s *ExpenseService) ListPaymentTypes(ctx context.Context) ([]core.PaymentType, error) {
	types, err := s.store.ListPaymentTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payment types: %w", err)
	}
	return types, nil
}

// Ping reports whether the store is reachable.
func (s *ExpenseService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *ExpenseService) publishSync(ctx context.Context, id int64) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping sync message", "id", id)
		return
	}
	result := "ok"
	if err := s.publisher.PublishExpenseSync(ctx, id); err != nil {
		// The expense is committed; the worker's pending sweep picks it up.
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "error", err)
		result = "error"
	}
	if s.metrics != nil {
		s.metrics.SyncPublished.WithLabelValues(result).Inc()
	}
}

func (s *ExpenseService) recordCreated(saved []core.Expense) {
	if s.metrics == nil {
		return
	}
	s.metrics.ExpensesCreated.Inc()
	s.metrics.InstallmentsSaved.Add(float64(len(saved) - 1))
	for _, e := range saved {
		s.metrics.ExpenseAmountTotal.Add(e.Amount.Float64())
	}
}

// Close releases the store and, when it is closable, the publisher.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if c, ok := s.publisher.(interface{ Close() error }); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %w", errors.Join(errs...))
	}
	return nil
}
