package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"economad/internal/amqp"
	"economad/internal/metrics"
	"economad/internal/sheets"
	"economad/internal/storage"
)

const (
	baseRetryDelay = 30 * time.Second
	maxRetryDelay  = time.Hour
)

// SyncWorker pushes stored expenses to the spreadsheet.
type SyncWorker struct {
	storage   storage.SyncStore
	sheets    sheets.ExpenseWriter
	metrics   *metrics.Metrics
	batchSize int

	now        func() time.Time
	retryDelay func(attempts int) time.Duration
}

func NewSyncWorker(store storage.SyncStore, writer sheets.ExpenseWriter, m *metrics.Metrics, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		storage:   store,
		sheets:    writer,
		metrics:    m,
		batchSize:  batchSize,
		now:        time.Now,
		retryDelay: retryDelay,
	}
}

// retryDelay doubles from baseRetryDelay with every failed attempt, up to
// maxRetryDelay.
func retryDelay(attempts int) time.Duration {
	d := baseRetryDelay
	for i := 0; i < attempts && d < maxRetryDelay; i++ {
		d *= 2
	}
	return min(d, maxRetryDelay)
}

// HandleSyncMessage processes a single expense sync message from AMQP.
// A message for an expense that no longer exists is dropped.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.ExpenseSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"message_id", msg.MessageID)

	err := w.syncExpense(ctx, msg.ID, 0)
	if errors.Is(err, storage.ErrNotFound) {
		slog.WarnContext(ctx, "Dropping sync message for unknown expense", "id", msg.ID)
		return nil
	}
	return err
}

// ProcessPendingExpenses syncs one batch of expenses that were never pushed
// or whose retry is due. It is the backstop for lost AMQP messages and
// failed appends, and returns how many were synced.
func (w *SyncWorker) ProcessPendingExpenses(ctx context.Context) (int, error) {
	pending, err := w.storage.GetPendingSyncExpenses(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("get pending expenses: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Processing pending expenses", "count", len(pending))

	synced := 0
	for _, p := range pending {
		if ctx.Err() != nil {
			return synced, ctx.Err()
		}
		if err := w.syncExpense(ctx, p.ID, p.Attempts); err != nil {
			slog.ErrorContext(ctx, "Failed to sync expense", "id", p.ID, "attempts", p.Attempts+1, "error", err)
			continue
		}
		synced++
	}
	return synced, nil
}

// RunPending calls ProcessPendingExpenses at startup and then every
// interval until ctx is done.
func (w *SyncWorker) RunPending(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if n, err := w.ProcessPendingExpenses(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup sync failed", "error", err)
	} else {
		slog.InfoContext(ctx, "Startup sync completed", "synced", n)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ProcessPendingExpenses(ctx); err != nil && ctx.Err() == nil {
				slog.ErrorContext(ctx, "Periodic sync failed", "error", err)
			}
		}
	}
}

// syncExpense appends one expense. attempts is how many appends of it have
// already failed.
func (w *SyncWorker) syncExpense(ctx context.Context, id int64, attempts int) error {
	expense, err := w.storage.GetExpense(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return fmt.Errorf("get expense from storage: %w", err)
	}

	ref, err := w.sheets.Append(ctx, expense)
	if err != nil {
		w.count("error")
		retryAt := w.now().Add(w.retryDelay(attempts))
		if markErr := w.storage.MarkSyncError(ctx, id, retryAt); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		if attempts+1 >= storage.MaxSyncAttempts {
			slog.ErrorContext(ctx, "Giving up on expense sync", "id", id, "attempts", attempts+1)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		// The row is written; a retry finds it by ID and does not duplicate it.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}
	w.count("ok")

	slog.InfoContext(ctx, "Successfully synced expense",
		"id", id,
		"sheets_ref", ref,
		"installment", expense.Installment.String(),
		"amount", expense.Amount.String())
	return nil
}

func (w *SyncWorker) count(result string) {
	if w.metrics != nil {
		w.metrics.SyncProcessed.WithLabelValues(result).Inc()
	}
}
