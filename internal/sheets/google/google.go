package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"economad/internal/core"
	ports "economad/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const defaultCacheValidDuration = 5 * time.Minute

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string

	// Cached ID column; appends keep it current between refreshes.
	mu                 sync.Mutex
	cachedIDs          map[int64]int
	cachedRowCount     int
	cacheExpiresAt     time.Time
	cacheValidDuration time.Duration
}

var _ ports.ExpenseWriter = (*Client)(nil)

// New creates a Sheets client for one sheet of a spreadsheet, authenticating
// with service account credentials from the environment.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = "Expenses"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:                svc,
		spreadsheetID:      spreadsheetID,
		sheetName:          sheetName,
		cacheValidDuration: defaultCacheValidDuration,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		slog.DebugContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.DebugContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// Append writes e below the last row, adding the header to an empty sheet.
// An expense whose ID is already in the sheet is not written twice.
func (c *Client) Append(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.refreshIDsLocked(ctx); err != nil {
		return "", err
	}
	if row, ok := c.cachedIDs[e.ID]; ok {
		slog.InfoContext(ctx, "Expense already present in sheet", "id", e.ID, "row", row)
		return c.rowRef(row), nil
	}

	values := [][]any{expenseRow(e)}
	if c.cachedRowCount == 0 {
		values = append([][]any{headerRow()}, values...)
	}

	rng := fmt.Sprintf("%s!A:%s", c.sheetName, idColumn)
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		c.invalidateCacheLocked()
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	c.cachedRowCount += len(values)
	c.cachedIDs[e.ID] = c.cachedRowCount
	return c.rowRef(c.cachedRowCount), nil
}

func (c *Client) refreshIDsLocked(ctx context.Context) error {
	if c.cachedIDs != nil && time.Now().Before(c.cacheExpiresAt) {
		return nil
	}
	rng := fmt.Sprintf("%s!%s:%s", c.sheetName, idColumn, idColumn)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}
	c.setCacheLocked(resp.Values)
	return nil
}

func (c *Client) setCacheLocked(values [][]any) {
	c.cachedIDs = parseIDColumn(values)
	c.cachedRowCount = len(values)
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
}

func (c *Client) invalidateCacheLocked() {
	c.cachedIDs = nil
	c.cachedRowCount = 0
	c.cacheExpiresAt = time.Time{}
}

// InvalidateCache forces the next Append to re-read the ID column.
func (c *Client) InvalidateCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateCacheLocked()
}

func (c *Client) rowRef(row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", c.sheetName, row, idColumn, row)
}
