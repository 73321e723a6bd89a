package backend

import (
	"context"

	"economad/internal/storage"
)

// Backend is what the factory hands to the binaries: a transactional store
// that also tracks spreadsheet sync status.
type Backend interface {
	storage.Store
	storage.SyncStore
}

// CleanupFunc releases resources held by a created component.
type CleanupFunc func() error

type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory backend seed directory
	DataDirectory string

	// Optional sync transport
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Optional spreadsheet target
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
