package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"economad/internal/config"
	sheetmem "economad/internal/sheets/memory"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{DataBackend: "memory", DataDir: "seed", GoogleSheetName: "Expenses"})
	require.NoError(t, err)
	assert.Equal(t, MemoryBackend, cfg.Type)
	assert.Equal(t, "seed", cfg.DataDirectory)
	assert.Equal(t, "Expenses", cfg.GoogleSheetName)
}

func TestCreateBackend(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: MemoryBackend, DataDirectory: t.TempDir()})
		require.NoError(t, err)
		require.NoError(t, res.Backend.Ping(ctx))

		types, err := res.Backend.ListPaymentTypes(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, types)
		assert.NoError(t, res.Cleanup())
	})

	t.Run("sqlite", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "test.db")})
		require.NoError(t, err)
		require.NoError(t, res.Backend.Ping(ctx))
		assert.NoError(t, res.Cleanup())
	})

	t.Run("sqlite without path", func(t *testing.T) {
		_, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend})
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := f.CreateBackend(ctx, Config{Type: "sheets"})
		assert.Error(t, err)
	})
}

func TestCreatePublisherWithoutURL(t *testing.T) {
	pub, cleanup := NewFactory(nil).CreatePublisher(Config{})
	assert.Nil(t, pub)
	assert.Nil(t, cleanup)
}

func TestCreateSheetWriterDefaultsToMemory(t *testing.T) {
	w, err := NewFactory(nil).CreateSheetWriter(context.Background(), Config{})
	require.NoError(t, err)
	assert.IsType(t, &sheetmem.Writer{}, w)
}
