package repositories

import (
	"context"
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func openUnitOfWork(t *testing.T) *UnitOfWork {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUnitOfWork(db, logs.GetLoggerFromLevel(slog.LevelDebug), DefaultMaxRetries)
}

func update(t *testing.T, uow *UnitOfWork, fn func(Txn) error) {
	t.Helper()
	require.NoError(t, uow.Update(context.Background(), fn))
}

func view(t *testing.T, uow *UnitOfWork, fn func(Txn) error) {
	t.Helper()
	require.NoError(t, uow.View(context.Background(), fn))
}
