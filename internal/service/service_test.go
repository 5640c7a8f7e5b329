package service

import (
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"money-transfers/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMockStore(t *testing.T) (*repository.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repository.NewStore(db, discardLogger()), mock
}

var accountColumns = []string{"id", "currency_code", "balance", "created_at", "updated_at"}

const selectAccount = "SELECT id, currency_code, balance, created_at, updated_at FROM accounts WHERE id = \\$1"

