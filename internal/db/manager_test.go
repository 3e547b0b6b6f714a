package db

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqltoolkit/mysql-agent/internal/config"
)

func fakeOpen(t *testing.T, opened *int) OpenFunc {
	t.Helper()
	return func(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
		handle, mock, err := sqlmock.New()
		require.NoError(t, err)
		mock.ExpectClose()
		*opened++
		return handle, nil
	}
}

func TestGet_MemoizesHandle(t *testing.T) {
	opened := 0
	m := NewManager(config.Load(nil), WithOpenFunc(fakeOpen(t, &opened)))
	defer m.Close()

	first, err := m.Get(context.Background())
	require.NoError(t, err)
	second, err := m.Get(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, opened)
}

func TestGet_WrapsConnectionError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	m := NewManager(config.Load(nil), WithOpenFunc(
		func(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
			return nil, cause
		}))

	_, err := m.Get(context.Background())
	require.Error(t, err)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.ErrorIs(t, err, cause)
}

func TestClose_Idempotent(t *testing.T) {
	opened := 0
	m := NewManager(config.Load(nil), WithOpenFunc(fakeOpen(t, &opened)))

	_, err := m.Get(context.Background())
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
}

func TestReconfigure_ForcesFreshHandle(t *testing.T) {
	opened := 0
	m := NewManager(config.Load(nil), WithOpenFunc(fakeOpen(t, &opened)))
	defer m.Close()

	_, err := m.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, opened)

	database := "analytics"
	m.Reconfigure(&config.Overrides{Database: &database})

	assert.Equal(t, "analytics", m.Config().Database)

	_, err = m.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, opened, "reconfigure must invalidate the memoized handle")
}

// Integration coverage against a live server; skipped unless a DSN is
// provided, e.g. MYSQL_AGENT_TEST_DSN='root:pass@tcp(localhost:3306)/mysql'.
func TestGet_Integration(t *testing.T) {
	dsn := os.Getenv("MYSQL_AGENT_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_AGENT_TEST_DSN not set, skipping integration test")
	}

	cfg := config.Load(&config.Overrides{URL: &dsn})
	m := NewManager(cfg)
	defer m.Close()

	handle, err := m.Get(context.Background())
	require.NoError(t, err)
	require.NoError(t, handle.Ping())
}
