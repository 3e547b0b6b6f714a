// Package db owns the process-wide database connection: a single memoized
// handle created lazily from the resolved configuration, replaced on
// reconfiguration, and released on close. There is no pooling beyond what
// database/sql provides on the one handle.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sqltoolkit/mysql-agent/internal/config"
)

const (
	connectTimeout = 10 * time.Second

	maxIdleConns = 2
	maxOpenConns = 4
)

// ConnectionError reports that the underlying client could not establish a
// session. The driver cause is preserved for the envelope.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// OpenFunc creates a live handle from a configuration. Tests substitute a
// fake; the default opens the MySQL driver, pings with a timeout, and
// applies the read-only session guard when writes are disabled.
type OpenFunc func(ctx context.Context, cfg *config.Config) (*sql.DB, error)

// Manager memoizes a single connection handle. All mutation of the handle
// and configuration happens under one critical section, so a reconfigure
// fully replaces the connection before any subsequent use.
type Manager struct {
	mu     sync.Mutex
	cfg    *config.Config
	handle *sql.DB
	open   OpenFunc
}

// Option customizes a Manager.
type Option func(*Manager)

// WithOpenFunc replaces the connection factory.
func WithOpenFunc(open OpenFunc) Option {
	return func(m *Manager) { m.open = open }
}

// NewManager creates a manager for the given configuration. No connection
// is made until the first Get.
func NewManager(cfg *config.Config, opts ...Option) *Manager {
	m := &Manager{cfg: cfg, open: openMySQL}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the current configuration snapshot.
func (m *Manager) Config() *config.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// Get returns the memoized handle, creating one if absent.
func (m *Manager) Get(ctx context.Context) (*sql.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle != nil {
		return m.handle, nil
	}

	handle, err := m.open(ctx, m.cfg)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	m.handle = handle
	return m.handle, nil
}

// Close releases the handle if present. Safe to call repeatedly.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeLocked()
}

// Reconfigure merges overrides into the live configuration and invalidates
// the handle, forcing the next Get to connect fresh. Callers holding the
// old handle must re-fetch.
func (m *Manager) Reconfigure(ov *config.Overrides) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.closeLocked(); err != nil {
		slog.Warn("closing stale connection", "error", err)
	}
	cfg := m.cfg.Clone()
	cfg.Merge(ov)
	m.cfg = cfg
}

func (m *Manager) closeLocked() error {
	if m.handle == nil {
		return nil
	}
	err := m.handle.Close()
	m.handle = nil
	return err
}

// openMySQL is the default OpenFunc.
func openMySQL(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	handle, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	handle.SetMaxIdleConns(maxIdleConns)
	handle.SetMaxOpenConns(maxOpenConns)
	handle.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := handle.PingContext(pingCtx); err != nil {
		handle.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// While writes are disabled the session itself is read-only.
	// Failure here is logged, not fatal (the user may lack the privilege).
	if !cfg.AllowWrites {
		if _, err := handle.ExecContext(ctx, "SET SESSION TRANSACTION READ ONLY"); err != nil {
			slog.Warn("could not set read-only session", "error", err)
		}
	}

	slog.Info("database connection established", "dsn", cfg.MaskedDSN())
	return handle, nil
}
