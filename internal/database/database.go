package database

import (
	"context"
	"fmt"
	"sync"

	"wardrobe/internal/logger"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// nowExpr yields a millisecond-precision timestamp that the sqlite3 driver
// parses back into time.Time for DATETIME columns.
const nowExpr = "strftime('%Y-%m-%d %H:%M:%f', 'now')"

// Initialize opens the wardrobe database file. The pool is pinned to a single
// connection so every statement goes through one serialized channel.
func Initialize(dbPath string, busyTimeoutMS int) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=%d", dbPath, busyTimeoutMS)
	return open(dsn)
}

// OpenInMemory opens a private in-memory database. Each call gets its own
// uniquely named database, which lives until the handle is closed.
func OpenInMemory() (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:wardrobe-%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	return open(dsn)
}

func open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Opener produces a fresh database handle for a Manager.
type Opener func() (*sqlx.DB, error)

// Manager owns the process-wide database handle. The first call to DB opens
// the database, applies migrations and seeds reference data; every caller,
// including concurrent first callers, receives the result of that single run.
type Manager struct {
	open        Opener
	seedOnStart bool

	once sync.Once
	db   *sqlx.DB
	err  error
}

func NewManager(open Opener, seedOnStart bool) *Manager {
	return &Manager{
		open:        open,
		seedOnStart: seedOnStart,
	}
}

// DB returns the ready database handle. A bootstrap failure is permanent for
// the lifetime of the Manager.
func (m *Manager) DB(ctx context.Context) (*sqlx.DB, error) {
	m.once.Do(func() {
		m.db, m.err = m.bootstrap(context.WithoutCancel(ctx))
	})
	return m.db, m.err
}

func (m *Manager) bootstrap(ctx context.Context) (*sqlx.DB, error) {
	db, err := m.open()
	if err != nil {
		logger.Error("Failed to open database", "error", err)
		return nil, err
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if m.seedOnStart {
		if err := Seed(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to seed reference data: %w", err)
		}
	}

	logger.Info("Database ready", "seeded", m.seedOnStart)
	return db, nil
}

// Close releases the handle if bootstrap produced one.
func (m *Manager) Close() error {
	m.once.Do(func() {
		m.err = fmt.Errorf("database manager closed before use")
	})
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
