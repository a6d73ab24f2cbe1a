package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"time"

	"wardrobe/internal/logger"

	"github.com/jmoiron/sqlx"
)

// Migration is one numbered, append-only schema change. Once released, a
// migration's version and statements must never change.
type Migration struct {
	Version    int
	Name       string
	Statements []string
}

// Checksum fingerprints the migration body so edits to released migrations
// can be detected.
func (m Migration) Checksum() string {
	h := sha256.New()
	h.Write([]byte(m.Name))
	for _, stmt := range m.Statements {
		h.Write([]byte{0})
		h.Write([]byte(strings.TrimSpace(stmt)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

type AppliedMigration struct {
	Version   int       `db:"version"`
	Name      string    `db:"name"`
	Checksum  string    `db:"checksum"`
	AppliedAt time.Time `db:"applied_at"`
}

const createLedgerSQL = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now'))
)`

// Migrate brings the schema up to date with the released migration list.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	return ApplyMigrations(ctx, db, Migrations)
}

// ApplyMigrations applies every migration not yet recorded in the ledger, in
// ascending version order. Each migration runs in its own transaction together
// with its ledger row, so a failure leaves earlier migrations committed and
// the failing one fully rolled back.
func ApplyMigrations(ctx context.Context, db *sqlx.DB, migrations []Migration) error {
	ordered, err := orderMigrations(migrations)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, createLedgerSQL); err != nil {
		return fmt.Errorf("failed to create migration ledger: %w", err)
	}

	applied, err := appliedChecksums(ctx, db)
	if err != nil {
		return err
	}

	pending := 0
	for _, m := range ordered {
		if sum, ok := applied[m.Version]; ok {
			if sum != m.Checksum() {
				logger.Warn("Applied migration has changed since it ran", "version", m.Version, "name", m.Name)
			}
			continue
		}

		if err := applyMigration(ctx, db, m); err != nil {
			logger.Error("Migration failed", "version", m.Version, "name", m.Name, "error", err)
			return fmt.Errorf("%w: version %d (%s): %w", ErrMigrationFailed, m.Version, m.Name, err)
		}

		logger.Info("Applied migration", "version", m.Version, "name", m.Name)
		pending++
	}

	if pending == 0 {
		logger.Debug("Schema is up to date", "migrations", len(ordered))
	}

	return nil
}

func orderMigrations(migrations []Migration) ([]Migration, error) {
	ordered := slices.Clone(migrations)
	slices.SortStableFunc(ordered, func(a, b Migration) int {
		return a.Version - b.Version
	})

	for i, m := range ordered {
		if m.Version <= 0 {
			return nil, fmt.Errorf("%w: version %d must be positive", ErrInvalidMigrations, m.Version)
		}
		if i > 0 && ordered[i-1].Version == m.Version {
			return nil, fmt.Errorf("%w: duplicate version %d", ErrInvalidMigrations, m.Version)
		}
		if len(m.Statements) == 0 {
			return nil, fmt.Errorf("%w: version %d has no statements", ErrInvalidMigrations, m.Version)
		}
	}

	return ordered, nil
}

func applyMigration(ctx context.Context, db *sqlx.DB, m Migration) error {
	return withTx(ctx, db, func(tx *sqlx.Tx) error {
		for i, stmt := range m.Statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("statement %d: %w", i+1, err)
			}
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, name, checksum) VALUES (?, ?, ?)",
			m.Version, m.Name, m.Checksum())
		if err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}

		return nil
	})
}

func appliedChecksums(ctx context.Context, db *sqlx.DB) (map[int]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT version, checksum FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration ledger: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]string)
	for rows.Next() {
		var version int
		var checksum string
		if err := rows.Scan(&version, &checksum); err != nil {
			return nil, fmt.Errorf("failed to scan migration ledger: %w", err)
		}
		applied[version] = checksum
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating migration ledger: %w", err)
	}

	return applied, nil
}

// AppliedMigrations lists the ledger in version order.
func AppliedMigrations(ctx context.Context, db *sqlx.DB) ([]AppliedMigration, error) {
	if _, err := db.ExecContext(ctx, createLedgerSQL); err != nil {
		return nil, fmt.Errorf("failed to create migration ledger: %w", err)
	}

	var applied []AppliedMigration
	err := db.SelectContext(ctx, &applied,
		"SELECT version, name, checksum, applied_at FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to list applied migrations: %w", err)
	}

	return applied, nil
}

// PendingMigrations returns the released migrations the ledger has not seen.
func PendingMigrations(ctx context.Context, db *sqlx.DB) ([]Migration, error) {
	applied, err := AppliedMigrations(ctx, db)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(applied))
	for _, a := range applied {
		seen[a.Version] = true
	}

	var pending []Migration
	for _, m := range Migrations {
		if !seen[m.Version] {
			pending = append(pending, m)
		}
	}
	return pending, nil
}
