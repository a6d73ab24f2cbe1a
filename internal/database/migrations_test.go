package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openEmptyDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openEmptyDB(t)
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db))

	applied, err := AppliedMigrations(ctx, db)
	require.NoError(t, err)
	require.Len(t, applied, len(Migrations))

	seen := map[int]bool{}
	for i, a := range applied {
		assert.False(t, seen[a.Version], "duplicate ledger version %d", a.Version)
		seen[a.Version] = true
		assert.Equal(t, Migrations[i].Version, a.Version)
		assert.Equal(t, Migrations[i].Checksum(), a.Checksum)
		assert.False(t, a.AppliedAt.IsZero())
	}

	assert.Equal(t, len(Migrations), countRows(t, db, "SELECT COUNT(DISTINCT version) FROM schema_migrations"))

	pending, err := PendingMigrations(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestReleasedMigrationsAreStrictlyIncreasing(t *testing.T) {
	for i := 1; i < len(Migrations); i++ {
		assert.Greater(t, Migrations[i].Version, Migrations[i-1].Version)
	}
}

func TestApplyMigrationsOnlyAppliesNewVersions(t *testing.T) {
	db := openEmptyDB(t)
	ctx := context.Background()

	first := []Migration{
		{Version: 1, Name: "widgets", Statements: []string{"CREATE TABLE widgets (id INTEGER PRIMARY KEY)"}},
	}
	require.NoError(t, ApplyMigrations(ctx, db, first))

	second := append(first, Migration{
		Version:    2,
		Name:       "widget_name",
		Statements: []string{"ALTER TABLE widgets ADD COLUMN name TEXT"},
	})
	require.NoError(t, ApplyMigrations(ctx, db, second))
	require.NoError(t, ApplyMigrations(ctx, db, second))

	_, err := db.Exec("INSERT INTO widgets (name) VALUES ('sprocket')")
	require.NoError(t, err)
	assert.Equal(t, 2, countRows(t, db, "SELECT COUNT(*) FROM schema_migrations"))
}

func TestApplyMigrationsSortsByVersion(t *testing.T) {
	db := openEmptyDB(t)

	err := ApplyMigrations(context.Background(), db, []Migration{
		{Version: 2, Name: "index", Statements: []string{"CREATE INDEX idx_widgets_id ON widgets(id)"}},
		{Version: 1, Name: "table", Statements: []string{"CREATE TABLE widgets (id INTEGER PRIMARY KEY)"}},
	})
	require.NoError(t, err)
}

func TestFailedMigrationRollsBackAndWritesNoLedgerEntry(t *testing.T) {
	db := openEmptyDB(t)
	ctx := context.Background()

	err := ApplyMigrations(ctx, db, []Migration{
		{Version: 1, Name: "ok", Statements: []string{"CREATE TABLE widgets (id INTEGER PRIMARY KEY)"}},
		{Version: 2, Name: "broken", Statements: []string{
			"CREATE TABLE gadgets (id INTEGER PRIMARY KEY)",
			"CREATE TABLE widgets (id INTEGER PRIMARY KEY)",
		}},
		{Version: 3, Name: "never", Statements: []string{"CREATE TABLE doohickeys (id INTEGER PRIMARY KEY)"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMigrationFailed)
	assert.Contains(t, err.Error(), "broken")

	applied, err := AppliedMigrations(ctx, db)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, 1, applied[0].Version)

	assert.Zero(t, countRows(t, db, "SELECT COUNT(*) FROM sqlite_master WHERE name IN ('gadgets', 'doohickeys')"))
	assert.Equal(t, 1, countRows(t, db, "SELECT COUNT(*) FROM sqlite_master WHERE name = 'widgets'"))
}

func TestApplyMigrationsRejectsInvalidLists(t *testing.T) {
	db := openEmptyDB(t)
	stmt := []string{"SELECT 1"}

	tests := []struct {
		name       string
		migrations []Migration
	}{
		{"duplicate version", []Migration{{Version: 1, Statements: stmt}, {Version: 1, Statements: stmt}}},
		{"zero version", []Migration{{Version: 0, Statements: stmt}}},
		{"empty migration", []Migration{{Version: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ApplyMigrations(context.Background(), db, tt.migrations)
			assert.ErrorIs(t, err, ErrInvalidMigrations)
		})
	}

	assert.Zero(t, countRows(t, db, "SELECT COUNT(*) FROM sqlite_master WHERE name = 'schema_migrations'"))
}

func TestChangedMigrationIsNotReapplied(t *testing.T) {
	db := openEmptyDB(t)
	ctx := context.Background()

	original := []Migration{{Version: 1, Name: "widgets", Statements: []string{"CREATE TABLE widgets (id INTEGER PRIMARY KEY)"}}}
	require.NoError(t, ApplyMigrations(ctx, db, original))

	edited := []Migration{{Version: 1, Name: "widgets", Statements: []string{"CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT)"}}}
	require.NoError(t, ApplyMigrations(ctx, db, edited))

	applied, err := AppliedMigrations(ctx, db)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, original[0].Checksum(), applied[0].Checksum)
	assert.NotEqual(t, original[0].Checksum(), edited[0].Checksum())
}

func TestMigrationFailurePropagatesAndRollsBack(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "sqlite3")

	ioErr := errors.New("disk I/O error")

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version, checksum FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version", "checksum"}))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE widgets")).WillReturnError(ioErr)
	mock.ExpectRollback()

	err = ApplyMigrations(context.Background(), db, []Migration{
		{Version: 1, Name: "widgets", Statements: []string{"CREATE TABLE widgets (id INTEGER PRIMARY KEY)"}},
	})
	assert.ErrorIs(t, err, ErrMigrationFailed)
	assert.ErrorIs(t, err, ioErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrationLedgerReadFailurePropagates(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "sqlite3")

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version, checksum FROM schema_migrations")).
		WillReturnError(errors.New("database disk image is malformed"))

	err = Migrate(context.Background(), db)
	assert.ErrorContains(t, err, "malformed")
	assert.NoError(t, mock.ExpectationsWereMet())
}
