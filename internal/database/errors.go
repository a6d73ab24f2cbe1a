package database

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrConstraint matches every storage-level constraint violation.
	ErrConstraint = errors.New("constraint violation")
	// ErrInconsistentReference reports a subcategory or size value whose parent
	// differs from the item's own category or size system.
	ErrInconsistentReference = errors.New("inconsistent reference")
	ErrMigrationFailed       = errors.New("migration failed")
	ErrInvalidMigrations     = errors.New("invalid migration list")
	ErrUnknownTagKind        = errors.New("unknown tag kind")
)

const (
	ConstraintUnique     = "unique"
	ConstraintNotNull    = "not_null"
	ConstraintCheck      = "check"
	ConstraintForeignKey = "foreign_key"
	ConstraintPrimaryKey = "primary_key"
	ConstraintOther      = "other"
)

// ConstraintError describes a write rejected by a NOT NULL, CHECK, UNIQUE or
// foreign key constraint.
type ConstraintError struct {
	Op    string
	Table string
	Kind  string
	Err   error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("failed to %s: %s constraint violated on %s: %v", e.Op, e.Kind, e.Table, e.Err)
}

func (e *ConstraintError) Unwrap() []error {
	return []error{ErrConstraint, e.Err}
}

// IsConstraint reports whether err is a constraint violation of the given
// kind. An empty kind matches any constraint violation.
func IsConstraint(err error, kind string) bool {
	var ce *ConstraintError
	if !errors.As(err, &ce) {
		return false
	}
	return kind == "" || ce.Kind == kind
}

// wrapError converts driver constraint failures into *ConstraintError and
// wraps everything else with the failed operation.
func wrapError(op, table string, err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return &ConstraintError{
			Op:    op,
			Table: table,
			Kind:  constraintKind(sqliteErr.ExtendedCode),
			Err:   err,
		}
	}

	return fmt.Errorf("failed to %s: %w", op, err)
}

func constraintKind(code sqlite3.ErrNoExtended) string {
	switch code {
	case sqlite3.ErrConstraintUnique:
		return ConstraintUnique
	case sqlite3.ErrConstraintNotNull:
		return ConstraintNotNull
	case sqlite3.ErrConstraintCheck:
		return ConstraintCheck
	case sqlite3.ErrConstraintForeignKey:
		return ConstraintForeignKey
	case sqlite3.ErrConstraintPrimaryKey:
		return ConstraintPrimaryKey
	default:
		return ConstraintOther
	}
}
