package database

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"wardrobe/internal/logger"

	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultCatalog []byte

// Catalog is the canonical reference data inserted by the seeder.
type Catalog struct {
	Categories  []CategorySeed   `yaml:"categories"`
	Colors      []ColorSeed      `yaml:"colors"`
	Materials   []string         `yaml:"materials"`
	Seasons     []string         `yaml:"seasons"`
	Occasions   []string         `yaml:"occasions"`
	Patterns    []string         `yaml:"patterns"`
	SizeSystems []SizeSystemSeed `yaml:"size_systems"`
}

type CategorySeed struct {
	Name          string   `yaml:"name"`
	Subcategories []string `yaml:"subcategories"`
}

type ColorSeed struct {
	Name string `yaml:"name"`
	Hex  string `yaml:"hex"`
}

type SizeSystemSeed struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"values"`
}

// LoadCatalog parses a YAML catalog. Unknown fields are rejected.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse seed catalog: %w", err)
	}
	return &c, nil
}

// DefaultCatalog returns the catalog shipped with the binary.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(bytes.NewReader(defaultCatalog))
}

// Seed inserts the default catalog. Safe to call on every start.
func Seed(ctx context.Context, db *sqlx.DB) error {
	catalog, err := DefaultCatalog()
	if err != nil {
		return err
	}
	return SeedCatalog(ctx, db, catalog)
}

type seedStep struct {
	table string
	run   func(ctx context.Context, tx *sqlx.Tx) (int64, error)
}

// SeedCatalog inserts every row of catalog that is not already present, keyed
// by natural key. Each table is seeded in its own transaction, parents before
// children; a failing step does not stop the others and all failures are
// returned together.
func SeedCatalog(ctx context.Context, db *sqlx.DB, catalog *Catalog) error {
	steps := []seedStep{
		{"categories", catalog.seedCategories},
		{"subcategories", catalog.seedSubcategories},
		{"colors", catalog.seedColors},
		{"materials", namedSeed("materials", catalog.Materials)},
		{"seasons", namedSeed("seasons", catalog.Seasons)},
		{"occasions", namedSeed("occasions", catalog.Occasions)},
		{"patterns", namedSeed("patterns", catalog.Patterns)},
		{"size_systems", catalog.seedSizeSystems},
		{"size_values", catalog.seedSizeValues},
	}

	var errs []error
	for _, step := range steps {
		var inserted int64
		err := withTx(ctx, db, func(tx *sqlx.Tx) error {
			n, err := step.run(ctx, tx)
			inserted = n
			return err
		})
		if err != nil {
			logger.Error("Seed step failed", "table", step.table, "error", err)
			errs = append(errs, fmt.Errorf("failed to seed %s: %w", step.table, err))
			continue
		}
		if inserted > 0 {
			logger.Info("Seeded reference data", "table", step.table, "rows", inserted)
		}
	}

	return errors.Join(errs...)
}

func (c *Catalog) seedCategories(ctx context.Context, tx *sqlx.Tx) (int64, error) {
	var total int64
	for i, cat := range c.Categories {
		n, err := execCount(ctx, tx,
			"INSERT INTO categories (name, sort_order) VALUES (?, ?) ON CONFLICT(name) DO NOTHING",
			cat.Name, i)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (c *Catalog) seedSubcategories(ctx context.Context, tx *sqlx.Tx) (int64, error) {
	var total int64
	for _, cat := range c.Categories {
		for i, name := range cat.Subcategories {
			n, err := execCount(ctx, tx,
				`INSERT INTO subcategories (category_id, name, sort_order)
				 SELECT id, ?, ? FROM categories WHERE name = ?
				 ON CONFLICT(category_id, name) DO NOTHING`,
				name, i, cat.Name)
			if err != nil {
				return 0, err
			}
			total += n
		}
	}
	return total, nil
}

func (c *Catalog) seedColors(ctx context.Context, tx *sqlx.Tx) (int64, error) {
	var total int64
	for _, color := range c.Colors {
		var hex interface{}
		if color.Hex != "" {
			hex = color.Hex
		}
		n, err := execCount(ctx, tx,
			"INSERT INTO colors (name, hex) VALUES (?, ?) ON CONFLICT(name) DO NOTHING",
			color.Name, hex)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (c *Catalog) seedSizeSystems(ctx context.Context, tx *sqlx.Tx) (int64, error) {
	var total int64
	for _, system := range c.SizeSystems {
		n, err := execCount(ctx, tx,
			"INSERT INTO size_systems (name) VALUES (?) ON CONFLICT(name) DO NOTHING",
			system.Name)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (c *Catalog) seedSizeValues(ctx context.Context, tx *sqlx.Tx) (int64, error) {
	var total int64
	for _, system := range c.SizeSystems {
		for i, value := range system.Values {
			n, err := execCount(ctx, tx,
				`INSERT INTO size_values (size_system_id, value, sort_order)
				 SELECT id, ?, ? FROM size_systems WHERE name = ?
				 ON CONFLICT(size_system_id, value) DO NOTHING`,
				value, i, system.Name)
			if err != nil {
				return 0, err
			}
			total += n
		}
	}
	return total, nil
}

// namedSeed seeds one of the flat name-only lookup tables.
func namedSeed(table string, names []string) func(context.Context, *sqlx.Tx) (int64, error) {
	query := fmt.Sprintf("INSERT INTO %s (name) VALUES (?) ON CONFLICT(name) DO NOTHING", table)
	return func(ctx context.Context, tx *sqlx.Tx) (int64, error) {
		var total int64
		for _, name := range names {
			n, err := execCount(ctx, tx, query, name)
			if err != nil {
				return 0, err
			}
			total += n
		}
		return total, nil
	}
}

func execCount(ctx context.Context, q sqlx.ExecerContext, query string, args ...interface{}) (int64, error) {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
