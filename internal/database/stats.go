package database

import (
	"context"
	"fmt"

	"wardrobe/internal/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// Wear counts follow an outfit's current membership: a log counts for every
// item that is in the logged outfit now, not when the log was written.

// WearCountsSince returns the number of distinct logs each item was worn in,
// for every item. Logs dated before from are ignored; an empty from counts all.
func WearCountsSince(ctx context.Context, db *sqlx.DB, from string) (map[int64]int, error) {
	logJoin := "outfit_logs ol ON ol.outfit_id = oi.outfit_id"
	var joinArgs []interface{}
	if from != "" {
		logJoin += " AND ol.log_date >= ?"
		joinArgs = append(joinArgs, from)
	}

	query, args, err := sq.Select("ci.id AS item_id", "COUNT(DISTINCT ol.id) AS wears").
		From("clothing_items ci").
		LeftJoin("outfit_items oi ON oi.clothing_item_id = ci.id").
		LeftJoin(logJoin, joinArgs...).
		GroupBy("ci.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build wear count query: %w", err)
	}

	var rows []struct {
		ItemID int64 `db:"item_id"`
		Wears  int   `db:"wears"`
	}
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query wear counts: %w", err)
	}

	counts := make(map[int64]int, len(rows))
	for _, r := range rows {
		counts[r.ItemID] = r.Wears
	}
	return counts, nil
}

type ItemWear struct {
	Wears    int     `db:"wears"`
	LastWorn *string `db:"last_worn"`
}

// ItemWearSummary returns the item's wear count and the date it was last worn.
func ItemWearSummary(ctx context.Context, db *sqlx.DB, itemID int64) (ItemWear, error) {
	var w ItemWear
	err := db.GetContext(ctx, &w, `
		SELECT COUNT(DISTINCT ol.id) AS wears, MAX(ol.log_date) AS last_worn
		FROM outfit_items oi
		JOIN outfit_logs ol ON ol.outfit_id = oi.outfit_id
		WHERE oi.clothing_item_id = ?
	`, itemID)
	if err != nil {
		return ItemWear{}, fmt.Errorf("failed to get wear summary: %w", err)
	}
	return w, nil
}

type DayActivity struct {
	Date    string `db:"log_date"`
	Logs    int    `db:"logs"`
	HasOOTD bool   `db:"has_ootd"`
}

// LogActivity groups the logs dated within [from, to] by day. Days without
// logs are absent.
func LogActivity(ctx context.Context, db *sqlx.DB, from, to string) ([]DayActivity, error) {
	var days []DayActivity
	err := db.SelectContext(ctx, &days, `
		SELECT log_date, COUNT(*) AS logs, MAX(is_ootd) AS has_ootd
		FROM outfit_logs
		WHERE log_date BETWEEN ? AND ?
		GROUP BY log_date
		ORDER BY log_date
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query log activity: %w", err)
	}
	return days, nil
}

type BreakdownRow struct {
	Label string  `db:"label"`
	Hex   *string `db:"hex"`
	Count int     `db:"count"`
}

// BreakdownByCategory counts active items per category. Uncategorized items
// are not counted.
func BreakdownByCategory(ctx context.Context, db *sqlx.DB) ([]BreakdownRow, error) {
	return breakdown(ctx, db, `
		SELECT c.name AS label, NULL AS hex, COUNT(*) AS count
		FROM clothing_items ci
		JOIN categories c ON c.id = ci.category_id
		WHERE ci.status = ?
		GROUP BY c.id
		ORDER BY c.name
	`)
}

// BreakdownByBrand counts active items per brand, folding case.
func BreakdownByBrand(ctx context.Context, db *sqlx.DB) ([]BreakdownRow, error) {
	return breakdown(ctx, db, `
		SELECT MIN(trim(ci.brand)) AS label, NULL AS hex, COUNT(*) AS count
		FROM clothing_items ci
		WHERE ci.status = ? AND ci.brand IS NOT NULL AND trim(ci.brand) <> ''
		GROUP BY lower(trim(ci.brand))
		ORDER BY lower(trim(ci.brand))
	`)
}

// BreakdownByTag counts active items per tag of one kind. Colors carry their hex.
func BreakdownByTag(ctx context.Context, db *sqlx.DB, kind models.TagKind) ([]BreakdownRow, error) {
	t, err := tagTableFor(kind)
	if err != nil {
		return nil, err
	}

	return breakdown(ctx, db, fmt.Sprintf(`
		SELECT l.name AS label, %s AS hex, COUNT(DISTINCT ci.id) AS count
		FROM %s j
		JOIN %s l ON l.id = j.%s
		JOIN clothing_items ci ON ci.id = j.clothing_item_id
		WHERE ci.status = ?
		GROUP BY l.id
		ORDER BY l.name
	`, hexColumn(kind, "l"), t.junction, t.lookup, t.column))
}

func breakdown(ctx context.Context, db *sqlx.DB, query string) ([]BreakdownRow, error) {
	rows := []BreakdownRow{}
	if err := db.SelectContext(ctx, &rows, query, string(models.StatusActive)); err != nil {
		return nil, fmt.Errorf("failed to query breakdown: %w", err)
	}
	return rows, nil
}
