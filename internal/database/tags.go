package database

import (
	"context"
	"fmt"

	"wardrobe/internal/logger"
	"wardrobe/internal/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type tagTable struct {
	lookup   string
	junction string
	column   string
}

var tagTables = map[models.TagKind]tagTable{
	models.TagColor:    {"colors", "clothing_item_colors", "color_id"},
	models.TagMaterial: {"materials", "clothing_item_materials", "material_id"},
	models.TagSeason:   {"seasons", "clothing_item_seasons", "season_id"},
	models.TagOccasion: {"occasions", "clothing_item_occasions", "occasion_id"},
	models.TagPattern:  {"patterns", "clothing_item_patterns", "pattern_id"},
}

func tagTableFor(kind models.TagKind) (tagTable, error) {
	t, ok := tagTables[kind]
	if !ok {
		return tagTable{}, fmt.Errorf("%w: %q", ErrUnknownTagKind, kind)
	}
	return t, nil
}

// SetItemTags replaces the item's full set of tags of one kind. Clearing and
// reinserting happen in one transaction, so readers never see the empty
// intermediate state. Duplicate ids are collapsed.
func SetItemTags(ctx context.Context, db *sqlx.DB, itemID int64, kind models.TagKind, tagIDs []int64) error {
	t, err := tagTableFor(kind)
	if err != nil {
		return err
	}

	ids := uniqueIDs(tagIDs)

	err = withTx(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+t.junction+" WHERE clothing_item_id = ?", itemID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", t.junction, err)
		}

		if len(ids) > 0 {
			insert := sq.Insert(t.junction).Columns("clothing_item_id", t.column)
			for _, id := range ids {
				insert = insert.Values(itemID, id)
			}
			if _, err := execBuilder(ctx, tx, insert); err != nil {
				return wrapError("set item tags", t.junction, err)
			}
		}

		_, err := tx.ExecContext(ctx, "UPDATE clothing_items SET updated_at = "+nowExpr+" WHERE id = ?", itemID)
		if err != nil {
			return fmt.Errorf("failed to touch item: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Warn("Failed to set item tags", "item_id", itemID, "kind", string(kind), "error", err)
		return err
	}

	return nil
}

// GetItemTagIDs returns the ids of the item's tags of one kind in ascending order.
func GetItemTagIDs(ctx context.Context, db *sqlx.DB, itemID int64, kind models.TagKind) ([]int64, error) {
	t, err := tagTableFor(kind)
	if err != nil {
		return nil, err
	}

	ids := []int64{}
	err = db.SelectContext(ctx, &ids,
		"SELECT "+t.column+" FROM "+t.junction+" WHERE clothing_item_id = ? ORDER BY "+t.column, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query item %s tags: %w", kind, err)
	}
	return ids, nil
}

// GetItemTags returns the item's tags grouped by kind. Kinds with no tags
// are omitted.
func GetItemTags(ctx context.Context, db *sqlx.DB, itemID int64) (map[models.TagKind][]models.Tag, error) {
	tags := make(map[models.TagKind][]models.Tag)
	for _, kind := range models.TagKinds {
		t := tagTables[kind]

		var rows []models.Tag
		query := fmt.Sprintf(`SELECT l.id, l.name, %s AS hex
			FROM %s j JOIN %s l ON l.id = j.%s
			WHERE j.clothing_item_id = ?
			ORDER BY l.name`, hexColumn(kind, "l"), t.junction, t.lookup, t.column)
		if err := db.SelectContext(ctx, &rows, query, itemID); err != nil {
			return nil, fmt.Errorf("failed to query item %s tags: %w", kind, err)
		}
		if len(rows) > 0 {
			tags[kind] = rows
		}
	}
	return tags, nil
}

// ItemIDsWithTag returns the ids of every item carrying the tag.
func ItemIDsWithTag(ctx context.Context, db *sqlx.DB, kind models.TagKind, tagID int64) ([]int64, error) {
	t, err := tagTableFor(kind)
	if err != nil {
		return nil, err
	}

	ids := []int64{}
	err = db.SelectContext(ctx, &ids,
		"SELECT clothing_item_id FROM "+t.junction+" WHERE "+t.column+" = ?", tagID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items with %s %d: %w", kind, tagID, err)
	}
	return ids, nil
}

// ListTags returns every tag of one kind ordered by name.
func ListTags(ctx context.Context, db *sqlx.DB, kind models.TagKind) ([]models.Tag, error) {
	t, err := tagTableFor(kind)
	if err != nil {
		return nil, err
	}

	var tags []models.Tag
	query := fmt.Sprintf("SELECT id, name, %s AS hex FROM %s ORDER BY name", hexColumn(kind, t.lookup), t.lookup)
	if err := db.SelectContext(ctx, &tags, query); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.lookup, err)
	}
	return tags, nil
}

// FindTag looks a tag up by name, case-insensitively. It returns nil when
// there is no match.
func FindTag(ctx context.Context, db *sqlx.DB, kind models.TagKind, name string) (*models.Tag, error) {
	t, err := tagTableFor(kind)
	if err != nil {
		return nil, err
	}

	var tags []models.Tag
	query := fmt.Sprintf("SELECT id, name, %s AS hex FROM %s WHERE name = ? COLLATE NOCASE LIMIT 1",
		hexColumn(kind, t.lookup), t.lookup)
	if err := db.SelectContext(ctx, &tags, query, name); err != nil {
		return nil, fmt.Errorf("failed to find %s %q: %w", kind, name, err)
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return &tags[0], nil
}

func hexColumn(kind models.TagKind, alias string) string {
	if kind == models.TagColor {
		return alias + ".hex"
	}
	return "NULL"
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
