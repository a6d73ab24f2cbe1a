package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wardrobe/internal/logger"
	"wardrobe/internal/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

const outfitColumns = "id, name, notes, created_at, updated_at"

// CreateOutfit inserts an outfit together with its member items.
func CreateOutfit(ctx context.Context, db *sqlx.DB, outfit models.Outfit, itemIDs []int64) (int64, error) {
	var id int64
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, "INSERT INTO outfits (name, notes) VALUES (?, ?)", outfit.Name, outfit.Notes)
		if err != nil {
			return wrapError("create outfit", "outfits", err)
		}

		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get outfit ID: %w", err)
		}

		return replaceOutfitItems(ctx, tx, id, itemIDs)
	})
	if err != nil {
		logger.Warn("Failed to create outfit", "error", err)
		return 0, err
	}

	return id, nil
}

func GetOutfit(ctx context.Context, db *sqlx.DB, id int64) (*models.Outfit, error) {
	return getOutfit(ctx, db, id)
}

func getOutfit(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.Outfit, error) {
	var outfit models.Outfit
	err := sqlx.GetContext(ctx, q, &outfit, "SELECT "+outfitColumns+" FROM outfits WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outfit: %w", err)
	}

	outfit.ItemIDs = []int64{}
	err = sqlx.SelectContext(ctx, q, &outfit.ItemIDs,
		"SELECT clothing_item_id FROM outfit_items WHERE outfit_id = ? ORDER BY clothing_item_id", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get outfit items: %w", err)
	}

	return &outfit, nil
}

// ListOutfits returns every outfit with its members, most recently updated first.
func ListOutfits(ctx context.Context, db *sqlx.DB) ([]models.Outfit, error) {
	var outfits []models.Outfit
	err := db.SelectContext(ctx, &outfits,
		"SELECT "+outfitColumns+" FROM outfits ORDER BY updated_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query outfits: %w", err)
	}

	var members []struct {
		OutfitID int64 `db:"outfit_id"`
		ItemID   int64 `db:"clothing_item_id"`
	}
	err = db.SelectContext(ctx, &members,
		"SELECT outfit_id, clothing_item_id FROM outfit_items ORDER BY outfit_id, clothing_item_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query outfit items: %w", err)
	}

	byOutfit := make(map[int64][]int64)
	for _, m := range members {
		byOutfit[m.OutfitID] = append(byOutfit[m.OutfitID], m.ItemID)
	}
	for i := range outfits {
		outfits[i].ItemIDs = byOutfit[outfits[i].ID]
		if outfits[i].ItemIDs == nil {
			outfits[i].ItemIDs = []int64{}
		}
	}

	return outfits, nil
}

// UpdateOutfit applies the patch and, when patch.ItemIDs is set, replaces the
// member list. It returns nil when the outfit does not exist.
func UpdateOutfit(ctx context.Context, db *sqlx.DB, id int64, patch models.OutfitPatch) (*models.Outfit, error) {
	var updated *models.Outfit
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		cols := patch.Columns()
		cols["updated_at"] = sq.Expr(nowExpr)

		n, err := execBuilder(ctx, tx, sq.Update("outfits").SetMap(cols).Where(sq.Eq{"id": id}))
		if err != nil {
			return wrapError("update outfit", "outfits", err)
		}
		if n == 0 {
			return nil
		}

		if patch.ItemIDs != nil {
			if err := replaceOutfitItems(ctx, tx, id, *patch.ItemIDs); err != nil {
				return err
			}
		}

		updated, err = getOutfit(ctx, tx, id)
		return err
	})
	if err != nil {
		logger.Warn("Failed to update outfit", "outfit_id", id, "error", err)
		return nil, err
	}

	return updated, nil
}

// SetOutfitItems replaces the outfit's full member list. It reports false when
// the outfit does not exist.
func SetOutfitItems(ctx context.Context, db *sqlx.DB, outfitID int64, itemIDs []int64) (bool, error) {
	found := false
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, "UPDATE outfits SET updated_at = "+nowExpr+" WHERE id = ?", outfitID)
		if err != nil {
			return fmt.Errorf("failed to touch outfit: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n == 0 {
			return nil
		}

		found = true
		return replaceOutfitItems(ctx, tx, outfitID, itemIDs)
	})
	if err != nil {
		logger.Warn("Failed to set outfit items", "outfit_id", outfitID, "error", err)
		return false, err
	}

	return found, nil
}

// DeleteOutfit removes the outfit and its memberships. Items survive, and
// logs of the outfit keep their date with a null outfit reference.
func DeleteOutfit(ctx context.Context, db *sqlx.DB, id int64) (bool, error) {
	result, err := db.ExecContext(ctx, "DELETE FROM outfits WHERE id = ?", id)
	if err != nil {
		return false, wrapError("delete outfit", "outfits", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// OutfitsContainingItem returns the ids of the outfits the item belongs to.
func OutfitsContainingItem(ctx context.Context, db *sqlx.DB, itemID int64) ([]int64, error) {
	ids := []int64{}
	err := db.SelectContext(ctx, &ids,
		"SELECT outfit_id FROM outfit_items WHERE clothing_item_id = ? ORDER BY outfit_id", itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outfits for item: %w", err)
	}
	return ids, nil
}

func replaceOutfitItems(ctx context.Context, tx *sqlx.Tx, outfitID int64, itemIDs []int64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM outfit_items WHERE outfit_id = ?", outfitID); err != nil {
		return fmt.Errorf("failed to clear outfit items: %w", err)
	}

	ids := uniqueIDs(itemIDs)
	if len(ids) == 0 {
		return nil
	}

	insert := sq.Insert("outfit_items").Columns("outfit_id", "clothing_item_id")
	for _, id := range ids {
		insert = insert.Values(outfitID, id)
	}
	if _, err := execBuilder(ctx, tx, insert); err != nil {
		return wrapError("set outfit items", "outfit_items", err)
	}

	return nil
}
