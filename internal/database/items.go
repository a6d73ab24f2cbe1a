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
	"github.com/shopspring/decimal"
)

const itemColumns = `id, name, brand, category_id, subcategory_id, size_system_id, size_value_id,
	waist, inseam, purchase_price, purchase_date, purchase_location, image_uri, notes,
	status, wash_status, is_favorite, created_at, updated_at`

// CreateItem inserts a clothing item and returns its id. Empty status fields
// take the column defaults.
func CreateItem(ctx context.Context, db *sqlx.DB, item models.ClothingItem) (int64, error) {
	cols := map[string]interface{}{
		"name":        item.Name,
		"is_favorite": item.IsFavorite,
	}
	setOptional(cols, "brand", item.Brand)
	setOptional(cols, "category_id", item.CategoryID)
	setOptional(cols, "subcategory_id", item.SubcategoryID)
	setOptional(cols, "size_system_id", item.SizeSystemID)
	setOptional(cols, "size_value_id", item.SizeValueID)
	setOptional(cols, "waist", item.Waist)
	setOptional(cols, "inseam", item.Inseam)
	setOptional(cols, "purchase_date", item.PurchaseDate)
	setOptional(cols, "purchase_location", item.PurchaseLocation)
	setOptional(cols, "image_uri", item.ImageURI)
	setOptional(cols, "notes", item.Notes)
	if item.PurchasePrice.Valid {
		cols["purchase_price"] = item.PurchasePrice
	}
	if item.Status != "" {
		cols["status"] = string(item.Status)
	}
	if item.WashStatus != "" {
		cols["wash_status"] = string(item.WashStatus)
	}

	var id int64
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		if err := checkItemReferences(ctx, tx, item); err != nil {
			return err
		}

		query, args, err := sq.Insert("clothing_items").SetMap(cols).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build item insert: %w", err)
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return wrapError("create item", "clothing_items", err)
		}

		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get item ID: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Warn("Failed to create item", "name", item.Name, "error", err)
		return 0, err
	}

	return id, nil
}

// GetItem returns the item or nil when no such row exists.
func GetItem(ctx context.Context, db *sqlx.DB, id int64) (*models.ClothingItem, error) {
	return getItem(ctx, db, id)
}

func getItem(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.ClothingItem, error) {
	var item models.ClothingItem
	err := sqlx.GetContext(ctx, q, &item, "SELECT "+itemColumns+" FROM clothing_items WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

// ListItems returns every item, most recently added first. Items created in
// the same instant keep id-descending order.
func ListItems(ctx context.Context, db *sqlx.DB) ([]models.ClothingItem, error) {
	var items []models.ClothingItem
	err := db.SelectContext(ctx, &items,
		"SELECT "+itemColumns+" FROM clothing_items ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	return items, nil
}

// UpdateItem applies only the fields set in patch and refreshes updated_at.
// It returns the updated row, or nil when the item does not exist.
func UpdateItem(ctx context.Context, db *sqlx.DB, id int64, patch models.ItemPatch) (*models.ClothingItem, error) {
	var updated *models.ClothingItem
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		current, err := getItem(ctx, tx, id)
		if err != nil || current == nil {
			return err
		}

		if err := checkItemReferences(ctx, tx, patch.Apply(*current)); err != nil {
			return err
		}

		cols := patch.Columns()
		cols["updated_at"] = sq.Expr(nowExpr)
		_, err = execBuilder(ctx, tx, sq.Update("clothing_items").SetMap(cols).Where(sq.Eq{"id": id}))
		if err != nil {
			return wrapError("update item", "clothing_items", err)
		}

		updated, err = getItem(ctx, tx, id)
		return err
	})
	if err != nil {
		logger.Warn("Failed to update item", "item_id", id, "error", err)
		return nil, err
	}

	return updated, nil
}

// DeleteItem removes the item. Tag associations and outfit memberships go
// with it; outfit logs are untouched. It reports whether a row was removed.
func DeleteItem(ctx context.Context, db *sqlx.DB, id int64) (bool, error) {
	result, err := db.ExecContext(ctx, "DELETE FROM clothing_items WHERE id = ?", id)
	if err != nil {
		return false, wrapError("delete item", "clothing_items", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// TotalActiveValue sums the purchase price of active items.
func TotalActiveValue(ctx context.Context, db *sqlx.DB) (decimal.Decimal, error) {
	var prices []decimal.NullDecimal
	err := db.SelectContext(ctx, &prices,
		"SELECT purchase_price FROM clothing_items WHERE status = ? AND purchase_price IS NOT NULL",
		string(models.StatusActive))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query item prices: %w", err)
	}

	total := decimal.Zero
	for _, p := range prices {
		total = total.Add(p.Decimal)
	}
	return total, nil
}

// checkItemReferences rejects a subcategory outside the item's category and a
// size value outside the item's size system. Unknown ids are left to the
// foreign keys.
func checkItemReferences(ctx context.Context, q sqlx.QueryerContext, item models.ClothingItem) error {
	if item.SubcategoryID != nil {
		var parent int64
		err := sqlx.GetContext(ctx, q, &parent, "SELECT category_id FROM subcategories WHERE id = ?", *item.SubcategoryID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("failed to look up subcategory: %w", err)
		case item.CategoryID == nil || *item.CategoryID != parent:
			return fmt.Errorf("%w: subcategory %d belongs to category %d", ErrInconsistentReference, *item.SubcategoryID, parent)
		}
	}

	if item.SizeValueID != nil {
		var parent int64
		err := sqlx.GetContext(ctx, q, &parent, "SELECT size_system_id FROM size_values WHERE id = ?", *item.SizeValueID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("failed to look up size value: %w", err)
		case item.SizeSystemID == nil || *item.SizeSystemID != parent:
			return fmt.Errorf("%w: size value %d belongs to size system %d", ErrInconsistentReference, *item.SizeValueID, parent)
		}
	}

	return nil
}

func setOptional[T any](cols map[string]interface{}, column string, v *T) {
	if v != nil {
		cols[column] = *v
	}
}
