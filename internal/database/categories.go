package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wardrobe/internal/models"

	"github.com/jmoiron/sqlx"
)

func ListCategories(ctx context.Context, db *sqlx.DB) ([]models.Category, error) {
	var categories []models.Category
	err := db.SelectContext(ctx, &categories,
		"SELECT id, name, sort_order FROM categories ORDER BY sort_order, name")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	return categories, nil
}

func GetCategory(ctx context.Context, db *sqlx.DB, id int64) (*models.Category, error) {
	var category models.Category
	err := db.GetContext(ctx, &category, "SELECT id, name, sort_order FROM categories WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// FindCategory looks a category up by name, case-insensitively.
func FindCategory(ctx context.Context, db *sqlx.DB, name string) (*models.Category, error) {
	var category models.Category
	err := db.GetContext(ctx, &category,
		"SELECT id, name, sort_order FROM categories WHERE name = ? COLLATE NOCASE", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return &category, nil
}

func ListSubcategories(ctx context.Context, db *sqlx.DB, categoryID int64) ([]models.Subcategory, error) {
	var subcategories []models.Subcategory
	err := db.SelectContext(ctx, &subcategories,
		"SELECT id, category_id, name, sort_order FROM subcategories WHERE category_id = ? ORDER BY sort_order, name",
		categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subcategories: %w", err)
	}
	return subcategories, nil
}

func ListSizeSystems(ctx context.Context, db *sqlx.DB) ([]models.SizeSystem, error) {
	var systems []models.SizeSystem
	if err := db.SelectContext(ctx, &systems, "SELECT id, name FROM size_systems ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to query size systems: %w", err)
	}
	return systems, nil
}

func ListSizeValues(ctx context.Context, db *sqlx.DB, sizeSystemID int64) ([]models.SizeValue, error) {
	var values []models.SizeValue
	err := db.SelectContext(ctx, &values,
		"SELECT id, size_system_id, value, sort_order FROM size_values WHERE size_system_id = ? ORDER BY sort_order, id",
		sizeSystemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query size values: %w", err)
	}
	return values, nil
}
