package analytics

import (
	"context"
	"fmt"
	"strings"

	"wardrobe/internal/database"
	"wardrobe/internal/models"
)

// Dimension is an attribute active items can be grouped by.
type Dimension string

const (
	ByCategory Dimension = "category"
	ByColor    Dimension = "color"
	ByBrand    Dimension = "brand"
	ByMaterial Dimension = "material"
	ByOccasion Dimension = "occasion"
	BySeason   Dimension = "season"
)

var Dimensions = []Dimension{ByCategory, ByColor, ByBrand, ByMaterial, ByOccasion, BySeason}

func ParseDimension(s string) (Dimension, error) {
	d := Dimension(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Dimensions {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown breakdown dimension %q", s)
}

// BreakdownEntry is one bar of a breakdown. Hex is set for colors that have one.
type BreakdownEntry struct {
	Label string  `json:"label"`
	Hex   *string `json:"hex,omitempty"`
	Count int     `json:"count"`
}

// BreakdownBy counts active items per value of the dimension. Entries are
// ordered by label, not by count.
func (e *Engine) BreakdownBy(ctx context.Context, dim Dimension) ([]BreakdownEntry, error) {
	var (
		rows []database.BreakdownRow
		err  error
	)

	switch dim {
	case ByCategory:
		rows, err = database.BreakdownByCategory(ctx, e.db)
	case ByBrand:
		rows, err = database.BreakdownByBrand(ctx, e.db)
	case ByColor:
		rows, err = database.BreakdownByTag(ctx, e.db, models.TagColor)
	case ByMaterial:
		rows, err = database.BreakdownByTag(ctx, e.db, models.TagMaterial)
	case ByOccasion:
		rows, err = database.BreakdownByTag(ctx, e.db, models.TagOccasion)
	case BySeason:
		rows, err = database.BreakdownByTag(ctx, e.db, models.TagSeason)
	default:
		return nil, fmt.Errorf("unknown breakdown dimension %q", dim)
	}
	if err != nil {
		return nil, err
	}

	entries := make([]BreakdownEntry, len(rows))
	for i, r := range rows {
		entries[i] = BreakdownEntry{Label: r.Label, Hex: r.Hex, Count: r.Count}
	}
	return entries, nil
}
