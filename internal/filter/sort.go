package filter

import (
	"cmp"
	"fmt"
	"slices"

	"wardrobe/internal/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortItems orders items by order. The sort is stable: ties keep the order
// items arrived in, which for store listings is recently-added. wears is only
// read by the wear-count orders; missing entries count as zero.
func SortItems(items []models.ClothingItem, order SortOrder, wears map[int64]int, lang language.Tag) ([]models.ClothingItem, error) {
	sorted := slices.Clone(items)

	switch order {
	case "", SortRecentlyAdded:
		slices.SortStableFunc(sorted, func(a, b models.ClothingItem) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	case SortNameAsc, SortNameDesc:
		col := collate.New(lang, collate.IgnoreCase)
		slices.SortStableFunc(sorted, func(a, b models.ClothingItem) int {
			c := col.CompareString(a.Name, b.Name)
			if order == SortNameDesc {
				return -c
			}
			return c
		})
	case SortMostWorn:
		slices.SortStableFunc(sorted, func(a, b models.ClothingItem) int {
			return cmp.Compare(wears[b.ID], wears[a.ID])
		})
	case SortLeastWorn:
		slices.SortStableFunc(sorted, func(a, b models.ClothingItem) int {
			return cmp.Compare(wears[a.ID], wears[b.ID])
		})
	case SortPurchaseDate:
		slices.SortStableFunc(sorted, comparePurchaseDate)
	default:
		return nil, fmt.Errorf("unknown sort order %q", order)
	}

	return sorted, nil
}

// comparePurchaseDate puts the newest purchases first and undated items last.
func comparePurchaseDate(a, b models.ClothingItem) int {
	switch {
	case a.PurchaseDate == nil && b.PurchaseDate == nil:
		return 0
	case a.PurchaseDate == nil:
		return 1
	case b.PurchaseDate == nil:
		return -1
	}
	return b.PurchaseDate.Compare(*a.PurchaseDate)
}
