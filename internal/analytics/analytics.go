// Package analytics computes read-only views over the wardrobe: wear counts,
// cost-per-wear, calendar summaries and categorical breakdowns. Nothing is
// cached; every call reflects the store as it is at call time.
package analytics

import (
	"context"
	"fmt"
	"slices"
	"time"

	"wardrobe/internal/database"
	"wardrobe/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// TopN caps the most, least and never worn lists.
const TopN = 15

type Engine struct {
	db *sqlx.DB
}

func NewEngine(db *sqlx.DB) *Engine {
	return &Engine{db: db}
}

type ItemWearCount struct {
	Item  models.ClothingItem `json:"item"`
	Wears int                 `json:"wears"`
}

type ItemInsight struct {
	ItemID      int64               `json:"item_id"`
	Wears       int                 `json:"wears"`
	CostPerWear decimal.NullDecimal `json:"cost_per_wear"`
	LastWorn    *string             `json:"last_worn,omitempty"`
}

type DaySummary struct {
	Date    string `json:"date"`
	Logs    int    `json:"logs"`
	HasOOTD bool   `json:"has_ootd"`
}

type Overview struct {
	ActiveItems int             `json:"active_items"`
	WornItems   int             `json:"worn_items"`
	UnwornItems int             `json:"unworn_items"`
	TotalValue  decimal.Decimal `json:"total_value"`
}

// WearCounts returns every item's wear count, counting logs dated on or after
// from. An empty from counts all logs.
func (e *Engine) WearCounts(ctx context.Context, from string) (map[int64]int, error) {
	if err := validateFrom(from); err != nil {
		return nil, err
	}
	return database.WearCountsSince(ctx, e.db, from)
}

// WearCount returns the number of distinct logs whose outfit currently
// includes the item.
func (e *Engine) WearCount(ctx context.Context, itemID int64) (int, error) {
	summary, err := database.ItemWearSummary(ctx, e.db, itemID)
	if err != nil {
		return 0, err
	}
	return summary.Wears, nil
}

// CostPerWear divides price by wears, rounded to cents. It is null when there
// is no price or the item was never worn.
func CostPerWear(price decimal.NullDecimal, wears int) decimal.NullDecimal {
	if !price.Valid || wears <= 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(price.Decimal.Div(decimal.NewFromInt(int64(wears))).Round(2))
}

// ItemInsight returns the wear statistics of one item, or nil if the item
// does not exist.
func (e *Engine) ItemInsight(ctx context.Context, itemID int64) (*ItemInsight, error) {
	item, err := database.GetItem(ctx, e.db, itemID)
	if err != nil || item == nil {
		return nil, err
	}

	summary, err := database.ItemWearSummary(ctx, e.db, itemID)
	if err != nil {
		return nil, err
	}

	return &ItemInsight{
		ItemID:      itemID,
		Wears:       summary.Wears,
		CostPerWear: CostPerWear(item.PurchasePrice, summary.Wears),
		LastWorn:    summary.LastWorn,
	}, nil
}

// Calendar returns one summary per day of the month, including days with no logs.
func (e *Engine) Calendar(ctx context.Context, year int, month time.Month) ([]DaySummary, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month %d", month)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	activity, err := database.LogActivity(ctx, e.db, models.FormatDate(first), models.FormatDate(last))
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]database.DayActivity, len(activity))
	for _, a := range activity {
		byDate[a.Date] = a
	}

	days := make([]DaySummary, 0, last.Day())
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		date := models.FormatDate(d)
		a := byDate[date]
		days = append(days, DaySummary{Date: date, Logs: a.Logs, HasOOTD: a.HasOOTD})
	}
	return days, nil
}

// Overview summarizes the active wardrobe. Worn and unworn counts honor from;
// the total value never does.
func (e *Engine) Overview(ctx context.Context, from string) (*Overview, error) {
	active, wears, err := e.activeWithWears(ctx, from)
	if err != nil {
		return nil, err
	}

	total, err := database.TotalActiveValue(ctx, e.db)
	if err != nil {
		return nil, err
	}

	o := &Overview{ActiveItems: len(active), TotalValue: total}
	for _, item := range active {
		if wears[item.ID] > 0 {
			o.WornItems++
		} else {
			o.UnwornItems++
		}
	}
	return o, nil
}

// MostWorn ranks active items by wear count, highest first. Ties keep
// recently-added order.
func (e *Engine) MostWorn(ctx context.Context, from string) ([]ItemWearCount, error) {
	ranked, err := e.ranked(ctx, from, func(int) bool { return true })
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(ranked, func(a, b ItemWearCount) int { return b.Wears - a.Wears })
	return capped(ranked), nil
}

// LeastWorn ranks active items worn at least once, lowest first.
func (e *Engine) LeastWorn(ctx context.Context, from string) ([]ItemWearCount, error) {
	ranked, err := e.ranked(ctx, from, func(w int) bool { return w >= 1 })
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(ranked, func(a, b ItemWearCount) int { return a.Wears - b.Wears })
	return capped(ranked), nil
}

// NeverWorn lists active items with no wears, most recently added first.
func (e *Engine) NeverWorn(ctx context.Context, from string) ([]ItemWearCount, error) {
	ranked, err := e.ranked(ctx, from, func(w int) bool { return w == 0 })
	if err != nil {
		return nil, err
	}
	return capped(ranked), nil
}

func (e *Engine) ranked(ctx context.Context, from string, keep func(wears int) bool) ([]ItemWearCount, error) {
	active, wears, err := e.activeWithWears(ctx, from)
	if err != nil {
		return nil, err
	}

	ranked := []ItemWearCount{}
	for _, item := range active {
		if w := wears[item.ID]; keep(w) {
			ranked = append(ranked, ItemWearCount{Item: item, Wears: w})
		}
	}
	return ranked, nil
}

func (e *Engine) activeWithWears(ctx context.Context, from string) ([]models.ClothingItem, map[int64]int, error) {
	wears, err := e.WearCounts(ctx, from)
	if err != nil {
		return nil, nil, err
	}

	items, err := database.ListItems(ctx, e.db)
	if err != nil {
		return nil, nil, err
	}

	active := items[:0]
	for _, item := range items {
		if item.Status == models.StatusActive {
			active = append(active, item)
		}
	}
	return active, wears, nil
}

func capped(items []ItemWearCount) []ItemWearCount {
	if len(items) > TopN {
		return items[:TopN]
	}
	return items
}

func validateFrom(from string) error {
	if from == "" {
		return nil
	}
	_, err := models.ParseDate(from)
	return err
}
