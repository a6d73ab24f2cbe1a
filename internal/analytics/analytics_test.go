package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"wardrobe/internal/database"
	"wardrobe/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEngine(t *testing.T) (*Engine, *sqlx.DB) {
	t.Helper()

	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, database.Migrate(ctx, db))
	require.NoError(t, database.Seed(ctx, db))

	return NewEngine(db), db
}

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func newItem(t *testing.T, db *sqlx.DB, item models.ClothingItem) int64 {
	t.Helper()
	id, err := database.CreateItem(context.Background(), db, item)
	require.NoError(t, err)
	return id
}

func newOutfit(t *testing.T, db *sqlx.DB, items ...int64) int64 {
	t.Helper()
	id, err := database.CreateOutfit(context.Background(), db, models.Outfit{}, items)
	require.NoError(t, err)
	return id
}

func logWear(t *testing.T, db *sqlx.DB, outfit int64, date string) {
	t.Helper()
	_, err := database.CreateOutfitLog(context.Background(), db, models.OutfitLog{OutfitID: &outfit, Date: date})
	require.NoError(t, err)
}

func TestCostPerWear(t *testing.T) {
	tests := []struct {
		name  string
		price decimal.NullDecimal
		wears int
		want  string
	}{
		{"never worn", price("50"), 0, ""},
		{"five wears", price("50"), 5, "10.00"},
		{"no price", decimal.NullDecimal{}, 3, ""},
		{"no price never worn", decimal.NullDecimal{}, 0, ""},
		{"rounded to cents", price("100"), 3, "33.33"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CostPerWear(tt.price, tt.wears)
			if tt.want == "" {
				assert.False(t, got.Valid)
				return
			}
			require.True(t, got.Valid)
			assert.Equal(t, tt.want, got.Decimal.StringFixed(2))
		})
	}
}

func TestNavyOxfordShirtScenario(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()

	shirt := newItem(t, db, models.ClothingItem{Name: "Navy Oxford Shirt", PurchasePrice: price("60.00")})
	outfit := newOutfit(t, db, shirt)

	logID, err := database.CreateOutfitLog(ctx, db, models.OutfitLog{OutfitID: &outfit, Date: "2025-03-21", IsOOTD: true})
	require.NoError(t, err)

	insight, err := engine.ItemInsight(ctx, shirt)
	require.NoError(t, err)
	require.NotNil(t, insight)
	assert.Equal(t, 1, insight.Wears)
	require.True(t, insight.CostPerWear.Valid)
	assert.Equal(t, "60.00", insight.CostPerWear.Decimal.StringFixed(2))
	assert.Equal(t, "2025-03-21", *insight.LastWorn)

	other := newOutfit(t, db)
	_, err = database.CreateOutfitLog(ctx, db, models.OutfitLog{OutfitID: &other, Date: "2025-03-21", IsOOTD: true})
	assert.True(t, database.IsConstraint(err, database.ConstraintUnique), "got %v", err)

	deleted, err := database.DeleteOutfit(ctx, db, outfit)
	require.NoError(t, err)
	require.True(t, deleted)

	log, err := database.GetOutfitLog(ctx, db, logID)
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.Nil(t, log.OutfitID)
	assert.Equal(t, "2025-03-21", log.Date)
	assert.True(t, log.IsOOTD)
}

// Wear counts read the outfit's membership at query time, so editing an
// outfit after it was logged changes the history of the items involved.
// These assertions pin that behavior down; changing it is a product decision.
func TestWearCountFollowsCurrentOutfitMembership(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()

	original := newItem(t, db, models.ClothingItem{Name: "Original"})
	latecomer := newItem(t, db, models.ClothingItem{Name: "Latecomer"})
	outfit := newOutfit(t, db, original)
	logWear(t, db, outfit, "2025-01-05")

	_, err := database.SetOutfitItems(ctx, db, outfit, []int64{latecomer})
	require.NoError(t, err)

	wears, err := engine.WearCount(ctx, latecomer)
	require.NoError(t, err)
	assert.Equal(t, 1, wears, "item added after the log inherits the wear")

	wears, err = engine.WearCount(ctx, original)
	require.NoError(t, err)
	assert.Equal(t, 0, wears, "item removed after the log loses the wear")
}

func TestWearCountCountsDistinctLogsAcrossOutfits(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()

	jeans := newItem(t, db, models.ClothingItem{Name: "Jeans"})
	a := newOutfit(t, db, jeans)
	b := newOutfit(t, db, jeans)
	logWear(t, db, a, "2025-01-01")
	logWear(t, db, a, "2025-01-02")
	logWear(t, db, b, "2025-01-03")

	wears, err := engine.WearCount(ctx, jeans)
	require.NoError(t, err)
	assert.Equal(t, 3, wears)

	counts, err := engine.WearCounts(ctx, "2025-01-02")
	require.NoError(t, err)
	assert.Equal(t, 2, counts[jeans])

	_, err = engine.WearCounts(ctx, "January")
	assert.Error(t, err)
}

func TestItemInsightMissingItem(t *testing.T) {
	engine, _ := setupEngine(t)

	insight, err := engine.ItemInsight(context.Background(), 77)
	assert.NoError(t, err)
	assert.Nil(t, insight)
}

func TestCalendarCoversEveryDayOfMonth(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()

	outfit := newOutfit(t, db)
	_, err := database.CreateOutfitLog(ctx, db, models.OutfitLog{OutfitID: &outfit, Date: "2024-02-29", IsOOTD: true})
	require.NoError(t, err)
	logWear(t, db, outfit, "2024-02-29")
	logWear(t, db, outfit, "2024-02-10")
	logWear(t, db, outfit, "2024-03-01")

	days, err := engine.Calendar(ctx, 2024, time.February)
	require.NoError(t, err)
	require.Len(t, days, 29)

	assert.Equal(t, DaySummary{Date: "2024-02-01"}, days[0])
	assert.Equal(t, DaySummary{Date: "2024-02-10", Logs: 1}, days[9])
	assert.Equal(t, DaySummary{Date: "2024-02-29", Logs: 2, HasOOTD: true}, days[28])

	_, err = engine.Calendar(ctx, 2024, time.Month(13))
	assert.Error(t, err)
}

func TestOverview(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()

	worn := newItem(t, db, models.ClothingItem{Name: "Worn", PurchasePrice: price("40")})
	wornEarly := newItem(t, db, models.ClothingItem{Name: "Worn early", PurchasePrice: price("25.50")})
	newItem(t, db, models.ClothingItem{Name: "Unworn"})
	sold := newItem(t, db, models.ClothingItem{Name: "Sold", Status: models.StatusSold, PurchasePrice: price("500")})

	logWear(t, db, newOutfit(t, db, worn, sold), "2025-03-01")
	logWear(t, db, newOutfit(t, db, wornEarly), "2024-12-01")

	all, err := engine.Overview(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, all.ActiveItems)
	assert.Equal(t, 2, all.WornItems)
	assert.Equal(t, 1, all.UnwornItems)
	assert.Equal(t, "65.50", all.TotalValue.StringFixed(2))

	since, err := engine.Overview(ctx, "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, 3, since.ActiveItems)
	assert.Equal(t, 1, since.WornItems)
	assert.Equal(t, 2, since.UnwornItems)
	assert.True(t, all.TotalValue.Equal(since.TotalValue), "inventory value ignores the date bound")
}

func TestWornLists(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()

	heavy := newItem(t, db, models.ClothingItem{Name: "Heavy"})
	light := newItem(t, db, models.ClothingItem{Name: "Light"})
	never := newItem(t, db, models.ClothingItem{Name: "Never"})
	lost := newItem(t, db, models.ClothingItem{Name: "Lost", Status: models.StatusLost})

	heavyOutfit := newOutfit(t, db, heavy, lost)
	for day := 1; day <= 3; day++ {
		logWear(t, db, heavyOutfit, fmt.Sprintf("2025-04-%02d", day))
	}
	logWear(t, db, newOutfit(t, db, light), "2025-04-10")

	most, err := engine.MostWorn(ctx, "")
	require.NoError(t, err)
	require.Len(t, most, 3)
	assert.Equal(t, []int64{heavy, light, never}, []int64{most[0].Item.ID, most[1].Item.ID, most[2].Item.ID})
	assert.Equal(t, 3, most[0].Wears)

	least, err := engine.LeastWorn(ctx, "")
	require.NoError(t, err)
	require.Len(t, least, 2)
	assert.Equal(t, light, least[0].Item.ID)
	assert.Equal(t, heavy, least[1].Item.ID)

	unworn, err := engine.NeverWorn(ctx, "")
	require.NoError(t, err)
	require.Len(t, unworn, 1)
	assert.Equal(t, never, unworn[0].Item.ID)

	unworn, err = engine.NeverWorn(ctx, "2025-04-05")
	require.NoError(t, err)
	assert.Len(t, unworn, 2, "heavy is unworn within the bound")
}

func TestWornListsAreCapped(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()

	for i := 0; i < TopN+5; i++ {
		newItem(t, db, models.ClothingItem{Name: fmt.Sprintf("Item %02d", i)})
	}

	most, err := engine.MostWorn(ctx, "")
	require.NoError(t, err)
	assert.Len(t, most, TopN)

	unworn, err := engine.NeverWorn(ctx, "")
	require.NoError(t, err)
	assert.Len(t, unworn, TopN)

	least, err := engine.LeastWorn(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, least)
}

func TestBreakdownBy(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()

	blue, err := database.FindTag(ctx, db, models.TagColor, "Blue")
	require.NoError(t, err)
	black, err := database.FindTag(ctx, db, models.TagColor, "Black")
	require.NoError(t, err)

	a := newItem(t, db, models.ClothingItem{Name: "A", Brand: strPtr("Levi's")})
	b := newItem(t, db, models.ClothingItem{Name: "B", Brand: strPtr("Levi's")})
	c := newItem(t, db, models.ClothingItem{Name: "C", Brand: strPtr("Acne")})
	require.NoError(t, database.SetItemTags(ctx, db, a, models.TagColor, []int64{blue.ID}))
	require.NoError(t, database.SetItemTags(ctx, db, b, models.TagColor, []int64{blue.ID}))
	require.NoError(t, database.SetItemTags(ctx, db, c, models.TagColor, []int64{black.ID}))

	colors, err := engine.BreakdownBy(ctx, ByColor)
	require.NoError(t, err)
	require.Len(t, colors, 2)
	assert.Equal(t, "Black", colors[0].Label)
	assert.Equal(t, 1, colors[0].Count)
	assert.Equal(t, "#000000", *colors[0].Hex)
	assert.Equal(t, "Blue", colors[1].Label)
	assert.Equal(t, 2, colors[1].Count)

	brands, err := engine.BreakdownBy(ctx, ByBrand)
	require.NoError(t, err)
	assert.Equal(t, []BreakdownEntry{{Label: "Acne", Count: 1}, {Label: "Levi's", Count: 2}}, brands)

	_, err = engine.BreakdownBy(ctx, Dimension("size"))
	assert.Error(t, err)
}

func TestParseDimension(t *testing.T) {
	d, err := ParseDimension(" Color ")
	require.NoError(t, err)
	assert.Equal(t, ByColor, d)

	_, err = ParseDimension("weather")
	assert.Error(t, err)
}

func strPtr(s string) *string { return &s }
