package filter

import (
	"context"
	"testing"
	"time"

	"wardrobe/internal/database"
	"wardrobe/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/text/language"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))
}

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, database.Migrate(ctx, db))
	require.NoError(t, database.Seed(ctx, db))
	return db
}

func tag(t *testing.T, db *sqlx.DB, kind models.TagKind, name string) int64 {
	t.Helper()
	found, err := database.FindTag(context.Background(), db, kind, name)
	require.NoError(t, err)
	require.NotNil(t, found)
	return found.ID
}

func ids(items []models.ClothingItem) []int64 {
	out := make([]int64, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func strPtr(s string) *string { return &s }

func TestJunctionFiltersIntersect(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	red := tag(t, db, models.TagColor, "Red")
	blue := tag(t, db, models.TagColor, "Blue")
	summer := tag(t, db, models.TagSeason, "Summer")
	winter := tag(t, db, models.TagSeason, "Winter")

	create := func(name string, color, season int64) int64 {
		id, err := database.CreateItem(ctx, db, models.ClothingItem{Name: name})
		require.NoError(t, err)
		require.NoError(t, database.SetItemTags(ctx, db, id, models.TagColor, []int64{color}))
		require.NoError(t, database.SetItemTags(ctx, db, id, models.TagSeason, []int64{season}))
		return id
	}
	a := create("A", red, summer)
	b := create("B", red, winter)
	create("C", blue, summer)

	engine := NewEngine(db, language.English)

	got, err := engine.Resolve(ctx, Query{Tags: map[models.TagKind]int64{
		models.TagColor:  red,
		models.TagSeason: summer,
	}})
	require.NoError(t, err)
	if diff := cmp.Diff([]int64{a}, ids(got)); diff != "" {
		t.Errorf("red AND summer mismatch (-want +got):\n%s", diff)
	}

	got, err = engine.Resolve(ctx, Query{Tags: map[models.TagKind]int64{models.TagColor: red}})
	require.NoError(t, err)
	if diff := cmp.Diff([]int64{a, b}, ids(got), cmpopts.SortSlices(func(x, y int64) bool { return x < y })); diff != "" {
		t.Errorf("red mismatch (-want +got):\n%s", diff)
	}

	got, err = engine.Resolve(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestResolveMembershipsUnknownKind(t *testing.T) {
	db := setupTestDB(t)

	_, err := ResolveMemberships(context.Background(), db, map[models.TagKind]int64{"fabric": 1})
	assert.ErrorIs(t, err, database.ErrUnknownTagKind)
}

func TestIntersect(t *testing.T) {
	assert.Nil(t, Intersect(nil))

	got := Intersect([]IDSet{NewIDSet(1, 2, 3), NewIDSet(2, 3, 4), NewIDSet(3, 2)})
	assert.Equal(t, NewIDSet(2, 3), got)

	empty := Intersect([]IDSet{NewIDSet(1), NewIDSet(2)})
	require.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestApplyMembership(t *testing.T) {
	items := []models.ClothingItem{{ID: 3}, {ID: 2}, {ID: 1}}

	assert.Equal(t, items, ApplyMembership(items, nil))
	assert.Equal(t, []int64{3, 1}, ids(ApplyMembership(items, NewIDSet(1, 3))))
	assert.Empty(t, ApplyMembership(items, IDSet{}))
}

func TestApplyScalar(t *testing.T) {
	tops, bottoms := int64(1), int64(2)
	sold := models.StatusSold

	items := []models.ClothingItem{
		{ID: 1, Name: "Oxford Shirt", Brand: strPtr("Brooks Brothers"), CategoryID: &tops, Status: models.StatusActive},
		{ID: 2, Name: "Chinos", Brand: strPtr("brooks brothers "), CategoryID: &bottoms, Status: models.StatusActive},
		{ID: 3, Name: "Denim Jacket", Brand: strPtr("Levi's"), Notes: strPtr("vintage oxford blue"), Status: models.StatusSold},
		{ID: 4, Name: "Plain Tee", Status: models.StatusActive},
	}

	tests := []struct {
		name  string
		query Query
		want  []int64
	}{
		{"no filters", Query{}, []int64{1, 2, 3, 4}},
		{"category", Query{CategoryID: &tops}, []int64{1}},
		{"brand ignores case", Query{Brand: "BROOKS BROTHERS"}, []int64{1, 2}},
		{"status", Query{Status: &sold}, []int64{3}},
		{"hide archived", Query{HideArchived: true}, []int64{1, 2, 4}},
		{"search name and notes", Query{Search: "OXFORD"}, []int64{1, 3}},
		{"search brand", Query{Search: "levi"}, []int64{3}},
		{"combined", Query{Search: "oxford", HideArchived: true}, []int64{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(ApplyScalar(items, tt.query)))
		})
	}
}

func TestRecentlyAddedSortIsStable(t *testing.T) {
	same := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	later := same.Add(time.Hour)
	items := []models.ClothingItem{
		{ID: 5, CreatedAt: same},
		{ID: 9, CreatedAt: later},
		{ID: 4, CreatedAt: same},
		{ID: 7, CreatedAt: same},
	}

	for i := 0; i < 5; i++ {
		sorted, err := SortItems(items, SortRecentlyAdded, nil, language.English)
		require.NoError(t, err)
		assert.Equal(t, []int64{9, 5, 4, 7}, ids(sorted))
	}
	assert.Equal(t, []int64{5, 9, 4, 7}, ids(items), "input is not reordered")
}

func TestStoreListingWithIdenticalTimestampsIsStable(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"One", "Two", "Three"} {
		_, err := database.CreateItem(ctx, db, models.ClothingItem{Name: name})
		require.NoError(t, err)
	}
	_, err := db.Exec("UPDATE clothing_items SET created_at = '2025-01-01 09:00:00.000'")
	require.NoError(t, err)

	engine := NewEngine(db, language.English)
	first, err := engine.Resolve(ctx, Query{Sort: SortRecentlyAdded})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := engine.Resolve(ctx, Query{Sort: SortRecentlyAdded})
		require.NoError(t, err)
		assert.Equal(t, ids(first), ids(again))
	}
}

func TestNameSortIsLocaleAware(t *testing.T) {
	items := []models.ClothingItem{{ID: 1, Name: "Zip Hoodie"}, {ID: 2, Name: "apron"}, {ID: 3, Name: "Écharpe"}}

	asc, err := SortItems(items, SortNameAsc, nil, language.French)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 1}, ids(asc))

	desc, err := SortItems(items, SortNameDesc, nil, language.French)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 2}, ids(desc))
}

func TestWearSortsKeepTiesInOrder(t *testing.T) {
	items := []models.ClothingItem{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	wears := map[int64]int{1: 2, 2: 5, 4: 2}

	most, err := SortItems(items, SortMostWorn, wears, language.English)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1, 4, 3}, ids(most))

	least, err := SortItems(items, SortLeastWorn, wears, language.English)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 4, 2}, ids(least))
}

func TestPurchaseDateSortPutsUndatedLast(t *testing.T) {
	d := func(s string) *time.Time {
		v, err := time.Parse(models.DateLayout, s)
		require.NoError(t, err)
		return &v
	}
	items := []models.ClothingItem{
		{ID: 1},
		{ID: 2, PurchaseDate: d("2023-05-01")},
		{ID: 3},
		{ID: 4, PurchaseDate: d("2024-11-20")},
		{ID: 5, PurchaseDate: d("2023-05-01")},
	}

	sorted, err := SortItems(items, SortPurchaseDate, nil, language.English)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 2, 5, 1, 3}, ids(sorted))
}

func TestResolveSortsByWearCount(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	rarely, err := database.CreateItem(ctx, db, models.ClothingItem{Name: "Rarely"})
	require.NoError(t, err)
	often, err := database.CreateItem(ctx, db, models.ClothingItem{Name: "Often"})
	require.NoError(t, err)

	rare, err := database.CreateOutfit(ctx, db, models.Outfit{}, []int64{rarely, often})
	require.NoError(t, err)
	usual, err := database.CreateOutfit(ctx, db, models.Outfit{}, []int64{often})
	require.NoError(t, err)
	for _, l := range []models.OutfitLog{
		{OutfitID: &rare, Date: "2025-01-01"},
		{OutfitID: &usual, Date: "2025-01-02"},
	} {
		_, err := database.CreateOutfitLog(ctx, db, l)
		require.NoError(t, err)
	}

	got, err := NewEngine(db, language.English).Resolve(ctx, Query{Sort: SortLeastWorn})
	require.NoError(t, err)
	assert.Equal(t, []int64{rarely, often}, ids(got))
}

func TestParseSortOrder(t *testing.T) {
	o, err := ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, SortRecentlyAdded, o)

	o, err = ParseSortOrder("NAME_DESC")
	require.NoError(t, err)
	assert.Equal(t, SortNameDesc, o)

	_, err = ParseSortOrder("price")
	assert.Error(t, err)

	_, err = SortItems(nil, SortOrder("price"), nil, language.English)
	assert.Error(t, err)
}
