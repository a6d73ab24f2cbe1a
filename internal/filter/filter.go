// Package filter turns a filter selection into the ordered list of items to
// show. The work is split into stages that can be exercised on their own:
// junction filters are resolved to id sets, the sets are intersected, scalar
// predicates run over the loaded items, the membership set is applied and
// the survivors are sorted.
package filter

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"wardrobe/internal/database"
	"wardrobe/internal/models"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

type SortOrder string

const (
	SortRecentlyAdded SortOrder = "recently_added"
	SortNameAsc       SortOrder = "name_asc"
	SortNameDesc      SortOrder = "name_desc"
	SortMostWorn      SortOrder = "most_worn"
	SortLeastWorn     SortOrder = "least_worn"
	SortPurchaseDate  SortOrder = "purchase_date"
)

var SortOrders = []SortOrder{SortRecentlyAdded, SortNameAsc, SortNameDesc, SortMostWorn, SortLeastWorn, SortPurchaseDate}

func ParseSortOrder(s string) (SortOrder, error) {
	if s == "" {
		return SortRecentlyAdded, nil
	}
	o := SortOrder(strings.ToLower(s))
	if !slices.Contains(SortOrders, o) {
		return "", fmt.Errorf("unknown sort order %q", s)
	}
	return o, nil
}

// Query is one filter selection. Zero fields are inactive.
type Query struct {
	CategoryID    *int64
	SubcategoryID *int64
	Status        *models.ItemStatus
	// Brand matches case-insensitively.
	Brand string
	// Search is a case-insensitive substring of name, brand or notes.
	Search string
	// HideArchived drops every item that is not Active.
	HideArchived bool
	// Tags holds one required tag id per kind; an item must carry all of them.
	Tags map[models.TagKind]int64
	Sort SortOrder
}

// IDSet is a set of item ids.
type IDSet map[int64]struct{}

func NewIDSet(ids ...int64) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

type Engine struct {
	db   *sqlx.DB
	lang language.Tag
}

// NewEngine builds an engine that compares names using the collation rules
// of lang.
func NewEngine(db *sqlx.DB, lang language.Tag) *Engine {
	return &Engine{db: db, lang: lang}
}

// Resolve runs the whole pipeline for q.
func (e *Engine) Resolve(ctx context.Context, q Query) ([]models.ClothingItem, error) {
	sets, err := ResolveMemberships(ctx, e.db, q.Tags)
	if err != nil {
		return nil, err
	}
	membership := Intersect(sets)

	items, err := database.ListItems(ctx, e.db)
	if err != nil {
		return nil, err
	}

	items = ApplyScalar(items, q)
	items = ApplyMembership(items, membership)

	var wears map[int64]int
	if q.Sort == SortMostWorn || q.Sort == SortLeastWorn {
		wears, err = database.WearCountsSince(ctx, e.db, "")
		if err != nil {
			return nil, err
		}
	}

	return SortItems(items, q.Sort, wears, e.lang)
}

// ResolveMemberships resolves each junction filter to the set of items that
// carry the tag. Sets come back in TagKinds order.
func ResolveMemberships(ctx context.Context, db *sqlx.DB, tags map[models.TagKind]int64) ([]IDSet, error) {
	kinds := make([]models.TagKind, 0, len(tags))
	for _, kind := range models.TagKinds {
		if _, ok := tags[kind]; ok {
			kinds = append(kinds, kind)
		}
	}
	if len(kinds) != len(tags) {
		for kind := range tags {
			if !slices.Contains(kinds, kind) {
				return nil, fmt.Errorf("%w: %q", database.ErrUnknownTagKind, kind)
			}
		}
	}

	sets := make([]IDSet, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			ids, err := database.ItemIDsWithTag(gctx, db, kind, tags[kind])
			if err != nil {
				return err
			}
			sets[i] = NewIDSet(ids...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return sets, nil
}

// Intersect returns the ids present in every set. With no sets there is no
// membership constraint and the result is nil.
func Intersect(sets []IDSet) IDSet {
	if len(sets) == 0 {
		return nil
	}

	smallest := sets[0]
	for _, s := range sets[1:] {
		if len(s) < len(smallest) {
			smallest = s
		}
	}

	out := IDSet{}
	for id := range smallest {
		inAll := true
		for _, s := range sets {
			if !s.Has(id) {
				inAll = false
				break
			}
		}
		if inAll {
			out[id] = struct{}{}
		}
	}
	return out
}

// ApplyScalar keeps the items matching every scalar predicate of q, in order.
func ApplyScalar(items []models.ClothingItem, q Query) []models.ClothingItem {
	brand := strings.TrimSpace(q.Brand)
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]models.ClothingItem, 0, len(items))
	for _, item := range items {
		if q.CategoryID != nil && (item.CategoryID == nil || *item.CategoryID != *q.CategoryID) {
			continue
		}
		if q.SubcategoryID != nil && (item.SubcategoryID == nil || *item.SubcategoryID != *q.SubcategoryID) {
			continue
		}
		if q.Status != nil && item.Status != *q.Status {
			continue
		}
		if q.HideArchived && item.Status != models.StatusActive {
			continue
		}
		if brand != "" && (item.Brand == nil || !strings.EqualFold(strings.TrimSpace(*item.Brand), brand)) {
			continue
		}
		if search != "" && !matchesSearch(item, search) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesSearch(item models.ClothingItem, needle string) bool {
	if strings.Contains(strings.ToLower(item.Name), needle) {
		return true
	}
	for _, field := range []*string{item.Brand, item.Notes} {
		if field != nil && strings.Contains(strings.ToLower(*field), needle) {
			return true
		}
	}
	return false
}

// ApplyMembership keeps only items in set. A nil set keeps everything.
func ApplyMembership(items []models.ClothingItem, set IDSet) []models.ClothingItem {
	if set == nil {
		return items
	}

	out := make([]models.ClothingItem, 0, len(set))
	for _, item := range items {
		if set.Has(item.ID) {
			out = append(out, item)
		}
	}
	return out
}
