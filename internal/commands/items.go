package commands

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"wardrobe/internal/analytics"
	"wardrobe/internal/database"
	"wardrobe/internal/filter"
	"wardrobe/internal/models"
	"wardrobe/internal/settings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

func newItemsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "List, show and add clothing items",
	}
	cmd.AddCommand(newItemsListCommand(a), newItemsShowCommand(a), newItemsAddCommand(a))
	return cmd
}

type tagFlags struct {
	color    string
	season   string
	occasion string
	material string
	pattern  string
}

func (f *tagFlags) register(cmd *cobra.Command, verb string) {
	cmd.Flags().StringVar(&f.color, "color", "", verb+" color name")
	cmd.Flags().StringVar(&f.season, "season", "", verb+" season name")
	cmd.Flags().StringVar(&f.occasion, "occasion", "", verb+" occasion name")
	cmd.Flags().StringVar(&f.material, "material", "", verb+" material name")
	cmd.Flags().StringVar(&f.pattern, "pattern", "", verb+" pattern name")
}

// resolve maps the given tag names to ids.
func (f *tagFlags) resolve(ctx context.Context, db *sqlx.DB) (map[models.TagKind]int64, error) {
	names := map[models.TagKind]string{
		models.TagColor:    f.color,
		models.TagSeason:   f.season,
		models.TagOccasion: f.occasion,
		models.TagMaterial: f.material,
		models.TagPattern:  f.pattern,
	}

	ids := map[models.TagKind]int64{}
	for kind, name := range names {
		if name == "" {
			continue
		}
		tag, err := database.FindTag(ctx, db, kind, name)
		if err != nil {
			return nil, err
		}
		if tag == nil {
			return nil, fmt.Errorf("unknown %s %q", kind, name)
		}
		ids[kind] = tag.ID
	}
	return ids, nil
}

func findCategoryID(ctx context.Context, db *sqlx.DB, name string) (*int64, error) {
	if name == "" {
		return nil, nil
	}
	category, err := database.FindCategory(ctx, db, name)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("unknown category %q", name)
	}
	return &category.ID, nil
}

func newItemsListCommand(a *app) *cobra.Command {
	var (
		sortOrder    string
		category     string
		status       string
		brand        string
		search       string
		hideArchived bool
		lang         string
		tags         tagFlags
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items matching every given filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.db(cmd)
			if err != nil {
				return err
			}

			order, err := filter.ParseSortOrder(sortOrder)
			if err != nil {
				return err
			}
			tag, err := language.Parse(lang)
			if err != nil {
				return fmt.Errorf("invalid language %q: %w", lang, err)
			}

			q := filter.Query{Brand: brand, Search: search, Sort: order}
			if q.CategoryID, err = findCategoryID(ctx, db, category); err != nil {
				return err
			}
			if q.Tags, err = tags.resolve(ctx, db); err != nil {
				return err
			}
			if status != "" {
				s := models.ItemStatus(status)
				if !s.Valid() {
					return fmt.Errorf("invalid status %q", status)
				}
				q.Status = &s
			}

			if cmd.Flags().Changed("hide-archived") {
				q.HideArchived = hideArchived
			} else {
				prefs, err := settings.NewService(db).Get(ctx)
				if err != nil {
					return err
				}
				q.HideArchived = !prefs.ShowArchived
			}

			items, err := filter.NewEngine(db, tag).Resolve(ctx, q)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tBRAND\tSTATUS\tADDED")
			for _, item := range items {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					item.ID, item.Name, orDash(item.Brand), item.Status, item.CreatedAt.Format(models.DateLayout))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&sortOrder, "sort", string(filter.SortRecentlyAdded), "Sort order: recently_added, name_asc, name_desc, most_worn, least_worn, purchase_date")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category name")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status: Active, Sold, Donated, Lost")
	cmd.Flags().StringVar(&brand, "brand", "", "Filter by brand (case-insensitive)")
	cmd.Flags().StringVar(&search, "search", "", "Match name, brand or notes")
	cmd.Flags().BoolVar(&hideArchived, "hide-archived", true, "Hide items that are not Active (defaults to the show_archived setting)")
	cmd.Flags().StringVar(&lang, "lang", "en", "Language used to compare names")
	tags.register(cmd, "Filter by")

	return cmd
}

func newItemsShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one item with its tags and wear statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}

			db, err := a.db(cmd)
			if err != nil {
				return err
			}

			item, err := database.GetItem(ctx, db, id)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("item %d not found", id)
			}

			tags, err := database.GetItemTags(ctx, db, id)
			if err != nil {
				return err
			}
			insight, err := analytics.NewEngine(db).ItemInsight(ctx, id)
			if err != nil {
				return err
			}
			prefs, err := settings.NewService(db).Get(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (#%d)\n", item.Name, item.ID)
			fmt.Fprintf(out, "  Brand:     %s\n", orDash(item.Brand))
			fmt.Fprintf(out, "  Status:    %s, %s\n", item.Status, item.WashStatus)
			fmt.Fprintf(out, "  Price:     %s\n", formatMoney(prefs.CurrencySymbol, item.PurchasePrice))
			for _, kind := range models.TagKinds {
				if len(tags[kind]) == 0 {
					continue
				}
				names := make([]string, len(tags[kind]))
				for i, t := range tags[kind] {
					names[i] = t.Name
				}
				fmt.Fprintf(out, "  %-10s %v\n", string(kind)+":", names)
			}
			fmt.Fprintf(out, "  Wears:     %d\n", insight.Wears)
			fmt.Fprintf(out, "  Per wear:  %s\n", formatMoney(prefs.CurrencySymbol, insight.CostPerWear))
			if insight.LastWorn != nil {
				fmt.Fprintf(out, "  Last worn: %s\n", *insight.LastWorn)
			}
			return nil
		},
	}
}

func newItemsAddCommand(a *app) *cobra.Command {
	var (
		brand     string
		category  string
		price     string
		purchased string
		notes     string
		favorite  bool
		tags      tagFlags
	)

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a clothing item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.db(cmd)
			if err != nil {
				return err
			}

			item := models.ClothingItem{Name: args[0], IsFavorite: favorite}
			if brand != "" {
				item.Brand = &brand
			}
			if notes != "" {
				item.Notes = &notes
			}
			if price != "" {
				p, err := decimal.NewFromString(price)
				if err != nil {
					return fmt.Errorf("invalid price %q: %w", price, err)
				}
				item.PurchasePrice = decimal.NewNullDecimal(p)
			}
			if purchased != "" {
				d, err := models.ParseDate(purchased)
				if err != nil {
					return err
				}
				item.PurchaseDate = &d
			}
			if item.CategoryID, err = findCategoryID(ctx, db, category); err != nil {
				return err
			}

			tagIDs, err := tags.resolve(ctx, db)
			if err != nil {
				return err
			}

			id, err := database.CreateItem(ctx, db, item)
			if err != nil {
				return err
			}
			for kind, tagID := range tagIDs {
				if err := database.SetItemTags(ctx, db, id, kind, []int64{tagID}); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added item %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&brand, "brand", "", "Brand")
	cmd.Flags().StringVar(&category, "category", "", "Category name")
	cmd.Flags().StringVar(&price, "price", "", "Purchase price")
	cmd.Flags().StringVar(&purchased, "purchased", "", "Purchase date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	cmd.Flags().BoolVar(&favorite, "favorite", false, "Mark as favorite")
	tags.register(cmd, "Tag with")

	return cmd
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func formatMoney(symbol string, v decimal.NullDecimal) string {
	if !v.Valid {
		return "-"
	}
	return symbol + v.Decimal.StringFixed(2)
}
