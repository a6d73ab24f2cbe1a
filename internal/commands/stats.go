package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"wardrobe/internal/analytics"
	"wardrobe/internal/models"
	"wardrobe/internal/settings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newStatsCommand(a *app) *cobra.Command {
	var since string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the active wardrobe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.db(cmd)
			if err != nil {
				return err
			}

			overview, err := analytics.NewEngine(db).Overview(ctx, since)
			if err != nil {
				return err
			}
			prefs, err := settings.NewService(db).Get(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Active items: %d\n", overview.ActiveItems)
			fmt.Fprintf(out, "Worn:         %d\n", overview.WornItems)
			fmt.Fprintf(out, "Never worn:   %d\n", overview.UnwornItems)
			fmt.Fprintf(out, "Total value:  %s\n", formatMoney(prefs.CurrencySymbol, decimal.NewNullDecimal(overview.TotalValue)))
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Only count wears on or after this date (YYYY-MM-DD)")
	return cmd
}

func newCalendarCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar YYYY-MM",
		Short: "Show logged outfits per day for a month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			month, err := time.Parse("2006-01", args[0])
			if err != nil {
				return fmt.Errorf("invalid month %q, expected YYYY-MM", args[0])
			}

			db, err := a.db(cmd)
			if err != nil {
				return err
			}

			days, err := analytics.NewEngine(db).Calendar(cmd.Context(), month.Year(), month.Month())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tLOGS\tOOTD")
			for _, d := range days {
				ootd := ""
				if d.HasOOTD {
					ootd = "*"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", d.Date, d.Logs, ootd)
			}
			return w.Flush()
		},
	}
}

func newBreakdownCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "breakdown DIMENSION",
		Short:     "Count active items by category, color, brand, material, occasion or season",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"category", "color", "brand", "material", "occasion", "season"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dim, err := analytics.ParseDimension(args[0])
			if err != nil {
				return err
			}

			db, err := a.db(cmd)
			if err != nil {
				return err
			}

			entries, err := analytics.NewEngine(db).BreakdownBy(cmd.Context(), dim)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LABEL\tCOUNT\tHEX")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%d\t%s\n", e.Label, e.Count, orDash(e.Hex))
			}
			return w.Flush()
		},
	}
}

func newWornCommand(a *app) *cobra.Command {
	var since string

	cmd := &cobra.Command{
		Use:       "worn most|least|never",
		Short:     "Rank active items by how often they were worn",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"most", "least", "never"},
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.db(cmd)
			if err != nil {
				return err
			}
			engine := analytics.NewEngine(db)

			var ranked []analytics.ItemWearCount
			switch args[0] {
			case "most":
				ranked, err = engine.MostWorn(cmd.Context(), since)
			case "least":
				ranked, err = engine.LeastWorn(cmd.Context(), since)
			case "never":
				ranked, err = engine.NeverWorn(cmd.Context(), since)
			default:
				return fmt.Errorf("unknown ranking %q, expected most, least or never", args[0])
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tWEARS")
			for _, r := range ranked {
				fmt.Fprintf(w, "%d\t%s\t%d\n", r.Item.ID, r.Item.Name, r.Wears)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Only count wears on or after this date ("+models.DateLayout+")")
	return cmd
}
