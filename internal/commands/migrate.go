package commands

import (
	"fmt"
	"text/tabwriter"

	"wardrobe/internal/database"

	"github.com/spf13/cobra"
)

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.db(cmd)
			if err != nil {
				return err
			}

			applied, err := database.AppliedMigrations(cmd.Context(), db)
			if err != nil {
				return err
			}

			latest := 0
			if len(applied) > 0 {
				latest = applied[len(applied)-1].Version
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema is at version %d (%d migrations applied)\n", latest, len(applied))
			return nil
		},
	}
}

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations without changing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.open()
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := database.AppliedMigrations(cmd.Context(), db)
			if err != nil {
				return err
			}
			pending, err := database.PendingMigrations(cmd.Context(), db)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tNAME\tSTATUS")
			for _, m := range applied {
				fmt.Fprintf(w, "%d\t%s\tapplied %s\n", m.Version, m.Name, m.AppliedAt.Format("2006-01-02 15:04"))
			}
			for _, m := range pending {
				fmt.Fprintf(w, "%d\t%s\tpending\n", m.Version, m.Name)
			}
			return w.Flush()
		},
	}
}

func newSeedCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert any missing reference data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.db(cmd)
			if err != nil {
				return err
			}

			if err := database.Seed(cmd.Context(), db); err != nil {
				return err
			}

			categories, err := database.ListCategories(cmd.Context(), db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reference data is seeded (%d categories)\n", len(categories))
			return nil
		},
	}
}
