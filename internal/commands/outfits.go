package commands

import (
	"fmt"
	"strconv"
	"time"

	"wardrobe/internal/database"
	"wardrobe/internal/models"

	"github.com/spf13/cobra"
)

func newOutfitsCommand(a *app) *cobra.Command {
	var name string

	add := &cobra.Command{
		Use:   "add ITEM_ID...",
		Short: "Create an outfit from existing items",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemIDs, err := parseIDs(args)
			if err != nil {
				return err
			}

			db, err := a.db(cmd)
			if err != nil {
				return err
			}

			outfit := models.Outfit{}
			if name != "" {
				outfit.Name = &name
			}
			id, err := database.CreateOutfit(cmd.Context(), db, outfit, itemIDs)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added outfit %d\n", id)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "Outfit name")

	cmd := &cobra.Command{
		Use:   "outfits",
		Short: "Manage outfits",
	}
	cmd.AddCommand(add)
	return cmd
}

func newLogCommand(a *app) *cobra.Command {
	var (
		date  string
		ootd  bool
		notes string
	)

	cmd := &cobra.Command{
		Use:   "log OUTFIT_ID",
		Short: "Record that an outfit was worn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if date == "" {
				date = models.FormatDate(time.Now())
			}

			db, err := a.db(cmd)
			if err != nil {
				return err
			}

			entry := models.OutfitLog{OutfitID: &ids[0], Date: date, IsOOTD: ootd}
			if notes != "" {
				entry.Notes = &notes
			}
			id, err := database.CreateOutfitLog(cmd.Context(), db, entry)
			if err != nil {
				if database.IsConstraint(err, database.ConstraintUnique) {
					return fmt.Errorf("%s already has an outfit of the day", date)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged outfit %d on %s (log %d)\n", ids[0], date, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date worn (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&ootd, "ootd", false, "Mark as the outfit of the day")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	return cmd
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, len(args))
	for i, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", arg)
		}
		ids[i] = id
	}
	return ids, nil
}
