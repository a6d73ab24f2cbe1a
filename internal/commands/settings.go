package commands

import (
	"fmt"
	"text/tabwriter"

	"wardrobe/internal/models"
	"wardrobe/internal/settings"

	"github.com/spf13/cobra"
)

func newSettingsCommand(a *app) *cobra.Command {
	get := &cobra.Command{
		Use:   "get",
		Short: "Print every setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.db(cmd)
			if err != nil {
				return err
			}

			prefs, err := settings.NewService(db).Get(cmd.Context())
			if err != nil {
				return err
			}

			encoded := models.EncodeSettings(prefs)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, key := range models.SettingKeys {
				fmt.Fprintf(w, "%s\t%s\n", key, encoded[key])
			}
			return w.Flush()
		},
	}

	set := &cobra.Command{
		Use:       "set KEY VALUE",
		Short:     "Change one setting",
		Args:      cobra.ExactArgs(2),
		ValidArgs: models.SettingKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.db(cmd)
			if err != nil {
				return err
			}

			prefs, err := settings.NewService(db).Set(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], models.EncodeSettings(prefs)[args[0]])
			return nil
		},
	}

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and change preferences",
	}
	cmd.AddCommand(get, set)
	return cmd
}
