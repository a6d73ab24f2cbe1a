package commands

import (
	"fmt"
	"os"

	"wardrobe/internal/config"
	"wardrobe/internal/database"
	"wardrobe/internal/logger"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

// memoryPath selects a throwaway in-memory database instead of a file.
const memoryPath = ":memory:"

// app carries the state shared by every command of one invocation.
type app struct {
	configPath string
	dbPath     string
	logLevel   string

	cfg     *config.Config
	manager *database.Manager
}

func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "wardrobectl",
		Short: "Manage a local wardrobe database",
		Long: `wardrobectl works against the local wardrobe database: it applies schema
migrations, seeds reference data, lists and filters clothing items, logs
worn outfits and reports wear statistics.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML or TOML config file")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "Database file (overrides config; \":memory:\" for a scratch database)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		newMigrateCommand(a),
		newStatusCommand(a),
		newSeedCommand(a),
		newItemsCommand(a),
		newOutfitsCommand(a),
		newLogCommand(a),
		newStatsCommand(a),
		newCalendarCommand(a),
		newBreakdownCommand(a),
		newWornCommand(a),
		newSettingsCommand(a),
	)

	return root
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.DatabasePath = a.dbPath
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}

	logger.Initialize(logger.ParseLevel(cfg.LogLevel), cfg.IsDevelopment())
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	a.cfg = cfg
	a.manager = database.NewManager(a.open, cfg.SeedOnStart)
	return nil
}

func (a *app) teardown(cmd *cobra.Command, args []string) error {
	if a.manager == nil {
		return nil
	}
	return a.manager.Close()
}

func (a *app) open() (*sqlx.DB, error) {
	if a.cfg.DatabasePath == memoryPath {
		return database.OpenInMemory()
	}
	return database.Initialize(a.cfg.DatabasePath, a.cfg.BusyTimeoutMS)
}

// db returns the migrated, seeded handle.
func (a *app) db(cmd *cobra.Command) (*sqlx.DB, error) {
	return a.manager.DB(cmd.Context())
}
