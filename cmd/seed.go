package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kerala-navigator/navigator/internal/catalog"
	"github.com/kerala-navigator/navigator/internal/db"
	"github.com/kerala-navigator/navigator/internal/progress"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load service records into the store",
	Long: `Upserts service records into the SQLite store. Without --data the built-in
service table is loaded; with --data every YAML file matched by the globs is
loaded instead (patterns may use **).`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringSlice("data", nil, "glob of YAML service files (repeatable)")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Store.Path == "" {
		return fmt.Errorf("store.path is empty; there is no store to seed")
	}

	patterns, _ := cmd.Flags().GetStringSlice("data")
	records := catalog.LocalServices()
	if len(patterns) > 0 {
		if records, err = catalog.LoadFiles(patterns...); err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("no service records found in %v", patterns)
		}
	}

	database, err := db.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer database.Close()
	store := catalog.NewStore(database)

	reporter := progress.NewReporter()
	reporter.Start(len(records))
	for i, rec := range records {
		if err := store.Upsert(ctx, rec); err != nil {
			reporter.Finish()
			return fmt.Errorf("storing %s: %w", rec.ID, err)
		}
		reporter.Update(i+1, rec.ID)
	}
	reporter.Finish()

	total, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting services: %w", err)
	}
	fmt.Printf("Seeded %d records into %s (%d services stored)\n", len(records), cfg.Store.Path, total)
	return nil
}

// seedIfEmpty loads the built-in table into a store that has no services.
func seedIfEmpty(ctx context.Context, store *catalog.Store, logger *zap.Logger) error {
	n, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting services: %w", err)
	}
	if n > 0 {
		return nil
	}
	records := catalog.LocalServices()
	if err := store.Upsert(ctx, records...); err != nil {
		return fmt.Errorf("seeding built-in services: %w", err)
	}
	logger.Info("seeded built-in services", zap.Int("count", len(records)))
	return nil
}
