package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Assure-Desk/assuredesk/internal/adapter/outbound/seed"
	"github.com/Assure-Desk/assuredesk/internal/config"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo fixtures into the store",
	Long: `Load fixtures into the configured store.

Without --file, the built-in demo data set is loaded: three API
connections and five assurance applications. With --file, fixtures are
read from a YAML file. Seeding an existing sqlite store is idempotent
for users; connections and applications are appended.

The memory driver has no durable state; seeding it outside "serve" is
pointless, so this command requires the sqlite driver.

Examples:
  assuredesk seed
  assuredesk seed --file fixtures.yaml`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML fixture file (default: built-in demo data)")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if cfg.Store.Driver != "sqlite" {
		return fmt.Errorf("seeding requires store.driver \"sqlite\", have %q", cfg.Store.Driver)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	stores, cleanup, err := openStores(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	fixtures := seed.Default()
	if seedFile != "" {
		fixtures, err = seed.LoadFile(seedFile)
		if err != nil {
			return err
		}
	}
	if err := fixtures.Apply(cmd.Context(), stores.seedTargets(), logger); err != nil {
		return err
	}

	fmt.Printf("seeded %d users, %d connections, %d applications into %s\n",
		len(fixtures.Users), len(fixtures.Connections), len(fixtures.Applications), cfg.Store.Path)
	return nil
}
