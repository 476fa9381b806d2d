package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Assure-Desk/assuredesk/internal/config"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset AssureDesk to a clean state",
	Long: `Reset AssureDesk by removing the persistent store files.

This removes the configured sqlite database along with its WAL and
shared-memory sidecar files. All users, connections, and applications
are lost. Sessions are in-memory only and are unaffected.

On next start, AssureDesk boots with an empty store. In dev mode (or
with "assuredesk seed") the demo fixtures are loaded again.

Examples:
  # Interactive confirmation
  assuredesk reset

  # No prompt
  assuredesk reset --force`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "Skip confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Store.Driver != "sqlite" {
		fmt.Fprintln(os.Stderr, "Nothing to reset — the memory driver keeps no files.")
		return nil
	}

	type target struct {
		path string
		desc string
	}
	targets := []target{
		{cfg.Store.Path, "store database"},
		{cfg.Store.Path + "-wal", "write-ahead log"},
		{cfg.Store.Path + "-shm", "shared memory file"},
	}

	var existing []target
	for _, t := range targets {
		if _, err := os.Stat(t.path); err == nil {
			existing = append(existing, t)
		}
	}

	if len(existing) == 0 {
		fmt.Fprintln(os.Stderr, "Nothing to reset — no store files found.")
		return nil
	}

	fmt.Fprintln(os.Stderr, "The following will be removed:")
	for _, t := range existing {
		fmt.Fprintf(os.Stderr, "  - %s (%s)\n", t.path, t.desc)
	}

	if !resetForce {
		fmt.Fprint(os.Stderr, "\nProceed? [y/N] ")
		var answer string
		fmt.Scanln(&answer) //nolint:errcheck // interactive prompt, error irrelevant
		if answer != "y" && answer != "Y" {
			fmt.Fprintln(os.Stderr, "Aborted.")
			return nil
		}
	}

	var failures int
	for _, t := range existing {
		if err := os.Remove(t.path); err != nil {
			fmt.Fprintf(os.Stderr, "  ERROR removing %s: %v\n", t.path, err)
			failures++
		} else {
			fmt.Fprintf(os.Stderr, "  Removed %s\n", t.path)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d file(s) could not be removed", failures)
	}

	fmt.Fprintln(os.Stderr, "\nReset complete. AssureDesk will start fresh on next launch.")
	return nil
}
