// Package cmd provides the CLI commands for AssureDesk.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Assure-Desk/assuredesk/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "assuredesk",
	Short: "AssureDesk - assurance administration console backend",
	Long: `AssureDesk is the backend for the assurance-policy administration
console: session-token authentication, API connection management with
connectivity probing, and read access to assurance applications.

Quick start:
  1. Optionally create a config file: assuredesk.yaml
  2. Run: assuredesk serve --dev

Configuration:
  Config is loaded from assuredesk.yaml in the current directory,
  $HOME/.assuredesk/, or /etc/assuredesk/.

  Environment variables can override config values with the ASSUREDESK_ prefix.
  Example: ASSUREDESK_SERVER_HTTP_ADDR=:9090

Commands:
  serve           Start the API server
  seed            Load demo fixtures into the store
  reset           Remove the durable store
  hash-password   Generate an Argon2id hash for a password
  version         Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./assuredesk.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
