// Package cmd provides CLI commands for lifeos.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dvloznov/lifeos/internal/app"
	"github.com/dvloznov/lifeos/internal/config"
	"github.com/dvloznov/lifeos/internal/logger"
)

var (
	envFile string
	debug   bool

	cfg *config.Config
	log zerolog.Logger
	rt  *app.Runtime
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lifeos",
	Short: "Local-first ledger, habits and notes",
	Long: `lifeos keeps a three-bank ledger, daily habits with streaks, a reading
library and a journal in a local database, with optional backup to Cloud
Storage and an AI assistant.

Example:
  lifeos tx add --type income --amount 2500 --desc Salary --auto-split
  lifeos habit toggle "read"
  lifeos metrics
  lifeos palette`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(envFile)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		level := cfg.Log.Level
		if debug {
			level = "debug"
		}
		log = logger.NewWithOptions(logger.Options{Level: level, Format: cfg.Log.Format})

		rt, err = app.Open(cmd.Context(), cfg, log)
		if err != nil {
			return fmt.Errorf("opening local data: %w", err)
		}
		for _, rep := range rt.Reports {
			if rep.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s was unreadable and has been reset\n", rep.Key.Short())
			}
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	err := rootCmd.ExecuteContext(context.Background())
	if rt != nil {
		// Flush state even when the command failed.
		if cerr := rt.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "env file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(txCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(habitCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(bookCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(paletteCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(exportCmd)
}
