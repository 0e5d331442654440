// =============================================================================
// PackOut Sync - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that the pipeline commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (packsync)
//   ├── applyCmd (packsync apply)
//   ├── syncCmd (packsync sync)
//   └── versionCmd (packsync version)
//
// The root command owns the global flags (--config, --verbose) and the
// logger setup. Diagnostic logging goes to stderr through zerolog; the run
// summaries the commands print are contract output and stay on stdout.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// cfgFile holds the path to the configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "packsync",
	Short: "PackOut Sync - Synchronize dictionary metadata with PackOut.xml",

	Long: `PackOut Sync keeps the human-readable metadata (names, help text,
descriptions) in an exported PackOut.xml dictionary file in step with the
application dictionary, sourced either from SQL UPDATE scripts or from a
live database.

Two one-shot pipelines are available:
  packsync apply   Parse SQL UPDATE statements and patch matching elements
                   in place, preserving every byte of formatting outside the
                   modified tag values.
  packsync sync    Refresh every dictionary element from a live database and
                   rewrite the file.

Example Usage:
  packsync apply PackOut.xml MP_Help_Update.sql
  packsync apply PackOut.xml ./scripts/ updated_PackOut.xml
  packsync sync PackOut.xml --config prod.yaml`,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// init sets up the global flags and the logger.
func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"packsync.yaml",
		"Path to the configuration file (all settings have defaults)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug output",
	)

	cobra.OnInitialize(initLogging)
}

// initLogging configures the global zerolog logger. Runs after flag parsing.
func initLogging() {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}
