// =============================================================================
// PackOut Sync - Apply Command
// =============================================================================
//
// This file defines the 'apply' command: the SQL-to-XML patcher.
//
// COMMAND USAGE:
//   packsync apply <packout.xml> <sql-file-or-dir> [output.xml]
//
// FLAGS:
//   --backup        : Write <input>.bak before an in-place overwrite
//   --dry-run       : Parse and match, but write nothing
//   --report <file> : Write an XLSX run report
//
// PROCESSING PIPELINE:
//   1. Load configuration
//   2. Collect SQL files (single file, or every *.sql in a directory)
//   3. Extract update rules from each file
//   4. Scan the PackOut file line by line and patch matching elements
//   5. Write the output atomically and print the summary
//
// Omitting the output path overwrites the input in place. The run succeeds
// (exit zero) even when no rule matched anything; only missing inputs and
// unwritable outputs fail it.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/idempiere-ninja/packsync/internal/config"
	"github.com/idempiere-ninja/packsync/internal/dict"
	"github.com/idempiere-ninja/packsync/internal/patcher"
	"github.com/idempiere-ninja/packsync/internal/report"
	"github.com/idempiere-ninja/packsync/internal/rules"
	"github.com/idempiere-ninja/packsync/internal/sqlparse"
	"github.com/idempiere-ninja/packsync/pkg/utils"
)

// backup writes <input>.bak before an in-place overwrite.
var backup bool

// dryRun parses and matches but writes no output.
var dryRun bool

// reportPath, when set, receives an XLSX run report.
var reportPath string

// applyCmd represents the 'apply' command.
var applyCmd = &cobra.Command{
	Use:   "apply <packout.xml> <sql-file-or-dir> [output.xml]",
	Short: "Apply SQL UPDATE statements to a PackOut.xml file",
	Long: `The apply command parses SQL files for UPDATE statements against the seven
application-dictionary tables, then patches the matching elements in the
PackOut file. Patching is textual: only the text of existing tags changes,
and every other byte of the file is preserved, so the result diffs cleanly.

Statements that are not UPDATEs, target other tables, or carry no usable
lookup key are silently ignored; mixed SQL input is expected.`,

	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApply(args)
	},
}

// init registers the apply command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().BoolVar(
		&backup,
		"backup",
		false,
		"Write <input>.bak before an in-place overwrite",
	)

	applyCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Parse and match, but write nothing",
	)

	applyCmd.Flags().StringVar(
		&reportPath,
		"report",
		"",
		"Write an XLSX run report to the given path",
	)
}

// runApply orchestrates the SQL-to-XML pipeline.
func runApply(args []string) error {
	inputXML := args[0]
	sqlInput := args[1]
	outputXML := inputXML
	if len(args) > 2 {
		outputXML = args[2]
	}

	if !utils.FileExists(inputXML) {
		return fmt.Errorf("PackOut file not found: %s", inputXML)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 1: EXTRACT UPDATE RULES FROM SQL
	// =========================================================================

	sqlFiles, err := utils.CollectSQLFiles(sqlInput)
	if err != nil {
		return err
	}

	fmt.Printf("PackOut: %s\n", inputXML)
	fmt.Printf("SQL files: %d\n", len(sqlFiles))

	ruleSet := rules.New()
	for _, sqlFile := range sqlFiles {
		fmt.Printf("  Parsing: %s\n", filepath.Base(sqlFile))
		if _, err := sqlparse.ParseFile(sqlFile, ruleSet); err != nil {
			return err
		}
	}

	fmt.Println("\nExtracted updates:")
	ruleCounts := make(map[string]int)
	for _, table := range dict.TableNames() {
		ruleCounts[table] = ruleSet.Count(table)
		if ruleCounts[table] > 0 {
			fmt.Printf("  %s: %d\n", table, ruleCounts[table])
		}
	}

	// =========================================================================
	// STEP 2: PATCH THE PACKOUT FILE
	// =========================================================================

	fmt.Println("\nReading PackOut.xml...")
	lines, err := utils.ReadLines(inputXML)
	if err != nil {
		return err
	}

	p := patcher.New(ruleSet, cfg.Patch.MaxElementSpan)
	counts := p.Apply(lines)

	// =========================================================================
	// STEP 3: WRITE OUTPUT AND SUMMARY
	// =========================================================================

	if dryRun {
		fmt.Println("\nDry run, writing nothing.")
	} else {
		if backup && outputXML == inputXML {
			backupFile, err := utils.BackupFile(inputXML)
			if err != nil {
				return err
			}
			fmt.Printf("\nBackup: %s\n", backupFile)
		}

		fmt.Printf("\nWriting: %s\n", outputXML)
		if err := utils.WriteFileAtomic(outputXML, utils.JoinLines(lines)); err != nil {
			return err
		}
	}

	printSummary(counts)

	if reportPath != "" {
		if err := report.Write(reportPath, ruleCounts, counts, p.Applied()); err != nil {
			log.Warn().Err(err).Msg("run report not written")
		} else {
			fmt.Printf("Report: %s\n", reportPath)
		}
	}

	return nil
}

// printSummary prints the per-table update counts and the total.
func printSummary(counts dict.Counters) {
	fmt.Println("\nApplied updates:")
	for _, table := range dict.TableNames() {
		if counts[table] > 0 {
			fmt.Printf("  %s: %d\n", table, counts[table])
		}
	}
	fmt.Printf("Total: %d\n", counts.Total())
	fmt.Println("Done!")
}
