// =============================================================================
// PackOut Sync - Sync Command
// =============================================================================
//
// This file defines the 'sync' command: the database-to-XML updater.
//
// COMMAND USAGE:
//   packsync sync <packout.xml> [output.xml]
//
// The dictionary database connection and the updater modes (core-entity
// skipping, the AD_Element client filter) come from the configuration file,
// not from flags: a deployment picks its mode once.
//
// Unlike 'apply', this path parses the document into a tree and rewrites the
// whole file; formatting is normalized by serialization. Per-element lookup
// failures are suppressed so one bad row never aborts the pass.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/spf13/cobra"

	"github.com/idempiere-ninja/packsync/internal/config"
	"github.com/idempiere-ninja/packsync/internal/dict"
	"github.com/idempiere-ninja/packsync/internal/dictdb"
	"github.com/idempiere-ninja/packsync/pkg/utils"
)

// syncCmd represents the 'sync' command.
var syncCmd = &cobra.Command{
	Use:   "sync <packout.xml> [output.xml]",
	Short: "Refresh a PackOut.xml from the dictionary database",
	Long: `The sync command connects to the application dictionary database and
overwrites the human-readable metadata (names, help text, descriptions) of
every dictionary element in the PackOut file with the current database
values. Elements whose rows cannot be found or read are left untouched.`,

	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(args)
	},
}

// init registers the sync command with the root command.
func init() {
	rootCmd.AddCommand(syncCmd)
}

// runSync orchestrates the database-to-XML pipeline.
func runSync(args []string) error {
	inputXML := args[0]
	outputXML := inputXML
	if len(args) > 1 {
		outputXML = args[1]
	}

	if !utils.FileExists(inputXML) {
		return fmt.Errorf("PackOut file not found: %s", inputXML)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	fmt.Println("Connecting to database...")
	db, err := dictdb.Open(cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Printf("Reading: %s\n", inputXML)
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(inputXML); err != nil {
		return fmt.Errorf("failed to parse %s: %w", inputXML, err)
	}

	updater := dictdb.New(db, dictdb.Options{
		SkipCore: cfg.Sync.SkipCoreEntities,
		ClientID: cfg.Sync.ClientID,
	})
	counts := updater.UpdateDocument(doc)

	fmt.Printf("Writing: %s\n", outputXML)
	data, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}
	if err := utils.WriteFileAtomic(outputXML, data); err != nil {
		return err
	}

	fmt.Printf("\nUpdated: %d elements\n", counts.Total())
	for _, table := range dict.TableNames() {
		if counts[table] > 0 {
			fmt.Printf("  %s: %d\n", table, counts[table])
		}
	}
	fmt.Println("Done!")
	return nil
}
