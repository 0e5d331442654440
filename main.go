// =============================================================================
// PackOut Sync - Main Entry Point
// =============================================================================
//
// This is the main entry point for the PackOut Sync CLI application. It
// initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   packsync apply <packout.xml> <sql-file-or-dir> [output.xml]
//   packsync sync <packout.xml> [output.xml]
//   packsync version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core business logic (not for external import)
//   - pkg/           : Shared utilities
//
// =============================================================================

package main

import (
	"github.com/idempiere-ninja/packsync/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
