// =============================================================================
// PackOut Sync - Run Report
// =============================================================================
//
// Writes an XLSX workbook summarizing a patch run, for the translators and
// functional reviewers who maintain the SQL scripts. Two sheets:
//
//   Summary  - per table: rules extracted, elements updated
//   Updates  - one row per field written: table, key kind, key, field, value
//
// The report is a convenience artifact; failing to write it must not fail
// the run (callers log and continue).
//
// =============================================================================

package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/idempiere-ninja/packsync/internal/dict"
	"github.com/idempiere-ninja/packsync/internal/patcher"
)

const (
	summarySheet = "Summary"
	updatesSheet = "Updates"
)

// Write builds the workbook and saves it to path.
func Write(path string, ruleCounts map[string]int, counts dict.Counters, updates []patcher.Update) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to prepare report: %w", err)
	}
	if err := writeSummary(f, ruleCounts, counts); err != nil {
		return err
	}

	if _, err := f.NewSheet(updatesSheet); err != nil {
		return fmt.Errorf("failed to prepare report: %w", err)
	}
	if err := writeUpdates(f, updates); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, ruleCounts map[string]int, counts dict.Counters) error {
	rows := [][]interface{}{
		{"Table", "Rules Extracted", "Elements Updated"},
	}
	for _, name := range dict.TableNames() {
		rows = append(rows, []interface{}{name, ruleCounts[name], counts[name]})
	}
	rows = append(rows, []interface{}{"Total", totalOf(ruleCounts), counts.Total()})

	return writeRows(f, summarySheet, rows)
}

func writeUpdates(f *excelize.File, updates []patcher.Update) error {
	rows := [][]interface{}{
		{"Table", "Key Kind", "Key", "Field", "Value"},
	}
	for _, u := range updates {
		rows = append(rows, []interface{}{u.Table, string(u.Key.Kind), u.Key.Value, u.Field, u.Value})
	}

	return writeRows(f, updatesSheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
	}
	return nil
}

func totalOf(counts map[string]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}
