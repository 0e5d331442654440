// =============================================================================
// PackOut Sync - SQL Update Extractor
// =============================================================================
//
// This module turns raw SQL text into update rules. It is not a SQL parser:
// it recognizes exactly the UPDATE ... SET ... WHERE ... shape that dictionary
// maintenance scripts use, via regular expressions, and silently ignores
// everything else. Mixed SQL input (inserts, DDL, vendor noise) is expected
// and must never fail the run.
//
// KEY EXTRACTION ORDER:
//   1. ColumnName = '<x>'              (AD_Element natural key)
//   2. <Table>_ID = <digits>           (identifier of the statement's table)
//   3. Name = '<x>'                    (not preceded by a word character,
//                                       so PrintName etc. never match)
//
// The identifier pattern is built from the statement's own table so that an
// unrelated numeric filter earlier in the WHERE clause (AD_Client_ID is the
// usual offender) can never be mistaken for the lookup key.
//
// =============================================================================

package sqlparse

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/idempiere-ninja/packsync/internal/dict"
	"github.com/idempiere-ninja/packsync/internal/rules"
)

var (
	// lineComments strips -- comments up to end of line.
	lineComments = regexp.MustCompile(`(?m)--.*$`)

	// statementEnd splits on a semicolon followed by a line break.
	statementEnd = regexp.MustCompile(`;\s*\n`)

	// updateShape captures table, SET clause and WHERE clause in one pass.
	updateShape = regexp.MustCompile(`(?is)^UPDATE\s+(\w+)\s+SET\s+(.+?)\s+WHERE\s+(.+)$`)

	// setPair matches field = 'quoted ''string''' or field = bareword.
	// Only quoted values carry replacement text; bare words (SYSDATE and
	// friends) are recognized so the scan stays aligned, then discarded.
	setPair = regexp.MustCompile(`(\w+)\s*=\s*(?:'((?:[^']|'')*)'|(\w+))`)

	// whereColumnName matches the AD_Element natural key.
	whereColumnName = regexp.MustCompile(`(?i)ColumnName\s*=\s*'([^']+)'`)

	// whereBareName matches Name = '...' where Name is a whole word. RE2 has
	// no lookbehind, so the preceding character (or start of clause) is
	// captured and discarded.
	whereBareName = regexp.MustCompile(`(?i)(?:^|[^0-9A-Za-z_])Name\s*=\s*'([^']+)'`)
)

// Parse extracts update rules from SQL text into the rule set and returns
// the number of statements that produced a rule.
func Parse(content string, rs *rules.RuleSet) int {
	content = lineComments.ReplaceAllString(content, "")

	extracted := 0
	for _, stmt := range statementEnd.Split(content, -1) {
		stmt = strings.TrimSpace(stmt)
		if !strings.HasPrefix(strings.ToUpper(stmt), "UPDATE") {
			continue
		}
		if parseStatement(stmt, rs) {
			extracted++
		}
	}
	return extracted
}

// ParseFile reads one SQL file and extracts its update rules.
func ParseFile(path string, rs *rules.RuleSet) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read SQL file: %w", err)
	}
	return Parse(string(data), rs), nil
}

// parseStatement handles a single UPDATE statement. Statements that do not
// match the expected shape, target an unknown table, or carry no usable key
// are dropped without error.
func parseStatement(stmt string, rs *rules.RuleSet) bool {
	m := updateShape.FindStringSubmatch(stmt)
	if m == nil {
		log.Debug().Str("statement", truncate(stmt, 80)).Msg("skipping malformed UPDATE")
		return false
	}

	table := dict.Lookup(m[1])
	if table == nil {
		log.Debug().Str("table", m[1]).Msg("skipping UPDATE on unknown table")
		return false
	}

	fields := parseSetClause(m[2])
	if len(fields) == 0 {
		return false
	}

	key, ok := extractKey(table, m[3])
	if !ok {
		log.Debug().Str("table", table.Name).Msg("skipping UPDATE with no usable key")
		return false
	}
	if !table.HasKey(key.Kind) {
		log.Debug().
			Str("table", table.Name).
			Str("kind", string(key.Kind)).
			Msg("skipping UPDATE keyed on unsupported kind")
		return false
	}

	rs.Add(table.Name, key, fields)
	return true
}

// parseSetClause extracts quoted field assignments from a SET clause,
// un-escaping doubled single quotes.
func parseSetClause(clause string) rules.Fields {
	fields := make(rules.Fields)
	for _, m := range setPair.FindAllStringSubmatch(clause, -1) {
		field, quoted, bare := m[1], m[2], m[3]
		if bare != "" {
			continue
		}
		fields[field] = strings.ReplaceAll(quoted, "''", "'")
	}
	return fields
}

// extractKey applies the documented lookup-key priority to a WHERE clause.
// The first matching pattern wins.
func extractKey(table *dict.Table, clause string) (rules.Key, bool) {
	if m := whereColumnName.FindStringSubmatch(clause); m != nil {
		return rules.Key{Kind: dict.KeyColumnName, Value: m[1]}, true
	}

	whereID := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(table.IDTag) + `\s*=\s*(\d+)`)
	if m := whereID.FindStringSubmatch(clause); m != nil {
		return rules.Key{Kind: dict.KeyID, Value: m[1]}, true
	}

	if m := whereBareName.FindStringSubmatch(clause); m != nil {
		return rules.Key{Kind: dict.KeyName, Value: m[1]}, true
	}

	return rules.Key{}, false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
