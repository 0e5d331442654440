// =============================================================================
// PackOut Sync - Update Rules
// =============================================================================
//
// An update rule is the resolved form of one SQL UPDATE statement: a lookup
// key on one of the dictionary tables, mapped to the field values the
// statement sets. The RuleSet collects every rule extracted from the SQL
// input and is the only state shared between extraction and patching.
//
// MERGE SEMANTICS:
//   - Two statements targeting the same (table, key) merge their field maps;
//     the later statement wins per field.
//   - The order in which key kinds first appear per table is recorded and
//     drives the patcher's matching loop, so matching behavior follows the
//     SQL input rather than a fixed priority.
//
// =============================================================================

package rules

import (
	"github.com/idempiere-ninja/packsync/internal/dict"
)

// Key locates the element a rule applies to.
type Key struct {
	Kind  dict.KeyKind
	Value string
}

// Fields maps tag names to replacement text.
type Fields map[string]string

// RuleSet holds all extracted update rules, grouped by table.
type RuleSet struct {
	tables map[string]*tableRules
}

type tableRules struct {
	kindOrder []dict.KeyKind
	rules     map[Key]Fields
}

// New returns an empty RuleSet.
func New() *RuleSet {
	return &RuleSet{tables: make(map[string]*tableRules)}
}

// Add merges the given fields into the rule for (table, key). Later adds
// override earlier ones field by field. The table name must be canonical
// (resolve it through dict.Lookup before calling).
func (rs *RuleSet) Add(table string, key Key, fields Fields) {
	tr := rs.tables[table]
	if tr == nil {
		tr = &tableRules{rules: make(map[Key]Fields)}
		rs.tables[table] = tr
	}

	if !tr.hasKind(key.Kind) {
		tr.kindOrder = append(tr.kindOrder, key.Kind)
	}

	existing := tr.rules[key]
	if existing == nil {
		existing = make(Fields, len(fields))
		tr.rules[key] = existing
	}
	for field, value := range fields {
		existing[field] = value
	}
}

func (tr *tableRules) hasKind(kind dict.KeyKind) bool {
	for _, k := range tr.kindOrder {
		if k == kind {
			return true
		}
	}
	return false
}

// Get returns the field map for (table, key), or nil when no rule exists.
func (rs *RuleSet) Get(table string, key Key) Fields {
	tr := rs.tables[table]
	if tr == nil {
		return nil
	}
	return tr.rules[key]
}

// KindOrder returns the key kinds seen for the table, in first-seen order.
func (rs *RuleSet) KindOrder(table string) []dict.KeyKind {
	tr := rs.tables[table]
	if tr == nil {
		return nil
	}
	return tr.kindOrder
}

// Count returns the number of rules held for the table.
func (rs *RuleSet) Count(table string) int {
	tr := rs.tables[table]
	if tr == nil {
		return 0
	}
	return len(tr.rules)
}

// Total returns the number of rules across all tables.
func (rs *RuleSet) Total() int {
	total := 0
	for _, tr := range rs.tables {
		total += len(tr.rules)
	}
	return total
}
