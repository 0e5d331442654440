// =============================================================================
// PackOut Sync - Application Dictionary Vocabulary
// =============================================================================
//
// This package contains the fixed vocabulary shared across the SQL extractor,
// the line patcher and the database updater, kept here to avoid import cycles:
//   - the seven application-dictionary entity tables that appear in PackOut.xml
//   - the identifier tag and permitted lookup keys for each table
//   - the human-readable columns each table maintains
//
// The vocabulary is deliberately closed: PackOut files contain many more tag
// names, but only these seven element types are ever patched.
//
// =============================================================================

package dict

import "strings"

// KeyKind identifies how a target element is located.
type KeyKind string

const (
	// KeyID matches the table-specific numeric identifier tag (AD_Window_ID etc.).
	KeyID KeyKind = "ID"

	// KeyName matches the natural-language Name tag.
	KeyName KeyKind = "Name"

	// KeyColumnName matches the ColumnName tag; only AD_Element uses it.
	KeyColumnName KeyKind = "ColumnName"
)

// EntityTypeTag is the ownership marker tag on dictionary elements.
const EntityTypeTag = "EntityType"

// CoreEntityType is the marker value reserved for the base dictionary.
// Elements carrying it are never customized and must not be patched.
const CoreEntityType = "D"

// Table describes one application-dictionary entity table.
type Table struct {
	// Name is the canonical table name, which is also the XML element tag.
	Name string

	// IDTag is the numeric identifier tag inside the element (<Name>_ID).
	IDTag string

	// Keys lists the lookup key kinds this table accepts, most specific first.
	Keys []KeyKind

	// Columns are the human-readable columns maintained for this table,
	// in the order the database updater selects them.
	Columns []string
}

// HasKey reports whether the table accepts the given lookup key kind.
func (t *Table) HasKey(kind KeyKind) bool {
	for _, k := range t.Keys {
		if k == kind {
			return true
		}
	}
	return false
}

// Tables is the closed set of patchable entity tables, in PackOut order.
var Tables = []Table{
	{
		Name:    "AD_Element",
		IDTag:   "AD_Element_ID",
		Keys:    []KeyKind{KeyColumnName},
		Columns: []string{"Name", "PrintName", "Help", "Description"},
	},
	{
		Name:    "AD_Window",
		IDTag:   "AD_Window_ID",
		Keys:    []KeyKind{KeyID, KeyName},
		Columns: []string{"Name", "Help", "Description"},
	},
	{
		Name:    "AD_Tab",
		IDTag:   "AD_Tab_ID",
		Keys:    []KeyKind{KeyID, KeyName},
		Columns: []string{"Name", "Help", "Description"},
	},
	{
		Name:    "AD_Field",
		IDTag:   "AD_Field_ID",
		Keys:    []KeyKind{KeyID},
		Columns: []string{"Name", "Help", "Description", "IsCentrallyMaintained"},
	},
	{
		Name:    "AD_Process",
		IDTag:   "AD_Process_ID",
		Keys:    []KeyKind{KeyID},
		Columns: []string{"Name", "Help", "Description"},
	},
	{
		Name:    "AD_Form",
		IDTag:   "AD_Form_ID",
		Keys:    []KeyKind{KeyID},
		Columns: []string{"Name", "Help", "Description"},
	},
	{
		Name:    "AD_Menu",
		IDTag:   "AD_Menu_ID",
		Keys:    []KeyKind{KeyID},
		Columns: []string{"Name", "Description"},
	},
}

// Lookup resolves a table by name, case-insensitively (SQL is written in
// every capitalization imaginable). Returns nil for unknown tables.
func Lookup(name string) *Table {
	for i := range Tables {
		if strings.EqualFold(Tables[i].Name, name) {
			return &Tables[i]
		}
	}
	return nil
}

// Counters tracks, per table, how many elements received at least one
// field update during a run. Reporting only.
type Counters map[string]int

// Total sums the per-table counters.
func (c Counters) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// TableNames returns the canonical names of all patchable tables.
func TableNames() []string {
	names := make([]string, len(Tables))
	for i := range Tables {
		names[i] = Tables[i].Name
	}
	return names
}
