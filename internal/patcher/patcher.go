// =============================================================================
// PackOut Sync - Line-Oriented XML Patcher
// =============================================================================
//
// This module applies update rules to a PackOut.xml file while preserving
// every byte of formatting outside the modified tag values. PackOut files are
// large, hand-formatted, and reviewed as diffs, so the patcher never parses
// the document into a tree: it works on the file as an ordered list of lines
// and restricts mutation to exact substring replacement on specific lines.
//
// SCAN MODEL:
//   - Walk the lines looking for a start tag of one of the seven dictionary
//     element types. A start tag is <Tag> or <Tag attr...>, but not a longer
//     tag sharing the prefix (<AD_Window_ID>), not a self-closed construct,
//     and not a line that also carries the matching end tag.
//   - From the start line, scan forward with a nesting depth counter over
//     same-named tags until the matching end tag closes the element. Menu
//     trees nest same-named elements, so the first </Tag> seen is not
//     necessarily the right one.
//   - Snapshot the element's lookup tags and ownership marker, match it
//     against the rule set, rewrite matching field lines in place, then
//     resume the outer scan after the element's last line.
//
// A malformed element (no end tag within the scan window) is a non-match;
// its lines are left untouched and scanning resumes after the start line.
//
// =============================================================================

package patcher

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/idempiere-ninja/packsync/internal/dict"
	"github.com/idempiere-ninja/packsync/internal/rules"
)

// DefaultMaxElementSpan bounds the forward scan for an element's end tag.
// Real dictionary elements are a few hundred lines at most; the bound only
// exists to stop a runaway scan over malformed input.
const DefaultMaxElementSpan = 10000

// Update records one field rewrite, for reporting.
type Update struct {
	Table string
	Key   rules.Key
	Field string
	Value string
}

// Patcher applies a rule set to the lines of a PackOut file.
type Patcher struct {
	rules   *rules.RuleSet
	maxSpan int
	applied []Update
}

// New returns a Patcher over the given rule set. maxSpan <= 0 selects
// DefaultMaxElementSpan.
func New(rs *rules.RuleSet, maxSpan int) *Patcher {
	if maxSpan <= 0 {
		maxSpan = DefaultMaxElementSpan
	}
	return &Patcher{rules: rs, maxSpan: maxSpan}
}

// Applied returns every field rewrite performed so far, in file order.
func (p *Patcher) Applied() []Update {
	return p.applied
}

// Apply patches the lines in place and returns per-table update counters.
func (p *Patcher) Apply(lines []string) dict.Counters {
	counts := make(dict.Counters)

	i := 0
	for i < len(lines) {
		table := elementStart(lines[i])
		if table == nil {
			i++
			continue
		}

		end, ok := p.findElementEnd(lines, i, table.Name)
		if !ok {
			log.Debug().
				Str("table", table.Name).
				Int("line", i+1).
				Msg("unterminated element, skipping")
			i++
			continue
		}

		if p.patchElement(lines, i, end, table) {
			counts[table.Name]++
		}

		// Resume after the element so nested and already-handled lines are
		// not reprocessed as new element starts.
		i = end + 1
	}

	return counts
}

// elementStart returns the dictionary table whose element starts on the
// line, or nil.
func elementStart(line string) *dict.Table {
	for i := range dict.Tables {
		if isElementStart(line, dict.Tables[i].Name) {
			return &dict.Tables[i]
		}
	}
	return nil
}

// isElementStart reports whether the line opens a <tag> element that does
// not also close on the same line.
func isElementStart(line, tag string) bool {
	if !hasOpenStartTag(line, tag) {
		return false
	}
	return !strings.Contains(line, "</"+tag+">")
}

// hasOpenStartTag reports whether the line contains a start tag for tag that
// is not self-closed. Longer tag names sharing the prefix do not count: the
// character after the name must end the tag or begin its attributes.
func hasOpenStartTag(line, tag string) bool {
	_, _, selfClosed, ok := findTagConstruct(line, tag)
	return ok && !selfClosed
}

// findElementEnd scans forward from the start line, tracking nesting depth
// over same-named tags, and returns the line index of the matching end tag.
func (p *Patcher) findElementEnd(lines []string, start int, tag string) (int, bool) {
	limit := start + p.maxSpan
	if limit > len(lines) {
		limit = len(lines)
	}

	depth := 1
	for i := start + 1; i < limit; i++ {
		line := lines[i]
		if isElementStart(line, tag) {
			depth++
			continue
		}
		if strings.Contains(line, "</"+tag+">") {
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// tagSite is the first occurrence of a lookup tag inside an element span.
type tagSite struct {
	line int
	text string
}

// patchElement matches one element span against the rule set and rewrites
// matching field lines. Returns true when at least one field was written.
func (p *Patcher) patchElement(lines []string, start, end int, table *dict.Table) bool {
	sites := make(map[string]tagSite)
	lookupTags := []string{table.IDTag, "ColumnName", "Name", dict.EntityTypeTag}

	for i := start; i <= end; i++ {
		for _, tag := range lookupTags {
			if _, seen := sites[tag]; seen {
				continue
			}
			if text, ok := tagText(lines[i], tag); ok {
				sites[tag] = tagSite{line: i, text: unescapeText(text)}
			}
		}
	}

	if site, ok := sites[dict.EntityTypeTag]; ok && site.text == dict.CoreEntityType {
		log.Debug().
			Str("table", table.Name).
			Int("line", start+1).
			Msg("skipping core dictionary element")
		return false
	}

	// Collect the union of fields from every rule the element matches,
	// trying key kinds in the order they first appeared in the SQL input.
	type pendingUpdate struct {
		key   rules.Key
		value string
	}
	pending := make(map[string]pendingUpdate)
	var fieldOrder []string

	for _, kind := range p.rules.KindOrder(table.Name) {
		site, ok := sites[keyTag(table, kind)]
		if !ok {
			continue
		}
		key := rules.Key{Kind: kind, Value: site.text}
		for field, value := range p.rules.Get(table.Name, key) {
			if _, seen := pending[field]; !seen {
				fieldOrder = append(fieldOrder, field)
			}
			pending[field] = pendingUpdate{key: key, value: value}
		}
	}

	updated := false
	for _, field := range fieldOrder {
		upd := pending[field]
		if p.rewriteField(lines, start, end, field, upd.value) {
			p.applied = append(p.applied, Update{
				Table: table.Name,
				Key:   upd.key,
				Field: field,
				Value: upd.value,
			})
			updated = true
		}
	}
	return updated
}

// keyTag maps a key kind to the tag holding its value for the table.
func keyTag(table *dict.Table, kind dict.KeyKind) string {
	switch kind {
	case dict.KeyID:
		return table.IDTag
	case dict.KeyColumnName:
		return "ColumnName"
	default:
		return "Name"
	}
}

// rewriteField rewrites the first occurrence of the field's tag within the
// element span. Returns true when the tag was found and now carries the
// rule's value.
func (p *Patcher) rewriteField(lines []string, start, end int, field, value string) bool {
	for i := start; i <= end; i++ {
		newLine, ok := rewriteTagLine(lines[i], field, value)
		if !ok {
			continue
		}
		if newLine != lines[i] {
			lines[i] = newLine
			return true
		}
		// Tag found but text already current; count it as applied so the
		// summary stays stable across repeated runs.
		return true
	}
	return false
}
