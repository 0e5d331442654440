// =============================================================================
// PackOut Sync - Database-Backed Updater
// =============================================================================
//
// This module refreshes a PackOut.xml from a live application dictionary
// database. Unlike the line patcher, it works on a parsed tree: each
// dictionary element is located by its identifier tag (or ColumnName for
// AD_Element), the current human-readable columns are fetched by primary
// key, and the child tag text is overwritten before the whole tree is
// serialized back out.
//
// One bad element must never abort the pass: non-numeric identifiers,
// missing rows and scan failures are suppressed per element.
//
// =============================================================================

package dictdb

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/idempiere-ninja/packsync/internal/dict"
)

// Options control an update pass.
type Options struct {
	// SkipCore ignores elements whose EntityType is the base-dictionary
	// marker. Selected via configuration, not a command-line flag.
	SkipCore bool

	// ClientID filters AD_Element lookups, which are keyed by ColumnName
	// rather than primary key and would otherwise match tenant copies.
	ClientID int
}

// Updater applies database values to a parsed PackOut document.
type Updater struct {
	db   *sqlx.DB
	opts Options
}

// Open connects to the dictionary database and verifies the connection.
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// New returns an Updater over an open database handle.
func New(db *sqlx.DB, opts Options) *Updater {
	return &Updater{db: db, opts: opts}
}

// UpdateDocument walks every dictionary element in the document, refreshes
// its maintained columns from the database, and returns per-table counters.
func (u *Updater) UpdateDocument(doc *etree.Document) dict.Counters {
	counts := make(dict.Counters)
	for i := range dict.Tables {
		table := &dict.Tables[i]
		for _, elem := range doc.FindElements("//" + table.Name) {
			if u.updateElement(elem, table) {
				counts[table.Name]++
			}
		}
	}
	return counts
}

// updateElement refreshes one element. Returns true when the element was
// found in the database and its tags were overwritten.
func (u *Updater) updateElement(elem *etree.Element, table *dict.Table) bool {
	if u.opts.SkipCore {
		if et := elem.SelectElement(dict.EntityTypeTag); et != nil && et.Text() == dict.CoreEntityType {
			return false
		}
	}

	values, ok := u.lookupRow(elem, table)
	if !ok {
		return false
	}

	updated := false
	for i, column := range table.Columns {
		if setChildText(elem, column, values[i]) {
			updated = true
		}
	}
	return updated
}

// lookupRow fetches the maintained columns for the element's row. Any
// failure is logged and suppressed.
func (u *Updater) lookupRow(elem *etree.Element, table *dict.Table) ([]sql.NullString, bool) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE ", strings.Join(table.Columns, ", "), table.Name)

	var args []interface{}
	if table.HasKey(dict.KeyColumnName) {
		col := elem.SelectElement("ColumnName")
		if col == nil || col.Text() == "" {
			return nil, false
		}
		query += "ColumnName = $1 AND AD_Client_ID = $2"
		args = []interface{}{col.Text(), u.opts.ClientID}
	} else {
		idElem := elem.SelectElement(table.IDTag)
		if idElem == nil || idElem.Text() == "" {
			return nil, false
		}
		id, err := strconv.Atoi(strings.TrimSpace(idElem.Text()))
		if err != nil {
			log.Debug().
				Str("table", table.Name).
				Str("id", idElem.Text()).
				Msg("skipping element with non-numeric identifier")
			return nil, false
		}
		query += table.IDTag + " = $1"
		args = []interface{}{id}
	}

	values := make([]sql.NullString, len(table.Columns))
	scanDest := make([]interface{}, len(values))
	for i := range values {
		scanDest[i] = &values[i]
	}

	if err := u.db.QueryRowx(query, args...).Scan(scanDest...); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Warn().Err(err).Str("table", table.Name).Msg("dictionary lookup failed")
		}
		return nil, false
	}
	return values, true
}

// setChildText overwrites a child tag's text, resolving the tag name through
// the legacy best-effort variants (exact, capitalized, lowercase). A NULL
// column clears the text. Returns true when a matching child exists.
func setChildText(elem *etree.Element, name string, value sql.NullString) bool {
	child := findChildVariant(elem, name)
	if child == nil {
		return false
	}
	if value.Valid {
		child.SetText(value.String)
	} else {
		child.SetText("")
	}
	return true
}

// findChildVariant resolves a column name to a child element, tolerating the
// historical casing drift between column names and PackOut tags. The
// vocabulary is fixed; this is compatibility, not a naming contract.
func findChildVariant(elem *etree.Element, name string) *etree.Element {
	for _, variant := range []string{name, capitalize(name), strings.ToLower(name)} {
		if child := elem.SelectElement(variant); child != nil {
			return child
		}
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
