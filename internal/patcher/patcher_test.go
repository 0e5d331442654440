package patcher_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idempiere-ninja/packsync/internal/dict"
	"github.com/idempiere-ninja/packsync/internal/patcher"
	"github.com/idempiere-ninja/packsync/internal/rules"
	"github.com/idempiere-ninja/packsync/internal/sqlparse"
)

// patch parses the SQL, applies it to the document, and returns the patched
// text with the counters.
func patch(t *testing.T, doc, sql string) (string, dict.Counters) {
	t.Helper()
	rs := rules.New()
	sqlparse.Parse(sql, rs)

	lines := strings.Split(doc, "\n")
	counts := patcher.New(rs, 0).Apply(lines)
	return strings.Join(lines, "\n"), counts
}

func TestPatchElementByColumnName(t *testing.T) {
	doc := `<idempiere>
	<AD_Element>
		<AD_Element_ID>2039</AD_Element_ID>
		<ColumnName>Foo</ColumnName>
		<Help/>
	</AD_Element>
</idempiere>
`
	out, counts := patch(t, doc, "UPDATE AD_Element SET Help='Bar text' WHERE ColumnName='Foo';\n")

	want := `<idempiere>
	<AD_Element>
		<AD_Element_ID>2039</AD_Element_ID>
		<ColumnName>Foo</ColumnName>
		<Help>Bar text</Help>
	</AD_Element>
</idempiere>
`
	assert.Equal(t, want, out)
	assert.Equal(t, 1, counts["AD_Element"])
}

func TestPatchPreservesEveryOtherByte(t *testing.T) {
	// Odd indentation, trailing spaces and attributes must all survive.
	doc := "<root>\r\n" +
		"   <AD_Process type=\"table\">  \r\n" +
		"\t<AD_Process_ID>101</AD_Process_ID>   \r\n" +
		"\t<Name>Old</Name>\t\r\n" +
		"   </AD_Process>\r\n" +
		"</root>\r\n"
	out, counts := patch(t, doc, "UPDATE AD_Process SET Name='New' WHERE AD_Process_ID=101;\n")

	assert.Equal(t, 1, counts.Total())
	assert.Equal(t, strings.Replace(doc, "<Name>Old</Name>", "<Name>New</Name>", 1), out)
}

func TestPatchEmptyPairedTag(t *testing.T) {
	doc := `<AD_Form>
	<AD_Form_ID>7</AD_Form_ID>
	<Help></Help>
</AD_Form>
`
	out, _ := patch(t, doc, "UPDATE AD_Form SET Help='Now set' WHERE AD_Form_ID=7;\n")
	assert.Contains(t, out, "<Help>Now set</Help>")
}

func TestCoreElementNeverModified(t *testing.T) {
	doc := `<AD_Process>
	<AD_Process_ID>101</AD_Process_ID>
	<EntityType>D</EntityType>
	<Help>original</Help>
</AD_Process>
`
	out, counts := patch(t, doc, "UPDATE AD_Process SET Help='changed' WHERE AD_Process_ID=101;\n")

	assert.Equal(t, doc, out)
	assert.Equal(t, 0, counts.Total())
}

func TestCustomizationElementModified(t *testing.T) {
	doc := `<AD_Process>
	<AD_Process_ID>101</AD_Process_ID>
	<EntityType>MP</EntityType>
	<Help>original</Help>
</AD_Process>
`
	out, counts := patch(t, doc, "UPDATE AD_Process SET Help='changed' WHERE AD_Process_ID=101;\n")

	assert.Contains(t, out, "<Help>changed</Help>")
	assert.Equal(t, 1, counts["AD_Process"])
}

func TestNestedSameNamedElements(t *testing.T) {
	// The outer tab's Help sits after the nested tab; patching it proves the
	// span ran to the outer closing tag, not the first one encountered.
	doc := `<AD_Tab>
	<AD_Tab_ID>200</AD_Tab_ID>
	<Name>Parent</Name>
	<AD_Tab>
		<AD_Tab_ID>201</AD_Tab_ID>
		<Name>Child</Name>
	</AD_Tab>
	<Help/>
</AD_Tab>
`
	out, counts := patch(t, doc, "UPDATE AD_Tab SET Help='parent help' WHERE AD_Tab_ID=200;\n")

	assert.Contains(t, out, "\t<Help>parent help</Help>")
	assert.Equal(t, 1, counts["AD_Tab"])
}

func TestFirstTagOccurrenceWins(t *testing.T) {
	// When the same tag appears more than once in a span, the earliest line
	// takes the update.
	doc := `<AD_Tab>
	<AD_Tab_ID>200</AD_Tab_ID>
	<Description>one</Description>
	<Description>two</Description>
</AD_Tab>
`
	out, _ := patch(t, doc, "UPDATE AD_Tab SET Description='patched' WHERE AD_Tab_ID=200;\n")

	assert.Contains(t, out, "<Description>patched</Description>")
	assert.Contains(t, out, "<Description>two</Description>")
	assert.NotContains(t, out, "<Description>one</Description>")
}

func TestUnionOfMatchingKeyKinds(t *testing.T) {
	doc := `<AD_Window>
	<AD_Window_ID>143</AD_Window_ID>
	<Name>Sales Order</Name>
	<Help>old help</Help>
	<Description>old desc</Description>
</AD_Window>
`
	sql := "UPDATE AD_Window SET Help='by id' WHERE AD_Window_ID=143;\n" +
		"UPDATE AD_Window SET Description='by name' WHERE Name='Sales Order';\n"
	out, counts := patch(t, doc, sql)

	assert.Contains(t, out, "<Help>by id</Help>")
	assert.Contains(t, out, "<Description>by name</Description>")
	assert.Equal(t, 1, counts["AD_Window"])
}

func TestMatchByNameWrittenByPreviousRun(t *testing.T) {
	// Element text is escaped on disk; a rule keyed on the raw value must
	// still match it.
	doc := `<AD_Window>
	<AD_Window_ID>143</AD_Window_ID>
	<Name>Receipts &amp; Payments</Name>
	<Help/>
</AD_Window>
`
	out, counts := patch(t, doc, "UPDATE AD_Window SET Help='both' WHERE Name='Receipts & Payments';\n")

	assert.Contains(t, out, "<Help>both</Help>")
	assert.Equal(t, 1, counts.Total())
}

func TestIdempotence(t *testing.T) {
	doc := `<root>
	<AD_Element>
		<ColumnName>C_Tax_ID</ColumnName>
		<Name>Tax</Name>
		<Help/>
	</AD_Element>
	<AD_Process>
		<AD_Process_ID>101</AD_Process_ID>
		<Help>old &amp; busted</Help>
	</AD_Process>
</root>
`
	sql := "UPDATE AD_Element SET Name='Tax Rate', Help='Tax & rate' WHERE ColumnName='C_Tax_ID';\n" +
		"UPDATE AD_Process SET Help='new hotness' WHERE AD_Process_ID=101;\n"

	once, counts1 := patch(t, doc, sql)
	twice, counts2 := patch(t, once, sql)

	assert.Equal(t, once, twice)
	assert.Equal(t, counts1, counts2)
}

func TestUnterminatedElementLeftAlone(t *testing.T) {
	doc := `<AD_Form>
	<AD_Form_ID>7</AD_Form_ID>
	<Help>old</Help>
`
	out, counts := patch(t, doc, "UPDATE AD_Form SET Help='new' WHERE AD_Form_ID=7;\n")

	assert.Equal(t, doc, out)
	assert.Equal(t, 0, counts.Total())
}

func TestScanWindowBoundsElementSearch(t *testing.T) {
	var b strings.Builder
	b.WriteString("<AD_Form>\n\t<AD_Form_ID>7</AD_Form_ID>\n")
	for i := 0; i < 50; i++ {
		b.WriteString("\t<Filler>x</Filler>\n")
	}
	b.WriteString("\t<Help>old</Help>\n</AD_Form>\n")
	doc := b.String()

	rs := rules.New()
	sqlparse.Parse("UPDATE AD_Form SET Help='new' WHERE AD_Form_ID=7;\n", rs)

	// A window smaller than the element makes it unterminated.
	lines := strings.Split(doc, "\n")
	counts := patcher.New(rs, 10).Apply(lines)
	assert.Equal(t, 0, counts.Total())
	assert.Equal(t, doc, strings.Join(lines, "\n"))

	// A sufficient window patches it.
	lines = strings.Split(doc, "\n")
	counts = patcher.New(rs, 100).Apply(lines)
	assert.Equal(t, 1, counts.Total())
}

func TestEndToEndThreeProcessesTwoRules(t *testing.T) {
	doc := `<idempiere>
	<AD_Process>
		<AD_Process_ID>101</AD_Process_ID>
		<Name>First</Name>
		<Help/>
	</AD_Process>
	<AD_Process>
		<AD_Process_ID>102</AD_Process_ID>
		<Name>Second</Name>
		<Help/>
	</AD_Process>
	<AD_Process>
		<AD_Process_ID>103</AD_Process_ID>
		<Name>Third</Name>
		<Help/>
	</AD_Process>
</idempiere>
`
	sql := "UPDATE AD_Process SET Help='Help one' WHERE AD_Process_ID=101;\n" +
		"UPDATE AD_Process SET Help='Help two' WHERE AD_Process_ID=102;\n"
	out, counts := patch(t, doc, sql)

	assert.Equal(t, 2, counts["AD_Process"])
	assert.Equal(t, 2, counts.Total())
	assert.Contains(t, out, "<Help>Help one</Help>")
	assert.Contains(t, out, "<Help>Help two</Help>")
	assert.Contains(t, out, "<Name>Third</Name>")

	// The unmatched element keeps its self-closing Help.
	third := out[strings.Index(out, "<AD_Process_ID>103"):]
	assert.Contains(t, third, "<Help/>")
}

func TestAppliedRecordsEveryFieldWrite(t *testing.T) {
	doc := `<AD_Menu>
	<AD_Menu_ID>42</AD_Menu_ID>
	<Name>old</Name>
	<Description>old</Description>
</AD_Menu>
`
	rs := rules.New()
	sqlparse.Parse("UPDATE AD_Menu SET Name='Reports', Description='All reports' WHERE AD_Menu_ID=42;\n", rs)

	lines := strings.Split(doc, "\n")
	p := patcher.New(rs, 0)
	counts := p.Apply(lines)

	require.Equal(t, 1, counts["AD_Menu"])
	applied := p.Applied()
	require.Len(t, applied, 2)
	for _, u := range applied {
		assert.Equal(t, "AD_Menu", u.Table)
		assert.Equal(t, dict.KeyID, u.Key.Kind)
		assert.Equal(t, "42", u.Key.Value)
	}
}

func TestNoRulesNoChanges(t *testing.T) {
	doc := `<AD_Window>
	<AD_Window_ID>143</AD_Window_ID>
	<Name>Sales Order</Name>
</AD_Window>
`
	out, counts := patch(t, doc, "-- nothing here\n")
	assert.Equal(t, doc, out)
	assert.Equal(t, 0, counts.Total())
}
