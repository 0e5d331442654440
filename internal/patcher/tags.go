// =============================================================================
// PackOut Sync - Tag Line Helpers
// =============================================================================
//
// Textual helpers for reading and rewriting single-line tag constructs. Two
// shapes are handled:
//
//   <Tag attr="...">text</Tag>     paired, text replaced between the brackets
//   <Tag/> and <Tag />             self-closing, expanded to the paired form
//                                  when a non-empty value is written
//
// A tag whose text spans multiple lines is readable and writable only by the
// DOM-based updater; here it is simply not a rewrite site.
//
// =============================================================================

package patcher

import "strings"

// findTagConstruct locates a start-tag construct for tag on the line and
// returns the index of '<', the index of the construct's closing '>', and
// whether the construct is self-closed. Longer tag names sharing the prefix
// are skipped.
func findTagConstruct(line, tag string) (idx, gt int, selfClosed, ok bool) {
	needle := "<" + tag
	for pos := 0; ; {
		i := strings.Index(line[pos:], needle)
		if i < 0 {
			return 0, 0, false, false
		}
		i += pos
		after := i + len(needle)
		if after >= len(line) {
			return 0, 0, false, false
		}

		switch line[after] {
		case '>':
			return i, after, false, true
		case '/':
			if after+1 < len(line) && line[after+1] == '>' {
				return i, after + 1, true, true
			}
		case ' ':
			g := strings.IndexByte(line[after:], '>')
			if g < 0 {
				return 0, 0, false, false
			}
			g += after
			return i, g, line[g-1] == '/', true
		}
		pos = after
	}
}

// tagText extracts the text of a single-line tag construct. Self-closing
// constructs read as empty text. Paired constructs whose end tag is on a
// later line are not readable here.
func tagText(line, tag string) (string, bool) {
	_, gt, selfClosed, ok := findTagConstruct(line, tag)
	if !ok {
		return "", false
	}
	if selfClosed {
		return "", true
	}
	endIdx := strings.Index(line[gt:], "</"+tag+">")
	if endIdx < 0 {
		return "", false
	}
	return line[gt+1 : gt+endIdx], true
}

// rewriteTagLine replaces the text of a single-line tag construct, returning
// the new line and whether the tag was found in a rewritable shape. All
// bytes outside the text value, including the tag's own attributes and the
// surrounding whitespace, are preserved.
func rewriteTagLine(line, tag, value string) (string, bool) {
	idx, gt, selfClosed, ok := findTagConstruct(line, tag)
	if !ok {
		return line, false
	}

	if selfClosed {
		// An empty value keeps the self-closing form as is.
		if value == "" {
			return line, true
		}
		open := strings.TrimRight(line[idx:gt-1], " ") + ">"
		return line[:idx] + open + escapeText(value) + "</" + tag + ">" + line[gt+1:], true
	}

	endIdx := strings.Index(line[gt:], "</"+tag+">")
	if endIdx < 0 {
		// Text continues on following lines; not a single-line rewrite site.
		return line, false
	}
	return line[:gt+1] + escapeText(value) + line[gt+endIdx:], true
}

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

var textUnescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", "\"",
	"&apos;", "'",
	"&amp;", "&",
)

// escapeText escapes replacement text for embedding as XML character data.
func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// unescapeText reverses the common XML entities when snapshotting element
// text for key comparison, so keys written by a previous run still match.
func unescapeText(s string) string {
	return textUnescaper.Replace(s)
}
