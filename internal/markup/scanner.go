// Package markup implements the text-level rewriting of proposal templates:
// balanced tag scanning, structural comment markers, field and CSS variable
// substitution, and the addressable regions (pages, text blocks, tables, icon
// groups) that editing operations work on.
//
// Nothing in this package builds a tree of the whole document. Matching is done
// by scanning and regular expressions over the raw HTML so that everything
// outside a rewritten region is preserved byte for byte.
package markup

import (
	"regexp"
	"strings"
)

// tagPair holds the opening and closing patterns for one element kind.
type tagPair struct {
	open  *regexp.Regexp
	close *regexp.Regexp
}

func newTagPair(tag string) tagPair {
	q := regexp.QuoteMeta(strings.ToLower(tag))
	return tagPair{
		open:  regexp.MustCompile(`(?i)<` + q + `\b`),
		close: regexp.MustCompile(`(?i)</` + q + `\s*>`),
	}
}

// knownTags caches the patterns for the element kinds the template code scans.
var knownTags = map[string]tagPair{
	"div":    newTagPair("div"),
	"table":  newTagPair("table"),
	"h1":     newTagPair("h1"),
	"h2":     newTagPair("h2"),
	"h3":     newTagPair("h3"),
	"h4":     newTagPair("h4"),
	"h5":     newTagPair("h5"),
	"h6":     newTagPair("h6"),
	"p":      newTagPair("p"),
	"span":   newTagPair("span"),
	"strong": newTagPair("strong"),
}

func pairFor(tag string) tagPair {
	if p, ok := knownTags[strings.ToLower(tag)]; ok {
		return p
	}
	return newTagPair(tag)
}

// FindMatchingClose returns the byte range of the closing tag that matches the
// opening tag of the given kind starting at openStart. Same-kind elements nested
// in between are accounted for with a depth counter, so for
// "<div><div></div></div>" and openStart 0 the outer "</div>" is returned.
//
// ok is false when openStart does not point at an opening tag of that kind or
// when the text ends before the depth returns to zero.
func FindMatchingClose(text, tag string, openStart int) (start, end int, ok bool) {
	if openStart < 0 || openStart >= len(text) {
		return 0, 0, false
	}
	p := pairFor(tag)
	if loc := p.open.FindStringIndex(text[openStart:]); loc == nil || loc[0] != 0 {
		return 0, 0, false
	}

	depth := 0
	pos := openStart
	for pos < len(text) {
		c := p.close.FindStringIndex(text[pos:])
		if c == nil {
			return 0, 0, false
		}
		o := p.open.FindStringIndex(text[pos:])
		if o != nil && o[0] < c[0] {
			depth++
			pos += o[1]
			continue
		}
		depth--
		if depth == 0 {
			return pos + c[0], pos + c[1], true
		}
		pos += c[1]
	}
	return 0, 0, false
}

// FindMatchingDivClose is FindMatchingClose for div elements, the container
// kind used by pages and text blocks.
func FindMatchingDivClose(text string, openStart int) (start, end int, ok bool) {
	return FindMatchingClose(text, "div", openStart)
}

var (
	openTagRE   = regexp.MustCompile(`(?i)<([a-z][a-z0-9]*)\b[^>]*>`)
	classAttrRE = regexp.MustCompile(`(?i)\bclass\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

// hasClass reports whether the space separated class list contains name.
func hasClass(classes, name string) bool {
	for _, c := range strings.Fields(classes) {
		if c == name {
			return true
		}
	}
	return false
}

// classOf extracts the class attribute value of a single opening tag.
func classOf(tag string) string {
	m := classAttrRE.FindStringSubmatch(tag)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

// element is the located extent of one element in a text.
type element struct {
	tag                  string
	openStart, openEnd   int
	closeStart, closeEnd int
}

// inner returns the content between the opening and closing tag.
func (e element) inner(text string) string {
	return text[e.openEnd:e.closeStart]
}

// findClassElement finds the first element at or after from whose tag is one
// of tags and whose class list contains class, with its balanced extent.
func findClassElement(text string, tags []string, class string, from int) (element, bool) {
	pos := from
	for pos < len(text) {
		loc := openTagRE.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			return element{}, false
		}
		name := strings.ToLower(text[pos+loc[2] : pos+loc[3]])
		openStart, openEnd := pos+loc[0], pos+loc[1]
		pos = openEnd
		if !containsTag(tags, name) || !hasClass(classOf(text[openStart:openEnd]), class) {
			continue
		}
		closeStart, closeEnd, ok := FindMatchingClose(text, name, openStart)
		if !ok {
			return element{}, false
		}
		return element{tag: name, openStart: openStart, openEnd: openEnd, closeStart: closeStart, closeEnd: closeEnd}, true
	}
	return element{}, false
}

func containsTag(tags []string, name string) bool {
	for _, t := range tags {
		if t == name {
			return true
		}
	}
	return false
}
