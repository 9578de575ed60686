package markup

import (
	"regexp"
	"strings"
)

// Document is a template split at its page markers. Pages hold the raw text
// between each PAGE_START/PAGE_END pair; numbering is not stored and is
// reassigned by Serialize.
type Document struct {
	Prefix string
	Pages  []string
	Suffix string
}

// ParseDocument splits text at its page markers. Text without page markers
// parses as a document with no pages and everything in Prefix. Whitespace
// between two pages is dropped (Serialize puts a single newline back); any
// other text found between pages is moved to the start of the following page,
// so it is exported whenever that page is. A start marker without a matching
// end marker ends parsing and the rest of the text becomes the suffix.
func ParseDocument(text string) Document {
	var doc Document
	pos := 0
	for pos < len(text) {
		s := pageStartRE.FindStringSubmatchIndex(text[pos:])
		if s == nil {
			break
		}
		startAt, contentStart := pos+s[0], pos+s[1]
		endRE := regexp.MustCompile(`<!--\s*PAGE_END\s+` + regexp.QuoteMeta(text[pos+s[2]:pos+s[3]]) + `\s*-->`)
		e := endRE.FindStringIndex(text[contentStart:])
		if e == nil {
			break
		}

		gap, page := text[pos:startAt], text[contentStart:contentStart+e[0]]
		if len(doc.Pages) == 0 {
			doc.Prefix = gap
		} else if strings.TrimSpace(gap) != "" {
			page = gap + page
		}

		doc.Pages = append(doc.Pages, page)
		pos = contentStart + e[1]
	}

	if len(doc.Pages) == 0 {
		return Document{Prefix: text}
	}
	doc.Suffix = text[pos:]
	return doc
}

// Serialize joins the document back together, numbering pages 1..N in their
// current order.
func (d Document) Serialize() string {
	var b strings.Builder
	b.WriteString(d.Prefix)
	for i, p := range d.Pages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(pageStartMarker(i + 1))
		b.WriteString(p)
		b.WriteString(pageEndMarker(i + 1))
	}
	b.WriteString(d.Suffix)
	return b.String()
}

// Filter returns a copy holding only the pages whose flag is true. Pages
// without a corresponding flag are kept.
func (d Document) Filter(enabled []bool) Document {
	out := Document{Prefix: d.Prefix, Suffix: d.Suffix}
	for i, p := range d.Pages {
		if i < len(enabled) && !enabled[i] {
			continue
		}
		out.Pages = append(out.Pages, p)
	}
	return out
}
