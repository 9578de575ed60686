package markup

import (
	"html"
	"regexp"
	"strings"
)

// Field identifies one of the substitutable text fields of a proposal.
type Field int

const (
	FieldRecipient Field = iota
	FieldProposer
	FieldTel
	FieldEmail
)

func (f Field) String() string {
	switch f {
	case FieldRecipient:
		return "recipient"
	case FieldProposer:
		return "proposer"
	case FieldTel:
		return "tel"
	case FieldEmail:
		return "email"
	default:
		return "unknown"
	}
}

// fieldPatterns capture (label)(value). Only the value group is rewritten.
var fieldPatterns = map[Field]*regexp.Regexp{
	FieldRecipient: regexp.MustCompile(`(<strong>\s*수신\s*:\s*</strong>\s*)([^<]+)`),
	FieldProposer:  regexp.MustCompile(`(<strong>\s*제안\s*:\s*</strong>\s*)([^<]+)`),
	FieldTel:       regexp.MustCompile(`(Tel\.\s*)([0-9](?:[0-9 \-]*[0-9])?)`),
	FieldEmail:     regexp.MustCompile(`(?i)(E-?mail\.\s*)([^\s<]+)`),
}

var (
	emailLabelRE = regexp.MustCompile(`(?i)E-?mail\.`)
	emailElemRE  = regexp.MustCompile(`(?is)<(p|div|li|span)\b[^>]*>([^<]*E-?mail\.[^<]*)</(p|div|li|span)\s*>`)
)

// ReplaceField substitutes every occurrence of the field's value with the
// HTML-escaped value. The value is inserted literally: no capture group
// references are expanded, so values such as "1833" or "$1" are safe.
// Trailing whitespace of the old value is kept. A template without the field
// is returned unchanged.
func ReplaceField(text string, f Field, value string) string {
	re, ok := fieldPatterns[f]
	if !ok {
		return text
	}
	return replaceGroup(text, re, 2, html.EscapeString(value))
}

// replaceGroup rewrites capture group g of every match of re with value.
func replaceGroup(text string, re *regexp.Regexp, g int, value string) string {
	locs := re.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, loc := range locs {
		vs, ve := loc[2*g], loc[2*g+1]
		if vs < 0 {
			continue
		}
		old := text[vs:ve]
		trail := old[len(strings.TrimRight(old, " \t\r\n")):]
		b.WriteString(text[last:vs])
		b.WriteString(value)
		b.WriteString(trail)
		last = ve
	}
	b.WriteString(text[last:])
	return b.String()
}

// RemoveEmailLine drops the email field entirely. When the email literal sits
// alone in a p, div, li or span element that element is removed; otherwise
// the whole text line containing it is.
func RemoveEmailLine(text string) string {
	for {
		label := emailLabelRE.FindStringIndex(text)
		if label == nil {
			return text
		}

		start, end := -1, -1
		for _, m := range emailElemRE.FindAllStringSubmatchIndex(text, -1) {
			if m[0] > label[0] || m[1] < label[1] {
				continue
			}
			if strings.EqualFold(text[m[2]:m[3]], text[m[6]:m[7]]) {
				start, end = m[0], m[1]
			}
			break
		}
		if start < 0 {
			start, end = label[0], label[1]
		}
		start, end = expandToLine(text, start, end)
		text = text[:start] + text[end:]
	}
}

// expandToLine grows [start,end) to whole lines when only whitespace
// separates it from the line boundaries, and always to whole lines when the
// range is not a complete element.
func expandToLine(text string, start, end int) (int, int) {
	ls := strings.LastIndexByte(text[:start], '\n') + 1
	le := strings.IndexByte(text[end:], '\n')
	if le < 0 {
		le = len(text)
	} else {
		le = end + le + 1
	}

	before := text[ls:start]
	after := strings.TrimRight(text[end:le], "\n")
	if strings.TrimSpace(before) == "" && strings.TrimSpace(after) == "" {
		return ls, le
	}
	if strings.HasPrefix(text[start:end], "<") {
		return start, end
	}
	return ls, le
}
