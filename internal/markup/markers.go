package markup

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// CoverPageClass marks the page container that is never wrapped with page
	// markers; it stays in the document prefix.
	CoverPageClass = "cover-page"

	pageClass = "page"
)

var (
	pageStartRE  = regexp.MustCompile(`<!--\s*PAGE_START\s+(\d+)\s*-->`)
	pageEndRE    = regexp.MustCompile(`<!--\s*PAGE_END\s+(\d+)\s*-->`)
	tableStartRE = regexp.MustCompile(`<!--\s*TABLE_START\s+(\d+)\s*-->`)
	tableEndRE   = regexp.MustCompile(`<!--\s*TABLE_END\s+(\d+)\s*-->`)
	iconStartRE  = regexp.MustCompile(`<!--\s*ICON_GROUP_START\s+([A-Za-z0-9_-]+)\s*-->`)
	iconEndRE    = regexp.MustCompile(`<!--\s*ICON_GROUP_END\s+([A-Za-z0-9_-]+)\s*-->`)

	// Stripping removes the newline that page marker insertion adds on the
	// inner side of each marker, so StripMarkers(EnsurePageMarkers(x)) == x.
	stripPageStartRE = regexp.MustCompile(`<!--\s*PAGE_START\s+\d+\s*-->\n?`)
	stripPageEndRE   = regexp.MustCompile(`\n?<!--\s*PAGE_END\s+\d+\s*-->`)
	stripRegionRE    = regexp.MustCompile(`<!--\s*(?:TABLE|ICON_GROUP)_(?:START|END)\s+[A-Za-z0-9_-]+\s*-->`)

	divOpenRE   = regexp.MustCompile(`(?i)<div\b[^>]*>`)
	tableOpenRE = regexp.MustCompile(`(?i)<table\b`)
)

func pageStartMarker(n int) string  { return fmt.Sprintf("<!-- PAGE_START %d -->", n) }
func pageEndMarker(n int) string    { return fmt.Sprintf("<!-- PAGE_END %d -->", n) }
func tableStartMarker(n int) string { return fmt.Sprintf("<!-- TABLE_START %d -->", n) }
func tableEndMarker(n int) string   { return fmt.Sprintf("<!-- TABLE_END %d -->", n) }
func iconStartMarker(key string) string {
	return "<!-- ICON_GROUP_START " + key + " -->"
}
func iconEndMarker(key string) string {
	return "<!-- ICON_GROUP_END " + key + " -->"
}

// HasPageMarkers reports whether text already carries page markers.
func HasPageMarkers(text string) bool {
	return pageStartRE.MatchString(text)
}

// HasTableMarkers reports whether text already carries table markers.
func HasTableMarkers(text string) bool {
	return tableStartRE.MatchString(text)
}

// EnsurePageMarkers wraps every top-level page container with a numbered
// PAGE_START/PAGE_END pair. Text that already has page markers is returned
// unchanged. The cover page is skipped together with everything nested in it,
// and scanning resumes after each wrapped page so nested page-classed divs are
// never wrapped twice.
func EnsurePageMarkers(text string) string {
	if HasPageMarkers(text) {
		return text
	}

	var b strings.Builder
	n, last, pos := 0, 0, 0
	for pos < len(text) {
		loc := divOpenRE.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, openEnd := pos+loc[0], pos+loc[1]
		classes := classOf(text[start:openEnd])
		if !hasClass(classes, pageClass) {
			pos = openEnd
			continue
		}
		_, closeEnd, ok := FindMatchingDivClose(text, start)
		if !ok {
			pos = openEnd
			continue
		}
		if hasClass(classes, CoverPageClass) {
			pos = closeEnd
			continue
		}

		n++
		b.WriteString(text[last:start])
		b.WriteString(pageStartMarker(n))
		b.WriteString("\n")
		b.WriteString(text[start:closeEnd])
		b.WriteString("\n")
		b.WriteString(pageEndMarker(n))
		last, pos = closeEnd, closeEnd
	}
	if n == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

// EnsureTableMarkers wraps every top-level table element with a numbered
// TABLE_START/TABLE_END pair unless table markers already exist.
func EnsureTableMarkers(text string) string {
	if HasTableMarkers(text) {
		return text
	}

	var b strings.Builder
	n, last, pos := 0, 0, 0
	for pos < len(text) {
		loc := tableOpenRE.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]
		_, closeEnd, ok := FindMatchingClose(text, "table", start)
		if !ok {
			pos += loc[1]
			continue
		}
		n++
		b.WriteString(text[last:start])
		b.WriteString(tableStartMarker(n))
		b.WriteString(text[start:closeEnd])
		b.WriteString(tableEndMarker(n))
		last, pos = closeEnd, closeEnd
	}
	if n == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

// StripMarkers removes every page, table and icon-group marker comment,
// leaving the wrapped content untouched.
func StripMarkers(text string) string {
	text = stripPageStartRE.ReplaceAllLiteralString(text, "")
	text = stripPageEndRE.ReplaceAllLiteralString(text, "")
	return stripRegionRE.ReplaceAllLiteralString(text, "")
}

// regionBounds locates the content between a start marker and the first
// following end marker carrying the same key.
func regionBounds(text string, startRE, endRE *regexp.Regexp, key string) (int, int, bool) {
	pos := 0
	for pos < len(text) {
		s := startRE.FindStringSubmatchIndex(text[pos:])
		if s == nil {
			return 0, 0, false
		}
		contentStart := pos + s[1]
		if text[pos+s[2]:pos+s[3]] != key {
			pos = contentStart
			continue
		}
		rest := text[contentStart:]
		for _, e := range endRE.FindAllStringSubmatchIndex(rest, -1) {
			if rest[e[2]:e[3]] == key {
				return contentStart, contentStart + e[0], true
			}
		}
		return 0, 0, false
	}
	return 0, 0, false
}

// markerKeys returns the keys of all start markers matched by re, in document
// order and without duplicates.
func markerKeys(text string, re *regexp.Regexp) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		keys = append(keys, m[1])
	}
	return keys
}

// MaxTableNumber returns the highest table marker number in text, or 0.
func MaxTableNumber(text string) int {
	max := 0
	for _, k := range markerKeys(text, tableStartRE) {
		if n, err := strconv.Atoi(k); err == nil && n > max {
			max = n
		}
	}
	return max
}
