package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// BulletPrefix starts a bullet line in the plain text form of a block body.
const BulletPrefix = "- "

// textEscape starts a paragraph line that would otherwise read as a bullet.
const textEscape = `\`

// BodyToText converts block body HTML to plain text: each paragraph becomes a
// line, <br> a line break and every list item a line starting with "- ".
// All other markup is dropped and whitespace inside a line is collapsed.
// Paragraph lines starting with "- " or a backslash get a backslash in front.
func BodyToText(body string) string {
	return strings.Join(bodyLines(body, true), "\n")
}

// InlineText returns the text of an HTML fragment on one line with all markup
// dropped, for titles and headings.
func InlineText(fragment string) string {
	return strings.Join(bodyLines(fragment, false), " ")
}

func bodyLines(body string, escape bool) []string {
	z := html.NewTokenizer(strings.NewReader(body))

	var (
		lines  []string
		cur    strings.Builder
		inItem bool
	)
	flush := func() {
		line := strings.Join(strings.Fields(cur.String()), " ")
		switch {
		case inItem && line == strings.TrimSpace(BulletPrefix):
			line = ""
		case escape && !inItem && (strings.HasPrefix(line, BulletPrefix) || strings.HasPrefix(line, textEscape)):
			line = textEscape + line
		}
		if line != "" {
			lines = append(lines, line)
		}
		cur.Reset()
		inItem = false
	}

	for {
		switch z.Next() {
		case html.ErrorToken:
			flush()
			return lines
		case html.TextToken:
			cur.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "p", "div", "br", "ul", "ol":
				flush()
			case "li":
				flush()
				cur.WriteString(BulletPrefix)
				inItem = true
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "p", "div", "li", "ul", "ol":
				flush()
			}
		}
	}
}

// TextToBody converts the plain text form back to HTML. Consecutive "- "
// lines form one <ul>; every other non-empty line becomes a <p>, with one
// leading backslash removed. A blank line ends the current list.
func TextToBody(text string) string {
	var b strings.Builder
	inList := false
	closeList := func() {
		if inList {
			b.WriteString("</ul>")
			inList = false
		}
	}

	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			closeList()
			continue
		}
		if item, ok := bulletItem(line); ok {
			if !inList {
				b.WriteString("<ul>")
				inList = true
			}
			b.WriteString("<li>" + html.EscapeString(item) + "</li>")
			continue
		}
		closeList()
		b.WriteString("<p>" + html.EscapeString(strings.TrimPrefix(line, textEscape)) + "</p>")
	}
	closeList()
	return b.String()
}

func bulletItem(line string) (string, bool) {
	if !strings.HasPrefix(line, BulletPrefix) {
		return "", false
	}
	return strings.TrimSpace(line[len(BulletPrefix):]), true
}
