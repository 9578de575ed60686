package markup

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

const (
	blockTitleClass = "block-title"
	blockBodyClass  = "block-body"
)

var (
	blockOpenRE = regexp.MustCompile(`(?i)<div\b[^>]*\bdata-block-id\s*=\s*["']([^"']+)["'][^>]*>`)
	blockIDRE   = regexp.MustCompile(`(?i)(\bdata-block-id\s*=\s*["'])([^"']+)(["'])`)

	titleTags = []string{"h1", "h2", "h3", "h4", "h5", "h6", "div", "p", "span", "strong"}
	bodyTags  = []string{"div"}
)

// Block is an editable text region of a page. Body is plain text: one line
// per paragraph, bullet items prefixed with "- ".
type Block struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

type blockExtent struct {
	id       string
	el       element
	title    element
	body     element
	hasTitle bool
	hasBody  bool
}

// locateBlocks finds every top-level text block in text.
func locateBlocks(text string) []blockExtent {
	var blocks []blockExtent
	pos := 0
	for pos < len(text) {
		m := blockOpenRE.FindStringSubmatchIndex(text[pos:])
		if m == nil {
			break
		}
		openStart, openEnd := pos+m[0], pos+m[1]
		closeStart, closeEnd, ok := FindMatchingDivClose(text, openStart)
		if !ok {
			pos = openEnd
			continue
		}

		b := blockExtent{
			id: text[pos+m[2] : pos+m[3]],
			el: element{tag: "div", openStart: openStart, openEnd: openEnd, closeStart: closeStart, closeEnd: closeEnd},
		}
		scope := text[:closeStart]
		b.title, b.hasTitle = findClassElement(scope, titleTags, blockTitleClass, openEnd)
		from := openEnd
		if b.hasTitle {
			from = b.title.closeEnd
		}
		b.body, b.hasBody = findClassElement(scope, bodyTags, blockBodyClass, from)

		blocks = append(blocks, b)
		pos = closeEnd
	}
	return blocks
}

func findBlock(text, id string) (blockExtent, bool) {
	for _, b := range locateBlocks(text) {
		if b.id == id {
			return b, true
		}
	}
	return blockExtent{}, false
}

// ListBlocks returns the text blocks found in text in document order. A block
// whose title or body region cannot be found is listed with that part empty.
func ListBlocks(text string) []Block {
	var out []Block
	for _, b := range locateBlocks(text) {
		blk := Block{ID: b.id}
		if b.hasTitle {
			blk.Title = InlineText(b.title.inner(text))
		}
		if b.hasBody {
			blk.Body = BodyToText(b.body.inner(text))
		}
		out = append(out, blk)
	}
	return out
}

// HasBlock reports whether a block with the given id exists in text.
func HasBlock(text, id string) bool {
	_, ok := findBlock(text, id)
	return ok
}

// ReplaceBlock rewrites the title and body of the block with the given id.
// found is false when no such block exists. When the block exists but its
// title or body region cannot be located the text is returned unchanged.
func ReplaceBlock(text, id, title, body string) (out string, found bool) {
	b, ok := findBlock(text, id)
	if !ok {
		return text, false
	}
	if !b.hasTitle || !b.hasBody {
		return text, true
	}

	// body follows title, so rewrite it first to keep the title offsets valid
	text = text[:b.body.openEnd] + TextToBody(body) + text[b.body.closeStart:]
	text = text[:b.title.openEnd] + html.EscapeString(title) + text[b.title.closeStart:]
	return text, true
}

// RemoveBlock deletes the block with the given id, including the line it
// occupies when nothing else is on it.
func RemoveBlock(text, id string) (string, bool) {
	b, ok := findBlock(text, id)
	if !ok {
		return text, false
	}
	start, end := expandToLine(text, b.el.openStart, b.el.closeEnd)
	return text[:start] + text[end:], true
}

// NewBlockHTML renders a fresh text block.
func NewBlockHTML(id, title, body string) string {
	return fmt.Sprintf(
		"<div class=\"user-block\" data-block-id=\"%s\">\n  <h3 class=\"%s\">%s</h3>\n  <div class=\"%s\">%s</div>\n</div>",
		html.EscapeString(id), blockTitleClass, html.EscapeString(title), blockBodyClass, TextToBody(body),
	)
}

// NewPageHTML renders the content of a new page holding a single block, in
// the form stored between page markers.
func NewPageHTML(blockHTML string) string {
	return "\n<div class=\"page\">\n" + indent(blockHTML, "  ") + "\n</div>\n"
}

// AppendBlock inserts blockHTML at the end of the first page container in
// page. Without a page container it is appended to the page text.
func AppendBlock(page, blockHTML string) string {
	pos := 0
	for pos < len(page) {
		loc := divOpenRE.FindStringIndex(page[pos:])
		if loc == nil {
			break
		}
		start, openEnd := pos+loc[0], pos+loc[1]
		if !hasClass(classOf(page[start:openEnd]), pageClass) {
			pos = openEnd
			continue
		}
		closeStart, _, ok := FindMatchingDivClose(page, start)
		if !ok {
			break
		}
		head := strings.TrimRight(page[:closeStart], " \t")
		if !strings.HasSuffix(head, "\n") {
			head += "\n"
		}
		return head + indent(blockHTML, "  ") + "\n" + page[closeStart:]
	}

	body := strings.TrimRight(page, "\n")
	return body + "\n" + blockHTML + page[len(body):]
}

// ReplaceBlockIDs gives every block in text a new id from newID.
func ReplaceBlockIDs(text string, newID func() string) string {
	return blockIDRE.ReplaceAllStringFunc(text, func(attr string) string {
		m := blockIDRE.FindStringSubmatch(attr)
		return m[1] + html.EscapeString(newID()) + m[3]
	})
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}
