package session

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"

	"github.com/ziadkadry99/proposal-engine/internal/markup"
)

// Placeholder content of pages and blocks created from scratch.
const (
	NewBlockTitle = "새 섹션"
	NewBlockBody  = "내용을 입력하세요."
)

// PageInfo summarises one page.
type PageInfo struct {
	Index   int    `json:"index"`
	Enabled bool   `json:"enabled"`
	Title   string `json:"title"`
	Blocks  int    `json:"blocks"`
	Tables  []int  `json:"tables,omitempty"`
}

var headingRE = regexp.MustCompile(`(?is)<h[1-3]\b[^>]*>(.*?)</h[1-3]\s*>`)

func pageTitle(page string) string {
	if blocks := markup.ListBlocks(page); len(blocks) > 0 && blocks[0].Title != "" {
		return blocks[0].Title
	}
	if m := headingRE.FindStringSubmatch(page); m != nil {
		return markup.InlineText(m[1])
	}
	return ""
}

// Pages lists the pages in document order.
func (e *Engine) Pages() ([]PageInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	doc, flags, err := e.document()
	if err != nil {
		return nil, err
	}
	out := make([]PageInfo, len(doc.Pages))
	for i, p := range doc.Pages {
		out[i] = PageInfo{
			Index:   i,
			Enabled: flags[i],
			Title:   pageTitle(p),
			Blocks:  len(markup.ListBlocks(p)),
			Tables:  markup.ListTables(p),
		}
	}
	return out, nil
}

func checkIndex(doc markup.Document, i int) error {
	if i < 0 || i >= len(doc.Pages) {
		return fmt.Errorf("%w: %d (have %d pages)", ErrPageIndex, i, len(doc.Pages))
	}
	return nil
}

// SetPageEnabled includes or excludes page i from the export.
func (e *Engine) SetPageEnabled(i int, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	doc, flags, err := e.document()
	if err != nil {
		return err
	}
	if err := checkIndex(doc, i); err != nil {
		return err
	}
	flags[i] = enabled
	e.settings.PageEnabled = flags
	if err := e.persist(); err != nil {
		return err
	}
	e.record("page_enabled", fmt.Sprintf("page %d", i), fmt.Sprint(enabled))
	return nil
}

// MovePage swaps page i with its neighbour in direction delta (-1 or +1),
// together with their enabled flags.
func (e *Engine) MovePage(i, delta int) error {
	if delta != -1 && delta != 1 {
		return fmt.Errorf("%w: move by %d", ErrPageIndex, delta)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	doc, flags, err := e.document()
	if err != nil {
		return err
	}
	if err := checkIndex(doc, i); err != nil {
		return err
	}
	j := i + delta
	if err := checkIndex(doc, j); err != nil {
		return err
	}
	doc.Pages[i], doc.Pages[j] = doc.Pages[j], doc.Pages[i]
	flags[i], flags[j] = flags[j], flags[i]
	if err := e.commit(doc, flags); err != nil {
		return err
	}
	e.record("page_move", fmt.Sprintf("page %d", i), fmt.Sprintf("to %d", j))
	return nil
}

// DuplicatePage inserts an enabled copy of page i right after it. The copy
// gets new table numbers, icon-group keys and block ids.
func (e *Engine) DuplicatePage(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	doc, flags, err := e.document()
	if err != nil {
		return err
	}
	if err := checkIndex(doc, i); err != nil {
		return err
	}

	dup := markup.RenumberRegions(doc.Pages[i], markup.MaxTableNumber(e.text)+1, e.iconKeys())
	dup = markup.ReplaceBlockIDs(dup, e.opts.NewID)

	doc.Pages = insertAt(doc.Pages, i+1, dup)
	flags = insertAt(flags, i+1, true)
	if err := e.commit(doc, flags); err != nil {
		return err
	}
	e.record("page_duplicate", fmt.Sprintf("page %d", i), "")
	return nil
}

// DeletePage removes page i and its flag.
func (e *Engine) DeletePage(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	doc, flags, err := e.document()
	if err != nil {
		return err
	}
	if err := checkIndex(doc, i); err != nil {
		return err
	}
	doc.Pages = append(doc.Pages[:i], doc.Pages[i+1:]...)
	flags = append(flags[:i], flags[i+1:]...)
	if err := e.commit(doc, flags); err != nil {
		return err
	}
	e.record("page_delete", fmt.Sprintf("page %d", i), "")
	return nil
}

// AddPage appends a page holding one placeholder text block and returns the
// block id.
func (e *Engine) AddPage() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.opts.NewID()
	page := markup.NewPageHTML(markup.NewBlockHTML(id, NewBlockTitle, NewBlockBody))
	if err := e.appendPage(page); err != nil {
		return "", err
	}
	e.record("page_add", id, "")
	return id, nil
}

var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
)

// AddMarkdownPage appends a page whose content is rendered from markdown.
// Code blocks are highlighted with inline styles so the export stays
// self-contained.
func (e *Engine) AddMarkdownPage(source string) error {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	page := "\n<div class=\"page markdown-page\">\n" + strings.TrimRight(buf.String(), "\n") + "\n</div>\n"

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.appendPage(page); err != nil {
		return err
	}
	e.record("page_add_markdown", "", fmt.Sprintf("%d bytes", len(source)))
	return nil
}

// appendPage adds page content as the last page, enabled. Tables of the new
// page are marked and numbered after the existing ones. A template without
// pages gets its first page at the end of the document container. Callers
// hold e.mu.
func (e *Engine) appendPage(page string) error {
	doc, flags, err := e.document()
	if err != nil {
		return err
	}
	if len(doc.Pages) == 0 {
		at := markup.ContainerEnd(e.text)
		doc = markup.Document{Prefix: e.text[:at], Suffix: "\n" + e.text[at:]}
	}
	if !markup.HasTableMarkers(page) {
		page = markup.RenumberRegions(markup.EnsureTableMarkers(page), markup.MaxTableNumber(e.text)+1, e.iconKeys())
	}
	doc.Pages = append(doc.Pages, page)
	flags = append(flags, true)
	return e.commit(doc, flags)
}

func (e *Engine) iconKeys() map[string]bool {
	used := make(map[string]bool)
	for _, k := range markup.ListIconGroups(e.text) {
		used[k] = true
	}
	return used
}

func insertAt[T any](s []T, i int, v T) []T {
	s = append(s, v)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}
