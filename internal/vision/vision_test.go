package vision

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ziadkadry99/proposal-engine/internal/llm"
	"github.com/ziadkadry99/proposal-engine/internal/markup"
)

type mockProvider struct {
	content string
	err     error
	calls   []llm.CompletionRequest
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.calls = append(m.calls, req)
	if m.err != nil {
		return nil, m.err
	}
	return &llm.CompletionResponse{Content: m.content, InputTokens: 1000, OutputTokens: 100, Model: "gpt-4o"}, nil
}

const samplePage = `{
  "title": "검진 프로그램",
  "subtitle": "2025년",
  "blocks": [
    {"type": "paragraph", "text": "기본 검진 안내"},
    {"type": "bullets", "items": ["혈액 검사", "흉부 X-ray"]},
    {"type": "table", "rows": [["항목", "비용"], ["기본", "10만원"]]},
    {"type": "chart", "text": "ignored"},
    {"type": "paragraph", "text": "  "}
  ]
}`

func TestExtract(t *testing.T) {
	p := &mockProvider{content: samplePage}
	x := NewExtractor(p, "gpt-4o")

	desc, err := x.Extract(context.Background(), []byte("img"), "image/png")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if desc.Title != "검진 프로그램" || desc.Subtitle != "2025년" {
		t.Errorf("unexpected headings %q / %q", desc.Title, desc.Subtitle)
	}
	if len(desc.Blocks) != 3 {
		t.Fatalf("expected 3 blocks after cleanup, got %d", len(desc.Blocks))
	}

	req := p.calls[0]
	if !req.JSONMode || req.Model != "gpt-4o" {
		t.Errorf("unexpected request %+v", req)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != llm.RoleSystem {
		t.Fatalf("unexpected messages %+v", req.Messages)
	}
	imgs := req.Messages[1].Images
	if len(imgs) != 1 || imgs[0].MIME != "image/png" || string(imgs[0].Data) != "img" {
		t.Errorf("image not attached: %+v", imgs)
	}

	u := x.Usage()
	if u.Calls != 1 || u.InputTokens != 1000 || u.Cost == 0 {
		t.Errorf("unexpected usage %+v", u)
	}
}

func TestExtractCodeFences(t *testing.T) {
	p := &mockProvider{content: "```json\n{\"title\": \"T\", \"blocks\": []}\n```"}
	desc, err := NewExtractor(p, "").Extract(context.Background(), nil, "image/jpeg")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if desc.Title != "T" {
		t.Errorf("expected title T, got %q", desc.Title)
	}
}

func TestExtractFallback(t *testing.T) {
	p := &mockProvider{content: "Sorry, here is the text: hello"}
	desc, err := NewExtractor(p, "").Extract(context.Background(), nil, "image/jpeg")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(desc.Blocks) != 1 || desc.Blocks[0].Type != BlockParagraph || desc.Blocks[0].Text != "Sorry, here is the text: hello" {
		t.Errorf("unexpected fallback %+v", desc)
	}
}

func TestExtractProviderError(t *testing.T) {
	p := &mockProvider{err: errors.New("quota")}
	if _, err := NewExtractor(p, "").Extract(context.Background(), nil, "image/jpeg"); err == nil {
		t.Fatal("expected error")
	}
}

func TestRenderPage(t *testing.T) {
	desc := &PageDescription{
		Title:    "A & B",
		Subtitle: "sub",
		Blocks: []ContentBlock{
			{Type: BlockParagraph, Text: "x"},
			{Type: BlockBullets, Items: []string{"a", "b"}},
			{Type: BlockTable, Rows: [][]string{{"h1", "h2"}, {"c1", "c2"}}},
		},
	}
	got, err := RenderPage(desc, "blk-1")
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	want := "\n<div class=\"page extracted-page\">\n" +
		"  <div class=\"user-block\" data-block-id=\"blk-1\">\n" +
		"    <h3 class=\"block-title\">A &amp; B</h3>\n" +
		"    <div class=\"block-body\"><p>sub</p><p>x</p><ul><li>a</li><li>b</li></ul></div>\n" +
		"  </div>\n" +
		"  <table class=\"extracted-table\">\n" +
		"    <tr><th>h1</th><th>h2</th></tr>\n" +
		"    <tr><td>c1</td><td>c2</td></tr>\n" +
		"  </table>\n" +
		"</div>\n"
	if got != want {
		t.Errorf("RenderPage mismatch:\n got: %q\nwant: %q", got, want)
	}

	blocks := markup.ListBlocks(got)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Title != "A & B" || blocks[0].Body != "sub\nx\n- a\n- b" {
		t.Errorf("unexpected block %+v", blocks[0])
	}
}

func TestRenderPageDefaults(t *testing.T) {
	got, err := RenderPage(&PageDescription{}, "b")
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if !strings.Contains(got, DefaultTitle) || strings.Contains(got, "<table") {
		t.Errorf("unexpected page %q", got)
	}
}

func TestBuildPage(t *testing.T) {
	p := &mockProvider{content: samplePage}
	page, err := NewExtractor(p, "").BuildPage(context.Background(), []byte("img"), "image/png", "blk-9")
	if err != nil {
		t.Fatalf("BuildPage: %v", err)
	}
	if !markup.HasBlock(page, "blk-9") {
		t.Errorf("block id missing in %q", page)
	}
	if n := len(markup.ListTables(markup.EnsureTableMarkers(page))); n != 1 {
		t.Errorf("expected 1 table, got %d", n)
	}
}
