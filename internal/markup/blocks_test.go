package markup

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

const blockPage = `
<div class="page">
  <div class="user-block" data-block-id="b1">
    <h3 class="block-title">Title <em>One</em></h3>
    <div class="block-body"><p>First para</p><ul><li>alpha</li><li>beta</li></ul><p>Last &amp; final</p></div>
  </div>
  <div class="user-block" data-block-id="b2">
    <h3 class="block-title">Second</h3>
    <div class="block-body"><div><p>nested</p></div><p>after</p></div>
  </div>
</div>
`

func TestListBlocks(t *testing.T) {
	want := []Block{
		{ID: "b1", Title: "Title One", Body: "First para\n- alpha\n- beta\nLast & final"},
		{ID: "b2", Title: "Second", Body: "nested\nafter"},
	}
	if got := ListBlocks(blockPage); !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v\nwant %+v", got, want)
	}
}

func TestReplaceBlock(t *testing.T) {
	out, found := ReplaceBlock(blockPage, "b1", "New <Title>", "one\n- x\n\ntwo")
	if !found {
		t.Fatal("block b1 not found")
	}
	if !strings.Contains(out, "<h3 class=\"block-title\">New &lt;Title&gt;</h3>") {
		t.Errorf("title not escaped or not written:\n%s", out)
	}
	if !strings.Contains(out, "<div class=\"block-body\"><p>one</p><ul><li>x</li></ul><p>two</p></div>") {
		t.Errorf("body not rewritten:\n%s", out)
	}

	blocks := ListBlocks(out)
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if blocks[0].Title != "New <Title>" || blocks[0].Body != "one\n- x\ntwo" {
		t.Errorf("round trip mismatch: %+v", blocks[0])
	}
	if blocks[1].Body != "nested\nafter" {
		t.Errorf("other block changed: %+v", blocks[1])
	}
}

func TestReplaceBlockMissing(t *testing.T) {
	out, found := ReplaceBlock(blockPage, "nope", "T", "B")
	if found || out != blockPage {
		t.Errorf("found=%v, text changed=%v", found, out != blockPage)
	}
}

func TestReplaceBlockWithoutBody(t *testing.T) {
	in := `<div data-block-id="m"><h3 class="block-title">T</h3><p>loose</p></div>`
	out, found := ReplaceBlock(in, "m", "X", "Y")
	if !found {
		t.Fatal("block m should be found")
	}
	if out != in {
		t.Errorf("malformed block should be left unchanged, got %q", out)
	}
}

func TestRemoveBlock(t *testing.T) {
	out, ok := RemoveBlock(blockPage, "b2")
	if !ok {
		t.Fatal("RemoveBlock reported missing block")
	}
	if strings.Contains(out, "b2") || strings.Contains(out, "nested") {
		t.Errorf("block b2 still present:\n%s", out)
	}
	if !strings.HasSuffix(out, "  </div>\n</div>\n") {
		t.Errorf("surrounding lines damaged:\n%q", out)
	}
	if len(ListBlocks(out)) != 1 {
		t.Errorf("got %d blocks, want 1", len(ListBlocks(out)))
	}
}

func TestAppendBlock(t *testing.T) {
	out := AppendBlock(blockPage, NewBlockHTML("b3", "Third", "hello"))
	blocks := ListBlocks(out)
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}
	if blocks[2].ID != "b3" || blocks[2].Title != "Third" || blocks[2].Body != "hello" {
		t.Errorf("unexpected appended block %+v", blocks[2])
	}
	if !strings.HasSuffix(out, "</div>\n</div>\n") {
		t.Errorf("page container not closed last:\n%q", out)
	}
}

func TestNewPageHTML(t *testing.T) {
	page := NewPageHTML(NewBlockHTML("x1", "Heading", "- a\n- b"))
	if !strings.HasPrefix(page, "\n<div class=\"page\">\n") {
		t.Errorf("unexpected page start %q", page)
	}
	blocks := ListBlocks(page)
	if len(blocks) != 1 || blocks[0].Body != "- a\n- b" {
		t.Errorf("unexpected blocks %+v", blocks)
	}
}

func TestReplaceBlockIDs(t *testing.T) {
	n := 0
	out := ReplaceBlockIDs(blockPage, func() string {
		n++
		return fmt.Sprintf("copy-%d", n)
	})
	var ids []string
	for _, b := range ListBlocks(out) {
		ids = append(ids, b.ID)
	}
	if !reflect.DeepEqual(ids, []string{"copy-1", "copy-2"}) {
		t.Errorf("ids = %v", ids)
	}
	if !HasBlock(out, "copy-2") || HasBlock(out, "b1") {
		t.Error("HasBlock disagrees with the rewritten ids")
	}
}
