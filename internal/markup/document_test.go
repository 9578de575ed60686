package markup

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseDocumentRoundTrip(t *testing.T) {
	marked := EnsurePageMarkers(sampleTemplate)
	doc := ParseDocument(marked)

	if len(doc.Pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(doc.Pages))
	}
	if !strings.Contains(doc.Prefix, "cover-page") {
		t.Error("cover page should stay in the prefix")
	}
	wantFirst := "\n<div class=\"page\"><div class=\"box\"><div>one</div></div></div>\n"
	if doc.Pages[0] != wantFirst {
		t.Errorf("page 1 = %q, want %q", doc.Pages[0], wantFirst)
	}
	if got := doc.Serialize(); got != marked {
		t.Errorf("Serialize(Parse(x)) != x\ngot:\n%s", got)
	}
}

func TestParseDocumentWithoutMarkers(t *testing.T) {
	doc := ParseDocument("<p>x</p>")
	if len(doc.Pages) != 0 {
		t.Errorf("got %d pages, want 0", len(doc.Pages))
	}
	if doc.Prefix != "<p>x</p>" || doc.Suffix != "" {
		t.Errorf("unexpected split: %+v", doc)
	}
}

func TestParseDocumentGaps(t *testing.T) {
	in := "A<!-- PAGE_START 1 -->x<!-- PAGE_END 1 -->junk<!-- PAGE_START 2 -->y<!-- PAGE_END 2 -->  \n <!-- PAGE_START 3 -->z<!-- PAGE_END 3 -->B"
	doc := ParseDocument(in)

	want := Document{Prefix: "A", Pages: []string{"x", "junky", "z"}, Suffix: "B"}
	if !reflect.DeepEqual(doc, want) {
		t.Errorf("got %+v, want %+v", doc, want)
	}
}

func TestParseDocumentUnterminatedPage(t *testing.T) {
	in := "A<!-- PAGE_START 1 -->x<!-- PAGE_END 1 --><!-- PAGE_START 2 -->dangling"
	doc := ParseDocument(in)
	if len(doc.Pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(doc.Pages))
	}
	if doc.Suffix != "<!-- PAGE_START 2 -->dangling" {
		t.Errorf("suffix = %q", doc.Suffix)
	}
}

func TestSerializeRenumbers(t *testing.T) {
	doc := Document{Prefix: "P", Pages: []string{"b", "a"}, Suffix: "S"}
	want := "P<!-- PAGE_START 1 -->b<!-- PAGE_END 1 -->\n<!-- PAGE_START 2 -->a<!-- PAGE_END 2 -->S"
	if got := doc.Serialize(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDocumentFilter(t *testing.T) {
	doc := Document{Prefix: "P", Pages: []string{"a", "b", "c"}, Suffix: "S"}

	got := doc.Filter([]bool{true, false})
	if !reflect.DeepEqual(got.Pages, []string{"a", "c"}) {
		t.Errorf("pages = %v, want [a c]", got.Pages)
	}
	if got.Prefix != "P" || got.Suffix != "S" {
		t.Error("prefix and suffix must be kept")
	}
	if len(doc.Pages) != 3 {
		t.Error("Filter modified the receiver")
	}
}
