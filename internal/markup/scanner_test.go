package markup

import (
	"strings"
	"testing"
)

func TestFindMatchingDivCloseNested(t *testing.T) {
	text := "<div><div></div></div>"
	start, end, ok := FindMatchingDivClose(text, 0)
	if !ok {
		t.Fatal("expected a match")
	}
	if start != 16 || end != 22 {
		t.Errorf("got range (%d,%d), want (16,22)", start, end)
	}

	// The inner div matches its own close.
	start, end, ok = FindMatchingDivClose(text, 5)
	if !ok || start != 10 || end != 16 {
		t.Errorf("inner: got (%d,%d,%v), want (10,16,true)", start, end, ok)
	}
}

func TestFindMatchingClose(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		tag       string
		openStart int
		wantOK    bool
		wantEnd   int
	}{
		{"attributes and case", `<DIV class="a"><div>x</div></Div >`, "div", 0, true, 34},
		{"similar tag names ignored", "<div><divider></divider></div>", "div", 0, true, 30},
		{"unbalanced", "<div><div></div>", "div", 0, false, 0},
		{"not an opening tag", "<p></p><div></div>", "div", 0, false, 0},
		{"out of range", "<div></div>", "div", 42, false, 0},
		{"nested tables", "<table><tr><td><table></table></td></tr></table>", "table", 0, true, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := FindMatchingClose(tt.text, tt.tag, tt.openStart)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if end != tt.wantEnd {
				t.Errorf("end = %d, want %d", end, tt.wantEnd)
			}
			if !strings.HasPrefix(strings.ToLower(tt.text[start:end]), "</"+tt.tag) {
				t.Errorf("range %q is not a closing %s tag", tt.text[start:end], tt.tag)
			}
		})
	}
}

func TestFindClassElement(t *testing.T) {
	text := `<div><h3 class="x block-title">Hi <span>there</span></h3><div class="block-body">b</div></div>`
	el, ok := findClassElement(text, titleTags, "block-title", 0)
	if !ok {
		t.Fatal("title not found")
	}
	if el.tag != "h3" {
		t.Errorf("tag = %q, want h3", el.tag)
	}
	if got := el.inner(text); got != "Hi <span>there</span>" {
		t.Errorf("inner = %q", got)
	}

	if _, ok := findClassElement(text, titleTags, "block-titles", 0); ok {
		t.Error("class tokens must match exactly")
	}
}
