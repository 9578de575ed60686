package markup

import (
	"reflect"
	"strings"
	"testing"
)

const sampleTemplate = `<html><head><style>
:root {
  --primary-purple: #4A148C;
  --accent-gold: #D4AF37;
}
</style></head>
<body>
<div class="document-container">
<div class="page cover-page"><div class="page">inner cover</div></div>
<div class="page"><div class="box"><div>one</div></div></div>
<div class="page"><p>two</p><table><tr><td>a</td></tr></table></div>
<div class="page"><p>three</p></div>
</div>
</body></html>`

func TestEnsurePageMarkers(t *testing.T) {
	marked := EnsurePageMarkers(sampleTemplate)

	if got := strings.Count(marked, "PAGE_START"); got != 3 {
		t.Fatalf("PAGE_START count = %d, want 3 (cover page excluded)", got)
	}
	if got := strings.Count(marked, "PAGE_END"); got != 3 {
		t.Errorf("PAGE_END count = %d, want 3", got)
	}
	if !strings.Contains(marked, "<!-- PAGE_START 1 -->\n<div class=\"page\"><div class=\"box\">") {
		t.Error("first page marker should directly precede the first non-cover page")
	}
	if strings.Contains(marked, "PAGE_START 1 -->\n<div class=\"page\">inner cover") {
		t.Error("page nested in the cover must not be wrapped")
	}
}

func TestEnsurePageMarkersIdempotent(t *testing.T) {
	once := EnsurePageMarkers(sampleTemplate)
	twice := EnsurePageMarkers(once)
	if once != twice {
		t.Error("second EnsurePageMarkers changed the text")
	}
}

func TestEnsurePageMarkersNoPages(t *testing.T) {
	in := "<html><body><p>nothing here</p></body></html>"
	if got := EnsurePageMarkers(in); got != in {
		t.Errorf("text without pages changed: %q", got)
	}
}

func TestStripMarkersRoundTrip(t *testing.T) {
	marked := EnsureTableMarkers(EnsurePageMarkers(sampleTemplate))
	if got := StripMarkers(marked); got != sampleTemplate {
		t.Errorf("StripMarkers(Ensure(x)) != x\ngot:\n%s", got)
	}
}

func TestStripMarkersIconGroups(t *testing.T) {
	in := `<div><!-- ICON_GROUP_START services --><span>i</span><!-- ICON_GROUP_END services --></div>`
	want := `<div><span>i</span></div>`
	if got := StripMarkers(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEnsureTableMarkers(t *testing.T) {
	in := `<div><table><tr><td><table><tr><td>x</td></tr></table></td></tr></table><p>gap</p><table></table></div>`
	got := EnsureTableMarkers(in)

	if n := strings.Count(got, "TABLE_START"); n != 2 {
		t.Fatalf("TABLE_START count = %d, want 2 (nested table not wrapped)", n)
	}
	if !reflect.DeepEqual(ListTables(got), []int{1, 2}) {
		t.Errorf("ListTables = %v, want [1 2]", ListTables(got))
	}
	if EnsureTableMarkers(got) != got {
		t.Error("EnsureTableMarkers is not idempotent")
	}
	if MaxTableNumber(got) != 2 {
		t.Errorf("MaxTableNumber = %d, want 2", MaxTableNumber(got))
	}
}
