package session

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

const testTemplate = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>
:root {
  --primary-purple: #4A148C;
  --accent-gold: #D4AF37;
}
.page { padding: var(--page-padding); }
</style></head>
<body>
<div class="document-container">
<div class="page cover-page">
  <p><strong>수신 :</strong> 수신기관명</p>
  <p><strong>제안 :</strong> 뉴고려병원</p>
  <p>Tel. 1833 - 9988</p>
  <p>Email. info@example.com</p>
</div>
<div class="page">
  <h2>병원 소개</h2>
  <img src="placeholder_hospital_view.jpg" alt="exterior">
  <div class="user-block" data-block-id="intro">
    <h3 class="block-title">Intro</h3>
    <div class="block-body"><p>Alpha page text</p></div>
  </div>
</div>
<div class="page">
  <h2>검진 프로그램</h2>
  <table><tr><td>Beta table</td></tr></table>
  <!-- ICON_GROUP_START services --><div class="icons">icons</div><!-- ICON_GROUP_END services -->
</div>
<div class="page">
  <h2>Gamma</h2>
  <img src="logo.png">
</div>
</div>
</body></html>`

type editLog struct {
	mu      sync.Mutex
	actions []string
}

func (l *editLog) RecordEdit(action, target, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actions = append(l.actions, action)
}

func testOptions(t *testing.T) Options {
	t.Helper()
	src := filepath.Join(t.TempDir(), "template.html")
	if err := os.WriteFile(src, []byte(testTemplate), 0o644); err != nil {
		t.Fatal(err)
	}
	n := 0
	return Options{
		TemplateSource: src,
		NewID: func() string {
			n++
			return fmt.Sprintf("gen-%d", n)
		},
	}
}

func setupEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := Open(t.TempDir(), testOptions(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return e
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 10, G: 120, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func pageTitles(t *testing.T, e *Engine) []string {
	t.Helper()
	pages, err := e.Pages()
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	var titles []string
	for _, p := range pages {
		titles = append(titles, p.Title)
	}
	return titles
}

func TestOpenPreparesWorkspace(t *testing.T) {
	e := setupEngine(t)

	for _, p := range []string{e.TemplatePath(), e.SettingsPath(), e.ImagesDir(), e.UploadsDir()} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}

	text, err := e.Template()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(text, "PAGE_START") != 3 {
		t.Errorf("expected 3 marked pages (cover excluded)")
	}
	if !strings.Contains(text, "<!-- TABLE_START 1 -->") {
		t.Error("table markers not inserted")
	}
	if !strings.Contains(text, "--page-gap: 20px;") {
		t.Error("layout variables not written")
	}

	got := pageTitles(t, e)
	want := []string{"Intro", "검진 프로그램", "Gamma"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("titles = %v, want %v", got, want)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(t)
	e1, err := Open(dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	first, _ := e1.Template()

	e2, err := Open(dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := e2.Template()
	if first != second {
		t.Error("reopening the workspace changed the template")
	}
}

func TestMissingTemplate(t *testing.T) {
	e, err := Open(t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if e.HasTemplate() {
		t.Fatal("workspace should have no template")
	}
	if _, err := e.Export(Fields{}, nil); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("Export error = %v, want ErrTemplateNotFound", err)
	}
	if _, err := e.Pages(); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("Pages error = %v, want ErrTemplateNotFound", err)
	}

	if err := e.ReplaceTemplate(testTemplate); err != nil {
		t.Fatalf("ReplaceTemplate: %v", err)
	}
	if pages, _ := e.Pages(); len(pages) != 3 {
		t.Errorf("got %d pages after ReplaceTemplate, want 3", len(pages))
	}
}

func TestExportOmitsDisabledPage(t *testing.T) {
	e := setupEngine(t)
	if err := e.SetPageEnabled(1, false); err != nil {
		t.Fatal(err)
	}

	out, err := e.Export(Fields{}, nil)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	html := out.HTML
	if strings.Contains(html, "Beta table") || strings.Contains(html, "ICON_GROUP") {
		t.Error("disabled page is still present")
	}
	a, g := strings.Index(html, "Alpha page text"), strings.Index(html, "Gamma")
	if a < 0 || g < 0 || a > g {
		t.Errorf("enabled pages missing or out of order (alpha=%d gamma=%d)", a, g)
	}
	for _, marker := range []string{"PAGE_START", "PAGE_END", "TABLE_START"} {
		if strings.Contains(html, marker) {
			t.Errorf("export contains marker %s", marker)
		}
	}
}

func TestExportKeepsTextBetweenPages(t *testing.T) {
	e := setupEngine(t)
	marked := "<html><body>" +
		"<!-- PAGE_START 1 --><div class=\"page\"><h2>One</h2></div><!-- PAGE_END 1 -->" +
		"<p>between</p>" +
		"<!-- PAGE_START 2 --><div class=\"page\"><h2>Two</h2></div><!-- PAGE_END 2 -->" +
		"</body></html>"
	if err := e.ReplaceTemplate(marked); err != nil {
		t.Fatalf("ReplaceTemplate: %v", err)
	}
	if err := e.SetPageEnabled(0, false); err != nil {
		t.Fatal(err)
	}

	out, err := e.Export(Fields{}, nil)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if strings.Contains(out.HTML, "<h2>One</h2>") {
		t.Error("disabled page is still present")
	}
	if !strings.Contains(out.HTML, "<p>between</p><div class=\"page\"><h2>Two</h2>") {
		t.Errorf("text between pages was lost:\n%s", out.HTML)
	}
}

func TestExportNoEmail(t *testing.T) {
	e := setupEngine(t)
	out, err := e.Export(Fields{Email: "sales@example.com", NoEmail: true}, nil)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if strings.Contains(out.HTML, "Email.") || strings.Contains(out.HTML, "sales@example.com") {
		t.Error("email line should be removed")
	}
}

func TestReadsKeepPageFlags(t *testing.T) {
	e := setupEngine(t)
	e.settings.PageEnabled = []bool{true, false, true, false, false}

	if _, err := e.Pages(); err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if _, err := e.Export(Fields{}, nil); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if got := len(e.settings.PageEnabled); got != 5 {
		t.Errorf("reads changed the stored page flags: %v", e.settings.PageEnabled)
	}
}

func TestExportFields(t *testing.T) {
	e := setupEngine(t)
	before, _ := e.Template()

	out, err := e.Export(Fields{Recipient: "ABC Corp", Tel: "02-123-4567", Primary: "112233", Accent: "#ABCDEF"}, nil)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	html := out.HTML
	if !strings.Contains(html, "<strong>수신 :</strong> ABC Corp</p>") {
		t.Error("recipient not substituted after its label")
	}
	if strings.Contains(html, "수신기관명") {
		t.Error("default recipient still present")
	}
	if !strings.Contains(html, "<strong>제안 :</strong> 뉴고려병원") {
		t.Error("empty proposer should keep the template value")
	}
	if !strings.Contains(html, "Tel. 02-123-4567") {
		t.Error("phone not substituted")
	}
	if strings.Contains(html, "Email.") {
		t.Error("empty email should remove the email line")
	}
	if !strings.Contains(html, "--primary-purple: #112233;") || !strings.Contains(html, "--accent-gold: #abcdef;") {
		t.Error("colours not applied")
	}

	after, _ := e.Template()
	if before != after {
		t.Error("export modified the stored template")
	}
}

func TestExportInvalidColor(t *testing.T) {
	e := setupEngine(t)
	if _, err := e.Export(Fields{Primary: "purple-ish"}, nil); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("got %v, want ErrInvalidColor", err)
	}
}

func TestExportEmbedsSlotImage(t *testing.T) {
	e := setupEngine(t)
	if _, err := e.SaveSlotImage("hospital_exterior", "front.png", pngBytes(t, 64, 32)); err != nil {
		t.Fatalf("SaveSlotImage: %v", err)
	}

	out, err := e.Export(Fields{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.HTML, `src="data:image/jpeg;base64,`) {
		t.Error("slot image not embedded")
	}
	if strings.Contains(out.HTML, `src="placeholder_hospital_view.jpg"`) {
		t.Error("placeholder src still present")
	}

	infos := e.SlotImages()
	if !infos[0].Resolved || infos[0].Original != "front.png" {
		t.Errorf("slot info = %+v", infos[0])
	}

	if err := e.ClearSlotImage("hospital_exterior"); err != nil {
		t.Fatal(err)
	}
	if _, ok := e.SlotPath("hospital_exterior"); ok {
		t.Error("slot image should be gone")
	}
}

func TestSaveSlotImageErrors(t *testing.T) {
	e := setupEngine(t)
	if _, err := e.SaveSlotImage("nope", "a.png", pngBytes(t, 2, 2)); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("got %v, want ErrUnknownSlot", err)
	}
	if _, err := e.SaveSlotImage("mri", "a.png", []byte("garbage")); !errors.Is(err, ErrBadImage) {
		t.Errorf("got %v, want ErrBadImage", err)
	}
}

func TestExportInlinesLocalImages(t *testing.T) {
	e := setupEngine(t)
	if err := os.WriteFile(filepath.Join(e.ImagesDir(), "logo.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := e.Export(Fields{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.HTML, `<img src="data:image/png;base64,eA==">`) {
		t.Error("local image not inlined")
	}
}

func TestExportAppendsAttachments(t *testing.T) {
	opts := testOptions(t)
	shared := t.TempDir()
	for _, name := range []string{"page_10.png", "page_2.png", "readme.txt"} {
		if err := os.WriteFile(filepath.Join(shared, name), []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	opts.AttachmentsDir = shared
	e, err := Open(t.TempDir(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddAttachment("extra_03.JPG", pngBytes(t, 4, 4)); err != nil {
		t.Fatalf("AddAttachment: %v", err)
	}

	list, err := e.Attachments()
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, p := range list {
		names = append(names, filepath.Base(p))
	}
	if strings.Join(names, ",") != "page_2.png,extra_03.JPG,page_10.png" {
		t.Errorf("attachment order = %v", names)
	}

	out, err := e.Export(Fields{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(out.HTML, `class="page attachment-page"`) != 3 {
		t.Error("expected three attachment pages")
	}
	if !strings.Contains(out.HTML, `alt="Attachment 3"`) || !strings.Contains(out.HTML, ".attachment-img") {
		t.Error("attachment markup or css missing")
	}
	if strings.Index(out.HTML, "attachment-page\">") > strings.Index(out.HTML, "</body>") {
		t.Error("attachments must be inside the body")
	}

	if err := e.RemoveAttachment("extra_03.JPG"); err != nil {
		t.Fatal(err)
	}
	if err := e.RemoveAttachment("page_2.png"); !errors.Is(err, ErrAttachmentNotFound) {
		t.Errorf("shared attachment removal: got %v", err)
	}
	if _, err := e.AddAttachment("notes.txt", []byte("x")); !errors.Is(err, ErrBadImage) {
		t.Errorf("non-image attachment: got %v", err)
	}
}

func TestAddAttachmentsKeepsGoing(t *testing.T) {
	e := setupEngine(t)
	res, err := e.AddAttachments([]SourceImage{
		{Name: "a_01.jpg", Data: []byte("junk")},
		{Name: "notes.txt", Data: []byte("x")},
		{Name: "b_02.png", Data: pngBytes(t, 4, 4)},
		{Name: "c_03.png", Data: []byte("junk")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(res.Added, ",") != "b_02.png" {
		t.Errorf("added = %v", res.Added)
	}
	if len(res.Failed) != 3 || !strings.HasPrefix(res.Failed[0], "unreadable image: a_01.jpg") {
		t.Errorf("failed = %q", res.Failed)
	}
	list, err := e.Attachments()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || filepath.Base(list[0]) != "b_02.png" {
		t.Errorf("stored attachments = %v", list)
	}
}

func TestAttachmentOrder(t *testing.T) {
	for name, want := range map[string]int{
		"a_04.jpg":          4,
		"scan 12 final.png": 12,
		"cover.png":         noNumber,
		"/dir/7/page-9.png": 9,
	} {
		if got := attachmentOrder(name); got != want {
			t.Errorf("attachmentOrder(%q) = %d, want %d", name, got, want)
		}
	}
}

func TestMovePage(t *testing.T) {
	e := setupEngine(t)
	if err := e.SetPageEnabled(0, false); err != nil {
		t.Fatal(err)
	}
	if err := e.MovePage(0, 1); err != nil {
		t.Fatal(err)
	}
	pages, _ := e.Pages()
	if pages[0].Title != "검진 프로그램" || pages[1].Title != "Intro" {
		t.Errorf("unexpected order %v", pageTitles(t, e))
	}
	if !pages[0].Enabled || pages[1].Enabled {
		t.Error("enabled flags did not move with their pages")
	}

	if err := e.MovePage(0, -1); !errors.Is(err, ErrPageIndex) {
		t.Errorf("got %v, want ErrPageIndex", err)
	}
	if err := e.MovePage(1, 2); !errors.Is(err, ErrPageIndex) {
		t.Errorf("got %v, want ErrPageIndex", err)
	}
}

func TestDuplicatePage(t *testing.T) {
	e := setupEngine(t)
	if err := e.DuplicatePage(1); err != nil {
		t.Fatal(err)
	}
	pages, _ := e.Pages()
	if len(pages) != 4 || pages[2].Title != "검진 프로그램" || !pages[2].Enabled {
		t.Fatalf("unexpected pages %+v", pages)
	}
	tables, _ := e.Tables()
	if fmt.Sprint(tables) != "[1 2]" {
		t.Errorf("tables = %v, want [1 2]", tables)
	}
	groups, _ := e.IconGroups()
	if strings.Join(groups, ",") != "services,services-2" {
		t.Errorf("icon groups = %v", groups)
	}

	if err := e.DuplicatePage(0); err != nil {
		t.Fatal(err)
	}
	blocks, _ := e.Blocks(1)
	if len(blocks) != 1 || blocks[0].ID == "intro" {
		t.Errorf("duplicated block kept its id: %+v", blocks)
	}
}

func TestDeletePage(t *testing.T) {
	e := setupEngine(t)
	if err := e.SetPageEnabled(2, false); err != nil {
		t.Fatal(err)
	}
	if err := e.DeletePage(0); err != nil {
		t.Fatal(err)
	}
	pages, _ := e.Pages()
	if len(pages) != 2 || pages[0].Title != "검진 프로그램" || pages[1].Enabled {
		t.Errorf("unexpected pages %+v", pages)
	}
	if err := e.DeletePage(5); !errors.Is(err, ErrPageIndex) {
		t.Errorf("got %v, want ErrPageIndex", err)
	}
}

func TestAddPageAndBlocks(t *testing.T) {
	e := setupEngine(t)
	id, err := e.AddPage()
	if err != nil {
		t.Fatal(err)
	}
	blocks, err := e.Blocks(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 || blocks[0].ID != id || blocks[0].Title != NewBlockTitle {
		t.Errorf("unexpected new page blocks %+v", blocks)
	}

	if err := e.SaveBlock("intro", "Welcome", "line one\n- point"); err != nil {
		t.Fatal(err)
	}
	b, err := e.Block("intro")
	if err != nil {
		t.Fatal(err)
	}
	if b.Title != "Welcome" || b.Body != "line one\n- point" {
		t.Errorf("saved block = %+v", b)
	}
	if err := e.SaveBlock("missing", "x", "y"); !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("got %v, want ErrBlockNotFound", err)
	}

	added, err := e.AddBlock(0)
	if err != nil {
		t.Fatal(err)
	}
	if blocks, _ := e.Blocks(0); len(blocks) != 2 || blocks[1].ID != added {
		t.Errorf("AddBlock result %+v", blocks)
	}
	if err := e.DeleteBlock(added); err != nil {
		t.Fatal(err)
	}
	if blocks, _ := e.Blocks(0); len(blocks) != 1 {
		t.Errorf("DeleteBlock left %d blocks", len(blocks))
	}
	if err := e.DeleteBlock(added); !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("got %v, want ErrBlockNotFound", err)
	}
}

func TestAddPageWithoutPages(t *testing.T) {
	e, err := Open(t.TempDir(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.ReplaceTemplate(`<html><body><div class="document-container"><p>cover</p></div></body></html>`); err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddPage(); err != nil {
		t.Fatal(err)
	}
	text, _ := e.Template()
	if !strings.Contains(text, "<!-- PAGE_START 1 -->") {
		t.Fatal("page markers missing")
	}
	if strings.Index(text, "PAGE_END 1") > strings.Index(text, "</body>") {
		t.Error("first page must go inside the document container")
	}
}

func TestAddMarkdownPage(t *testing.T) {
	e := setupEngine(t)
	if err := e.AddMarkdownPage("# Extra\n\nSome *text*.\n\n```go\nfunc main() {}\n```\n"); err != nil {
		t.Fatal(err)
	}
	pages, _ := e.Pages()
	if len(pages) != 4 || pages[3].Title != "Extra" {
		t.Errorf("markdown page not appended: %+v", pages)
	}
	text, _ := e.Template()
	if !strings.Contains(text, "<em>text</em>") {
		t.Error("markdown not rendered")
	}
}

func TestTablesAndIconGroups(t *testing.T) {
	e := setupEngine(t)
	tbl, err := e.Table(1)
	if err != nil || !strings.Contains(tbl, "Beta table") {
		t.Fatalf("Table(1) = %q, %v", tbl, err)
	}
	if err := e.SetTable(1, "<table><tr><td>Changed</td></tr></table>"); err != nil {
		t.Fatal(err)
	}
	if tbl, _ := e.Table(1); !strings.Contains(tbl, "Changed") {
		t.Error("table not replaced")
	}
	if _, err := e.Table(9); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("got %v, want ErrTableNotFound", err)
	}

	if err := e.SetIconGroup("services", `<div class="icons">new</div>`); err != nil {
		t.Fatal(err)
	}
	if g, _ := e.IconGroup("services"); g != `<div class="icons">new</div>` {
		t.Errorf("icon group = %q", g)
	}
	if err := e.SetIconGroup("other", "x"); !errors.Is(err, ErrIconGroupNotFound) {
		t.Errorf("got %v, want ErrIconGroupNotFound", err)
	}
}

func TestSetLayout(t *testing.T) {
	e := setupEngine(t)
	if err := e.SetLayout(map[string]int{"page_gap_px": 33}); err != nil {
		t.Fatal(err)
	}
	text, _ := e.Template()
	if !strings.Contains(text, "--page-gap: 33px;") {
		t.Error("css variable not rewritten")
	}
	if e.Layout()["page_gap_px"] != 33 {
		t.Error("layout not stored")
	}
	if err := e.SetLayout(map[string]int{"bogus": 1}); !errors.Is(err, ErrUnknownLayoutKey) {
		t.Errorf("got %v, want ErrUnknownLayoutKey", err)
	}
}

func TestStatePersists(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(t)
	e, err := Open(dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.SetPageEnabled(2, false); err != nil {
		t.Fatal(err)
	}
	if err := e.SaveBlock("intro", "Kept", "body"); err != nil {
		t.Fatal(err)
	}

	again, err := Open(dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	pages, _ := again.Pages()
	if pages[2].Enabled || pages[0].Title != "Kept" {
		t.Errorf("state lost on reopen: %+v", pages)
	}
}

func TestRecorder(t *testing.T) {
	opts := testOptions(t)
	log := &editLog{}
	opts.Recorder = log
	e, err := Open(t.TempDir(), opts)
	if err != nil {
		t.Fatal(err)
	}
	_ = e.SetPageEnabled(0, false)
	_ = e.SaveBlock("intro", "T", "B")
	_ = e.SaveBlock("missing", "T", "B")

	if strings.Join(log.actions, ",") != "page_enabled,block_save" {
		t.Errorf("recorded %v", log.actions)
	}
}

func TestNormalizeColor(t *testing.T) {
	for in, want := range map[string]string{
		"#4A148C": "#4a148c",
		"d4af37":  "#d4af37",
		" #abc ":  "#aabbcc",
	} {
		got, err := NormalizeColor(in)
		if err != nil || got != want {
			t.Errorf("NormalizeColor(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := NormalizeColor("red"); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("got %v, want ErrInvalidColor", err)
	}
}
