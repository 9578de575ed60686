package session

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/text/unicode/norm"

	"github.com/ziadkadry99/proposal-engine/internal/imaging"
	"github.com/ziadkadry99/proposal-engine/internal/markup"
)

// CSS variables holding the two theme colours.
const (
	PrimaryColorVar = "primary-purple"
	AccentColorVar  = "accent-gold"
)

// Fields are the values substituted into the template at export. Empty text
// fields leave the template text as it is, except Email: an empty email
// removes the email line. NoEmail removes the line even when Email is set.
// Empty colours keep the template colours.
type Fields struct {
	Recipient string `json:"recipient"`
	Proposer  string `json:"proposer"`
	Tel       string `json:"tel"`
	Email     string `json:"email"`
	NoEmail   bool   `json:"no_email,omitempty"`
	Primary   string `json:"primary"`
	Accent    string `json:"accent"`
}

// Reporter observes export progress.
type Reporter interface {
	Start(total int)
	Update(current int, message string)
	Finish()
}

// Output is an exported proposal.
type Output struct {
	HTML string
	// Warnings lists images that could not be embedded.
	Warnings []string
}

var srcAttrRE = regexp.MustCompile(`(?i)(\bsrc\s*=\s*)(?:"([^"]*)"|'([^']*)')`)

// NormalizeColor validates a CSS hex colour and returns it as #rrggbb.
func NormalizeColor(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s != "" && !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return c.Hex(), nil
}

// Export renders the self-contained proposal: disabled pages are dropped,
// fields and colours substituted, images inlined as data URLs, attachment
// pages appended and every marker removed. Stored state is not modified.
// r may be nil.
func (e *Engine) Export(f Fields, r Reporter) (*Output, error) {
	var primary, accent string
	var err error
	if f.Primary != "" {
		if primary, err = NormalizeColor(f.Primary); err != nil {
			return nil, err
		}
	}
	if f.Accent != "" {
		if accent, err = NormalizeColor(f.Accent); err != nil {
			return nil, err
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	doc, flags, err := e.document()
	if err != nil {
		return nil, err
	}
	attachments, err := e.Attachments()
	if err != nil {
		return nil, err
	}

	if r == nil {
		r = nopReporter{}
	}
	const steps = 6
	r.Start(steps)
	defer r.Finish()

	out := &Output{}
	r.Update(1, "Filtering pages")
	text := doc.Filter(flags).Serialize()

	r.Update(2, "Substituting fields")
	text = substituteFields(text, f)
	if primary != "" {
		text = markup.SetRootVar(text, PrimaryColorVar, primary)
	}
	if accent != "" {
		text = markup.SetRootVar(text, AccentColorVar, accent)
	}
	text = e.applyLayout(text)

	r.Update(3, "Embedding slot images")
	for _, s := range Slots {
		p := e.slotFile(s)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		url, err := imaging.FileDataURL(p)
		if err != nil {
			out.Warnings = append(out.Warnings, err.Error())
			continue
		}
		text = strings.ReplaceAll(text, `src="`+s.Placeholder+`"`, `src="`+url+`"`)
		text = strings.ReplaceAll(text, `src='`+s.Placeholder+`'`, `src="`+url+`"`)
	}

	r.Update(4, "Embedding local images")
	text = e.inlineLocalImages(text, out)

	r.Update(5, "Appending attachment pages")
	if len(attachments) > 0 {
		text = appendAttachments(text, attachments, out)
	}

	r.Update(6, "Removing markers")
	out.HTML = markup.StripMarkers(text)
	return out, nil
}

func substituteFields(text string, f Fields) string {
	if v := norm.NFC.String(strings.TrimSpace(f.Recipient)); v != "" {
		text = markup.ReplaceField(text, markup.FieldRecipient, v)
	}
	if v := norm.NFC.String(strings.TrimSpace(f.Proposer)); v != "" {
		text = markup.ReplaceField(text, markup.FieldProposer, v)
	}
	if v := norm.NFC.String(strings.TrimSpace(f.Tel)); v != "" {
		text = markup.ReplaceField(text, markup.FieldTel, v)
	}
	if v := norm.NFC.String(strings.TrimSpace(f.Email)); v != "" && !f.NoEmail {
		text = markup.ReplaceField(text, markup.FieldEmail, v)
	} else {
		text = markup.RemoveEmailLine(text)
	}
	return text
}

// inlineLocalImages replaces src references to existing workspace files with
// data URLs. External and missing references are left untouched.
func (e *Engine) inlineLocalImages(text string, out *Output) string {
	return srcAttrRE.ReplaceAllStringFunc(text, func(attr string) string {
		m := srcAttrRE.FindStringSubmatch(attr)
		ref := m[2]
		if ref == "" {
			ref = m[3]
		}
		if imaging.IsExternalRef(ref) {
			return attr
		}
		path, ok := e.resolveLocal(ref)
		if !ok {
			return attr
		}
		url, err := imaging.FileDataURL(path)
		if err != nil {
			out.Warnings = append(out.Warnings, err.Error())
			return attr
		}
		return m[1] + `"` + url + `"`
	})
}

// resolveLocal maps a relative reference to a file inside the workspace.
func (e *Engine) resolveLocal(ref string) (string, bool) {
	rel := filepath.FromSlash(strings.SplitN(ref, "?", 2)[0])
	if filepath.IsAbs(rel) || strings.HasPrefix(filepath.Clean(rel), "..") {
		return "", false
	}
	for _, base := range []string{e.ImagesDir(), e.AssetsDir()} {
		p := filepath.Join(base, rel)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, true
		}
	}
	return "", false
}

func appendAttachments(text string, paths []string, out *Output) string {
	var pages []string
	for _, p := range paths {
		url, err := imaging.FileDataURL(p)
		if err != nil {
			out.Warnings = append(out.Warnings, err.Error())
			continue
		}
		pages = append(pages, fmt.Sprintf(
			"<div class=\"page attachment-page\">\n  <img class=\"attachment-img\" src=\"%s\" alt=\"Attachment %d\">\n</div>",
			url, len(pages)+1,
		))
	}
	if len(pages) == 0 {
		return text
	}
	text = markup.EnsureAttachmentCSS(text)
	return markup.AppendToContainer(text, strings.Join(pages, "\n"))
}

type nopReporter struct{}

func (nopReporter) Start(int)          {}
func (nopReporter) Update(int, string) {}
func (nopReporter) Finish()            {}
