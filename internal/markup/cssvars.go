package markup

import (
	"regexp"
	"strings"
)

var (
	rootBlockRE    = regexp.MustCompile(`(?s):root\s*\{([^}]*)\}`)
	styleOpenRE    = regexp.MustCompile(`(?i)<style[^>]*>`)
	styleCloseRE   = regexp.MustCompile(`(?i)</style\s*>`)
	docContainerRE = regexp.MustCompile(`(?i)<div\b[^>]*\bclass\s*=\s*["'][^"']*\bdocument-container\b[^"']*["'][^>]*>`)
	bodyCloseRE    = regexp.MustCompile(`(?i)</body\s*>`)
)

const attachmentCSSKey = ".attachment-page"

const attachmentCSS = `
    /* Attachment pages (full-page images appended at export) */
    .attachment-page { padding: 0 !important; }
    .attachment-page .page-header, .attachment-page .page-footer { display: none !important; }
    .attachment-img { width: 100%; height: 100%; object-fit: contain; display: block; }
    `

// SetRootVar sets the CSS custom property --name inside the first :root block.
// An existing declaration only has its value replaced; the surrounding
// declarations and whitespace are left as they are. A missing declaration is
// appended after the last one. Without a :root block a new one is inserted
// right after the first <style> tag; without a <style> tag the text is
// returned unchanged.
func SetRootVar(text, name, value string) string {
	m := rootBlockRE.FindStringSubmatchIndex(text)
	if m == nil {
		s := styleOpenRE.FindStringIndex(text)
		if s == nil {
			return text
		}
		add := "\n:root{\n  --" + name + ": " + value + ";\n}\n"
		return text[:s[1]] + add + text[s[1]:]
	}

	block := text[m[2]:m[3]]
	declRE := regexp.MustCompile(`(?i)(--` + regexp.QuoteMeta(name) + `\s*:\s*)([^;]*)`)
	if declRE.MatchString(block) {
		block = replaceGroup(block, declRE, 2, value)
	} else {
		body := strings.TrimRight(block, " \t\r\n")
		trail := block[len(body):]
		if body != "" && !strings.HasSuffix(body, ";") {
			body += ";"
		}
		block = body + "\n  --" + name + ": " + value + ";" + trail
	}
	return text[:m[2]] + block + text[m[3]:]
}

// RootVar returns the value of --name in the first :root block.
func RootVar(text, name string) (string, bool) {
	m := rootBlockRE.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	declRE := regexp.MustCompile(`(?i)--` + regexp.QuoteMeta(name) + `\s*:\s*([^;]*)`)
	d := declRE.FindStringSubmatch(m[1])
	if d == nil {
		return "", false
	}
	return strings.TrimSpace(d[1]), true
}

// EnsureAttachmentCSS adds the attachment page rules before the first
// </style> unless they are already present.
func EnsureAttachmentCSS(text string) string {
	if strings.Contains(text, attachmentCSSKey) {
		return text
	}
	m := styleCloseRE.FindStringIndex(text)
	if m == nil {
		return text
	}
	return text[:m[0]] + attachmentCSS + "\n" + text[m[0]:]
}

// ContainerEnd returns the offset at which content appended to the document
// belongs: the closing tag of the document container, else </body>, else the
// end of text.
func ContainerEnd(text string) int {
	if loc := docContainerRE.FindStringIndex(text); loc != nil {
		if closeStart, _, ok := FindMatchingDivClose(text, loc[0]); ok {
			return closeStart
		}
	}
	if b := bodyCloseRE.FindStringIndex(text); b != nil {
		return b[0]
	}
	return len(text)
}

// AppendToContainer inserts fragment just before the closing tag of the
// document container. Without a container it goes before </body>, and without
// either it is appended at the end.
func AppendToContainer(text, fragment string) string {
	loc := docContainerRE.FindStringIndex(text)
	if loc == nil {
		if b := bodyCloseRE.FindStringIndex(text); b != nil {
			return text[:b[0]] + fragment + "\n" + text[b[0]:]
		}
		return text + fragment
	}
	closeStart, _, ok := FindMatchingDivClose(text, loc[0])
	if !ok {
		return text + fragment
	}
	return text[:closeStart] + "\n" + fragment + "\n" + text[closeStart:]
}
