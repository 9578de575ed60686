package markup

import (
	"strings"
	"testing"
)

const rootStyle = "<style>\n:root {\n  --primary-purple: #4A148C;\n  --accent-gold: #D4AF37;\n}\nbody { margin: 0; }\n</style>"

func TestSetRootVar(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		key   string
		value string
		want  string
	}{
		{
			"replace existing",
			rootStyle, "primary-purple", "#112233",
			"<style>\n:root {\n  --primary-purple: #112233;\n  --accent-gold: #D4AF37;\n}\nbody { margin: 0; }\n</style>",
		},
		{
			"append missing",
			rootStyle, "page-gap", "20px",
			"<style>\n:root {\n  --primary-purple: #4A148C;\n  --accent-gold: #D4AF37;\n  --page-gap: 20px;\n}\nbody { margin: 0; }\n</style>",
		},
		{
			"last declaration without semicolon",
			"<style>:root{--a: 1px}</style>", "a", "2px",
			"<style>:root{--a: 2px}</style>",
		},
		{
			"no root block",
			"<style>body{}</style>", "x", "1",
			"<style>\n:root{\n  --x: 1;\n}\nbody{}</style>",
		},
		{
			"no style element",
			"<p>plain</p>", "x", "1",
			"<p>plain</p>",
		},
		{
			"literal value",
			"<style>:root{--a: 1px;}</style>", "a", "$1",
			"<style>:root{--a: $1;}</style>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SetRootVar(tt.in, tt.key, tt.value); got != tt.want {
				t.Errorf("got %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestRootVar(t *testing.T) {
	v, ok := RootVar(rootStyle, "accent-gold")
	if !ok || v != "#D4AF37" {
		t.Errorf("RootVar = %q, %v", v, ok)
	}
	if _, ok := RootVar(rootStyle, "missing"); ok {
		t.Error("expected missing variable")
	}
	if _, ok := RootVar("<p></p>", "accent-gold"); ok {
		t.Error("expected no :root block")
	}
}

func TestEnsureAttachmentCSS(t *testing.T) {
	once := EnsureAttachmentCSS(rootStyle)
	if !strings.Contains(once, ".attachment-img") {
		t.Fatal("attachment rules not inserted")
	}
	if strings.Index(once, ".attachment-page") > strings.Index(once, "</style>") {
		t.Error("rules must be inside the style element")
	}
	if EnsureAttachmentCSS(once) != once {
		t.Error("EnsureAttachmentCSS is not idempotent")
	}
	if got := EnsureAttachmentCSS("<p></p>"); got != "<p></p>" {
		t.Errorf("text without style changed: %q", got)
	}
}

func TestContainerEnd(t *testing.T) {
	for in, want := range map[string]int{
		`<div class="document-container"><p>x</p></div>`: 40,
		"<body><p>x</p></body>":                           14,
		"<p>x</p>":                                        8,
	} {
		if got := ContainerEnd(in); got != want {
			t.Errorf("ContainerEnd(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestAppendToContainer(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"container",
			`<body><div class="document-container"><div class="page">x</div></div></body>`,
			"<body><div class=\"document-container\"><div class=\"page\">x</div>\nF\n</div></body>",
		},
		{
			"body only",
			"<body><p>x</p></body>",
			"<body><p>x</p>F\n</body>",
		},
		{
			"bare",
			"<p>x</p>",
			"<p>x</p>F",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AppendToContainer(tt.in, "F"); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
