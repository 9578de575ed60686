package markup

import (
	"strings"
	"testing"
)

const contactFragment = "<div class=\"cover-info\">\n" +
	"  <p><strong>수신 :</strong> 수신기관명</p>\n" +
	"  <p><strong>제안 :</strong> 뉴고려병원</p>\n" +
	"  <p>Tel. 1833 - 9988</p>\n" +
	"  <p>Email. info@example.com</p>\n" +
	"</div>"

func TestReplaceField(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		value string
		want  string
		gone  string
	}{
		{"recipient", FieldRecipient, "ABC Corp", "<strong>수신 :</strong> ABC Corp</p>", "수신기관명"},
		{"proposer digits", FieldProposer, "1234", "<strong>제안 :</strong> 1234</p>", "뉴고려병원"},
		{"tel", FieldTel, "010-1234-5678", "<p>Tel. 010-1234-5678</p>", "1833 - 9988"},
		{"email", FieldEmail, "sales@example.org", "<p>Email. sales@example.org</p>", "info@example.com"},
		{"no group expansion", FieldRecipient, "$1 & ${2}", "<strong>수신 :</strong> $1 &amp; ${2}</p>", "수신기관명"},
		{"html escaped", FieldProposer, "<b>X</b>", "<strong>제안 :</strong> &lt;b&gt;X&lt;/b&gt;</p>", "뉴고려병원"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReplaceField(contactFragment, tt.field, tt.value)
			if !strings.Contains(got, tt.want) {
				t.Errorf("result does not contain %q:\n%s", tt.want, got)
			}
			if strings.Contains(got, tt.gone) {
				t.Errorf("old value %q still present", tt.gone)
			}
		})
	}
}

func TestReplaceFieldKeepsTrailingWhitespace(t *testing.T) {
	in := "<li><strong>수신 :</strong> Old Name \n</li>"
	want := "<li><strong>수신 :</strong> New \n</li>"
	if got := ReplaceField(in, FieldRecipient, "New"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReplaceFieldMissing(t *testing.T) {
	in := "<p>nothing to replace</p>"
	for _, f := range []Field{FieldRecipient, FieldProposer, FieldTel, FieldEmail} {
		if got := ReplaceField(in, f, "x"); got != in {
			t.Errorf("%s: text changed to %q", f, got)
		}
	}
}

func TestRemoveEmailLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"own element",
			"<div>\n  <p>Tel. 1</p>\n  <p>Email. a@b.c</p>\n</div>",
			"<div>\n  <p>Tel. 1</p>\n</div>",
		},
		{
			"shared element",
			"<p>Tel. 1 | E-mail. a@b.c</p>\n<p>next</p>",
			"<p>next</p>",
		},
		{
			"bare line",
			"Line1\nContact Email. <a href='mailto:x'>x</a>\nLine3",
			"Line1\nLine3",
		},
		{
			"inline span",
			"<p>Tel. 1 <span>Email. a@b.c</span></p>",
			"<p>Tel. 1 </p>",
		},
		{
			"no email",
			"<p>Tel. 1</p>",
			"<p>Tel. 1</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RemoveEmailLine(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFieldString(t *testing.T) {
	if FieldTel.String() != "tel" || Field(99).String() != "unknown" {
		t.Error("unexpected field names")
	}
}
