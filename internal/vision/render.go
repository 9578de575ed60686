package vision

import (
	"bytes"
	"fmt"
	"html/template"
)

// DefaultTitle is used for pages without a printed heading.
const DefaultTitle = "새 페이지"

const pageTemplate = `
<div class="page extracted-page">
  <div class="user-block" data-block-id="{{.ID}}">
    <h3 class="block-title">{{.Title}}</h3>
    <div class="block-body">{{range .Body}}{{if eq .Type "bullets"}}<ul>{{range .Items}}<li>{{.}}</li>{{end}}</ul>{{else}}<p>{{.Text}}</p>{{end}}{{end}}</div>
  </div>
{{- range .Tables}}
  <table class="extracted-table">
{{- range $i, $row := .}}
    <tr>{{range $row}}{{if eq $i 0}}<th>{{.}}</th>{{else}}<td>{{.}}</td>{{end}}{{end}}</tr>
{{- end}}
  </table>
{{- end}}
</div>
`

var pageTmpl = template.Must(template.New("page").Parse(pageTemplate))

type pageData struct {
	ID     string
	Title  string
	Body   []ContentBlock
	Tables [][][]string
}

// RenderPage renders desc as page markup: one text block with the title,
// subtitle, paragraphs and lists, followed by the tables. Tables stay
// outside the block so they remain editable as tables.
func RenderPage(desc *PageDescription, blockID string) (string, error) {
	data := pageData{ID: blockID, Title: desc.Title}
	if data.Title == "" {
		data.Title = DefaultTitle
	}
	if desc.Subtitle != "" {
		data.Body = append(data.Body, ContentBlock{Type: BlockParagraph, Text: desc.Subtitle})
	}
	for _, b := range desc.Blocks {
		if b.Type == BlockTable {
			data.Tables = append(data.Tables, b.Rows)
			continue
		}
		data.Body = append(data.Body, b)
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering page: %w", err)
	}
	return buf.String(), nil
}
