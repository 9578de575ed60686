package vision

import "github.com/ziadkadry99/proposal-engine/internal/llm"

const systemPrompt = `You read scanned pages of business proposals and transcribe them into structured JSON. Copy the text exactly as printed, in its original language. Do not translate, summarise or invent content.`

const pagePrompt = `Transcribe this page and return a JSON object with exactly these fields:

{
  "title": "main heading of the page, empty if none",
  "subtitle": "secondary heading, empty if none",
  "blocks": [
    {"type": "paragraph", "text": "one paragraph of running text"},
    {"type": "bullets", "items": ["first list item", "second list item"]},
    {"type": "table", "rows": [["header 1", "header 2"], ["cell", "cell"]]}
  ]
}

Keep the reading order of the page. Use one "table" block per printed table, with the header row first. Respond with JSON only.`

func buildMessages(image llm.Image) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: pagePrompt, Images: []llm.Image{image}},
	}
}
