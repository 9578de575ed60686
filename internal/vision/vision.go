// Package vision turns images of printed proposal pages into editable
// template pages using a vision-capable LLM.
package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/ziadkadry99/proposal-engine/internal/llm"
)

// Block types of a PageDescription.
const (
	BlockParagraph = "paragraph"
	BlockBullets   = "bullets"
	BlockTable     = "table"
)

// ContentBlock is one piece of page content in reading order.
type ContentBlock struct {
	Type  string     `json:"type"`
	Text  string     `json:"text,omitempty"`
	Items []string   `json:"items,omitempty"`
	Rows  [][]string `json:"rows,omitempty"`
}

// PageDescription is the structured transcription of one page.
type PageDescription struct {
	Title    string         `json:"title"`
	Subtitle string         `json:"subtitle,omitempty"`
	Blocks   []ContentBlock `json:"blocks"`
}

// Extractor transcribes page images with an LLM provider.
type Extractor struct {
	Provider llm.Provider
	Model    string

	mu    sync.Mutex
	usage llm.Usage
}

// NewExtractor creates an extractor using the given provider and model.
func NewExtractor(p llm.Provider, model string) *Extractor {
	return &Extractor{Provider: p, Model: model}
}

// Extract transcribes one page image. A response that is not valid JSON is
// kept as a single paragraph so no page is lost.
func (x *Extractor) Extract(ctx context.Context, image []byte, mimeType string) (*PageDescription, error) {
	resp, err := x.Provider.Complete(ctx, llm.CompletionRequest{
		Model:       x.Model,
		Messages:    buildMessages(llm.Image{MIME: mimeType, Data: image}),
		MaxTokens:   4096,
		Temperature: 0.0,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("vision completion: %w", err)
	}

	x.mu.Lock()
	x.usage.Add(resp)
	x.mu.Unlock()

	desc, err := parseDescription(resp.Content)
	if err != nil {
		return fallbackDescription(resp.Content), nil
	}
	return desc, nil
}

// BuildPage transcribes image and renders it as page markup holding a text
// block with the given id.
func (x *Extractor) BuildPage(ctx context.Context, image []byte, mimeType, blockID string) (string, error) {
	desc, err := x.Extract(ctx, image, mimeType)
	if err != nil {
		return "", err
	}
	return RenderPage(desc, blockID)
}

// Usage returns the token usage accumulated so far.
func (x *Extractor) Usage() llm.Usage {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.usage
}

// parseDescription parses a JSON page description, tolerating markdown code
// fences around it.
func parseDescription(raw string) (*PageDescription, error) {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		lines := strings.Split(raw, "\n")
		if len(lines) >= 2 {
			end := len(lines)
			if strings.TrimSpace(lines[end-1]) == "```" {
				end--
			}
			raw = strings.Join(lines[1:end], "\n")
		}
	}

	var desc PageDescription
	if err := json.Unmarshal([]byte(raw), &desc); err != nil {
		return nil, fmt.Errorf("json parse: %w", err)
	}
	desc.Blocks = cleanBlocks(desc.Blocks)
	return &desc, nil
}

// cleanBlocks drops blocks with an unknown type or no content.
func cleanBlocks(blocks []ContentBlock) []ContentBlock {
	out := blocks[:0]
	for _, b := range blocks {
		switch b.Type {
		case BlockParagraph:
			if strings.TrimSpace(b.Text) == "" {
				continue
			}
		case BlockBullets:
			if len(b.Items) == 0 {
				continue
			}
		case BlockTable:
			if len(b.Rows) == 0 {
				continue
			}
		default:
			continue
		}
		out = append(out, b)
	}
	return out
}

func fallbackDescription(raw string) *PageDescription {
	desc := &PageDescription{}
	if text := strings.TrimSpace(raw); text != "" {
		desc.Blocks = []ContentBlock{{Type: BlockParagraph, Text: text}}
	}
	return desc
}
