package session

import (
	"context"
	"fmt"
)

// PageBuilder turns an image of a document page into page markup holding a
// text block with the given id.
type PageBuilder interface {
	BuildPage(ctx context.Context, image []byte, mimeType, blockID string) (string, error)
}

// SourceImage is one input of ExtractPages.
type SourceImage struct {
	Name string
	MIME string
	Data []byte
}

// ExtractResult reports the outcome of ExtractPages.
type ExtractResult struct {
	Added  int      `json:"added"`
	Failed []string `json:"failed,omitempty"`
}

// ExtractPages appends one page per image, built by b. A failing image is
// recorded in the result and the rest are still processed.
func (e *Engine) ExtractPages(ctx context.Context, b PageBuilder, images []SourceImage) (*ExtractResult, error) {
	if !e.HasTemplate() {
		return nil, ErrTemplateNotFound
	}

	res := &ExtractResult{}
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		e.mu.Lock()
		id := e.opts.NewID()
		e.mu.Unlock()
		page, err := b.BuildPage(ctx, img.Data, img.MIME, id)
		if err != nil {
			res.Failed = append(res.Failed, fmt.Sprintf("%s: %v", img.Name, err))
			continue
		}

		e.mu.Lock()
		err = e.appendPage(page)
		e.mu.Unlock()
		if err != nil {
			return res, err
		}
		e.record("page_extract", id, img.Name)
		res.Added++
	}
	return res, nil
}
