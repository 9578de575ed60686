package session

import (
	"fmt"

	"github.com/ziadkadry99/proposal-engine/internal/markup"
)

// Blocks lists the text blocks of page i.
func (e *Engine) Blocks(i int) ([]markup.Block, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	doc, _, err := e.document()
	if err != nil {
		return nil, err
	}
	if err := checkIndex(doc, i); err != nil {
		return nil, err
	}
	return markup.ListBlocks(doc.Pages[i]), nil
}

// Block returns the block with the given id wherever it is in the template.
func (e *Engine) Block(id string) (markup.Block, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return markup.Block{}, ErrTemplateNotFound
	}
	for _, b := range markup.ListBlocks(e.text) {
		if b.ID == id {
			return b, nil
		}
	}
	return markup.Block{}, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
}

// SaveBlock replaces the title and plain-text body of a block. A block whose
// title or body cannot be located is left as it is.
func (e *Engine) SaveBlock(id, title, body string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return ErrTemplateNotFound
	}
	text, found := markup.ReplaceBlock(e.text, id, title, body)
	if !found {
		return fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	if text == e.text {
		return nil
	}
	if err := e.commitText(text); err != nil {
		return err
	}
	e.record("block_save", id, title)
	return nil
}

// AddBlock appends a placeholder block to page i and returns its id.
func (e *Engine) AddBlock(i int) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	doc, flags, err := e.document()
	if err != nil {
		return "", err
	}
	if err := checkIndex(doc, i); err != nil {
		return "", err
	}
	id := e.opts.NewID()
	doc.Pages[i] = markup.AppendBlock(doc.Pages[i], markup.NewBlockHTML(id, NewBlockTitle, NewBlockBody))
	if err := e.commit(doc, flags); err != nil {
		return "", err
	}
	e.record("block_add", id, fmt.Sprintf("page %d", i))
	return id, nil
}

// DeleteBlock removes a block.
func (e *Engine) DeleteBlock(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return ErrTemplateNotFound
	}
	text, ok := markup.RemoveBlock(e.text, id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	if err := e.commitText(text); err != nil {
		return err
	}
	e.record("block_delete", id, "")
	return nil
}
