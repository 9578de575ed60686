package session

import (
	"fmt"
	"strconv"

	"github.com/ziadkadry99/proposal-engine/internal/markup"
)

// Tables lists the table numbers in the template.
func (e *Engine) Tables() ([]int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return nil, ErrTemplateNotFound
	}
	return markup.ListTables(e.text), nil
}

// Table returns the raw markup of table n.
func (e *Engine) Table(n int) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return "", ErrTemplateNotFound
	}
	t, ok := markup.GetTable(e.text, n)
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrTableNotFound, n)
	}
	return t, nil
}

// SetTable replaces the markup of table n as given.
func (e *Engine) SetTable(n int, fragment string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return ErrTemplateNotFound
	}
	text, ok := markup.SetTable(e.text, n, fragment)
	if !ok {
		return fmt.Errorf("%w: %d", ErrTableNotFound, n)
	}
	if err := e.commitText(text); err != nil {
		return err
	}
	e.record("table_set", "table "+strconv.Itoa(n), "")
	return nil
}

// IconGroups lists the icon-group keys in the template.
func (e *Engine) IconGroups() ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return nil, ErrTemplateNotFound
	}
	return markup.ListIconGroups(e.text), nil
}

// IconGroup returns the raw markup of an icon group.
func (e *Engine) IconGroup(key string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return "", ErrTemplateNotFound
	}
	g, ok := markup.GetIconGroup(e.text, key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrIconGroupNotFound, key)
	}
	return g, nil
}

// SetIconGroup replaces the markup of an icon group as given.
func (e *Engine) SetIconGroup(key, fragment string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return ErrTemplateNotFound
	}
	text, ok := markup.SetIconGroup(e.text, key, fragment)
	if !ok {
		return fmt.Errorf("%w: %s", ErrIconGroupNotFound, key)
	}
	if err := e.commitText(text); err != nil {
		return err
	}
	e.record("icon_group_set", key, "")
	return nil
}
