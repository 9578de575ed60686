package session

import (
	"fmt"
	"maps"

	"github.com/ziadkadry99/proposal-engine/internal/markup"
	"github.com/ziadkadry99/proposal-engine/internal/settings"
)

// Layout returns the current layout values.
func (e *Engine) Layout() map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]int, len(settings.LayoutVars))
	for _, lv := range settings.LayoutVars {
		out[lv.Key] = e.settings.LayoutValue(lv.Key)
	}
	return out
}

// SetLayout merges values into the layout settings, saves them and rewrites
// the CSS variables in the template.
func (e *Engine) SetLayout(values map[string]int) error {
	for k := range values {
		if !settings.IsLayoutKey(k) {
			return fmt.Errorf("%w: %s", ErrUnknownLayoutKey, k)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings.SetLayout(maps.Clone(values))
	if e.loaded {
		e.text = e.applyLayout(e.text)
	}
	if err := e.persist(); err != nil {
		return err
	}
	e.record("layout_set", "layout", fmt.Sprint(values))
	return nil
}

// applyLayout writes every layout CSS variable into text.
func (e *Engine) applyLayout(text string) string {
	for _, v := range e.settings.CSSVars() {
		text = markup.SetRootVar(text, v.Name, v.Value)
	}
	return text
}
