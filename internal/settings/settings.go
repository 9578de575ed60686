// Package settings persists the per-workspace proposal settings: layout
// values, page-enabled flags and the original names of uploaded slot images.
package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
)

// LayoutVar ties a layout setting to the CSS custom property it drives.
type LayoutVar struct {
	Key     string
	Default int
	CSSVar  string
	Unit    string
}

// LayoutVars lists the layout settings in the order they are written to the
// template.
var LayoutVars = []LayoutVar{
	{"page_padding_mm", 20, "page-padding", "mm"},
	{"page_gap_px", 20, "page-gap", "px"},
	{"img_box_height_px", 220, "img-box-height", "px"},
	{"img_margin_v_px", 10, "img-box-margin-v", "px"},
	{"highlight_margin_v_px", 15, "highlight-margin-v", "px"},
	{"table_margin_top_px", 10, "table-margin-top", "px"},
	{"table_cell_padding_px", 7, "table-cell-padding", "px"},
	{"user_block_gap_px", 12, "user-block-gap", "px"},
	{"img_h_300_px", 300, "img-h-300", "px"},
	{"img_h_250_px", 250, "img-h-250", "px"},
	{"img_h_180_px", 180, "img-h-180", "px"},
	{"img_h_150_px", 150, "img-h-150", "px"},
}

// Settings is the content of proposal_settings.json.
type Settings struct {
	Layout         map[string]int    `json:"layout"`
	PageEnabled    []bool            `json:"page_enabled"`
	ImagesOriginal map[string]string `json:"images_original"`

	// extra holds top-level keys this version does not know about.
	extra map[string]json.RawMessage
}

// CSSVar is one rendered custom property, e.g. {"page-gap", "20px"}.
type CSSVar struct {
	Name  string
	Value string
}

// Default returns settings with every layout value at its default.
func Default() *Settings {
	s := &Settings{
		Layout:         make(map[string]int, len(LayoutVars)),
		ImagesOriginal: make(map[string]string),
	}
	for _, v := range LayoutVars {
		s.Layout[v.Key] = v.Default
	}
	return s
}

// Load reads settings from path. A missing file yields the defaults. Layout
// values that are not integers are ignored, unknown layout keys are kept.
func Load(path string) (*Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}

	if l, ok := raw["layout"]; ok {
		var layout map[string]any
		if err := json.Unmarshal(l, &layout); err == nil {
			for k, v := range layout {
				if n, ok := toInt(v); ok {
					s.Layout[k] = n
				}
			}
		}
		delete(raw, "layout")
	}
	if p, ok := raw["page_enabled"]; ok {
		_ = json.Unmarshal(p, &s.PageEnabled)
		delete(raw, "page_enabled")
	}
	if im, ok := raw["images_original"]; ok {
		_ = json.Unmarshal(im, &s.ImagesOriginal)
		if s.ImagesOriginal == nil {
			s.ImagesOriginal = make(map[string]string)
		}
		delete(raw, "images_original")
	}
	if len(raw) > 0 {
		s.extra = raw
	}
	return s, nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}

// Save writes the settings to path, replacing the file atomically.
func (s *Settings) Save(path string) error {
	out := make(map[string]any, len(s.extra)+3)
	for k, v := range s.extra {
		out[k] = v
	}
	out["layout"] = s.Layout
	out["page_enabled"] = s.PageEnabled
	out["images_original"] = s.ImagesOriginal

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

// SetLayout merges values into the layout.
func (s *Settings) SetLayout(values map[string]int) {
	if s.Layout == nil {
		s.Layout = make(map[string]int)
	}
	for k, v := range values {
		s.Layout[k] = v
	}
}

// LayoutValue returns the value for key, falling back to its default.
func (s *Settings) LayoutValue(key string) int {
	if v, ok := s.Layout[key]; ok {
		return v
	}
	for _, lv := range LayoutVars {
		if lv.Key == key {
			return lv.Default
		}
	}
	return 0
}

// EnabledFlags returns exactly n page flags. Missing flags are true and
// surplus flags are dropped. PageEnabled is left as it is.
func (s *Settings) EnabledFlags(n int) []bool {
	flags := make([]bool, n)
	for i := range flags {
		flags[i] = i >= len(s.PageEnabled) || s.PageEnabled[i]
	}
	return flags
}

// ResizeEnabled sets PageEnabled to EnabledFlags(n).
func (s *Settings) ResizeEnabled(n int) {
	s.PageEnabled = s.EnabledFlags(n)
}

// CSSVars renders the known layout settings as CSS custom properties.
func (s *Settings) CSSVars() []CSSVar {
	vars := make([]CSSVar, 0, len(LayoutVars))
	for _, lv := range LayoutVars {
		vars = append(vars, CSSVar{Name: lv.CSSVar, Value: strconv.Itoa(s.LayoutValue(lv.Key)) + lv.Unit})
	}
	return vars
}

// IsLayoutKey reports whether key is a known layout setting.
func IsLayoutKey(key string) bool {
	for _, lv := range LayoutVars {
		if lv.Key == key {
			return true
		}
	}
	return false
}
