package session

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/ziadkadry99/proposal-engine/internal/imaging"
)

// Slot is a named placeholder image location in the template.
type Slot struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// Slots is the fixed set of image slots of the template family.
var Slots = []Slot{
	{"hospital_exterior", "병원 전경", "placeholder_hospital_view.jpg", 1000, 300},
	{"certification_marks", "인증마크 모음", "placeholder_cert_mark.jpg", 490, 150},
	{"center_interior", "검진센터 내부", "placeholder_center_interior.jpg", 1000, 220},
	{"mri", "MRI 장비", "placeholder_mri.jpg", 490, 180},
	{"ct", "CT 장비", "placeholder_ct.jpg", 490, 180},
	{"mobile_app", "모바일 예약시스템", "placeholder_mobile_app.jpg", 1000, 250},
	{"shuttle_bus", "출장검진 버스", "placeholder_bus.jpg", 490, 150},
	{"program_photo", "검진 진행 모습", "placeholder_program_a.jpg", 1000, 150},
}

// LookupSlot finds a slot by key.
func LookupSlot(key string) (Slot, bool) {
	for _, s := range Slots {
		if s.Key == key {
			return s, true
		}
	}
	return Slot{}, false
}

// SlotInfo is a slot together with its state in one workspace.
type SlotInfo struct {
	Slot
	Resolved bool   `json:"resolved"`
	Original string `json:"original,omitempty"`
}

const originalsDirName = "originals"

// SlotImages reports which slots have an uploaded image.
func (e *Engine) SlotImages() []SlotInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]SlotInfo, len(Slots))
	for i, s := range Slots {
		_, err := os.Stat(e.slotFile(s))
		out[i] = SlotInfo{Slot: s, Resolved: err == nil, Original: e.settings.ImagesOriginal[s.Key]}
	}
	return out
}

func (e *Engine) slotFile(s Slot) string {
	return filepath.Join(e.ImagesDir(), s.Placeholder)
}

// SlotPath returns the resized image of a slot if one has been uploaded.
func (e *Engine) SlotPath(key string) (string, bool) {
	s, ok := LookupSlot(key)
	if !ok {
		return "", false
	}
	p := e.slotFile(s)
	if _, err := os.Stat(p); err != nil {
		return "", false
	}
	return p, true
}

// SaveSlotImage stores an uploaded image for a slot. The upload is kept as
// is under images/originals and a copy cropped and scaled to the slot size
// replaces the placeholder file. It returns the path of the resized image.
func (e *Engine) SaveSlotImage(key, filename string, data []byte) (string, error) {
	s, ok := LookupSlot(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSlot, key)
	}
	resized, err := imaging.CropToFill(data, s.Width, s.Height)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrBadImage, filename, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	origDir := filepath.Join(e.ImagesDir(), originalsDirName)
	if err := os.MkdirAll(origDir, 0o755); err != nil {
		return "", fmt.Errorf("creating originals dir: %w", err)
	}
	e.removeOriginal(key)
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".img"
	}
	origName := key + ext
	if err := atomic.WriteFile(filepath.Join(origDir, origName), bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("storing original image: %w", err)
	}

	out := e.slotFile(s)
	if err := atomic.WriteFile(out, bytes.NewReader(resized)); err != nil {
		return "", fmt.Errorf("writing slot image: %w", err)
	}

	e.settings.ImagesOriginal[key] = filepath.Base(filename)
	if err := e.persist(); err != nil {
		return "", err
	}
	e.record("image_set", key, filepath.Base(filename))
	return out, nil
}

// ClearSlotImage removes the uploaded image of a slot so the template
// placeholder is exported unchanged again.
func (e *Engine) ClearSlotImage(key string) error {
	s, ok := LookupSlot(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSlot, key)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := os.Remove(e.slotFile(s)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing slot image: %w", err)
	}
	e.removeOriginal(key)
	delete(e.settings.ImagesOriginal, key)
	if err := e.persist(); err != nil {
		return err
	}
	e.record("image_clear", key, "")
	return nil
}

// removeOriginal deletes any stored original for key. Callers hold e.mu.
func (e *Engine) removeOriginal(key string) {
	matches, _ := filepath.Glob(filepath.Join(e.ImagesDir(), originalsDirName, key+".*"))
	for _, m := range matches {
		os.Remove(m)
	}
}
