// Package session owns one proposal workspace: the template file, its
// settings and uploaded images. An Engine loads them once, applies editing
// operations in memory and writes the result back after every mutation.
package session

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"

	"github.com/ziadkadry99/proposal-engine/internal/markup"
	"github.com/ziadkadry99/proposal-engine/internal/settings"
)

// Workspace layout below the session directory.
const (
	AssetsDirName      = "proposal_assets"
	TemplateFileName   = "proposal_template.html"
	SettingsFileName   = "proposal_settings.json"
	ImagesDirName      = "images"
	AttachmentsDirName = "attachments"
)

var (
	ErrTemplateNotFound   = errors.New("proposal_template.html not found in session assets")
	ErrUnknownSlot        = errors.New("unknown image slot")
	ErrPageIndex          = errors.New("page index out of range")
	ErrBlockNotFound      = errors.New("text block not found")
	ErrTableNotFound      = errors.New("table not found")
	ErrIconGroupNotFound  = errors.New("icon group not found")
	ErrInvalidColor       = errors.New("invalid colour")
	ErrUnknownLayoutKey   = errors.New("unknown layout setting")
	ErrBadImage           = errors.New("unreadable image")
	ErrAttachmentNotFound = errors.New("attachment not found")
)

// Recorder is notified after every successful mutation.
type Recorder interface {
	RecordEdit(action, target, detail string)
}

// Options configure an Engine.
type Options struct {
	// TemplateSource is copied into a workspace that has no template yet.
	TemplateSource string
	// AttachmentsDir is a read-only directory of attachment page images
	// shared by all sessions.
	AttachmentsDir string
	// AttachmentPatterns are doublestar patterns matched against lower-cased
	// file names. Empty means DefaultAttachmentPatterns.
	AttachmentPatterns []string
	Recorder           Recorder
	// NewID generates text block ids. Defaults to random UUIDs.
	NewID func() string
}

// Engine is the editing context of one workspace. Its methods are safe for
// concurrent use; they are serialised on one lock.
type Engine struct {
	mu sync.Mutex

	dir      string
	opts     Options
	settings *settings.Settings
	text     string
	loaded   bool
}

// Open prepares the workspace below dir and loads its template and settings.
// A workspace without a template is seeded from opts.TemplateSource when set.
// The template is brought up to date with the layout settings and gets page
// and table markers if it has none.
func Open(dir string, opts Options) (*Engine, error) {
	if opts.NewID == nil {
		opts.NewID = func() string { return "blk-" + uuid.New().String()[:8] }
	}
	if len(opts.AttachmentPatterns) == 0 {
		opts.AttachmentPatterns = DefaultAttachmentPatterns
	}

	e := &Engine{dir: dir, opts: opts}
	for _, d := range []string{e.AssetsDir(), e.ImagesDir(), e.UploadsDir()} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("creating workspace: %w", err)
		}
	}

	s, err := settings.Load(e.SettingsPath())
	if err != nil {
		return nil, err
	}
	e.settings = s

	if _, err := os.Stat(e.TemplatePath()); os.IsNotExist(err) && opts.TemplateSource != "" {
		data, err := os.ReadFile(opts.TemplateSource)
		if err != nil {
			return nil, fmt.Errorf("reading template source: %w", err)
		}
		if err := atomic.WriteFile(e.TemplatePath(), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("seeding template: %w", err)
		}
	}

	data, err := os.ReadFile(e.TemplatePath())
	switch {
	case err == nil:
		e.text = string(data)
		e.loaded = true
	case os.IsNotExist(err):
		return e, nil
	default:
		return nil, fmt.Errorf("reading template: %w", err)
	}

	e.text = e.applyLayout(e.text)
	e.text = markup.EnsureTableMarkers(markup.EnsurePageMarkers(e.text))
	e.settings.ResizeEnabled(len(markup.ParseDocument(e.text).Pages))
	if err := e.persist(); err != nil {
		return nil, err
	}
	return e, nil
}

// Dir returns the session directory.
func (e *Engine) Dir() string { return e.dir }

func (e *Engine) AssetsDir() string    { return filepath.Join(e.dir, AssetsDirName) }
func (e *Engine) TemplatePath() string { return filepath.Join(e.AssetsDir(), TemplateFileName) }
func (e *Engine) SettingsPath() string { return filepath.Join(e.AssetsDir(), SettingsFileName) }
func (e *Engine) ImagesDir() string    { return filepath.Join(e.AssetsDir(), ImagesDirName) }
func (e *Engine) UploadsDir() string   { return filepath.Join(e.AssetsDir(), AttachmentsDirName) }

// HasTemplate reports whether the workspace holds a template.
func (e *Engine) HasTemplate() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// Template returns the stored template text including its markers.
func (e *Engine) Template() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return "", ErrTemplateNotFound
	}
	return e.text, nil
}

// ReplaceTemplate stores a new template, for instance an upload, and prepares
// it the same way Open does. The page flags are reset.
func (e *Engine) ReplaceTemplate(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.text = markup.EnsureTableMarkers(markup.EnsurePageMarkers(e.applyLayout(text)))
	e.loaded = true
	e.settings.PageEnabled = nil
	e.settings.ResizeEnabled(len(markup.ParseDocument(e.text).Pages))
	if err := e.persist(); err != nil {
		return err
	}
	e.record("template_replace", "template", "")
	return nil
}

// persist writes template and settings. Callers hold e.mu.
func (e *Engine) persist() error {
	if e.loaded {
		if err := atomic.WriteFile(e.TemplatePath(), bytes.NewReader([]byte(e.text))); err != nil {
			return fmt.Errorf("writing template: %w", err)
		}
	}
	return e.settings.Save(e.SettingsPath())
}

func (e *Engine) record(action, target, detail string) {
	if e.opts.Recorder != nil {
		e.opts.Recorder.RecordEdit(action, target, detail)
	}
}

// document parses the current template. Callers hold e.mu.
func (e *Engine) document() (markup.Document, []bool, error) {
	if !e.loaded {
		return markup.Document{}, nil, ErrTemplateNotFound
	}
	doc := markup.ParseDocument(e.text)
	return doc, e.settings.EnabledFlags(len(doc.Pages)), nil
}

// commit stores doc and flags and persists them. Callers hold e.mu.
func (e *Engine) commit(doc markup.Document, flags []bool) error {
	e.text = doc.Serialize()
	e.settings.PageEnabled = flags
	return e.persist()
}

// commitText stores a rewritten template and persists it. Callers hold e.mu.
func (e *Engine) commitText(text string) error {
	e.text = text
	return e.persist()
}
