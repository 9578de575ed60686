package session

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/natefinch/atomic"

	"github.com/ziadkadry99/proposal-engine/internal/imaging"
)

// DefaultAttachmentPatterns select the image files used as attachment pages.
var DefaultAttachmentPatterns = []string{"*.{jpg,jpeg,png,webp}"}

var (
	trailingNumRE = regexp.MustCompile(`(\d+)\s*$`)
	anyNumRE      = regexp.MustCompile(`\d+`)
)

// noNumber sorts files without any number after all numbered ones.
const noNumber = 1_000_000_000

// attachmentOrder returns the sort number of a file name: the number at the
// end of its base name, else the last number in it.
func attachmentOrder(name string) int {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if m := trailingNumRE.FindStringSubmatch(base); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	if all := anyNumRE.FindAllString(base, -1); len(all) > 0 {
		if n, err := strconv.Atoi(all[len(all)-1]); err == nil {
			return n
		}
	}
	return noNumber
}

// SortAttachments orders paths by attachmentOrder, then by path.
func SortAttachments(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		a, b := attachmentOrder(paths[i]), attachmentOrder(paths[j])
		if a != b {
			return a < b
		}
		return paths[i] < paths[j]
	})
}

func (e *Engine) matchesAttachment(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range e.opts.AttachmentPatterns {
		if ok, err := doublestar.Match(p, lower); err == nil && ok {
			return true
		}
	}
	return false
}

func (e *Engine) listDir(dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing attachments: %w", err)
	}
	var out []string
	for _, ent := range entries {
		if ent.IsDir() || !e.matchesAttachment(ent.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, ent.Name()))
	}
	return out, nil
}

// Attachments returns the attachment page images in export order: the
// shared read-only directory and the files uploaded to this session.
func (e *Engine) Attachments() ([]string, error) {
	shared, err := e.listDir(e.opts.AttachmentsDir)
	if err != nil {
		return nil, err
	}
	own, err := e.listDir(e.UploadsDir())
	if err != nil {
		return nil, err
	}
	all := append(shared, own...)
	SortAttachments(all)
	return all, nil
}

// AddAttachment stores an uploaded attachment page image in the session.
// The name must have an image extension and data must decode as an image.
func (e *Engine) AddAttachment(name string, data []byte) (string, error) {
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." || !imaging.IsImageFile(name) {
		return "", fmt.Errorf("%w: %q is not an image file", ErrBadImage, name)
	}
	if _, err := imaging.CheckImage(data); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrBadImage, name, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	path := filepath.Join(e.UploadsDir(), name)
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("writing attachment: %w", err)
	}
	e.record("attachment_add", name, fmt.Sprintf("%d bytes", len(data)))
	return path, nil
}

// RemoveAttachment deletes an uploaded attachment. Files of the shared
// directory cannot be removed.
func (e *Engine) RemoveAttachment(name string) error {
	name = filepath.Base(filepath.Clean("/" + name))

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := os.Remove(filepath.Join(e.UploadsDir(), name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrAttachmentNotFound, name)
		}
		return fmt.Errorf("removing attachment: %w", err)
	}
	e.record("attachment_remove", name, "")
	return nil
}

// AttachResult reports the outcome of AddAttachments.
type AttachResult struct {
	Added  []string `json:"added"`
	Failed []string `json:"failed,omitempty"`
}

// AddAttachments stores a batch of uploads in order. A file that is not a
// readable image is recorded in the result and the rest are still stored.
// Other errors stop the batch.
func (e *Engine) AddAttachments(files []SourceImage) (*AttachResult, error) {
	res := &AttachResult{Added: []string{}}
	for _, f := range files {
		path, err := e.AddAttachment(f.Name, f.Data)
		switch {
		case errors.Is(err, ErrBadImage):
			res.Failed = append(res.Failed, err.Error())
		case err != nil:
			return res, err
		default:
			res.Added = append(res.Added, filepath.Base(path))
		}
	}
	return res, nil
}
