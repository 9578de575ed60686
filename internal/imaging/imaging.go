// Package imaging embeds images as data URLs and prepares uploaded photos for
// the fixed-size image slots of a proposal.
package imaging

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMIME is used when the file extension says nothing useful.
const DefaultMIME = "image/jpeg"

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".bmp":  "image/bmp",
}

// MimeType infers the MIME type of an image from its file extension.
func MimeType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := imageTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = t[:i]
		}
		return t
	}
	return DefaultMIME
}

// DataURL encodes data as a base64 data URL.
func DataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// FileDataURL reads the file at path and returns it as a data URL.
func FileDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading image %s: %w", path, err)
	}
	return DataURL(MimeType(path), data), nil
}

var externalPrefixes = []string{"data:", "http:", "https:", "//", "blob:", "about:", "#"}

// IsExternalRef reports whether src must be left as it is: inline data,
// remote URLs and fragment references.
func IsExternalRef(src string) bool {
	s := strings.ToLower(strings.TrimSpace(src))
	if s == "" {
		return true
	}
	for _, p := range externalPrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// IsImageFile reports whether name has an extension of a raster image format
// the browser can show as an attachment page.
func IsImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return true
	}
	return false
}
