package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // decoders for uploads
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// JPEGQuality is the encoder quality for resized slot images.
const JPEGQuality = 92

// ErrBadSize is returned for a non-positive target size.
var ErrBadSize = errors.New("imaging: target size must be positive")

// CropToFill decodes an uploaded image, crops it around the centre to the
// aspect ratio of w×h and scales it to exactly w×h. Transparent areas are
// flattened onto white. The result is JPEG encoded.
func CropToFill(data []byte, w, h int) ([]byte, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrBadSize
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, fillRect(src.Bounds(), w, h), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// fillRect returns the largest centred sub-rectangle of b with the aspect
// ratio w:h.
func fillRect(b image.Rectangle, w, h int) image.Rectangle {
	sw, sh := b.Dx(), b.Dy()
	if sw*h > w*sh {
		cw := max(sh*w/h, 1)
		x0 := b.Min.X + (sw-cw)/2
		return image.Rect(x0, b.Min.Y, x0+cw, b.Max.Y)
	}
	ch := max(sw*h/w, 1)
	y0 := b.Min.Y + (sh-ch)/2
	return image.Rect(b.Min.X, y0, b.Max.X, y0+ch)
}

// CheckImage reads the header of data with the registered decoders and
// returns the image format.
func CheckImage(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}
	return format, nil
}
