package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/HugoSmits86/nativewebp"
)

// Capture writes rendered frames to PNG or lossless WebP files.
type Capture struct {
	dir    string
	prefix string
	format string
	now    func() time.Time
	count  int
}

// NewCapture creates a capture writing into dir with the given file name
// prefix. format is "png" or "webp"; anything else writes PNG.
func NewCapture(dir, prefix, format string) *Capture {
	if format != "webp" {
		format = "png"
	}
	return &Capture{dir: dir, prefix: prefix, format: format, now: time.Now}
}

// Filename returns the path the next capture will be written to.
func (c *Capture) Filename() string {
	name := fmt.Sprintf("%s_%s_%03d.%s", c.prefix, c.now().Format("2006-01-02_15-04-05"), c.count, c.format)
	if c.dir != "" {
		name = filepath.Join(c.dir, name)
	}
	return name
}

// SavePixels writes an RGBA framebuffer readback. Rows are flipped since GL
// reads bottom-up.
func (c *Capture) SavePixels(pixels []byte, width, height int) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}
	return c.Save(img)
}

// Save writes img to the next capture file.
func (c *Capture) Save(img image.Image) (string, error) {
	if c.dir != "" {
		if err := os.MkdirAll(c.dir, 0o755); err != nil {
			return "", fmt.Errorf("creating capture dir: %w", err)
		}
	}

	name := c.Filename()
	f, err := os.Create(name)
	if err != nil {
		return "", fmt.Errorf("creating capture file: %w", err)
	}
	defer f.Close()

	switch c.format {
	case "webp":
		err = nativewebp.Encode(f, img, nil)
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", c.format, err)
	}
	c.count++
	return name, nil
}
