package present

import (
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	webp "github.com/deepteams/webp"
)

// ScreenshotDir is where WriteScreenshot writes files; callers set it once
// at startup.
var ScreenshotDir = "screenshots"

// WriteScreenshot encodes frame as a lossless WebP and writes it to
// ScreenshotDir with a timestamped, sanitised filename built from label.
// Lossless is the right default here: a voxel frame's hard edges and flat
// shaded faces are exactly the content lossy WebP's block DCT blurs.
func WriteScreenshot(label string, frame Frame) error {
	if err := os.MkdirAll(ScreenshotDir, 0o755); err != nil {
		return fmt.Errorf("voxrt: present: screenshot mkdir %s: %w", ScreenshotDir, err)
	}

	stamp := time.Now().Format("20060102_150405")
	path := fmt.Sprintf("%s/%s_%s.webp", ScreenshotDir, stamp, sanitizeLabel(label))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("voxrt: present: create %s: %w", path, err)
	}

	opts := webp.DefaultOptions()
	opts.Lossless = true

	var img image.Image = frame.RGBA
	if err := webp.Encode(f, img, opts); err != nil {
		f.Close()
		return fmt.Errorf("voxrt: present: encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
