// Package present turns a rendered frame into pixels on screen: an
// ebiten.Image upload of the kernel's output, a colour-matrix grading pass
// and debug-overlay Kage shader, and a screenshot writer. The lazy
// shader-compilation idiom and sanitized-filename capture path are the
// same ones a 2D sprite engine uses for its own filter chain and
// screenshot code, just retargeted at a full-frame voxel render.
package present

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Frame wraps the image.RGBA the kernel rendered so it can be uploaded to
// the GPU for display and, if requested, screenshotted.
type Frame struct {
	*image.RGBA
}

// Surface is a reusable upload target: calling Upload repeatedly reuses
// the same ebiten.Image when the size hasn't changed, rather than
// allocating a fresh one every frame.
type Surface struct {
	img *ebiten.Image
	w, h int
}

// Upload copies frame into the surface's backing ebiten.Image, resizing it
// first if frame's dimensions changed since the last call.
func (s *Surface) Upload(frame Frame) *ebiten.Image {
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	if s.img == nil || s.w != w || s.h != h {
		if s.img != nil {
			s.img.Deallocate()
		}
		s.img = ebiten.NewImage(w, h)
		s.w, s.h = w, h
	}
	s.img.WritePixels(frame.Pix)
	return s.img
}

// Release frees the surface's backing image.
func (s *Surface) Release() {
	if s.img != nil {
		s.img.Deallocate()
		s.img = nil
	}
}
