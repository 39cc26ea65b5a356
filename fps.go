package voxrt

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// FPSOverlay draws the current FPS/TPS into the corner of a frame. It
// redraws its backing image only every half second rather than every
// frame, since ebiten.ActualFPS/ActualTPS themselves only settle on that
// cadence.
type FPSOverlay struct {
	img        *ebiten.Image
	lastUpdate float64
	op         ebiten.DrawImageOptions
}

// NewFPSOverlay returns an overlay ready to draw.
func NewFPSOverlay() *FPSOverlay {
	return &FPSOverlay{img: ebiten.NewImage(100, 32)}
}

// Update refreshes the overlay's text at most once every 0.5 seconds.
func (f *FPSOverlay) Update(dt float64) {
	f.lastUpdate += dt
	if f.lastUpdate < 0.5 {
		return
	}
	f.lastUpdate = 0

	f.img.Clear()
	f.img.Fill(color.RGBA{0, 0, 0, 128})
	fps := ebiten.ActualFPS()
	tps := ebiten.ActualTPS()
	ebitenutil.DebugPrint(f.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", fps, tps))
}

// Draw blits the overlay onto dst at the top-left corner.
func (f *FPSOverlay) Draw(dst *ebiten.Image) {
	f.op.GeoM.Reset()
	dst.DrawImage(f.img, &f.op)
}

// Release frees the overlay's backing image.
func (f *FPSOverlay) Release() {
	if f.img != nil {
		f.img.Deallocate()
		f.img = nil
	}
}
