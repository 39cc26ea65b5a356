package voxrt

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/voxrt/voxrt/internal/kernel"
	"github.com/voxrt/voxrt/internal/present"
	"github.com/voxrt/voxrt/internal/streamer"
	"github.com/voxrt/voxrt/internal/tree"
)

// Renderer implements ebiten.Game around the CPU reference kernel: each
// frame it advances the Camera, traces a full frame with
// kernel.RenderFrame, uploads the result through a present.Surface, and
// drains the tree's request mailbox through a streamer.Streamer so a real
// loader would know what to fetch next. Swapping the trace step for a
// internal/gpu.Pipeline dispatch is the only change needed to move this
// loop onto the compute path; everything else here is backend-agnostic.
type Renderer struct {
	Store  *tree.Store
	Config kernel.Config
	Camera *Camera

	Filters []present.Filter

	surface  present.Surface
	stream   *streamer.Streamer
	overlay  *FPSOverlay
	showFPS  bool
	dropLogN int
}

// NewRenderer returns a Renderer ready to drive an ebiten window.
func NewRenderer(store *tree.Store, cfg kernel.Config, cam *Camera) *Renderer {
	return &Renderer{
		Store:   store,
		Config:  cfg,
		Camera:  cam,
		stream:  streamer.New(),
		overlay: NewFPSOverlay(),
		showFPS: true,
	}
}

// Update advances the camera and drains any streaming requests the last
// traced frame queued. There is no real asset loader wired up in this
// tree; requests are logged once every 120 frames so a developer can see
// the mailbox is exercised without flooding stderr.
func (r *Renderer) Update() error {
	const dt = 1.0 / 60.0
	r.Camera.Update(dt)
	r.overlay.Update(dt)

	batch := r.stream.Drain(r.Store)
	r.dropLogN++
	if len(batch) > 0 && r.dropLogN >= 120 {
		r.dropLogN = 0
		log.Printf("voxrt: streamer: %d request(s) pending, %d new this frame", r.stream.Pending(), len(batch))
	}
	for _, req := range batch {
		r.stream.Resolve(req.Packed)
	}
	return nil
}

// Draw traces a frame at the surface's current size, applies any
// configured post-process filters, and blits the result to screen.
func (r *Renderer) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	w, h := b.Dx(), b.Dy()

	img := kernel.RenderFrame(r.Store, r.Config, r.Camera.Viewport, w, h)
	uploaded := r.surface.Upload(present.Frame{RGBA: img})

	current := uploaded
	if len(r.Filters) > 0 {
		scratch := ebiten.NewImage(w, h)
		for _, f := range r.Filters {
			f.Apply(current, scratch)
			current, scratch = scratch, current
		}
		defer scratch.Deallocate()
	}

	var op ebiten.DrawImageOptions
	screen.DrawImage(current, &op)

	if r.showFPS {
		r.overlay.Draw(screen)
	}
}

// Layout reports the window's logical size unchanged, matching the
// backing store's screen-space resolution 1:1.
func (r *Renderer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Release frees the renderer's backing images.
func (r *Renderer) Release() {
	r.surface.Release()
	r.overlay.Release()
}
