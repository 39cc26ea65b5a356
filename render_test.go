package voxrt

import (
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/voxrt/voxrt/internal/geom"
	"github.com/voxrt/voxrt/internal/kernel"
	"github.com/voxrt/voxrt/internal/tree"
)

func newTestStore(t *testing.T) *tree.Store {
	t.Helper()
	store, err := tree.NewStore(tree.Metadata{RootSize: 64, BrickD: 2}, 1, 8)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	store.Palette = tree.Palette{{R: 0, G: 0, B: 0, A: 0}, {R: 1, G: 1, B: 1, A: 1}}
	var root tree.Node
	root.SetLeaf(true)
	root.SetUniform(true)
	root.Children[0] = uint32(tree.SolidDescriptor(1))
	root.Occupancy.Set(0)
	store.Nodes[0] = root
	return store
}

func TestRendererDrawProducesNonEmptyImage(t *testing.T) {
	store := newTestStore(t)
	cam := NewCamera(geom.Vec3{-4, 4, -4}, geom.Vec3{0, 0, 0}, math.Pi/3)
	r := NewRenderer(store, kernel.DefaultConfig(), cam)

	screen := ebiten.NewImage(16, 16)
	defer screen.Deallocate()
	r.Draw(screen)

	pixels := make([]byte, 16*16*4)
	screen.ReadPixels(pixels)
	nonZero := false
	for _, b := range pixels {
		if b != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Error("Draw left screen entirely black/transparent")
	}
}

func TestRendererUpdateAdvancesCameraAndOverlay(t *testing.T) {
	store := newTestStore(t)
	target := geom.Vec3{1, 2, 3}
	cam := NewCamera(geom.Vec3{0, 0, 0}, geom.Vec3{0, 0, 1}, math.Pi/3)
	cam.Follow(&target, geom.Vec3{}, 1.0)
	r := NewRenderer(store, kernel.DefaultConfig(), cam)

	if err := r.Update(); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if cam.Viewport.Origin[i] != target[i] {
			t.Errorf("Origin[%d] = %f, want %f after Follow snap", i, cam.Viewport.Origin[i], target[i])
		}
	}
}

func TestRendererLayoutPassesThrough(t *testing.T) {
	store := newTestStore(t)
	cam := NewCamera(geom.Vec3{0, 0, -1}, geom.Vec3{0, 0, 0}, math.Pi/3)
	r := NewRenderer(store, kernel.DefaultConfig(), cam)

	w, h := r.Layout(320, 240)
	if w != 320 || h != 240 {
		t.Errorf("Layout = (%d, %d), want (320, 240)", w, h)
	}
}
