// Command voxrt-demo opens a window and ray-traces a small hand-built
// voxel tree with the CPU reference kernel. There is no asset loader here:
// the tree is built once in memory and never streamed, so the mailbox the
// Renderer drains every frame stays empty for this scene.
package main

import (
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/voxrt/voxrt"
	"github.com/voxrt/voxrt/internal/geom"
	"github.com/voxrt/voxrt/internal/kernel"
	"github.com/voxrt/voxrt/internal/present"
	"github.com/voxrt/voxrt/internal/tree"
)

func main() {
	store := buildScene()
	cfg := kernel.DefaultConfig()
	cam := voxrt.NewCamera(geom.Vec3{-6, 5, -6}, geom.Vec3{0, 0, 0}, float32(math.Pi)/3)
	cam.Viewport.Frustum = geom.Vec3{1, 1, 1}

	r := voxrt.NewRenderer(store, cfg, cam)
	r.Filters = append(r.Filters, present.NewVoxelAlbedoGrade())

	ebiten.SetWindowTitle("voxrt-demo")
	ebiten.SetWindowSize(960, 540)
	if err := ebiten.RunGame(r); err != nil {
		log.Fatal(err)
	}
}

// buildScene constructs a single leaf root node carrying one solid brick
// (sectant 0) and one parted brick with a small painted voxel block
// (sectant 9), leaving every other sectant empty. Enough to exercise
// solid-brick, parted-brick, and empty-sectant paths through the traversal
// kernel in one frame.
func buildScene() *tree.Store {
	const brickD = 4
	meta := tree.Metadata{
		RootSize:   64,
		BrickD:     brickD,
		MIPEnabled: false,
	}

	store, err := tree.NewStore(meta, 4, 256)
	if err != nil {
		log.Fatalf("voxrt-demo: build scene: %v", err)
	}

	palette := tree.Palette{
		{R: 0, G: 0, B: 0, A: 0},
		{R: 0.85, G: 0.2, B: 0.25, A: 1},
		{R: 0.2, G: 0.6, B: 0.85, A: 1},
	}
	store.Palette = palette

	voxels := make([]uint16, brickD*brickD*brickD)
	for i := range voxels {
		voxels[i] = 2
	}
	store.Bricks = tree.BrickStore{Voxels: voxels, D: brickD}

	var root tree.Node
	root.SetLeaf(true)
	for i := range root.Children {
		root.Children[i] = uint32(tree.EmptyDescriptor)
	}
	root.Children[0] = uint32(tree.SolidDescriptor(1))
	root.Occupancy.Set(0)

	root.Children[9] = uint32(tree.PartedDescriptor(0))
	root.Occupancy.Set(9)

	store.Nodes[0] = root
	return store
}
