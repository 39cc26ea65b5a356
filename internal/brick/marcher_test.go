package brick

import (
	"testing"

	"github.com/voxrt/voxrt/internal/geom"
	"github.com/voxrt/voxrt/internal/tree"
)

func TestMarchFindsSingleVoxel(t *testing.T) {
	// Scenario C: single non-empty voxel at cell (2,1,0), palette (0,1,0,1).
	store := tree.BrickStore{D: 4, Voxels: make([]uint16, 64)}
	for i := range store.Voxels {
		store.Voxels[i] = tree.EmptyPaletteIndex
	}
	store.Voxels[2+4*1+16*0] = 0
	palette := tree.Palette{{0, 1, 0, 1}}

	bounds := geom.Cube{Origin: geom.Vec3{0, 0, 0}, Size: 4}
	ray := geom.NewRay(geom.Vec3{2.5, 1.5, -1}, geom.Vec3{0, 0, 1})
	hit := geom.Intersect(bounds, ray)
	if !hit.Hit() {
		t.Fatal("expected ray to intersect brick bounds")
	}

	got, ok := March(ray, bounds, hit.ImpactDistance(), 0, store, palette)
	if !ok {
		t.Fatal("expected a hit")
	}
	if got.Cell != [3]int{2, 1, 0} {
		t.Fatalf("Cell = %v, want (2,1,0)", got.Cell)
	}
	if got.Palette != 0 {
		t.Fatalf("Palette = %d, want 0", got.Palette)
	}
	impact := ray.At(got.Distance)
	wantImpact := geom.Vec3{2.5, 1.5, 0}
	for i := 0; i < 3; i++ {
		if d := impact[i] - wantImpact[i]; d > geom.Tolerance || d < -geom.Tolerance {
			t.Fatalf("impact = %v, want %v", impact, wantImpact)
		}
	}
}

func TestMarchMissesEmptyBrick(t *testing.T) {
	store := tree.BrickStore{D: 4, Voxels: make([]uint16, 64)}
	for i := range store.Voxels {
		store.Voxels[i] = tree.EmptyPaletteIndex
	}
	palette := tree.Palette{{1, 0, 0, 1}}

	bounds := geom.Cube{Origin: geom.Vec3{0, 0, 0}, Size: 4}
	ray := geom.NewRay(geom.Vec3{-1, 2, 2}, geom.Vec3{1, 0, 0})
	hit := geom.Intersect(bounds, ray)

	_, ok := March(ray, bounds, hit.ImpactDistance(), 0, store, palette)
	if ok {
		t.Fatal("expected a miss against an all-empty brick")
	}
}
