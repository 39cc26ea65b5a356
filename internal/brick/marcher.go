// Package brick implements the DDA voxel marcher that steps a ray through a
// single D^3 brick once the traversal has decided the ray enters it.
package brick

import (
	"math"

	"github.com/voxrt/voxrt/internal/geom"
	"github.com/voxrt/voxrt/internal/tree"
)

// Hit is the result of a successful brick march: the voxel's local cell
// coordinates, its palette index, and the distance along the ray at which
// the voxel's entry face was crossed.
type Hit struct {
	Cell     [3]int
	Palette  uint16
	Distance float32
}

// March steps a ray through the brick at brickIndex in store, starting at
// entryDistance (the distance at which the ray crossed into bounds). It
// returns the first non-empty voxel the ray crosses, or ok=false on a miss.
//
// Termination is guaranteed: every iteration advances at least one axis by
// one cell, and the loop exits on either a hit or an out-of-range index, so
// it runs at most 3*D iterations.
func March(ray geom.Ray, bounds geom.Cube, entryDistance float32, brickIndex uint16, store tree.BrickStore, palette tree.Palette) (Hit, bool) {
	d := store.D
	cellSize := bounds.Size / float32(d)
	factors := geom.Factors(ray.Dir)

	point := ray.At(entryDistance)
	cx := clampCell(int((point[0]-bounds.Origin[0])/cellSize), d)
	cy := clampCell(int((point[1]-bounds.Origin[1])/cellSize), d)
	cz := clampCell(int((point[2]-bounds.Origin[2])/cellSize), d)

	cellOrigin := func(cx, cy, cz int) geom.Vec3 {
		return geom.Vec3{
			bounds.Origin[0] + float32(cx)*cellSize,
			bounds.Origin[1] + float32(cy)*cellSize,
			bounds.Origin[2] + float32(cz)*cellSize,
		}
	}

	maxSteps := 3 * d
	dist := entryDistance
	for i := 0; i < maxSteps+1; i++ {
		if cx < 0 || cx >= d || cy < 0 || cy >= d || cz < 0 || cz >= d {
			return Hit{}, false
		}
		idx := store.VoxelAt(brickIndex, cx, cy, cz)
		if !palette.IsEmpty(idx) {
			return Hit{Cell: [3]int{cx, cy, cz}, Palette: idx, Distance: dist}, true
		}

		cell := geom.Cube{Origin: cellOrigin(cx, cy, cz), Size: cellSize}
		next, step := geom.Advance(point, cell, ray.Dir, factors)
		if step.IsZero() {
			return Hit{}, false // degenerate: no progress possible, avoid a spin
		}
		dist += vecDistance(point, next)
		point = next
		cx += int(step[0])
		cy += int(step[1])
		cz += int(step[2])
	}
	return Hit{}, false
}

func clampCell(c, d int) int {
	if c < 0 {
		return 0
	}
	if c >= d {
		return d - 1
	}
	return c
}

func vecDistance(a, b geom.Vec3) float32 {
	dx, dy, dz := b[0]-a[0], b[1]-a[1], b[2]-a[2]
	return float32(math.Sqrt(float64(dx*dx + dy*dy + dz*dz)))
}
