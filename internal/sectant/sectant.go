// Package sectant implements the 4x4x4 sectant subdivision math: mapping a
// position inside a cube to one of 64 child indices, the offset table from
// sectant to child origin, and the precomputed direction-conditioned step
// table that lets the traversal avoid re-deriving a neighbour sectant on
// every DDA advance.
package sectant

import (
	"math"

	"github.com/voxrt/voxrt/internal/geom"
)

// OOB is the sentinel sectant value meaning "out of bounds / no target".
const OOB = 64

// Count is the number of real sectants per node (4x4x4).
const Count = 64

// Pack combines per-axis quarter indices (each already clamped to [0,3])
// into a single sectant index: x + 4*y + 16*z.
func Pack(x, y, z int) int {
	return x + 4*y + 16*z
}

// Unpack recovers the per-axis quarter indices from a sectant index.
func Unpack(s int) (x, y, z int) {
	x = s & 3
	y = (s >> 2) & 3
	z = (s >> 4) & 3
	return
}

// clamp03 clamps a quantised axis index into [0,3], absorbing floating
// point error at cube boundaries.
func clamp03(q int) int {
	if q < 0 {
		return 0
	}
	if q > 3 {
		return 3
	}
	return q
}

// FromPoint maps a position inside cube to its sectant index: each axis is
// quantised by floor(4*(p-origin)/size), clamped to [0,3], then packed. A
// point outside the cube (beyond Tolerance) returns OOB.
func FromPoint(c geom.Cube, p geom.Vec3) int {
	if !c.Contains(p) {
		return OOB
	}
	x := clamp03(int(math.Floor(float64(4 * (p[0] - c.Origin[0]) / c.Size))))
	y := clamp03(int(math.Floor(float64(4 * (p[1] - c.Origin[1]) / c.Size))))
	z := clamp03(int(math.Floor(float64(4 * (p[2] - c.Origin[2]) / c.Size))))
	return Pack(x, y, z)
}

// ChildBounds returns the sub-cube for sectant s within parent.
func ChildBounds(parent geom.Cube, s int) geom.Cube {
	x, y, z := Unpack(s)
	return parent.Child(x, y, z)
}
