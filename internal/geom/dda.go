package geom

import "math"

// Step is a lattice step: the signed unit move to apply per axis after a
// DDA advance. Components are -1, 0, or +1.
type Step [3]int8

// IsZero reports whether the step moves along no axis at all.
func (s Step) IsZero() bool { return s[0] == 0 && s[1] == 0 && s[2] == 0 }

// Factors computes the three DDA scale factors for a ray direction: the
// Euclidean distance travelled along the ray per unit advance along each
// axis, `sqrt(1 + (other_a/this)^2 + (other_b/this)^2)`. Computed
// once per ray and reused for every advance.
func Factors(dir Vec3) Vec3 {
	var f Vec3
	for axis := 0; axis < 3; axis++ {
		a, b := dir[other(axis, 0)], dir[other(axis, 1)]
		ra := a / dir[axis]
		rb := b / dir[axis]
		f[axis] = float32(math.Sqrt(float64(1 + ra*ra + rb*rb)))
	}
	return f
}

// other returns the axis index (0..2) of the n-th axis other than axis,
// where n is 0 or 1 to select the first or second remaining axis.
func other(axis, n int) int {
	idx := 0
	for a := 0; a < 3; a++ {
		if a == axis {
			continue
		}
		if idx == n {
			return a
		}
		idx++
	}
	panic("unreachable")
}

// Advance performs one DDA step: given the current ray point and the bounds
// of the current lattice cell, it computes for each axis the distance to
// the next face the ray will cross (scaled by factors), advances the point
// by direction times the minimum of those distances, and returns the
// lattice step to apply, sign(direction) on every axis whose distance
// equalled the minimum (within Tolerance), zero elsewhere.
func Advance(point Vec3, bounds Cube, dir, factors Vec3) (Vec3, Step) {
	var axisDist Vec3
	for axis := 0; axis < 3; axis++ {
		var face float32
		if dir[axis] > 0 {
			face = bounds.Origin[axis] + bounds.Size
		} else {
			face = bounds.Origin[axis]
		}
		axisDist[axis] = absf(face-point[axis]) * factors[axis]
	}

	min := axisDist[0]
	if axisDist[1] < min {
		min = axisDist[1]
	}
	if axisDist[2] < min {
		min = axisDist[2]
	}

	next := Vec3{
		point[0] + dir[0]*min,
		point[1] + dir[1]*min,
		point[2] + dir[2]*min,
	}

	var step Step
	for axis := 0; axis < 3; axis++ {
		if axisDist[axis]-min <= Tolerance {
			if dir[axis] > 0 {
				step[axis] = 1
			} else {
				step[axis] = -1
			}
		}
	}
	return next, step
}
