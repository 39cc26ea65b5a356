package geom

import "math"

// IntersectKind classifies the outcome of a ray/cube slab test.
type IntersectKind uint8

const (
	// Miss means the ray never crosses the cube (tmax < 0 or tmin > tmax).
	Miss IntersectKind = iota
	// EnterFromOutside means the ray origin is outside the cube and Tmin is
	// the entry (impact) distance.
	EnterFromOutside
	// OriginInside means the ray origin already lies inside the cube; Tmin
	// is negative and there is no entry impact distance, only an exit.
	OriginInside
)

// Intersection is the result of a slab test: a classification plus the
// entry (Tmin) and exit (Tmax) distances along the ray.
type Intersection struct {
	Kind IntersectKind
	Tmin float32
	Tmax float32
}

// Hit reports whether the ray crosses the cube at all.
func (i Intersection) Hit() bool { return i.Kind != Miss }

// ImpactDistance returns the distance at which the ray enters the cube.
// Per the tie-break policy, a ray whose origin is inside the cube
// is treated as impacting at distance zero rather than a negative Tmin.
func (i Intersection) ImpactDistance() float32 {
	if i.Tmin < 0 {
		return 0
	}
	return i.Tmin
}

// Intersect performs the slab method: for each axis, compute the entry/exit
// parameters against the two parallel planes, take the max of the mins
// (Tmin) and the min of the maxes (Tmax). Ray.Dir must already be sanitized
// (see NewRay) so the divisions below are always finite.
func Intersect(c Cube, r Ray) Intersection {
	tmin := float32(-math.MaxFloat32)
	tmax := float32(math.MaxFloat32)

	for axis := 0; axis < 3; axis++ {
		invDir := 1 / r.Dir[axis]
		t0 := (c.Origin[axis] - r.Origin[axis]) * invDir
		t1 := (c.Origin[axis] + c.Size - r.Origin[axis]) * invDir
		if invDir < 0 {
			t0, t1 = t1, t0
		}
		if t0 > tmin {
			tmin = t0
		}
		if t1 < tmax {
			tmax = t1
		}
	}

	if tmax < 0 || tmin > tmax {
		return Intersection{Kind: Miss, Tmin: tmin, Tmax: tmax}
	}
	if tmin < 0 {
		return Intersection{Kind: OriginInside, Tmin: tmin, Tmax: tmax}
	}
	return Intersection{Kind: EnterFromOutside, Tmin: tmin, Tmax: tmax}
}
