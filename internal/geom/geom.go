// Package geom implements the spatial primitives the traversal kernel runs
// on: axis-aligned cubes, rays, the slab intersection test, DDA stepping,
// and impact-normal recovery. Everything here is pure, allocation-free math
// safe to inline into either the CPU reference kernel or a GPU shader.
package geom

import "github.com/go-gl/mathgl/mgl32"

// Vec3 is a 3-component float vector. Using mgl32 keeps the traversal math
// identical in shape to the buffer layout the GPU kernel uploads.
type Vec3 = mgl32.Vec3

// Tolerance is the fixed absolute tolerance used for every axis comparison
// in the traversal.
const Tolerance float32 = 1e-5

// DirEpsilon replaces an exactly-zero ray direction component so DDA stays
// finite. It must be small relative to the smallest voxel the tree can
// represent, and strictly positive.
const DirEpsilon float32 = 1e-6

// Cube is an axis-aligned cube: an origin corner and a positive edge length.
type Cube struct {
	Origin Vec3
	Size   float32
}

// Contains reports whether p lies within the cube, inclusive of the faces
// within Tolerance.
func (c Cube) Contains(p Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < c.Origin[i]-Tolerance || p[i] > c.Origin[i]+c.Size+Tolerance {
			return false
		}
	}
	return true
}

// Center returns the cube's center point.
func (c Cube) Center() Vec3 {
	half := c.Size / 2
	return Vec3{c.Origin[0] + half, c.Origin[1] + half, c.Origin[2] + half}
}

// Child returns the sub-cube of the receiver for the given sectant, where
// each axis is split into four equal parts (a 4x4x4 subdivision). sx, sy, sz
// must each be in [0,3].
func (c Cube) Child(sx, sy, sz int) Cube {
	quarter := c.Size / 4
	return Cube{
		Origin: Vec3{
			c.Origin[0] + float32(sx)*quarter,
			c.Origin[1] + float32(sy)*quarter,
			c.Origin[2] + float32(sz)*quarter,
		},
		Size: quarter,
	}
}

// Expand returns the cube that contains the receiver as one of its 64
// sectants, given the sectant coordinates the receiver occupies within it.
// This is the inverse of Child, used when the traversal pops from a child
// back to its parent's bounds.
func (c Cube) Expand(sx, sy, sz int) Cube {
	return Cube{
		Origin: Vec3{
			c.Origin[0] - float32(sx)*c.Size,
			c.Origin[1] - float32(sy)*c.Size,
			c.Origin[2] - float32(sz)*c.Size,
		},
		Size: c.Size * 4,
	}
}

// Ray is a world-space ray: an origin point and a direction. Direction
// components are sanitized at construction (see NewRay) so downstream DDA
// math never divides by zero.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// NewRay builds a Ray from origin and direction, replacing any exactly-zero
// direction component with DirEpsilon so slab/DDA divisions stay finite.
func NewRay(origin, dir Vec3) Ray {
	for i := 0; i < 3; i++ {
		if dir[i] == 0 {
			dir[i] = DirEpsilon
		}
	}
	return Ray{Origin: origin, Dir: dir}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) Vec3 {
	return Vec3{
		r.Origin[0] + r.Dir[0]*t,
		r.Origin[1] + r.Dir[1]*t,
		r.Origin[2] + r.Dir[2]*t,
	}
}
