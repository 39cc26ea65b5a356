// Package occupancy implements the 64-bit per-node occupancy bitmap and the
// two read-only lookup tables every ray shares: a per-sectant bit mask and
// a ray-direction-conditioned "which sectants can still be reached" mask,
// so the traversal can cull an entire subcube without enumerating its
// children.
package occupancy

import (
	"github.com/voxrt/voxrt/internal/geom"
	"github.com/voxrt/voxrt/internal/sectant"
)

// Mask is a 64-bit occupancy bitmap stored as two 32-bit words (LSW, MSW),
// matching the node table's on-wire layout.
type Mask [2]uint32

// Test reports whether bit s (sectant s) is set.
func (m Mask) Test(s int) bool {
	word, bit := s/32, uint(s%32)
	return m[word]&(1<<bit) != 0
}

// Set sets bit s.
func (m *Mask) Set(s int) {
	word, bit := s/32, uint(s%32)
	m[word] |= 1 << bit
}

// And returns the bitwise AND of m and other.
func (m Mask) And(other Mask) Mask {
	return Mask{m[0] & other[0], m[1] & other[1]}
}

// IsZero reports whether both words are zero.
func (m Mask) IsZero() bool {
	return m[0] == 0 && m[1] == 0
}

// perSectantMask[s] isolates the single bit for sectant s. Precomputed so
// the kernel never has to compute `1 << (s%32)` inline.
var perSectantMask [sectant.Count]Mask

func init() {
	for s := 0; s < sectant.Count; s++ {
		perSectantMask[s].Set(s)
	}
}

// SectantMask returns the precomputed single-bit mask for sectant s.
func SectantMask(s int) Mask {
	return perSectantMask[s]
}

// DirectionOctant classifies a ray direction into one of 8 sign-octants,
// the same way position-to-sectant classification works but restricted to
// a unit cube centred at the origin, where only the two extreme quarters
// per axis are ever reached since NewRay forbids an exactly-zero
// component. Bit 0/1/2 is 1 when the X/Y/Z component is
// positive.
func DirectionOctant(dir geom.Vec3) int {
	o := 0
	if dir[0] > 0 {
		o |= 1
	}
	if dir[1] > 0 {
		o |= 2
	}
	if dir[2] > 0 {
		o |= 4
	}
	return o
}

// rayToSectantMask[entry][octant] is the set of sectants a ray entering a
// node at sectant `entry` with direction octant `octant` could still reach:
// every sectant whose quarter-index is on the far side of (or equal to)
// entry's on every axis the ray advances along. AND-ing this with a node's
// occupancy word yields the reachable occupied children without
// enumerating all 64.
var rayToSectantMask [sectant.Count][8]Mask

func init() {
	for entry := 0; entry < sectant.Count; entry++ {
		ex, ey, ez := sectant.Unpack(entry)
		for octant := 0; octant < 8; octant++ {
			var m Mask
			for s := 0; s < sectant.Count; s++ {
				sx, sy, sz := sectant.Unpack(s)
				if reachable(sx, ex, octant, 1) &&
					reachable(sy, ey, octant, 2) &&
					reachable(sz, ez, octant, 4) {
					m.Set(s)
				}
			}
			rayToSectantMask[entry][octant] = m
		}
	}
}

// reachable reports whether quarter-index q is on the side of the entry
// quarter-index `entry` that a ray advancing with the given octant bit set
// (positive direction on that axis) or clear (negative direction) could
// still reach.
func reachable(q, entry, octant, bit int) bool {
	if octant&bit != 0 {
		return q >= entry
	}
	return q <= entry
}

// ReachableMask returns the precomputed ray-to-sectant mask for a ray that
// entered the current node at sectant `entry` travelling in the given
// direction.
func ReachableMask(entry int, dir geom.Vec3) Mask {
	return rayToSectantMask[entry][DirectionOctant(dir)]
}
