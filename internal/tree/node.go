package tree

import "github.com/voxrt/voxrt/internal/occupancy"

// Metadata bit layout for Node.Meta:
//
//	bit 0      is-leaf
//	bit 1      is-uniform (single value covers the whole node)
//	bit 2      has-MIP
//	bit 3      MIP-is-parted
//	bits 8-15  partedGroupHint: one bit per group of 8 contiguous sectants
//	           (group g covers sectants [8g, 8g+8)), set when any brick in
//	           that group is parted. This is a coarse, non-authoritative
//	           pre-filter: each child BrickDescriptor's own high bit always
//	           remains the ground truth; the hint only lets the kernel skip a descriptor
//	           fetch when an entire group is known-solid.
const (
	metaIsLeaf uint32 = 1 << iota
	metaIsUniform
	metaHasMIP
	metaMIPIsParted
)

const partedGroupHintShift = 8

// EmptyIndex is the sentinel for "no such node" in a child/parent
// reference.
const EmptyIndex uint32 = 0xFFFFFFFF

// Node is one entry in the sparse tree's node table.
type Node struct {
	Meta      uint32
	Occupancy occupancy.Mask
	// Children holds, for an internal node, the index of a child node (or
	// EmptyIndex if absent); for a leaf, a BrickDescriptor per sectant.
	Children [64]uint32
	// MIP is this node's own precomputed D^3 downsample representative,
	// or EmptyDescriptor if none has been uploaded yet.
	MIP BrickDescriptor
}

// IsLeaf reports whether this node has no node children, its 64
// descriptors are brick descriptors.
func (n Node) IsLeaf() bool { return n.Meta&metaIsLeaf != 0 }

// IsUniform reports whether the whole cube is covered by one value: only
// Children[0] is meaningful.
func (n Node) IsUniform() bool { return n.Meta&metaIsUniform != 0 }

// HasMIP reports whether n.MIP has been uploaded by the streamer.
func (n Node) HasMIP() bool { return n.Meta&metaHasMIP != 0 }

// MIPIsParted reports whether the MIP brick is parted rather than solid.
func (n Node) MIPIsParted() bool { return n.Meta&metaMIPIsParted != 0 }

// PartedGroupHint reports the coarse "any parted brick in this group"
// flag for the group of 8 sectants containing s.
func (n Node) PartedGroupHint(s int) bool {
	group := s / 8
	return n.Meta&(1<<(partedGroupHintShift+uint(group))) != 0
}

// ChildNode returns the child node index at sectant s. Only meaningful
// when !IsLeaf(). Returns EmptyIndex if the child is absent.
func (n Node) ChildNode(s int) uint32 {
	return n.Children[s]
}

// ChildBrick returns the brick descriptor at sectant s. Only meaningful
// when IsLeaf(). For a uniform leaf, s is ignored and Children[0] is
// returned.
func (n Node) ChildBrick(s int) BrickDescriptor {
	if n.IsUniform() {
		return BrickDescriptor(n.Children[0])
	}
	return BrickDescriptor(n.Children[s])
}

// SetLeaf marks the node as a leaf (or internal, if leaf is false).
func (n *Node) SetLeaf(leaf bool) {
	n.setFlag(metaIsLeaf, leaf)
}

// SetUniform marks the node as uniform (single value for the whole cube).
func (n *Node) SetUniform(uniform bool) {
	n.setFlag(metaIsUniform, uniform)
}

// SetMIP installs a MIP brick descriptor and marks has-MIP / MIP-is-parted
// accordingly.
func (n *Node) SetMIP(d BrickDescriptor) {
	n.MIP = d
	n.setFlag(metaHasMIP, true)
	n.setFlag(metaMIPIsParted, !d.IsSolid())
}

// ClearMIP removes the MIP (host streamer evicted it).
func (n *Node) ClearMIP() {
	n.MIP = EmptyDescriptor
	n.setFlag(metaHasMIP, false)
	n.setFlag(metaMIPIsParted, false)
}

// RecomputePartedGroupHints scans Children (leaf nodes only) and rebuilds
// the 8 group hint bits from the real per-brick solid/parted bits. Called
// by the host whenever a leaf's children change; never by the kernel.
func (n *Node) RecomputePartedGroupHints() {
	n.Meta &^= 0xFF << partedGroupHintShift
	if !n.IsLeaf() {
		return
	}
	for group := 0; group < 8; group++ {
		anyParted := false
		for i := 0; i < 8; i++ {
			s := group*8 + i
			d := n.ChildBrick(s)
			if !d.Absent() && !d.IsSolid() {
				anyParted = true
				break
			}
		}
		if anyParted {
			n.Meta |= 1 << (partedGroupHintShift + uint(group))
		}
	}
}

func (n *Node) setFlag(bit uint32, on bool) {
	if on {
		n.Meta |= bit
	} else {
		n.Meta &^= bit
	}
}
