package tree

import (
	"fmt"

	"github.com/voxrt/voxrt/internal/mailbox"
)

// Metadata is the tree-level configuration every ray shares.
type Metadata struct {
	// RootSize is the root cube's edge length, a power of four so sizes
	// stay exactly representable under repeated /4.
	RootSize uint32
	// BrickD is the linear dimension D of every brick and MIP.
	BrickD int
	// MIPEnabled toggles the MIP substitution path.
	MIPEnabled bool
	// AmbientColor and AmbientPosition are carried with the tree metadata.
	// Neither the CPU kernel nor the GPU upload reads them; the background
	// colour comes from kernel.Config.BackgroundColor.
	AmbientColor    Color
	AmbientPosition [3]float32
}

// Store is the read-mostly tree the kernel traverses: the node table, the
// flat brick voxel store, the palette, and the two atomically-mutated
// buffers (usage bits, request mailbox). One Store backs both the CPU
// reference kernel and the GPU kernel's buffer uploads, so there is
// exactly one source of truth for the data layout.
type Store struct {
	Meta    Metadata
	Nodes   []Node
	Bricks  BrickStore
	Palette Palette

	Usage   *mailbox.UsageBits
	Mailbox *mailbox.Mailbox
}

// NewStore builds an empty Store with the given metadata, node capacity,
// and mailbox length. The caller populates Nodes and Bricks.Voxels
// afterward.
func NewStore(meta Metadata, nodeCapacity, mailboxLen int) (*Store, error) {
	if meta.RootSize == 0 || !isPowerOfFour(meta.RootSize) {
		return nil, fmt.Errorf("voxrt: tree.NewStore: root size %d is not a power of four", meta.RootSize)
	}
	if meta.BrickD <= 0 {
		return nil, fmt.Errorf("voxrt: tree.NewStore: brick dimension %d must be positive", meta.BrickD)
	}
	s := &Store{
		Meta:    meta,
		Nodes:   make([]Node, nodeCapacity),
		Bricks:  BrickStore{D: meta.BrickD},
		Usage:   mailbox.NewUsageBits(nodeCapacity * 2), // one bit for the node, one for its brick/MIP
		Mailbox: mailbox.NewMailbox(mailboxLen),
	}
	for i := range s.Nodes {
		s.Nodes[i].MIP = EmptyDescriptor
		for c := range s.Nodes[i].Children {
			s.Nodes[i].Children[c] = EmptyIndex
		}
	}
	return s, nil
}

func isPowerOfFour(n uint32) bool {
	if n == 0 || n&(n-1) != 0 {
		return false // not even a power of two
	}
	// A power of two is a power of four iff its single set bit sits at an
	// even index.
	for n > 1 {
		n >>= 2
	}
	return n == 1
}

// Validate checks the structural invariants that can be verified
// statically: invariant 1 (root resident, i.e. the node table is not
// empty) and invariant 5 (brick-store indices never overlap, approximated
// here as "every parted descriptor's brick index lies within the backing
// array", since overlap itself is a build-time allocation discipline the
// host streamer owns). Only leaf descriptors are checked: Children[0] of a
// uniform leaf, all 64 of any other leaf. It does not check that a uniform
// leaf's other descriptors are empty.
func (s *Store) Validate() error {
	if len(s.Nodes) == 0 {
		return fmt.Errorf("voxrt: tree.Store: empty node table, root (index 0) must always be resident")
	}
	cells := s.Bricks.D * s.Bricks.D * s.Bricks.D
	for i := range s.Nodes {
		n := &s.Nodes[i]
		if !n.IsLeaf() {
			continue
		}
		count := 1
		if !n.IsUniform() {
			count = 64
		}
		for c := 0; c < count; c++ {
			d := BrickDescriptor(n.Children[c])
			if d.Absent() || d.IsSolid() {
				continue
			}
			end := (int(d.BrickIndex()) + 1) * cells
			if end > len(s.Bricks.Voxels) {
				return fmt.Errorf("voxrt: tree.Store: node %d sectant %d brick index %d exceeds voxel array (len %d)",
					i, c, d.BrickIndex(), len(s.Bricks.Voxels))
			}
		}
	}
	return nil
}
