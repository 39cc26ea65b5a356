package tree

import "testing"

func TestPaletteIsEmptySentinel(t *testing.T) {
	p := Palette{{1, 0, 0, 1}}
	if !p.IsEmpty(EmptyPaletteIndex) {
		t.Fatal("sentinel index should be empty")
	}
	if p.IsEmpty(0) {
		t.Fatal("opaque red should not be empty")
	}
}

func TestPaletteIsEmptyZeroChannels(t *testing.T) {
	p := Palette{{0, 0, 0, 0}, {1, 1, 1, 1}}
	if !p.IsEmpty(0) {
		t.Fatal("all-zero entry should be empty")
	}
	if p.IsEmpty(1) {
		t.Fatal("opaque white should not be empty")
	}
}

func TestBrickDescriptorRoundTrip(t *testing.T) {
	solid := SolidDescriptor(42)
	if !solid.IsSolid() || solid.PaletteIndex() != 42 {
		t.Fatalf("solid descriptor = %x, want solid/42", uint32(solid))
	}
	parted := PartedDescriptor(7)
	if parted.IsSolid() || parted.BrickIndex() != 7 {
		t.Fatalf("parted descriptor = %x, want parted/7", uint32(parted))
	}
}

func TestBrickStoreVoxelAtLayout(t *testing.T) {
	bs := BrickStore{D: 4, Voxels: make([]uint16, 64)}
	bs.Voxels[1*4*4*4+2+4*1+16*0] = 9
	if got := bs.VoxelAt(1, 2, 1, 0); got != 9 {
		t.Fatalf("VoxelAt = %d, want 9", got)
	}
}

func TestBrickStoreOutOfRangeIsMiss(t *testing.T) {
	bs := BrickStore{D: 4, Voxels: make([]uint16, 4)}
	if got := bs.VoxelAt(50, 0, 0, 0); got != EmptyPaletteIndex {
		t.Fatalf("VoxelAt out of range = %d, want sentinel", got)
	}
}

func TestNodeMetadataFlags(t *testing.T) {
	var n Node
	n.SetLeaf(true)
	n.SetUniform(true)
	if !n.IsLeaf() || !n.IsUniform() {
		t.Fatal("expected leaf+uniform set")
	}
	n.SetMIP(SolidDescriptor(3))
	if !n.HasMIP() || n.MIPIsParted() {
		t.Fatal("expected has-MIP set, MIP-is-parted clear for a solid MIP")
	}
	n.ClearMIP()
	if n.HasMIP() {
		t.Fatal("expected has-MIP cleared")
	}
}

func TestRecomputePartedGroupHints(t *testing.T) {
	var n Node
	n.SetLeaf(true)
	n.Children[3] = uint32(PartedDescriptor(0))
	n.RecomputePartedGroupHints()
	if !n.PartedGroupHint(3) {
		t.Fatal("expected group containing sectant 3 to be hinted parted")
	}
	if n.PartedGroupHint(10) {
		t.Fatal("group containing sectant 10 should not be hinted parted")
	}
}

func TestNewStoreRejectsNonPowerOfFourRoot(t *testing.T) {
	_, err := NewStore(Metadata{RootSize: 8, BrickD: 4}, 1, 4)
	if err == nil {
		t.Fatal("expected error for root size 8 (power of two but not four)")
	}
}

func TestNewStoreAcceptsPowerOfFourRoot(t *testing.T) {
	s, err := NewStore(Metadata{RootSize: 4, BrickD: 4}, 1, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Nodes[0].MIP != EmptyDescriptor {
		t.Fatal("expected fresh node's MIP to default to EmptyDescriptor")
	}
}

func TestValidateCatchesOutOfRangeBrickIndex(t *testing.T) {
	s, err := NewStore(Metadata{RootSize: 4, BrickD: 4}, 1, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Nodes[0].SetLeaf(true)
	s.Nodes[0].SetUniform(true)
	s.Nodes[0].Children[0] = uint32(PartedDescriptor(5))
	if err := s.Validate(); err == nil {
		t.Fatal("expected Validate to reject an out-of-range brick index")
	}
}
