package kernel

import (
	"testing"

	"github.com/voxrt/voxrt/internal/geom"
	"github.com/voxrt/voxrt/internal/mailbox"
	"github.com/voxrt/voxrt/internal/occupancy"
	"github.com/voxrt/voxrt/internal/sectant"
	"github.com/voxrt/voxrt/internal/tree"
)

func newStore(t *testing.T, rootSize uint32, brickD int, nodeCapacity, mailboxLen int) *tree.Store {
	t.Helper()
	s, err := tree.NewStore(tree.Metadata{RootSize: rootSize, BrickD: brickD}, nodeCapacity, mailboxLen)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func setAllOccupied(n *tree.Node) {
	for s := 0; s < sectant.Count; s++ {
		n.Occupancy.Set(s)
	}
}

func approxVec(t *testing.T, label string, got, want geom.Vec3) {
	t.Helper()
	for i := 0; i < 3; i++ {
		if d := got[i] - want[i]; d > 1e-3 || d < -1e-3 {
			t.Fatalf("%s = %v, want %v", label, got, want)
		}
	}
}

// Scenario A, single solid brick at root.
func TestTraceScenarioA_UniformRoot(t *testing.T) {
	store := newStore(t, 4, 4, 1, 4)
	store.Palette = tree.Palette{{0, 0, 0, 0}, {1, 0, 0, 1}}
	root := &store.Nodes[0]
	root.SetLeaf(true)
	root.SetUniform(true)
	setAllOccupied(root)
	root.Children[0] = uint32(tree.SolidDescriptor(1))

	ray := geom.NewRay(geom.Vec3{-1, 2, 2}, geom.Vec3{1, 0, 0})
	res := Trace(store, DefaultConfig(), ray)

	if !res.Hit {
		t.Fatal("expected a hit")
	}
	if res.Albedo != (tree.Color{1, 0, 0, 1}) {
		t.Fatalf("albedo = %v, want (1,0,0,1)", res.Albedo)
	}
	approxVec(t, "impact", res.Impact, geom.Vec3{0, 2, 2})
	approxVec(t, "normal", res.Normal, geom.Vec3{-1, 0, 0})
}

// Scenario B, miss.
func TestTraceScenarioB_Miss(t *testing.T) {
	store := newStore(t, 4, 4, 1, 4)
	store.Palette = tree.Palette{{0, 0, 0, 0}, {1, 0, 0, 1}}
	root := &store.Nodes[0]
	root.SetLeaf(true)
	root.SetUniform(true)
	setAllOccupied(root)
	root.Children[0] = uint32(tree.SolidDescriptor(1))

	ray := geom.NewRay(geom.Vec3{-1, -1, 2}, geom.Vec3{1, 0, 0})
	res := Trace(store, DefaultConfig(), ray)
	if res.Hit {
		t.Fatalf("expected a miss, got %+v", res)
	}
}

// Scenario C, parted brick, single voxel. The brick spans the whole root
// node (a uniform leaf whose one descriptor is parted rather than solid),
// so the marcher sees the same cellSize=1 brick as internal/brick's own
// marcher test.
func TestTraceScenarioC_PartedSingleVoxel(t *testing.T) {
	store := newStore(t, 4, 4, 1, 4)
	store.Palette = tree.Palette{{0, 1, 0, 1}}
	store.Bricks.Voxels = make([]uint16, 64)
	for i := range store.Bricks.Voxels {
		store.Bricks.Voxels[i] = tree.EmptyPaletteIndex
	}
	store.Bricks.Voxels[2+4*1+16*0] = 0 // cell (2,1,0) -> palette index 0

	root := &store.Nodes[0]
	root.SetLeaf(true)
	root.SetUniform(true)
	setAllOccupied(root)
	root.Children[0] = uint32(tree.PartedDescriptor(0))

	ray := geom.NewRay(geom.Vec3{2.5, 1.5, -1}, geom.Vec3{0, 0, 1})
	res := Trace(store, DefaultConfig(), ray)

	if !res.Hit {
		t.Fatal("expected a hit")
	}
	if res.Albedo != (tree.Color{0, 1, 0, 1}) {
		t.Fatalf("albedo = %v, want (0,1,0,1)", res.Albedo)
	}
	approxVec(t, "impact", res.Impact, geom.Vec3{2.5, 1.5, 0})
	approxVec(t, "normal", res.Normal, geom.Vec3{0, 0, -1})
}

// Scenario D, internal node, only sectant 21 present. The ray travels the
// exact main diagonal so it targets sectant 0 first and, after a single
// tied three-axis DDA advance, steps straight to sectant 21, exercising
// push/backtrack across two node levels and the ReachableMask cull.
func TestTraceScenarioD_InternalNodeSteppedSectant(t *testing.T) {
	store := newStore(t, 4, 4, 2, 4)
	store.Palette = tree.Palette{{0, 0, 1, 1}}

	root := &store.Nodes[0]
	root.Occupancy.Set(21)
	root.Children[21] = 1

	child := &store.Nodes[1]
	child.SetLeaf(true)
	child.SetUniform(true)
	setAllOccupied(child)
	child.Children[0] = uint32(tree.SolidDescriptor(0))

	ray := geom.NewRay(geom.Vec3{-1, -1, -1}, geom.Vec3{1, 1, 1}.Normalize())
	res := Trace(store, DefaultConfig(), ray)

	if !res.Hit {
		t.Fatal("expected a hit")
	}
	if res.Albedo != (tree.Color{0, 0, 1, 1}) {
		t.Fatalf("albedo = %v, want (0,0,1,1)", res.Albedo)
	}
	approxVec(t, "impact", res.Impact, geom.Vec3{1, 1, 1})
	// All three axes tie at the entry corner; the normal is the normalised
	// sum of the three outward axes rather than a single dominant face.
	want := geom.Vec3{-1, -1, -1}.Normalize()
	approxVec(t, "normal", res.Normal, want)
}

// Scenario E, missing child substituted by the node's own MIP.
func TestTraceScenarioE_MissingChildUsesMIP(t *testing.T) {
	store := newStore(t, 4, 4, 1, 4)
	store.Meta.MIPEnabled = true
	store.Palette = tree.Palette{{0, 0, 0, 0}, {1, 1, 0, 1}}
	store.Bricks.Voxels = make([]uint16, 64)
	for i := range store.Bricks.Voxels {
		store.Bricks.Voxels[i] = tree.EmptyPaletteIndex
	}
	store.Bricks.Voxels[2+4*2+16*2] = 1 // cell (2,2,2) -> palette index 1

	root := &store.Nodes[0]
	root.Occupancy.Set(10) // child absent
	root.SetMIP(tree.PartedDescriptor(0))

	cfg := DefaultConfig()
	cfg.LoDFrustumDepth = 0.001 // keep the step-1 LoD gate from preempting step 2

	ray := geom.NewRay(geom.Vec3{2.5, 2.5, -1}, geom.Vec3{0, 0, 1})
	res := Trace(store, cfg, ray)

	if !res.Hit {
		t.Fatal("expected a hit via MIP substitution")
	}
	if res.Albedo != (tree.Color{1, 1, 0, 1}) {
		t.Fatalf("albedo = %v, want (1,1,0,1)", res.Albedo)
	}
	approxVec(t, "impact", res.Impact, geom.Vec3{2.5, 2.5, 2})

	snap := store.Mailbox.Snapshot()
	if len(snap) != 1 || snap[0] != mailbox.Pack(0, 10) {
		t.Fatalf("mailbox snapshot = %v, want exactly [Pack(0,10)]", snap)
	}
	if res.MissingTint <= 0 {
		t.Fatal("expected a nonzero missing-data tint")
	}
}

// Scenario F, request saturation. A mailbox of length 3 sees 4 distinct
// missing children along one ray; exactly 3 succeed and the 4th is dropped.
func TestTraceScenarioF_RequestSaturation(t *testing.T) {
	store := newStore(t, 4, 4, 1, 3)
	root := &store.Nodes[0]
	for s := 0; s < 4; s++ {
		root.Occupancy.Set(s)
	}

	cfg := DefaultConfig()
	cfg.RestartEpsilon = 0.1

	ray := geom.NewRay(geom.Vec3{-1, 0.5, 0.5}, geom.Vec3{1, 0, 0})
	res := Trace(store, cfg, ray)

	if res.Hit {
		t.Fatalf("expected a miss, got %+v", res)
	}
	snap := store.Mailbox.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("mailbox has %d entries, want 3", len(snap))
	}
	want := map[uint32]bool{
		mailbox.Pack(0, 0): true,
		mailbox.Pack(0, 1): true,
		mailbox.Pack(0, 2): true,
	}
	for _, v := range snap {
		if !want[v] {
			t.Fatalf("unexpected mailbox entry %x", v)
		}
	}
	if res.FailedTint <= 0 {
		t.Fatal("expected a nonzero request-failed tint from the dropped 4th request")
	}
}

// Determinism: tracing the same ray against the same store twice (no
// mutation in between beyond the mailbox/usage side effects) yields
// identical geometric results.
func TestTraceIsDeterministic(t *testing.T) {
	store := newStore(t, 4, 4, 1, 4)
	store.Palette = tree.Palette{{0, 0, 0, 0}, {1, 0, 0, 1}}
	root := &store.Nodes[0]
	root.SetLeaf(true)
	root.SetUniform(true)
	setAllOccupied(root)
	root.Children[0] = uint32(tree.SolidDescriptor(1))

	ray := geom.NewRay(geom.Vec3{-1, 2, 2}, geom.Vec3{1, 0, 0})
	a := Trace(store, DefaultConfig(), ray)
	b := Trace(store, DefaultConfig(), ray)
	if a.Hit != b.Hit || a.Albedo != b.Albedo || a.Impact != b.Impact || a.Normal != b.Normal {
		t.Fatalf("non-deterministic trace: %+v vs %+v", a, b)
	}
}

// Usage-bit conservativeness: every node actually consulted has its usage
// bit set after the kernel retires.
func TestTraceMarksUsageForConsultedNode(t *testing.T) {
	store := newStore(t, 4, 4, 1, 4)
	store.Palette = tree.Palette{{0, 0, 0, 0}, {1, 0, 0, 1}}
	root := &store.Nodes[0]
	root.SetLeaf(true)
	root.SetUniform(true)
	setAllOccupied(root)
	root.Children[0] = uint32(tree.SolidDescriptor(1))

	ray := geom.NewRay(geom.Vec3{-1, 2, 2}, geom.Vec3{1, 0, 0})
	Trace(store, DefaultConfig(), ray)

	if !store.Usage.Test(0) {
		t.Fatal("expected root node's usage bit to be set")
	}
	if !store.Usage.Test(1) {
		t.Fatal("expected root node's payload usage bit to be set")
	}
}

// Occupancy soundness: a node whose occupancy bit is clear at the ray's
// target sectant can never yield a hit inside that sectant's brick, even
// when a brick descriptor happens to be present there.
func TestTraceRespectsOccupancySoundness(t *testing.T) {
	store := newStore(t, 4, 4, 1, 4)
	store.Palette = tree.Palette{{1, 1, 1, 1}}
	root := &store.Nodes[0]
	root.SetLeaf(true)
	// Occupancy bit for sectant 0 left clear, even though a (stale) brick
	// descriptor is present there.
	root.Children[sectant.Pack(0, 0, 0)] = uint32(tree.SolidDescriptor(0))

	ray := geom.NewRay(geom.Vec3{-1, 0.5, 0.5}, geom.Vec3{1, 0, 0})
	res := Trace(store, DefaultConfig(), ray)
	if res.Hit {
		t.Fatal("expected no hit: occupancy bit was clear")
	}
}

func TestReachableMaskCullsOppositeOctant(t *testing.T) {
	var m occupancy.Mask
	m.Set(0) // far corner from a ray travelling in the all-positive octant
	mask := occupancy.ReachableMask(63, geom.Vec3{1, 1, 1})
	if !m.And(mask).IsZero() {
		t.Fatal("sectant 0 should be unreachable from entry 63 travelling in the positive octant")
	}
}
