package kernel

import (
	"math"

	"github.com/voxrt/voxrt/internal/brick"
	"github.com/voxrt/voxrt/internal/geom"
	"github.com/voxrt/voxrt/internal/mailbox"
	"github.com/voxrt/voxrt/internal/occupancy"
	"github.com/voxrt/voxrt/internal/raystack"
	"github.com/voxrt/voxrt/internal/sectant"
	"github.com/voxrt/voxrt/internal/tree"
)

// Result is the outcome of tracing one ray through a Store: either a hit
// with its colour, world-space impact point and surface normal, or a miss.
// MissingTint and FailedTint are the accumulated strength of, respectively,
// data the ray crossed that has not streamed in yet and mailbox writes that
// were dropped because the mailbox was full, both in [0,1], for the pixel
// driver to blend into the final colour.
type Result struct {
	Hit         bool
	Albedo      tree.Color
	Impact      geom.Vec3
	Normal      geom.Vec3
	MissingTint float32
	FailedTint  float32
}

// maxInnerIterations bounds the inner descent loop. A GPU kernel is bounded
// structurally (brick DDA by 3D steps, sectant advance by a constant); this
// is the CPU reference kernel's equivalent safety net against a logic bug
// turning into a true infinite loop.
const maxInnerIterations = 4096

// maxOuterIterations bounds the outer restart loop similarly.
const maxOuterIterations = 4096

// frame is what the bounded ancestor stack carries: enough to recompute a
// parent's bounds and resume stepping through its siblings on pop.
type frame struct {
	nodeIndex    uint32
	bounds       geom.Cube
	childSectant int
}

// Trace walks ray through store's tree and returns the first non-empty
// voxel it crosses, or a miss. It is the entry point both the CPU pixel
// driver and kernel tests call.
func Trace(store *tree.Store, cfg Config, ray geom.Ray) Result {
	rootBounds := geom.Cube{Origin: geom.Vec3{0, 0, 0}, Size: float32(store.Meta.RootSize)}
	rootHit := geom.Intersect(rootBounds, ray)
	if !rootHit.Hit() {
		return Result{}
	}

	point := ray.At(rootHit.ImpactDistance())
	var missingTint, failedTint float32

	for i := 0; i < maxOuterIterations; i++ {
		target := sectant.FromPoint(rootBounds, point)
		if target == sectant.OOB {
			break
		}

		res, hit, m, f := descend(store, cfg, ray, rootBounds, 0, target, point)
		missingTint = clamp01(missingTint + m)
		failedTint = clamp01(failedTint + f)
		if hit {
			res.MissingTint = missingTint
			res.FailedTint = failedTint
			return res
		}

		point = geom.Vec3{
			point[0] + ray.Dir[0]*cfg.RestartEpsilon,
			point[1] + ray.Dir[1]*cfg.RestartEpsilon,
			point[2] + ray.Dir[2]*cfg.RestartEpsilon,
		}
		if !rootBounds.Contains(point) {
			break
		}
	}

	return Result{MissingTint: missingTint, FailedTint: failedTint}
}

// descend runs the inner ancestor-stack loop starting at (rootIndex,
// rootTarget) with the ray already positioned at point. It returns on the
// first hit, or once the stack is exhausted back past the root.
func descend(store *tree.Store, cfg Config, ray geom.Ray, rootBounds geom.Cube, rootIndex uint32, rootTarget int, point geom.Vec3) (res Result, hit bool, missingAdd, failedAdd float32) {
	var stack raystack.Stack[frame]
	nodeIndex := rootIndex
	bounds := rootBounds
	target := rootTarget
	mipLevel := 0
	factors := geom.Factors(ray.Dir)

	for iter := 0; iter < maxInnerIterations; iter++ {
		node := &store.Nodes[nodeIndex]
		markNode(store, nodeIndex)

		// LoD check: a node at or past its required MIP level substitutes
		// the coarse approximation, requesting it first if absent.
		if store.Meta.MIPEnabled && requiredMIPLevel(ray, point, bounds, store.Bricks.D, cfg.LoDFrustumDepth) <= mipLevel {
			if node.HasMIP() {
				markPayload(store, nodeIndex)
				if r, ok := probeMIP(ray, bounds, node, store); ok {
					return r, true, missingAdd, failedAdd
				}
			} else if store.Mailbox.TryWrite(mailbox.Pack(nodeIndex, mailbox.OOBSectant)) {
				missingAdd += tintStep
			} else {
				failedAdd += tintStep
			}
		}

		if target != sectant.OOB && node.Occupancy.Test(target) {
			if node.IsLeaf() {
				desc := node.ChildBrick(target)
				if desc.Absent() {
					if store.Mailbox.TryWrite(mailbox.Pack(nodeIndex, uint8(target))) {
						missingAdd += tintStep
					} else {
						failedAdd += tintStep
					}
					if store.Meta.MIPEnabled && node.HasMIP() {
						if r, ok := probeMIP(ray, bounds, node, store); ok {
							return r, true, missingAdd, failedAdd
						}
					}
				} else {
					markPayload(store, nodeIndex)
					probeBounds := bounds
					if !node.IsUniform() {
						probeBounds = sectant.ChildBounds(bounds, target)
					}
					if r, ok := probeBrick(ray, probeBounds, desc, store); ok {
						return r, true, missingAdd, failedAdd
					}
				}
			} else {
				childIdx := node.ChildNode(target)
				if childIdx == tree.EmptyIndex {
					if store.Mailbox.TryWrite(mailbox.Pack(nodeIndex, uint8(target))) {
						missingAdd += tintStep
					} else {
						failedAdd += tintStep
					}
					if store.Meta.MIPEnabled && node.HasMIP() {
						if r, ok := probeMIP(ray, bounds, node, store); ok {
							return r, true, missingAdd, failedAdd
						}
					}
				} else {
					markNode(store, childIdx)
					stack.Push(frame{nodeIndex: nodeIndex, bounds: bounds, childSectant: target})
					bounds = sectant.ChildBounds(bounds, target)
					nodeIndex = childIdx
					target = sectant.FromPoint(bounds, point)
					mipLevel--
					continue
				}
			}
		}

		backtrack := false
		switch {
		case target == sectant.OOB:
			backtrack = true
		case node.IsUniform():
			backtrack = true
		case node.Occupancy.And(occupancy.ReachableMask(target, ray.Dir)).IsZero():
			backtrack = true
		}

		if backtrack {
			parent, ok := stack.Pop()
			if !ok {
				return Result{}, false, missingAdd, failedAdd
			}
			childAtParent := sectant.ChildBounds(parent.bounds, parent.childSectant)
			next, step := geom.Advance(point, childAtParent, ray.Dir, factors)
			point = next
			bounds = parent.bounds
			nodeIndex = parent.nodeIndex
			if step.IsZero() {
				target = sectant.OOB
			} else {
				target = sectant.Step(parent.childSectant, step)
			}
			mipLevel++
			continue
		}

		curCell := sectant.ChildBounds(bounds, target)
		next, step := geom.Advance(point, curCell, ray.Dir, factors)
		point = next
		if step.IsZero() {
			target = sectant.OOB
			continue
		}
		target = sectant.Step(target, step)
	}

	return Result{}, false, missingAdd, failedAdd
}

// requiredMIPLevel turns the distance travelled so far into a coarseness
// level comparable against the mipLevel counter: farther points round up to
// coarser levels. The rounding grid and the divisor are scene-tunable, not
// structural constants.
func requiredMIPLevel(ray geom.Ray, point geom.Vec3, bounds geom.Cube, brickD int, frustumDepth float32) int {
	if brickD <= 0 || frustumDepth <= 0 {
		return 0
	}
	mipCellSize := bounds.Size / float32(brickD)
	if mipCellSize <= 0 {
		return 0
	}
	dx, dy, dz := point[0]-ray.Origin[0], point[1]-ray.Origin[1], point[2]-ray.Origin[2]
	dist := float32(math.Sqrt(float64(dx*dx + dy*dy + dz*dz)))
	rounded := float32(math.Round(float64(dist/mipCellSize))) * mipCellSize
	return int(rounded / frustumDepth)
}

// probeBrick intersects childBounds and, on entry, dispatches to the
// uniform-solid fast path or the parted DDA marcher.
func probeBrick(ray geom.Ray, childBounds geom.Cube, desc tree.BrickDescriptor, store *tree.Store) (Result, bool) {
	if desc.Absent() {
		return Result{}, false
	}
	hit := geom.Intersect(childBounds, ray)
	if !hit.Hit() {
		return Result{}, false
	}
	entryDist := hit.ImpactDistance()
	if desc.IsSolid() {
		impact := ray.At(entryDist)
		return Result{
			Hit:    true,
			Albedo: store.Palette.Lookup(desc.PaletteIndex()),
			Impact: impact,
			Normal: geom.ImpactNormal(childBounds, impact),
		}, true
	}
	h, ok := brick.March(ray, childBounds, entryDist, desc.BrickIndex(), store.Bricks, store.Palette)
	if !ok {
		return Result{}, false
	}
	return cellHitResult(ray, childBounds, store.Bricks.D, store.Palette, h), true
}

// probeMIP is probeBrick's counterpart for a node's own MIP representative,
// which spans the node's full bounds rather than one child sectant.
func probeMIP(ray geom.Ray, bounds geom.Cube, node *tree.Node, store *tree.Store) (Result, bool) {
	hit := geom.Intersect(bounds, ray)
	if !hit.Hit() {
		return Result{}, false
	}
	entryDist := hit.ImpactDistance()
	if node.MIP.IsSolid() {
		impact := ray.At(entryDist)
		return Result{
			Hit:    true,
			Albedo: store.Palette.Lookup(node.MIP.PaletteIndex()),
			Impact: impact,
			Normal: geom.ImpactNormal(bounds, impact),
		}, true
	}
	h, ok := brick.March(ray, bounds, entryDist, node.MIP.BrickIndex(), store.Bricks, store.Palette)
	if !ok {
		return Result{}, false
	}
	return cellHitResult(ray, bounds, store.Bricks.D, store.Palette, h), true
}

// cellHitResult reconstructs the impact point and surface normal for a
// brick.Hit returned against bricks spanning `bounds` at resolution d.
func cellHitResult(ray geom.Ray, bounds geom.Cube, d int, palette tree.Palette, h brick.Hit) Result {
	cellSize := bounds.Size / float32(d)
	cellBounds := geom.Cube{
		Origin: geom.Vec3{
			bounds.Origin[0] + float32(h.Cell[0])*cellSize,
			bounds.Origin[1] + float32(h.Cell[1])*cellSize,
			bounds.Origin[2] + float32(h.Cell[2])*cellSize,
		},
		Size: cellSize,
	}
	impact := ray.At(h.Distance)
	return Result{
		Hit:    true,
		Albedo: palette.Lookup(h.Palette),
		Impact: impact,
		Normal: geom.ImpactNormal(cellBounds, impact),
	}
}

func markNode(store *tree.Store, nodeIndex uint32) {
	store.Usage.Mark(int(nodeIndex) * 2)
}

func markPayload(store *tree.Store, nodeIndex uint32) {
	store.Usage.Mark(int(nodeIndex)*2 + 1)
}
