package sectant

// StepIndex packs a per-axis step sign (-1, 0, +1) into a base-3 index in
// [0,26], used to look up the precomputed Step table without branching.
func StepIndex(step [3]int8) int {
	return int(step[0]+1) + 3*int(step[1]+1) + 9*int(step[2]+1)
}

// stepTable[s][idx] is the sectant reached by applying the step encoded by
// idx (see StepIndex) to sectant s, or OOB if that step exits the cube.
// Precomputed once at package init so the traversal never re-derives a
// neighbour sectant on every DDA advance.
var stepTable [Count][27]uint8

func init() {
	for s := 0; s < Count; s++ {
		x0, y0, z0 := Unpack(s)
		for dz := -1; dz <= 1; dz++ {
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					idx := StepIndex([3]int8{int8(dx), int8(dy), int8(dz)})
					x, y, z := x0+dx, y0+dy, z0+dz
					if x < 0 || x > 3 || y < 0 || y > 3 || z < 0 || z > 3 {
						stepTable[s][idx] = OOB
						continue
					}
					stepTable[s][idx] = uint8(Pack(x, y, z))
				}
			}
		}
	}
}

// Step looks up the sectant reached by stepping from s along the given
// per-axis step signs, or OOB if the step exits the node's cube.
func Step(s int, step [3]int8) int {
	return int(stepTable[s][StepIndex(step)])
}
