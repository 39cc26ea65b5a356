// Package kernel implements the per-ray traversal and pixel shading that
// turn a tree.Store and a viewport into pixels. It is written as a Go
// reference kernel: one goroutine per pixel tile standing in for a GPU
// work-item, atomics in internal/mailbox standing in for GPU atomics. The
// same data layout backs a real compute dispatch in internal/gpu.
package kernel

import (
	"github.com/voxrt/voxrt/internal/geom"
	"github.com/voxrt/voxrt/internal/tree"
)

// Config carries the tunables a single traversal needs beyond the tree
// itself: none of these change the tree's data, only how a ray is walked
// and shaded.
type Config struct {
	// RestartEpsilon is the distance the outer loop advances ray_current_point
	// by whenever an inner descent returns without a hit. Must be strictly
	// positive and smaller than the smallest voxel size in the tree.
	RestartEpsilon float32

	// LoDFrustumDepth is the divisor used to turn a distance into a required
	// MIP level. Larger values delay MIP substitution to greater distances.
	// Calibrated empirically per scene, not a structural constant.
	LoDFrustumDepth float32

	// MissingDataTint and RequestFailedTint are mixed into the shaded colour
	// in proportion to how much of the ray's path touched missing data or a
	// saturated mailbox, so streaming gaps are visible rather than silent.
	MissingDataTint   tree.Color
	RequestFailedTint tree.Color

	// BackgroundColor is the flat colour a ray that never hits anything
	// resolves to, before tinting.
	BackgroundColor tree.Color

	// LightDir is the fixed directional test light used for Lambert shading.
	LightDir geom.Vec3
}

// DefaultConfig returns reasonable defaults for interactive use: a faint
// cool background, a magenta tint for missing data and an amber tint for a
// saturated mailbox, and a light coming from above and slightly behind the
// camera.
func DefaultConfig() Config {
	return Config{
		RestartEpsilon:    1e-4,
		LoDFrustumDepth:   64,
		MissingDataTint:   tree.Color{R: 1, G: 0.15, B: 0.85, A: 1},
		RequestFailedTint: tree.Color{R: 1, G: 0.85, B: 0, A: 1},
		BackgroundColor:   tree.Color{R: 0.05, G: 0.06, B: 0.09, A: 1},
		LightDir:          geom.Vec3{-0.4, -1, -0.3}.Normalize(),
	}
}

// tintStep is how much of a full tint one missing-data or failed-request
// event contributes; several events along one ray saturate toward 1.
const tintStep float32 = 0.2

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func mixColor(base, tint tree.Color, strength float32) tree.Color {
	s := clamp01(strength)
	if s == 0 {
		return base
	}
	return tree.Color{
		R: base.R*(1-s) + tint.R*s,
		G: base.G*(1-s) + tint.G*s,
		B: base.B*(1-s) + tint.B*s,
		A: base.A*(1-s) + tint.A*s,
	}
}
