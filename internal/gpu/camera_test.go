package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/voxrt/voxrt/internal/geom"
	"github.com/voxrt/voxrt/internal/kernel"
	"github.com/voxrt/voxrt/internal/tree"
)

func TestPackCameraLayout(t *testing.T) {
	vp := kernel.Viewport{
		Origin:    geom.Vec3{1, 2, 3},
		Direction: geom.Vec3{0, 0, 1},
		Frustum:   geom.Vec3{1, 1, 1},
		FOV:       1.5,
	}
	cfg := kernel.DefaultConfig()
	meta := tree.Metadata{RootSize: 64, BrickD: 8, MIPEnabled: true}

	out := packCamera(vp, cfg, meta)
	if len(out) != cameraUniformSize {
		t.Fatalf("packCamera length = %d, want %d", len(out), cameraUniformSize)
	}

	readF32 := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(out[off:]))
	}

	if got := readF32(0); got != 1 {
		t.Errorf("origin.x = %f, want 1", got)
	}
	if got := readF32(116); got != cfg.RestartEpsilon {
		t.Errorf("restart_eps = %f, want %f", got, cfg.RestartEpsilon)
	}
	if got := readF32(120); got != cfg.LoDFrustumDepth {
		t.Errorf("lod_depth = %f, want %f", got, cfg.LoDFrustumDepth)
	}
	if got := readF32(124); got != 64 {
		t.Errorf("root_size = %f, want 64", got)
	}
	if got := readF32(128); got != 8 {
		t.Errorf("brick_d = %f, want 8", got)
	}
	if got := readF32(132); got != 1 {
		t.Errorf("mip_enabled = %f, want 1 (true)", got)
	}
}

func TestPackCameraMIPDisabled(t *testing.T) {
	out := packCamera(kernel.Viewport{}, kernel.DefaultConfig(), tree.Metadata{RootSize: 64, BrickD: 4, MIPEnabled: false})
	got := math.Float32frombits(binary.LittleEndian.Uint32(out[132:]))
	if got != 0 {
		t.Errorf("mip_enabled = %f, want 0 (false)", got)
	}
}
