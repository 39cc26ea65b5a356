package gpu

import (
	"encoding/binary"
	"math"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/voxrt/voxrt/internal/kernel"
	"github.com/voxrt/voxrt/internal/tree"
)

// cameraUniformSize is the padded byte size of the CameraBlock struct
// kernel.wgsl declares:
//
//	origin        : vec4<f32>  --  16
//	direction     : vec4<f32>  --  32
//	frustum       : vec4<f32>  --  48
//	light_dir     : vec4<f32>  --  64
//	background    : vec4<f32>  --  80
//	missing_tint  : vec4<f32>  --  96
//	failed_tint   : vec4<f32>  -- 112
//	fov           : f32        -- 116
//	restart_eps   : f32        -- 120
//	lod_depth     : f32        -- 124
//	root_size     : f32        -- 128
//	brick_d       : f32        -- 132
//	mip_enabled   : f32        -- 136
//	pad0, pad1    : f32, f32   -- 144
const cameraUniformSize = 144

// UpdateCamera packs the viewport and shading config the kernel needs for
// one dispatch into the uniform buffer, creating it on first use. meta
// supplies the tree-level constants (root size, brick dimension, whether
// MIP substitution is active) that every ray in the dispatch shares.
func (b *Buffers) UpdateCamera(vp kernel.Viewport, cfg kernel.Config, meta tree.Metadata) error {
	buf := packCamera(vp, cfg, meta)
	_, err := b.ensureBuffer("voxrt-camera", &b.CameraBuf, buf, wgpu.BufferUsageUniform, 0)
	return err
}

// packCamera serialises the uniform CameraBlock kernel.wgsl declares, byte
// offsets as documented on cameraUniformSize.
func packCamera(vp kernel.Viewport, cfg kernel.Config, meta tree.Metadata) []byte {
	buf := make([]byte, cameraUniformSize)
	putVec3(buf[0:], vp.Origin)
	putVec3(buf[16:], vp.Direction)
	putVec3(buf[32:], vp.Frustum)
	putVec3(buf[48:], cfg.LightDir)
	putColor(buf[64:], cfg.BackgroundColor)
	putColor(buf[80:], cfg.MissingDataTint)
	putColor(buf[96:], cfg.RequestFailedTint)
	binary.LittleEndian.PutUint32(buf[112:], math.Float32bits(vp.FOV))
	binary.LittleEndian.PutUint32(buf[116:], math.Float32bits(cfg.RestartEpsilon))
	binary.LittleEndian.PutUint32(buf[120:], math.Float32bits(cfg.LoDFrustumDepth))
	binary.LittleEndian.PutUint32(buf[124:], math.Float32bits(float32(meta.RootSize)))
	binary.LittleEndian.PutUint32(buf[128:], math.Float32bits(float32(meta.BrickD)))
	binary.LittleEndian.PutUint32(buf[132:], math.Float32bits(boolToF32(meta.MIPEnabled)))
	return buf
}

func boolToF32(v bool) float32 {
	if v {
		return 1
	}
	return 0
}

func putVec3(dst []byte, v [3]float32) {
	binary.LittleEndian.PutUint32(dst[0:], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(dst[4:], math.Float32bits(v[1]))
	binary.LittleEndian.PutUint32(dst[8:], math.Float32bits(v[2]))
	binary.LittleEndian.PutUint32(dst[12:], 0)
}

func putColor(dst []byte, c tree.Color) {
	binary.LittleEndian.PutUint32(dst[0:], math.Float32bits(c.R))
	binary.LittleEndian.PutUint32(dst[4:], math.Float32bits(c.G))
	binary.LittleEndian.PutUint32(dst[8:], math.Float32bits(c.B))
	binary.LittleEndian.PutUint32(dst[12:], math.Float32bits(c.A))
}
