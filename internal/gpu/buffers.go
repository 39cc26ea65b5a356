// Package gpu uploads a tree.Store to a WebGPU device and dispatches the
// compute-shader twin of internal/kernel's traversal loop. The buffer
// layouts here and the struct layouts the kernel package reads on the CPU
// are the same bytes; this package's only job is getting them onto the
// device and back.
package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/voxrt/voxrt/internal/tree"
)

// headroomNodes and headroomPayload slacken a buffer's allocation past its
// current content so a handful of streamed-in nodes or bricks don't force a
// reallocation (and every bound group that referenced the old buffer) on
// the very next frame.
const (
	headroomNodes   = 256 * nodeByteSize
	headroomPayload = 1 * 1024 * 1024
	headroomSmall   = 4 * 1024
)

// nodeByteSize is the packed wire size of one tree.Node: Meta(4) +
// Occupancy(8) + Children[64](256) + MIP(4).
const nodeByteSize = 4 + 8 + 64*4 + 4

// Buffers holds the device-resident mirror of a tree.Store plus the
// uniform camera/config block the kernel reads every dispatch. Nil until
// the first Sync call creates it.
type Buffers struct {
	Device *wgpu.Device

	CameraBuf  *wgpu.Buffer
	NodesBuf   *wgpu.Buffer
	VoxelsBuf  *wgpu.Buffer
	PaletteBuf *wgpu.Buffer
	MailboxBuf *wgpu.Buffer
	UsageBuf   *wgpu.Buffer
	OutputTex  *wgpu.Texture
	OutputView *wgpu.TextureView

	outputWidth, outputHeight uint32
}

// NewBuffers allocates no device resources yet; Sync and EnsureOutput do
// that lazily the first time they are needed, the same deferred-creation
// style ensureBuffer uses below.
func NewBuffers(device *wgpu.Device) *Buffers {
	return &Buffers{Device: device}
}

// ensureBuffer (re)creates *buf if it is nil or too small for data, then
// writes data into it. Buffers are over-allocated by headroom bytes so a
// handful of streamed nodes don't force a resize (and a rebuild of every
// bind group referencing the buffer) on the very next frame. Returns true
// if the buffer was (re)created.
func (b *Buffers) ensureBuffer(label string, buf **wgpu.Buffer, data []byte, usage wgpu.BufferUsage, headroom int) (bool, error) {
	needed := uint64(len(data) + headroom)
	if rem := needed % 4; rem != 0 {
		needed += 4 - rem
	}

	cur := *buf
	if cur != nil && cur.GetSize() >= needed {
		if len(data) > 0 {
			b.Device.GetQueue().WriteBuffer(cur, 0, data)
		}
		return false, nil
	}

	if cur != nil {
		cur.Release()
	}
	nb, err := b.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             needed,
		Usage:            usage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return false, fmt.Errorf("voxrt: gpu: create buffer %s: %w", label, err)
	}
	*buf = nb
	if len(data) > 0 {
		b.Device.GetQueue().WriteBuffer(*buf, 0, data)
	}
	return true, nil
}

// Sync uploads every part of store that the compute kernel reads: the node
// table, the flat brick/voxel array, the palette, and clears the mailbox
// and usage buffers for the coming dispatch. It returns true if any buffer
// was reallocated, meaning bind groups built against the old buffers must
// be rebuilt before the next dispatch.
func (b *Buffers) Sync(store *tree.Store) (recreated bool, err error) {
	nodeBytes := packNodes(store.Nodes)
	if r, err := b.ensureBuffer("voxrt-nodes", &b.NodesBuf, nodeBytes, wgpu.BufferUsageStorage, headroomNodes); err != nil {
		return recreated, err
	} else {
		recreated = recreated || r
	}

	voxelBytes := packVoxels(store.Bricks.Voxels)
	if r, err := b.ensureBuffer("voxrt-voxels", &b.VoxelsBuf, voxelBytes, wgpu.BufferUsageStorage, headroomPayload); err != nil {
		return recreated, err
	} else {
		recreated = recreated || r
	}

	paletteBytes := packPalette(store.Palette)
	if r, err := b.ensureBuffer("voxrt-palette", &b.PaletteBuf, paletteBytes, wgpu.BufferUsageStorage, headroomSmall); err != nil {
		return recreated, err
	} else {
		recreated = recreated || r
	}

	mailboxBytes := make([]byte, store.Mailbox.Len()*4)
	for i := range mailboxBytes {
		mailboxBytes[i] = 0xFF // EmptySlot in every byte of every uint32 slot
	}
	if r, err := b.ensureBuffer("voxrt-mailbox", &b.MailboxBuf, mailboxBytes, wgpu.BufferUsageStorage, 0); err != nil {
		return recreated, err
	} else {
		recreated = recreated || r
	}

	usageBytes := make([]byte, (store.Usage.Len()/32)*4)
	if r, err := b.ensureBuffer("voxrt-usage", &b.UsageBuf, usageBytes, wgpu.BufferUsageStorage, 0); err != nil {
		return recreated, err
	} else {
		recreated = recreated || r
	}

	return recreated, nil
}

// EnsureOutput (re)creates the storage texture the kernel writes shaded
// pixels into, if the requested dimensions changed.
func (b *Buffers) EnsureOutput(width, height uint32) error {
	if b.OutputTex != nil && b.outputWidth == width && b.outputHeight == height {
		return nil
	}
	if b.OutputTex != nil {
		b.OutputView.Release()
		b.OutputTex.Release()
	}
	tex, err := b.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "voxrt-output",
		Size: wgpu.Extent3D{
			Width: width, Height: height, DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageStorageBinding | wgpu.TextureUsageCopySrc | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return fmt.Errorf("voxrt: gpu: create output texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		return fmt.Errorf("voxrt: gpu: create output view: %w", err)
	}
	b.OutputTex, b.OutputView = tex, view
	b.outputWidth, b.outputHeight = width, height
	return nil
}

// packNodes serialises the node table in exactly the layout kernel.wgsl's
// VoxNode struct expects: meta(u32), occupancy(2x u32), children(64x u32),
// mip(u32), nodeByteSize bytes per node, no padding between nodes.
func packNodes(nodes []tree.Node) []byte {
	out := make([]byte, len(nodes)*nodeByteSize)
	off := 0
	for i := range nodes {
		n := &nodes[i]
		binary.LittleEndian.PutUint32(out[off:], n.Meta)
		off += 4
		binary.LittleEndian.PutUint32(out[off:], n.Occupancy[0])
		binary.LittleEndian.PutUint32(out[off+4:], n.Occupancy[1])
		off += 8
		for c := 0; c < 64; c++ {
			binary.LittleEndian.PutUint32(out[off:], n.Children[c])
			off += 4
		}
		binary.LittleEndian.PutUint32(out[off:], uint32(n.MIP))
		off += 4
	}
	return out
}

// packVoxels widens the brick store's uint16 palette indices to uint32s:
// WGSL storage buffers address in 4-byte words, and a packed-pair layout
// would cost the shader a modulo and a shift on every brick lookup for a
// few hundred KB of savings that streaming headroom already dwarfs.
func packVoxels(voxels []uint16) []byte {
	out := make([]byte, len(voxels)*4)
	for i, v := range voxels {
		binary.LittleEndian.PutUint32(out[i*4:], uint32(v))
	}
	return out
}

func packPalette(p tree.Palette) []byte {
	out := make([]byte, len(p)*16)
	for i, c := range p {
		off := i * 16
		binary.LittleEndian.PutUint32(out[off:], math.Float32bits(c.R))
		binary.LittleEndian.PutUint32(out[off+4:], math.Float32bits(c.G))
		binary.LittleEndian.PutUint32(out[off+8:], math.Float32bits(c.B))
		binary.LittleEndian.PutUint32(out[off+12:], math.Float32bits(c.A))
	}
	return out
}

// Release frees every device resource the Buffers owns. Safe to call more
// than once.
func (b *Buffers) Release() {
	for _, buf := range []*wgpu.Buffer{
		b.CameraBuf, b.NodesBuf, b.VoxelsBuf, b.PaletteBuf, b.MailboxBuf, b.UsageBuf,
	} {
		if buf != nil {
			buf.Release()
		}
	}
	if b.OutputView != nil {
		b.OutputView.Release()
	}
	if b.OutputTex != nil {
		b.OutputTex.Release()
	}
}
