package gpu

import (
	_ "embed"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed kernel.wgsl
var kernelSource string

// workgroupSize matches kernel.wgsl's @workgroup_size(8, 8, 1), the same
// 8x8 tile the CPU reference kernel in internal/kernel dispatches one
// goroutine per.
const workgroupSize = 8

// Pipeline owns the compiled compute pipeline and the bind group built
// against a particular generation of Buffers. It is rebuilt whenever
// Buffers.Sync reports a reallocation.
type Pipeline struct {
	Device    *wgpu.Device
	module    *wgpu.ShaderModule
	pipeline  *wgpu.ComputePipeline
	bindGroup *wgpu.BindGroup
}

// NewPipeline compiles kernel.wgsl once. Call Rebind whenever the buffers
// it reads from change.
func NewPipeline(device *wgpu.Device) (*Pipeline, error) {
	mod, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "voxrt-kernel",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: kernelSource},
	})
	if err != nil {
		return nil, fmt.Errorf("voxrt: gpu: compile kernel.wgsl: %w", err)
	}
	pipe, err := device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: "voxrt-kernel-pipeline",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     mod,
			EntryPoint: "trace",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("voxrt: gpu: create compute pipeline: %w", err)
	}
	return &Pipeline{Device: device, module: mod, pipeline: pipe}, nil
}

// Rebind (re)creates the bind group pointing at the current set of buffers.
// Called after NewPipeline and again any time Buffers.Sync or
// Buffers.EnsureOutput reports that a buffer was reallocated.
func (p *Pipeline) Rebind(b *Buffers) error {
	layout, err := p.pipeline.GetBindGroupLayout(0)
	if err != nil {
		return fmt.Errorf("voxrt: gpu: bind group layout: %w", err)
	}
	defer layout.Release()

	bg, err := p.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "voxrt-kernel-bindgroup",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.CameraBuf, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: b.NodesBuf, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: b.VoxelsBuf, Size: wgpu.WholeSize},
			{Binding: 3, Buffer: b.PaletteBuf, Size: wgpu.WholeSize},
			{Binding: 4, Buffer: b.MailboxBuf, Size: wgpu.WholeSize},
			{Binding: 5, Buffer: b.UsageBuf, Size: wgpu.WholeSize},
			{Binding: 6, TextureView: b.OutputView},
		},
	})
	if err != nil {
		return fmt.Errorf("voxrt: gpu: create bind group: %w", err)
	}
	if p.bindGroup != nil {
		p.bindGroup.Release()
	}
	p.bindGroup = bg
	return nil
}

// Dispatch encodes and submits one compute pass tracing a width x height
// frame, then blocks for the queue to finish so the caller may safely read
// back the output texture. ceilDiv(width/height, workgroupSize) mirrors RenderFrame's
// own 8x8 tiling in internal/kernel/pixel.go.
func (p *Pipeline) Dispatch(width, height uint32) error {
	encoder, err := p.Device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "voxrt-frame"})
	if err != nil {
		return fmt.Errorf("voxrt: gpu: create command encoder: %w", err)
	}
	pass := encoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: "voxrt-trace"})
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, p.bindGroup, nil)
	pass.DispatchWorkgroups(ceilDiv(width, workgroupSize), ceilDiv(height, workgroupSize), 1)
	pass.End()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("voxrt: gpu: finish command buffer: %w", err)
	}
	p.Device.GetQueue().Submit(cmd)
	p.Device.Poll(true, nil)
	return nil
}

func ceilDiv(n, d uint32) uint32 {
	return (n + d - 1) / d
}

// Release frees the pipeline's device resources.
func (p *Pipeline) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
	}
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	if p.module != nil {
		p.module.Release()
	}
}
