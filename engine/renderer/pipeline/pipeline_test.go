package pipeline

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("cubes", PipelineTypeRender)

	if p.PipelineKey() != "cubes" {
		t.Errorf("PipelineKey() = %q, want %q", p.PipelineKey(), "cubes")
	}
	if p.Type() != PipelineTypeRender {
		t.Errorf("Type() = %v, want %v", p.Type(), PipelineTypeRender)
	}
	if !p.DepthTestEnabled() || !p.DepthWriteEnabled() {
		t.Error("depth test and write should default on")
	}
	if p.BlendEnabled() {
		t.Error("blending should default off")
	}
	if p.CullMode() != wgpu.CullModeBack {
		t.Errorf("CullMode() = %v, want %v", p.CullMode(), wgpu.CullModeBack)
	}
	if p.Topology() != wgpu.PrimitiveTopologyTriangleList {
		t.Errorf("Topology() = %v, want %v", p.Topology(), wgpu.PrimitiveTopologyTriangleList)
	}
	if p.FrontFace() != wgpu.FrontFaceCCW {
		t.Errorf("FrontFace() = %v, want %v", p.FrontFace(), wgpu.FrontFaceCCW)
	}
	if p.WriteMask() != wgpu.ColorWriteMaskAll {
		t.Errorf("WriteMask() = %v, want %v", p.WriteMask(), wgpu.ColorWriteMaskAll)
	}
	if p.Stage(StageVertex) != nil {
		t.Error("Stage(StageVertex) should be nil before WithStage")
	}
}

func TestPipelineOptions(t *testing.T) {
	layout := wgpu.BindGroupLayoutDescriptor{
		Label: "globals",
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageCompute, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform}},
		},
	}
	p := NewPipeline("kernels", PipelineTypeCompute,
		WithStage(StageCompute, "fn main() {}", "cull"),
		WithBindGroupLayouts(layout),
		WithCullMode(wgpu.CullModeNone),
		WithDepthWriteEnabled(false),
	)

	s := p.Stage(StageCompute)
	if s == nil {
		t.Fatal("Stage(StageCompute) = nil")
	}
	if s.EntryPoint != "cull" {
		t.Errorf("EntryPoint = %q, want %q", s.EntryPoint, "cull")
	}
	if s.Label != "kernels cull" {
		t.Errorf("Label = %q, want %q", s.Label, "kernels cull")
	}
	if got := len(p.BindGroupLayoutDescriptors()); got != 1 {
		t.Fatalf("len(BindGroupLayoutDescriptors()) = %d, want 1", got)
	}
	if p.CullMode() != wgpu.CullModeNone {
		t.Errorf("CullMode() = %v, want %v", p.CullMode(), wgpu.CullModeNone)
	}
	if p.DepthWriteEnabled() {
		t.Error("DepthWriteEnabled() = true, want false")
	}
	if p.BindGroupLayout(0) != nil || p.BindGroupLayout(-1) != nil {
		t.Error("BindGroupLayout should be nil before registration")
	}
	if got := p.Pipeline().(*wgpu.ComputePipeline); got != nil {
		t.Errorf("Pipeline() = %v, want nil before registration", got)
	}
}
