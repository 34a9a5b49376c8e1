package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithStage sets one programmable stage of the pipeline.
//
// Parameters:
//   - stageType: the stage slot to fill
//   - source: the WGSL module source
//   - entryPoint: the function the stage runs
//
// Returns:
//   - PipelineBuilderOption: a function that sets the stage for this pipeline
func WithStage(stageType StageType, source, entryPoint string) PipelineBuilderOption {
	return func(p *pipeline) {
		p.stages[stageType] = &Stage{
			Label:      p.pipelineKey + " " + entryPoint,
			Source:     source,
			EntryPoint: entryPoint,
		}
	}
}

// WithBindGroupLayouts sets the bind group layouts, indexed by group number.
//
// Parameters:
//   - descriptors: one descriptor per group
//
// Returns:
//   - PipelineBuilderOption: a function that sets the layouts for this pipeline
func WithBindGroupLayouts(descriptors ...wgpu.BindGroupLayoutDescriptor) PipelineBuilderOption {
	return func(p *pipeline) {
		p.bindGroupLayoutDescriptors = descriptors
	}
}

// WithVertexLayouts sets the vertex buffer layouts of a render pipeline.
//
// Parameters:
//   - layouts: one layout per vertex buffer slot
//
// Returns:
//   - PipelineBuilderOption: a function that sets the vertex layouts for this pipeline
func WithVertexLayouts(layouts ...wgpu.VertexBufferLayout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexLayouts = layouts
	}
}


// WithDepthWriteEnabled sets whether depth writing is enabled for this pipeline.
//
// Parameters:
//   - enabled: a boolean indicating whether depth writing should be enabled
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth write enabled state for this pipeline
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWriteEnabled = enabled
	}
}


// WithCullMode sets the face cull mode for this pipeline.
//
// Parameters:
//   - mode: the cull mode to use
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode for this pipeline
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}




