package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/LeonYuanYao/orillusion-webgpu-samples/common"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/readback"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/renderer/bind_group_provider"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/renderer/pipeline"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrPipelineNotFound is returned when a pipeline key has not been registered.
	ErrPipelineNotFound = errors.New("renderer: pipeline not found")
	// ErrNoFrame is returned when a frame operation runs outside BeginFrame/EndFrame.
	ErrNoFrame = errors.New("renderer: no frame in progress")
	// ErrFrameInProgress is returned by BeginFrame while the previous frame is unpresented.
	ErrFrameInProgress = errors.New("renderer: previous frame not yet presented")
	// ErrPassOpen is returned when compute or copy work is encoded inside the render pass.
	ErrPassOpen = errors.New("renderer: render pass is open")
	// ErrNoPass is returned when a draw is encoded with no render pass open.
	ErrNoPass = errors.New("renderer: no render pass open")
	// ErrForeignBuffer is returned when a readback buffer did not come from this renderer.
	ErrForeignBuffer = errors.New("renderer: readback buffer not created by this renderer")
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	// pipelineCache maps pipeline keys to registered pipelines
	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	forceFallbackAdapter bool
	clearColor           [3]float64
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
}

// Renderer drives one window surface. A frame is encoded into a single command encoder in
// this order:
//
//	BeginFrame → DispatchCompute* → BeginRenderPass → draws → EndRenderPass →
//	CopyBufferToBuffer* → EndFrame → Present
//
// EndFrame submits once, so compute results are visible to the draws of the same frame and
// buffer copies see what the compute passes wrote. Buffer writes queued with WriteBuffers
// before EndFrame land before the submitted work runs.
type Renderer interface {
	// Pipeline returns the registered pipeline for key, or nil.
	//
	// Parameters:
	//   - key: the pipeline key
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline, or nil
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines creates the GPU objects for each pipeline and caches it by key.
	// Pipelines whose key is already cached are skipped.
	//
	// Parameters:
	//   - pipelines: the pipelines to register
	//
	// Returns:
	//   - error: the first creation failure
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the surface and the MSAA and depth attachments.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	Resize(width, height int)

	// SetPresentMode changes the present mode; it applies at the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// SampleCount returns the MSAA sample count of the main render pass.
	SampleCount() MSAASampleCount

	// CreateBuffer creates an unmapped GPU buffer.
	//
	// Parameters:
	//   - label: the debug label
	//   - size: the buffer size in bytes
	//   - usage: the buffer usage flags
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer
	//   - error: the device error, if any
	CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error)

	// InitMeshBuffers creates and fills the vertex and index buffers of a mesh provider.
	//
	// Parameters:
	//   - provider: the provider that receives the buffers
	//   - vertexData: the raw vertex bytes
	//   - indexData: the raw uint32 index bytes
	//   - indexCount: the number of indices in indexData
	//
	// Returns:
	//   - error: the device error, if any
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates any missing buffers for the descriptor's entries and builds the
	// provider's bind group. Buffers already set on the provider are reused.
	//
	// Parameters:
	//   - provider: the provider that receives the bind group
	//   - descriptor: the layout of the bind group
	//   - bufferUsageOverrides: extra usage flags per binding
	//   - bufferSizeOverrides: buffer sizes per binding, replacing MinBindingSize
	//
	// Returns:
	//   - error: the device error, if any
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers queues each write onto the device queue.
	//
	// Parameters:
	//   - writes: the writes to queue, in order
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next swapchain texture and opens the frame's command encoder.
	//
	// Returns:
	//   - error: ErrFrameInProgress, or the surface error
	BeginFrame() error

	// DispatchCompute encodes one compute pass into the frame encoder.
	//
	// Parameters:
	//   - pipelineKey: a registered compute pipeline
	//   - provider: the provider whose bind group is set at group 0
	//   - workGroupCount: the workgroups in X, Y and Z
	//
	// Returns:
	//   - error: ErrNoFrame, ErrPassOpen, or ErrPipelineNotFound
	DispatchCompute(pipelineKey string, provider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error

	// BeginRenderPass opens the main render pass, cleared to the clear color.
	//
	// Returns:
	//   - error: ErrNoFrame or ErrPassOpen
	BeginRenderPass() error

	// SetPipeline selects the render pipeline for subsequent draws.
	//
	// Parameters:
	//   - pipelineKey: a registered render pipeline
	//
	// Returns:
	//   - error: ErrNoPass or ErrPipelineNotFound
	SetPipeline(pipelineKey string) error

	// SetMesh binds the vertex and index buffers of a mesh provider.
	//
	// Parameters:
	//   - mesh: the mesh provider
	SetMesh(mesh bind_group_provider.BindGroupProvider)

	// SetBindGroup binds provider's bind group at group with the given dynamic offsets.
	//
	// Parameters:
	//   - group: the bind group index
	//   - provider: the provider holding the bind group
	//   - dynamicOffsets: one offset per dynamic binding, nil for none
	SetBindGroup(group uint32, provider bind_group_provider.BindGroupProvider, dynamicOffsets []uint32)

	// DrawIndexed encodes a direct indexed draw.
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)

	// DrawIndexedIndirect encodes an indexed draw whose arguments are read from buffer at offset.
	DrawIndexedIndirect(buffer *wgpu.Buffer, offset uint64)

	// EndRenderPass closes the main render pass.
	EndRenderPass()

	// CopyBufferToBuffer encodes a copy outside the render pass.
	//
	// Returns:
	//   - error: ErrNoFrame, ErrPassOpen, or the encoder error
	CopyBufferToBuffer(src *wgpu.Buffer, srcOffset uint64, dst *wgpu.Buffer, dstOffset uint64, size uint64) error

	// CopyToReadback encodes a copy from src into a readback buffer.
	//
	// Parameters:
	//   - src: the source GPU buffer
	//   - srcOffset: the byte offset in src
	//   - dst: a buffer from the allocator returned by ReadbackAllocator
	//
	// Returns:
	//   - error: ErrForeignBuffer, or any CopyBufferToBuffer error
	CopyToReadback(src *wgpu.Buffer, srcOffset uint64, dst readback.Buffer) error

	// EndFrame finishes the frame encoder and submits it. A render pass left open is closed.
	//
	// Returns:
	//   - error: ErrNoFrame, or the encoder error
	EndFrame() error

	// Present presents the surface and releases the swapchain texture.
	Present()

	// Poll pumps device callbacks, including buffer map callbacks.
	//
	// Parameters:
	//   - wait: block until the queue is empty
	Poll(wait bool)

	// ReadbackAllocator returns an allocator creating MapRead|CopyDst buffers.
	ReadbackAllocator() readback.Allocator

	// MapRead maps a readback buffer after the frame that filled it was submitted. done runs
	// from Poll with a copy of the buffer contents, after the buffer has been unmapped.
	//
	// Parameters:
	//   - buf: a buffer from ReadbackAllocator
	//   - done: the completion callback
	//
	// Returns:
	//   - error: ErrForeignBuffer, or the map request error
	MapRead(buf readback.Buffer, done func(data []byte, err error)) error
}

var _ Renderer = &renderer{}

// NewRenderer acquires the GPU device for w and configures its surface. Device acquisition
// failures panic since nothing can run without one.
//
// Parameters:
//   - backendType: the backend implementation to use
//   - w: the window providing the surface
//   - options: functional options
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(backendType RendererBackendType, w window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		clearColor:    [3]float64{0.1, 0.1, 0.1},
	}

	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(w.SurfaceDescriptor(), r.forceFallbackAdapter, msaa, r.clearColor)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	r.backend.ConfigureSurface(w.Width(), w.Height())

	common.Logger().Info("renderer ready", "msaa", uint32(msaa), "width", w.Width(), "height", w.Height())
	return r
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		switch p.Type() {
		case pipeline.PipelineTypeCompute:
			if err := r.backend.RegisterComputePipeline(p); err != nil {
				return fmt.Errorf("register %q: %w", key, err)
			}
		case pipeline.PipelineTypeRender:
			if err := r.backend.RegisterRenderPipeline(p); err != nil {
				return fmt.Errorf("register %q: %w", key, err)
			}
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) lookup(key string, want pipeline.PipelineType) (pipeline.Pipeline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, exists := r.pipelineCache[key]
	if !exists || p.Type() != want {
		return nil, fmt.Errorf("%w: %q", ErrPipelineNotFound, key)
	}
	return p, nil
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SampleCount() MSAASampleCount {
	return r.backend.SampleCount()
}

func (r *renderer) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	return r.backend.CreateBuffer(label, size, usage)
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferUsageOverrides, bufferSizeOverrides)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DispatchCompute(pipelineKey string, provider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error {
	p, err := r.lookup(pipelineKey, pipeline.PipelineTypeCompute)
	if err != nil {
		return err
	}
	return r.backend.DispatchCompute(p, provider, workGroupCount)
}

func (r *renderer) BeginRenderPass() error {
	return r.backend.BeginRenderPass()
}

func (r *renderer) SetPipeline(pipelineKey string) error {
	p, err := r.lookup(pipelineKey, pipeline.PipelineTypeRender)
	if err != nil {
		return err
	}
	return r.backend.SetRenderPipeline(p)
}

func (r *renderer) SetMesh(mesh bind_group_provider.BindGroupProvider) {
	r.backend.SetMesh(mesh)
}

func (r *renderer) SetBindGroup(group uint32, provider bind_group_provider.BindGroupProvider, dynamicOffsets []uint32) {
	r.backend.SetBindGroup(group, provider, dynamicOffsets)
}

func (r *renderer) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	r.backend.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (r *renderer) DrawIndexedIndirect(buffer *wgpu.Buffer, offset uint64) {
	r.backend.DrawIndexedIndirect(buffer, offset)
}

func (r *renderer) EndRenderPass() {
	r.backend.EndRenderPass()
}

func (r *renderer) CopyBufferToBuffer(src *wgpu.Buffer, srcOffset uint64, dst *wgpu.Buffer, dstOffset uint64, size uint64) error {
	return r.backend.CopyBufferToBuffer(src, srcOffset, dst, dstOffset, size)
}

func (r *renderer) CopyToReadback(src *wgpu.Buffer, srcOffset uint64, dst readback.Buffer) error {
	rb, ok := dst.(*readbackBuffer)
	if !ok {
		return ErrForeignBuffer
	}
	return r.backend.CopyBufferToBuffer(src, srcOffset, rb.buffer, 0, rb.size)
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Poll(wait bool) {
	r.backend.Poll(wait)
}

func (r *renderer) ReadbackAllocator() readback.Allocator {
	return &readbackAllocator{backend: r.backend}
}

func (r *renderer) MapRead(buf readback.Buffer, done func(data []byte, err error)) error {
	rb, ok := buf.(*readbackBuffer)
	if !ok {
		return ErrForeignBuffer
	}
	return rb.mapRead(done)
}
