package scene

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/LeonYuanYao/orillusion-webgpu-samples/common"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/camera"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/culling"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/dispatch"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/indirect"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/instance"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/model"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/readback"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/renderer"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/renderer/bind_group_provider"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/renderer/pipeline"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// Pipeline keys registered by every scene.
const (
	RenderPipelineKey = "gpudriven render"
	UpdatePipelineKey = "gpudriven update"
	CullPipelineKey   = "gpudriven cull"
)

// DefaultReadbackInterval is the number of frames between GPU visibility readbacks.
const DefaultReadbackInterval = 30

// ErrNoInstances is returned by NewScene for an empty population.
var ErrNoInstances = errors.New("scene: population is empty")

//go:embed assets/render.wgsl
var renderSource string

// newPreProcessor registers every GPU record the scene's shaders include or bind.
func newPreProcessor() shader.PreProcessor {
	return shader.NewPreProcessor(
		shader.WithStruct(shader.AnnotationArgCamera, camera.GPUCameraUniformSource, "CameraUniform", camera.CameraUniformSize),
		shader.WithStruct(shader.AnnotationArgVertex, model.GPUVertexSource, "VertexInput", model.VertexStride),
		shader.WithStruct(shader.AnnotationArgModelData, instance.GPUModelDataSource, "ModelData", instance.ModelDataStride),
		shader.WithStruct(shader.AnnotationArgIndirectCommand, indirect.GPUIndirectCommandSource, "IndirectCommand", indirect.CommandStride),
		shader.WithStruct(shader.AnnotationArgGlobals, culling.GPUGlobalDataSource, "GlobalData", (&culling.GPUGlobalData{}).Size()),
	)
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.Mutex

	name     string
	renderer renderer.Renderer
	camera   camera.Camera
	mesh     model.Model

	store      instance.Store
	table      indirect.Table
	controller dispatch.Controller
	pool       readback.Pool

	cfg              dispatch.Config
	bulkWorkers      int
	readbackInterval uint64

	computeProvider bind_group_provider.BindGroupProvider
	cameraProvider  bind_group_provider.BindGroupProvider
	modelProvider   bind_group_provider.BindGroupProvider
	modelsBuffer    *wgpu.Buffer
	indirectBuffer  *wgpu.Buffer

	// frame state, touched only from the render goroutine
	passOpen bool
	passErr  error
	gpuOwned bool
}

// Scene binds an instance population, its command table and a dispatch controller to the
// GPU buffers of one renderer, and renders one frame per Render call.
//
// Model data lives in a single buffer of 256-byte records. The render pipeline reads record
// i as a dynamic-offset uniform, and the compute kernels read and write the whole buffer as
// storage. The indirect buffer holds one 20-byte record per instance.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// Controller returns the dispatch controller.
	Controller() dispatch.Controller

	// SetConfig forwards cfg to the controller. A rejected config leaves the modes unchanged.
	//
	// Parameters:
	//   - cfg: the new modes
	//
	// Returns:
	//   - error: the validation error, if any
	SetConfig(cfg dispatch.Config) error

	// Resize reconfigures the renderer surface and the camera aspect ratio.
	// Zero sizes (a minimized window) are ignored.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	Resize(width, height int)

	// Render encodes and presents one frame at time t: compute culling when the GPU backend
	// is active, the indirect or direct draws, and a periodic copy of the indirect buffer
	// into a readback buffer for the visible count.
	//
	// Parameters:
	//   - t: elapsed time in seconds
	//
	// Returns:
	//   - dispatch.FrameStats: what the frame did
	//   - error: a frame, culling or submission error
	Render(t float64) (dispatch.FrameStats, error)

	// Release frees the scene's GPU buffers and drains the readback pool.
	Release()
}

var (
	_ Scene                  = &scene{}
	_ dispatch.Submitter     = &scene{}
	_ culling.ComputeEncoder = &scene{}
)

// NewScene creates the scene's GPU resources on r: the pipelines, the mesh buffers, the
// model-data and indirect buffers, and the bind groups over them. The GPU culler is
// registered with the controller so every backend can be selected at runtime.
//
// Parameters:
//   - r: the renderer that owns the device
//   - options: functional options
//
// Returns:
//   - Scene: the scene
//   - error: ErrNoInstances, a controller configuration error, or a device error
func NewScene(r renderer.Renderer, options ...SceneBuilderOption) (Scene, error) {
	s := &scene{
		mu:               &sync.Mutex{},
		name:             "gpudriven",
		renderer:         r,
		cfg:              dispatch.DefaultConfig(),
		readbackInterval: DefaultReadbackInterval,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.camera == nil {
		s.camera = camera.NewCamera(camera.WithController(camera.NewCameraController()))
	}
	if s.mesh == nil {
		s.mesh = model.NewCube()
	}
	if s.store == nil {
		s.store = instance.NewStore()
	}
	if s.store.Len() == 0 {
		return nil, ErrNoInstances
	}
	s.table = indirect.NewTable(s.store.Len(), uint32(s.mesh.IndexCount()))

	ctrlOpts := []dispatch.ControllerBuilderOption{
		dispatch.WithConfig(s.cfg),
		dispatch.WithCuller(dispatch.BackendGPU, culling.NewGPU(s)),
	}
	if s.bulkWorkers > 0 {
		ctrlOpts = append(ctrlOpts, dispatch.WithBulkWorkers(s.bulkWorkers))
	}
	ctrl, err := dispatch.NewController(s.store, s.table, ctrlOpts...)
	if err != nil {
		return nil, err
	}
	s.controller = ctrl

	if err := s.initGPU(); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	s.pool = readback.NewPool(r.ReadbackAllocator())

	common.Logger().Info("scene ready",
		"name", s.name,
		"instances", s.store.Len(),
		"mesh", s.mesh.Name(),
		"config", ctrl.Config().String(),
	)
	return s, nil
}

// Pipelines pre-processes the scene's shaders and returns the render and compute pipelines
// with bind group layouts taken from the shaders' binding declarations.
//
// Returns:
//   - []pipeline.Pipeline: the render, update and cull pipelines
//   - error: a shader annotation error
func Pipelines() ([]pipeline.Pipeline, error) {
	pp := newPreProcessor()

	renderSrc, err := pp.Process(renderSource)
	if err != nil {
		return nil, fmt.Errorf("render shader: %w", err)
	}
	renderLayouts := pp.Layouts("Render", wgpu.ShaderStageVertex|wgpu.ShaderStageFragment)

	computeSrc, err := pp.Process(culling.KernelSource())
	if err != nil {
		return nil, fmt.Errorf("culling shader: %w", err)
	}
	computeLayouts := pp.Layouts("Culling", wgpu.ShaderStageCompute)

	return []pipeline.Pipeline{
		pipeline.NewPipeline(RenderPipelineKey, pipeline.PipelineTypeRender,
			pipeline.WithStage(pipeline.StageVertex, renderSrc, "vs_main"),
			pipeline.WithStage(pipeline.StageFragment, renderSrc, "fs_main"),
			pipeline.WithVertexLayouts(model.VertexLayout()),
			pipeline.WithBindGroupLayouts(renderLayouts...),
		),
		pipeline.NewPipeline(UpdatePipelineKey, pipeline.PipelineTypeCompute,
			pipeline.WithStage(pipeline.StageCompute, computeSrc, culling.KernelUpdate.EntryPoint()),
			pipeline.WithBindGroupLayouts(computeLayouts...),
		),
		pipeline.NewPipeline(CullPipelineKey, pipeline.PipelineTypeCompute,
			pipeline.WithStage(pipeline.StageCompute, computeSrc, culling.KernelCull.EntryPoint()),
			pipeline.WithBindGroupLayouts(computeLayouts...),
		),
	}, nil
}

// descriptor returns the layout descriptor of a registered pipeline's group.
func (s *scene) descriptor(key string, group int) wgpu.BindGroupLayoutDescriptor {
	p := s.renderer.Pipeline(key)
	if p == nil || group >= len(p.BindGroupLayoutDescriptors()) {
		return wgpu.BindGroupLayoutDescriptor{}
	}
	return p.BindGroupLayoutDescriptors()[group]
}

// layout returns the registered pipeline's bind group layout, or nil before registration.
func (s *scene) layout(key string, group int) *wgpu.BindGroupLayout {
	if p := s.renderer.Pipeline(key); p != nil {
		return p.BindGroupLayout(group)
	}
	return nil
}

// initGPU registers the pipelines and creates every buffer and bind group, then uploads the
// initial model data and command table.
func (s *scene) initGPU() error {
	r := s.renderer
	pipelines, err := Pipelines()
	if err != nil {
		return err
	}
	if err := r.RegisterPipelines(pipelines...); err != nil {
		return err
	}

	meshProvider := bind_group_provider.NewBindGroupProvider(s.mesh.Name() + " Mesh")
	if err := r.InitMeshBuffers(meshProvider, s.mesh.VertexData(), s.mesh.IndexData(), s.mesh.IndexCount()); err != nil {
		return fmt.Errorf("mesh buffers: %w", err)
	}
	s.mesh.SetMeshProvider(meshProvider)

	n := uint64(s.store.Len())
	s.modelsBuffer, err = r.CreateBuffer("Model Data", n*instance.ModelDataStride,
		wgpu.BufferUsageStorage|wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("model data buffer: %w", err)
	}
	s.indirectBuffer, err = r.CreateBuffer("Indirect Commands", n*indirect.CommandStride,
		wgpu.BufferUsageStorage|wgpu.BufferUsageIndirect|wgpu.BufferUsageCopyDst|wgpu.BufferUsageCopySrc)
	if err != nil {
		return fmt.Errorf("indirect buffer: %w", err)
	}

	s.cameraProvider = bind_group_provider.NewBindGroupProvider("Camera",
		bind_group_provider.WithBindGroupLayout(s.layout(RenderPipelineKey, 0)),
	)
	if err := r.InitBindGroup(s.cameraProvider, s.descriptor(RenderPipelineKey, 0), nil, nil); err != nil {
		return fmt.Errorf("camera bind group: %w", err)
	}

	s.modelProvider = bind_group_provider.NewBindGroupProvider("Model",
		bind_group_provider.WithBindGroupLayout(s.layout(RenderPipelineKey, 1)),
		bind_group_provider.WithBuffer(0, s.modelsBuffer),
		bind_group_provider.WithBindingSize(0, 64),
	)
	if err := r.InitBindGroup(s.modelProvider, s.descriptor(RenderPipelineKey, 1), nil, nil); err != nil {
		return fmt.Errorf("model bind group: %w", err)
	}

	s.computeProvider = bind_group_provider.NewBindGroupProvider("Culling",
		bind_group_provider.WithBindGroupLayout(s.layout(UpdatePipelineKey, 0)),
		bind_group_provider.WithBuffer(culling.BindingModels, s.modelsBuffer),
		bind_group_provider.WithBuffer(culling.BindingCommands, s.indirectBuffer),
	)
	if err := r.InitBindGroup(s.computeProvider, s.descriptor(UpdatePipelineKey, 0), nil, nil); err != nil {
		return fmt.Errorf("culling bind group: %w", err)
	}

	r.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: s.computeProvider, Binding: culling.BindingModels, Data: s.store.ModelData()},
		{Provider: s.computeProvider, Binding: culling.BindingCommands, Data: s.table.Marshal()},
	})
	s.table.Flush()
	return nil
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Camera() camera.Camera {
	return s.camera
}

func (s *scene) Renderer() renderer.Renderer {
	return s.renderer
}

func (s *scene) Controller() dispatch.Controller {
	return s.controller
}

func (s *scene) SetConfig(cfg dispatch.Config) error {
	return s.controller.SetConfig(cfg)
}

func (s *scene) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	// Waits for an in-flight frame so the surface is never reconfigured mid-encode.
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderer.Resize(width, height)
	s.camera.SetAspect(float32(width) / float32(height))
}

func (s *scene) Render(t float64) (dispatch.FrameStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.camera.Update()
	frustum := s.camera.Frustum()
	uniform := s.camera.Uniform()

	if err := s.renderer.BeginFrame(); err != nil {
		return dispatch.FrameStats{}, fmt.Errorf("scene: begin frame: %w", err)
	}
	s.passOpen = false
	s.passErr = nil

	s.renderer.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: s.cameraProvider, Binding: 0, Data: uniform.Marshal()},
	})

	stats, frameErr := s.controller.Frame(t, frustum, s)
	if frameErr == nil {
		// Clears the screen when nothing was drawn.
		s.ensurePass()
		frameErr = s.passErr
	}
	s.renderer.EndRenderPass()

	gpu := stats.Config.CullingEnabled && stats.Config.IndirectDraw && stats.Config.Backend == dispatch.BackendGPU
	s.upload(gpu)

	var pending readback.Buffer
	if frameErr == nil && gpu && s.readbackInterval > 0 && stats.Frame%s.readbackInterval == 0 {
		pending = s.copyVisibility()
	}

	if err := s.renderer.EndFrame(); err != nil {
		if pending != nil {
			s.release(pending)
		}
		s.renderer.Present()
		return stats, errors.Join(frameErr, fmt.Errorf("scene: end frame: %w", err))
	}
	if pending != nil {
		s.mapVisibility(pending)
	}
	s.renderer.Present()
	s.renderer.Poll(false)
	return stats, frameErr
}

// upload queues this frame's host-side writes. Queue writes land before the frame's command
// buffer runs, so they are ordered ahead of the compute and render passes already encoded.
//
// While the GPU backend is active the GPU owns the model data: the host copy is uploaded once
// on entry, from WriteGlobals, and then left alone. On leaving it the whole command table is
// re-sent since the cull kernel overwrote the instance counts.
func (s *scene) upload(gpu bool) {
	var writes []bind_group_provider.BufferWrite
	if !gpu {
		if s.gpuOwned {
			s.gpuOwned = false
			s.table.MarkAllDirty()
		}
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: s.computeProvider, Binding: culling.BindingModels, Data: s.store.ModelData(),
		})
	}
	for _, w := range s.table.Flush() {
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: s.computeProvider, Binding: culling.BindingCommands, Offset: w.Offset, Data: w.Data,
		})
	}
	s.renderer.WriteBuffers(writes)
}

// copyVisibility copies the indirect buffer into a pooled readback buffer.
func (s *scene) copyVisibility() readback.Buffer {
	size := uint64(s.store.Len()) * indirect.CommandStride
	buf, err := s.pool.Acquire(size)
	if err != nil {
		common.Logger().Warn("readback buffer unavailable", "error", err)
		return nil
	}
	if err := s.renderer.CopyToReadback(s.indirectBuffer, 0, buf); err != nil {
		common.Logger().Warn("readback copy failed", "error", err)
		s.release(buf)
		return nil
	}
	return buf
}

// mapVisibility maps buf after submission and reports its visible count to the controller
// from the map callback.
func (s *scene) mapVisibility(buf readback.Buffer) {
	err := s.renderer.MapRead(buf, func(data []byte, err error) {
		defer s.release(buf)
		if err != nil {
			common.Logger().Warn("visibility readback failed", "error", err)
			return
		}
		visible := CountVisible(data)
		s.controller.ReportGPUVisible(visible)
		common.Logger().Debug("gpu visibility read back", "visible", visible)
	})
	if err != nil {
		common.Logger().Warn("visibility readback not started", "error", err)
		s.release(buf)
	}
}

// release returns buf to the pool, logging when the pool refuses it.
func (s *scene) release(buf readback.Buffer) {
	if err := s.pool.Release(buf); err != nil {
		common.Logger().Warn("readback buffer not returned", "error", err)
	}
}

// CountVisible counts the indirect records in data whose instance count is non-zero.
//
// Parameters:
//   - data: packed 20-byte indirect records
//
// Returns:
//   - int: the number of visible records
func CountVisible(data []byte) int {
	visible := 0
	for off := 0; off+indirect.CommandStride <= len(data); off += indirect.CommandStride {
		if indirect.UnmarshalCommand(data[off:]).InstanceCount != 0 {
			visible++
		}
	}
	return visible
}

// ensurePass opens the render pass and binds the pipeline, mesh and camera on first use.
// Compute dispatches must all be encoded before this runs.
func (s *scene) ensurePass() bool {
	if s.passOpen || s.passErr != nil {
		return s.passErr == nil
	}
	if err := s.renderer.BeginRenderPass(); err != nil {
		s.passErr = fmt.Errorf("scene: begin render pass: %w", err)
		return false
	}
	s.passOpen = true
	if err := s.renderer.SetPipeline(RenderPipelineKey); err != nil {
		s.passErr = fmt.Errorf("scene: %w", err)
		return false
	}
	s.renderer.SetMesh(s.mesh.MeshProvider())
	s.renderer.SetBindGroup(0, s.cameraProvider, nil)
	return true
}

// BindInstance selects instance i's model record through the dynamic uniform offset.
func (s *scene) BindInstance(i uint32) {
	if !s.ensurePass() {
		return
	}
	s.renderer.SetBindGroup(1, s.modelProvider, []uint32{i * instance.ModelDataStride})
}

func (s *scene) DrawIndexed(cmd indirect.Command) {
	if !s.ensurePass() {
		return
	}
	s.renderer.DrawIndexed(cmd.IndexCount, cmd.InstanceCount, cmd.FirstIndex, cmd.BaseVertex, cmd.FirstInstance)
}

func (s *scene) DrawIndexedIndirect(offset uint64) {
	if !s.ensurePass() {
		return
	}
	s.renderer.DrawIndexedIndirect(s.indirectBuffer, offset)
}

// WriteGlobals stages the GlobalData uniform. On the first GPU frame it also hands the host
// model data to the device, before the GPU culler advances the host copy.
func (s *scene) WriteGlobals(data []byte) error {
	if s.passOpen {
		return renderer.ErrPassOpen
	}
	writes := []bind_group_provider.BufferWrite{
		{Provider: s.computeProvider, Binding: culling.BindingGlobals, Data: data},
	}
	if !s.gpuOwned {
		s.gpuOwned = true
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: s.computeProvider, Binding: culling.BindingModels, Data: s.store.ModelData(),
		})
		common.Logger().Debug("model data handed to the gpu")
	}
	s.renderer.WriteBuffers(writes)
	return nil
}

func (s *scene) Dispatch(kernel culling.Kernel, workgroups uint32) error {
	key := UpdatePipelineKey
	if kernel == culling.KernelCull {
		key = CullPipelineKey
	}
	return s.renderer.DispatchCompute(key, s.computeProvider, [3]uint32{workgroups, 1, 1})
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pool.Drain()
	for _, p := range []bind_group_provider.BindGroupProvider{s.computeProvider, s.cameraProvider, s.modelProvider, s.mesh.MeshProvider()} {
		if p != nil {
			p.Release()
		}
	}
	for _, buf := range []*wgpu.Buffer{s.modelsBuffer, s.indirectBuffer} {
		if buf != nil {
			buf.Destroy()
			buf.Release()
		}
	}
	s.modelsBuffer, s.indirectBuffer = nil, nil
	common.Logger().Info("scene released", "name", s.name)
}
