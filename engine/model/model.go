package model

import (
	"encoding/binary"

	"github.com/LeonYuanYao/orillusion-webgpu-samples/common"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/renderer/bind_group_provider"
	"github.com/go-gl/mathgl/mgl32"
)

// model is the implementation of the Model interface.
type model struct {
	name         string
	meshProvider bind_group_provider.BindGroupProvider

	vertices              []GPUVertex
	indices               []uint32
	vertexData, indexData []byte
	bounds                common.Box
}

// Model is a static indexed mesh: host-side vertex and index data plus the provider that holds
// its GPU buffers once uploaded.
type Model interface {
	// Name returns the model identifier.
	Name() string

	// MeshProvider returns the provider holding the uploaded vertex and index buffers.
	MeshProvider() bind_group_provider.BindGroupProvider

	// SetMeshProvider stores the provider the renderer uploaded the mesh into.
	SetMeshProvider(provider bind_group_provider.BindGroupProvider)

	// Vertices returns the host copy of the vertices.
	Vertices() []GPUVertex

	// Indices returns the host copy of the triangle indices.
	Indices() []uint32

	// VertexData returns the vertices packed for upload, VertexStride bytes each.
	VertexData() []byte

	// IndexData returns the indices packed as little-endian uint32.
	IndexData() []byte

	// IndexCount returns the number of indices.
	IndexCount() int

	// Bounds returns the model-space box enclosing every vertex.
	//
	// Returns:
	//   - common.Box: the bounds, empty for a model without vertices
	Bounds() common.Box
}

var _ Model = &model{}

// NewModel creates a Model from the given options.
//
// Parameters:
//   - options: functional options; WithMesh supplies the geometry
//
// Returns:
//   - Model: the model
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{bounds: common.EmptyBox()}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// setMesh copies the geometry in, packs it and recomputes the bounds.
func (m *model) setMesh(vertices []GPUVertex, indices []uint32) {
	m.vertices = append([]GPUVertex(nil), vertices...)
	m.indices = append([]uint32(nil), indices...)

	m.vertexData = make([]byte, len(vertices)*VertexStride)
	m.bounds = common.EmptyBox()
	for i := range m.vertices {
		v := &m.vertices[i]
		v.MarshalInto(m.vertexData[i*VertexStride:])
		m.bounds = m.bounds.ExpandByPoint(mgl32.Vec3(v.Position))
	}

	m.indexData = make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(m.indexData[i*4:], idx)
	}
}

func (m *model) Name() string {
	return m.name
}

func (m *model) MeshProvider() bind_group_provider.BindGroupProvider {
	return m.meshProvider
}

func (m *model) SetMeshProvider(provider bind_group_provider.BindGroupProvider) {
	m.meshProvider = provider
}

func (m *model) Vertices() []GPUVertex {
	return m.vertices
}

func (m *model) Indices() []uint32 {
	return m.indices
}

func (m *model) VertexData() []byte {
	return m.vertexData
}

func (m *model) IndexData() []byte {
	return m.indexData
}

func (m *model) IndexCount() int {
	return len(m.indices)
}

func (m *model) Bounds() common.Box {
	return m.bounds
}
