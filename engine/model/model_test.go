package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestGPUVertexLayout(t *testing.T) {
	v := GPUVertex{
		Position: [3]float32{1, 2, 3},
		Normal:   [3]float32{0, 1, 0},
		TexCoord: [2]float32{0.5, 0.25},
		Color:    [4]float32{1, 0, 0, 1},
		Tangent:  [4]float32{1, 0, 0, -1},
	}
	if got := v.Size(); got != VertexStride {
		t.Fatalf("Size() = %d, want %d", got, VertexStride)
	}
	buf := v.Marshal()
	if len(buf) != VertexStride {
		t.Fatalf("len(Marshal()) = %d, want %d", len(buf), VertexStride)
	}

	tests := []struct {
		name   string
		offset int
		want   float32
	}{
		{"position z", 8, 3},
		{"normal y", 16, 1},
		{"uv v", 28, 0.25},
		{"color a", 44, 1},
		{"tangent w", 60, -1},
	}
	for _, tt := range tests {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[tt.offset:]))
		if got != tt.want {
			t.Errorf("%s at offset %d = %v, want %v", tt.name, tt.offset, got, tt.want)
		}
	}

	layout := VertexLayout()
	if layout.ArrayStride != VertexStride {
		t.Errorf("ArrayStride = %d, want %d", layout.ArrayStride, VertexStride)
	}
	if len(layout.Attributes) != 5 {
		t.Errorf("len(Attributes) = %d, want 5", len(layout.Attributes))
	}
}

func TestCubeMesh(t *testing.T) {
	vertices, indices := CubeMesh()
	if len(vertices) != 24 {
		t.Fatalf("len(vertices) = %d, want 24", len(vertices))
	}
	if len(indices) != CubeIndexCount {
		t.Fatalf("len(indices) = %d, want %d", len(indices), CubeIndexCount)
	}

	for tri := 0; tri < len(indices); tri += 3 {
		a := mgl32.Vec3(vertices[indices[tri]].Position)
		b := mgl32.Vec3(vertices[indices[tri+1]].Position)
		c := mgl32.Vec3(vertices[indices[tri+2]].Position)
		n := mgl32.Vec3(vertices[indices[tri]].Normal)
		if face := b.Sub(a).Cross(c.Sub(a)); face.Dot(n) <= 0 {
			t.Errorf("triangle %d winds against its normal %v", tri/3, n)
		}
	}
}

func TestCubeModel(t *testing.T) {
	m := NewCube()

	if m.Name() != "cube" {
		t.Errorf("Name() = %q, want %q", m.Name(), "cube")
	}
	if m.IndexCount() != CubeIndexCount {
		t.Errorf("IndexCount() = %d, want %d", m.IndexCount(), CubeIndexCount)
	}
	if got, want := len(m.VertexData()), 24*VertexStride; got != want {
		t.Errorf("len(VertexData()) = %d, want %d", got, want)
	}
	if got, want := len(m.IndexData()), CubeIndexCount*4; got != want {
		t.Errorf("len(IndexData()) = %d, want %d", got, want)
	}
	if got := binary.LittleEndian.Uint32(m.IndexData()[8:]); got != 2 {
		t.Errorf("third index = %d, want 2", got)
	}

	b := m.Bounds()
	if b.Min != (mgl32.Vec3{-0.5, -0.5, -0.5}) || b.Max != (mgl32.Vec3{0.5, 0.5, 0.5}) {
		t.Errorf("Bounds() = %v, want unit box", b)
	}
}

func TestEmptyModelBounds(t *testing.T) {
	m := NewModel(WithName("empty"))
	if !m.Bounds().IsEmpty() {
		t.Errorf("Bounds() = %v, want empty", m.Bounds())
	}
	if m.IndexCount() != 0 {
		t.Errorf("IndexCount() = %d, want 0", m.IndexCount())
	}
}
