package bind_group_provider

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestBindingSize(t *testing.T) {
	p := NewBindGroupProvider("models", WithBindingSize(0, 64))

	tests := []struct {
		name    string
		binding int
		want    uint64
	}{
		{name: "explicit", binding: 0, want: 64},
		{name: "default whole size", binding: 1, want: wgpu.WholeSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.BindingSize(tt.binding); got != tt.want {
				t.Errorf("BindingSize(%d) = %d, want %d", tt.binding, got, tt.want)
			}
		})
	}

	p.SetBindingSize(1, 256)
	if got := p.BindingSize(1); got != 256 {
		t.Errorf("BindingSize(1) after SetBindingSize = %d, want 256", got)
	}
}

func TestProviderAccessors(t *testing.T) {
	p := NewBindGroupProvider("cube")
	if p.Label() != "cube" {
		t.Errorf("Label() = %q, want %q", p.Label(), "cube")
	}
	if p.Buffer(0) != nil {
		t.Error("Buffer(0) should be nil on a new provider")
	}
	p.SetIndexCount(36)
	if p.IndexCount() != 36 {
		t.Errorf("IndexCount() = %d, want 36", p.IndexCount())
	}
	p.Release()
	if p.IndexCount() != 0 {
		t.Errorf("IndexCount() after Release = %d, want 0", p.IndexCount())
	}
	if len(p.Buffers()) != 0 {
		t.Errorf("len(Buffers()) after Release = %d, want 0", len(p.Buffers()))
	}
}
