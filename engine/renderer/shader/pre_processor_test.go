package shader

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

const testRecord = "struct Record {\n    value: f32,\n}\n"

func newTestPreProcessor() PreProcessor {
	return NewPreProcessor(
		WithStruct(AnnotationArgModelData, testRecord, "Record", 256),
		WithStruct(AnnotationArgGlobals, "struct Globals {\n    n: u32,\n}\n", "Globals", 16),
	)
}

func TestProcess(t *testing.T) {
	src := strings.Join([]string{
		"//@gd:include model_data",
		"//@gd:include globals",
		"//@gd:include model_data",
		"//@gd:group 0 0 uniform globals globals",
		"//@gd:group 0 1 storage_read_write records array<model_data>",
		"//@gd:group 1 0 uniform_dynamic model mat4",
		"// a plain comment",
		"fn main() {}",
	}, "\n")

	p := newTestPreProcessor()
	got, err := p.Process(src)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	for _, want := range []string{
		"@group(0) @binding(0) var<uniform> globals: Globals;",
		"@group(0) @binding(1) var<storage, read_write> records: array<Record>;",
		"@group(1) @binding(0) var<uniform> model: mat4x4<f32>;",
		"// a plain comment",
		"fn main() {}",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Process() output missing %q", want)
		}
	}
	if n := strings.Count(got, "struct Record"); n != 1 {
		t.Errorf("struct Record declared %d times, want 1", n)
	}
	if strings.Contains(got, annotationPrefix) {
		t.Errorf("Process() output still contains annotations:\n%s", got)
	}

	decls := p.Declarations()
	if len(decls) != 3 {
		t.Fatalf("len(Declarations()) = %d, want 3", len(decls))
	}
	if decls[1].MinBindingSize != 256 || decls[2].MinBindingSize != 64 {
		t.Errorf("MinBindingSize = %d, %d, want 256, 64", decls[1].MinBindingSize, decls[2].MinBindingSize)
	}
}

func TestProcessErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty annotation", "//@gd:"},
		{"unknown type", "//@gd:define FOO"},
		{"unknown struct", "//@gd:include light"},
		{"unregistered struct", "//@gd:include camera"},
		{"builtin has no source", "//@gd:include mat4"},
		{"missing args", "//@gd:group 0 0 uniform globals"},
		{"bad group", "//@gd:group x 0 uniform globals globals"},
		{"negative binding", "//@gd:group 0 -1 uniform globals globals"},
		{"bad address space", "//@gd:group 0 0 private globals globals"},
		{"uniform array", "//@gd:group 0 0 uniform records array<model_data>"},
		{"duplicate binding", "//@gd:group 0 0 uniform a globals\n//@gd:group 0 0 uniform b globals"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := newTestPreProcessor().Process(tt.src); err == nil {
				t.Errorf("Process(%q) error = nil, want error", tt.src)
			}
		})
	}
}

func TestLayouts(t *testing.T) {
	p := newTestPreProcessor()
	src := strings.Join([]string{
		"//@gd:group 0 2 storage_read records array<model_data>",
		"//@gd:group 0 0 uniform globals globals",
		"//@gd:group 2 0 uniform_dynamic model mat4",
	}, "\n")
	if _, err := p.Process(src); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	layouts := p.Layouts("Test", wgpu.ShaderStageCompute)
	if len(layouts) != 3 {
		t.Fatalf("len(Layouts()) = %d, want 3", len(layouts))
	}
	if len(layouts[1].Entries) != 0 {
		t.Errorf("group 1 has %d entries, want 0", len(layouts[1].Entries))
	}
	if layouts[0].Label != "Test Group 0 Layout" {
		t.Errorf("Label = %q, want %q", layouts[0].Label, "Test Group 0 Layout")
	}

	g0 := layouts[0].Entries
	if len(g0) != 2 || g0[0].Binding != 0 || g0[1].Binding != 2 {
		t.Fatalf("group 0 entries = %+v, want bindings 0 and 2 in order", g0)
	}
	tests := []struct {
		name    string
		entry   wgpu.BindGroupLayoutEntry
		kind    wgpu.BufferBindingType
		dynamic bool
		size    uint64
	}{
		{"globals", g0[0], wgpu.BufferBindingTypeUniform, false, 16},
		{"records", g0[1], wgpu.BufferBindingTypeReadOnlyStorage, false, 256},
		{"model", layouts[2].Entries[0], wgpu.BufferBindingTypeUniform, true, 64},
	}
	for _, tt := range tests {
		b := tt.entry.Buffer
		if b.Type != tt.kind || b.HasDynamicOffset != tt.dynamic || b.MinBindingSize != tt.size {
			t.Errorf("%s: buffer = %+v, want type %v dynamic %t size %d", tt.name, b, tt.kind, tt.dynamic, tt.size)
		}
		if tt.entry.Visibility != wgpu.ShaderStageCompute {
			t.Errorf("%s: Visibility = %v, want compute", tt.name, tt.entry.Visibility)
		}
	}
}
