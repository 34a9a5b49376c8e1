// pre_processor.go implements the WGSL pre-processor. It replaces @gd: annotations with
// registered struct sources or generated binding declarations and keeps the declarations so
// the bind group layouts of a pipeline can be built from the same source.
package shader

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// registryEntry pairs a struct's WGSL source with its type name and byte size.
type registryEntry struct {
	// Source is the WGSL struct definition injected by @gd:include. Empty for builtins.
	Source string

	// Type is the WGSL type name emitted in generated declarations.
	Type string

	// Size is the record size in bytes, used as the layout's minimum binding size.
	Size uint64
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string

	// declarations holds the group annotations of the most recent Process call.
	declarations []Annotation
}

// PreProcessor turns annotated WGSL into plain WGSL.
type PreProcessor interface {
	// Process replaces @gd:include lines with the registered struct source and @gd:group lines
	// with @group/@binding declarations. The declarations list is reset on every call.
	//
	// Parameters:
	//   - source: the annotated WGSL source
	//
	// Returns:
	//   - string: the processed WGSL source
	//   - error: a malformed annotation, an unregistered struct, or a duplicate binding
	Process(source string) (string, error)

	// Declarations returns the group annotations collected by the last Process call,
	// in source order.
	//
	// Returns:
	//   - []Annotation: the declarations
	Declarations() []Annotation

	// Layouts builds one bind group layout per group from the last Process call's
	// declarations, indexed by group number. Groups with no declaration get an empty layout.
	//
	// Parameters:
	//   - label: prefix of each layout's label
	//   - visibility: the shader stages every entry is visible to
	//
	// Returns:
	//   - []wgpu.BindGroupLayoutDescriptor: the layouts
	Layouts(label string, visibility wgpu.ShaderStage) []wgpu.BindGroupLayoutDescriptor
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor. Struct types other than mat4 must be registered
// with WithStruct before shaders may include or bind them.
//
// Parameters:
//   - options: functional options registering struct sources
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor(options ...PreProcessorOption) PreProcessor {
	p := &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgMat4: {Type: "mat4x4<f32>", Size: 64},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgUniform:          "var<uniform>",
			annotationArgUniformDynamic:   "var<uniform>",
			annotationArgStorageRead:      "var<storage, read>",
			annotationArgStorageReadWrite: "var<storage, read_write>",
		},
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	included := make(map[AnnotationArg]bool)

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			entry, ok := p.structRegistry[a.Args[0]]
			if !ok || entry.Source == "" {
				return "", fmt.Errorf("line %d: no source registered for %q", a.Line, a.Args[0])
			}
			// Repeated includes would redeclare the struct.
			if included[a.Args[0]] {
				continue
			}
			included[a.Args[0]] = true
			out = append(out, strings.TrimRight(entry.Source, "\n"))
		case AnnotationTypeBindingGroup:
			elem, isArray := elementType(a.Args[2])
			entry, ok := p.structRegistry[elem]
			if !ok {
				return "", fmt.Errorf("line %d: struct %q is not registered", a.Line, elem)
			}
			for _, d := range p.declarations {
				if d.Group == a.Group && d.Binding == a.Binding {
					return "", fmt.Errorf("line %d: group %d binding %d already declared on line %d", a.Line, a.Group, a.Binding, d.Line)
				}
			}
			wgslType := entry.Type
			if isArray {
				wgslType = fmt.Sprintf("array<%s>", entry.Type)
			}
			a.MinBindingSize = entry.Size

			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;",
				a.Group, a.Binding, p.addressSpaceRegistry[a.Args[0]], a.Args[1], wgslType))
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return slices.Clone(p.declarations)
}

func (p *preProcessor) Layouts(label string, visibility wgpu.ShaderStage) []wgpu.BindGroupLayoutDescriptor {
	groups := -1
	for _, d := range p.declarations {
		groups = max(groups, d.Group)
	}
	layouts := make([]wgpu.BindGroupLayoutDescriptor, groups+1)
	for g := range layouts {
		layouts[g].Label = fmt.Sprintf("%s Group %d Layout", label, g)
	}

	for _, d := range p.declarations {
		layouts[d.Group].Entries = append(layouts[d.Group].Entries, wgpu.BindGroupLayoutEntry{
			Binding:    uint32(d.Binding),
			Visibility: visibility,
			Buffer: wgpu.BufferBindingLayout{
				Type:             bufferBindingType(d.Args[0]),
				HasDynamicOffset: d.Args[0] == annotationArgUniformDynamic,
				MinBindingSize:   d.MinBindingSize,
			},
		})
	}
	for g := range layouts {
		slices.SortFunc(layouts[g].Entries, func(a, b wgpu.BindGroupLayoutEntry) int {
			return cmp.Compare(a.Binding, b.Binding)
		})
	}
	return layouts
}

func bufferBindingType(space AnnotationArg) wgpu.BufferBindingType {
	switch space {
	case annotationArgStorageRead:
		return wgpu.BufferBindingTypeReadOnlyStorage
	case annotationArgStorageReadWrite:
		return wgpu.BufferBindingTypeStorage
	default:
		return wgpu.BufferBindingTypeUniform
	}
}
