// annotations.go defines the annotation syntax of the WGSL pre-processor. Annotations are
// single-line WGSL comments prefixed with @gd: that inject registered struct sources and
// generate @group/@binding declarations, so shader bindings and their bind group layouts
// come from one place.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix marks an annotation inside a WGSL comment line.
const annotationPrefix = "@gd:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct.
	//
	// Syntax: //@gd:include <struct_type>
	//
	// Example: //@gd:include camera
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a @group/@binding variable declaration and records
	// it in the pre-processor's declarations list.
	//
	// Syntax: //@gd:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@gd:group 0 1 storage_read_write models array<model_data>
	AnnotationTypeBindingGroup AnnotationType = "group"
)

// Annotation is one parsed @gd: annotation.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments:
	//   - include: [0] = struct type key
	//   - group:   [0] = address space, [1] = var name, [2] = type key, optionally array<key>
	Args []AnnotationArg

	// Line is the 1-based source line, for error reporting.
	Line int

	// Group and Binding are set for group annotations.
	Group   int
	Binding int

	// MinBindingSize is the byte size of the bound type, or of one element for arrays.
	// Filled in by the pre-processor from the struct registry.
	MinBindingSize uint64
}

// AnnotationArg is a typed annotation argument.
type AnnotationArg string

// Struct type arguments. Each names a GPU record with an embedded .wgsl source registered
// through WithStruct, except AnnotationArgMat4 which is a builtin.
const (
	// AnnotationArgCamera identifies the CameraUniform struct.
	AnnotationArgCamera AnnotationArg = "camera"

	// AnnotationArgVertex identifies the VertexInput struct.
	AnnotationArgVertex AnnotationArg = "vertex"

	// AnnotationArgModelData identifies the 256-byte ModelData record.
	AnnotationArgModelData AnnotationArg = "model_data"

	// AnnotationArgIndirectCommand identifies the 20-byte IndirectCommand record.
	AnnotationArgIndirectCommand AnnotationArg = "indirect_command"

	// AnnotationArgGlobals identifies the GlobalData uniform of the compute kernels.
	AnnotationArgGlobals AnnotationArg = "globals"

	// AnnotationArgMat4 is a bare mat4x4<f32>.
	AnnotationArgMat4 AnnotationArg = "mat4"
)

// Address space arguments of group annotations.
const (
	annotationArgUniform          AnnotationArg = "uniform"
	annotationArgUniformDynamic   AnnotationArg = "uniform_dynamic"
	annotationArgStorageRead      AnnotationArg = "storage_read"
	annotationArgStorageReadWrite AnnotationArg = "storage_read_write"
)

var validStructTypes = []AnnotationArg{
	AnnotationArgCamera,
	AnnotationArgVertex,
	AnnotationArgModelData,
	AnnotationArgIndirectCommand,
	AnnotationArgGlobals,
	AnnotationArgMat4,
}

var validAddressSpaces = []AnnotationArg{
	annotationArgUniform,
	annotationArgUniformDynamic,
	annotationArgStorageRead,
	annotationArgStorageReadWrite,
}

// elementType strips an array<> wrapper from a type argument.
func elementType(arg AnnotationArg) (AnnotationArg, bool) {
	inner, ok := strings.CutPrefix(string(arg), "array<")
	if !ok {
		return arg, false
	}
	return AnnotationArg(strings.TrimSuffix(inner, ">")), true
}

// parseAnnotation parses one WGSL source line. Lines without the annotation prefix return
// nil and no error.
//
// Parameters:
//   - line: the raw WGSL source line
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @gd annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case annotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @gd include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @gd include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case AnnotationTypeBindingGroup:
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @gd group annotation requires group, binding, address space, var name and type", lineNum)
		}
		group, err := strconv.Atoi(args[1])
		if err != nil || group < 0 {
			return nil, fmt.Errorf("line %d: invalid group number %q in @gd group annotation", lineNum, args[1])
		}
		binding, err := strconv.Atoi(args[2])
		if err != nil || binding < 0 {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @gd group annotation", lineNum, args[2])
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @gd group annotation", lineNum, args[3])
		}
		elem, isArray := elementType(AnnotationArg(args[5]))
		if !slices.Contains(validStructTypes, elem) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @gd group annotation", lineNum, args[5])
		}
		if isArray && !isStorage(AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: runtime array %q needs a storage address space", lineNum, args[5])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   group,
			Binding: binding,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @gd annotation type %q", lineNum, args[0])
	}
}

func isStorage(space AnnotationArg) bool {
	return space == annotationArgStorageRead || space == annotationArgStorageReadWrite
}
