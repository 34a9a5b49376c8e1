package shader

// PreProcessorOption is a functional option for configuring a PreProcessor via NewPreProcessor.
type PreProcessorOption func(*preProcessor)

// WithStruct registers the WGSL source of a GPU record under key.
//
// Parameters:
//   - key: the struct type argument used in annotations
//   - source: the WGSL struct definition (and any helper functions)
//   - typeName: the WGSL type name declared by source
//   - size: the record size in bytes
//
// Returns:
//   - PreProcessorOption: a function that registers the struct
func WithStruct(key AnnotationArg, source, typeName string, size int) PreProcessorOption {
	return func(p *preProcessor) {
		p.structRegistry[key] = registryEntry{Source: source, Type: typeName, Size: uint64(size)}
	}
}
