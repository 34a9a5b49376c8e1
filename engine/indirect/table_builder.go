package indirect

// TableBuilderOption is a functional option for configuring a Table during construction.
type TableBuilderOption func(*tableImpl)

// WithFirstIndex sets the FirstIndex shared by every record.
//
// Parameters:
//   - firstIndex: offset into the index buffer
//
// Returns:
//   - TableBuilderOption: a function that applies the first index option to a table
func WithFirstIndex(firstIndex uint32) TableBuilderOption {
	return func(t *tableImpl) {
		t.template.FirstIndex = firstIndex
	}
}

// WithBaseVertex sets the BaseVertex shared by every record.
//
// Parameters:
//   - baseVertex: value added to each index
//
// Returns:
//   - TableBuilderOption: a function that applies the base vertex option to a table
func WithBaseVertex(baseVertex int32) TableBuilderOption {
	return func(t *tableImpl) {
		t.template.BaseVertex = baseVertex
	}
}

// WithFirstInstance sets the FirstInstance shared by every record.
// Values other than 0 require the indirect-first-instance device feature.
//
// Parameters:
//   - firstInstance: the first instance ID
//
// Returns:
//   - TableBuilderOption: a function that applies the first instance option to a table
func WithFirstInstance(firstInstance uint32) TableBuilderOption {
	return func(t *tableImpl) {
		t.template.FirstInstance = firstInstance
	}
}
