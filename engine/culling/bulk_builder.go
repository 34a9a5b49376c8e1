package culling

// BulkBuilderOption is a functional option for configuring the bulk culler during construction.
type BulkBuilderOption func(*bulkCuller)

// WithWorkers sets the number of pool workers. Values below 1 are clamped to 1.
//
// Parameters:
//   - workers: the worker count
//
// Returns:
//   - BulkBuilderOption: a function that applies the worker count to a bulk culler
func WithWorkers(workers int) BulkBuilderOption {
	return func(b *bulkCuller) {
		b.workers = max(workers, 1)
	}
}

// WithChunkSize sets how many instances a single pool task processes. Values below 1 are
// clamped to 1.
//
// Parameters:
//   - size: instances per task
//
// Returns:
//   - BulkBuilderOption: a function that applies the chunk size to a bulk culler
func WithChunkSize(size int) BulkBuilderOption {
	return func(b *bulkCuller) {
		b.chunkSize = max(size, 1)
	}
}
