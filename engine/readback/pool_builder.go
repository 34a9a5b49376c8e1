package readback

// PoolBuilderOption is a functional option for configuring a Pool during construction.
type PoolBuilderOption func(*poolImpl)

// WithMaxFreePerSize caps how many idle buffers of one size the pool keeps.
// Buffers released beyond the cap are destroyed.
//
// Parameters:
//   - n: the idle buffer cap per size, at least 1
//
// Returns:
//   - PoolBuilderOption: a function that applies the cap to a pool
func WithMaxFreePerSize(n int) PoolBuilderOption {
	return func(p *poolImpl) {
		p.maxPerSize = max(n, 1)
	}
}
