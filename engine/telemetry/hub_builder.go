package telemetry

import (
	"net/http"
	"time"
)

// HubBuilderOption is a functional option for configuring a Hub via NewHub.
type HubBuilderOption func(*hubImpl)

// WithBufferSize sets how many frames may wait for broadcast before Publish starts dropping.
//
// Parameters:
//   - n: the queue capacity, at least 1
//
// Returns:
//   - HubBuilderOption: a function that applies the buffer size to a hub
func WithBufferSize(n int) HubBuilderOption {
	return func(h *hubImpl) {
		h.bufferSize = n
	}
}

// WithWriteTimeout sets the per-message write deadline. A subscriber that misses it is dropped.
//
// Parameters:
//   - d: the write timeout
//
// Returns:
//   - HubBuilderOption: a function that applies the timeout to a hub
func WithWriteTimeout(d time.Duration) HubBuilderOption {
	return func(h *hubImpl) {
		if d > 0 {
			h.writeTimeout = d
		}
	}
}

// WithCheckOrigin replaces the upgrade origin check. The default accepts every origin.
//
// Parameters:
//   - check: returns true if the request origin is allowed
//
// Returns:
//   - HubBuilderOption: a function that applies the origin check to a hub
func WithCheckOrigin(check func(r *http.Request) bool) HubBuilderOption {
	return func(h *hubImpl) {
		h.upgrader.CheckOrigin = check
	}
}
