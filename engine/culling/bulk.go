package culling

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/common"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/indirect"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/instance"
)

// DefaultChunkSize is the number of instances each pool task updates and tests.
const DefaultChunkSize = 1024

type bulkCuller struct {
	workers   int
	chunkSize int
	pool      worker.DynamicWorkerPool

	// visible is written by disjoint index ranges from pool workers and folded into the
	// table after the barrier.
	visible []bool
}

// NewBulk returns a Culler that splits the population into chunks processed on a reusable
// worker pool. Each chunk updates and tests its own disjoint index range, and the table is
// written on the caller's goroutine once every chunk has finished.
//
// Parameters:
//   - options: functional options for worker count and chunk size
//
// Returns:
//   - Culler: the bulk culler
func NewBulk(options ...BulkBuilderOption) Culler {
	b := &bulkCuller{
		workers:   max(runtime.NumCPU()-1, 1),
		chunkSize: DefaultChunkSize,
	}
	for _, option := range options {
		option(b)
	}
	b.pool = worker.NewDynamicWorkerPool(b.workers, 256, 1*time.Second)
	common.Logger().Info("bulk culler ready", "workers", b.workers, "chunk", b.chunkSize)
	return b
}

func (b *bulkCuller) Cull(store instance.Store, table indirect.Table, frustum common.Frustum, t float64) error {
	if err := checkSizes(store, table); err != nil {
		return err
	}
	n := store.Len()
	if cap(b.visible) < n {
		b.visible = make([]bool, n)
	}
	visible := b.visible[:n]

	// Workers are reused across frames. The WaitGroup is the per-frame barrier.
	var wg sync.WaitGroup
	taskID := 0
	for lo := 0; lo < n; lo += b.chunkSize {
		hi := min(lo+b.chunkSize, n)
		wg.Add(1)
		id := taskID
		taskID++
		b.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				store.UpdateRange(lo, hi, t)
				for i := lo; i < hi; i++ {
					visible[i] = frustum.IntersectsBox(store.Box(i))
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	for i, v := range visible {
		table.SetVisible(i, v)
	}
	return nil
}
