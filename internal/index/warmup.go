package index

import (
	"sync"
	"time"

	"media-index/internal/logging"
)

// Gate throttles warm-up work under resource pressure. WaitIfPaused blocks
// while work should pause and returns false when the gate shut down.
type Gate interface {
	WaitIfPaused() bool
}

// WarmUp runs Update on every indexed record with a bounded worker pool,
// so sidecar attributes are computed ahead of the first query instead of
// on demand. Palette extraction is CPU- and memory-heavy; callers size the
// pool with the workers package and may pass a memory gate (nil means no
// throttling).
func (ix *Index) WarmUp(workerCount int, gate Gate) {
	if workerCount < 1 {
		workerCount = 1
	}
	records := ix.Files()
	if len(records) == 0 {
		return
	}

	start := time.Now()
	logging.Info("Warming sidecar attributes for %d files with %d workers", len(records), workerCount)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				// A closed gate means shutdown: drain without working.
				if gate != nil && !gate.WaitIfPaused() {
					continue
				}
				records[j].Update()
			}
		}()
	}
	for i := range records {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	logging.Info("Sidecar warm-up complete in %v", time.Since(start))
}
