/*
Package workers provides utilities for determining optimal worker pool sizes
in containerized environments.

When running in a container, the number of available CPUs may be limited by
cgroup constraints. Go 1.19+ sets GOMAXPROCS from the container CPU limit, but
runtime.NumCPU() still reports the host machine's count. The helpers here size
worker pools from GOMAXPROCS so the attribute warm-up scan respects container
resource limits.

	// CPU-intensive work (image decode, palette extraction)
	numWorkers := workers.ForCPU(8) // max 8 workers

	// I/O-bound work (sidecar reads and writes)
	numWorkers := workers.ForIO(16) // max 16 workers

	// Mixed work (read file, decode, write sidecar)
	numWorkers := workers.ForMixed(12) // max 12 workers

All functions respect the INDEX_WORKERS environment variable, allowing
operators to override the automatic calculation:

	env:
	- name: INDEX_WORKERS
	  value: "4"

All functions in this package are safe for concurrent use.
*/
package workers
