// Package memory provides container-aware memory limit configuration and a
// pressure monitor that gates attribute computation.
//
// ConfigureFromEnv sets GOMEMLIMIT from the MEMORY_LIMIT environment
// variable (Kubernetes Downward API) when GOMEMLIMIT itself is unset,
// reserving headroom for image decode buffers outside the Go heap.
//
// Monitor samples heap usage against the limit: above the critical water
// mark it pauses callers blocked in WaitIfPaused and forces a collection,
// resuming once usage falls back below the high water mark. The sidecar
// attribute warm-up pool checks the monitor between files, so a vault of
// large images cannot run the process into its container limit.
package memory
