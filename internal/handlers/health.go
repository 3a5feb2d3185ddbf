package handlers

import (
	"net/http"
	"runtime"
	"time"

	"media-index/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Index summary
	TotalFiles int `json:"totalFiles"`
	TotalTags  int `json:"totalTags"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck reports process health plus an index summary. It returns 200
// as soon as the process serves requests; readiness gating happens in Ready.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	stats := h.index.GetStats()
	response := HealthResponse{
		Ready:        h.index.Initialized(),
		Version:      startup.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		TotalFiles:   stats.TotalImages + stats.TotalVideos + stats.TotalOther,
		TotalTags:    stats.TotalTags,
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}
	if response.Ready {
		response.Status = statusHealthy
	} else {
		response.Status = statusStarting
	}
	writeJSON(w, response)
}

// Ready returns 200 once the initial vault scan has completed, 503 before.
func (h *Handlers) Ready(w http.ResponseWriter, _ *http.Request) {
	if !h.index.Initialized() {
		writeJSONError(w, "index not initialized", http.StatusServiceUnavailable)
		return
	}
	writeJSONStatus(w, "ready")
}
