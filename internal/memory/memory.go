package memory

import (
	"math"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"media-index/internal/logging"
	"media-index/internal/metrics"
)

// Config holds memory monitor configuration.
type Config struct {
	// MemoryLimitBytes is the soft limit; 0 means use GOMEMLIMIT.
	MemoryLimitBytes int64

	// HighWaterMark is the usage fraction below which paused work resumes.
	HighWaterMark float64

	// CriticalWaterMark is the usage fraction at which work pauses.
	CriticalWaterMark float64

	// CheckInterval is how often heap usage is sampled.
	CheckInterval time.Duration
}

// DefaultConfig returns the default monitor configuration.
func DefaultConfig() Config {
	return Config{
		HighWaterMark:     0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     5 * time.Second,
	}
}

// Monitor tracks heap usage against a limit and provides a backpressure
// gate for attribute computation.
type Monitor struct {
	config   Config
	limit    int64
	stopChan chan struct{}

	mu        sync.RWMutex
	current   uint64
	isPaused  bool
	pauseChan chan struct{}
}

// NewMonitor creates a monitor. With no explicit limit and no GOMEMLIMIT,
// backpressure is disabled and WaitIfPaused never blocks.
func NewMonitor(config Config) *Monitor {
	limit := config.MemoryLimitBytes
	if limit == 0 {
		if goMemLimit := debug.SetMemoryLimit(-1); goMemLimit > 0 && goMemLimit < 1<<62 {
			limit = goMemLimit
			logging.Info("Memory monitor using GOMEMLIMIT: %d bytes (%.1f MB)", limit, float64(limit)/(1024*1024))
		}
	}
	if limit == 0 {
		logging.Warn("Memory monitor: no memory limit configured, backpressure disabled")
	}

	return &Monitor{
		config:    config,
		limit:     limit,
		stopChan:  make(chan struct{}),
		pauseChan: make(chan struct{}),
	}
}

// Start begins sampling heap usage.
func (m *Monitor) Start() {
	if m.limit == 0 {
		return
	}
	go m.loop()
}

// Stop stops the monitor and releases any waiters.
func (m *Monitor) Stop() {
	close(m.stopChan)
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.check()
		case <-m.stopChan:
			return
		}
	}
}

func (m *Monitor) check() {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = stats.Alloc
	usage := float64(stats.Alloc) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(usage)

	if usage >= m.config.CriticalWaterMark {
		if !m.isPaused {
			logging.Warn("Memory critical (%.1f%% of limit), pausing attribute computation", usage*100)
			m.isPaused = true
			metrics.MemoryPaused.Set(1)
			metrics.MemoryGCPauses.Inc()
			go runtime.GC()
		}
	} else if usage < m.config.HighWaterMark && m.isPaused {
		logging.Info("Memory recovered (%.1f%% of limit), resuming attribute computation", usage*100)
		m.isPaused = false
		metrics.MemoryPaused.Set(0)
		close(m.pauseChan)
		m.pauseChan = make(chan struct{})
	}
}

// WaitIfPaused blocks while usage is critical. Returns false if the
// monitor stopped while waiting.
func (m *Monitor) WaitIfPaused() bool {
	m.mu.RLock()
	if !m.isPaused {
		m.mu.RUnlock()
		return true
	}
	pauseChan := m.pauseChan
	m.mu.RUnlock()

	select {
	case <-pauseChan:
		return true
	case <-m.stopChan:
		return false
	}
}

// IsPaused reports whether attribute computation should pause.
func (m *Monitor) IsPaused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isPaused
}

// GetStats returns current usage, the limit, and their ratio.
func (m *Monitor) GetStats() (current, limit int64, usage float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	currentInt64 := int64(math.MaxInt64)
	if m.current <= math.MaxInt64 {
		currentInt64 = int64(m.current)
	}

	var usageRatio float64
	if m.limit > 0 {
		usageRatio = float64(m.current) / float64(m.limit)
	}
	return currentInt64, m.limit, usageRatio
}
