package metrics

import (
	"sync/atomic"
	"testing"
	"time"
)

type fakeStatsProvider struct {
	calls atomic.Int64
}

func (f *fakeStatsProvider) GetStats() Stats {
	f.calls.Add(1)
	return Stats{TotalImages: 3, TotalVideos: 1, TotalTags: 5}
}

func TestCollectorCollectsOnStart(t *testing.T) {
	provider := &fakeStatsProvider{}
	c := NewCollector(provider, time.Hour)

	c.Start()
	defer c.Stop()

	deadline := time.Now().Add(time.Second)
	for provider.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("collector never called GetStats")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCollectorNilProvider(t *testing.T) {
	c := NewCollector(nil, 10*time.Millisecond)
	c.Start()
	time.Sleep(30 * time.Millisecond)
	c.Stop()
	// No panic is the assertion.
}

func TestInitializeMetrics(t *testing.T) {
	// Pre-populating labels must not panic and must be idempotent.
	InitializeMetrics()
	InitializeMetrics()
}
