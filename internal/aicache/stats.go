package aicache

import "sync"

// stats holds the counters behind the cache's second lock (spec §5: "the
// stats structure is a second lock to keep hit/miss accounting off the
// critical read path").
type stats struct {
	mu sync.Mutex

	hits           int64
	misses         int64
	evictions      int64
	cleanups       int64
	warms          int64
	warmingActive  bool
}

func (s *stats) recordHit() {
	s.mu.Lock()
	s.hits++
	s.mu.Unlock()
}

func (s *stats) recordMiss() {
	s.mu.Lock()
	s.misses++
	s.mu.Unlock()
}

func (s *stats) recordEviction(n int) {
	s.mu.Lock()
	s.evictions += int64(n)
	s.mu.Unlock()
}

func (s *stats) recordCleanup() {
	s.mu.Lock()
	s.cleanups++
	s.mu.Unlock()
}

func (s *stats) recordWarm() {
	s.mu.Lock()
	s.warms++
	s.mu.Unlock()
}

func (s *stats) setWarmingActive(active bool) {
	s.mu.Lock()
	s.warmingActive = active
	s.mu.Unlock()
}

func (s *stats) snapshot() (hits, misses, evictions, cleanups, warms int64, warmingActive bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits, s.misses, s.evictions, s.cleanups, s.warms, s.warmingActive
}

// Stats is the AI cache statistics surface (spec §6).
type Stats struct {
	TotalEntries        int
	ValidEntries        int
	ExpiredEntries      int
	HitRate             float64
	TotalHits           int64
	TotalMisses         int64
	MemoryUsageBytes    int64
	MaxMemoryBytes      int64
	MemoryUsagePercent  float64
	AvgResponseSize     float64
	TopEntries          []TopEntry
	EfficiencyScore     float64
	TotalEvictions      int64
	TotalCleanups       int64
	TotalWarms          int64
	EntriesByPriority   map[string]int
	EntriesByStrategy   map[string]int
	AvgEntryAgeSeconds  float64
	WarmingActive       bool
}

// TopEntry is one (key, access_count) pair in the stats surface's
// top_entries list.
type TopEntry struct {
	Key         string
	AccessCount int64
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// efficiencyScore computes 0.5·hit_rate + 0.3·(1 − memory_usage_percent) +
// 0.2·entry_utilization, each term clamped to [0,1].
func efficiencyScore(hitRate, memoryUsagePercent, entryUtilization float64) float64 {
	return 0.5*clamp01(hitRate) + 0.3*clamp01(1-memoryUsagePercent) + 0.2*clamp01(entryUtilization)
}
