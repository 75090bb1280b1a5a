package aicache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Config parameterizes a Cache (spec §4.E).
type Config struct {
	MaxEntries      int
	MaxMemoryBytes  int64
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
	DefaultPolicy   Policy
	WarmingEnabled  bool
	WarmingBatchSize int
}

// DefaultConfig mirrors the teacher's habit of shipping a sane zero-config
// default rather than requiring every field be set explicitly.
func DefaultConfig() Config {
	return Config{
		MaxEntries:       1000,
		MaxMemoryBytes:   64 * 1024 * 1024,
		DefaultTTL:       1 * time.Hour,
		CleanupInterval:  5 * time.Minute,
		DefaultPolicy:    PolicyLRU,
		WarmingEnabled:   false,
		WarmingBatchSize: 10,
	}
}

// Cache is the bounded, concurrent, multi-policy artifact cache. The
// artifact map is guarded by one reader-preferring lock; hit/miss/eviction
// counters live behind a second lock so accounting never blocks reads.
type Cache struct {
	cfg Config

	mu      sync.RWMutex
	entries map[string]*Artifact

	st stats

	lastCleanup time.Time

	warmGroup singleflight.Group
}

// New constructs an empty Cache.
func New(cfg Config) *Cache {
	return &Cache{
		cfg:         cfg,
		entries:     make(map[string]*Artifact),
		lastCleanup: time.Now(),
	}
}

// Get returns a snapshot of the artifact if present and not TTL-expired,
// bumping access_count/last_accessed and recording a hit. A TTL-expired
// entry is removed in-band and counted as a miss. May opportunistically
// run cleanup_expired first if the cleanup interval has elapsed.
func (c *Cache) Get(key string) (Artifact, bool) {
	c.maybeOpportunisticCleanup()

	now := time.Now()

	c.mu.RLock()
	a, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.st.recordMiss()
		return Artifact{}, false
	}
	if a.isExpired(now) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		c.st.recordMiss()
		return Artifact{}, false
	}

	c.mu.Lock()
	a.AccessCount++
	a.LastAccessed = now
	snapshot := *a
	c.mu.Unlock()

	c.st.recordHit()
	return snapshot, true
}

func (c *Cache) maybeOpportunisticCleanup() {
	c.mu.RLock()
	due := c.cfg.CleanupInterval > 0 && time.Since(c.lastCleanup) >= c.cfg.CleanupInterval
	c.mu.RUnlock()
	if due {
		c.CleanupExpired()
	}
}

// PutOptions are the optional parameters to Put beyond key/content/provider.
type PutOptions struct {
	TTL      time.Duration
	Priority Priority
	Tags     []string
	Policy   *Policy
}

// Put constructs and admits an artifact, running memory-pressure or
// entry-count eviction first if admitting it would breach a configured
// bound.
func (c *Cache) Put(key, content, provider string, opts PutOptions) {
	ttl := opts.TTL
	if ttl == 0 {
		ttl = c.cfg.DefaultTTL
	}
	policy := c.cfg.DefaultPolicy
	if opts.Policy != nil {
		policy = *opts.Policy
	}

	now := time.Now()
	artifact := &Artifact{
		Content:      content,
		CachedAt:     now,
		TTL:          ttl,
		AccessCount:  0,
		LastAccessed: now,
		PromptHash:   key,
		Provider:     provider,
		Priority:     opts.Priority,
		Tags:         opts.Tags,
		SizeBytes:    int64(len(content) + len(key) + len(provider)),
		Policy:       policy,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, exists := c.entries[key]
	breachesMemory := c.cfg.MaxMemoryBytes > 0 && c.totalBytesLocked()+artifact.SizeBytes > c.cfg.MaxMemoryBytes
	breachesEntries := !exists && c.cfg.MaxEntries > 0 && len(c.entries) >= c.cfg.MaxEntries

	if breachesMemory {
		victims := selectForMemoryPressure(c.entries, now, artifact.SizeBytes)
		for _, k := range victims {
			delete(c.entries, k)
		}
		c.st.recordEviction(len(victims))
	} else if breachesEntries {
		victims := selectForEntryPolicy(c.entries, now, c.cfg.DefaultPolicy)
		for _, k := range victims {
			delete(c.entries, k)
		}
		c.st.recordEviction(len(victims))
	}

	c.entries[key] = artifact
}

func (c *Cache) totalBytesLocked() int64 {
	var total int64
	for _, a := range c.entries {
		total += a.SizeBytes
	}
	return total
}

// InvalidatePattern removes every key containing substring; "*" clears
// all. Substring match is the chosen (and documented) semantics: a sharp
// edge inherited deliberately rather than silently, see DESIGN.md.
func (c *Cache) InvalidatePattern(substring string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if substring == allSentinel {
		n := len(c.entries)
		c.entries = make(map[string]*Artifact)
		return n
	}

	var removed int
	for key := range c.entries {
		if strings.Contains(key, substring) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// InvalidateByTags removes entries tagged with any of the supplied tags.
func (c *Cache) InvalidateByTags(tags []string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int
	for key, a := range c.entries {
		for _, tag := range tags {
			if a.hasTag(tag) {
				delete(c.entries, key)
				removed++
				break
			}
		}
	}
	return removed
}

// InvalidateByProvider removes entries whose provider equals the argument.
func (c *Cache) InvalidateByProvider(provider string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int
	for key, a := range c.entries {
		if a.Provider == provider {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// CleanupExpired removes TTL-expired entries, updates the cleanup
// counter, and resets the cleanup timestamp — regardless of whether the
// call was opportunistic or explicit.
func (c *Cache) CleanupExpired() int {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int
	for key, a := range c.entries {
		if a.isExpired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	c.lastCleanup = now
	c.st.recordCleanup()
	return removed
}

// Stats reports the AI cache statistics surface (spec §6).
func (c *Cache) Stats() Stats {
	now := time.Now()

	c.mu.RLock()
	total := len(c.entries)
	var expired int
	var memBytes int64
	var totalAge float64
	byPriority := make(map[string]int)
	byStrategy := make(map[string]int)
	top := make([]TopEntry, 0, total)
	for key, a := range c.entries {
		memBytes += a.SizeBytes
		totalAge += a.ageSeconds(now)
		byPriority[a.Priority.String()]++
		byStrategy[a.Policy.String()]++
		if a.isExpired(now) {
			expired++
		}
		top = append(top, TopEntry{Key: key, AccessCount: a.AccessCount})
	}
	c.mu.RUnlock()

	hits, misses, evictions, cleanups, warms, warmingActive := c.st.snapshot()

	var hitRate float64
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses)
	}

	var memPercent float64
	if c.cfg.MaxMemoryBytes > 0 {
		memPercent = float64(memBytes) / float64(c.cfg.MaxMemoryBytes)
	}

	var avgSize float64
	var avgAge float64
	if total > 0 {
		avgSize = float64(memBytes) / float64(total)
		avgAge = totalAge / float64(total)
	}

	var entryUtilization float64
	if c.cfg.MaxEntries > 0 {
		entryUtilization = float64(total) / float64(c.cfg.MaxEntries)
	}

	topN := topEntriesByAccessCount(top, 10)

	return Stats{
		TotalEntries:       total,
		ValidEntries:       total - expired,
		ExpiredEntries:     expired,
		HitRate:            hitRate,
		TotalHits:          hits,
		TotalMisses:        misses,
		MemoryUsageBytes:   memBytes,
		MaxMemoryBytes:     c.cfg.MaxMemoryBytes,
		MemoryUsagePercent: memPercent,
		AvgResponseSize:    avgSize,
		TopEntries:         topN,
		EfficiencyScore:    efficiencyScore(hitRate, memPercent, entryUtilization),
		TotalEvictions:     evictions,
		TotalCleanups:      cleanups,
		TotalWarms:         warms,
		EntriesByPriority:  byPriority,
		EntriesByStrategy:  byStrategy,
		AvgEntryAgeSeconds: avgAge,
		WarmingActive:      warmingActive,
	}
}

func topEntriesByAccessCount(entries []TopEntry, limit int) []TopEntry {
	sorted := make([]TopEntry, len(entries))
	copy(sorted, entries)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].AccessCount > sorted[j-1].AccessCount; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// Producer computes the artifact content for a warming prompt. It runs
// outside any cache lock.
type Producer func(ctx context.Context, prompt string) (content, provider string, err error)

// Warm invokes producer for each of the supplied prompts that is absent
// from the cache, storing the result with priority=Low and tag "warming".
// Concurrent Warm calls for the same cache coalesce via a single-flight
// guard (warming_active).
func (c *Cache) Warm(ctx context.Context, prompts []string, produce Producer) (int, error) {
	if !c.cfg.WarmingEnabled {
		return 0, nil
	}

	v, err, _ := c.warmGroup.Do("warm", func() (interface{}, error) {
		c.st.setWarmingActive(true)
		defer c.st.setWarmingActive(false)

		var warmed int
		for _, prompt := range prompts {
			key := FingerprintKey(prompt, "")
			if _, ok := c.Get(key); ok {
				continue
			}
			content, provider, err := produce(ctx, prompt)
			if err != nil {
				return warmed, fmt.Errorf("aicache: warm producer failed for prompt: %w", err)
			}
			c.Put(key, content, provider, PutOptions{Priority: PriorityLow, Tags: []string{"warming"}})
			c.st.recordWarm()
			warmed++
		}
		return warmed, nil
	})
	if err != nil {
		return v.(int), err
	}
	return v.(int), nil
}
