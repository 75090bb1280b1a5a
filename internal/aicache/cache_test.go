package aicache

import (
	"context"
	"testing"
	"time"
)

func TestCacheHitAndTTL(t *testing.T) {
	// Scenario S1 (spec §8).
	c := New(Config{MaxEntries: 100, DefaultTTL: 60 * time.Second})

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss before put")
	}

	c.Put("k", "resp", "prov", PutOptions{TTL: 50 * time.Millisecond})

	a, ok := c.Get("k")
	if !ok || a.Content != "resp" {
		t.Fatalf("expected hit with content 'resp', got %+v, %v", a, ok)
	}

	time.Sleep(60 * time.Millisecond)

	removed := c.CleanupExpired()
	if removed != 1 {
		t.Errorf("expected cleanup_expired to remove 1 entry, got %d", removed)
	}

	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after TTL expiry")
	}

	stats := c.Stats()
	if stats.TotalHits != 1 || stats.TotalMisses != 2 || stats.TotalEntries != 0 {
		t.Errorf("unexpected final stats: hits=%d misses=%d entries=%d", stats.TotalHits, stats.TotalMisses, stats.TotalEntries)
	}
}

func TestInvalidatePattern(t *testing.T) {
	// Scenario S2 (spec §8).
	c := New(Config{MaxEntries: 100, DefaultTTL: time.Hour})
	for _, k := range []string{"a1", "a2", "b1", "b2", "b3"} {
		c.Put(k, "x", "prov", PutOptions{})
	}

	removed := c.InvalidatePattern("a")
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	for _, k := range []string{"b1", "b2", "b3"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %s to remain", k)
		}
	}

	removed = c.InvalidatePattern("*")
	if removed != 3 {
		t.Errorf("expected 3 removed by wildcard, got %d", removed)
	}
	if c.Stats().TotalEntries != 0 {
		t.Error("expected cache to be empty after wildcard invalidation")
	}
}

func TestPriorityEvictionUnderEntryPressure(t *testing.T) {
	// Scenario S3 (spec §8).
	c := New(Config{MaxEntries: 4, DefaultPolicy: PolicyLRU, DefaultTTL: time.Hour})

	criticalPolicy := PolicyManual
	c.Put("critical", "x", "prov", PutOptions{Priority: PriorityCritical, Policy: &criticalPolicy})
	c.Put("n1", "x", "prov", PutOptions{Priority: PriorityNormal})
	c.Put("n2", "x", "prov", PutOptions{Priority: PriorityNormal})
	c.Put("n3", "x", "prov", PutOptions{Priority: PriorityNormal})

	c.Put("n4", "x", "prov", PutOptions{Priority: PriorityNormal})

	if _, ok := c.Get("critical"); !ok {
		t.Error("expected the critical entry to survive entry-count eviction")
	}

	stats := c.Stats()
	if stats.TotalEntries != 4 {
		t.Errorf("expected 4 entries to remain (1 critical + 3 normal), got %d", stats.TotalEntries)
	}
}

func TestManualPolicyEntrySurvivesAutomaticEviction(t *testing.T) {
	// Manual policy must be exempt from automatic eviction regardless of
	// priority (spec §3), not just when paired with PriorityCritical.
	c := New(Config{MaxEntries: 2, DefaultPolicy: PolicyLRU, DefaultTTL: time.Hour})

	manual := PolicyManual
	c.Put("manual", "x", "prov", PutOptions{Priority: PriorityNormal, Policy: &manual})
	c.Put("n1", "x", "prov", PutOptions{Priority: PriorityNormal})
	c.Put("n2", "x", "prov", PutOptions{Priority: PriorityNormal})

	if _, ok := c.Get("manual"); !ok {
		t.Error("expected manual-policy entry to survive entry-count eviction")
	}

	mem := New(Config{MaxMemoryBytes: 40, DefaultTTL: time.Hour})
	mem.Put("manual", "0123456789", "prov", PutOptions{Priority: PriorityNormal, Policy: &manual})
	mem.Put("big", "01234567890123456789", "prov", PutOptions{Priority: PriorityNormal})

	if _, ok := mem.Get("manual"); !ok {
		t.Error("expected manual-policy entry to survive memory-pressure eviction")
	}
}

func TestInvalidateByTagsAndProvider(t *testing.T) {
	c := New(Config{MaxEntries: 100, DefaultTTL: time.Hour})
	c.Put("k1", "x", "openai", PutOptions{Tags: []string{"summary"}})
	c.Put("k2", "x", "anthropic", PutOptions{Tags: []string{"summary", "triage"}})
	c.Put("k3", "x", "anthropic", PutOptions{Tags: []string{"compose"}})

	removed := c.InvalidateByTags([]string{"summary"})
	if removed != 2 {
		t.Errorf("expected 2 removed by tag, got %d", removed)
	}

	removed = c.InvalidateByProvider("anthropic")
	if removed != 1 {
		t.Errorf("expected 1 removed by provider, got %d", removed)
	}
}

func TestCriticalEntryNeverAutoEvictedByMemoryPressure(t *testing.T) {
	c := New(Config{MaxMemoryBytes: 40, DefaultTTL: time.Hour})

	criticalPolicy := PolicyManual
	c.Put("critical", "0123456789", "prov", PutOptions{Priority: PriorityCritical, Policy: &criticalPolicy})
	c.Put("big", "01234567890123456789", "prov", PutOptions{Priority: PriorityNormal})

	if _, ok := c.Get("critical"); !ok {
		t.Error("expected critical entry to survive memory-pressure eviction")
	}
}

func TestWarmSkipsAlreadyCachedPrompts(t *testing.T) {
	c := New(Config{MaxEntries: 100, DefaultTTL: time.Hour, WarmingEnabled: true})

	key := FingerprintKey("prompt-a", "")
	c.Put(key, "cached", "prov", PutOptions{})

	var produced int
	_, err := c.Warm(context.Background(), []string{"prompt-a", "prompt-b"}, func(ctx context.Context, prompt string) (string, string, error) {
		produced++
		return "generated:" + prompt, "prov", nil
	})
	if err != nil {
		t.Fatalf("Warm: %v", err)
	}
	if produced != 1 {
		t.Errorf("expected the producer to run only for the uncached prompt, ran %d times", produced)
	}
}

func TestWarmDisabledIsNoop(t *testing.T) {
	c := New(Config{MaxEntries: 100, DefaultTTL: time.Hour, WarmingEnabled: false})
	n, err := c.Warm(context.Background(), []string{"prompt-a"}, func(ctx context.Context, prompt string) (string, string, error) {
		t.Fatal("producer should not run when warming is disabled")
		return "", "", nil
	})
	if err != nil || n != 0 {
		t.Errorf("expected no-op, got n=%d err=%v", n, err)
	}
}
