// Package aicache implements the AI Cache (spec §4.E): a concurrent,
// bounded, multi-policy key→artifact store that memoizes expensive
// generative-AI calls keyed by a deterministic prompt fingerprint.
package aicache

import "time"

// Priority controls eviction eligibility. Critical entries are never
// selected by either automatic eviction path.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Policy is the per-entry eviction strategy.
type Policy int

const (
	PolicyTTL Policy = iota
	PolicyLRU
	PolicyLFU
	PolicyContentBased
	PolicyManual
)

func (p Policy) String() string {
	switch p {
	case PolicyTTL:
		return "ttl"
	case PolicyLRU:
		return "lru"
	case PolicyLFU:
		return "lfu"
	case PolicyContentBased:
		return "content_based"
	case PolicyManual:
		return "manual"
	default:
		return "unknown"
	}
}

// Artifact is CachedArtifact (spec §3): size_bytes ≥ len(content);
// cached_at ≤ last_accessed; Priority Critical is never auto-evicted;
// Policy Manual is evicted only by explicit invalidation.
type Artifact struct {
	Content      string
	CachedAt     time.Time
	TTL          time.Duration
	AccessCount  int64
	LastAccessed time.Time
	PromptHash   string
	Provider     string
	Priority     Priority
	Tags         []string
	SizeBytes    int64
	Policy       Policy
	Metadata     map[string]string
}

func (a *Artifact) hasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (a *Artifact) expiresAt() time.Time {
	return a.CachedAt.Add(a.TTL)
}

func (a *Artifact) isExpired(now time.Time) bool {
	if a.TTL <= 0 {
		return false
	}
	return !a.expiresAt().After(now)
}

func (a *Artifact) ageSeconds(now time.Time) float64 {
	return now.Sub(a.CachedAt).Seconds()
}

func (a *Artifact) secondsSinceLastAccess(now time.Time) float64 {
	return now.Sub(a.LastAccessed).Seconds()
}
