package aicache

import (
	"sort"
	"time"
)

// candidate is one entry's eviction-relevant projection. Both eviction
// paths exclude Critical entries entirely (spec §4.E: "Entries with
// priority = Critical are never selected by either automatic path") and
// exclude Manual-policy entries entirely (spec §3: "policy = Manual ⇒
// evicted only by explicit invalidation").
type candidate struct {
	key                    string
	priority               Priority
	ageSeconds             float64
	sizeBytes              int64
	secondsSinceLastAccess float64
	accessCount            int64
}

func nonCriticalCandidates(entries map[string]*Artifact, now time.Time) []candidate {
	out := make([]candidate, 0, len(entries))
	for key, a := range entries {
		if a.Priority == PriorityCritical || a.Policy == PolicyManual {
			continue
		}
		out = append(out, candidate{
			key:                    key,
			priority:               a.Priority,
			ageSeconds:             a.ageSeconds(now),
			sizeBytes:              a.SizeBytes,
			secondsSinceLastAccess: a.secondsSinceLastAccess(now),
			accessCount:            a.AccessCount,
		})
	}
	return out
}

// selectForMemoryPressure orders candidates ascending by priority,
// descending by age, descending by size, then evicts in that order until
// freed bytes ≥ 1.25 × needed.
func selectForMemoryPressure(entries map[string]*Artifact, now time.Time, needed int64) []string {
	cands := nonCriticalCandidates(entries, now)
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].priority != cands[j].priority {
			return cands[i].priority < cands[j].priority
		}
		if cands[i].ageSeconds != cands[j].ageSeconds {
			return cands[i].ageSeconds > cands[j].ageSeconds
		}
		return cands[i].sizeBytes > cands[j].sizeBytes
	})

	target := int64(float64(needed) * 1.25)
	var freed int64
	var keys []string
	for _, c := range cands {
		if freed >= target {
			break
		}
		keys = append(keys, c.key)
		freed += c.sizeBytes
	}
	return keys
}

// selectForEntryPolicy orders candidates per policy and removes the top
// ceil(len(cache)/4).
func selectForEntryPolicy(entries map[string]*Artifact, now time.Time, policy Policy) []string {
	cands := nonCriticalCandidates(entries, now)

	switch policy {
	case PolicyLRU:
		sort.Slice(cands, func(i, j int) bool {
			return cands[i].secondsSinceLastAccess > cands[j].secondsSinceLastAccess
		})
	case PolicyLFU:
		sort.Slice(cands, func(i, j int) bool {
			return cands[i].accessCount < cands[j].accessCount
		})
	default:
		sort.Slice(cands, func(i, j int) bool {
			return cands[i].ageSeconds > cands[j].ageSeconds
		})
	}

	n := (len(entries) + 3) / 4
	if n > len(cands) {
		n = len(cands)
	}

	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		keys = append(keys, cands[i].key)
	}
	return keys
}
