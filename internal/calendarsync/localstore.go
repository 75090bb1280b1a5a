package calendarsync

import (
	"context"
	"sync"

	"github.com/olafkfreund/comunicado-sub004/internal/domain/calendar"
)

// LocalStore is the reconciliation target (spec §4.F, "the local event
// store"). Upsert implements the etag-guarded upsert with a local
// dirty flag chosen to resolve the open sync-merge-semantics question
// (spec §9): a remote event only overwrites a local copy when the local
// copy is not marked dirty, or when the remote etag differs from the
// etag the local copy was last synced from. A dirty local copy is kept
// only while the remote etag is unchanged; once the remote event
// changes, it replaces the local edit.
type LocalStore interface {
	Get(ctx context.Context, calendarID, uid string) (*calendar.Event, bool, error)
	// Upsert stores event, returning true if the store was actually
	// written (false when a guarded conflict caused the remote copy to
	// be discarded in favor of the dirty local one).
	Upsert(ctx context.Context, calendarID string, event *calendar.Event) (stored bool, err error)
	// MarkDirty flags a locally-modified event so a subsequent remote
	// upsert with the same etag will not clobber it.
	MarkDirty(ctx context.Context, calendarID, uid string) error
}

// MemoryStore is a reference LocalStore implementation used by the engine
// when no durable backing store is wired, and by tests.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string]map[string]*storedEvent // calendarID -> uid -> entry
}

type storedEvent struct {
	event *calendar.Event
	dirty bool
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[string]map[string]*storedEvent)}
}

func (s *MemoryStore) Get(ctx context.Context, calendarID, uid string) (*calendar.Event, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cal, ok := s.events[calendarID]
	if !ok {
		return nil, false, nil
	}
	entry, ok := cal[uid]
	if !ok {
		return nil, false, nil
	}
	return entry.event, true, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, calendarID string, event *calendar.Event) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cal, ok := s.events[calendarID]
	if !ok {
		cal = make(map[string]*storedEvent)
		s.events[calendarID] = cal
	}

	existing, ok := cal[event.UID]
	if ok && existing.dirty && existing.event.ETag == event.ETag {
		return false, nil
	}

	cal[event.UID] = &storedEvent{event: event, dirty: false}
	return true, nil
}

func (s *MemoryStore) MarkDirty(ctx context.Context, calendarID, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cal, ok := s.events[calendarID]
	if !ok {
		return nil
	}
	if entry, ok := cal[uid]; ok {
		entry.dirty = true
	}
	return nil
}

// Count returns the number of stored events for calendarID, for tests.
func (s *MemoryStore) Count(calendarID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events[calendarID])
}
