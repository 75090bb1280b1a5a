package calendarsync

import (
	"context"
	"sync"

	"github.com/olafkfreund/comunicado-sub004/internal/domain/calendar"
	"github.com/rs/zerolog"
)

// Engine is the Calendar Sync Engine. It holds one lock over the configs
// map, one lock over the status map and one lock over the map of
// in-flight sync cancel functions; transport clients are not cached. A
// sync task holds no lock across network I/O.
type Engine struct {
	configsMu sync.RWMutex
	configs   map[string]*SyncConfig

	statusMu sync.RWMutex
	statuses map[string]*SyncStatus

	cancelMu sync.Mutex
	cancels  map[string]context.CancelFunc

	local LocalStore

	caldav CalDAVCollaborator
	parser EventParser

	google calendar.EventRepository

	log zerolog.Logger
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithCalDAV wires the CalDAV collaborator and its event parser.
func WithCalDAV(collaborator CalDAVCollaborator, parser EventParser) Option {
	return func(e *Engine) {
		e.caldav = collaborator
		e.parser = parser
	}
}

// WithGoogle wires the Google Calendar event repository (e.g. the
// adapter wrapping the Google Calendar API client).
func WithGoogle(repo calendar.EventRepository) Option {
	return func(e *Engine) { e.google = repo }
}

// WithLocalStore overrides the default in-memory LocalStore.
func WithLocalStore(store LocalStore) Option {
	return func(e *Engine) { e.local = store }
}

// WithLogger overrides the zero-value (discard) logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine constructs an Engine with no configured calendars.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		configs:  make(map[string]*SyncConfig),
		statuses: make(map[string]*SyncStatus),
		cancels:  make(map[string]context.CancelFunc),
		local:    NewMemoryStore(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddConfig registers a new per-calendar configuration and initializes
// its status to Idle (or Disabled if the config starts disabled).
func (e *Engine) AddConfig(cfg SyncConfig) error {
	e.configsMu.Lock()
	defer e.configsMu.Unlock()

	if _, exists := e.configs[cfg.CalendarID]; exists {
		return ErrConfigExists
	}
	e.configs[cfg.CalendarID] = &cfg

	state := StateIdle
	if !cfg.Enabled {
		state = StateDisabled
	}
	e.statusMu.Lock()
	e.statuses[cfg.CalendarID] = &SyncStatus{State: state}
	e.statusMu.Unlock()

	return nil
}

// UpdateConfig replaces an existing configuration. Enabling a disabled
// calendar resets its status to Idle; disabling cancels any in-flight
// sync and moves the status to Disabled.
func (e *Engine) UpdateConfig(cfg SyncConfig) error {
	e.configsMu.Lock()
	if _, exists := e.configs[cfg.CalendarID]; !exists {
		e.configsMu.Unlock()
		return ErrConfigNotFound
	}
	e.configs[cfg.CalendarID] = &cfg
	e.configsMu.Unlock()

	if !cfg.Enabled {
		e.cancelInFlight(cfg.CalendarID)
		e.statusMu.Lock()
		e.statuses[cfg.CalendarID] = &SyncStatus{State: StateDisabled}
		e.statusMu.Unlock()
		return nil
	}

	e.statusMu.Lock()
	if st, ok := e.statuses[cfg.CalendarID]; !ok || st.State == StateDisabled {
		e.statuses[cfg.CalendarID] = &SyncStatus{State: StateIdle}
	}
	e.statusMu.Unlock()
	return nil
}

// RemoveConfig cancels any in-flight sync for id and deletes its
// configuration and status.
func (e *Engine) RemoveConfig(id string) error {
	e.configsMu.Lock()
	if _, exists := e.configs[id]; !exists {
		e.configsMu.Unlock()
		return ErrConfigNotFound
	}
	delete(e.configs, id)
	e.configsMu.Unlock()

	e.cancelInFlight(id)

	e.statusMu.Lock()
	delete(e.statuses, id)
	e.statusMu.Unlock()
	return nil
}

// GetStatus returns a snapshot of one calendar's sync status. A terminal
// state (Completed/Error) left by the last sync pass is reported exactly
// once, then settles to Idle for subsequent reads (spec §4.F: "Idle →
// Syncing → Completed → Idle" / "Idle → Syncing → Error → Idle").
func (e *Engine) GetStatus(id string) (SyncStatus, error) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	st, ok := e.statuses[id]
	if !ok {
		return SyncStatus{}, ErrConfigNotFound
	}
	snapshot := *st
	settleTerminal(st)
	return snapshot, nil
}

// GetAllStatus returns a snapshot of every tracked calendar, settling
// terminal states the same way GetStatus does.
func (e *Engine) GetAllStatus() map[string]SyncStatus {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	out := make(map[string]SyncStatus, len(e.statuses))
	for id, st := range e.statuses {
		out[id] = *st
		settleTerminal(st)
	}
	return out
}

// settleTerminal transitions a Completed/Error status back to Idle after
// it has been observed once via GetStatus/GetAllStatus.
func settleTerminal(st *SyncStatus) {
	if st.State == StateComplete || st.State == StateError {
		st.State = StateIdle
	}
}

// ForceSync schedules a one-shot synchronous sync for id right now.
func (e *Engine) ForceSync(ctx context.Context, id string) error {
	e.configsMu.RLock()
	cfg, ok := e.configs[id]
	e.configsMu.RUnlock()
	if !ok {
		return ErrConfigNotFound
	}
	if !cfg.Enabled {
		return ErrCalendarDisabled
	}
	return e.Sync(ctx, *cfg)
}

// ForceSyncAll schedules a one-shot sync for every enabled config,
// running each independently; distinct calendars sync in parallel.
func (e *Engine) ForceSyncAll(ctx context.Context) map[string]error {
	e.configsMu.RLock()
	cfgs := make([]SyncConfig, 0, len(e.configs))
	for _, cfg := range e.configs {
		if cfg.Enabled {
			cfgs = append(cfgs, *cfg)
		}
	}
	e.configsMu.RUnlock()

	results := make(map[string]error, len(cfgs))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, cfg := range cfgs {
		wg.Add(1)
		go func(cfg SyncConfig) {
			defer wg.Done()
			err := e.Sync(ctx, cfg)
			mu.Lock()
			results[cfg.CalendarID] = err
			mu.Unlock()
		}(cfg)
	}
	wg.Wait()
	return results
}

func (e *Engine) cancelInFlight(id string) {
	e.cancelMu.Lock()
	cancel, ok := e.cancels[id]
	if ok {
		delete(e.cancels, id)
	}
	e.cancelMu.Unlock()
	if ok {
		cancel()
	}
}
