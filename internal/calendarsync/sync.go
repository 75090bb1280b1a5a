package calendarsync

import (
	"context"
	"fmt"
	"time"
)

// progressEventBatch is how often ProcessingEvents updates progress
// (spec §4.F: "update progress every 10 processed events").
const progressEventBatch = 10

// Sync executes one sync pass end-to-end for cfg, enforcing that only one
// sync per calendar may be active at a time (spec §4.F). Progress is
// updated after every phase transition.
func (e *Engine) Sync(ctx context.Context, cfg SyncConfig) error {
	if err := e.beginSync(cfg.CalendarID); err != nil {
		return err
	}

	syncCtx, cancel := context.WithCancel(ctx)
	e.cancelMu.Lock()
	e.cancels[cfg.CalendarID] = cancel
	e.cancelMu.Unlock()
	defer func() {
		e.cancelMu.Lock()
		delete(e.cancels, cfg.CalendarID)
		e.cancelMu.Unlock()
		cancel()
	}()

	started := time.Now()
	e.setProgress(cfg.CalendarID, Progress{Phase: PhaseInitializing, StartedAt: started})

	synced, err := e.runSyncPass(syncCtx, cfg)

	if err != nil {
		if err == context.Canceled || syncCtx.Err() == context.Canceled {
			// A cancelled sync leaves the calendar Idle with the last
			// successful last_sync preserved (spec §5, Cancellation).
			e.finishSync(cfg.CalendarID, StateIdle, "", cfg.LastSync, synced)
			return ErrCancelled
		}
		e.setProgress(cfg.CalendarID, Progress{Phase: PhaseError, StartedAt: started})
		// The state machine passes through Error before settling back to
		// Idle (Idle → Syncing → Error → Idle); GetStatus/GetAllStatus
		// perform that final settle on the next read.
		e.finishSync(cfg.CalendarID, StateError, err.Error(), cfg.LastSync, synced)
		return err
	}

	now := time.Now()
	e.setProgress(cfg.CalendarID, Progress{Phase: PhaseComplete, StartedAt: started, EventsProcessed: synced, Total: synced})
	// The state machine passes through Completed before settling back to
	// Idle (Idle → Syncing → Completed → Idle); GetStatus/GetAllStatus
	// perform that final settle on the next read.
	e.finishSync(cfg.CalendarID, StateComplete, "", &now, synced)

	return nil
}

func (e *Engine) runSyncPass(ctx context.Context, cfg SyncConfig) (int, error) {
	switch cfg.Meta.Source {
	case SourceCalDAV:
		return e.syncCalDAV(ctx, cfg)
	case SourceGoogle:
		return e.syncGoogle(ctx, cfg)
	default:
		return 0, fmt.Errorf("calendarsync: unsupported source %s", cfg.Meta.Source)
	}
}

func (e *Engine) syncCalDAV(ctx context.Context, cfg SyncConfig) (int, error) {
	if e.caldav == nil || e.parser == nil {
		return 0, ErrNoCalDAVSource
	}

	e.setProgress(cfg.CalendarID, Progress{Phase: PhaseDiscoveringCalendars, StartedAt: time.Now()})
	if err := e.caldav.TestConnection(ctx); err != nil {
		return 0, fmt.Errorf("calendarsync: caldav connection test failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	e.setProgress(cfg.CalendarID, Progress{Phase: PhaseFetchingEvents, StartedAt: time.Now()})
	now := time.Now()
	start := now.Add(-cfg.windowPast())
	end := now.Add(cfg.windowFuture())
	remote, err := e.caldav.GetEvents(ctx, cfg.Meta.SourceRef, CalDAVQuery{Start: &start, End: &end})
	if err != nil {
		return 0, fmt.Errorf("calendarsync: fetch events failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	e.setProgress(cfg.CalendarID, Progress{Phase: PhaseProcessingEvents, StartedAt: time.Now(), Total: len(remote)})

	var synced int
	for i, re := range remote {
		if err := ctx.Err(); err != nil {
			return synced, err
		}

		event, err := e.parser.Parse(re.ICalendarData)
		if err != nil {
			e.log.Warn().Err(err).Str("calendar_id", cfg.CalendarID).Str("url", re.URL).Msg("calendarsync: skipping event with unparseable icalendar data")
			continue
		}
		event.UID = re.URL
		event.ETag = re.ETag

		stored, err := e.local.Upsert(ctx, cfg.CalendarID, event)
		if err != nil {
			e.log.Warn().Err(err).Str("calendar_id", cfg.CalendarID).Str("uid", event.UID).Msg("calendarsync: failed to upsert event locally")
			continue
		}
		if stored {
			synced++
		}

		if (i+1)%progressEventBatch == 0 {
			e.setProgress(cfg.CalendarID, Progress{Phase: PhaseProcessingEvents, StartedAt: time.Now(), EventsProcessed: i + 1, Total: len(remote)})
		}
	}

	e.setProgress(cfg.CalendarID, Progress{Phase: PhaseUpdatingLocal, StartedAt: time.Now(), EventsProcessed: synced, Total: len(remote)})
	return synced, nil
}

func (e *Engine) syncGoogle(ctx context.Context, cfg SyncConfig) (int, error) {
	if e.google == nil {
		return 0, ErrNoGoogleSource
	}

	e.setProgress(cfg.CalendarID, Progress{Phase: PhaseFetchingEvents, StartedAt: time.Now()})
	now := time.Now()
	start := now.Add(-cfg.windowPast())
	end := now.Add(cfg.windowFuture())
	events, err := e.google.List(ctx, cfg.Meta.SourceRef, start, end)
	if err != nil {
		return 0, fmt.Errorf("calendarsync: fetch events failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	e.setProgress(cfg.CalendarID, Progress{Phase: PhaseProcessingEvents, StartedAt: time.Now(), Total: len(events)})

	var synced int
	for i, event := range events {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if event.UID == "" {
			event.UID = event.ID
		}

		stored, err := e.local.Upsert(ctx, cfg.CalendarID, event)
		if err != nil {
			e.log.Warn().Err(err).Str("calendar_id", cfg.CalendarID).Str("uid", event.UID).Msg("calendarsync: failed to upsert event locally")
			continue
		}
		if stored {
			synced++
		}

		if (i+1)%progressEventBatch == 0 {
			e.setProgress(cfg.CalendarID, Progress{Phase: PhaseProcessingEvents, StartedAt: time.Now(), EventsProcessed: i + 1, Total: len(events)})
		}
	}

	e.setProgress(cfg.CalendarID, Progress{Phase: PhaseUpdatingLocal, StartedAt: time.Now(), EventsProcessed: synced, Total: len(events)})
	return synced, nil
}

func (e *Engine) beginSync(id string) error {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	st, ok := e.statuses[id]
	if !ok {
		return ErrConfigNotFound
	}
	if st.State == StateDisabled {
		return ErrCalendarDisabled
	}
	if st.State == StateSyncing {
		return ErrAlreadySyncing
	}
	st.State = StateSyncing
	return nil
}

func (e *Engine) setProgress(id string, p Progress) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	if st, ok := e.statuses[id]; ok {
		progress := p
		st.Progress = &progress
	}
}

func (e *Engine) finishSync(id string, state State, lastError string, lastSync *time.Time, eventsSynced int) {
	e.configsMu.Lock()
	if cfg, ok := e.configs[id]; ok {
		cfg.LastSync = lastSync
	}
	e.configsMu.Unlock()

	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	st, ok := e.statuses[id]
	if !ok {
		return
	}
	st.State = state
	st.LastError = lastError
	st.EventsSynced = eventsSynced
}
