package token

import (
	"context"
	"time"
)

// StartScheduler launches the periodic refresh walk (spec §4.C). It walks
// every tracked account and refreshes any whose remaining lifetime falls
// below the scheduler buffer. Failures are logged and never propagate;
// callers holding token handles are never disturbed by a scheduler error.
func (m *Manager) StartScheduler(ctx context.Context) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.schedulerPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stopCh:
				return
			case <-ticker.C:
				m.refreshDueAccounts(ctx)
			}
		}
	}()
}

// StopScheduler signals StartScheduler's goroutine to exit and waits for
// it to finish. Safe to call more than once.
func (m *Manager) StopScheduler() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	m.wg.Wait()
}

func (m *Manager) refreshDueAccounts(ctx context.Context) {
	now := time.Now()

	m.mu.RLock()
	due := make([]string, 0)
	for id, triple := range m.accounts {
		if triple.RefreshToken != "" && triple.ExpiresWithin(now, m.schedulerBuffer) {
			due = append(due, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range due {
		if _, err := m.Refresh(ctx, id); err != nil {
			m.log.Warn().Err(err).Str("account_id", id).Msg("token: scheduled refresh failed")
		}
	}
}
