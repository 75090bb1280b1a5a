package presenter

import (
	"fmt"
	"strings"

	"github.com/olafkfreund/comunicado-sub004/internal/aicache"
	"github.com/olafkfreund/comunicado-sub004/internal/domain/account"
	"github.com/olafkfreund/comunicado-sub004/internal/keyboard"
)

// PlainPresenter formats output as plain text, suitable for piping.
type PlainPresenter struct{}

// NewPlainPresenter creates a new PlainPresenter.
func NewPlainPresenter() *PlainPresenter {
	return &PlainPresenter{}
}

// RenderAccount renders a single account as key-value pairs.
func (p *PlainPresenter) RenderAccount(acct *account.Config) string {
	if acct == nil {
		return ""
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("AccountID: %s", acct.AccountID))
	lines = append(lines, fmt.Sprintf("Email: %s", acct.EmailAddress))
	lines = append(lines, fmt.Sprintf("Provider: %s", acct.Provider))
	lines = append(lines, fmt.Sprintf("AuthMode: %s", acct.AuthMode))
	lines = append(lines, fmt.Sprintf("Security: %s", acct.Security))
	lines = append(lines, fmt.Sprintf("Default: %v", acct.IsDefault))
	lines = append(lines, fmt.Sprintf("Added: %s", acct.Added.Format("2006-01-02")))
	if !acct.LastUsed.IsZero() {
		lines = append(lines, fmt.Sprintf("LastUsed: %s", acct.LastUsed.Format("2006-01-02")))
	}
	lines = append(lines, fmt.Sprintf("Scopes: %d", len(acct.Scopes)))
	for _, scope := range acct.Scopes {
		lines = append(lines, fmt.Sprintf("  - %s", scope))
	}

	return strings.Join(lines, "\n")
}

// RenderAccounts renders multiple accounts, one per line.
func (p *PlainPresenter) RenderAccounts(accts []*account.Config) string {
	if len(accts) == 0 {
		return ""
	}

	var lines []string
	for _, acct := range accts {
		if acct == nil {
			continue
		}
		defaultMark := ""
		if acct.IsDefault {
			defaultMark = "*"
		}
		lines = append(lines, fmt.Sprintf("%s%s\t%s\t%s",
			defaultMark,
			acct.AccountID,
			acct.EmailAddress,
			acct.Provider,
		))
	}
	return strings.Join(lines, "\n")
}

// RenderSyncEntry renders a single calendar's sync status as key-value pairs.
func (p *PlainPresenter) RenderSyncEntry(entry SyncEntry) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Calendar: %s (%s)", entry.Meta.Name, entry.Meta.ID))
	lines = append(lines, fmt.Sprintf("Source: %s", entry.Meta.Source))
	lines = append(lines, fmt.Sprintf("State: %s", entry.Status.State))
	lines = append(lines, fmt.Sprintf("EventsSynced: %d", entry.Status.EventsSynced))
	if entry.Status.LastError != "" {
		lines = append(lines, fmt.Sprintf("LastError: %s", entry.Status.LastError))
	}
	if entry.Meta.LastSynced != nil {
		lines = append(lines, fmt.Sprintf("LastSynced: %s", entry.Meta.LastSynced.Format("2006-01-02 15:04:05")))
	}
	if entry.Status.Progress != nil {
		lines = append(lines, fmt.Sprintf("Progress: %s (%d/%d) %s",
			entry.Status.Progress.Phase,
			entry.Status.Progress.EventsProcessed,
			entry.Status.Progress.Total,
			entry.Status.Progress.CurrentOp,
		))
	}

	return strings.Join(lines, "\n")
}

// RenderSyncEntries renders multiple calendars' sync status, one per line.
func (p *PlainPresenter) RenderSyncEntries(entries []SyncEntry) string {
	if len(entries) == 0 {
		return ""
	}

	var lines []string
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s\t%d",
			entry.Meta.ID,
			entry.Meta.Name,
			entry.Status.State,
			entry.Status.EventsSynced,
		))
	}
	return strings.Join(lines, "\n")
}

// RenderCacheStats renders the AI cache statistics surface as key-value pairs.
func (p *PlainPresenter) RenderCacheStats(stats *aicache.Stats) string {
	if stats == nil {
		return ""
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("TotalEntries: %d", stats.TotalEntries))
	lines = append(lines, fmt.Sprintf("ValidEntries: %d", stats.ValidEntries))
	lines = append(lines, fmt.Sprintf("ExpiredEntries: %d", stats.ExpiredEntries))
	lines = append(lines, fmt.Sprintf("HitRate: %.2f", stats.HitRate))
	lines = append(lines, fmt.Sprintf("TotalHits: %d", stats.TotalHits))
	lines = append(lines, fmt.Sprintf("TotalMisses: %d", stats.TotalMisses))
	lines = append(lines, fmt.Sprintf("MemoryUsage: %d/%d bytes (%.1f%%)",
		stats.MemoryUsageBytes, stats.MaxMemoryBytes, stats.MemoryUsagePercent*100))
	lines = append(lines, fmt.Sprintf("EfficiencyScore: %.2f", stats.EfficiencyScore))
	lines = append(lines, fmt.Sprintf("Evictions: %d", stats.TotalEvictions))
	lines = append(lines, fmt.Sprintf("Cleanups: %d", stats.TotalCleanups))
	lines = append(lines, fmt.Sprintf("Warms: %d", stats.TotalWarms))
	lines = append(lines, fmt.Sprintf("WarmingActive: %v", stats.WarmingActive))
	for _, top := range stats.TopEntries {
		lines = append(lines, fmt.Sprintf("  top: %s (%d accesses)", top.Key, top.AccessCount))
	}

	return strings.Join(lines, "\n")
}

// RenderBinding renders a single binding (joined with its action) as key-value pairs.
func (p *PlainPresenter) RenderBinding(action keyboard.Action, binding keyboard.Binding) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Action: %s (%s)", action.Name, action.ID))
	lines = append(lines, fmt.Sprintf("KeyCombo: %s", binding.KeyCombo))
	lines = append(lines, fmt.Sprintf("Context: %s", binding.Context))
	lines = append(lines, fmt.Sprintf("Priority: %s", binding.Priority))
	lines = append(lines, fmt.Sprintf("Enabled: %v", binding.Enabled))
	return strings.Join(lines, "\n")
}

// RenderBindings renders multiple bindings, one per line.
func (p *PlainPresenter) RenderBindings(actions map[string]keyboard.Action, bindings []keyboard.Binding) string {
	if len(bindings) == 0 {
		return ""
	}

	var lines []string
	for _, b := range bindings {
		action := actions[b.ActionID]
		enabled := ""
		if !b.Enabled {
			enabled = " (disabled)"
		}
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s\t%s%s",
			b.KeyCombo,
			action.Name,
			b.Context,
			b.Priority,
			enabled,
		))
	}
	return strings.Join(lines, "\n")
}

// RenderError renders an error as plain text.
func (p *PlainPresenter) RenderError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("error: %s", err.Error())
}

// RenderSuccess renders a success message as plain text.
func (p *PlainPresenter) RenderSuccess(msg string) string {
	return msg
}
