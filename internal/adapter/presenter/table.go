package presenter

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/olafkfreund/comunicado-sub004/internal/aicache"
	"github.com/olafkfreund/comunicado-sub004/internal/domain/account"
	"github.com/olafkfreund/comunicado-sub004/internal/keyboard"
)

// TablePresenter formats output as ASCII tables.
type TablePresenter struct{}

// NewTablePresenter creates a new TablePresenter.
func NewTablePresenter() *TablePresenter {
	return &TablePresenter{}
}

// truncate shortens s to maxLen characters, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// createTable creates a new tablewriter with standard settings.
func createTable(buf *strings.Builder, headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(buf)
	table.Header(headers)
	return table
}

// RenderAccount renders a single account as a table.
func (p *TablePresenter) RenderAccount(acct *account.Config) string {
	if acct == nil {
		return "No account found"
	}

	var buf strings.Builder
	table := createTable(&buf, []string{"Field", "Value"})

	_ = table.Append([]string{"Account ID", acct.AccountID})
	_ = table.Append([]string{"Email", acct.EmailAddress})
	_ = table.Append([]string{"Provider", acct.Provider})
	_ = table.Append([]string{"Auth Mode", string(acct.AuthMode)})
	_ = table.Append([]string{"Security", string(acct.Security)})
	_ = table.Append([]string{"Default", fmt.Sprintf("%v", acct.IsDefault)})
	_ = table.Append([]string{"Added", acct.Added.Format("2006-01-02")})
	if !acct.LastUsed.IsZero() {
		_ = table.Append([]string{"Last Used", acct.LastUsed.Format("2006-01-02")})
	}
	_ = table.Append([]string{"Scopes", fmt.Sprintf("%d", len(acct.Scopes))})

	_ = table.Render()
	return buf.String()
}

// RenderAccounts renders multiple accounts as a table.
func (p *TablePresenter) RenderAccounts(accts []*account.Config) string {
	if len(accts) == 0 {
		return "No accounts found"
	}

	var buf strings.Builder
	table := createTable(&buf, []string{"", "Account ID", "Email", "Provider", "Scopes"})

	for _, acct := range accts {
		if acct == nil {
			continue
		}
		defaultMark := ""
		if acct.IsDefault {
			defaultMark = "*"
		}
		_ = table.Append([]string{
			defaultMark,
			truncate(acct.AccountID, 30),
			truncate(acct.EmailAddress, 30),
			acct.Provider,
			fmt.Sprintf("%d", len(acct.Scopes)),
		})
	}

	_ = table.Render()
	return buf.String()
}

// RenderSyncEntry renders a single calendar's sync status as a table.
func (p *TablePresenter) RenderSyncEntry(entry SyncEntry) string {
	var buf strings.Builder
	table := createTable(&buf, []string{"Field", "Value"})

	_ = table.Append([]string{"Calendar", fmt.Sprintf("%s (%s)", entry.Meta.Name, entry.Meta.ID)})
	_ = table.Append([]string{"Source", entry.Meta.Source.String()})
	_ = table.Append([]string{"State", string(entry.Status.State)})
	_ = table.Append([]string{"Events Synced", fmt.Sprintf("%d", entry.Status.EventsSynced)})
	if entry.Status.LastError != "" {
		_ = table.Append([]string{"Last Error", truncate(entry.Status.LastError, 60)})
	}
	if entry.Meta.LastSynced != nil {
		_ = table.Append([]string{"Last Synced", entry.Meta.LastSynced.Format("2006-01-02 15:04:05")})
	}
	if entry.Status.Progress != nil {
		_ = table.Append([]string{"Progress", fmt.Sprintf("%s (%d/%d)",
			entry.Status.Progress.Phase, entry.Status.Progress.EventsProcessed, entry.Status.Progress.Total)})
	}

	_ = table.Render()
	return buf.String()
}

// RenderSyncEntries renders multiple calendars' sync status as a table.
func (p *TablePresenter) RenderSyncEntries(entries []SyncEntry) string {
	if len(entries) == 0 {
		return "No calendars found"
	}

	var buf strings.Builder
	table := createTable(&buf, []string{"Calendar", "Source", "State", "Events Synced"})

	for _, entry := range entries {
		_ = table.Append([]string{
			truncate(entry.Meta.Name, 30),
			entry.Meta.Source.String(),
			string(entry.Status.State),
			fmt.Sprintf("%d", entry.Status.EventsSynced),
		})
	}

	_ = table.Render()
	return buf.String()
}

// RenderCacheStats renders the AI cache statistics surface as a table.
func (p *TablePresenter) RenderCacheStats(stats *aicache.Stats) string {
	if stats == nil {
		return "No cache statistics available"
	}

	var buf strings.Builder
	table := createTable(&buf, []string{"Metric", "Value"})

	_ = table.Append([]string{"Total Entries", fmt.Sprintf("%d", stats.TotalEntries)})
	_ = table.Append([]string{"Valid Entries", fmt.Sprintf("%d", stats.ValidEntries)})
	_ = table.Append([]string{"Expired Entries", fmt.Sprintf("%d", stats.ExpiredEntries)})
	_ = table.Append([]string{"Hit Rate", fmt.Sprintf("%.2f", stats.HitRate)})
	_ = table.Append([]string{"Total Hits", fmt.Sprintf("%d", stats.TotalHits)})
	_ = table.Append([]string{"Total Misses", fmt.Sprintf("%d", stats.TotalMisses)})
	_ = table.Append([]string{"Memory Usage", fmt.Sprintf("%d/%d bytes (%.1f%%)",
		stats.MemoryUsageBytes, stats.MaxMemoryBytes, stats.MemoryUsagePercent*100)})
	_ = table.Append([]string{"Efficiency Score", fmt.Sprintf("%.2f", stats.EfficiencyScore)})
	_ = table.Append([]string{"Evictions", fmt.Sprintf("%d", stats.TotalEvictions)})
	_ = table.Append([]string{"Cleanups", fmt.Sprintf("%d", stats.TotalCleanups)})
	_ = table.Append([]string{"Warms", fmt.Sprintf("%d", stats.TotalWarms)})
	_ = table.Append([]string{"Warming Active", fmt.Sprintf("%v", stats.WarmingActive)})

	_ = table.Render()
	return buf.String()
}

// RenderBinding renders a single binding (joined with its action) as a table.
func (p *TablePresenter) RenderBinding(action keyboard.Action, binding keyboard.Binding) string {
	var buf strings.Builder
	table := createTable(&buf, []string{"Field", "Value"})

	_ = table.Append([]string{"Action", fmt.Sprintf("%s (%s)", action.Name, action.ID)})
	_ = table.Append([]string{"Key Combo", binding.KeyCombo})
	_ = table.Append([]string{"Context", string(binding.Context)})
	_ = table.Append([]string{"Priority", binding.Priority.String()})
	_ = table.Append([]string{"Enabled", fmt.Sprintf("%v", binding.Enabled)})

	_ = table.Render()
	return buf.String()
}

// RenderBindings renders multiple bindings as a table.
func (p *TablePresenter) RenderBindings(actions map[string]keyboard.Action, bindings []keyboard.Binding) string {
	if len(bindings) == 0 {
		return "No bindings found"
	}

	var buf strings.Builder
	table := createTable(&buf, []string{"Key Combo", "Action", "Context", "Priority", "Enabled"})

	for _, b := range bindings {
		action := actions[b.ActionID]
		_ = table.Append([]string{
			b.KeyCombo,
			truncate(action.Name, 30),
			string(b.Context),
			b.Priority.String(),
			fmt.Sprintf("%v", b.Enabled),
		})
	}

	_ = table.Render()
	return buf.String()
}

// RenderError renders an error as a table.
func (p *TablePresenter) RenderError(err error) string {
	if err == nil {
		return ""
	}
	var buf strings.Builder
	table := createTable(&buf, []string{"Error"})
	_ = table.Append([]string{err.Error()})
	_ = table.Render()
	return buf.String()
}

// RenderSuccess renders a success message as a table.
func (p *TablePresenter) RenderSuccess(msg string) string {
	var buf strings.Builder
	table := createTable(&buf, []string{"Success"})
	_ = table.Append([]string{msg})
	_ = table.Render()
	return buf.String()
}
