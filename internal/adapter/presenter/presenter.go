// Package presenter formats core-package state (accounts, calendar sync
// status, AI cache stats, keyboard bindings) for terminal output.
package presenter

import (
	"github.com/olafkfreund/comunicado-sub004/internal/aicache"
	"github.com/olafkfreund/comunicado-sub004/internal/calendarsync"
	"github.com/olafkfreund/comunicado-sub004/internal/domain/account"
	"github.com/olafkfreund/comunicado-sub004/internal/keyboard"
)

// Format constants for presenter output types.
const (
	FormatJSON  = "json"
	FormatTable = "table"
	FormatPlain = "plain"
)

// SyncEntry pairs a calendar's static metadata with its live sync status,
// the unit the calendar sync engine reports one of per tracked calendar.
type SyncEntry struct {
	Meta   calendarsync.CalendarMeta
	Status calendarsync.SyncStatus
}

// Presenter renders core-package domain state for the CLI's --format flag.
type Presenter interface {
	// Account
	RenderAccount(acct *account.Config) string
	RenderAccounts(accts []*account.Config) string

	// Calendar sync
	RenderSyncEntry(entry SyncEntry) string
	RenderSyncEntries(entries []SyncEntry) string

	// AI cache
	RenderCacheStats(stats *aicache.Stats) string

	// Keyboard bindings
	RenderBinding(action keyboard.Action, binding keyboard.Binding) string
	RenderBindings(actions map[string]keyboard.Action, bindings []keyboard.Binding) string

	// Generic
	RenderError(err error) string
	RenderSuccess(msg string) string
}

// New creates a new Presenter based on the specified format.
// Supported formats: "json", "table", "plain".
// Returns a TablePresenter as the default if the format is not recognized.
func New(format string) Presenter {
	switch format {
	case FormatJSON:
		return NewJSONPresenter()
	case FormatPlain:
		return NewPlainPresenter()
	case FormatTable:
		return NewTablePresenter()
	default:
		return NewTablePresenter()
	}
}
