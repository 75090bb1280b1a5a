package presenter

import (
	"encoding/json"

	"github.com/olafkfreund/comunicado-sub004/internal/aicache"
	"github.com/olafkfreund/comunicado-sub004/internal/domain/account"
	"github.com/olafkfreund/comunicado-sub004/internal/keyboard"
)

// JSONPresenter formats output as indented JSON.
type JSONPresenter struct{}

// NewJSONPresenter creates a new JSONPresenter.
func NewJSONPresenter() *JSONPresenter {
	return &JSONPresenter{}
}

// marshalJSON marshals v to indented JSON, returning an empty object on error.
func (p *JSONPresenter) marshalJSON(v interface{}) string {
	if v == nil {
		return "null"
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// RenderAccount renders a single account as JSON.
func (p *JSONPresenter) RenderAccount(acct *account.Config) string {
	return p.marshalJSON(acct)
}

// RenderAccounts renders multiple accounts as JSON.
func (p *JSONPresenter) RenderAccounts(accts []*account.Config) string {
	if accts == nil {
		return "[]"
	}
	return p.marshalJSON(accts)
}

// RenderSyncEntry renders a single calendar's sync status as JSON.
func (p *JSONPresenter) RenderSyncEntry(entry SyncEntry) string {
	return p.marshalJSON(entry)
}

// RenderSyncEntries renders multiple calendars' sync status as JSON.
func (p *JSONPresenter) RenderSyncEntries(entries []SyncEntry) string {
	if entries == nil {
		return "[]"
	}
	return p.marshalJSON(entries)
}

// RenderCacheStats renders the AI cache statistics surface as JSON.
func (p *JSONPresenter) RenderCacheStats(stats *aicache.Stats) string {
	return p.marshalJSON(stats)
}

// bindingRecord is the JSON shape for one resolved binding: the action it
// triggers joined with the binding's own key-combo and priority metadata.
type bindingRecord struct {
	ActionID    string `json:"action_id"`
	ActionName  string `json:"action_name"`
	Category    string `json:"category"`
	KeyCombo    string `json:"key_combo"`
	Context     string `json:"context"`
	Priority    string `json:"priority"`
	Enabled     bool   `json:"enabled"`
	Customizable bool  `json:"customizable"`
}

func toBindingRecord(actions map[string]keyboard.Action, binding keyboard.Binding) bindingRecord {
	action := actions[binding.ActionID]
	return bindingRecord{
		ActionID:     binding.ActionID,
		ActionName:   action.Name,
		Category:     action.Category,
		KeyCombo:     binding.KeyCombo,
		Context:      string(binding.Context),
		Priority:     binding.Priority.String(),
		Enabled:      binding.Enabled,
		Customizable: action.Customizable,
	}
}

// RenderBinding renders a single binding (joined with its action) as JSON.
func (p *JSONPresenter) RenderBinding(action keyboard.Action, binding keyboard.Binding) string {
	return p.marshalJSON(toBindingRecord(map[string]keyboard.Action{action.ID: action}, binding))
}

// RenderBindings renders multiple bindings (joined with their actions) as JSON.
func (p *JSONPresenter) RenderBindings(actions map[string]keyboard.Action, bindings []keyboard.Binding) string {
	if bindings == nil {
		return "[]"
	}
	records := make([]bindingRecord, 0, len(bindings))
	for _, b := range bindings {
		records = append(records, toBindingRecord(actions, b))
	}
	return p.marshalJSON(records)
}

// errorResponse is the JSON structure for error output.
type errorResponse struct {
	Error string `json:"error"`
}

// successResponse is the JSON structure for success output.
type successResponse struct {
	Message string `json:"message"`
}

// RenderError renders an error as JSON.
func (p *JSONPresenter) RenderError(err error) string {
	if err == nil {
		return p.marshalJSON(errorResponse{Error: ""})
	}
	return p.marshalJSON(errorResponse{Error: err.Error()})
}

// RenderSuccess renders a success message as JSON.
func (p *JSONPresenter) RenderSuccess(msg string) string {
	return p.marshalJSON(successResponse{Message: msg})
}
