package keyboard

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Table is the Keyboard Binding Core's live state: an action registry
// plus a binding table, guarded by a single lock (spec §5: "one lock
// over the combined (config, context_index) state; lookups are short").
type Table struct {
	mu sync.RWMutex

	actions  map[string]Action
	bindings map[string]*Binding

	resolution ConflictResolution
	log        zerolog.Logger

	nextID int
}

// Option configures a Table at construction time.
type Option func(*Table)

// WithConflictResolution sets the policy applied when add_binding
// collides with an incumbent. Defaults to Reject.
func WithConflictResolution(r ConflictResolution) Option {
	return func(t *Table) { t.resolution = r }
}

// WithLogger overrides the zero-value (discard) logger.
func WithLogger(log zerolog.Logger) Option {
	return func(t *Table) { t.log = log }
}

// NewTable constructs an empty Table.
func NewTable(opts ...Option) *Table {
	t := &Table{
		actions:    make(map[string]Action),
		bindings:   make(map[string]*Binding),
		resolution: ConflictReject,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RegisterAction adds a new action. Fails if action.ID already exists.
func (t *Table) RegisterAction(action Action) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.actions[action.ID]; exists {
		return fmt.Errorf("%w: %s", ErrActionExists, action.ID)
	}
	t.actions[action.ID] = action
	return nil
}

// UnregisterAction removes an action. Existing bindings referencing it
// are left in place (invariant iii: unregistering never corrupts
// bindings that still reference valid actions — it only affects this
// one action's own bindings, which become orphaned but are not deleted).
func (t *Table) UnregisterAction(actionID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.actions[actionID]; !exists {
		return fmt.Errorf("%w: %s", ErrActionNotFound, actionID)
	}
	delete(t.actions, actionID)
	return nil
}

func (t *Table) nextBindingID() string {
	t.nextID++
	return fmt.Sprintf("binding-%d", t.nextID)
}

// AddBinding attaches combo to action_id within context at the given
// priority, applying the configured ConflictResolution on collision.
func (t *Table) AddBinding(actionID, comboStr string, context Context, priority Priority) (*Binding, error) {
	combo, err := ParseCombo(comboStr)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.actions[actionID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrActionNotFound, actionID)
	}

	incumbent := t.findConflictLocked(combo, context)
	if incumbent != nil {
		switch t.resolution {
		case ConflictReject:
			return nil, fmt.Errorf("%w: %s already bound to action %s", ErrBindingConflict, comboStr, incumbent.ActionID)
		case ConflictPriority:
			if priority <= incumbent.Priority {
				return nil, fmt.Errorf("%w: %s held by %s at priority %s", ErrBindingConflict, comboStr, incumbent.ActionID, incumbent.Priority)
			}
			delete(t.bindings, incumbent.ID)
		case ConflictLatest:
			delete(t.bindings, incumbent.ID)
		case ConflictPrompt:
			return nil, ErrPromptDeferred
		}
	}

	now := time.Now()
	b := &Binding{
		ID:       t.nextBindingID(),
		ActionID: actionID,
		KeyCombo: combo.String(),
		Context:  context,
		Priority: priority,
		Enabled:  true,
		Created:  now,
		Modified: now,
	}
	t.bindings[b.ID] = b
	clone := *b
	return &clone, nil
}

// findConflictLocked returns the enabled binding (if any) that collides
// with combo in context — either same-context or a matching Global
// binding. Caller must hold t.mu.
func (t *Table) findConflictLocked(combo Combo, context Context) *Binding {
	for _, b := range t.bindings {
		if !b.Enabled {
			continue
		}
		if b.Context != context && b.Context != Global {
			continue
		}
		parsed, err := ParseCombo(b.KeyCombo)
		if err != nil {
			continue
		}
		if parsed.Matches(combo) {
			return b
		}
	}
	return nil
}

// RemoveBinding deletes a binding by id.
func (t *Table) RemoveBinding(bindingID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.bindings[bindingID]; !ok {
		return fmt.Errorf("%w: %s", ErrBindingNotFound, bindingID)
	}
	delete(t.bindings, bindingID)
	return nil
}

// SetEnabled toggles whether a binding participates in lookup.
func (t *Table) SetEnabled(bindingID string, enabled bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, ok := t.bindings[bindingID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrBindingNotFound, bindingID)
	}
	b.Enabled = enabled
	b.Modified = time.Now()
	return nil
}

// Lookup resolves a key event to an action id: context-specific bindings
// first (highest priority, enabled only), then Global bindings.
func (t *Table) Lookup(key string, ctrl, alt, shift bool, context Context) (string, bool) {
	combo := Combo{Key: key, Ctrl: ctrl, Alt: alt, Shift: shift}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if id, ok := t.bestMatchLocked(combo, context, false); ok {
		return id, true
	}
	return t.bestMatchLocked(combo, Global, true)
}

// bestMatchLocked scans bindings in exactly the given context (Global
// matching is handled by the caller making two passes) and returns the
// action id of the highest-priority enabled match. globalOnly restricts
// the scan to Global bindings even when context == Global was passed in
// directly by the caller.
func (t *Table) bestMatchLocked(combo Combo, context Context, globalOnly bool) (string, bool) {
	var best *Binding
	for _, b := range t.bindings {
		if !b.Enabled {
			continue
		}
		if globalOnly {
			if b.Context != Global {
				continue
			}
		} else if b.Context != context {
			continue
		}
		parsed, err := ParseCombo(b.KeyCombo)
		if err != nil {
			continue
		}
		if !parsed.Matches(combo) {
			continue
		}
		if best == nil || b.Priority > best.Priority {
			best = b
		}
	}
	if best == nil {
		return "", false
	}
	return best.ActionID, true
}

// Action returns a registered action by id.
func (t *Table) Action(id string) (Action, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	a, ok := t.actions[id]
	return a, ok
}

// Actions returns a snapshot of every registered action.
func (t *Table) Actions() []Action {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Action, 0, len(t.actions))
	for _, a := range t.actions {
		out = append(out, a)
	}
	return out
}

// Bindings returns a snapshot of every binding.
func (t *Table) Bindings() []Binding {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Binding, 0, len(t.bindings))
	for _, b := range t.bindings {
		out = append(out, *b)
	}
	return out
}

// ResetToDefaults removes every binding of every registered action, then
// reinstalls the default binding for each action that declares one.
// Actions without a default binding are left with no bindings.
func (t *Table) ResetToDefaults() error {
	t.mu.Lock()
	actions := make([]Action, 0, len(t.actions))
	for _, a := range t.actions {
		actions = append(actions, a)
	}
	for id, b := range t.bindings {
		if _, ok := t.actions[b.ActionID]; ok {
			delete(t.bindings, id)
		}
	}
	t.mu.Unlock()

	for _, a := range actions {
		if a.DefaultBinding == "" {
			continue
		}
		if _, err := t.AddBinding(a.ID, a.DefaultBinding, a.Context, PriorityDefault); err != nil {
			t.log.Warn().Err(err).Str("action_id", a.ID).Msg("keyboard: failed to reinstall default binding")
		}
	}
	return nil
}
