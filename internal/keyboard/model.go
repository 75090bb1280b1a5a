// Package keyboard implements the Keyboard Binding Core (spec §4.G): a
// context-scoped, priority-ordered binding table with dynamic action
// registration, conflict resolution, and structured-document persistence.
package keyboard

import "time"

// Context is a UI scope a binding applies to. Global matches every scope.
type Context string

// Global is the distinguished context that matches all other contexts
// during lookup.
const Global Context = "global"

// Priority orders bindings that collide on the same (key_combo, context).
// The zero value is the lowest priority.
type Priority int

const (
	PriorityDefault Priority = iota
	PriorityPlugin
	PriorityUser
	PrioritySystem
)

func (p Priority) String() string {
	switch p {
	case PriorityDefault:
		return "default"
	case PriorityPlugin:
		return "plugin"
	case PriorityUser:
		return "user"
	case PrioritySystem:
		return "system"
	default:
		return "unknown"
	}
}

// Action is a registerable command that bindings may be attached to.
type Action struct {
	ID             string
	Name           string
	Description    string
	Category       string
	Context        Context
	DefaultBinding string // key-combo string, empty if the action has none
	Customizable   bool
}

// Binding attaches a key combo to an action within a context at a given
// priority.
type Binding struct {
	ID          string
	ActionID    string
	KeyCombo    string
	Context     Context
	Priority    Priority
	Enabled     bool
	Created     time.Time
	Modified    time.Time
}

// ConflictResolution governs what add_binding does when a new binding
// collides with an incumbent on the same (key_combo, context).
type ConflictResolution int

const (
	// ConflictReject fails the add, naming the incumbent.
	ConflictReject ConflictResolution = iota
	// ConflictPriority accepts iff the new binding's priority strictly
	// exceeds the incumbent's.
	ConflictPriority
	// ConflictLatest removes the incumbent and accepts the new binding.
	ConflictLatest
	// ConflictPrompt fails and defers resolution to a UI layer.
	ConflictPrompt
)

func (c ConflictResolution) String() string {
	switch c {
	case ConflictReject:
		return "reject"
	case ConflictPriority:
		return "priority"
	case ConflictLatest:
		return "latest"
	case ConflictPrompt:
		return "prompt"
	default:
		return "unknown"
	}
}
