package keyboard

// Context scopes for the built-in action set. Global matches all of them
// during lookup; the others are distinct UI panes of the client.
const (
	ContextEmail    Context = "email"
	ContextCompose  Context = "compose"
	ContextCalendar Context = "calendar"
	ContextAccounts Context = "accounts"
)

// DefaultActions returns the built-in action taxonomy, grouped by
// category, each carrying its default key combo.
func DefaultActions() []Action {
	return []Action{
		// Email navigation
		{ID: "email.next", Name: "Next message", Category: "email", Context: ContextEmail, DefaultBinding: "j", Customizable: true},
		{ID: "email.prev", Name: "Previous message", Category: "email", Context: ContextEmail, DefaultBinding: "k", Customizable: true},
		{ID: "email.open", Name: "Open message", Category: "email", Context: ContextEmail, DefaultBinding: "Enter", Customizable: true},
		{ID: "email.back", Name: "Back to list", Category: "email", Context: ContextEmail, DefaultBinding: "Esc", Customizable: true},

		// Email actions
		{ID: "email.archive", Name: "Archive", Category: "email", Context: ContextEmail, DefaultBinding: "e", Customizable: true},
		{ID: "email.star", Name: "Star / unstar", Category: "email", Context: ContextEmail, DefaultBinding: "s", Customizable: true},
		{ID: "email.trash", Name: "Move to trash", Category: "email", Context: ContextEmail, DefaultBinding: "Delete", Customizable: true},
		{ID: "email.mark_read", Name: "Toggle read/unread", Category: "email", Context: ContextEmail, DefaultBinding: "u", Customizable: true},

		// Compose
		{ID: "compose.new", Name: "Compose new message", Category: "compose", Context: ContextEmail, DefaultBinding: "c", Customizable: true},
		{ID: "compose.reply", Name: "Reply", Category: "compose", Context: ContextEmail, DefaultBinding: "r", Customizable: true},
		{ID: "compose.reply_all", Name: "Reply all", Category: "compose", Context: ContextEmail, DefaultBinding: "Shift+r", Customizable: true},
		{ID: "compose.forward", Name: "Forward", Category: "compose", Context: ContextEmail, DefaultBinding: "f", Customizable: true},
		{ID: "compose.send", Name: "Send message", Category: "compose", Context: ContextCompose, DefaultBinding: "Ctrl+Enter", Customizable: true},

		// Calendar
		{ID: "calendar.today", Name: "Jump to today", Category: "calendar", Context: ContextCalendar, DefaultBinding: "t", Customizable: true},
		{ID: "calendar.next_day", Name: "Next day", Category: "calendar", Context: ContextCalendar, DefaultBinding: "l", Customizable: true},
		{ID: "calendar.prev_day", Name: "Previous day", Category: "calendar", Context: ContextCalendar, DefaultBinding: "h", Customizable: true},
		{ID: "calendar.create_event", Name: "Create event", Category: "calendar", Context: ContextCalendar, DefaultBinding: "n", Customizable: true},
		{ID: "calendar.sync_now", Name: "Force sync now", Category: "calendar", Context: ContextCalendar, DefaultBinding: "Ctrl+r", Customizable: true},

		// Accounts
		{ID: "accounts.add", Name: "Add account", Category: "accounts", Context: ContextAccounts, DefaultBinding: "a", Customizable: true},
		{ID: "accounts.remove", Name: "Remove account", Category: "accounts", Context: ContextAccounts, DefaultBinding: "Delete", Customizable: true},

		// Global
		{ID: "global.command_palette", Name: "Command palette", Category: "global", Context: Global, DefaultBinding: "Ctrl+k", Customizable: true},
		{ID: "global.search", Name: "Search", Category: "global", Context: Global, DefaultBinding: "/", Customizable: true},
		{ID: "global.help", Name: "Show keybindings", Category: "global", Context: Global, DefaultBinding: "F1", Customizable: true},
		{ID: "global.quit", Name: "Quit", Category: "global", Context: Global, DefaultBinding: "Ctrl+q", Customizable: false},
	}
}

// NewDefaultTable constructs a Table pre-seeded with DefaultActions and
// their default bindings installed at PriorityDefault.
func NewDefaultTable(opts ...Option) (*Table, error) {
	t := NewTable(opts...)
	for _, a := range DefaultActions() {
		if err := t.RegisterAction(a); err != nil {
			return nil, err
		}
		if a.DefaultBinding == "" {
			continue
		}
		if _, err := t.AddBinding(a.ID, a.DefaultBinding, a.Context, PriorityDefault); err != nil {
			return nil, err
		}
	}
	return t, nil
}
