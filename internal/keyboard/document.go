package keyboard

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// document is the on-disk structured form of a Table (spec §6, "Keyboard
// config file").
type document struct {
	Version     int               `json:"version"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Author      string            `json:"author,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	ModifiedAt  time.Time         `json:"modified_at"`
	Actions     []actionRecord    `json:"actions"`
	Bindings    []bindingRecord   `json:"bindings"`
}

type actionRecord struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	Context        string `json:"context"`
	DefaultBinding string `json:"default_binding,omitempty"`
	Customizable   bool   `json:"customizable"`
}

type bindingRecord struct {
	ID             string    `json:"id"`
	ActionID       string    `json:"action_id"`
	KeyCombination string    `json:"key_combination"`
	Context        string    `json:"context"`
	Priority       string    `json:"priority"`
	Enabled        bool      `json:"enabled"`
	Created        time.Time `json:"created_at"`
	Modified       time.Time `json:"modified_at"`
}

const documentVersion = 1

func priorityFromString(s string) (Priority, error) {
	switch s {
	case "default":
		return PriorityDefault, nil
	case "plugin":
		return PriorityPlugin, nil
	case "user":
		return PriorityUser, nil
	case "system":
		return PrioritySystem, nil
	default:
		return 0, fmt.Errorf("keyboard: unknown priority %q", s)
	}
}

func (t *Table) toDocument(name string) document {
	t.mu.RLock()
	defer t.mu.RUnlock()

	doc := document{
		Version:    documentVersion,
		Name:       name,
		ModifiedAt: time.Now(),
	}
	for _, a := range t.actions {
		doc.Actions = append(doc.Actions, actionRecord{
			ID:             a.ID,
			Name:           a.Name,
			Description:    a.Description,
			Category:       a.Category,
			Context:        string(a.Context),
			DefaultBinding: a.DefaultBinding,
			Customizable:   a.Customizable,
		})
	}
	for _, b := range t.bindings {
		doc.Bindings = append(doc.Bindings, bindingRecord{
			ID:             b.ID,
			ActionID:       b.ActionID,
			KeyCombination: b.KeyCombo,
			Context:        string(b.Context),
			Priority:       b.Priority.String(),
			Enabled:        b.Enabled,
			Created:        b.Created,
			Modified:       b.Modified,
		})
	}
	return doc
}

// loadDocument replaces the table's entire state with doc's contents.
// Every binding must reference a known action id (its own or one already
// present if merge semantics are layered on top by the caller).
func (t *Table) loadDocument(doc document) error {
	actions := make(map[string]Action, len(doc.Actions))
	seen := make(map[string]bool, len(doc.Actions))
	for _, ar := range doc.Actions {
		if seen[ar.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateActionID, ar.ID)
		}
		seen[ar.ID] = true
		actions[ar.ID] = Action{
			ID:             ar.ID,
			Name:           ar.Name,
			Description:    ar.Description,
			Category:       ar.Category,
			Context:        Context(ar.Context),
			DefaultBinding: ar.DefaultBinding,
			Customizable:   ar.Customizable,
		}
	}

	bindings := make(map[string]*Binding, len(doc.Bindings))
	for _, br := range doc.Bindings {
		if _, ok := actions[br.ActionID]; !ok {
			return fmt.Errorf("%w: binding %s references unknown action %s", ErrImportInvalid, br.ID, br.ActionID)
		}
		priority, err := priorityFromString(br.Priority)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrImportInvalid, err)
		}
		bindings[br.ID] = &Binding{
			ID:       br.ID,
			ActionID: br.ActionID,
			KeyCombo: br.KeyCombination,
			Context:  Context(br.Context),
			Priority: priority,
			Enabled:  br.Enabled,
			Created:  br.Created,
			Modified: br.Modified,
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.actions = actions
	t.bindings = bindings
	return nil
}

// mergeDocument layers doc's actions/bindings on top of the table's
// existing state: actions absent from doc keep their defaults seeded,
// and doc's actions/bindings are added or replace same-id entries.
func (t *Table) mergeDocument(doc document) error {
	for _, ar := range doc.Actions {
		action := Action{
			ID:             ar.ID,
			Name:           ar.Name,
			Description:    ar.Description,
			Category:       ar.Category,
			Context:        Context(ar.Context),
			DefaultBinding: ar.DefaultBinding,
			Customizable:   ar.Customizable,
		}
		t.mu.Lock()
		t.actions[ar.ID] = action
		t.mu.Unlock()
	}

	for _, br := range doc.Bindings {
		t.mu.RLock()
		_, exists := t.actions[br.ActionID]
		t.mu.RUnlock()
		if !exists {
			return fmt.Errorf("%w: binding %s references unknown action %s", ErrImportInvalid, br.ID, br.ActionID)
		}
		priority, err := priorityFromString(br.Priority)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrImportInvalid, err)
		}
		t.mu.Lock()
		t.bindings[br.ID] = &Binding{
			ID:       br.ID,
			ActionID: br.ActionID,
			KeyCombo: br.KeyCombination,
			Context:  Context(br.Context),
			Priority: priority,
			Enabled:  br.Enabled,
			Created:  br.Created,
			Modified: br.Modified,
		}
		t.mu.Unlock()
	}
	return nil
}

// Export writes the table's current state as a structured document to path.
func (t *Table) Export(path string) error {
	doc := t.toDocument(filepath.Base(path))
	return writeDocument(path, doc)
}

// Import reads a structured document from path. When merge is false the
// table's entire configuration is replaced and defaults are re-seeded for
// any action absent from the import; when true, the import is layered on
// top of the existing state.
func (t *Table) Import(path string, merge bool) error {
	doc, err := readDocument(path)
	if err != nil {
		return err
	}
	if err := validateDocument(doc); err != nil {
		return err
	}

	if !merge {
		existing := t.Actions()
		if err := t.loadDocument(doc); err != nil {
			return err
		}
		imported := make(map[string]bool, len(doc.Actions))
		for _, ar := range doc.Actions {
			imported[ar.ID] = true
		}
		for _, a := range existing {
			if imported[a.ID] {
				continue
			}
			t.mu.Lock()
			t.actions[a.ID] = a
			t.mu.Unlock()
			if a.DefaultBinding != "" {
				if _, err := t.AddBinding(a.ID, a.DefaultBinding, a.Context, PriorityDefault); err != nil {
					t.log.Warn().Err(err).Str("action_id", a.ID).Msg("keyboard: failed to re-seed default binding on import")
				}
			}
		}
		return nil
	}

	return t.mergeDocument(doc)
}

func validateDocument(doc document) error {
	seen := make(map[string]bool, len(doc.Actions))
	for _, ar := range doc.Actions {
		if seen[ar.ID] {
			return fmt.Errorf("%w: duplicate action id %s", ErrDuplicateActionID, ar.ID)
		}
		seen[ar.ID] = true
	}
	for _, br := range doc.Bindings {
		if !seen[br.ActionID] {
			return fmt.Errorf("%w: binding %s references unknown action %s", ErrImportInvalid, br.ID, br.ActionID)
		}
	}
	return nil
}

func readDocument(path string) (document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return document{}, fmt.Errorf("keyboard: read document: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("keyboard: parse document: %w", err)
	}
	return doc, nil
}

func writeDocument(path string, doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("keyboard: marshal document: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("keyboard: create dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("keyboard: open: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("keyboard: write: %w", err)
	}
	return f.Close()
}

// DefaultPath returns the platform-specific keyboard config file path.
func DefaultPath() (string, error) {
	if envDir := os.Getenv("COMUNICADO_CONFIG_DIR"); envDir != "" {
		return filepath.Join(envDir, "keybindings.json"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	var base string
	switch runtime.GOOS {
	case "darwin":
		base = filepath.Join(home, "Library", "Application Support", "comunicado")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		base = filepath.Join(appData, "comunicado")
	default:
		base = filepath.Join(home, ".config", "comunicado")
	}
	return filepath.Join(base, "keybindings.json"), nil
}

// Save writes the table to its default path.
func (t *Table) Save() error {
	path, err := DefaultPath()
	if err != nil {
		return err
	}
	return t.Export(path)
}

// Load replaces the table's state with the document at the default path.
func (t *Table) Load() error {
	path, err := DefaultPath()
	if err != nil {
		return err
	}
	doc, err := readDocument(path)
	if err != nil {
		return err
	}
	if err := validateDocument(doc); err != nil {
		return err
	}
	return t.loadDocument(doc)
}
