// Package accountconfig implements the Account Config Store (spec §4.B): a
// per-account JSON file persistence layer for the non-secret fields of an
// account.Config. Secret fields live exclusively in the secret store; this
// package reads only the JSON files and does not join tokens into the
// configs it returns (token.Manager.LoadAll performs that join).
package accountconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/olafkfreund/comunicado-sub004/internal/domain/account"
	"github.com/olafkfreund/comunicado-sub004/internal/infrastructure/secretstore"
)

// Service namespaces used in the secret store, per spec §6.
const (
	ServiceAccessToken  = "comunicado-access-token"
	ServiceRefreshToken = "comunicado-refresh-token"
)

// fileRecord is the on-disk, non-secret representation of an account.Config.
type fileRecord struct {
	AccountID      string     `json:"account_id"`
	DisplayName    string     `json:"display_name"`
	EmailAddress   string     `json:"email_address"`
	Provider       string     `json:"provider"`
	IMAPServer     string     `json:"imap_server"`
	IMAPPort       int        `json:"imap_port"`
	SMTPServer     string     `json:"smtp_server"`
	SMTPPort       int        `json:"smtp_port"`
	Security       string     `json:"security"`
	AuthMode       string     `json:"auth_mode"`
	TokenExpiresAt *time.Time `json:"token_expires_at"`
	Scopes         []string   `json:"scopes"`
	Added          time.Time  `json:"added"`
	LastUsed       time.Time  `json:"last_used"`
	IsDefault      bool       `json:"is_default"`
}

func toRecord(cfg *account.Config) fileRecord {
	return fileRecord{
		AccountID:      cfg.AccountID,
		DisplayName:    cfg.DisplayName,
		EmailAddress:   cfg.EmailAddress,
		Provider:       cfg.Provider,
		IMAPServer:     cfg.IMAPServer,
		IMAPPort:       cfg.IMAPPort,
		SMTPServer:     cfg.SMTPServer,
		SMTPPort:       cfg.SMTPPort,
		Security:       string(cfg.Security),
		AuthMode:       string(cfg.AuthMode),
		TokenExpiresAt: cfg.TokenExpiresAt,
		Scopes:         cfg.Scopes,
		Added:          cfg.Added,
		LastUsed:       cfg.LastUsed,
		IsDefault:      cfg.IsDefault,
	}
}

func fromRecord(r fileRecord) *account.Config {
	return &account.Config{
		AccountID:      r.AccountID,
		DisplayName:    r.DisplayName,
		EmailAddress:   r.EmailAddress,
		Provider:       r.Provider,
		IMAPServer:     r.IMAPServer,
		IMAPPort:       r.IMAPPort,
		SMTPServer:     r.SMTPServer,
		SMTPPort:       r.SMTPPort,
		Security:       account.SecurityMode(r.Security),
		AuthMode:       account.AuthMode(r.AuthMode),
		TokenExpiresAt: r.TokenExpiresAt,
		Scopes:         append([]string(nil), r.Scopes...),
		Added:          r.Added,
		LastUsed:       r.LastUsed,
		IsDefault:      r.IsDefault,
	}
}

// Store implements account.Repository by persisting one JSON document per
// account under <dir>/<account_id>.json. The secret store is used only by
// Delete, to purge the account's tokens.
type Store struct {
	dir     string
	secrets secretstore.Store
}

// New creates a Store rooted at dir, creating it if necessary.
func New(dir string, secrets secretstore.Store) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("accountconfig: create dir: %w", err)
	}
	return &Store{dir: dir, secrets: secrets}, nil
}

// DefaultDir returns the platform-specific accounts directory.
func DefaultDir() (string, error) {
	if envDir := os.Getenv("COMUNICADO_CONFIG_DIR"); envDir != "" {
		return filepath.Join(envDir, "accounts"), nil
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
	return filepath.Join(base, "accounts"), nil
}

func (s *Store) path(accountID string) string {
	return filepath.Join(s.dir, accountID+".json")
}

// Save persists the non-secret fields of cfg to its JSON file with secure
// (0600) permissions.
func (s *Store) Save(cfg *account.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	rec := toRecord(cfg)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("accountconfig: marshal: %w", err)
	}
	f, err := os.OpenFile(s.path(cfg.AccountID), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("accountconfig: open: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("accountconfig: write: %w", err)
	}
	return f.Close()
}

// Get loads the non-secret fields for accountID. It does not read the
// access/refresh tokens from the secret store.
func (s *Store) Get(accountID string) (*account.Config, error) {
	data, err := os.ReadFile(s.path(accountID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, account.ErrAccountNotFound
		}
		return nil, fmt.Errorf("accountconfig: read: %w", err)
	}
	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("accountconfig: unmarshal: %w", err)
	}
	return fromRecord(rec), nil
}

// List returns every persisted account config, sorted by account_id for
// deterministic iteration.
func (s *Store) List() ([]*account.Config, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("accountconfig: list dir: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(ids)

	configs := make([]*account.Config, 0, len(ids))
	for _, id := range ids {
		cfg, err := s.Get(id)
		if err != nil {
			continue
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

// ListIDs returns the account_ids of every persisted config.
func (s *Store) ListIDs() ([]string, error) {
	configs, err := s.List()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(configs))
	for _, c := range configs {
		ids = append(ids, c.AccountID)
	}
	return ids, nil
}

// Delete removes the config file and purges both token services from the
// secret store.
func (s *Store) Delete(accountID string) error {
	if err := os.Remove(s.path(accountID)); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("accountconfig: remove: %w", err)
		}
	}
	_ = s.secrets.Delete(ServiceAccessToken, accountID)
	_ = s.secrets.Delete(ServiceRefreshToken, accountID)
	return nil
}

// SetDefault marks accountID as the default, clearing IsDefault on every
// other persisted account.
func (s *Store) SetDefault(accountID string) error {
	target, err := s.Get(accountID)
	if err != nil {
		return err
	}
	all, err := s.List()
	if err != nil {
		return err
	}
	for _, c := range all {
		if c.AccountID == accountID {
			continue
		}
		if c.IsDefault {
			c.IsDefault = false
			if err := s.Save(c); err != nil {
				return err
			}
		}
	}
	target.IsDefault = true
	return s.Save(target)
}

// GetDefault returns the account marked as default.
func (s *Store) GetDefault() (*account.Config, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	for _, c := range all {
		if c.IsDefault {
			return c, nil
		}
	}
	return nil, account.ErrAccountNotFound
}

// UpdateTokens is the token-manager-facing entry point: it updates only
// the expiry bookkeeping in the per-account file (access/refresh token
// bytes themselves are written directly to the secret store by the
// caller, never here).
func (s *Store) UpdateTokens(accountID string, expiresAt *time.Time) error {
	cfg, err := s.Get(accountID)
	if err != nil {
		return err
	}
	cfg.TokenExpiresAt = expiresAt
	cfg.LastUsed = time.Now()
	return s.Save(cfg)
}
