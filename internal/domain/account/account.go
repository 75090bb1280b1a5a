// Package account provides domain entities and interfaces for account management.
package account

import (
	"strings"
	"time"
)

// AuthMode distinguishes how an account authenticates with its provider.
type AuthMode string

const (
	AuthModeOAuth2   AuthMode = "oauth2"
	AuthModePassword AuthMode = "password"
)

// SecurityMode names the transport security an account's servers expect.
type SecurityMode string

const (
	SecurityNone     SecurityMode = "none"
	SecurityStartTLS SecurityMode = "starttls"
	SecurityTLS      SecurityMode = "tls"
)

// Config is the non-secret, persisted representation of a configured
// account: identity, transport coordinates, and auth bookkeeping. Secret
// fields (access_token, refresh_token) never appear here; they live in the
// secret store and are joined with the persisted configs by the token
// manager when it loads its accounts.
type Config struct {
	AccountID     string
	DisplayName   string
	EmailAddress  string
	Provider      string
	IMAPServer    string
	IMAPPort      int
	SMTPServer    string
	SMTPPort      int
	Security      SecurityMode
	AuthMode      AuthMode
	Scopes        []string
	TokenExpiresAt *time.Time
	Added         time.Time
	LastUsed      time.Time
	IsDefault     bool
}

// DeriveAccountID computes the canonical account_id: provider "_" canonicalized(email).
// Canonicalization lowercases the email and trims surrounding whitespace.
func DeriveAccountID(provider, email string) string {
	canon := strings.ToLower(strings.TrimSpace(email))
	return provider + "_" + canon
}

// NewConfig creates a new Config with a derived account_id and current
// Added timestamp.
func NewConfig(provider, email string) *Config {
	return &Config{
		AccountID:    DeriveAccountID(provider, email),
		EmailAddress: email,
		Provider:     provider,
		Scopes:       make([]string, 0),
		AuthMode:     AuthModeOAuth2,
		Security:     SecurityTLS,
		Added:        time.Now(),
	}
}

// Validate checks that the config carries a derivable, non-empty identity.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Provider) == "" {
		return ErrInvalidAlias
	}
	if err := validateEmail(c.EmailAddress); err != nil {
		return err
	}
	if c.AccountID != DeriveAccountID(c.Provider, c.EmailAddress) {
		return ErrInvalidAlias
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return ErrInvalidEmail
	}
	if strings.Contains(email, " ") {
		return ErrInvalidEmail
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ErrInvalidEmail
	}
	local := parts[0]
	domain := parts[1]
	if local == "" || domain == "" {
		return ErrInvalidEmail
	}
	return nil
}

// HasScope returns true if the config carries the specified scope.
func (c *Config) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// AddScope adds a scope if it doesn't already exist.
func (c *Config) AddScope(scope string) {
	if !c.HasScope(scope) {
		c.Scopes = append(c.Scopes, scope)
	}
}

// RemoveScope removes a scope if it exists.
func (c *Config) RemoveScope(scope string) {
	for i, s := range c.Scopes {
		if s == scope {
			c.Scopes[i] = c.Scopes[len(c.Scopes)-1]
			c.Scopes = c.Scopes[:len(c.Scopes)-1]
			return
		}
	}
}

// Clone returns a deep-enough copy safe for a caller to mutate without
// affecting the stored config (scopes slice and expiry pointer are copied).
func (c *Config) Clone() *Config {
	cp := *c
	cp.Scopes = append([]string(nil), c.Scopes...)
	if c.TokenExpiresAt != nil {
		t := *c.TokenExpiresAt
		cp.TokenExpiresAt = &t
	}
	return &cp
}
