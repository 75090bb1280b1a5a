// Package account provides domain entities and interfaces for account management.
package account

import (
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name         string
		provider     string
		email        string
		wantAccount  string
		wantIsDefault bool
	}{
		{
			name:        "creates config with derived account id",
			provider:    "google",
			email:       "user@example.com",
			wantAccount: "google_user@example.com",
		},
		{
			name:        "lowercases email in derivation",
			provider:    "google",
			email:       "User@Example.com",
			wantAccount: "google_user@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := time.Now()
			cfg := NewConfig(tt.provider, tt.email)
			after := time.Now()

			if cfg == nil {
				t.Fatal("NewConfig returned nil")
			}
			if cfg.AccountID != tt.wantAccount {
				t.Errorf("AccountID = %q, want %q", cfg.AccountID, tt.wantAccount)
			}
			if cfg.EmailAddress != tt.email {
				t.Errorf("EmailAddress = %q, want %q", cfg.EmailAddress, tt.email)
			}
			if cfg.IsDefault != tt.wantIsDefault {
				t.Errorf("IsDefault = %v, want %v", cfg.IsDefault, tt.wantIsDefault)
			}
			if cfg.Added.Before(before) || cfg.Added.After(after) {
				t.Errorf("Added time %v not in expected range [%v, %v]", cfg.Added, before, after)
			}
			if cfg.Scopes == nil {
				t.Error("Scopes should be initialized to empty slice, got nil")
			}
			if len(cfg.Scopes) != 0 {
				t.Errorf("Scopes length = %d, want 0", len(cfg.Scopes))
			}
		})
	}
}

func TestDeriveAccountID(t *testing.T) {
	got := DeriveAccountID("google", "  User@Example.COM  ")
	want := "google_user@example.com"
	if got != want {
		t.Errorf("DeriveAccountID() = %q, want %q", got, want)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name      string
		provider  string
		email     string
		wantError error
	}{
		{name: "valid config", provider: "google", email: "user@example.com", wantError: nil},
		{name: "valid with subdomain", provider: "google", email: "user@mail.corp.example.com", wantError: nil},
		{name: "valid with plus addressing", provider: "google", email: "user+tag@example.com", wantError: nil},
		{name: "empty provider", provider: "", email: "user@example.com", wantError: ErrInvalidAlias},
		{name: "empty email", provider: "google", email: "", wantError: ErrInvalidEmail},
		{name: "email without @", provider: "google", email: "userexample.com", wantError: ErrInvalidEmail},
		{name: "email without domain", provider: "google", email: "user@", wantError: ErrInvalidEmail},
		{name: "email without local part", provider: "google", email: "@example.com", wantError: ErrInvalidEmail},
		{name: "email with multiple @", provider: "google", email: "user@@example.com", wantError: ErrInvalidEmail},
		{name: "email with spaces", provider: "google", email: "user @example.com", wantError: ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(tt.provider, tt.email)
			err := cfg.Validate()

			if tt.wantError == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Errorf("Validate() error = nil, want %v", tt.wantError)
				return
			}
			if err != tt.wantError {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantError)
			}
		})
	}
}

func TestConfigScopes(t *testing.T) {
	t.Run("AddScope adds new scope", func(t *testing.T) {
		cfg := NewConfig("google", "user@example.com")
		scope := "https://www.googleapis.com/auth/calendar"

		cfg.AddScope(scope)

		if len(cfg.Scopes) != 1 {
			t.Fatalf("Scopes length = %d, want 1", len(cfg.Scopes))
		}
		if cfg.Scopes[0] != scope {
			t.Errorf("Scopes[0] = %q, want %q", cfg.Scopes[0], scope)
		}
	})

	t.Run("AddScope does not add duplicate", func(t *testing.T) {
		cfg := NewConfig("google", "user@example.com")
		scope := "https://www.googleapis.com/auth/calendar"

		cfg.AddScope(scope)
		cfg.AddScope(scope)

		if len(cfg.Scopes) != 1 {
			t.Errorf("Scopes length = %d, want 1 (no duplicate)", len(cfg.Scopes))
		}
	})

	t.Run("RemoveScope removes existing scope", func(t *testing.T) {
		cfg := NewConfig("google", "user@example.com")
		scope := "https://www.googleapis.com/auth/calendar"

		cfg.AddScope(scope)
		cfg.RemoveScope(scope)

		if len(cfg.Scopes) != 0 {
			t.Errorf("Scopes length = %d, want 0", len(cfg.Scopes))
		}
	})

	t.Run("RemoveScope does nothing for non-existent scope", func(t *testing.T) {
		cfg := NewConfig("google", "user@example.com")
		scope1 := "https://www.googleapis.com/auth/calendar"
		scope2 := "https://www.googleapis.com/auth/gmail.send"

		cfg.AddScope(scope1)
		cfg.RemoveScope(scope2)

		if len(cfg.Scopes) != 1 {
			t.Errorf("Scopes length = %d, want 1", len(cfg.Scopes))
		}
	})
}

func TestConfigHasScope(t *testing.T) {
	cfg := NewConfig("google", "user@example.com")
	cfg.AddScope("https://www.googleapis.com/auth/calendar")

	if !cfg.HasScope("https://www.googleapis.com/auth/calendar") {
		t.Error("HasScope() = false, want true")
	}
	if cfg.HasScope("https://www.googleapis.com/auth/gmail.send") {
		t.Error("HasScope() = true, want false")
	}
}

func TestConfigClone(t *testing.T) {
	cfg := NewConfig("google", "user@example.com")
	cfg.AddScope("scope-a")
	exp := time.Now().Add(time.Hour)
	cfg.TokenExpiresAt = &exp

	clone := cfg.Clone()
	clone.Scopes[0] = "mutated"
	*clone.TokenExpiresAt = exp.Add(time.Hour)

	if cfg.Scopes[0] != "scope-a" {
		t.Errorf("original Scopes mutated by clone: %q", cfg.Scopes[0])
	}
	if !cfg.TokenExpiresAt.Equal(exp) {
		t.Errorf("original TokenExpiresAt mutated by clone")
	}
}
