// Package account provides domain entities and interfaces for account management.
package account

import "errors"

// Domain errors for account operations.
var (
	// ErrAccountNotFound is returned when an account with the specified id does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountExists is returned when attempting to create an account with an id that already exists.
	ErrAccountExists = errors.New("account already exists")

	// ErrInvalidAlias is returned when the account provider/alias is empty or invalid.
	ErrInvalidAlias = errors.New("invalid account: provider cannot be empty")

	// ErrInvalidEmail is returned when the email address format is invalid.
	ErrInvalidEmail = errors.New("invalid email: must be a valid email address")
)

// Repository defines the interface for account config persistence
// operations implemented by the account config store (spec §4.B). Secret
// token fields are never exposed here.
type Repository interface {
	// Save persists a config, replacing any stored config with the same
	// account_id.
	Save(cfg *Config) error

	// Get retrieves a config by account_id. Returns ErrAccountNotFound if
	// none exists.
	Get(accountID string) (*Config, error)

	// List returns all configured accounts.
	List() ([]*Config, error)

	// Delete removes a config by account_id. Deleting an account_id that
	// has no stored config is not an error.
	Delete(accountID string) error

	// SetDefault marks the account with the given id as the default.
	SetDefault(accountID string) error

	// GetDefault returns the default account. Returns ErrAccountNotFound if
	// no default account is configured.
	GetDefault() (*Config, error)
}
