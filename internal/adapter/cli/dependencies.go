// Package cli provides command-line interface handlers for the comunicado application.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/olafkfreund/comunicado-sub004/internal/aicache"
	"github.com/olafkfreund/comunicado-sub004/internal/adapter/repository"
	"github.com/olafkfreund/comunicado-sub004/internal/calendarsync"
	"github.com/olafkfreund/comunicado-sub004/internal/infrastructure/accountconfig"
	"github.com/olafkfreund/comunicado-sub004/internal/infrastructure/config"
	"github.com/olafkfreund/comunicado-sub004/internal/infrastructure/secretstore"
	"github.com/olafkfreund/comunicado-sub004/internal/keyboard"
	"github.com/olafkfreund/comunicado-sub004/internal/token"
)

// Dependencies holds all external dependencies required by CLI commands.
// This enables dependency injection for testing.
type Dependencies struct {
	Config       *config.Config
	Secrets      secretstore.Store
	Accounts     *accountconfig.Store
	Tokens       *token.Manager
	Cache        *aicache.Cache
	CalendarSync *calendarsync.Engine
	Keybindings  *keyboard.Table

	// GoogleCalendars is non-nil when the default account is a Google
	// account, letting "cal discover" list remote calendars available to
	// add to sync (distinct from CalendarSync, which only tracks
	// calendars already registered for sync).
	GoogleCalendars *repository.GCalCalendarRepository
}

var (
	deps     *Dependencies
	depsOnce sync.Once
	depsErr  error
)

// SetDependencies sets the global dependencies instance, primarily for
// injecting fakes in tests.
func SetDependencies(d *Dependencies) {
	deps = d
	depsOnce = sync.Once{}
	depsErr = nil
}

// ResetDependencies clears the global dependencies instance so the next
// GetDependencies call rebuilds production dependencies.
func ResetDependencies() {
	deps = nil
	depsOnce = sync.Once{}
	depsErr = nil
}

// GetDependencies returns the current dependencies instance, building
// production dependencies on first use.
func GetDependencies() (*Dependencies, error) {
	if deps != nil {
		return deps, nil
	}
	depsOnce.Do(func() {
		deps, depsErr = defaultDependencies()
	})
	return deps, depsErr
}

func defaultDependencies() (*Dependencies, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	secrets, err := secretstore.New()
	if err != nil {
		return nil, fmt.Errorf("open secret store: %w", err)
	}

	accountDir, err := accountconfig.DefaultDir()
	if err != nil {
		return nil, fmt.Errorf("resolve account config dir: %w", err)
	}
	accounts, err := accountconfig.New(accountDir, secrets)
	if err != nil {
		return nil, fmt.Errorf("open account config store: %w", err)
	}

	tokens := token.NewManager(token.WithPersistence(secrets, accounts))
	if err := tokens.LoadAll(); err != nil {
		return nil, fmt.Errorf("load tokens: %w", err)
	}

	cache := aicache.New(aicache.Config{
		MaxEntries:      cfg.AICache.MaxEntries,
		MaxMemoryBytes:  cfg.AICache.MaxMemoryBytes,
		DefaultTTL:      cfg.AICache.DefaultTTL,
		CleanupInterval: cfg.AICache.CleanupInterval,
	})

	var engineOpts []calendarsync.Option
	var googleCalendars *repository.GCalCalendarRepository
	if defaultAcct, err := accounts.GetDefault(); err == nil && defaultAcct.Provider == "google" {
		source := token.NewAccountTokenSource(context.Background(), tokens, defaultAcct.AccountID)
		if gcalService, err := repository.NewGCalService(context.Background(), source); err == nil {
			engineOpts = append(engineOpts, calendarsync.WithGoogle(gcalService.Events()))
			googleCalendars = gcalService.Calendars()
		}
	}
	engine := calendarsync.NewEngine(engineOpts...)

	keyPath, err := keyboard.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("resolve keybinding path: %w", err)
	}
	table, err := keyboard.NewDefaultTable()
	if err != nil {
		return nil, fmt.Errorf("build default keybinding table: %w", err)
	}
	if _, statErr := os.Stat(keyPath); statErr == nil {
		if err := table.Load(); err != nil {
			return nil, fmt.Errorf("load keybindings from %s: %w", keyPath, err)
		}
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return nil, fmt.Errorf("stat keybindings file: %w", statErr)
	}

	return &Dependencies{
		Config:          cfg,
		Secrets:         secrets,
		Accounts:        accounts,
		Tokens:          tokens,
		Cache:           cache,
		CalendarSync:    engine,
		Keybindings:     table,
		GoogleCalendars: googleCalendars,
	}, nil
}
