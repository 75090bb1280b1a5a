package token

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/olafkfreund/comunicado-sub004/internal/infrastructure/accountconfig"
	"github.com/olafkfreund/comunicado-sub004/internal/infrastructure/secretstore"
	"github.com/olafkfreund/comunicado-sub004/internal/oauth2core"
	"github.com/rs/zerolog"
)

// Manager is the Token Manager (spec §4.C): an in-memory account → Triple
// map behind a reader-preferring lock, with optional persistence to the
// secret store and account config store.
type Manager struct {
	mu       sync.RWMutex
	accounts map[string]Triple

	secrets secretstore.Store
	configs *accountconfig.Store

	refreshGroup singleflight.Group

	refreshBuffer    time.Duration
	schedulerBuffer  time.Duration
	schedulerPeriod  time.Duration

	log zerolog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithPersistence wires the secret store and account config store so that
// Store, Refresh, and Remove survive a restart.
func WithPersistence(secrets secretstore.Store, configs *accountconfig.Store) Option {
	return func(m *Manager) {
		m.secrets = secrets
		m.configs = configs
	}
}

// WithLogger overrides the zero-value (discard) logger.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithRefreshBuffer overrides DefaultRefreshBuffer.
func WithRefreshBuffer(d time.Duration) Option {
	return func(m *Manager) { m.refreshBuffer = d }
}

// WithSchedulerBuffer overrides DefaultSchedulerBuffer.
func WithSchedulerBuffer(d time.Duration) Option {
	return func(m *Manager) { m.schedulerBuffer = d }
}

// WithSchedulerPeriod overrides DefaultSchedulerInterval.
func WithSchedulerPeriod(d time.Duration) Option {
	return func(m *Manager) { m.schedulerPeriod = d }
}

// NewManager constructs an empty Token Manager. Call LoadAll to rehydrate
// from persistence when WithPersistence is used.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		accounts:        make(map[string]Triple),
		refreshBuffer:   DefaultRefreshBuffer,
		schedulerBuffer: DefaultSchedulerBuffer,
		schedulerPeriod: DefaultSchedulerInterval,
		stopCh:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LoadAll rehydrates the in-memory map from the account config store and
// secret store, joining B (non-secret fields) with A (tokens).
func (m *Manager) LoadAll() error {
	if m.configs == nil || m.secrets == nil {
		return nil
	}
	cfgs, err := m.configs.List()
	if err != nil {
		return fmt.Errorf("token: load account configs: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cfg := range cfgs {
		triple, err := m.loadTripleLocked(cfg.AccountID, cfg.Provider, cfg.Scopes, cfg.TokenExpiresAt)
		if err != nil {
			m.log.Warn().Err(err).Str("account_id", cfg.AccountID).Msg("token: failed to load persisted tokens")
			continue
		}
		m.accounts[cfg.AccountID] = triple
	}
	return nil
}

func (m *Manager) loadTripleLocked(accountID, provider string, scopes []string, expiresAt *time.Time) (Triple, error) {
	access, err := m.secrets.Get(accountconfig.ServiceAccessToken, accountID)
	if err != nil {
		return Triple{}, err
	}
	triple := Triple{
		AccessToken: string(access),
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Scopes:      scopes,
		Provider:    provider,
	}
	if refresh, err := m.secrets.Get(accountconfig.ServiceRefreshToken, accountID); err == nil {
		triple.RefreshToken = string(refresh)
	}
	return triple, nil
}

// Store upserts the triple for accountID from a fresh token response,
// computing expires_at = now + expires_in when present.
func (m *Manager) Store(accountID, provider string, resp *oauth2core.TokenResponse) error {
	triple := Triple{
		AccessToken:  resp.AccessToken,
		TokenType:    resp.TokenType,
		RefreshToken: resp.RefreshToken,
		Provider:     provider,
	}
	if resp.ExpiresIn > 0 {
		t := time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
		triple.ExpiresAt = &t
	}
	if resp.Scope != "" {
		triple.Scopes = splitScope(resp.Scope)
	}

	m.mu.Lock()
	if existing, ok := m.accounts[accountID]; ok && triple.RefreshToken == "" {
		triple.RefreshToken = existing.RefreshToken
	}
	m.accounts[accountID] = triple
	m.mu.Unlock()

	return m.persist(accountID, triple)
}

func (m *Manager) persist(accountID string, triple Triple) error {
	if m.secrets == nil {
		return nil
	}
	if err := m.secrets.Put(accountconfig.ServiceAccessToken, accountID, []byte(triple.AccessToken)); err != nil {
		return fmt.Errorf("token: persist access token: %w", err)
	}
	if triple.RefreshToken != "" {
		if err := m.secrets.Put(accountconfig.ServiceRefreshToken, accountID, []byte(triple.RefreshToken)); err != nil {
			return fmt.Errorf("token: persist refresh token: %w", err)
		}
	}
	if m.configs != nil {
		if err := m.configs.UpdateTokens(accountID, triple.ExpiresAt); err != nil {
			return fmt.Errorf("token: persist token expiry: %w", err)
		}
	}
	return nil
}

// GetAccess is a direct read; it never refreshes.
func (m *Manager) GetAccess(accountID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	triple, ok := m.accounts[accountID]
	if !ok {
		return "", false
	}
	return triple.AccessToken, true
}

// GetValidAccess returns a token whose remaining lifetime exceeds the
// refresh buffer; otherwise it attempts a refresh. On refresh failure, it
// returns the existing token if still valid, or absent if expired.
func (m *Manager) GetValidAccess(ctx context.Context, accountID string) (string, error) {
	m.mu.RLock()
	triple, ok := m.accounts[accountID]
	m.mu.RUnlock()
	if !ok {
		return "", ErrAccountNotFound
	}

	now := time.Now()
	if !triple.ExpiresWithin(now, m.refreshBuffer) {
		return triple.AccessToken, nil
	}

	refreshed, err := m.Refresh(ctx, accountID)
	if err != nil {
		if triple.Expired(now) {
			return "", ErrNoValidToken
		}
		m.log.Warn().Err(err).Str("account_id", accountID).Msg("token: refresh failed, serving existing token")
		return triple.AccessToken, nil
	}
	return refreshed, nil
}

// Refresh requires a refresh token, posts grant_type=refresh_token, and
// atomically updates both in-memory and persisted state on success.
// Concurrent callers for the same account coalesce onto one network call.
func (m *Manager) Refresh(ctx context.Context, accountID string) (string, error) {
	v, err, _ := m.refreshGroup.Do(accountID, func() (interface{}, error) {
		return m.doRefresh(ctx, accountID)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (m *Manager) doRefresh(ctx context.Context, accountID string) (string, error) {
	m.mu.RLock()
	triple, ok := m.accounts[accountID]
	m.mu.RUnlock()
	if !ok {
		return "", ErrAccountNotFound
	}
	if triple.RefreshToken == "" {
		return "", ErrNoRefreshToken
	}

	provider, ok := oauth2core.Lookup(triple.Provider)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProvider, triple.Provider)
	}

	creds, err := credentialsFromEnv(triple.Provider)
	if err != nil {
		return "", err
	}

	resp, err := oauth2core.ExchangeRefreshToken(ctx, provider, creds.ClientID, creds.ClientSecret, triple.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	updated := triple
	updated.AccessToken = resp.AccessToken
	updated.TokenType = resp.TokenType
	if resp.RefreshToken != "" {
		updated.RefreshToken = resp.RefreshToken
	}
	if resp.ExpiresIn > 0 {
		t := time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
		updated.ExpiresAt = &t
	}

	m.mu.Lock()
	m.accounts[accountID] = updated
	m.mu.Unlock()

	if err := m.persist(accountID, updated); err != nil {
		m.log.Warn().Err(err).Str("account_id", accountID).Msg("token: refreshed but failed to persist")
	}

	return updated.AccessToken, nil
}

// Remove deletes the in-memory and persisted state for accountID.
func (m *Manager) Remove(accountID string) error {
	m.mu.Lock()
	delete(m.accounts, accountID)
	m.mu.Unlock()

	if m.secrets == nil {
		return nil
	}
	if err := m.secrets.Delete(accountconfig.ServiceAccessToken, accountID); err != nil {
		return err
	}
	return m.secrets.Delete(accountconfig.ServiceRefreshToken, accountID)
}

// HasValid reports whether accountID currently holds a non-expired token.
func (m *Manager) HasValid(accountID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	triple, ok := m.accounts[accountID]
	if !ok {
		return false
	}
	return !triple.Expired(time.Now())
}

// ListAccounts returns every account_id currently tracked.
func (m *Manager) ListAccounts() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.accounts))
	for id := range m.accounts {
		ids = append(ids, id)
	}
	return ids
}

// Diagnose classifies accountID per spec §4.C.
func (m *Manager) Diagnose(accountID string) Diagnostic {
	m.mu.RLock()
	triple, ok := m.accounts[accountID]
	m.mu.RUnlock()
	if !ok {
		return Diagnostic{AccountID: accountID, Status: StatusNotFound, Suggestion: suggestionFor(StatusNotFound)}
	}
	status := classify(triple, time.Now())
	return Diagnostic{AccountID: accountID, Status: status, Suggestion: suggestionFor(status)}
}

// DiagnoseAll classifies every tracked account.
func (m *Manager) DiagnoseAll() []Diagnostic {
	m.mu.RLock()
	ids := make([]string, 0, len(m.accounts))
	for id := range m.accounts {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	diags := make([]Diagnostic, 0, len(ids))
	for _, id := range ids {
		diags = append(diags, m.Diagnose(id))
	}
	return diags
}

func splitScope(scope string) []string {
	var scopes []string
	start := 0
	for i, c := range scope {
		if c == ' ' {
			if i > start {
				scopes = append(scopes, scope[start:i])
			}
			start = i + 1
		}
	}
	if start < len(scope) {
		scopes = append(scopes, scope[start:])
	}
	return scopes
}
