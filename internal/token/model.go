package token

import "time"

// DefaultRefreshBuffer is how much remaining lifetime get_valid_access
// requires before it will hand back a token without refreshing first.
const DefaultRefreshBuffer = 5 * time.Minute

// DefaultSchedulerBuffer is the longer buffer the periodic scheduler uses
// to refresh proactively, well ahead of any caller's request.
const DefaultSchedulerBuffer = 30 * time.Minute

// DefaultSchedulerInterval is how often the scheduler walks every account.
const DefaultSchedulerInterval = 60 * time.Minute

// Triple is the in-memory credential state for one account (spec §3,
// "Token triple").
type Triple struct {
	AccessToken  string
	TokenType    string
	ExpiresAt    *time.Time
	RefreshToken string
	Scopes       []string
	Provider     string
}

// ExpiresWithin reports whether the triple's remaining lifetime is below
// buffer. A triple with no expiry is treated as never expiring.
func (t Triple) ExpiresWithin(now time.Time, buffer time.Duration) bool {
	if t.ExpiresAt == nil {
		return false
	}
	return t.ExpiresAt.Add(-buffer).Before(now)
}

// Expired reports whether the triple's access token has already lapsed.
func (t Triple) Expired(now time.Time) bool {
	if t.ExpiresAt == nil {
		return false
	}
	return t.ExpiresAt.Before(now)
}

// Status is the diagnostics classification for one account (spec §4.C).
type Status string

const (
	StatusValid              Status = "valid"
	StatusExpiringSoon       Status = "expiring_soon"
	StatusExpiredWithRefresh Status = "expired_with_refresh"
	StatusExpiredNoRefresh   Status = "expired_no_refresh"
	StatusNotFound           Status = "not_found"
)

// Diagnostic is one account's classification plus a user-actionable
// suggestion string.
type Diagnostic struct {
	AccountID  string
	Status     Status
	Suggestion string
}

func classify(t Triple, now time.Time) Status {
	if !t.Expired(now) && !t.ExpiresWithin(now, DefaultRefreshBuffer) {
		return StatusValid
	}
	if !t.Expired(now) {
		return StatusExpiringSoon
	}
	if t.RefreshToken != "" {
		return StatusExpiredWithRefresh
	}
	return StatusExpiredNoRefresh
}

func suggestionFor(s Status) string {
	switch s {
	case StatusValid:
		return "no action needed"
	case StatusExpiringSoon:
		return "token will refresh automatically on next use"
	case StatusExpiredWithRefresh:
		return "token expired; will be refreshed automatically on next use"
	case StatusExpiredNoRefresh:
		return "token expired and no refresh token is available; re-authenticate this account"
	case StatusNotFound:
		return "account is not registered; run the authentication flow to add it"
	default:
		return ""
	}
}
