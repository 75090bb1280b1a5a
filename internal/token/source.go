package token

import (
	"context"

	"golang.org/x/oauth2"
)

// AccountTokenSource adapts a Manager's per-account refresh logic to the
// oauth2.TokenSource interface so a single account's tokens can drive an
// API client (e.g. the Google Calendar repository) without that client
// knowing about the Manager's multi-account bookkeeping.
type AccountTokenSource struct {
	ctx       context.Context
	manager   *Manager
	accountID string
}

// NewAccountTokenSource builds a TokenSource for accountID, refreshing
// through manager as needed.
func NewAccountTokenSource(ctx context.Context, manager *Manager, accountID string) *AccountTokenSource {
	return &AccountTokenSource{ctx: ctx, manager: manager, accountID: accountID}
}

// Token implements oauth2.TokenSource.
func (s *AccountTokenSource) Token() (*oauth2.Token, error) {
	access, err := s.manager.GetValidAccess(s.ctx, s.accountID)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: access}, nil
}
