// Package token implements the Token Manager (spec §4.C): the in-memory
// account → (access, refresh, expiry, provider) map, proactive refresh
// against a provider's token endpoint, and SASL XOAUTH2 assembly.
package token

import "errors"

// Error taxonomy (spec §7, token-lifecycle class).
var (
	ErrAccountNotFound  = errors.New("token: account not found")
	ErrNoRefreshToken   = errors.New("token: no refresh token available")
	ErrNoValidToken     = errors.New("token: no valid access token")
	ErrRefreshFailed    = errors.New("token: refresh failed")
	ErrUnknownProvider  = errors.New("token: unknown provider")
	ErrMissingClientID  = errors.New("token: provider credentials missing client id")
)
