package oauth2core

import "errors"

// Error taxonomy for the OAuth2 flow driver and the token endpoint
// exchanges it shares with the token manager (spec §7).
var (
	ErrInvalidConfig        = errors.New("oauth2core: invalid provider configuration")
	ErrAuthorizationFailed  = errors.New("oauth2core: authorization failed")
	ErrAuthorizationTimeout = errors.New("oauth2core: authorization timed out")
	ErrStateMismatch        = errors.New("oauth2core: state parameter mismatch")
	ErrNoAuthorizationCode  = errors.New("oauth2core: no authorization code received")
	ErrTokenExchangeFailed  = errors.New("oauth2core: token exchange failed")
	ErrInvalidTokenResponse = errors.New("oauth2core: invalid token response")
	ErrCancelled            = errors.New("oauth2core: authorization wait cancelled")
)
