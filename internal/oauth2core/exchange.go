package oauth2core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// tokenEndpointTimeout bounds every POST to a provider's token endpoint.
const tokenEndpointTimeout = 30 * time.Second

// TokenResponse is the parsed JSON body of a token endpoint response.
type TokenResponse struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
	Scope        string
}

type wireTokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    json.Number `json:"expires_in"`
	Scope        string      `json:"scope"`
}

// ExchangeAuthorizationCode posts the authorization_code grant to the
// provider's token endpoint, including the PKCE code_verifier when the
// provider uses PKCE.
func ExchangeAuthorizationCode(ctx context.Context, p Provider, clientID, clientSecret, code, redirectURI, codeVerifier string) (*TokenResponse, error) {
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {redirectURI},
		"client_id":    {clientID},
	}
	if clientSecret != "" {
		form.Set("client_secret", clientSecret)
	}
	if p.UsesPKCE && codeVerifier != "" {
		form.Set("code_verifier", codeVerifier)
	}
	return postTokenEndpoint(ctx, p.TokenEndpoint, form)
}

// ExchangeRefreshToken posts the refresh_token grant to the provider's
// token endpoint. Shared by the token manager's refresh path.
func ExchangeRefreshToken(ctx context.Context, p Provider, clientID, clientSecret, refreshToken string) (*TokenResponse, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {clientID},
	}
	if clientSecret != "" {
		form.Set("client_secret", clientSecret)
	}
	return postTokenEndpoint(ctx, p.TokenEndpoint, form)
}

func postTokenEndpoint(ctx context.Context, endpoint string, form url.Values) (*TokenResponse, error) {
	client := &http.Client{Timeout: tokenEndpointTimeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("oauth2core: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchangeFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("oauth2core: read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrTokenExchangeFailed, resp.StatusCode, string(body))
	}

	var wire wireTokenResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTokenResponse, err)
	}
	if wire.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing access_token", ErrInvalidTokenResponse)
	}

	tokenType := wire.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	var expiresIn int64
	if wire.ExpiresIn != "" {
		expiresIn, _ = strconv.ParseInt(wire.ExpiresIn.String(), 10, 64)
	}

	return &TokenResponse{
		AccessToken:  wire.AccessToken,
		RefreshToken: wire.RefreshToken,
		TokenType:    tokenType,
		ExpiresIn:    expiresIn,
		Scope:        wire.Scope,
	}, nil
}
