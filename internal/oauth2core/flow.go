package oauth2core

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// DefaultCallbackTimeout is the default bound on the loopback wait (spec §5).
const DefaultCallbackTimeout = 300 * time.Second

// DefaultPortRangeStart/End bound the loopback listener port search.
const (
	DefaultPortRangeStart = 8085
	DefaultPortRangeEnd   = 8095
)

// Identity is the userinfo extracted after a successful exchange.
type Identity struct {
	Email       string
	DisplayName string
}

// FlowConfig parameterizes one run of the authorization-code + PKCE flow.
type FlowConfig struct {
	Provider        Provider
	ClientID        string
	ClientSecret    string
	Scopes          []string
	PortRangeStart  int
	PortRangeEnd    int
	CallbackTimeout time.Duration
	OpenBrowser     bool
}

// Result is everything the flow driver hands to the token manager and
// account config store on success.
type Result struct {
	Identity Identity
	Token    *TokenResponse
}

// Flow runs one authorization-code + PKCE round trip end to end: build
// URL, accept the loopback callback, exchange the code, fetch userinfo.
type Flow struct {
	cfg FlowConfig
}

// NewFlow validates cfg and returns a Flow ready to Run.
func NewFlow(cfg FlowConfig) (*Flow, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client id", ErrInvalidConfig)
	}
	if cfg.Provider.AuthEndpoint == "" || cfg.Provider.TokenEndpoint == "" {
		return nil, fmt.Errorf("%w: provider missing endpoints", ErrInvalidConfig)
	}
	if cfg.PortRangeStart == 0 {
		cfg.PortRangeStart = DefaultPortRangeStart
	}
	if cfg.PortRangeEnd == 0 {
		cfg.PortRangeEnd = DefaultPortRangeEnd
	}
	if cfg.CallbackTimeout == 0 {
		cfg.CallbackTimeout = DefaultCallbackTimeout
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = cfg.Provider.Scopes
	}
	return &Flow{cfg: cfg}, nil
}

// Run executes the complete flow and returns the granted identity and
// token response.
func (f *Flow) Run(ctx context.Context) (*Result, error) {
	cs, err := StartCallbackServer(f.cfg.PortRangeStart, f.cfg.PortRangeEnd)
	if err != nil {
		return nil, err
	}

	state, err := generateState()
	if err != nil {
		return nil, err
	}

	var verifier, challenge string
	if f.cfg.Provider.UsesPKCE {
		verifier = GenerateCodeVerifier()
		challenge = GenerateCodeChallenge(verifier)
	}

	authURL := f.BuildAuthorizationURL(cs.RedirectURI(), state, challenge)

	if f.cfg.OpenBrowser {
		_ = OpenBrowser(authURL)
	}

	waitCtx, cancel := context.WithTimeout(ctx, f.cfg.CallbackTimeout)
	defer cancel()

	result, err := cs.WaitForCallback(waitCtx)
	if err != nil {
		return nil, err
	}
	if result.State != state {
		return nil, ErrStateMismatch
	}

	tokenResp, err := ExchangeAuthorizationCode(ctx, f.cfg.Provider, f.cfg.ClientID, f.cfg.ClientSecret, result.Code, cs.RedirectURI(), verifier)
	if err != nil {
		return nil, err
	}

	identity, err := fetchUserinfo(ctx, f.cfg.Provider, tokenResp.AccessToken)
	if err != nil {
		return nil, err
	}

	return &Result{Identity: identity, Token: tokenResp}, nil
}

// BuildAuthorizationURL assembles the authorization request per spec §4.D.
func (f *Flow) BuildAuthorizationURL(redirectURI, state, codeChallenge string) string {
	v := url.Values{
		"response_type": {"code"},
		"client_id":     {f.cfg.ClientID},
		"redirect_uri":  {redirectURI},
		"scope":         {strings.Join(f.cfg.Scopes, " ")},
		"state":         {state},
	}
	if f.cfg.Provider.UsesPKCE {
		v.Set("code_challenge", codeChallenge)
		v.Set("code_challenge_method", "S256")
	}
	return f.cfg.Provider.AuthEndpoint + "?" + v.Encode()
}

func generateState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("oauth2core: generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

type wireUserinfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Subject string `json:"sub"`
}

func fetchUserinfo(ctx context.Context, p Provider, accessToken string) (Identity, error) {
	if p.UserinfoEndpoint == "" {
		return Identity{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserinfoEndpoint, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("oauth2core: build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	client := &http.Client{Timeout: tokenEndpointTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("oauth2core: fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Identity{}, fmt.Errorf("oauth2core: read userinfo: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Identity{}, fmt.Errorf("oauth2core: userinfo request failed: status %d", resp.StatusCode)
	}

	var wire wireUserinfo
	if err := json.Unmarshal(body, &wire); err != nil {
		return Identity{}, fmt.Errorf("oauth2core: unmarshal userinfo: %w", err)
	}
	return Identity{Email: wire.Email, DisplayName: wire.Name}, nil
}

// OpenBrowser launches the platform's default browser on url. Errors are
// the caller's to surface or ignore; a caller running headless (e.g. an
// SSH session) typically ignores them and prints the URL instead.
func OpenBrowser(rawURL string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "linux":
		cmd = exec.Command("xdg-open", rawURL)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", rawURL)
	default:
		return fmt.Errorf("oauth2core: unsupported platform %s", runtime.GOOS)
	}
	return cmd.Start()
}
