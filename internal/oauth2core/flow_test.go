package oauth2core

import (
	"net/url"
	"strings"
	"testing"
)

func TestNewFlowValidation(t *testing.T) {
	t.Run("rejects missing client id", func(t *testing.T) {
		_, err := NewFlow(FlowConfig{Provider: Google})
		if err == nil {
			t.Error("expected error for missing client id")
		}
	})

	t.Run("rejects provider without endpoints", func(t *testing.T) {
		_, err := NewFlow(FlowConfig{ClientID: "id", Provider: Provider{Name: "bare"}})
		if err == nil {
			t.Error("expected error for provider missing endpoints")
		}
	})

	t.Run("fills in defaults", func(t *testing.T) {
		f, err := NewFlow(FlowConfig{ClientID: "id", Provider: Google})
		if err != nil {
			t.Fatalf("NewFlow: %v", err)
		}
		if f.cfg.PortRangeStart != DefaultPortRangeStart || f.cfg.PortRangeEnd != DefaultPortRangeEnd {
			t.Error("expected default port range to be applied")
		}
		if f.cfg.CallbackTimeout != DefaultCallbackTimeout {
			t.Error("expected default callback timeout to be applied")
		}
		if len(f.cfg.Scopes) != len(Google.Scopes) {
			t.Error("expected provider scopes to be used as default")
		}
	})
}

func TestBuildAuthorizationURL(t *testing.T) {
	f, err := NewFlow(FlowConfig{ClientID: "client-id", Provider: Google})
	if err != nil {
		t.Fatalf("NewFlow: %v", err)
	}

	authURL := f.BuildAuthorizationURL("http://localhost:8085/callback", "state123", "challenge456")

	parsed, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("url.Parse: %v", err)
	}
	q := parsed.Query()

	if !strings.HasPrefix(authURL, Google.AuthEndpoint) {
		t.Errorf("expected URL to start with auth endpoint, got %s", authURL)
	}
	if q.Get("response_type") != "code" {
		t.Errorf("expected response_type=code, got %s", q.Get("response_type"))
	}
	if q.Get("client_id") != "client-id" {
		t.Errorf("unexpected client_id: %s", q.Get("client_id"))
	}
	if q.Get("redirect_uri") != "http://localhost:8085/callback" {
		t.Errorf("unexpected redirect_uri: %s", q.Get("redirect_uri"))
	}
	if q.Get("state") != "state123" {
		t.Errorf("unexpected state: %s", q.Get("state"))
	}
	if q.Get("code_challenge") != "challenge456" || q.Get("code_challenge_method") != "S256" {
		t.Errorf("expected PKCE challenge params for a PKCE provider, got %+v", q)
	}
}

func TestBuildAuthorizationURLNonPKCEProvider(t *testing.T) {
	f, err := NewFlow(FlowConfig{ClientID: "client-id", Provider: Yahoo})
	if err != nil {
		t.Fatalf("NewFlow: %v", err)
	}

	authURL := f.BuildAuthorizationURL("http://localhost:8085/callback", "state123", "")
	parsed, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("url.Parse: %v", err)
	}
	if parsed.Query().Get("code_challenge") != "" {
		t.Error("expected no code_challenge for a non-PKCE provider")
	}
}
