package oauth2core

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testProvider(tokenURL string) Provider {
	return Provider{
		Name:          "test",
		AuthEndpoint:  "https://example.test/auth",
		TokenEndpoint: tokenURL,
		UsesPKCE:      true,
	}
}

func TestExchangeAuthorizationCodeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if r.Form.Get("grant_type") != "authorization_code" {
			t.Errorf("unexpected grant_type: %s", r.Form.Get("grant_type"))
		}
		if r.Form.Get("code_verifier") == "" {
			t.Error("expected code_verifier to be set for a PKCE provider")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at","refresh_token":"rt","expires_in":3600}`))
	}))
	defer srv.Close()

	resp, err := ExchangeAuthorizationCode(context.Background(), testProvider(srv.URL), "client-id", "", "code", "http://localhost/callback", "verifier")
	if err != nil {
		t.Fatalf("ExchangeAuthorizationCode: %v", err)
	}
	if resp.AccessToken != "at" || resp.RefreshToken != "rt" || resp.ExpiresIn != 3600 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.TokenType != "Bearer" {
		t.Errorf("expected default token type Bearer, got %q", resp.TokenType)
	}
}

func TestExchangeRefreshTokenSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if r.Form.Get("grant_type") != "refresh_token" {
			t.Errorf("unexpected grant_type: %s", r.Form.Get("grant_type"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at2","expires_in":1800}`))
	}))
	defer srv.Close()

	resp, err := ExchangeRefreshToken(context.Background(), testProvider(srv.URL), "client-id", "", "refresh-token")
	if err != nil {
		t.Fatalf("ExchangeRefreshToken: %v", err)
	}
	if resp.AccessToken != "at2" {
		t.Errorf("unexpected access token: %s", resp.AccessToken)
	}
}

func TestExchangeMissingAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token_type":"Bearer"}`))
	}))
	defer srv.Close()

	_, err := ExchangeRefreshToken(context.Background(), testProvider(srv.URL), "client-id", "", "refresh-token")
	if !errors.Is(err, ErrInvalidTokenResponse) {
		t.Errorf("expected ErrInvalidTokenResponse, got %v", err)
	}
}

func TestExchangeNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	_, err := ExchangeRefreshToken(context.Background(), testProvider(srv.URL), "client-id", "", "bad-token")
	if !errors.Is(err, ErrTokenExchangeFailed) {
		t.Errorf("expected ErrTokenExchangeFailed, got %v", err)
	}
}
