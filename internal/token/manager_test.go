package token

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/olafkfreund/comunicado-sub004/internal/oauth2core"
)

func TestStoreAndGetAccess(t *testing.T) {
	m := NewManager()

	resp := &oauth2core.TokenResponse{AccessToken: "at1", TokenType: "Bearer", ExpiresIn: 3600}
	if err := m.Store("acct1", "google", resp); err != nil {
		t.Fatalf("Store: %v", err)
	}

	access, ok := m.GetAccess("acct1")
	if !ok || access != "at1" {
		t.Errorf("expected at1, true; got %s, %v", access, ok)
	}
}

func TestGetAccessUnknownAccount(t *testing.T) {
	m := NewManager()
	if _, ok := m.GetAccess("missing"); ok {
		t.Error("expected ok=false for unknown account")
	}
}

func TestGetValidAccessWithoutRefreshNeeded(t *testing.T) {
	m := NewManager()
	resp := &oauth2core.TokenResponse{AccessToken: "at1", TokenType: "Bearer", ExpiresIn: 3600}
	if err := m.Store("acct1", "google", resp); err != nil {
		t.Fatalf("Store: %v", err)
	}

	access, err := m.GetValidAccess(context.Background(), "acct1")
	if err != nil {
		t.Fatalf("GetValidAccess: %v", err)
	}
	if access != "at1" {
		t.Errorf("expected at1, got %s", access)
	}
}

func TestGetValidAccessRefreshesExpiringToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at2","refresh_token":"rt2","expires_in":3600}`))
	}))
	defer srv.Close()

	oauth2core.Register(oauth2core.Provider{Name: "test-refresh", TokenEndpoint: srv.URL, UsesPKCE: true})

	os.Setenv("COMUNICADO_TEST-REFRESH_CLIENT_ID", "client-id")
	defer os.Unsetenv("COMUNICADO_TEST-REFRESH_CLIENT_ID")

	m := NewManager()
	expiresSoon := time.Now().Add(1 * time.Minute)
	if err := m.Store("acct1", "test-refresh", &oauth2core.TokenResponse{
		AccessToken:  "stale",
		RefreshToken: "rt1",
		TokenType:    "Bearer",
	}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	m.mu.Lock()
	triple := m.accounts["acct1"]
	triple.ExpiresAt = &expiresSoon
	m.accounts["acct1"] = triple
	m.mu.Unlock()

	access, err := m.GetValidAccess(context.Background(), "acct1")
	if err != nil {
		t.Fatalf("GetValidAccess: %v", err)
	}
	if access != "at2" {
		t.Errorf("expected refreshed token at2, got %s", access)
	}
}

func TestRefreshCoalescesConcurrentCallers(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		time.Sleep(20 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-coalesced","expires_in":3600}`))
	}))
	defer srv.Close()

	oauth2core.Register(oauth2core.Provider{Name: "test-coalesce", TokenEndpoint: srv.URL})
	os.Setenv("COMUNICADO_TEST-COALESCE_CLIENT_ID", "client-id")
	defer os.Unsetenv("COMUNICADO_TEST-COALESCE_CLIENT_ID")

	m := NewManager()
	if err := m.Store("acct1", "test-coalesce", &oauth2core.TokenResponse{AccessToken: "stale", RefreshToken: "rt1"}); err != nil {
		t.Fatalf("Store: %v", err)
	}

	done := make(chan error, 5)
	for i := 0; i < 5; i++ {
		go func() {
			_, err := m.Refresh(context.Background(), "acct1")
			done <- err
		}()
	}
	for i := 0; i < 5; i++ {
		if err := <-done; err != nil {
			t.Errorf("Refresh: %v", err)
		}
	}

	if calls != 1 {
		t.Errorf("expected exactly 1 network call, got %d", calls)
	}
}

func TestRemoveAndHasValid(t *testing.T) {
	m := NewManager()
	resp := &oauth2core.TokenResponse{AccessToken: "at1", ExpiresIn: 3600}
	if err := m.Store("acct1", "google", resp); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if !m.HasValid("acct1") {
		t.Error("expected HasValid true before removal")
	}
	if err := m.Remove("acct1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if m.HasValid("acct1") {
		t.Error("expected HasValid false after removal")
	}
}

func TestDiagnose(t *testing.T) {
	m := NewManager()

	t.Run("not found", func(t *testing.T) {
		d := m.Diagnose("missing")
		if d.Status != StatusNotFound {
			t.Errorf("expected StatusNotFound, got %s", d.Status)
		}
	})

	t.Run("valid", func(t *testing.T) {
		if err := m.Store("acct1", "google", &oauth2core.TokenResponse{AccessToken: "at1", ExpiresIn: 3600}); err != nil {
			t.Fatalf("Store: %v", err)
		}
		d := m.Diagnose("acct1")
		if d.Status != StatusValid {
			t.Errorf("expected StatusValid, got %s", d.Status)
		}
	})

	t.Run("expired no refresh", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		if err := m.Store("acct2", "google", &oauth2core.TokenResponse{AccessToken: "at2"}); err != nil {
			t.Fatalf("Store: %v", err)
		}
		m.mu.Lock()
		triple := m.accounts["acct2"]
		triple.ExpiresAt = &past
		m.accounts["acct2"] = triple
		m.mu.Unlock()

		d := m.Diagnose("acct2")
		if d.Status != StatusExpiredNoRefresh {
			t.Errorf("expected StatusExpiredNoRefresh, got %s", d.Status)
		}
	})
}

func TestListAccounts(t *testing.T) {
	m := NewManager()
	if err := m.Store("acct1", "google", &oauth2core.TokenResponse{AccessToken: "at1"}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := m.Store("acct2", "google", &oauth2core.TokenResponse{AccessToken: "at2"}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	ids := m.ListAccounts()
	if len(ids) != 2 {
		t.Errorf("expected 2 accounts, got %d", len(ids))
	}
}
