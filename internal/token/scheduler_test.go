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

func TestSchedulerRefreshesDueAccounts(t *testing.T) {
	refreshed := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"scheduled","expires_in":3600}`))
		select {
		case refreshed <- struct{}{}:
		default:
		}
	}))
	defer srv.Close()

	oauth2core.Register(oauth2core.Provider{Name: "test-scheduler", TokenEndpoint: srv.URL})
	os.Setenv("COMUNICADO_TEST-SCHEDULER_CLIENT_ID", "client-id")
	defer os.Unsetenv("COMUNICADO_TEST-SCHEDULER_CLIENT_ID")

	m := NewManager(WithSchedulerPeriod(10 * time.Millisecond))
	soon := time.Now().Add(time.Minute)
	if err := m.Store("acct1", "test-scheduler", &oauth2core.TokenResponse{AccessToken: "stale", RefreshToken: "rt1"}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	m.mu.Lock()
	triple := m.accounts["acct1"]
	triple.ExpiresAt = &soon
	m.accounts["acct1"] = triple
	m.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.StartScheduler(ctx)
	defer m.StopScheduler()

	select {
	case <-refreshed:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not refresh the due account in time")
	}

	// The handler signals before the manager has received the response
	// and swapped in the new token, so wait for the swap.
	deadline := time.Now().Add(2 * time.Second)
	access, _ := m.GetAccess("acct1")
	for access != "scheduled" && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
		access, _ = m.GetAccess("acct1")
	}
	if access != "scheduled" {
		t.Errorf("expected scheduled refresh to update access token, got %s", access)
	}
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	m := NewManager(WithSchedulerPeriod(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.StartScheduler(ctx)
	m.StopScheduler()
	m.StopScheduler()
}
