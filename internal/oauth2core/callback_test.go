package oauth2core

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestCallbackServerSuccessfulRoundTrip(t *testing.T) {
	cs, err := StartCallbackServer(0, 0)
	if err != nil {
		t.Fatalf("StartCallbackServer: %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		resp, err := http.Get(cs.RedirectURI() + "?code=abc123&state=xyz")
		if err != nil {
			return
		}
		resp.Body.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := cs.WaitForCallback(ctx)
	if err != nil {
		t.Fatalf("WaitForCallback: %v", err)
	}
	if result.Code != "abc123" || result.State != "xyz" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestCallbackServerProviderError(t *testing.T) {
	cs, err := StartCallbackServer(0, 0)
	if err != nil {
		t.Fatalf("StartCallbackServer: %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		resp, err := http.Get(cs.RedirectURI() + "?error=access_denied&error_description=user+declined")
		if err != nil {
			return
		}
		resp.Body.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = cs.WaitForCallback(ctx)
	if !errors.Is(err, ErrAuthorizationFailed) {
		t.Errorf("expected ErrAuthorizationFailed, got %v", err)
	}
}

func TestCallbackServerTimeout(t *testing.T) {
	cs, err := StartCallbackServer(0, 0)
	if err != nil {
		t.Fatalf("StartCallbackServer: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = cs.WaitForCallback(ctx)
	if !errors.Is(err, ErrAuthorizationTimeout) {
		t.Errorf("expected ErrAuthorizationTimeout, got %v", err)
	}
}

func TestCallbackServerMissingCode(t *testing.T) {
	cs, err := StartCallbackServer(0, 0)
	if err != nil {
		t.Fatalf("StartCallbackServer: %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		resp, err := http.Get(cs.RedirectURI() + "?state=xyz")
		if err != nil {
			return
		}
		resp.Body.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = cs.WaitForCallback(ctx)
	if !errors.Is(err, ErrNoAuthorizationCode) {
		t.Errorf("expected ErrNoAuthorizationCode, got %v", err)
	}
}
