package oauth2core

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// DefaultCallbackPath is the path the loopback server listens on.
const DefaultCallbackPath = "/callback"

// CallbackResult carries the parsed query parameters from the single
// accepted callback request.
type CallbackResult struct {
	Code  string
	State string
}

// CallbackServer accepts exactly one HTTP GET on a loopback port and
// yields the authorization code and state (or an error).
type CallbackServer struct {
	server     *http.Server
	listener   net.Listener
	resultChan chan CallbackResult
	errChan    chan error
	once       sync.Once
	serverURL  string
	shutdownWG sync.WaitGroup
}

// StartCallbackServer listens on localhost at the first available port in
// [portRangeStart, portRangeEnd]. portRangeStart == portRangeEnd pins a
// single port.
func StartCallbackServer(portRangeStart, portRangeEnd int) (*CallbackServer, error) {
	if portRangeEnd < portRangeStart {
		portRangeEnd = portRangeStart
	}

	var listener net.Listener
	var err error
	for port := portRangeStart; port <= portRangeEnd; port++ {
		listener, err = net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			break
		}
	}
	if listener == nil {
		return nil, fmt.Errorf("oauth2core: failed to start callback listener: %w", err)
	}

	addr := listener.Addr().(*net.TCPAddr)
	serverURL := fmt.Sprintf("http://localhost:%d", addr.Port)

	cs := &CallbackServer{
		listener:   listener,
		resultChan: make(chan CallbackResult, 1),
		errChan:    make(chan error, 1),
		serverURL:  serverURL,
	}

	mux := http.NewServeMux()
	mux.HandleFunc(DefaultCallbackPath, cs.handleCallback)

	cs.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	cs.shutdownWG.Add(1)
	go func() {
		defer cs.shutdownWG.Done()
		if err := cs.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			cs.errChan <- fmt.Errorf("oauth2core: callback server error: %w", err)
		}
	}()

	return cs, nil
}

func (cs *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	cs.once.Do(func() {
		if errCode := r.URL.Query().Get("error"); errCode != "" {
			desc := r.URL.Query().Get("error_description")
			cs.errChan <- fmt.Errorf("%w: %s - %s", ErrAuthorizationFailed, errCode, desc)
			writeCallbackPage(w, http.StatusBadRequest, "Authentication Failed", errCode+": "+desc)
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			cs.errChan <- ErrNoAuthorizationCode
			writeCallbackPage(w, http.StatusBadRequest, "Authentication Failed", "No authorization code received.")
			return
		}

		cs.resultChan <- CallbackResult{Code: code, State: r.URL.Query().Get("state")}
		writeCallbackPage(w, http.StatusOK, "Authentication Successful!", "You can close this window and return to the terminal.")
	})
}

func writeCallbackPage(w http.ResponseWriter, status int, title, body string) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>%s</title></head>
<body>
<h1>%s</h1>
<p>%s</p>
</body>
</html>`, title, title, body)
}

// WaitForCallback blocks until a callback is received, an error occurs, or
// ctx is done, then shuts down the listener on every exit path.
func (cs *CallbackServer) WaitForCallback(ctx context.Context) (CallbackResult, error) {
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = cs.server.Shutdown(shutdownCtx)
		cs.shutdownWG.Wait()
	}()

	select {
	case res := <-cs.resultChan:
		return res, nil
	case err := <-cs.errChan:
		return CallbackResult{}, err
	case <-ctx.Done():
		if ctx.Err() == context.Canceled {
			return CallbackResult{}, ErrCancelled
		}
		return CallbackResult{}, fmt.Errorf("%w: %v", ErrAuthorizationTimeout, ctx.Err())
	}
}

// URL returns the loopback base URL (e.g. http://localhost:53214).
func (cs *CallbackServer) URL() string {
	return cs.serverURL
}

// RedirectURI returns the full redirect_uri, URL plus the callback path.
func (cs *CallbackServer) RedirectURI() string {
	return cs.serverURL + DefaultCallbackPath
}
