// Package oauthflow runs the browser half of a Slack install: a loopback
// server that receives the redirect and hands back the authorization code.
package oauthflow

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/custodia-labs/slackhttp/internal/logger"
)

// CallbackPath is where Slack redirects after the user approves.
const CallbackPath = "/slack/oauth/callback"

// ErrStateMismatch means the redirect did not carry the state we sent.
var ErrStateMismatch = errors.New("oauth callback: state mismatch")

// CallbackServer receives a single OAuth redirect on 127.0.0.1.
type CallbackServer struct {
	mu       sync.Mutex
	port     int
	state    string
	codeChan chan string
	errChan  chan error
	server   *http.Server
	listener net.Listener
}

// NewCallbackServer prepares a server on port (0 picks a free one) that
// accepts redirects carrying state.
func NewCallbackServer(port int, state string) *CallbackServer {
	return &CallbackServer{
		port:     port,
		state:    state,
		codeChan: make(chan string, 1),
		errChan:  make(chan error, 1),
	}
}

// NewState returns an unguessable state value.
func NewState() string {
	return uuid.NewString()
}

// Start listens and serves in the background.
func (s *CallbackServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := chi.NewRouter()
	r.Get(CallbackPath, s.handleCallback)

	s.server = &http.Server{
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.fail(err)
		}
	}()

	logger.Debug("oauth callback listening on %s", s.RedirectURI())
	return nil
}

func (s *CallbackServer) fail(err error) {
	select {
	case s.errChan <- err:
	default:
	}
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	// Slack sends error=access_denied when the user cancels.
	if e := q.Get("error"); e != "" {
		s.fail(fmt.Errorf("oauth callback: %s", e))
		_, _ = fmt.Fprint(w, resultPage("Installation cancelled", html.EscapeString(e)))
		return
	}

	if q.Get("state") != s.state {
		s.fail(ErrStateMismatch)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = fmt.Fprint(w, resultPage("Installation failed", "The request did not match this session."))
		return
	}

	code := q.Get("code")
	if code == "" {
		s.fail(errors.New("oauth callback: no code"))
		w.WriteHeader(http.StatusBadRequest)
		_, _ = fmt.Fprint(w, resultPage("Installation failed", "No authorization code was received."))
		return
	}

	select {
	case s.codeChan <- code:
	default:
	}
	_, _ = fmt.Fprint(w, resultPage("Slack app installed", "You can close this window and return to the terminal."))
}

// WaitForCode blocks until a redirect arrives, ctx ends or timeout passes.
func (s *CallbackServer) WaitForCode(ctx context.Context, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case code := <-s.codeChan:
		return code, nil
	case err := <-s.errChan:
		return "", err
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for oauth callback: %w", ctx.Err())
	}
}

// Stop shuts the server down.
func (s *CallbackServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Port is the bound port once Start has returned.
func (s *CallbackServer) Port() int {
	return s.port
}

// RedirectURI is the URL to register with the Slack app.
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://localhost:%d%s", s.port, CallbackPath)
}

func resultPage(title, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <title>slackctl</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
               display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; }
        h1 { color: #4A154B; font-size: 24px; margin: 0 0 8px 0; }
        p { color: #616061; margin: 0; }
    </style>
</head>
<body>
    <div>
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>`, title, message)
}

// OpenBrowser opens url with the platform's default handler.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
