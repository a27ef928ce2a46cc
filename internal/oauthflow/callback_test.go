//nolint:noctx // Test file uses http.Get for convenience; context not required in tests
package oauthflow

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, state string) *CallbackServer {
	t.Helper()
	s := NewCallbackServer(0, state)
	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func callback(t *testing.T, s *CallbackServer, params url.Values) *http.Response {
	t.Helper()
	u := fmt.Sprintf("http://127.0.0.1:%d%s?%s", s.Port(), CallbackPath, params.Encode())
	resp, err := http.Get(u)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestCallbackServer_PicksPort(t *testing.T) {
	s := startServer(t, "st")

	assert.NotZero(t, s.Port())
	assert.Equal(t, fmt.Sprintf("http://localhost:%d/slack/oauth/callback", s.Port()), s.RedirectURI())
}

func TestCallbackServer_PortInUse(t *testing.T) {
	first := startServer(t, "a")

	second := NewCallbackServer(first.Port(), "b")
	err := second.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}

func TestCallbackServer_Code(t *testing.T) {
	s := startServer(t, "st")

	resp := callback(t, s, url.Values{"code": {"abc"}, "state": {"st"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	code, err := s.WaitForCode(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "abc", code)
}

func TestCallbackServer_Failures(t *testing.T) {
	tests := []struct {
		name    string
		params  url.Values
		status  int
		wantErr string
	}{
		{"state mismatch", url.Values{"code": {"abc"}, "state": {"other"}}, http.StatusBadRequest, "state mismatch"},
		{"missing code", url.Values{"state": {"st"}}, http.StatusBadRequest, "no code"},
		{"user cancelled", url.Values{"error": {"access_denied"}, "state": {"st"}}, http.StatusOK, "access_denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := startServer(t, "st")

			resp := callback(t, s, tt.params)
			assert.Equal(t, tt.status, resp.StatusCode)

			_, err := s.WaitForCode(context.Background(), time.Second)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCallbackServer_Timeout(t *testing.T) {
	s := startServer(t, "st")

	_, err := s.WaitForCode(context.Background(), 10*time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCallbackServer_StopBeforeStart(t *testing.T) {
	assert.NoError(t, NewCallbackServer(0, "st").Stop())
}

func TestNewState(t *testing.T) {
	a, b := NewState(), NewState()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}
