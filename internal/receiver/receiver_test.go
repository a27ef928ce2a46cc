package receiver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/custodia-labs/slackhttp/pkg/slack"
)

const testSecret = "8f742231b10e8888abcd99yyyzzz85a5"

var testNow = time.Unix(1700000000, 0)

type captured struct {
	mu     sync.Mutex
	events []Event
}

func (c *captured) sink(_ context.Context, ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *captured) all() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func newTestServer(t *testing.T, log *zap.Logger) (*Server, *Metrics, *captured) {
	t.Helper()
	v := slack.NewVerifier([]byte(testSecret))
	v.Now = func() time.Time { return testNow }
	m := NewMetrics()
	c := &captured{}
	return New(v, log, m, c.sink), m, c
}

func signed(path, contentType, body string, at time.Time) *http.Request {
	ts := strconv.FormatInt(at.Unix(), 10)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(slack.HeaderTimestamp, ts)
	req.Header.Set(slack.HeaderSignature, slack.Sign([]byte(testSecret), ts, body))
	return req
}

func TestServer_URLVerification(t *testing.T) {
	srv, m, c := newTestServer(t, zaptest.NewLogger(t))

	body := `{"token":"x","challenge":"3eZbrw1aBm2rZgRNFdxV2595E9CY3gmdALWMmHkvFXO7tYXAYM8P","type":"url_verification"}`
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, signed(EventsPath, "application/json", body, testNow))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3eZbrw1aBm2rZgRNFdxV2595E9CY3gmdALWMmHkvFXO7tYXAYM8P", rec.Body.String())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Verifications.WithLabelValues(ResultOK)))
	assert.Empty(t, c.all())
}

func TestServer_EventCallback(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	srv, m, c := newTestServer(t, zap.New(core))

	body := `{"type":"event_callback","team_id":"T1","event_id":"Ev1",` +
		`"event":{"type":"app_mention","user":"U1","text":"<@U0> hi","channel":"C1"}}`
	req := signed(EventsPath, "application/json", body, testNow)
	req.Header.Set(CorrelationHeader, "corr-1")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "corr-1", rec.Header().Get(CorrelationHeader))

	events := c.all()
	require.Len(t, events, 1)
	assert.Equal(t, "event_callback", events[0].Type)
	assert.Equal(t, "app_mention", events[0].EventType)
	assert.Equal(t, slack.TeamID("T1"), events[0].TeamID)
	assert.JSONEq(t, `{"type":"app_mention","user":"U1","text":"<@U0> hi","channel":"C1"}`, string(events[0].Payload))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Events.WithLabelValues("event_callback", "app_mention")))

	received := logs.FilterMessage("event received").All()
	require.Len(t, received, 1)
	assert.Equal(t, "corr-1", received[0].ContextMap()["correlation_id"])
}

func TestServer_SlashCommand(t *testing.T) {
	srv, _, c := newTestServer(t, zaptest.NewLogger(t))

	form := url.Values{}
	form.Set("command", "/deploy")
	form.Set("text", "api")
	form.Set("team_id", "T1")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, signed(CommandsPath, "application/x-www-form-urlencoded", form.Encode(), testNow))

	require.Equal(t, http.StatusOK, rec.Code)
	events := c.all()
	require.Len(t, events, 1)
	assert.Equal(t, "command", events[0].Type)
	assert.Equal(t, "/deploy", events[0].EventType)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.Equal(t, "api", payload["text"])
}

func TestServer_RejectsBadSignatures(t *testing.T) {
	tests := []struct {
		name   string
		req    func() *http.Request
		result string
	}{
		{
			name: "stale",
			req: func() *http.Request {
				return signed(EventsPath, "application/json", `{"type":"event_callback"}`, testNow.Add(-10*time.Minute))
			},
			result: ResultTooOld,
		},
		{
			name: "tampered",
			req: func() *http.Request {
				req := signed(EventsPath, "application/json", `{"type":"event_callback"}`, testNow)
				req.Body = io.NopCloser(strings.NewReader(`{"type":"event_callback","x":1}`))
				return req
			},
			result: ResultMismatch,
		},
		{
			name: "missing headers",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, EventsPath, strings.NewReader(`{}`))
			},
			result: ResultInvalidTimestamp,
		},
		{
			name: "non hex signature",
			req: func() *http.Request {
				req := signed(CommandsPath, "application/x-www-form-urlencoded", "command=%2Fx", testNow)
				req.Header.Set(slack.HeaderSignature, "v0=zz")
				return req
			},
			result: ResultNotHex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, m, c := newTestServer(t, zaptest.NewLogger(t))

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, tt.req())

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, float64(1), testutil.ToFloat64(m.Verifications.WithLabelValues(tt.result)))
			assert.Empty(t, c.all())
		})
	}
}

func TestServer_InvalidJSON(t *testing.T) {
	srv, _, c := newTestServer(t, zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, signed(EventsPath, "application/json", "{not json", testNow))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, c.all())
}

func TestServer_HealthAndMetrics(t *testing.T) {
	srv, _, _ := newTestServer(t, zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, HealthPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	// Produce one verification sample so the counter family is exported.
	srv.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, EventsPath, strings.NewReader("{}")))

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, MetricsPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `slackctl_webhook_verifications_total{result="invalid_timestamp"} 1`)
}

func TestServer_GeneratesCorrelationID(t *testing.T) {
	srv, _, _ := newTestServer(t, zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, HealthPath, nil))

	assert.Len(t, rec.Header().Get(CorrelationHeader), 36)
}

func TestServer_UnmatchedPathsShareOneSeries(t *testing.T) {
	srv, m, _ := newTestServer(t, zap.NewNop())

	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scan/"+strconv.Itoa(i), nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}

func TestServer_ListenAndServe(t *testing.T) {
	srv, _, _ := newTestServer(t, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestVerificationResult(t *testing.T) {
	assert.Equal(t, ResultOK, verificationResult(nil))
	assert.Equal(t, ResultTooOld, verificationResult(slack.ErrTimestampTooOld))
	assert.Equal(t, ResultBadBody, verificationResult(io.ErrUnexpectedEOF))
}
