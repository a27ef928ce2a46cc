// Package receiver serves the HTTP endpoints Slack calls: the Events API and
// slash commands. Every request is signature-checked before it is parsed.
package receiver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/custodia-labs/slackhttp/pkg/slack"
)

// Routes.
const (
	EventsPath   = "/slack/events"
	CommandsPath = "/slack/commands"
	HealthPath   = "/healthz"
	MetricsPath  = "/metrics"
)

// Event is a verified Events API or slash command payload.
type Event struct {
	// Type is the envelope type, e.g. "event_callback", or "command".
	Type string `json:"type"`
	// EventType is the inner event type, e.g. "app_mention", or the command.
	EventType string       `json:"event_type,omitempty"`
	EventID   string       `json:"event_id,omitempty"`
	TeamID    slack.TeamID `json:"team_id,omitempty"`
	// Payload is the inner event, or the command form re-encoded as JSON.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Sink receives verified events. It runs on the request goroutine, and Slack
// expects an answer within three seconds.
type Sink func(ctx context.Context, ev Event)

// Server routes Slack requests through verification to a Sink.
type Server struct {
	verifier *slack.Verifier
	log      *zap.Logger
	metrics  *Metrics
	sink     Sink
	router   chi.Router
}

// New builds a server. A nil sink discards events.
func New(verifier *slack.Verifier, log *zap.Logger, metrics *Metrics, sink Sink) *Server {
	if sink == nil {
		sink = func(context.Context, Event) {}
	}
	s := &Server{verifier: verifier, log: log, metrics: metrics, sink: sink}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(logging(log, metrics))
	r.Use(chimiddleware.Recoverer)

	r.Get(HealthPath, s.health)
	r.Handle(MetricsPath, promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(s.verify)
		r.Post(EventsPath, s.events)
		r.Post(CommandsPath, s.commands)
	})

	s.router = r
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("webhook receiver listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// verify rejects unsigned or stale requests with 401 and records the outcome.
func (s *Server) verify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := s.verifier.VerifyRequest(r)
		result := verificationResult(err)
		s.metrics.Verifications.WithLabelValues(result).Inc()

		if err != nil {
			s.log.Warn("request verification failed",
				zap.String("correlation_id", CorrelationID(r.Context())),
				zap.String("result", result),
			)
			http.Error(w, "", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// envelope is the outer Events API payload.
type envelope struct {
	Type      string          `json:"type"`
	Challenge string          `json:"challenge"`
	TeamID    slack.TeamID    `json:"team_id"`
	EventID   string          `json:"event_id"`
	Event     json.RawMessage `json:"event"`
}

func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	var env envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	if env.Type == "url_verification" {
		s.metrics.Events.WithLabelValues(env.Type, "").Inc()
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(env.Challenge))
		return
	}

	var inner struct {
		Type string `json:"type"`
	}
	if len(env.Event) > 0 {
		_ = json.Unmarshal(env.Event, &inner)
	}
	s.metrics.Events.WithLabelValues(env.Type, inner.Type).Inc()

	s.log.Info("event received",
		zap.String("correlation_id", CorrelationID(r.Context())),
		zap.String("type", env.Type),
		zap.String("event_type", inner.Type),
		zap.String("event_id", env.EventID),
		zap.String("team_id", string(env.TeamID)),
	)

	s.sink(r.Context(), Event{
		Type:      env.Type,
		EventType: inner.Type,
		EventID:   env.EventID,
		TeamID:    env.TeamID,
		Payload:   env.Event,
	})
	w.WriteHeader(http.StatusOK)
}

func (s *Server) commands(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	command := r.PostForm.Get("command")
	s.metrics.Events.WithLabelValues("command", command).Inc()
	s.log.Info("command received",
		zap.String("correlation_id", CorrelationID(r.Context())),
		zap.String("command", command),
		zap.String("team_id", r.PostForm.Get("team_id")),
	)

	payload, _ := json.Marshal(flattenForm(r.PostForm))
	s.sink(r.Context(), Event{
		Type:      "command",
		EventType: command,
		TeamID:    slack.TeamID(r.PostForm.Get("team_id")),
		Payload:   payload,
	})
	w.WriteHeader(http.StatusOK)
}

func flattenForm(form url.Values) map[string]string {
	out := make(map[string]string, len(form))
	for k := range form {
		out[k] = form.Get(k)
	}
	return out
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
