package receiver

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/custodia-labs/slackhttp/pkg/slack"
)

// Verification outcomes used as the "result" label.
const (
	ResultOK               = "ok"
	ResultInvalidTimestamp = "invalid_timestamp"
	ResultTooOld           = "too_old"
	ResultNotHex           = "not_hex"
	ResultMismatch         = "mismatch"
	ResultBadBody          = "bad_body"
)

// Metrics are the receiver's Prometheus collectors. They live on their own
// registry so tests and embedders do not collide on the default one.
type Metrics struct {
	Registry *prometheus.Registry

	// Verifications counts signature checks by result.
	Verifications *prometheus.CounterVec

	// Events counts accepted payloads by envelope and event type.
	Events *prometheus.CounterVec

	// RequestDuration tracks handler latency by route and status.
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics registers the receiver collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Verifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slackctl_webhook_verifications_total",
				Help: "Slack request signature checks by result",
			},
			[]string{"result"},
		),
		Events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slackctl_webhook_events_total",
				Help: "Verified Slack payloads by type",
			},
			[]string{"type", "event"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "slackctl_webhook_request_duration_seconds",
				Help:    "Webhook request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"path", "status"},
		),
	}
}

// verificationResult maps a verification error to its label.
func verificationResult(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, slack.ErrInvalidTimestamp):
		return ResultInvalidTimestamp
	case errors.Is(err, slack.ErrTimestampTooOld):
		return ResultTooOld
	case errors.Is(err, slack.ErrSignatureNotHex):
		return ResultNotHex
	case errors.Is(err, slack.ErrDigestMismatch):
		return ResultMismatch
	default:
		return ResultBadBody
	}
}
