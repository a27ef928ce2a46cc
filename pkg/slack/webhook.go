package slack

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// Request headers carrying the signature inputs.
const (
	HeaderTimestamp = "X-Slack-Request-Timestamp"
	HeaderSignature = "X-Slack-Signature"
)

// MaxWebhookBodySize bounds how much of a request body is read for
// verification. Slack payloads are far smaller.
const MaxWebhookBodySize = 1 << 20

// VerifyRequest reads r's body, verifies it against the signature headers and
// puts the body back so later handlers can read it again. The raw body is
// returned on success.
func (v *Verifier) VerifyRequest(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxWebhookBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	_ = r.Body.Close()
	if len(body) > MaxWebhookBodySize {
		return nil, fmt.Errorf("body exceeds %d bytes", MaxWebhookBodySize)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	if err := v.Verify(r.Header.Get(HeaderTimestamp), r.Header.Get(HeaderSignature), string(body)); err != nil {
		return nil, err
	}
	return body, nil
}

// Middleware rejects requests that fail verification with 401 and passes the
// rest to next with the body intact.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := v.VerifyRequest(r); err != nil {
			// No detail: the reason would help a forger.
			http.Error(w, "", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
