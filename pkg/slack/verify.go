package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// DefaultMaxAge is how old a request timestamp may be before the request is
// treated as a replay.
const DefaultMaxAge = 5 * time.Minute

// signatureVersion prefixes both the signed base string and the header value.
const signatureVersion = "v0"

// Timestamps must fall within years -9999 through 9999 (UTC).
const (
	minTimestamp = -377705116800
	maxTimestamp = 253402300799
)

// Verification errors, checked in this order.
var (
	// ErrInvalidTimestamp indicates the timestamp is not base-10 UNIX seconds
	// or lies outside years -9999 through 9999.
	ErrInvalidTimestamp = errors.New("slack: timestamp is not a valid UNIX timestamp")

	// ErrTimestampTooOld indicates the request is older than the replay window.
	ErrTimestampTooOld = errors.New("slack: timestamp is too old")

	// ErrSignatureNotHex indicates the signature is not hex encoded.
	ErrSignatureNotHex = errors.New("slack: signature is not valid hex")

	// ErrDigestMismatch indicates the signature does not match the body.
	ErrDigestMismatch = errors.New("slack: signature does not match computed digest")
)

// Verifier checks that inbound requests were signed by Slack with the app's
// signing secret. A Verifier holds no mutable state and may be shared.
type Verifier struct {
	// Secret is the app's signing secret.
	Secret []byte

	// MaxAge bounds request age. Zero means DefaultMaxAge.
	MaxAge time.Duration

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

// NewVerifier returns a Verifier with the default replay window.
func NewVerifier(secret []byte) *Verifier {
	return &Verifier{Secret: secret}
}

// Verify checks one request's timestamp header, signature header and raw body.
func (v *Verifier) Verify(timestamp, signature, body string) error {
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	maxAge := v.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return verify(v.Secret, maxAge, now(), timestamp, signature, body)
}

// Verify checks a request against the wall clock with the default window.
func Verify(secret []byte, timestamp, signature, body string) error {
	return verify(secret, DefaultMaxAge, time.Now(), timestamp, signature, body)
}

// VerifyAt is Verify with a caller-supplied current time.
func VerifyAt(now time.Time, secret []byte, timestamp, signature, body string) error {
	return verify(secret, DefaultMaxAge, now, timestamp, signature, body)
}

func verify(secret []byte, maxAge time.Duration, now time.Time, timestamp, signature, body string) error {
	seconds, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil || seconds < minTimestamp || seconds > maxTimestamp {
		return ErrInvalidTimestamp
	}

	// Accepted while ts + maxAge >= now. Compared in whole seconds so the
	// boundary does not depend on the sub-second part of now.
	if seconds < now.Unix()-int64(maxAge/time.Second) {
		return ErrTimestampTooOld
	}

	got, err := hex.DecodeString(strings.TrimPrefix(signature, signatureVersion+"="))
	if err != nil {
		return ErrSignatureNotHex
	}

	if !hmac.Equal(got, digest(secret, timestamp, body)) {
		return ErrDigestMismatch
	}
	return nil
}

// Sign returns the X-Slack-Signature value ("v0=<hex>") for a body sent at
// timestamp.
func Sign(secret []byte, timestamp, body string) string {
	return signatureVersion + "=" + hex.EncodeToString(digest(secret, timestamp, body))
}

func digest(secret []byte, timestamp, body string) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(signatureVersion + ":" + timestamp + ":" + body))
	return mac.Sum(nil)
}
