package slack

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Construction and validation errors.
var (
	// ErrLimitOutOfRange indicates a page size outside (0, MaxLimit].
	ErrLimitOutOfRange = errors.New("slack: limit out of range")

	// ErrInvalidToken indicates an access token that cannot be sent as a
	// bearer header.
	ErrInvalidToken = errors.New("slack: invalid access token")

	// ErrInvalidBaseURL indicates an unusable API base URL.
	ErrInvalidBaseURL = errors.New("slack: invalid base URL")

	// ErrUserDeleted marks a deactivated account in the active-user projection.
	ErrUserDeleted = errors.New("slack: user is deleted")

	// ErrUserIsBot marks a bot account in the active-user projection.
	ErrUserIsBot = errors.New("slack: user is a bot")

	errUnrecognizedShape = errors.New("response matches neither the success nor the error shape")
)

// ErrorKind classifies a failed call.
type ErrorKind int

const (
	// KindRemote means Slack processed the request and rejected it.
	KindRemote ErrorKind = iota + 1
	// KindTransport means the request could not be sent or the reply not read.
	KindTransport
	// KindDecode means the reply body could not be deserialized.
	KindDecode
	// KindMalformedRequest means the request could not be built; nothing was sent.
	KindMalformedRequest
)

func (k ErrorKind) String() string {
	switch k {
	case KindRemote:
		return "remote"
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	case KindMalformedRequest:
		return "malformed request"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ErrorCode is the value of the "error" field in a Slack reply. The set is
// open: codes not listed below are passed through verbatim.
type ErrorCode string

// Codes that callers commonly branch on.
const (
	CodeInvalidAuth         ErrorCode = "invalid_auth"
	CodeNotAuthed           ErrorCode = "not_authed"
	CodeAccountInactive     ErrorCode = "account_inactive"
	CodeTokenRevoked        ErrorCode = "token_revoked"
	CodeTokenExpired        ErrorCode = "token_expired"
	CodeMissingScope        ErrorCode = "missing_scope"
	CodeRateLimited         ErrorCode = "ratelimited"
	CodeChannelNotFound     ErrorCode = "channel_not_found"
	CodeUserNotFound        ErrorCode = "user_not_found"
	CodeTeamNotFound        ErrorCode = "team_not_found"
	CodeNotInChannel        ErrorCode = "not_in_channel"
	CodeAlreadyInChannel    ErrorCode = "already_in_channel"
	CodeCantKickSelf        ErrorCode = "cant_kick_self"
	CodeInvalidCursor       ErrorCode = "invalid_cursor"
	CodeInvalidCode         ErrorCode = "invalid_code"
	CodeInvalidRefreshToken ErrorCode = "invalid_refresh_token"
	CodeBadRedirectURI      ErrorCode = "bad_redirect_uri"
	CodeInvalidClientID     ErrorCode = "invalid_client_id"
	CodeBadClientSecret     ErrorCode = "bad_client_secret"
)

// Error is returned by every endpoint binding.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Method is the Web API method, e.g. "chat.postMessage".
	Method string

	// Code is Slack's error code. Set only for KindRemote.
	Code ErrorCode

	// Warning and Messages carry Slack's optional diagnostics.
	Warning  string
	Messages []string

	// StatusCode is the HTTP status of the reply, when one was received.
	StatusCode int

	// RetryAfter is Slack's Retry-After hint on HTTP 429. The client never
	// waits on it.
	RetryAfter time.Duration

	// Err is the underlying cause for non-remote kinds.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindRemote:
		if e.RetryAfter > 0 {
			return fmt.Sprintf("slack: %s rejected: %s (retry after %s)", e.Method, e.Code, e.RetryAfter)
		}
		return fmt.Sprintf("slack: %s rejected: %s", e.Method, e.Code)
	case KindTransport:
		return fmt.Sprintf("slack: %s: send request: %v", e.Method, e.Err)
	case KindDecode:
		if e.StatusCode != 0 && e.StatusCode != http.StatusOK {
			return fmt.Sprintf("slack: %s: decode response (HTTP %d): %v", e.Method, e.StatusCode, e.Err)
		}
		return fmt.Sprintf("slack: %s: decode response: %v", e.Method, e.Err)
	case KindMalformedRequest:
		return fmt.Sprintf("slack: %s: build request: %v", e.Method, e.Err)
	default:
		return fmt.Sprintf("slack: %s: %v", e.Method, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func kindOf(err error) (ErrorKind, bool) {
	var slackErr *Error
	if errors.As(err, &slackErr) {
		return slackErr.Kind, true
	}
	return 0, false
}

// IsRemote checks if Slack rejected the request.
func IsRemote(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == KindRemote
}

// RemoteCode returns Slack's error code when err is a remote rejection.
func RemoteCode(err error) (ErrorCode, bool) {
	var slackErr *Error
	if errors.As(err, &slackErr) && slackErr.Kind == KindRemote {
		return slackErr.Code, true
	}
	return "", false
}

// IsTransport checks if the request never produced a readable reply.
// These are the failures worth retrying.
func IsTransport(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == KindTransport
}

// IsDecode checks if the reply could not be deserialized.
func IsDecode(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == KindDecode
}

// IsMalformedRequest checks if the request was rejected before sending.
func IsMalformedRequest(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == KindMalformedRequest
}

// IsRateLimited checks if Slack answered with "ratelimited".
func IsRateLimited(err error) bool {
	code, ok := RemoteCode(err)
	return ok && code == CodeRateLimited
}

// IsInvalidAuth checks if the token was rejected.
func IsInvalidAuth(err error) bool {
	code, ok := RemoteCode(err)
	if !ok {
		return false
	}
	switch code {
	case CodeInvalidAuth, CodeNotAuthed, CodeAccountInactive, CodeTokenRevoked, CodeTokenExpired:
		return true
	default:
		return false
	}
}
