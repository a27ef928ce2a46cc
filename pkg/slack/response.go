package slack

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// response is implemented by every success shape. Slack replies carry no
// type tag, so a shape is accepted only when its required fields are present.
type response interface {
	complete() bool
}

// errorResponse is the failure shape shared by all methods.
type errorResponse struct {
	OK               *bool            `json:"ok"`
	Error            string           `json:"error"`
	Warning          string           `json:"warning"`
	ResponseMetadata ResponseMetadata `json:"response_metadata"`
}

// okResponse is the success shape of methods that return nothing but ok.
type okResponse struct {
	OK bool `json:"ok"`
}

func (r okResponse) complete() bool { return r.OK }

// decode tries the success shape first and falls back to the error shape.
func decode[T response](method string, rep *reply) (T, error) {
	var zero T

	var ok T
	successErr := json.Unmarshal(rep.body, &ok)
	if successErr == nil && ok.complete() {
		return ok, nil
	}

	var failure errorResponse
	if err := json.Unmarshal(rep.body, &failure); err == nil && failure.Error != "" {
		return zero, &Error{
			Kind:       KindRemote,
			Method:     method,
			Code:       ErrorCode(failure.Error),
			Warning:    failure.Warning,
			Messages:   failure.ResponseMetadata.Messages,
			StatusCode: rep.status,
			RetryAfter: retryAfter(rep),
		}
	}

	// A throttled reply is a rejection even if the body was not JSON.
	if rep.status == http.StatusTooManyRequests {
		return zero, &Error{
			Kind:       KindRemote,
			Method:     method,
			Code:       CodeRateLimited,
			StatusCode: rep.status,
			RetryAfter: retryAfter(rep),
		}
	}

	cause := successErr
	if cause == nil {
		cause = errUnrecognizedShape
	}
	return zero, &Error{Kind: KindDecode, Method: method, StatusCode: rep.status, Err: cause}
}

func retryAfter(rep *reply) time.Duration {
	if rep.status != http.StatusTooManyRequests {
		return 0
	}
	seconds, err := strconv.Atoi(rep.header.Get("Retry-After"))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
