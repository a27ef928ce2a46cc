package slack

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/http/httpguts"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is the Web API root every method path is resolved against.
const DefaultBaseURL = "https://slack.com/api/"

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Option configures a client at construction.
type Option func(*options) error

type options struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	log        *zap.Logger
}

// WithHTTPClient sets the client used to send requests. Timeouts, proxies,
// TLS and connection reuse are all its concern.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) error {
		if c != nil {
			o.httpClient = c
		}
		return nil
	}
}

// WithBaseURL points the client at another API root, e.g. a test server or
// an enterprise gateway.
func WithBaseURL(raw string) Option {
	return func(o *options) error {
		o.baseURL = raw
		return nil
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(o *options) error {
		o.userAgent = ua
		return nil
	}
}

// WithLogger logs one debug entry per Web API call to l. Clients log
// nothing by default.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) error {
		if l != nil {
			o.log = l
		}
		return nil
	}
}

// transport is the part shared by both client flavours. It is never
// modified after construction.
type transport struct {
	http      Doer
	base      *url.URL
	userAgent string
	log       *zap.Logger
}

// BasicClient sends unauthenticated requests. It is only needed for the
// credential exchanges that run before a token exists.
type BasicClient struct {
	t transport
}

// AuthClient sends every request with "Authorization: Bearer <token>".
type AuthClient struct {
	t transport
}

// NewBasicClient creates a client without an Authorization header.
func NewBasicClient(opts ...Option) (*BasicClient, error) {
	o, base, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &BasicClient{t: transport{http: o.httpClient, base: base, userAgent: o.userAgent, log: o.log}}, nil
}

// NewAuthClient creates a client that authenticates with a bot or user token.
func NewAuthClient(token string, opts ...Option) (*AuthClient, error) {
	if token == "" || !httpguts.ValidHeaderFieldValue("Bearer "+token) {
		return nil, ErrInvalidToken
	}

	o, base, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	// Copy rather than mutate the caller's client.
	authed := *o.httpClient
	authed.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
		Base:   o.httpClient.Transport,
	}

	return &AuthClient{t: transport{http: &authed, base: base, userAgent: o.userAgent, log: o.log}}, nil
}

func applyOptions(opts []Option) (*options, *url.URL, error) {
	o := &options{
		httpClient: &http.Client{},
		baseURL:    DefaultBaseURL,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, nil, err
		}
	}

	base, err := url.Parse(o.baseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidBaseURL, o.baseURL)
	}
	return o, base, nil
}

// request describes one Web API call.
type request struct {
	// method is the Web API method name, also the URL path segment.
	method string
	// verb is the HTTP method.
	verb string
	// query is sent in the URL.
	query url.Values
	// form, when non-nil, is sent as an application/x-www-form-urlencoded body.
	form url.Values
}

// reply is a raw HTTP response.
type reply struct {
	status int
	header http.Header
	body   []byte
}

// send issues exactly one HTTP request and reads the whole reply.
func (t *transport) send(ctx context.Context, r request) (*reply, error) {
	u := t.base.JoinPath(r.method)
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var body io.Reader = http.NoBody
	if r.form != nil {
		body = strings.NewReader(r.form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, r.verb, u.String(), body)
	if err != nil {
		return nil, &Error{Kind: KindMalformedRequest, Method: r.method, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if r.form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Method: r.method, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Method: r.method, StatusCode: resp.StatusCode, Err: err}
	}

	t.log.Debug("web api call",
		zap.String("method", r.method),
		zap.String("verb", r.verb),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
	)

	return &reply{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

// call sends r and decodes the reply into the success shape T.
func call[T response](ctx context.Context, t *transport, r request) (T, error) {
	rep, err := t.send(ctx, r)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](r.method, rep)
}

func malformed(method string, format string, args ...any) error {
	return &Error{Kind: KindMalformedRequest, Method: method, Err: fmt.Errorf(format, args...)}
}

// absoluteURL validates a URL parameter before it is sent.
func absoluteURL(method, param, raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", malformed(method, "%s: %w", param, err)
	}
	if !u.IsAbs() {
		return "", malformed(method, "%s: %q is not an absolute URL", param, raw)
	}
	return u.String(), nil
}
