package slack

import (
	"fmt"
	"slices"
)

const (
	// MaxLimit is the largest page size Slack accepts.
	MaxLimit = 1000

	// DefaultLimitValue is the page size used when none is specified.
	DefaultLimitValue = 100
)

// Cursor is an opaque continuation token. The zero value means "no cursor":
// the first page when sent, and "no further pages" when received.
type Cursor struct {
	token string
}

// NoCursor returns the empty cursor used to request the first page.
func NoCursor() Cursor {
	return Cursor{}
}

// NewCursor wraps a continuation token. An empty token yields NoCursor.
func NewCursor(token string) Cursor {
	return Cursor{token: token}
}

// Token returns the continuation token and whether one is present.
func (c Cursor) Token() (string, bool) {
	return c.token, c.token != ""
}

// IsNone reports whether the cursor carries no token.
func (c Cursor) IsNone() bool {
	return c.token == ""
}

// QueryValue returns the value sent as the cursor parameter; empty for none.
func (c Cursor) QueryValue() string {
	return c.token
}

func (c Cursor) String() string {
	if c.IsNone() {
		return "<none>"
	}
	return c.token
}

// ResponseMetadata is the pagination block attached to list replies.
type ResponseMetadata struct {
	NextCursor string   `json:"next_cursor"`
	Messages   []string `json:"messages,omitempty"`
}

// Cursor converts next_cursor into a Cursor. This is the only place an
// empty next_cursor from Slack is turned into "no further pages".
func (m ResponseMetadata) Cursor() Cursor {
	return NewCursor(m.NextCursor)
}

// Limit is a validated page size in (0, MaxLimit]. The zero value behaves
// as DefaultLimit.
type Limit struct {
	n int
}

// NewLimit validates a page size.
func NewLimit(n int) (Limit, error) {
	if n <= 0 || n > MaxLimit {
		return Limit{}, fmt.Errorf("%w: %d", ErrLimitOutOfRange, n)
	}
	return Limit{n: n}, nil
}

// DefaultLimit returns a limit of DefaultLimitValue.
func DefaultLimit() Limit {
	return Limit{n: DefaultLimitValue}
}

// Value returns the page size to send.
func (l Limit) Value() int {
	if l.n == 0 {
		return DefaultLimitValue
	}
	return l.n
}

// Page is one batch of results plus the cursor for the next batch.
// Pages are immutable; accumulating across pages is up to the caller.
type Page[T any] struct {
	items []T
	next  Cursor
}

// NewPage builds a page from a decoded batch.
func NewPage[T any](items []T, next Cursor) Page[T] {
	return Page[T]{items: slices.Clone(items), next: next}
}

// Items returns a copy of the page's results in server order.
func (p Page[T]) Items() []T {
	return slices.Clone(p.items)
}

// Len returns the number of results on the page.
func (p Page[T]) Len() int {
	return len(p.items)
}

// Next returns the cursor for the following page.
func (p Page[T]) Next() Cursor {
	return p.next
}

// HasMore reports whether another page can be requested.
func (p Page[T]) HasMore() bool {
	return !p.next.IsNone()
}
