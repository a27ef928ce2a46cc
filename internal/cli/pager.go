package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/slackhttp/internal/logger"
	"github.com/custodia-labs/slackhttp/pkg/slack"
)

// maxRateLimitRetries bounds how often one page is retried after "ratelimited".
const maxRateLimitRetries = 3

// pageFlags are shared by every list command.
type pageFlags struct {
	limit  int
	cursor string
	all    bool
}

func (f *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.limit, "limit", slack.DefaultLimitValue, "items per page (1-1000)")
	cmd.Flags().StringVar(&f.cursor, "cursor", "", "resume from this cursor")
	cmd.Flags().BoolVar(&f.all, "all", false, "follow cursors until the last page")
}

func (f *pageFlags) pageLimit() (slack.Limit, error) {
	return slack.NewLimit(f.limit)
}

// pager drives the cursor loop for list commands, spacing requests to stay
// under the configured per-minute budget.
type pager struct {
	limiter *rate.Limiter
	all     bool
}

func newPager(requestsPerMinute int, all bool) *pager {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 1
	}
	return &pager{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
		all:     all,
	}
}

// collect fetches from start, then keeps following Next while --all is set.
// It returns the items gathered and the cursor to resume from.
func collect[T any](
	ctx context.Context,
	p *pager,
	start slack.Cursor,
	fetch func(context.Context, slack.Cursor) (slack.Page[T], error),
) ([]T, slack.Cursor, error) {
	var items []T
	cursor := start

	for pages := 1; ; pages++ {
		if p.all {
			logger.Section(fmt.Sprintf("Page %d", pages))
		}
		page, err := fetchPage(ctx, p, cursor, fetch)
		if err != nil {
			return items, cursor, err
		}
		items = append(items, page.Items()...)
		cursor = page.Next()

		logger.Debug("page %d: %d items, more=%t", pages, page.Len(), page.HasMore())
		if !p.all {
			return items, cursor, nil
		}
		if !page.HasMore() {
			logger.Info("fetched %d items over %d pages", len(items), pages)
			return items, cursor, nil
		}
	}
}

// fetchPage requests one page, waiting on the limiter first. A "ratelimited"
// reply is retried after Slack's Retry-After hint.
func fetchPage[T any](
	ctx context.Context,
	p *pager,
	cursor slack.Cursor,
	fetch func(context.Context, slack.Cursor) (slack.Page[T], error),
) (slack.Page[T], error) {
	for attempt := 0; ; attempt++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return slack.Page[T]{}, err
		}

		page, err := fetch(ctx, cursor)
		var slackErr *slack.Error
		if err == nil || attempt >= maxRateLimitRetries ||
			!slack.IsRateLimited(err) || !errors.As(err, &slackErr) || slackErr.RetryAfter <= 0 {
			return page, err
		}

		logger.Warn("rate limited, retrying in %s", slackErr.RetryAfter)
		select {
		case <-ctx.Done():
			return slack.Page[T]{}, ctx.Err()
		case <-time.After(slackErr.RetryAfter):
		}
	}
}
