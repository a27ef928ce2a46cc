package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/slackhttp/internal/logger"
	"github.com/custodia-labs/slackhttp/pkg/slack"
)

// pages serves items in fixed-size pages keyed by cursor token.
func pages(items [][]string) func(context.Context, slack.Cursor) (slack.Page[string], error) {
	return func(_ context.Context, c slack.Cursor) (slack.Page[string], error) {
		i := 0
		if token, ok := c.Token(); ok {
			for i = range items {
				if token == items[i][0] {
					break
				}
			}
		}
		next := slack.NoCursor()
		if i+1 < len(items) {
			next = slack.NewCursor(items[i+1][0])
		}
		return slack.NewPage(items[i], next), nil
	}
}

func TestCollect(t *testing.T) {
	data := [][]string{{"a", "b"}, {"c"}, {"d", "e"}}

	t.Run("single page", func(t *testing.T) {
		got, next, err := collect(context.Background(), newPager(60000, false), slack.NoCursor(), pages(data))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, got)
		token, ok := next.Token()
		assert.True(t, ok)
		assert.Equal(t, "c", token)
	})

	t.Run("all pages", func(t *testing.T) {
		got, next, err := collect(context.Background(), newPager(60000, true), slack.NoCursor(), pages(data))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, got)
		assert.True(t, next.IsNone())
	})

	t.Run("resume from cursor", func(t *testing.T) {
		got, _, err := collect(context.Background(), newPager(60000, true), slack.NewCursor("c"), pages(data))
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "d", "e"}, got)
	})
}

func TestCollect_VerboseLogsEachPage(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetVerbose(true)
	t.Cleanup(func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	})

	data := [][]string{{"a", "b"}, {"c"}}
	_, _, err := collect(context.Background(), newPager(60000, true), slack.NoCursor(), pages(data))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "\n=== Page 1 ===\n")
	assert.Contains(t, out, "\n=== Page 2 ===\n")
	assert.NotContains(t, out, "=== Page 3 ===")
	assert.Contains(t, out, "[INFO] fetched 3 items over 2 pages\n")
}

func TestCollect_QuietWithoutAll(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetVerbose(true)
	t.Cleanup(func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	})

	_, _, err := collect(context.Background(), newPager(60000, false), slack.NoCursor(), pages([][]string{{"a"}, {"b"}}))
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "===")
	assert.NotContains(t, buf.String(), "[INFO]")
}

func TestCollect_ErrorKeepsResumeCursor(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	fetch := func(_ context.Context, c slack.Cursor) (slack.Page[int], error) {
		calls++
		if calls == 2 {
			return slack.Page[int]{}, boom
		}
		return slack.NewPage([]int{calls}, slack.NewCursor("second")), nil
	}

	got, cursor, err := collect(context.Background(), newPager(60000, true), slack.NoCursor(), fetch)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1}, got)
	token, _ := cursor.Token()
	assert.Equal(t, "second", token)
}

func TestFetchPage_RetriesRateLimited(t *testing.T) {
	limited := &slack.Error{
		Kind:       slack.KindRemote,
		Method:     "users.list",
		Code:       slack.CodeRateLimited,
		StatusCode: 429,
		RetryAfter: time.Millisecond,
	}

	attempts := 0
	fetch := func(context.Context, slack.Cursor) (slack.Page[int], error) {
		attempts++
		if attempts < 3 {
			return slack.Page[int]{}, limited
		}
		return slack.NewPage([]int{7}, slack.NoCursor()), nil
	}

	page, err := fetchPage(context.Background(), newPager(60000, false), slack.NoCursor(), fetch)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, page.Items())
	assert.Equal(t, 3, attempts)
}

func TestFetchPage_GivesUp(t *testing.T) {
	limited := &slack.Error{Kind: slack.KindRemote, Code: slack.CodeRateLimited, RetryAfter: time.Millisecond}

	attempts := 0
	fetch := func(context.Context, slack.Cursor) (slack.Page[int], error) {
		attempts++
		return slack.Page[int]{}, limited
	}

	_, err := fetchPage(context.Background(), newPager(60000, false), slack.NoCursor(), fetch)
	require.Error(t, err)
	assert.True(t, slack.IsRateLimited(err))
	assert.Equal(t, maxRateLimitRetries+1, attempts)
}

func TestFetchPage_NoRetryWithoutHint(t *testing.T) {
	attempts := 0
	fetch := func(context.Context, slack.Cursor) (slack.Page[int], error) {
		attempts++
		return slack.Page[int]{}, &slack.Error{Kind: slack.KindRemote, Code: slack.CodeRateLimited}
	}

	_, err := fetchPage(context.Background(), newPager(60000, false), slack.NoCursor(), fetch)
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestFetchPage_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetch := func(context.Context, slack.Cursor) (slack.Page[int], error) {
		t.Fatal("fetch called after cancel")
		return slack.Page[int]{}, nil
	}

	_, err := fetchPage(ctx, newPager(60000, false), slack.NoCursor(), fetch)
	require.ErrorIs(t, err, context.Canceled)
}
