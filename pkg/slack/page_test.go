package slack

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewLimit(t *testing.T) {
	tests := []struct {
		n       int
		wantErr bool
	}{
		{n: -1, wantErr: true},
		{n: 0, wantErr: true},
		{n: 1},
		{n: 100},
		{n: 1000},
		{n: 1001, wantErr: true},
	}

	for _, tt := range tests {
		limit, err := NewLimit(tt.n)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrLimitOutOfRange, "n=%d", tt.n)
			continue
		}
		require.NoError(t, err, "n=%d", tt.n)
		assert.Equal(t, tt.n, limit.Value())
	}
}

func TestLimit_ZeroValue(t *testing.T) {
	var limit Limit
	assert.Equal(t, DefaultLimitValue, limit.Value())
	assert.Equal(t, DefaultLimit(), Limit{n: DefaultLimitValue})
}

func TestNewLimit_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.Int().Draw(t, "n")
		limit, err := NewLimit(n)
		if n >= 1 && n <= MaxLimit {
			require.NoError(t, err)
			require.Equal(t, n, limit.Value())
		} else {
			require.ErrorIs(t, err, ErrLimitOutOfRange)
		}
	})
}

func TestCursor(t *testing.T) {
	t.Run("no cursor has no token", func(t *testing.T) {
		token, ok := NoCursor().Token()
		assert.False(t, ok)
		assert.Empty(t, token)
		assert.True(t, NoCursor().IsNone())
	})

	t.Run("empty token is no cursor", func(t *testing.T) {
		assert.Equal(t, NoCursor(), NewCursor(""))
	})

	t.Run("token round trips", func(t *testing.T) {
		c := NewCursor("dXNlcjpVMEc5V0ZYTlo=")
		token, ok := c.Token()
		assert.True(t, ok)
		assert.Equal(t, "dXNlcjpVMEc5V0ZYTlo=", token)
		assert.Equal(t, token, c.QueryValue())
	})
}

func TestResponseMetadata_Cursor(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Cursor
	}{
		{"empty next cursor", `{"next_cursor":""}`, NoCursor()},
		{"missing next cursor", `{}`, NoCursor()},
		{"present next cursor", `{"next_cursor":"abc"}`, NewCursor("abc")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var meta ResponseMetadata
			require.NoError(t, json.Unmarshal([]byte(tt.json), &meta))
			assert.Equal(t, tt.want, meta.Cursor())
		})
	}
}

func TestPage(t *testing.T) {
	t.Run("items are copied in", func(t *testing.T) {
		items := []string{"a", "b"}
		page := NewPage(items, NoCursor())
		items[0] = "changed"

		assert.Equal(t, []string{"a", "b"}, page.Items())
	})

	t.Run("items are copied out", func(t *testing.T) {
		page := NewPage([]string{"a"}, NoCursor())
		page.Items()[0] = "changed"

		assert.Equal(t, []string{"a"}, page.Items())
	})

	t.Run("has more follows next cursor", func(t *testing.T) {
		assert.False(t, NewPage([]int{1}, NoCursor()).HasMore())
		more := NewPage([]int{1, 2}, NewCursor("next"))
		assert.True(t, more.HasMore())
		assert.Equal(t, 2, more.Len())
		assert.Equal(t, NewCursor("next"), more.Next())
	})
}
