package slack

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmojiSet_Resolve(t *testing.T) {
	set := EmojiSet{
		"party":  "https://emoji/party.gif",
		"yay":    "alias:party",
		"yayyay": "alias:yay",
		"thumbs": "alias:thumbsup",
		"loop-a": "alias:loop-b",
		"loop-b": "alias:loop-a",
	}

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"party", "https://emoji/party.gif", true},
		{":party:", "https://emoji/party.gif", true},
		{"yay", "https://emoji/party.gif", true},
		{"yayyay", "https://emoji/party.gif", true},
		{"thumbs", "", false},
		{"loop-a", "", false},
		{"missing", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := set.Resolve(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthClient_ListEmoji(t *testing.T) {
	api := newFakeAPI(t, okReply(`{"ok":true,"emoji":{"bowtie":"https://emoji/bowtie.png","squirrel":"alias:bowtie"}}`))

	set, err := api.authClient(t).ListEmoji(context.Background())
	require.NoError(t, err)
	assert.Len(t, set, 2)
	assert.Equal(t, "alias:bowtie", set["squirrel"])
	assert.Equal(t, "false", api.last(t).Query.Get("include_categories"))
}
