package slack

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthClient_TeamInfo(t *testing.T) {
	ctx := context.Background()

	t.Run("looks up a team", func(t *testing.T) {
		api := newFakeAPI(t, okReply(`{"ok":true,"team":{"id":"T12345","name":"My Team","domain":"example",`+
			`"email_domain":"example.com","icon":{"image_34":"https://img/34.png","image_default":true}}}`))

		team, err := api.authClient(t).TeamInfo(ctx, "T12345")
		require.NoError(t, err)
		assert.Equal(t, TeamID("T12345"), team.ID)
		assert.Equal(t, "example", team.Domain)
		assert.True(t, team.Icon.ImageDefault)
		assert.Equal(t, "T12345", api.last(t).Query.Get("team"))
	})

	t.Run("empty team means the token's own", func(t *testing.T) {
		api := newFakeAPI(t, okReply(`{"ok":true,"team":{"id":"T1","name":"n","domain":"d"}}`))

		_, err := api.authClient(t).TeamInfo(ctx, "")
		require.NoError(t, err)
		assert.False(t, api.last(t).Query.Has("team"))
	})

	t.Run("team not found", func(t *testing.T) {
		api := newFakeAPI(t, okReply(`{"ok":false,"error":"team_not_found"}`))

		_, err := api.authClient(t).TeamInfo(ctx, "T404")
		code, _ := RemoteCode(err)
		assert.Equal(t, CodeTeamNotFound, code)
	})
}
