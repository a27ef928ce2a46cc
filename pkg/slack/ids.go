package slack

import "strings"

// ConversationID identifies a channel, private group, DM or MPIM (C…, G…, D…).
type ConversationID string

// UserID identifies a workspace member (U… or W…).
type UserID string

// TeamID identifies a workspace (T…).
type TeamID string

// BotID identifies a bot user's integration (B…).
type BotID string

// AppID identifies a Slack app (A…).
type AppID string

func (id ConversationID) String() string { return string(id) }

func (id UserID) String() string { return string(id) }

func (id TeamID) String() string { return string(id) }

func (id BotID) String() string { return string(id) }

func (id AppID) String() string { return string(id) }

// JoinUserIDs renders user IDs in the comma-separated form taken by
// the users= parameter.
func JoinUserIDs(ids []UserID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}
