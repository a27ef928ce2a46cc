package slack

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ConversationType filters conversations.list.
type ConversationType string

const (
	PublicChannel  ConversationType = "public_channel"
	PrivateChannel ConversationType = "private_channel"
	MultiPartyIM   ConversationType = "mpim"
	DirectMessage  ConversationType = "im"
)

// Conversation is a channel, private channel, DM or group DM.
type Conversation struct {
	ID             ConversationID `json:"id"`
	Name           string         `json:"name,omitempty"`
	NameNormalized string         `json:"name_normalized,omitempty"`
	Created        UnixTime       `json:"created"`
	Creator        UserID         `json:"creator,omitempty"`
	ContextTeamID  TeamID         `json:"context_team_id,omitempty"`

	IsChannel  bool `json:"is_channel"`
	IsGroup    bool `json:"is_group"`
	IsIM       bool `json:"is_im"`
	IsMPIM     bool `json:"is_mpim"`
	IsPrivate  bool `json:"is_private"`
	IsArchived bool `json:"is_archived"`
	IsGeneral  bool `json:"is_general"`
	IsMember   bool `json:"is_member"`
	IsShared   bool `json:"is_shared"`

	// User is the other party of a DM.
	User       UserID `json:"user,omitempty"`
	NumMembers int    `json:"num_members,omitempty"`

	Topic   ConversationText `json:"topic"`
	Purpose ConversationText `json:"purpose"`
}

// ConversationText is a conversation topic or purpose.
type ConversationText struct {
	Value   string   `json:"value"`
	Creator UserID   `json:"creator,omitempty"`
	LastSet UnixTime `json:"last_set"`
}

// Type reports which ConversationType filter would select c.
func (c Conversation) Type() ConversationType {
	switch {
	case c.IsIM:
		return DirectMessage
	case c.IsMPIM:
		return MultiPartyIM
	case c.IsPrivate:
		return PrivateChannel
	default:
		return PublicChannel
	}
}

// ListConversationsOptions narrows conversations.list.
type ListConversationsOptions struct {
	Limit Limit
	// TeamID is required for org-wide apps; empty otherwise.
	TeamID          TeamID
	ExcludeArchived bool
	// Types defaults to public channels only.
	Types []ConversationType
}

// TypesParam is the comma-separated "types" argument.
func (o ListConversationsOptions) TypesParam() string {
	if len(o.Types) == 0 {
		return string(PublicChannel)
	}
	parts := make([]string, len(o.Types))
	for i, t := range o.Types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

type listConversationsResponse struct {
	Channels         []Conversation   `json:"channels"`
	ResponseMetadata ResponseMetadata `json:"response_metadata"`
}

func (r listConversationsResponse) complete() bool { return r.Channels != nil }

// ListConversations returns one page of conversations in the workspace.
func (c *AuthClient) ListConversations(ctx context.Context, cursor Cursor, opts ListConversationsOptions) (Page[Conversation], error) {
	q := url.Values{}
	q.Set("types", opts.TypesParam())
	q.Set("limit", strconv.Itoa(opts.Limit.Value()))
	if opts.TeamID != "" {
		q.Set("team_id", string(opts.TeamID))
	}
	if opts.ExcludeArchived {
		q.Set("exclude_archived", "true")
	}
	setCursor(q, cursor)

	resp, err := call[listConversationsResponse](ctx, &c.t, request{method: "conversations.list", verb: http.MethodGet, query: q})
	if err != nil {
		return Page[Conversation]{}, err
	}
	return NewPage(resp.Channels, resp.ResponseMetadata.Cursor()), nil
}

type membersResponse struct {
	Members          []UserID         `json:"members"`
	ResponseMetadata ResponseMetadata `json:"response_metadata"`
}

func (r membersResponse) complete() bool { return r.Members != nil }

// ListMembers returns one page of a conversation's member IDs.
func (c *AuthClient) ListMembers(ctx context.Context, channel ConversationID, cursor Cursor, limit Limit) (Page[UserID], error) {
	q := url.Values{}
	q.Set("channel", string(channel))
	q.Set("limit", strconv.Itoa(limit.Value()))
	setCursor(q, cursor)

	resp, err := call[membersResponse](ctx, &c.t, request{method: "conversations.members", verb: http.MethodGet, query: q})
	if err != nil {
		return Page[UserID]{}, err
	}
	return NewPage(resp.Members, resp.ResponseMetadata.Cursor()), nil
}

type openConversationResponse struct {
	Channel *struct {
		ID ConversationID `json:"id"`
	} `json:"channel"`
}

func (r openConversationResponse) complete() bool {
	return r.Channel != nil && r.Channel.ID != ""
}

// OpenConversation opens (or resumes) a DM with one user, or a group DM with
// several.
func (c *AuthClient) OpenConversation(ctx context.Context, users []UserID) (ConversationID, error) {
	q := url.Values{}
	q.Set("users", JoinUserIDs(users))

	resp, err := call[openConversationResponse](ctx, &c.t, request{method: "conversations.open", verb: http.MethodPost, query: q})
	if err != nil {
		return "", err
	}
	return resp.Channel.ID, nil
}

type conversationResponse struct {
	Channel *Conversation `json:"channel"`
}

func (r conversationResponse) complete() bool {
	return r.Channel != nil && r.Channel.ID != ""
}

// InviteToConversation adds users to a channel and returns the channel.
func (c *AuthClient) InviteToConversation(ctx context.Context, channel ConversationID, users []UserID) (*Conversation, error) {
	q := url.Values{}
	q.Set("channel", string(channel))
	q.Set("users", JoinUserIDs(users))

	resp, err := call[conversationResponse](ctx, &c.t, request{method: "conversations.invite", verb: http.MethodPost, query: q})
	if err != nil {
		return nil, err
	}
	return resp.Channel, nil
}

// KickFromConversation removes a user from a channel.
func (c *AuthClient) KickFromConversation(ctx context.Context, channel ConversationID, user UserID) error {
	q := url.Values{}
	q.Set("channel", string(channel))
	q.Set("user", string(user))

	_, err := call[okResponse](ctx, &c.t, request{method: "conversations.kick", verb: http.MethodPost, query: q})
	return err
}

func setCursor(q url.Values, cursor Cursor) {
	if token, ok := cursor.Token(); ok {
		q.Set("cursor", token)
	}
}
