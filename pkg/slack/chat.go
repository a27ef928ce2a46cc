package slack

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Message is a posted message as echoed back by chat.postMessage.
type Message struct {
	Channel  ConversationID `json:"channel,omitempty"`
	Type     string         `json:"type"`
	Subtype  string         `json:"subtype,omitempty"`
	Text     string         `json:"text"`
	User     UserID         `json:"user,omitempty"`
	BotID    BotID          `json:"bot_id,omitempty"`
	AppID    AppID          `json:"app_id,omitempty"`
	Team     TeamID         `json:"team,omitempty"`
	Username string         `json:"username,omitempty"`
	TS       Timestamp      `json:"ts"`
	ThreadTS Timestamp      `json:"thread_ts,omitempty"`
}

// MessageOptions are the optional chat.postMessage and chat.postEphemeral
// arguments. The zero value posts plain text with link names and markdown on.
type MessageOptions struct {
	// IconEmoji overrides the bot icon; colons are added if missing.
	IconEmoji string
	// IconURL overrides the bot icon with an image. Must be absolute.
	IconURL string
	// Username overrides the bot name.
	Username string
	// ThreadTS posts the message as a reply in that thread.
	ThreadTS Timestamp
	// ReplyBroadcast also shows a thread reply in the channel.
	ReplyBroadcast bool

	DisableLinkNames bool
	DisableMarkdown  bool

	// UnfurlLinks and UnfurlMedia are sent only when set.
	UnfurlLinks *bool
	UnfurlMedia *bool
}

func (o MessageOptions) encode(method string, q url.Values) error {
	q.Set("link_names", strconv.FormatBool(!o.DisableLinkNames))
	q.Set("mrkdwn", strconv.FormatBool(!o.DisableMarkdown))

	if o.IconEmoji != "" {
		q.Set("icon_emoji", wrapEmoji(o.IconEmoji))
	}
	if o.IconURL != "" {
		u, err := absoluteURL(method, "icon_url", o.IconURL)
		if err != nil {
			return err
		}
		q.Set("icon_url", u)
	}
	if o.Username != "" {
		q.Set("username", o.Username)
	}
	if o.ThreadTS != "" {
		q.Set("thread_ts", string(o.ThreadTS))
		if o.ReplyBroadcast {
			q.Set("reply_broadcast", "true")
		}
	}
	if o.UnfurlLinks != nil {
		q.Set("unfurl_links", strconv.FormatBool(*o.UnfurlLinks))
	}
	if o.UnfurlMedia != nil {
		q.Set("unfurl_media", strconv.FormatBool(*o.UnfurlMedia))
	}
	return nil
}

func wrapEmoji(name string) string {
	return ":" + strings.Trim(name, ":") + ":"
}

type postMessageResponse struct {
	Channel ConversationID `json:"channel"`
	TS      Timestamp      `json:"ts"`
	Message *Message       `json:"message"`
}

func (r postMessageResponse) complete() bool {
	return r.Channel != "" && r.Message != nil
}

// PostMessage posts text to a conversation and returns the stored message.
func (c *AuthClient) PostMessage(ctx context.Context, channel ConversationID, text string, opts MessageOptions) (*Message, error) {
	const method = "chat.postMessage"

	q := url.Values{}
	q.Set("channel", string(channel))
	q.Set("text", text)
	if err := opts.encode(method, q); err != nil {
		return nil, err
	}

	resp, err := call[postMessageResponse](ctx, &c.t, request{method: method, verb: http.MethodPost, query: q})
	if err != nil {
		return nil, err
	}

	msg := resp.Message
	msg.Channel = resp.Channel
	if msg.TS == "" {
		msg.TS = resp.TS
	}
	return msg, nil
}

type postEphemeralResponse struct {
	MessageTS Timestamp `json:"message_ts"`
}

func (r postEphemeralResponse) complete() bool { return r.MessageTS != "" }

// PostEphemeral shows text to one user in a conversation. Ephemeral messages
// are not stored, so only their timestamp comes back.
func (c *AuthClient) PostEphemeral(ctx context.Context, channel ConversationID, user UserID, text string, opts MessageOptions) (Timestamp, error) {
	const method = "chat.postEphemeral"

	q := url.Values{}
	q.Set("channel", string(channel))
	q.Set("user", string(user))
	q.Set("text", text)
	if err := opts.encode(method, q); err != nil {
		return "", err
	}

	resp, err := call[postEphemeralResponse](ctx, &c.t, request{method: method, verb: http.MethodPost, query: q})
	if err != nil {
		return "", err
	}
	return resp.MessageTS, nil
}
