package slack

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

const aliasPrefix = "alias:"

// maxAliasDepth bounds alias chains so a cycle cannot loop forever.
const maxAliasDepth = 8

// EmojiSet maps custom emoji names to an image URL or to "alias:<name>".
type EmojiSet map[string]string

// Resolve returns the image URL behind name, following aliases. ok is false
// when the name is unknown, the chain is too long, or it ends at a built-in
// emoji that has no entry in the set.
func (s EmojiSet) Resolve(name string) (string, bool) {
	name = strings.Trim(name, ":")
	for range maxAliasDepth {
		ref, found := s[name]
		if !found {
			return "", false
		}
		target, isAlias := strings.CutPrefix(ref, aliasPrefix)
		if !isAlias {
			return ref, true
		}
		name = target
	}
	return "", false
}

type emojiListResponse struct {
	Emoji EmojiSet `json:"emoji"`
}

func (r emojiListResponse) complete() bool { return r.Emoji != nil }

// ListEmoji returns the workspace's custom emoji.
func (c *AuthClient) ListEmoji(ctx context.Context) (EmojiSet, error) {
	q := url.Values{}
	q.Set("include_categories", "false")

	resp, err := call[emojiListResponse](ctx, &c.t, request{method: "emoji.list", verb: http.MethodGet, query: q})
	if err != nil {
		return nil, err
	}
	return resp.Emoji, nil
}
