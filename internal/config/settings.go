package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
)

// Keys understood by slackctl.
const (
	KeyBotToken          = "bot_token"
	KeyUserToken         = "user_token"
	KeySigningSecret     = "signing_secret"
	KeyClientID          = "client_id"
	KeyClientSecret      = "client_secret"
	KeyRedirectURI       = "redirect_uri"
	KeyTeamID            = "team_id"
	KeyBaseURL           = "base_url"
	KeyRequestsPerMinute = "requests_per_minute"
	KeyConversationTypes = "conversation_types"
	KeyWebhookAddr       = "webhook.addr"
	KeyLogLevel          = "log_level"
)

// Defaults.
const (
	DefaultRequestsPerMinute = 50
	DefaultWebhookAddr       = ":3000"
	DefaultLogLevel          = "info"
)

// Key describes one settable key.
type Key struct {
	Name   string
	Env    string
	Secret bool
	Int    bool
	List   bool
}

// Known lists every key in display order.
var Known = []Key{
	{Name: KeyBotToken, Env: "SLACK_BOT_TOKEN", Secret: true},
	{Name: KeyUserToken, Env: "SLACK_USER_TOKEN", Secret: true},
	{Name: KeySigningSecret, Env: "SLACK_SIGNING_SECRET", Secret: true},
	{Name: KeyClientID, Env: "SLACK_CLIENT_ID"},
	{Name: KeyClientSecret, Env: "SLACK_CLIENT_SECRET", Secret: true},
	{Name: KeyRedirectURI},
	{Name: KeyTeamID, Env: "SLACK_TEAM_ID"},
	{Name: KeyBaseURL, Env: "SLACK_API_URL"},
	{Name: KeyRequestsPerMinute, Int: true},
	{Name: KeyConversationTypes, List: true},
	{Name: KeyWebhookAddr},
	{Name: KeyLogLevel, Env: "LOG_LEVEL"},
}

// Lookup finds a known key.
func Lookup(name string) (Key, bool) {
	i := slices.IndexFunc(Known, func(k Key) bool { return k.Name == name })
	if i < 0 {
		return Key{}, false
	}
	return Known[i], true
}

// Parse converts a command-line value to the type stored for k.
func (k Key) Parse(raw string) (any, error) {
	switch {
	case k.Int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer: %w", k.Name, err)
		}
		return int64(n), nil
	case k.List:
		var items []string
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	default:
		return raw, nil
	}
}

// Settings is the resolved configuration for one invocation.
type Settings struct {
	BotToken          string
	UserToken         string
	SigningSecret     string
	ClientID          string
	ClientSecret      string
	RedirectURI       string
	TeamID            string
	BaseURL           string
	RequestsPerMinute int
	ConversationTypes []string
	WebhookAddr       string
	LogLevel          string
}

// Resolve reads settings from the store, letting environment variables win.
func Resolve(s *Store) Settings {
	return resolve(s, os.LookupEnv)
}

func resolve(s *Store, lookupEnv func(string) (string, bool)) Settings {
	str := func(name, def string) string {
		if k, _ := Lookup(name); k.Env != "" {
			if v, ok := lookupEnv(k.Env); ok && v != "" {
				return v
			}
		}
		if v := s.GetString(name); v != "" {
			return v
		}
		return def
	}

	rpm := s.GetInt(KeyRequestsPerMinute)
	if rpm <= 0 {
		rpm = DefaultRequestsPerMinute
	}

	return Settings{
		BotToken:          str(KeyBotToken, ""),
		UserToken:         str(KeyUserToken, ""),
		SigningSecret:     str(KeySigningSecret, ""),
		ClientID:          str(KeyClientID, ""),
		ClientSecret:      str(KeyClientSecret, ""),
		RedirectURI:       str(KeyRedirectURI, ""),
		TeamID:            str(KeyTeamID, ""),
		BaseURL:           str(KeyBaseURL, ""),
		RequestsPerMinute: rpm,
		ConversationTypes: s.GetStringSlice(KeyConversationTypes),
		WebhookAddr:       str(KeyWebhookAddr, DefaultWebhookAddr),
		LogLevel:          str(KeyLogLevel, DefaultLogLevel),
	}
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return strings.Repeat("*", 8) + secret[len(secret)-4:]
}
