// Package cli implements the slackctl command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/slackhttp/internal/config"
	"github.com/custodia-labs/slackhttp/internal/logger"
	"github.com/custodia-labs/slackhttp/pkg/slack"
)

// Token kinds selectable with --token-kind.
const (
	tokenKindBot  = "bot"
	tokenKindUser = "user"
)

var (
	version = "dev"

	verbose   bool
	configDir string
	tokenKind string
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "slackctl",
	Short: "Call the Slack Web API from the command line",
	Long: `slackctl posts messages, lists conversations and users, runs the OAuth
exchanges and verifies request signatures against the Slack Web API.

Tokens and secrets are read from ~/.slackctl/config.toml and can be
overridden with SLACK_BOT_TOKEN, SLACK_USER_TOKEN, SLACK_SIGNING_SECRET,
SLACK_CLIENT_ID, SLACK_CLIENT_SECRET and SLACK_TEAM_ID.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log each API call to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.slackctl)")
	rootCmd.PersistentFlags().StringVar(&tokenKind, "token-kind", tokenKindBot, "token to authenticate with: bot or user")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "HTTP timeout per API call")
}

// SetVersion sets the version reported by "slackctl version".
func SetVersion(v string) {
	version = v
}

// Execute runs the root command. Cancelling ctx aborts in-flight API calls.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func openStore() (*config.Store, error) {
	store, err := config.NewStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	return store, nil
}

func loadSettings() (config.Settings, error) {
	store, err := openStore()
	if err != nil {
		return config.Settings{}, err
	}
	return config.Resolve(store), nil
}

func clientOptions(s config.Settings) []slack.Option {
	opts := []slack.Option{
		slack.WithHTTPClient(&http.Client{Timeout: timeout}),
		slack.WithUserAgent("slackctl/" + version),
		slack.WithLogger(logger.L()),
	}
	if s.BaseURL != "" {
		opts = append(opts, slack.WithBaseURL(s.BaseURL))
	}
	return opts
}

// newAuthClient builds a client for the token chosen by --token-kind.
func newAuthClient() (*slack.AuthClient, config.Settings, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, s, err
	}

	var token, key string
	switch tokenKind {
	case tokenKindBot:
		token, key = s.BotToken, config.KeyBotToken
	case tokenKindUser:
		token, key = s.UserToken, config.KeyUserToken
	default:
		return nil, s, fmt.Errorf("unknown token kind %q: use bot or user", tokenKind)
	}
	if token == "" {
		return nil, s, fmt.Errorf("no %s token configured: run 'slackctl config set %s'", tokenKind, key)
	}

	client, err := slack.NewAuthClient(token, clientOptions(s)...)
	if err != nil {
		return nil, s, err
	}
	return client, s, nil
}

func newBasicClient() (*slack.BasicClient, config.Settings, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, s, err
	}
	client, err := slack.NewBasicClient(clientOptions(s)...)
	if err != nil {
		return nil, s, err
	}
	return client, s, nil
}

func credentials(s config.Settings) (slack.OAuthCredentials, error) {
	if s.ClientID == "" || s.ClientSecret == "" {
		return slack.OAuthCredentials{}, errors.New("client_id and client_secret must be configured")
	}
	return slack.OAuthCredentials{ClientID: s.ClientID, ClientSecret: s.ClientSecret}, nil
}
