package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/slackhttp/internal/config"
	"github.com/custodia-labs/slackhttp/pkg/slack"
)

var (
	oauthRedirectURI string
	oauthSave        bool
)

var oauthCmd = &cobra.Command{
	Use:   "oauth",
	Short: "Run the OAuth v2 install exchanges",
}

var oauthExchangeCmd = &cobra.Command{
	Use:   "exchange <code>",
	Short: "Exchange an authorization code for tokens",
	Args:  cobra.ExactArgs(1),
	RunE:  runOAuthExchange,
}

var oauthRefreshCmd = &cobra.Command{
	Use:   "refresh <refresh-token>",
	Short: "Rotate a token for apps with token rotation enabled",
	Args:  cobra.ExactArgs(1),
	RunE:  runOAuthRefresh,
}

var openidCmd = &cobra.Command{
	Use:   "openid",
	Short: "Sign in with Slack (OpenID Connect)",
}

var openidTokenCmd = &cobra.Command{
	Use:   "token <code>",
	Short: "Exchange a Sign in with Slack code for a user token",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpenIDToken,
}

var openidUserInfoCmd = &cobra.Command{
	Use:   "userinfo",
	Short: "Show the identity behind the user token",
	Args:  cobra.NoArgs,
	RunE:  runOpenIDUserInfo,
}

func init() {
	for _, cmd := range []*cobra.Command{oauthExchangeCmd, openidTokenCmd} {
		cmd.Flags().StringVar(&oauthRedirectURI, "redirect-uri", "", "redirect URI used to authorize (default: redirect_uri setting)")
	}
	for _, cmd := range []*cobra.Command{oauthExchangeCmd, oauthRefreshCmd, openidTokenCmd} {
		cmd.Flags().BoolVar(&oauthSave, "save", false, "store the returned tokens in the config file")
	}

	oauthCmd.AddCommand(oauthExchangeCmd)
	oauthCmd.AddCommand(oauthRefreshCmd)
	openidCmd.AddCommand(openidTokenCmd)
	openidCmd.AddCommand(openidUserInfoCmd)
	rootCmd.AddCommand(oauthCmd)
	rootCmd.AddCommand(openidCmd)
}

func redirectURI(s config.Settings) string {
	if oauthRedirectURI != "" {
		return oauthRedirectURI
	}
	return s.RedirectURI
}

// saveTokens writes non-empty values to the config file.
func saveTokens(cmd *cobra.Command, values map[string]string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	for _, key := range []string{config.KeyBotToken, config.KeyUserToken} {
		if v := values[key]; v != "" {
			if err := store.Set(key, v); err != nil {
				return fmt.Errorf("save %s: %w", key, err)
			}
			cmd.Printf("Saved %s to %s\n", key, store.Path())
		}
	}
	return nil
}

func runOAuthExchange(cmd *cobra.Command, args []string) error {
	client, s, err := newBasicClient()
	if err != nil {
		return err
	}
	creds, err := credentials(s)
	if err != nil {
		return err
	}

	access, err := client.ExchangeCode(cmd.Context(), creds, args[0], redirectURI(s))
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}

	return reportAccess(cmd, access)
}

// reportAccess prints an install result and saves it with --save.
func reportAccess(cmd *cobra.Command, access *slack.Access) error {
	cmd.Printf("Installed on %s (%s)\n", access.Team.Name, access.Team.ID)
	if access.AccessToken != "" {
		cmd.Printf("Bot token:  %s (scopes: %s)\n", config.Mask(access.AccessToken), access.Scope)
	}
	if access.AuthedUser.AccessToken != "" {
		cmd.Printf("User token: %s (scopes: %s)\n", config.Mask(access.AuthedUser.AccessToken), access.AuthedUser.Scope)
	}
	if !access.Expiry.IsZero() {
		cmd.Printf("Expires:    %s\n", access.Expiry.Format("2006-01-02 15:04:05 MST"))
	}

	if !oauthSave {
		return nil
	}
	return saveTokens(cmd, map[string]string{
		config.KeyBotToken:  access.AccessToken,
		config.KeyUserToken: access.AuthedUser.AccessToken,
	})
}

func runOAuthRefresh(cmd *cobra.Command, args []string) error {
	client, s, err := newBasicClient()
	if err != nil {
		return err
	}
	creds, err := credentials(s)
	if err != nil {
		return err
	}

	access, err := client.RefreshAccess(cmd.Context(), creds, args[0])
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}

	cmd.Printf("Access token:  %s (%s)\n", config.Mask(access.AccessToken), access.TokenType)
	cmd.Printf("Refresh token: %s\n", config.Mask(access.RefreshToken))
	if !access.Expiry.IsZero() {
		cmd.Printf("Expires:       %s\n", access.Expiry.Format("2006-01-02 15:04:05 MST"))
	}

	if !oauthSave {
		return nil
	}
	key := config.KeyBotToken
	if access.TokenType == "user" {
		key = config.KeyUserToken
	}
	return saveTokens(cmd, map[string]string{key: access.AccessToken})
}

func runOpenIDToken(cmd *cobra.Command, args []string) error {
	client, s, err := newBasicClient()
	if err != nil {
		return err
	}
	creds, err := credentials(s)
	if err != nil {
		return err
	}

	tok, err := client.OpenIDToken(cmd.Context(), creds, args[0], redirectURI(s))
	if err != nil {
		return fmt.Errorf("openid token: %w", err)
	}

	return reportOpenID(cmd, tok)
}

func reportOpenID(cmd *cobra.Command, tok *slack.OpenIDToken) error {
	cmd.Printf("User token: %s\n", config.Mask(tok.AccessToken))
	if tok.IDToken != "" {
		claims, err := tok.IDTokenClaims()
		if err != nil {
			return err
		}
		cmd.Printf("User:       %s (%s)\n", claims.UserID, claims.Email)
		cmd.Printf("Team:       %s\n", claims.TeamID)
	}

	if !oauthSave {
		return nil
	}
	return saveTokens(cmd, map[string]string{config.KeyUserToken: tok.AccessToken})
}

func runOpenIDUserInfo(cmd *cobra.Command, _ []string) error {
	client, _, err := newAuthClient()
	if err != nil {
		return err
	}

	info, err := client.OpenIDUserInfo(cmd.Context())
	if err != nil {
		return fmt.Errorf("openid userinfo: %w", err)
	}
	return writeJSON(cmd.OutOrStdout(), info)
}
