package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/slackhttp/internal/logger"
	"github.com/custodia-labs/slackhttp/internal/oauthflow"
	"github.com/custodia-labs/slackhttp/pkg/slack"
)

// defaultCallbackPort is fixed so the redirect URL can be registered once.
const defaultCallbackPort = 8976

var loginOpts struct {
	scopes     string
	userScopes string
	team       string
	port       int
	noBrowser  bool
	wait       time.Duration
}

var oauthLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Install the app through the browser and exchange the code",
	Long: `Open the Slack install page, receive the redirect on a local server and
exchange the code for tokens.

Register http://localhost:8976/slack/oauth/callback (or the --port you
choose) as a redirect URL of the Slack app first.`,
	Args: cobra.NoArgs,
	RunE: runOAuthLogin,
}

var openidLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with Slack through the browser",
	Args:  cobra.NoArgs,
	RunE:  runOpenIDLogin,
}

func init() {
	for _, cmd := range []*cobra.Command{oauthLoginCmd, openidLoginCmd} {
		cmd.Flags().IntVar(&loginOpts.port, "port", defaultCallbackPort, "local callback port (0 picks a free one)")
		cmd.Flags().BoolVar(&loginOpts.noBrowser, "no-browser", false, "print the URL instead of opening a browser")
		cmd.Flags().DurationVar(&loginOpts.wait, "wait", 5*time.Minute, "how long to wait for the redirect")
		cmd.Flags().BoolVar(&oauthSave, "save", false, "store the returned tokens in the config file")
	}
	oauthLoginCmd.Flags().StringVar(&loginOpts.scopes, "scopes", "", "comma-separated bot scopes")
	oauthLoginCmd.Flags().StringVar(&loginOpts.userScopes, "user-scopes", "", "comma-separated user scopes")
	oauthLoginCmd.Flags().StringVar(&loginOpts.team, "team", "", "preselect a workspace")

	oauthCmd.AddCommand(oauthLoginCmd)
	openidCmd.AddCommand(openidLoginCmd)
}

func splitScopes(raw string) []string {
	var scopes []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

// browserCode sends the user to the URL built by authURL and waits for the
// redirect. It returns the code and the redirect URI it was issued for.
func browserCode(cmd *cobra.Command, authURL func(redirectURI, state string) string) (string, string, error) {
	state := oauthflow.NewState()
	srv := oauthflow.NewCallbackServer(loginOpts.port, state)
	if err := srv.Start(); err != nil {
		return "", "", err
	}
	defer func() { _ = srv.Stop() }()

	redirect := srv.RedirectURI()
	u := authURL(redirect, state)

	cmd.Printf("Open this URL to continue:\n\n  %s\n\n", u)
	if !loginOpts.noBrowser {
		if err := oauthflow.OpenBrowser(u); err != nil {
			logger.Warn("open browser: %v", err)
		}
	}
	cmd.Println(muted("Waiting for Slack to redirect back..."))

	code, err := srv.WaitForCode(cmd.Context(), loginOpts.wait)
	if err != nil {
		return "", "", err
	}
	return code, redirect, nil
}

func runOAuthLogin(cmd *cobra.Command, _ []string) error {
	client, s, err := newBasicClient()
	if err != nil {
		return err
	}
	creds, err := credentials(s)
	if err != nil {
		return err
	}

	code, redirect, err := browserCode(cmd, func(redirectURI, state string) string {
		return slack.AuthCodeURL(creds.ClientID, slack.AuthorizeOptions{
			Scopes:      splitScopes(loginOpts.scopes),
			UserScopes:  splitScopes(loginOpts.userScopes),
			RedirectURI: redirectURI,
			State:       state,
			Team:        slack.TeamID(loginOpts.team),
		})
	})
	if err != nil {
		return err
	}

	access, err := client.ExchangeCode(cmd.Context(), creds, code, redirect)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	return reportAccess(cmd, access)
}

func runOpenIDLogin(cmd *cobra.Command, _ []string) error {
	client, s, err := newBasicClient()
	if err != nil {
		return err
	}
	creds, err := credentials(s)
	if err != nil {
		return err
	}

	code, redirect, err := browserCode(cmd, func(redirectURI, state string) string {
		return slack.OpenIDAuthCodeURL(creds.ClientID, redirectURI, state, "")
	})
	if err != nil {
		return err
	}

	tok, err := client.OpenIDToken(cmd.Context(), creds, code, redirect)
	if err != nil {
		return fmt.Errorf("openid token: %w", err)
	}
	return reportOpenID(cmd, tok)
}
