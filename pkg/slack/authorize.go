package slack

import (
	"strings"

	"golang.org/x/oauth2"
)

// Authorization pages users are sent to before ExchangeCode and OpenIDToken.
const (
	AuthorizeEndpoint       = "https://slack.com/oauth/v2/authorize"
	OpenIDAuthorizeEndpoint = "https://slack.com/openid/connect/authorize"
)

// AuthorizeOptions describes an install request.
type AuthorizeOptions struct {
	// Scopes are bot scopes; UserScopes are requested for the installing user.
	Scopes     []string
	UserScopes []string
	// RedirectURI must match one configured for the app. Empty uses the
	// app's default.
	RedirectURI string
	State       string
	// Team preselects a workspace.
	Team TeamID
}

// AuthCodeURL builds the URL that starts an OAuth v2 install. Slack expects
// comma-separated scopes.
func AuthCodeURL(clientID string, opts AuthorizeOptions) string {
	cfg := oauth2.Config{
		ClientID:    clientID,
		Endpoint:    oauth2.Endpoint{AuthURL: AuthorizeEndpoint},
		RedirectURL: opts.RedirectURI,
	}

	var params []oauth2.AuthCodeOption
	if len(opts.Scopes) > 0 {
		params = append(params, oauth2.SetAuthURLParam("scope", strings.Join(opts.Scopes, ",")))
	}
	if len(opts.UserScopes) > 0 {
		params = append(params, oauth2.SetAuthURLParam("user_scope", strings.Join(opts.UserScopes, ",")))
	}
	if opts.Team != "" {
		params = append(params, oauth2.SetAuthURLParam("team", string(opts.Team)))
	}
	return cfg.AuthCodeURL(opts.State, params...)
}

// OpenIDScopes are requested by OpenIDAuthCodeURL.
var OpenIDScopes = []string{"openid", "profile", "email"}

// OpenIDAuthCodeURL builds the Sign in with Slack URL. nonce is optional and
// comes back in the id_token.
func OpenIDAuthCodeURL(clientID, redirectURI, state, nonce string) string {
	cfg := oauth2.Config{
		ClientID:    clientID,
		Endpoint:    oauth2.Endpoint{AuthURL: OpenIDAuthorizeEndpoint},
		RedirectURL: redirectURI,
		Scopes:      OpenIDScopes,
	}

	var params []oauth2.AuthCodeOption
	if nonce != "" {
		params = append(params, oauth2.SetAuthURLParam("nonce", nonce))
	}
	return cfg.AuthCodeURL(state, params...)
}
