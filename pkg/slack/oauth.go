package slack

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

// OAuthCredentials identify the app in token exchanges.
type OAuthCredentials struct {
	ClientID     string
	ClientSecret string
}

func (c OAuthCredentials) encode(method string, form url.Values) error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return malformed(method, "client id and secret are required")
	}
	form.Set("client_id", c.ClientID)
	form.Set("client_secret", c.ClientSecret)
	return nil
}

// OAuthTeam names the workspace or org an install belongs to.
type OAuthTeam struct {
	ID   TeamID `json:"id"`
	Name string `json:"name,omitempty"`
}

// AuthedUser is the installing user's part of an oauth.v2.access reply.
type AuthedUser struct {
	ID           UserID `json:"id"`
	Scope        string `json:"scope,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

// Access is the result of exchanging an authorization code.
type Access struct {
	AppID               AppID      `json:"app_id"`
	AuthedUser          AuthedUser `json:"authed_user"`
	Scope               string     `json:"scope"`
	TokenType           string     `json:"token_type"`
	AccessToken         string     `json:"access_token"`
	BotUserID           UserID     `json:"bot_user_id,omitempty"`
	RefreshToken        string     `json:"refresh_token,omitempty"`
	ExpiresIn           int        `json:"expires_in,omitempty"`
	Team                OAuthTeam  `json:"team"`
	Enterprise          *OAuthTeam `json:"enterprise"`
	IsEnterpriseInstall bool       `json:"is_enterprise_install"`

	// Expiry is computed from ExpiresIn when the token rotates.
	Expiry time.Time `json:"-"`
}

func (a Access) complete() bool {
	return a.AccessToken != "" || a.AuthedUser.AccessToken != ""
}

// Token returns the bot token as an oauth2.Token.
func (a *Access) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  a.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: a.RefreshToken,
		Expiry:       a.Expiry,
	}
}

// RefreshedAccess is the result of rotating a token.
type RefreshedAccess struct {
	AppID        AppID     `json:"app_id,omitempty"`
	Scope        string    `json:"scope"`
	TokenType    string    `json:"token_type"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int       `json:"expires_in"`
	BotUserID    UserID    `json:"bot_user_id,omitempty"`
	Team         OAuthTeam `json:"team"`
	Expiry       time.Time `json:"-"`
}

func (a RefreshedAccess) complete() bool { return a.AccessToken != "" }

// Token returns the rotated token as an oauth2.Token.
func (a *RefreshedAccess) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  a.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: a.RefreshToken,
		Expiry:       a.Expiry,
	}
}

// ExchangeCode trades the code from the OAuth redirect for tokens. redirectURI
// must match the one used to authorize, or be empty if none was.
func (c *BasicClient) ExchangeCode(ctx context.Context, creds OAuthCredentials, code, redirectURI string) (*Access, error) {
	const method = "oauth.v2.access"

	form, err := codeForm(method, creds, code, redirectURI)
	if err != nil {
		return nil, err
	}

	access, err := call[Access](ctx, &c.t, request{method: method, verb: http.MethodPost, form: form})
	if err != nil {
		return nil, err
	}
	access.Expiry = expiry(access.ExpiresIn)
	return &access, nil
}

// RefreshAccess rotates a token for apps with token rotation enabled.
func (c *BasicClient) RefreshAccess(ctx context.Context, creds OAuthCredentials, refreshToken string) (*RefreshedAccess, error) {
	const method = "oauth.v2.access"

	if refreshToken == "" {
		return nil, malformed(method, "refresh token is required")
	}
	form := url.Values{}
	if err := creds.encode(method, form); err != nil {
		return nil, err
	}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	access, err := call[RefreshedAccess](ctx, &c.t, request{method: method, verb: http.MethodPost, form: form})
	if err != nil {
		return nil, err
	}
	access.Expiry = expiry(access.ExpiresIn)
	return &access, nil
}

func codeForm(method string, creds OAuthCredentials, code, redirectURI string) (url.Values, error) {
	if code == "" {
		return nil, malformed(method, "code is required")
	}
	form := url.Values{}
	if err := creds.encode(method, form); err != nil {
		return nil, err
	}
	form.Set("code", code)
	if redirectURI != "" {
		u, err := absoluteURL(method, "redirect_uri", redirectURI)
		if err != nil {
			return nil, err
		}
		form.Set("redirect_uri", u)
	}
	return form, nil
}

func expiry(expiresIn int) time.Time {
	if expiresIn <= 0 {
		return time.Time{}
	}
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}
