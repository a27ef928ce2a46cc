package slack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// ErrNoIDToken is returned by IDTokenClaims when the reply had no id_token.
var ErrNoIDToken = errors.New("slack: no id_token in reply")

// OpenIDToken is the result of Sign in with Slack.
type OpenIDToken struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresIn    int       `json:"expires_in,omitempty"`
	Expiry       time.Time `json:"-"`
}

func (t OpenIDToken) complete() bool { return t.AccessToken != "" }

// Token returns the user token as an oauth2.Token.
func (t *OpenIDToken) Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry,
	}
	return tok.WithExtra(map[string]any{"id_token": t.IDToken})
}

// IDTokenClaims are the claims Slack puts in an OpenID Connect id_token.
type IDTokenClaims struct {
	jwt.RegisteredClaims

	UserID        UserID `json:"https://slack.com/user_id"`
	TeamID        TeamID `json:"https://slack.com/team_id"`
	TeamName      string `json:"https://slack.com/team_name,omitempty"`
	TeamDomain    string `json:"https://slack.com/team_domain,omitempty"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
	GivenName     string `json:"given_name,omitempty"`
	FamilyName    string `json:"family_name,omitempty"`
	Locale        string `json:"locale,omitempty"`
}

// IDTokenClaims decodes the id_token payload. The signature is not checked:
// the token came straight from Slack's token endpoint over TLS.
func (t *OpenIDToken) IDTokenClaims() (*IDTokenClaims, error) {
	if t.IDToken == "" {
		return nil, ErrNoIDToken
	}
	claims := &IDTokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(t.IDToken, claims); err != nil {
		return nil, fmt.Errorf("parse id_token: %w", err)
	}
	return claims, nil
}

// OpenIDToken exchanges a Sign in with Slack code for a user token.
func (c *BasicClient) OpenIDToken(ctx context.Context, creds OAuthCredentials, code, redirectURI string) (*OpenIDToken, error) {
	const method = "openid.connect.token"

	form, err := codeForm(method, creds, code, redirectURI)
	if err != nil {
		return nil, err
	}

	tok, err := call[OpenIDToken](ctx, &c.t, request{method: method, verb: http.MethodPost, form: form})
	if err != nil {
		return nil, err
	}
	tok.Expiry = expiry(tok.ExpiresIn)
	return &tok, nil
}

// UserInfo is the signed-in user's identity.
type UserInfo struct {
	Sub           string `json:"sub"`
	UserID        UserID `json:"https://slack.com/user_id"`
	TeamID        TeamID `json:"https://slack.com/team_id"`
	TeamName      string `json:"https://slack.com/team_name,omitempty"`
	TeamDomain    string `json:"https://slack.com/team_domain,omitempty"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
	GivenName     string `json:"given_name,omitempty"`
	FamilyName    string `json:"family_name,omitempty"`
	Locale        string `json:"locale,omitempty"`
}

func (u UserInfo) complete() bool { return u.UserID != "" && u.TeamID != "" }

// OpenIDUserInfo returns the identity behind the client's user token.
func (c *AuthClient) OpenIDUserInfo(ctx context.Context) (*UserInfo, error) {
	info, err := call[UserInfo](ctx, &c.t, request{method: "openid.connect.userInfo", verb: http.MethodGet})
	if err != nil {
		return nil, err
	}
	return &info, nil
}
