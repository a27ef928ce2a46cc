package slack

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// User is a workspace member as returned by users.list.
type User struct {
	ID       UserID `json:"id"`
	TeamID   TeamID `json:"team_id"`
	Name     string `json:"name"`
	RealName string `json:"real_name,omitempty"`
	Deleted  bool   `json:"deleted"`

	IsBot             bool `json:"is_bot"`
	IsAppUser         bool `json:"is_app_user"`
	IsAdmin           bool `json:"is_admin"`
	IsOwner           bool `json:"is_owner"`
	IsRestricted      bool `json:"is_restricted"`
	IsUltraRestricted bool `json:"is_ultra_restricted"`

	TZ      string   `json:"tz,omitempty"`
	Locale  string   `json:"locale,omitempty"`
	Updated UnixTime `json:"updated"`
	Profile Profile  `json:"profile"`
}

// Profile holds the user-editable fields of a User.
type Profile struct {
	DisplayName string `json:"display_name"`
	RealName    string `json:"real_name"`
	Title       string `json:"title,omitempty"`
	Email       string `json:"email,omitempty"`
	Image24     string `json:"image_24,omitempty"`
	Image48     string `json:"image_48,omitempty"`
	Image72     string `json:"image_72,omitempty"`
	Image192    string `json:"image_192,omitempty"`
	Image512    string `json:"image_512,omitempty"`
}

// ActiveUser is a human, non-deleted member reduced to what a directory needs.
type ActiveUser struct {
	ID          UserID `json:"id"`
	TeamID      TeamID `json:"team_id"`
	DisplayName string `json:"display_name"`
	Picture     string `json:"picture,omitempty"`
}

// ToActiveUser projects u, failing for deleted members and bots. App users
// count as bots.
func ToActiveUser(u User) (ActiveUser, error) {
	if u.Deleted {
		return ActiveUser{}, ErrUserDeleted
	}
	if u.IsBot || u.IsAppUser {
		return ActiveUser{}, ErrUserIsBot
	}

	name := u.Profile.DisplayName
	if name == "" {
		name = u.Profile.RealName
	}
	if name == "" {
		name = u.RealName
	}
	if name == "" {
		name = u.Name
	}

	picture := u.Profile.Image192
	if picture == "" {
		picture = u.Profile.Image72
	}

	return ActiveUser{ID: u.ID, TeamID: u.TeamID, DisplayName: name, Picture: picture}, nil
}

// ActiveUsers keeps the users ToActiveUser accepts, in order.
func ActiveUsers(users []User) []ActiveUser {
	active := make([]ActiveUser, 0, len(users))
	for _, u := range users {
		if a, err := ToActiveUser(u); err == nil {
			active = append(active, a)
		}
	}
	return active
}

type listUsersResponse struct {
	Members          []User           `json:"members"`
	ResponseMetadata ResponseMetadata `json:"response_metadata"`
}

func (r listUsersResponse) complete() bool { return r.Members != nil }

// ListUsers returns one page of workspace members, including deleted ones and
// bots. An empty team lists the token's own workspace.
func (c *AuthClient) ListUsers(ctx context.Context, team TeamID, cursor Cursor, limit Limit) (Page[User], error) {
	q := url.Values{}
	if team != "" {
		q.Set("team_id", string(team))
	}
	q.Set("limit", strconv.Itoa(limit.Value()))
	q.Set("include_locale", "true")
	setCursor(q, cursor)

	resp, err := call[listUsersResponse](ctx, &c.t, request{method: "users.list", verb: http.MethodGet, query: q})
	if err != nil {
		return Page[User]{}, err
	}
	return NewPage(resp.Members, resp.ResponseMetadata.Cursor()), nil
}

// ListActiveUsers is ListUsers with the ActiveUsers filter applied. A page may
// hold fewer items than limit, or none, while more pages remain.
func (c *AuthClient) ListActiveUsers(ctx context.Context, team TeamID, cursor Cursor, limit Limit) (Page[ActiveUser], error) {
	page, err := c.ListUsers(ctx, team, cursor, limit)
	if err != nil {
		return Page[ActiveUser]{}, err
	}
	return NewPage(ActiveUsers(page.Items()), page.Next()), nil
}
