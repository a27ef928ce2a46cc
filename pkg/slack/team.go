package slack

import (
	"context"
	"net/http"
	"net/url"
)

// Team is a workspace.
type Team struct {
	ID             TeamID   `json:"id"`
	Name           string   `json:"name"`
	Domain         string   `json:"domain"`
	EmailDomain    string   `json:"email_domain,omitempty"`
	URL            string   `json:"url,omitempty"`
	Icon           TeamIcon `json:"icon"`
	EnterpriseID   string   `json:"enterprise_id,omitempty"`
	EnterpriseName string   `json:"enterprise_name,omitempty"`
}

// TeamIcon holds the workspace icon in several sizes.
type TeamIcon struct {
	Image34      string `json:"image_34,omitempty"`
	Image44      string `json:"image_44,omitempty"`
	Image68      string `json:"image_68,omitempty"`
	Image88      string `json:"image_88,omitempty"`
	Image102     string `json:"image_102,omitempty"`
	Image132     string `json:"image_132,omitempty"`
	Image230     string `json:"image_230,omitempty"`
	ImageDefault bool   `json:"image_default"`
}

type teamInfoResponse struct {
	Team *Team `json:"team"`
}

func (r teamInfoResponse) complete() bool { return r.Team != nil && r.Team.ID != "" }

// TeamInfo looks up a workspace. An empty team means the token's own.
func (c *AuthClient) TeamInfo(ctx context.Context, team TeamID) (*Team, error) {
	q := url.Values{}
	if team != "" {
		q.Set("team", string(team))
	}

	resp, err := call[teamInfoResponse](ctx, &c.t, request{method: "team.info", verb: http.MethodGet, query: q})
	if err != nil {
		return nil, err
	}
	return resp.Team, nil
}
