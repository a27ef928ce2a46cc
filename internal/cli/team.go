package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/slackhttp/pkg/slack"
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Workspace information",
}

var teamInfoCmd = &cobra.Command{
	Use:   "info [team-id]",
	Short: "Show a workspace; defaults to the token's own",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTeamInfo,
}

func init() {
	teamCmd.AddCommand(teamInfoCmd)
	rootCmd.AddCommand(teamCmd)
}

func runTeamInfo(cmd *cobra.Command, args []string) error {
	client, _, err := newAuthClient()
	if err != nil {
		return err
	}

	var id slack.TeamID
	if len(args) > 0 {
		id = slack.TeamID(args[0])
	}

	team, err := client.TeamInfo(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("team info: %w", err)
	}

	cmd.Printf("ID:     %s\n", team.ID)
	cmd.Printf("Name:   %s\n", team.Name)
	cmd.Printf("Domain: %s\n", team.Domain)
	if team.EmailDomain != "" {
		cmd.Printf("Email:  %s\n", team.EmailDomain)
	}
	if team.EnterpriseID != "" {
		cmd.Printf("Org:    %s (%s)\n", team.EnterpriseName, team.EnterpriseID)
	}
	return nil
}
