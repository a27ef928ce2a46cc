package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/slackhttp/pkg/slack"
)

var (
	usersPage   pageFlags
	usersActive bool
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List workspace members",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Long: `List workspace members. With --active, deleted users, bots and app users
are dropped, so a page may show fewer rows than --limit.`,
	Args: cobra.NoArgs,
	RunE: runUsersList,
}

func init() {
	usersPage.register(usersListCmd)
	usersListCmd.Flags().BoolVar(&usersActive, "active", false, "only active human users")

	usersCmd.AddCommand(usersListCmd)
	rootCmd.AddCommand(usersCmd)
}

func runUsersList(cmd *cobra.Command, _ []string) error {
	client, s, err := newAuthClient()
	if err != nil {
		return err
	}

	limit, err := usersPage.pageLimit()
	if err != nil {
		return err
	}

	team := slack.TeamID(s.TeamID)
	p := newPager(s.RequestsPerMinute, usersPage.all)
	start := slack.NewCursor(usersPage.cursor)

	if usersActive {
		active, next, err := collect(cmd.Context(), p, start,
			func(ctx context.Context, c slack.Cursor) (slack.Page[slack.ActiveUser], error) {
				return client.ListActiveUsers(ctx, team, c, limit)
			})
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}

		rows := make([][]string, 0, len(active))
		for _, u := range active {
			rows = append(rows, []string{string(u.ID), u.DisplayName, u.Picture})
		}
		if err := writeTable(cmd.OutOrStdout(), []string{"ID", "DISPLAY NAME", "PICTURE"}, rows); err != nil {
			return err
		}
		printNext(cmd, next)
		return nil
	}

	users, next, err := collect(cmd.Context(), p, start,
		func(ctx context.Context, c slack.Cursor) (slack.Page[slack.User], error) {
			return client.ListUsers(ctx, team, c, limit)
		})
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			string(u.ID),
			u.Name,
			u.RealName,
			strconv.FormatBool(u.IsBot || u.IsAppUser),
			strconv.FormatBool(u.Deleted),
		})
	}
	if err := writeTable(cmd.OutOrStdout(), []string{"ID", "NAME", "REAL NAME", "BOT", "DELETED"}, rows); err != nil {
		return err
	}
	printNext(cmd, next)
	return nil
}
