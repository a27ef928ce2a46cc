package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/slackhttp/pkg/slack"
)

var (
	conversationsListPage    pageFlags
	conversationsMembersPage pageFlags
	conversationsTypes       string
	conversationsNoArchived  bool
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "List and manage channels, DMs and group DMs",
}

var conversationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations",
	Long: `List conversations visible to the token.

--types takes a comma-separated subset of public_channel, private_channel,
mpim and im. Without it the conversation_types setting is used, falling
back to public channels only.`,
	Args: cobra.NoArgs,
	RunE: runConversationsList,
}

var conversationsMembersCmd = &cobra.Command{
	Use:   "members <channel>",
	Short: "List a conversation's member IDs",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsMembers,
}

var conversationsOpenCmd = &cobra.Command{
	Use:   "open <user>...",
	Short: "Open a DM with one user or a group DM with several",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runConversationsOpen,
}

var conversationsInviteCmd = &cobra.Command{
	Use:   "invite <channel> <user>...",
	Short: "Invite users to a channel",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runConversationsInvite,
}

var conversationsKickCmd = &cobra.Command{
	Use:   "kick <channel> <user>",
	Short: "Remove a user from a channel",
	Args:  cobra.ExactArgs(2),
	RunE:  runConversationsKick,
}

func init() {
	conversationsListPage.register(conversationsListCmd)
	conversationsListCmd.Flags().StringVar(&conversationsTypes, "types", "", "comma-separated conversation types")
	conversationsListCmd.Flags().BoolVar(&conversationsNoArchived, "exclude-archived", false, "skip archived channels")
	conversationsMembersPage.register(conversationsMembersCmd)

	conversationsCmd.AddCommand(conversationsListCmd)
	conversationsCmd.AddCommand(conversationsMembersCmd)
	conversationsCmd.AddCommand(conversationsOpenCmd)
	conversationsCmd.AddCommand(conversationsInviteCmd)
	conversationsCmd.AddCommand(conversationsKickCmd)
	rootCmd.AddCommand(conversationsCmd)
}

func parseConversationTypes(raw []string) ([]slack.ConversationType, error) {
	known := map[slack.ConversationType]bool{
		slack.PublicChannel:  true,
		slack.PrivateChannel: true,
		slack.MultiPartyIM:   true,
		slack.DirectMessage:  true,
	}

	var types []slack.ConversationType
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		t := slack.ConversationType(item)
		if !known[t] {
			return nil, fmt.Errorf("unknown conversation type %q", item)
		}
		types = append(types, t)
	}
	return types, nil
}

func runConversationsList(cmd *cobra.Command, _ []string) error {
	client, s, err := newAuthClient()
	if err != nil {
		return err
	}

	limit, err := conversationsListPage.pageLimit()
	if err != nil {
		return err
	}

	rawTypes := s.ConversationTypes
	if conversationsTypes != "" {
		rawTypes = strings.Split(conversationsTypes, ",")
	}
	types, err := parseConversationTypes(rawTypes)
	if err != nil {
		return err
	}

	opts := slack.ListConversationsOptions{
		Limit:           limit,
		TeamID:          slack.TeamID(s.TeamID),
		ExcludeArchived: conversationsNoArchived,
		Types:           types,
	}

	p := newPager(s.RequestsPerMinute, conversationsListPage.all)
	convs, next, err := collect(cmd.Context(), p, slack.NewCursor(conversationsListPage.cursor),
		func(ctx context.Context, c slack.Cursor) (slack.Page[slack.Conversation], error) {
			return client.ListConversations(ctx, c, opts)
		})
	if err != nil {
		return fmt.Errorf("list conversations: %w", err)
	}

	rows := make([][]string, 0, len(convs))
	for _, c := range convs {
		name := c.Name
		if c.IsIM {
			name = "@" + string(c.User)
		}
		rows = append(rows, []string{
			string(c.ID),
			name,
			string(c.Type()),
			strconv.Itoa(c.NumMembers),
			strconv.FormatBool(c.IsArchived),
		})
	}
	if err := writeTable(cmd.OutOrStdout(), []string{"ID", "NAME", "TYPE", "MEMBERS", "ARCHIVED"}, rows); err != nil {
		return err
	}
	printNext(cmd, next)
	return nil
}

func runConversationsMembers(cmd *cobra.Command, args []string) error {
	client, s, err := newAuthClient()
	if err != nil {
		return err
	}

	limit, err := conversationsMembersPage.pageLimit()
	if err != nil {
		return err
	}

	channel := slack.ConversationID(args[0])
	p := newPager(s.RequestsPerMinute, conversationsMembersPage.all)
	members, next, err := collect(cmd.Context(), p, slack.NewCursor(conversationsMembersPage.cursor),
		func(ctx context.Context, c slack.Cursor) (slack.Page[slack.UserID], error) {
			return client.ListMembers(ctx, channel, c, limit)
		})
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, id := range members {
		fmt.Fprintln(out, id)
	}
	printNext(cmd, next)
	return nil
}

func toUserIDs(args []string) []slack.UserID {
	ids := make([]slack.UserID, len(args))
	for i, a := range args {
		ids[i] = slack.UserID(a)
	}
	return ids
}

func runConversationsOpen(cmd *cobra.Command, args []string) error {
	client, _, err := newAuthClient()
	if err != nil {
		return err
	}

	id, err := client.OpenConversation(cmd.Context(), toUserIDs(args))
	if err != nil {
		return fmt.Errorf("open conversation: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

func runConversationsInvite(cmd *cobra.Command, args []string) error {
	client, _, err := newAuthClient()
	if err != nil {
		return err
	}

	conv, err := client.InviteToConversation(cmd.Context(), slack.ConversationID(args[0]), toUserIDs(args[1:]))
	if err != nil {
		return fmt.Errorf("invite: %w", err)
	}

	cmd.Printf("Invited %d user(s) to #%s (%s)\n", len(args)-1, conv.Name, conv.ID)
	return nil
}

func runConversationsKick(cmd *cobra.Command, args []string) error {
	client, _, err := newAuthClient()
	if err != nil {
		return err
	}

	if err := client.KickFromConversation(cmd.Context(), slack.ConversationID(args[0]), slack.UserID(args[1])); err != nil {
		return fmt.Errorf("kick: %w", err)
	}

	cmd.Printf("Removed %s from %s\n", args[1], args[0])
	return nil
}

// printNext tells the user how to fetch the following page.
func printNext(cmd *cobra.Command, next slack.Cursor) {
	if token, ok := next.Token(); ok {
		cmd.Println(muted("next cursor: " + token))
	}
}
