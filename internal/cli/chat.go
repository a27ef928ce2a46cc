package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/slackhttp/pkg/slack"
)

var chatOpts struct {
	username  string
	iconEmoji string
	iconURL   string
	threadTS  string
	broadcast bool
	noLinks   bool
	noMrkdwn  bool
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Post messages",
}

var chatPostCmd = &cobra.Command{
	Use:   "post <channel> <text>",
	Short: "Post a message to a conversation",
	Args:  cobra.ExactArgs(2),
	RunE:  runChatPost,
}

var chatEphemeralCmd = &cobra.Command{
	Use:   "ephemeral <channel> <user> <text>",
	Short: "Post a message only one user can see",
	Args:  cobra.ExactArgs(3),
	RunE:  runChatEphemeral,
}

func init() {
	for _, cmd := range []*cobra.Command{chatPostCmd, chatEphemeralCmd} {
		cmd.Flags().StringVar(&chatOpts.username, "username", "", "override the bot name")
		cmd.Flags().StringVar(&chatOpts.iconEmoji, "icon-emoji", "", "override the bot icon with an emoji")
		cmd.Flags().StringVar(&chatOpts.iconURL, "icon-url", "", "override the bot icon with an image URL")
		cmd.Flags().StringVar(&chatOpts.threadTS, "thread-ts", "", "reply in this thread")
		cmd.Flags().BoolVar(&chatOpts.noLinks, "no-link-names", false, "do not link @names and #channels")
		cmd.Flags().BoolVar(&chatOpts.noMrkdwn, "no-mrkdwn", false, "send text without markdown")
	}
	chatPostCmd.Flags().BoolVar(&chatOpts.broadcast, "broadcast", false, "also show a thread reply in the channel")

	chatCmd.AddCommand(chatPostCmd)
	chatCmd.AddCommand(chatEphemeralCmd)
	rootCmd.AddCommand(chatCmd)
}

func messageOptions() slack.MessageOptions {
	return slack.MessageOptions{
		IconEmoji:        chatOpts.iconEmoji,
		IconURL:          chatOpts.iconURL,
		Username:         chatOpts.username,
		ThreadTS:         slack.Timestamp(chatOpts.threadTS),
		ReplyBroadcast:   chatOpts.broadcast,
		DisableLinkNames: chatOpts.noLinks,
		DisableMarkdown:  chatOpts.noMrkdwn,
	}
}

func runChatPost(cmd *cobra.Command, args []string) error {
	client, _, err := newAuthClient()
	if err != nil {
		return err
	}

	msg, err := client.PostMessage(cmd.Context(), slack.ConversationID(args[0]), args[1], messageOptions())
	if err != nil {
		return fmt.Errorf("post message: %w", err)
	}

	cmd.Printf("Posted to %s at %s\n", msg.Channel, msg.TS)
	return nil
}

func runChatEphemeral(cmd *cobra.Command, args []string) error {
	client, _, err := newAuthClient()
	if err != nil {
		return err
	}

	ts, err := client.PostEphemeral(cmd.Context(), slack.ConversationID(args[0]), slack.UserID(args[1]), args[2], messageOptions())
	if err != nil {
		return fmt.Errorf("post ephemeral: %w", err)
	}

	cmd.Printf("Posted ephemeral message at %s\n", ts)
	return nil
}
