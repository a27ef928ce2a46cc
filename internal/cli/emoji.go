package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

var emojiCmd = &cobra.Command{
	Use:   "emoji",
	Short: "Custom emoji",
}

var emojiListCmd = &cobra.Command{
	Use:   "list",
	Short: "List custom emoji",
	Args:  cobra.NoArgs,
	RunE:  runEmojiList,
}

var emojiResolveCmd = &cobra.Command{
	Use:   "resolve <name>",
	Short: "Print the image URL behind an emoji, following aliases",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmojiResolve,
}

func init() {
	emojiCmd.AddCommand(emojiListCmd)
	emojiCmd.AddCommand(emojiResolveCmd)
	rootCmd.AddCommand(emojiCmd)
}

func runEmojiList(cmd *cobra.Command, _ []string) error {
	client, _, err := newAuthClient()
	if err != nil {
		return err
	}

	set, err := client.ListEmoji(cmd.Context())
	if err != nil {
		return fmt.Errorf("list emoji: %w", err)
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	slices.Sort(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{":" + name + ":", set[name]})
	}
	return writeTable(cmd.OutOrStdout(), []string{"NAME", "VALUE"}, rows)
}

func runEmojiResolve(cmd *cobra.Command, args []string) error {
	client, _, err := newAuthClient()
	if err != nil {
		return err
	}

	set, err := client.ListEmoji(cmd.Context())
	if err != nil {
		return fmt.Errorf("list emoji: %w", err)
	}

	url, ok := set.Resolve(args[0])
	if !ok {
		return fmt.Errorf("emoji %q is not a custom emoji", args[0])
	}
	fmt.Fprintln(cmd.OutOrStdout(), url)
	return nil
}
