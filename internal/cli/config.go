package cli

import (
	"bufio"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/slackhttp/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage slackctl settings",
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings with secrets masked",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a setting; secrets are prompted for when value is omitted",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	s := config.Resolve(store)

	values := map[string]string{
		config.KeyBotToken:          config.Mask(s.BotToken),
		config.KeyUserToken:         config.Mask(s.UserToken),
		config.KeySigningSecret:     config.Mask(s.SigningSecret),
		config.KeyClientID:          s.ClientID,
		config.KeyClientSecret:      config.Mask(s.ClientSecret),
		config.KeyRedirectURI:       s.RedirectURI,
		config.KeyTeamID:            s.TeamID,
		config.KeyBaseURL:           s.BaseURL,
		config.KeyRequestsPerMinute: fmt.Sprint(s.RequestsPerMinute),
		config.KeyConversationTypes: strings.Join(s.ConversationTypes, ","),
		config.KeyWebhookAddr:       s.WebhookAddr,
		config.KeyLogLevel:          s.LogLevel,
	}

	cmd.Printf("Config file: %s\n\n", store.Path())
	rows := make([][]string, 0, len(config.Known))
	for _, k := range config.Known {
		source := ""
		if k.Env != "" {
			if v, ok := os.LookupEnv(k.Env); ok && v != "" {
				source = "$" + k.Env
			}
		}
		if source == "" && slices.Contains(store.Keys(), k.Name) {
			source = "file"
		}
		rows = append(rows, []string{k.Name, values[k.Name], source})
	}
	return writeTable(cmd.OutOrStdout(), []string{"KEY", "VALUE", "SOURCE"}, rows)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, ok := config.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown key %q", args[0])
	}

	var raw string
	switch {
	case len(args) == 2:
		raw = args[1]
	case key.Secret:
		cmd.Printf("%s: ", key.Name)
		raw = readPassword()
		cmd.Println()
	default:
		return fmt.Errorf("value required for %s", key.Name)
	}
	if raw == "" {
		return fmt.Errorf("empty value for %s", key.Name)
	}

	value, err := key.Parse(raw)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	if err := store.Set(key.Name, value); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	cmd.Printf("Set %s.\n", key.Name)
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	if _, ok := config.Lookup(args[0]); !ok {
		return fmt.Errorf("unknown key %q", args[0])
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	if err := store.Unset(args[0]); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	cmd.Printf("Unset %s.\n", args[0])
	return nil
}

// readPassword reads a secret without echo when stdin is a terminal.
func readPassword() string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
