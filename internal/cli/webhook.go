package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/custodia-labs/slackhttp/internal/logger"
	"github.com/custodia-labs/slackhttp/internal/receiver"
	"github.com/custodia-labs/slackhttp/pkg/slack"
)

var webhookAddr string

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Receive requests from Slack",
}

var webhookListenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Serve the Events API and slash command endpoints",
	Long: `Serve POST /slack/events and POST /slack/commands. Every request is
checked against the signing_secret setting; verified events are printed to
stdout as JSON lines. GET /healthz and GET /metrics are served as well.`,
	Args: cobra.NoArgs,
	RunE: runWebhookListen,
}

func init() {
	webhookListenCmd.Flags().StringVar(&webhookAddr, "addr", "", "listen address (default: webhook.addr setting)")

	webhookCmd.AddCommand(webhookListenCmd)
	rootCmd.AddCommand(webhookCmd)
}

func runWebhookListen(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	if s.SigningSecret == "" {
		return errors.New("no signing secret configured: run 'slackctl config set signing_secret'")
	}

	addr := webhookAddr
	if addr == "" {
		addr = s.WebhookAddr
	}

	level := s.LogLevel
	if logger.IsVerbose() {
		level = "debug"
	}
	log := logger.New(os.Stderr, level)
	defer func() { _ = log.Sync() }()

	srv := receiver.New(slack.NewVerifier([]byte(s.SigningSecret)), log, receiver.NewMetrics(), eventPrinter(cmd, log))

	if err := srv.ListenAndServe(cmd.Context(), addr); err != nil {
		return fmt.Errorf("webhook receiver: %w", err)
	}
	return nil
}

// eventPrinter writes each verified event as one JSON line.
func eventPrinter(cmd *cobra.Command, log *zap.Logger) receiver.Sink {
	var mu sync.Mutex
	enc := json.NewEncoder(cmd.OutOrStdout())
	return func(_ context.Context, ev receiver.Event) {
		mu.Lock()
		defer mu.Unlock()
		if err := enc.Encode(ev); err != nil {
			log.Warn("write event", zap.Error(err))
		}
	}
}
