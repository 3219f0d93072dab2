// Package whctl implements the command line client for the webhook receiver.
package whctl

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// settings are the persistent flags shared by every command.
type settings struct {
	server  string
	path    string
	output  string
	timeout time.Duration
}

func (s *settings) client() *Client {
	return &Client{
		BaseURL: s.server,
		Path:    s.path,
		Timeout: s.timeout,
	}
}

// Execute runs the CLI.
func Execute(ctx context.Context) error {
	cmd := NewRootCommand()
	cmd.SilenceUsage = true
	return cmd.ExecuteContext(ctx)
}

// NewRootCommand builds the whctl command tree.
func NewRootCommand() *cobra.Command {
	s := &settings{}
	root := &cobra.Command{
		Use:   "whctl",
		Short: "Inspect and exercise the webhook receiver",
		Long: `whctl talks to a running webhook receiver: list stored events, send
test payloads, and watch new events as they are published.`,
	}

	defaultServer := os.Getenv("WHCTL_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	root.PersistentFlags().StringVar(&s.server, "server", defaultServer, "Receiver base URL (env WHCTL_SERVER)")
	root.PersistentFlags().StringVar(&s.path, "path", "/api/webhook", "Webhook endpoint path")
	root.PersistentFlags().StringVarP(&s.output, "output", "o", "table", "Output format: table|json|yaml")
	root.PersistentFlags().DurationVar(&s.timeout, "timeout", 15*time.Second, "HTTP request timeout")

	root.AddCommand(newEventsCommand(s))
	return root
}
