package whctl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/oremus-labs/webhook-receiver/internal/events"
	"github.com/oremus-labs/webhook-receiver/internal/redisx"
	"github.com/oremus-labs/webhook-receiver/internal/store"
	"github.com/spf13/cobra"
)

func newEventsCommand(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Work with received webhook events",
	}
	cmd.AddCommand(newEventsListCommand(s), newEventsSendCommand(s), newEventsWatchCommand(s))
	return cmd
}

func newEventsListCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored events, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := s.client().ListEvents(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if handled, err := writeOutput(out, s.output, list); handled {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(out, "No events received yet.")
				return nil
			}
			printEventTable(out, list)
			return nil
		},
	}
}

func newEventsSendCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "send [file|-]",
		Short: "POST a JSON payload from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			result, err := s.client().Send(cmd.Context(), payload)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if handled, err := writeOutput(out, s.output, result); handled {
				if err != nil {
					return err
				}
			} else if result.Success {
				fmt.Fprintln(out, "Payload accepted.")
			}
			if !result.Success {
				return fmt.Errorf("receiver rejected payload (HTTP %d): %s", result.StatusCode, result.Error)
			}
			return nil
		},
	}
}

func readPayload(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(args[0])
}

type watchOptions struct {
	redis   redisx.Config
	channel string
}

func newEventsWatchCommand(s *settings) *cobra.Command {
	opts := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream events published by the receiver over Redis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd.OutOrStdout(), s.output, opts)
		},
	}
	cmd.Flags().StringVar(&opts.redis.Addr, "redis-addr", os.Getenv("REDIS_ADDR"), "Redis address (env REDIS_ADDR)")
	cmd.Flags().StringVar(&opts.redis.Username, "redis-username", os.Getenv("REDIS_USERNAME"), "Redis username")
	cmd.Flags().StringVar(&opts.redis.Password, "redis-password", os.Getenv("REDIS_PASSWORD"), "Redis password")
	cmd.Flags().IntVar(&opts.redis.DB, "redis-db", 0, "Redis database")
	cmd.Flags().BoolVar(&opts.redis.TLSEnabled, "redis-tls", false, "Use TLS for Redis")
	cmd.Flags().BoolVar(&opts.redis.TLSInsecure, "redis-tls-insecure", false, "Skip Redis TLS certificate verification")
	cmd.Flags().StringVar(&opts.channel, "channel", events.DefaultChannel, "Redis pub/sub channel")
	return cmd
}

func runWatch(ctx context.Context, out io.Writer, format string, opts *watchOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !opts.redis.Enabled() {
		return errors.New("watch requires --redis-addr (or REDIS_ADDR)")
	}
	client, err := redisx.NewClient(ctx, opts.redis)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bus := events.NewBus(events.Options{
		Client:  client,
		Logger:  log.New(os.Stderr, "", log.LstdFlags),
		Channel: opts.channel,
	})
	ch, unsubscribe := bus.Subscribe(ctx)
	defer unsubscribe()

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- bus.Listen(ctx)
	}()

	fmt.Fprintf(os.Stderr, "Watching channel %q on %s (Ctrl+C to stop)\n", opts.channel, opts.redis.Addr)
	for {
		select {
		case evt, ok := <-ch:
			if !ok {
				return nil
			}
			if err := printBusEvent(out, format, evt); err != nil {
				return err
			}
		case err := <-listenErr:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}

func printBusEvent(out io.Writer, format string, evt events.Event) error {
	stored, err := storedEvent(evt)
	if err != nil {
		return err
	}
	if handled, err := writeOutput(out, format, stored); handled {
		return err
	}
	fmt.Fprintf(out, "%s  structured=%t  %s\n", formatMillis(stored.Timestamp), stored.Analysis.SuccessEvaluation, stored.Analysis.Summary)
	return nil
}

// storedEvent recovers the store.Event carried in a bus notification.
func storedEvent(evt events.Event) (store.Event, error) {
	data, err := json.Marshal(evt.Data)
	if err != nil {
		return store.Event{}, err
	}
	return store.DecodeEvent(data)
}
