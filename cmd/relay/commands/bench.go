package commands

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/vulntor/relay/cmd/relay/internal/format"
	"github.com/vulntor/relay/pkg/appctx"
	"github.com/vulntor/relay/pkg/config"
	"github.com/vulntor/relay/pkg/event"
	"github.com/vulntor/relay/pkg/logging"
)

type benchOptions struct {
	subscribers int
	events      int
	topics      int
	slow        time.Duration
}

type benchResult struct {
	Subscribers int           `json:"subscribers"`
	Events      int           `json:"events"`
	Topics      int           `json:"topics"`
	MailboxSize int           `json:"mailbox_size"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	Throughput  float64       `json:"deliveries_per_second"`
	Stats       event.Stats   `json:"stats"`
}

func newBenchCommand() *cobra.Command {
	opts := benchOptions{}

	cmd := &cobra.Command{
		Use:     "bench",
		Short:   "Measure fan-out throughput of the router",
		GroupID: "route",
		Long: `Subscribe N handlers spread over K topics, emit M events round-robin over
those topics and wait until every subscriber drained its mailbox. With --slow
each handler sleeps per event, which shows emitters blocking on full
mailboxes.`,
		Example: `  relay bench --subscribers 8 --events 100000 --topics 4
  relay bench --slow 1ms --mailbox-size 16 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBench(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.subscribers, "subscribers", 4, "Number of subscribers")
	cmd.Flags().IntVar(&opts.events, "events", 10000, "Number of events to emit")
	cmd.Flags().IntVar(&opts.topics, "topics", 1, "Number of topics")
	cmd.Flags().DurationVar(&opts.slow, "slow", 0, "Time each handler spends per event")

	return cmd
}

func (o benchOptions) validate() error {
	switch {
	case o.subscribers < 1:
		return fmt.Errorf("--subscribers must be at least 1, got %d", o.subscribers)
	case o.topics < 1:
		return fmt.Errorf("--topics must be at least 1, got %d", o.topics)
	case o.events < 0:
		return fmt.Errorf("--events must not be negative, got %d", o.events)
	case o.slow < 0:
		return fmt.Errorf("--slow must not be negative, got %s", o.slow)
	}
	return nil
}

func runBench(cmd *cobra.Command, opts benchOptions) error {
	if err := opts.validate(); err != nil {
		return usageError(err)
	}
	ctx := cmd.Context()

	cfg := config.DefaultConfig()
	if mgr, ok := appctx.Config(ctx); ok {
		cfg = mgr.Get()
	}
	logger := logging.Component("bench")

	r := event.NewRouter(
		event.WithLogger(logger),
		event.WithMailboxSize(cfg.Router.MailboxSize),
		event.WithBaseContext(ctx),
	)
	em := event.NewEmitter(r)

	var handled atomic.Uint64
	handler := func(ctx context.Context, _ event.Event) error {
		if opts.slow > 0 {
			t := time.NewTimer(opts.slow)
			defer t.Stop()
			select {
			case <-t.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		handled.Add(1)
		return nil
	}

	topics := make([]event.Topic, opts.topics)
	for i := range topics {
		topics[i] = event.Topic(fmt.Sprintf("bench.%d", i))
	}
	for i := 0; i < opts.subscribers; i++ {
		r.Subscribe(topics[i%len(topics)], handler)
	}

	logger.Debug().
		Int("subscribers", opts.subscribers).
		Int("events", opts.events).
		Int("topics", opts.topics).
		Msg("starting benchmark")

	start := time.Now()
	for i := 0; i < opts.events; i++ {
		if _, err := em.EmitContext(ctx, topics[i%len(topics)], i); err != nil {
			_ = r.Close(context.Background())
			return fmt.Errorf("emit event %d: %w", i, err)
		}
	}
	if err := r.Close(ctx); err != nil {
		return fmt.Errorf("drain subscribers: %w", err)
	}
	elapsed := time.Since(start)

	res := benchResult{
		Subscribers: opts.subscribers,
		Events:      opts.events,
		Topics:      opts.topics,
		MailboxSize: cfg.Router.MailboxSize,
		Elapsed:     elapsed,
		Stats:       r.Stats(),
	}
	if secs := elapsed.Seconds(); secs > 0 {
		res.Throughput = float64(handled.Load()) / secs
	}

	return printBench(format.FromCommand(cmd), res)
}

func printBench(f format.Formatter, res benchResult) error {
	if f.IsJSON() {
		return f.PrintJSON(res)
	}

	u := func(v uint64) string { return strconv.FormatUint(v, 10) }
	rows := [][]string{
		{"published", u(res.Stats.Published)},
		{"delivered", u(res.Stats.Delivered)},
		{"handled", u(res.Stats.Handled)},
		{"dropped", u(res.Stats.Dropped)},
		{"handler errors", u(res.Stats.HandlerErrors)},
		{"panics", u(res.Stats.Panics)},
		{"mailbox size", strconv.Itoa(res.MailboxSize)},
	}
	if err := f.PrintTable([]string{"Metric", "Value"}, rows); err != nil {
		return err
	}
	return f.PrintSummary(fmt.Sprintf("%d deliveries in %s (%.0f/s)",
		res.Stats.Handled, res.Elapsed.Round(time.Millisecond), res.Throughput))
}
