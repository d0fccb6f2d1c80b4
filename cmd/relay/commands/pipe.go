package commands

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vulntor/relay/cmd/relay/internal/format"
	"github.com/vulntor/relay/pkg/appctx"
	"github.com/vulntor/relay/pkg/core"
	"github.com/vulntor/relay/pkg/event"
	"github.com/vulntor/relay/pkg/logging"
	"github.com/vulntor/relay/pkg/output"
)

// eofTopic is published after the last input line. The sink mailbox is
// subscribed to it, so once it is handled every earlier event was handled too.
const eofTopic event.Topic = "relay.pipe.eof"

const defaultMaxLine = 1 << 20

type pipeOptions struct {
	topics      []string
	watchConfig bool
	maxLine     int
}

func newPipeCommand() *cobra.Command {
	opts := pipeOptions{}

	cmd := &cobra.Command{
		Use:     "pipe",
		Short:   "Route JSON-lines events from stdin to the console",
		GroupID: "route",
		Long: `Read one event per line from stdin, for example

  {"topic":"click","payload":{"x":1}}

and emit it on the router. A subscriber prints every event of the selected
topics. Without --topic every topic seen on input is printed. A line without
"payload" carries no data; "payload":null carries a nil payload.`,
		Example: `  printf '{"topic":"click","payload":{"x":1}}\n' | relay pipe --topic click
  relay pipe -o json < events.jsonl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipe(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.topics, "topic", "t", nil, "Topic to print (repeatable, default: all)")
	cmd.Flags().BoolVar(&opts.watchConfig, "watch-config", false, "Reload the config file on change")
	cmd.Flags().IntVar(&opts.maxLine, "max-line", defaultMaxLine, "Longest accepted input line in bytes")

	return cmd
}

func runPipe(cmd *cobra.Command, opts pipeOptions) error {
	ctx := cmd.Context()
	app, ok := appctx.App(ctx)
	if !ok {
		return core.ErrNotInitialized
	}
	if opts.maxLine < 1 {
		return usageError(fmt.Errorf("--max-line must be positive, got %d", opts.maxLine))
	}
	logger := logging.Component("pipe")

	if opts.watchConfig {
		mgr, _ := appctx.Config(ctx)
		if err := app.WatchConfig(mgr); err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
	}

	f := format.FromCommand(cmd)
	sink := output.StyledHandler(f.Out(), f.Color())
	if f.IsJSON() {
		sink = output.JSONLinesHandler(f.Out())
	}

	drained := make(chan struct{})
	handler := func(ctx context.Context, e event.Event) error {
		if e.Topic == eofTopic {
			close(drained)
			return nil
		}
		return sink(ctx, e)
	}

	topics := []event.Topic{eofTopic}
	for _, t := range opts.topics {
		topics = append(topics, event.Topic(t))
	}
	mb := output.Attach(app.Router, handler, topics...)
	defer mb.Close()

	follow := len(opts.topics) == 0
	seen := map[event.Topic]bool{eofTopic: true}

	var emitted, invalid int
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), opts.maxLine)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		e, err := parseLine(line)
		if err != nil {
			invalid++
			logger.Warn().Err(err).Int("line", lineNo).Msg("skipping input line")
			continue
		}

		if follow && !seen[e.Topic] {
			seen[e.Topic] = true
			app.Router.SubscribeMailbox(mb, e.Topic, handler)
		}
		if _, err := app.Emitter.EmitContext(ctx, e.Topic, e.Payload); err != nil {
			return fmt.Errorf("emit line %d: %w", lineNo, err)
		}
		emitted++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if _, err := app.Emitter.EmitContext(ctx, eofTopic, event.NoData); err != nil {
		return fmt.Errorf("flush subscribers: %w", err)
	}
	select {
	case <-drained:
	case <-ctx.Done():
		return ctx.Err()
	}

	logger.Debug().Int("emitted", emitted).Int("invalid", invalid).Msg("input exhausted")
	return f.PrintSummary(fmt.Sprintf("%d events emitted, %d invalid lines", emitted, invalid))
}

func parseLine(line []byte) (event.Event, error) {
	var rec output.Record
	if err := json.Unmarshal(line, &rec); err != nil {
		return event.Event{}, fmt.Errorf("decode event: %w", err)
	}
	switch {
	case rec.Topic == "":
		return event.Event{}, fmt.Errorf("missing topic")
	case rec.Topic == eofTopic:
		return event.Event{}, fmt.Errorf("topic %s is reserved", eofTopic)
	}
	return rec.Event()
}
