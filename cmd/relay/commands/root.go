package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vulntor/relay/cmd/relay/internal/format"
	"github.com/vulntor/relay/pkg/appctx"
	"github.com/vulntor/relay/pkg/config"
	"github.com/vulntor/relay/pkg/core"
	"github.com/vulntor/relay/pkg/paths"
)

const cliExecutable = "relay"

// ErrUsage marks errors caused by invalid flags or arguments.
var ErrUsage = errors.New("usage error")

func usageError(err error) error {
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// ExitCode maps a command error to the process exit status: 2 for usage
// and configuration errors, 1 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrUsage), errors.Is(err, config.ErrInvalid):
		return 2
	default:
		return 1
	}
}

// NewCommand constructs the top-level relay CLI command, wiring global flags
// and the AppManager lifecycle.
func NewCommand() *cobra.Command {
	var (
		configFile string
		appManager *core.AppManager
		logCloser  io.Closer
	)

	// teardown runs after the command or when it fails; cobra skips
	// PersistentPostRunE when RunE returns an error.
	teardown := func() error {
		var err error
		if appManager != nil {
			err = appManager.Shutdown()
			appManager = nil
		}
		if logCloser != nil {
			_ = logCloser.Close()
			logCloser = nil
		}
		return err
	}

	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "relay routes events between in-process subscribers",
		Long: `relay is a topic-keyed publish/subscribe router. Every subscriber owns a
bounded mailbox drained by its own goroutine, so a slow subscriber never
delays the others.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if f := cmd.Flags().Lookup("output"); f != nil && f.Changed {
				if err := format.ValidateMode(f.Value.String()); err != nil {
					return usageError(err)
				}
				_ = f.Value.Set(string(format.ParseMode(f.Value.String())))
			}

			if configFile == "" {
				configFile = paths.DefaultConfigFile()
			}
			mgr := config.NewManager()
			if err := mgr.Load(cmd.Flags(), configFile); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg := mgr.Get()

			logger, closer, err := core.SetupLogger(cfg.Log, !cfg.Output.Color)
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}
			logCloser = closer

			appManager = core.NewAppManager(cfg, core.WithLogger(logger))
			if err := appManager.Start(); err != nil {
				_ = teardown()
				return fmt.Errorf("start application: %w", err)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = appctx.WithConfig(ctx, mgr)
			ctx = appctx.WithApp(ctx, appManager)

			cmd.SetContext(ctx)
			if root := cmd.Root(); root != nil && root != cmd {
				root.SetContext(ctx)
			}
			log.Debug().Str("config", mgr.Path()).Msg("relay ready")
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return teardown()
		},
	}

	cmd.SilenceUsage = true
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path (default $XDG_CONFIG_HOME/relay/config.yaml)")
	cmd.PersistentFlags().StringP("output", "o", "text", "Output format (text, json)")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress summary lines")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	config.BindFlags(cmd.PersistentFlags())

	cmd.AddGroup(&cobra.Group{ID: "route", Title: "Routing Commands"})
	cmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands"})

	cmd.AddCommand(newPipeCommand())
	cmd.AddCommand(newBenchCommand())
	cmd.AddCommand(newConfigCommand())
	cmd.AddCommand(newVersionCommand())

	tearDownOnError(cmd, teardown)

	return cmd
}

// tearDownOnError wraps the RunE of cmd and its descendants so teardown
// also runs when the command fails.
func tearDownOnError(cmd *cobra.Command, teardown func() error) {
	for _, sub := range cmd.Commands() {
		tearDownOnError(sub, teardown)
	}
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(c *cobra.Command, args []string) error {
		err := run(c, args)
		if err != nil {
			if terr := teardown(); terr != nil {
				log.Warn().Err(terr).Msg("shutdown after failed command")
			}
		}
		return err
	}
}
