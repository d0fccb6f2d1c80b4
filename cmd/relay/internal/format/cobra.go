package format

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vulntor/relay/pkg/appctx"
)

// FromCommand builds a Formatter from the command's writers. Output mode
// and color come from the loaded configuration when the command context
// carries one, otherwise from the --output and --no-color flags.
func FromCommand(cmd *cobra.Command) Formatter {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	outputMode := ModeText
	color := true
	if mgr, ok := appctx.Config(cmd.Context()); ok {
		cfg := mgr.Get()
		outputMode = ParseMode(cfg.Output.Format)
		color = cfg.Output.Color
	} else {
		if flag := cmd.Flags().Lookup("output"); flag != nil {
			outputMode = ParseMode(flag.Value.String())
		}
		if flag := cmd.Flags().Lookup("no-color"); flag != nil {
			if val, err := strconv.ParseBool(flag.Value.String()); err == nil && val {
				color = false
			}
		}
	}

	quiet := false
	if flag := cmd.Flags().Lookup("quiet"); flag != nil {
		if val, err := strconv.ParseBool(flag.Value.String()); err == nil {
			quiet = val
		}
	}

	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return New(stdout, stderr, outputMode, quiet, color)
}
