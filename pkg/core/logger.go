// pkg/core/logger.go
package core

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vulntor/relay/pkg/config"
	"github.com/vulntor/relay/pkg/logging"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// SetupLogger configures the global logger from cfg and returns the logger
// for the application core. The returned closer releases the log file, if
// one was opened.
//
// Text format writes through a zerolog.ConsoleWriter; json writes raw
// events. Output goes to cfg.File when set, otherwise to stderr.
func SetupLogger(cfg config.LogConfig, noColor bool) (zerolog.Logger, io.Closer, error) {
	var (
		out    io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f
		noColor = true
	}

	logging.SetLogWriter(getLogWriter(out, cfg.Format, noColor))
	if err := logging.ConfigureGlobalLogging(cfg.Level); err != nil {
		_ = closer.Close()
		return zerolog.Nop(), nil, err
	}
	return log.Logger.With().Str("component", "core").Logger(), closer, nil
}

func getLogWriter(out io.Writer, format string, noColor bool) io.Writer {
	if format == "json" {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}
}
