// pkg/logging/logging.go
package logging

import (
	"io"
	stdLog "log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	writerMu sync.RWMutex
	// logWriter is the sink for the global logger
	logWriter io.Writer = zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
)

// stdLogWriter forwards output of the standard library logger into zerolog.
type stdLogWriter struct {
	logger zerolog.Logger
}

func (w *stdLogWriter) Write(p []byte) (int, error) {
	msg := strings.TrimSpace(string(p))
	if msg != "" {
		w.logger.Debug().Str("source", "stdlog").Msg(msg)
	}
	return len(p), nil
}

// ConfigureGlobalLogging sets the global level and rebuilds the global
// logger from a level name such as "debug" or "warn". An empty name means
// "error". Unknown names fall back to "error" and are reported.
func ConfigureGlobalLogging(levelStr string) error {
	level := ParseLevel(levelStr)
	ConfigureGlobal(level)
	return nil
}

// ConfigureGlobal sets the global level and rebuilds log.Logger on the
// current writer. Caller information is added at debug level and below.
func ConfigureGlobal(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)

	logCtx := zerolog.New(getLogWriter()).With().Timestamp()
	if level <= zerolog.DebugLevel {
		logCtx = logCtx.Caller()
	}
	log.Logger = logCtx.Logger().Level(level)
	zerolog.DefaultContextLogger = &log.Logger

	stdLog.SetFlags(0)
	stdLog.SetOutput(&stdLogWriter{logger: WithLevelOverride(log.Logger, zerolog.DebugLevel)})
}

// ParseLevel converts a level name to a zerolog.Level.
func ParseLevel(levelStr string) zerolog.Level {
	if levelStr == "" {
		return zerolog.ErrorLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(levelStr))
	if err != nil || level == zerolog.NoLevel {
		log.Error().Err(err).
			Str("logLevel", levelStr).
			Msg("Invalid log level provided. Defaulting to error level.")
		return zerolog.ErrorLevel
	}
	return level
}

func getLogWriter() io.Writer {
	writerMu.RLock()
	defer writerMu.RUnlock()
	return logWriter
}

// SetLogWriter replaces the sink used by the next ConfigureGlobal call.
func SetLogWriter(w io.Writer) {
	writerMu.Lock()
	logWriter = w
	writerMu.Unlock()
}

// NewLogger returns a logger for component writing JSON to stderr.
func NewLogger(component string, level zerolog.Level) zerolog.Logger {
	return NewLoggerWithWriter(component, level, os.Stderr)
}

// NewLoggerWithWriter returns a JSON logger for component writing to w.
func NewLoggerWithWriter(component string, level zerolog.Level, w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

// Component derives a child of the global logger tagged with component.
func Component(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

// LevelOverrideHook assigns a level to events logged without one.
type LevelOverrideHook struct {
	minSeverity zerolog.Level
	targetLevel zerolog.Level
}

// NewLevelOverrideHook creates a hook that discards events when minSeverity
// is above targetLevel and labels NoLevel events with targetLevel.
func NewLevelOverrideHook(minSeverity, targetLevel zerolog.Level) *LevelOverrideHook {
	return &LevelOverrideHook{minSeverity: minSeverity, targetLevel: targetLevel}
}

// Run implements zerolog.Hook.
func (h LevelOverrideHook) Run(e *zerolog.Event, currentLevel zerolog.Level, _ string) {
	if h.minSeverity > h.targetLevel {
		e.Discard()
		return
	}
	if currentLevel == zerolog.NoLevel {
		e.Str("level", h.targetLevel.String())
	}
}

// WithLevelOverride attaches a LevelOverrideHook to logger.
func WithLevelOverride(logger zerolog.Logger, targetLevel zerolog.Level) zerolog.Logger {
	return logger.Hook(NewLevelOverrideHook(logger.GetLevel(), targetLevel))
}
