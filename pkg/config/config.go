// pkg/config/config.go
package config

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Manager loads the layered configuration and holds the current value.
type Manager struct {
	mu      sync.RWMutex
	k       *koanf.Koanf
	current Config
	sources []ConfigSource
	path    string
}

// NewManager creates a Manager holding DefaultConfig until Load is called.
func NewManager() *Manager {
	return &Manager{
		k:       koanf.New("."),
		current: DefaultConfig(),
	}
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Router: RouterConfig{
			MailboxSize:     64,
			ShutdownTimeout: 5 * time.Second,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// DefaultConfigAsMap flattens DefaultConfig into koanf keys.
func DefaultConfigAsMap() map[string]interface{} {
	def := DefaultConfig()
	return map[string]interface{}{
		"log.level":  def.Log.Level,
		"log.format": def.Log.Format,
		"log.file":   def.Log.File,

		"router.mailbox_size":     def.Router.MailboxSize,
		"router.shutdown_timeout": def.Router.ShutdownTimeout,

		"output.format": def.Output.Format,
		"output.color":  def.Output.Color,
	}
}

// Load loads defaults, the YAML file at path (if any), RELAY_* environment
// variables and flags, in that order of precedence.
func (m *Manager) Load(flags *pflag.FlagSet, path string) error {
	debug := false
	if flags != nil {
		if f := flags.Lookup("debug"); f != nil && f.Value.String() == "true" {
			debug = true
		}
	}
	m.mu.Lock()
	m.path = path
	m.mu.Unlock()
	return m.LoadWithSources(DefaultSources(path, flags, debug))
}

// LoadWithSources loads sources in ascending priority into a fresh koanf
// instance, then unmarshals and validates the result. On error the current
// configuration is left untouched.
func (m *Manager) LoadWithSources(sources []ConfigSource) error {
	ordered := make([]ConfigSource, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})

	k := koanf.New(".")
	for _, src := range ordered {
		if err := src.Load(k); err != nil {
			return fmt.Errorf("config source %s: %w", src.Name(), err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("error unmarshaling final config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return err
	}

	m.mu.Lock()
	m.k = k
	m.current = cfg
	m.sources = ordered
	m.mu.Unlock()
	return nil
}

// Reload re-reads every source of the last successful load and returns the
// new configuration.
func (m *Manager) Reload() (Config, error) {
	m.mu.RLock()
	sources := m.sources
	m.mu.RUnlock()

	if len(sources) == 0 {
		return Config{}, ErrNotLoaded
	}
	if err := m.LoadWithSources(sources); err != nil {
		return Config{}, err
	}
	return m.Get(), nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Path returns the config file path given to Load.
func (m *Manager) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path
}

// Keys returns every loaded key with its value, for diagnostics.
func (m *Manager) Keys() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.k.All()
}

// BindFlags registers the flags that override configuration keys.
func BindFlags(flags *pflag.FlagSet) {
	def := DefaultConfig()

	var debug bool
	flags.BoolVar(&debug, "debug", false, "Enable debug logging")
	flags.String("log-level", def.Log.Level, "Log level (trace, debug, info, warn, error)")
	flags.Int("mailbox-size", def.Router.MailboxSize, "Events buffered per subscriber")
	flags.Duration("shutdown-timeout", def.Router.ShutdownTimeout, "Time allowed for subscribers to drain")
}
