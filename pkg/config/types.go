// pkg/config/types.go
package config

import "time"

// Config is the root configuration of relay.
type Config struct {
	Log    LogConfig    `description:"Logging configuration" json:"log" koanf:"log" yaml:"log"`
	Router RouterConfig `description:"Event router configuration" json:"router" koanf:"router" yaml:"router"`
	Output OutputConfig `description:"Console output configuration" json:"output" koanf:"output" yaml:"output"`
}

// LogConfig holds logging related configuration.
type LogConfig struct {
	Level  string `description:"Log level: trace|debug|info|warn|error" json:"level" koanf:"level" yaml:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `description:"Log format: text|json" json:"format" koanf:"format" yaml:"format" validate:"oneof=text json"`
	File   string `description:"Log file path, empty for stderr" json:"file" koanf:"file" yaml:"file"`
}

// RouterConfig holds event router settings.
type RouterConfig struct {
	// MailboxSize is the capacity of mailboxes created by Subscribe.
	MailboxSize int `description:"Events buffered per subscriber before emitters wait" json:"mailbox_size" koanf:"mailbox_size" yaml:"mailbox_size" validate:"min=1"`

	// ShutdownTimeout bounds how long shutdown waits for subscribers to drain.
	ShutdownTimeout time.Duration `description:"Time allowed for subscribers to drain on shutdown" json:"shutdown_timeout" koanf:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
}

// OutputConfig controls how commands render events and results.
type OutputConfig struct {
	Format string `description:"Output format: text|json" json:"format" koanf:"format" yaml:"format" validate:"oneof=text json"`
	Color  bool   `description:"Colorize text output" json:"color" koanf:"color" yaml:"color"`
}
