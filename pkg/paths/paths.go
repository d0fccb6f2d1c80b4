// Package paths resolves per-user locations used by relay.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// ConfigFileName is the name of the config file inside ConfigDir.
const ConfigFileName = "config.yaml"

// ConfigDir returns the config directory for relay.
// Order: XDG_CONFIG_HOME/relay, platform-specific fallback.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "relay")
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("AppData"); appData != "" {
			return filepath.Join(appData, "Relay")
		}
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "relay")
}

// DefaultConfigFile returns the config file used when none is given on the
// command line, or "" when it does not exist.
func DefaultConfigFile() string {
	path := filepath.Join(ConfigDir(), ConfigFileName)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return ""
	}
	return path
}
