// pkg/version/version.go
// Package version provides version metadata for the application.
package version

import (
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
)

// These variables are typically injected at build time using -ldflags
var (
	// Version holds the current version of relay.
	Version = "dev"
	// Commit holds the current version commit of relay.
	Commit = "none"
	// BuildDate holds the build date of relay.
	BuildDate = "unknown"
	// StartDate holds the process start time.
	StartDate = time.Now()
)

// Struct returns version information in a structured format.
type Struct struct {
	Version    string `json:"version"`
	Commit     string `json:"commit"`
	BuildDate  string `json:"buildDate"`
	Release    bool   `json:"release"`
	Prerelease string `json:"prerelease,omitempty"`
}

// Info returns a formatted version string.
func Info() string {
	return fmt.Sprintf("relay %s (commit: %s, date: %s)", Version, Commit, BuildDate)
}

// Get returns version information as a Struct.
func Get() Struct {
	s := Struct{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	}
	if v, err := Semver(); err == nil {
		s.Prerelease = v.Prerelease()
		s.Release = s.Prerelease == ""
	}
	return s
}

// Semver parses Version. Development builds ("dev") do not parse.
func Semver() (*semver.Version, error) {
	v, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("version %q is not semantic: %w", Version, err)
	}
	return v, nil
}

// Satisfies reports whether the running version meets constraint, for
// example ">= 1.2, < 2". Development builds satisfy every constraint.
func Satisfies(constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	v, err := Semver()
	if err != nil {
		return true, nil
	}
	return c.Check(v), nil
}

// Uptime returns the time elapsed since StartDate.
func Uptime() time.Duration {
	return time.Since(StartDate)
}
