package config

import (
	"time"
)

// Config is the loaded configuration: settings plus the raw module and
// source definitions. Definitions are decoded one by one so a malformed
// module does not hide the others.
type Config struct {
	Fetch FetchConfig `koanf:"fetch"`
	Log   LogConfig   `koanf:"log"`

	Sources map[string]SourceConfig
	Modules map[string]ModuleConfig

	// Invalid maps module names to the reason their definition could not
	// be decoded
	Invalid map[string]error
}

// FetchConfig controls URL sources
type FetchConfig struct {
	Timeout   time.Duration `koanf:"timeout"`
	UserAgent string        `koanf:"user_agent"`
}

// LogConfig controls logging
type LogConfig struct {
	// File enables the log file in the state directory
	File bool `koanf:"file"`
}

// SourceConfig is a [sources.<name>] table. At most one of Text, File,
// Symlink and URL may be set; none makes the source static.
type SourceConfig struct {
	Text    string `koanf:"text"`
	File    string `koanf:"file"`
	Symlink string `koanf:"symlink"`
	URL     string `koanf:"url"`
	Digest  string `koanf:"digest"`
}

// ModuleConfig is a [modules.<name>] table
type ModuleConfig struct {
	Imports []string     `koanf:"imports"`
	User    string       `koanf:"user"`
	Group   string       `koanf:"group"`
	Links   []LinkConfig `koanf:"links"`
}

// LinkConfig is one [[modules.<name>.links]] entry. Exactly one of
// Source, Text, File, Symlink and URL must be set.
type LinkConfig struct {
	Path    string `koanf:"path"`
	Kind    string `koanf:"kind"`
	Source  string `koanf:"source"`
	Text    string `koanf:"text"`
	File    string `koanf:"file"`
	Symlink string `koanf:"symlink"`
	URL     string `koanf:"url"`
	Digest  string `koanf:"digest"`
}
