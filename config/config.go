package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the process-wide configuration record, typically loaded once
// in cmd/ and handed to whichever collaborators need it (observability
// reporters, the SSR renderer, devtools).
type Config struct {
	LogLevel              string        `yaml:"logLevel"`
	DevtoolsEnabled       bool          `yaml:"devtoolsEnabled"`
	DevtoolsInspectorAddr string        `yaml:"devtoolsInspectorAddr"`
	SsrTimeout            time.Duration `yaml:"ssrTimeout"`
	Environment           string        `yaml:"environment"`
	Release               string        `yaml:"release"`
	SentryDSN             string        `yaml:"sentryDsn"`
	// Stores holds per-store configuration blobs keyed by store id,
	// handed to store.ApplyConfig so a factory can read its own blob
	// through its registered metadata.
	Stores map[string]any `yaml:"stores"`
}

// Default returns the zero-config record every field of Config falls back
// to when no file is loaded.
func Default() Config {
	return Config{
		LogLevel:    "info",
		SsrTimeout:  5 * time.Second,
		Environment: "development",
	}
}

// UnmarshalYAML decodes a config document on top of the receiver's current
// values, so fields absent from the document are left alone. Durations are
// written in Go's "10s"/"1m30s" notation, which yaml.v3 cannot decode into
// a time.Duration on its own.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		LogLevel              *string        `yaml:"logLevel"`
		DevtoolsEnabled       *bool          `yaml:"devtoolsEnabled"`
		DevtoolsInspectorAddr *string        `yaml:"devtoolsInspectorAddr"`
		SsrTimeout            *string        `yaml:"ssrTimeout"`
		Environment           *string        `yaml:"environment"`
		Release               *string        `yaml:"release"`
		SentryDSN             *string        `yaml:"sentryDsn"`
		Stores                map[string]any `yaml:"stores"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.LogLevel != nil {
		c.LogLevel = *raw.LogLevel
	}
	if raw.DevtoolsEnabled != nil {
		c.DevtoolsEnabled = *raw.DevtoolsEnabled
	}
	if raw.DevtoolsInspectorAddr != nil {
		c.DevtoolsInspectorAddr = *raw.DevtoolsInspectorAddr
	}
	if raw.SsrTimeout != nil {
		d, err := time.ParseDuration(*raw.SsrTimeout)
		if err != nil {
			return fmt.Errorf("ssrTimeout: %w", err)
		}
		c.SsrTimeout = d
	}
	if raw.Environment != nil {
		c.Environment = *raw.Environment
	}
	if raw.Release != nil {
		c.Release = *raw.Release
	}
	if raw.SentryDSN != nil {
		c.SentryDSN = *raw.SentryDSN
	}
	if raw.Stores != nil {
		c.Stores = raw.Stores
	}
	return nil
}

// Load reads a YAML config file at path, starting from Default() so any
// field the file omits keeps its default value.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
