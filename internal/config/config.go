// Package config loads argbind.yaml.
//
// The file is optional. Every field has a default, and the command line
// overrides whatever the file sets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level argbind.yaml configuration.
type Config struct {
	// Reserved lists variable names that may never be declared, in addition
	// to the binder's built-in alias.
	Reserved []string `yaml:"reserved,omitempty"`

	// Echo writes every decoded array to stderr as it is bound.
	Echo bool `yaml:"echo,omitempty"`

	// Color is one of auto, always or never. Defaults to auto.
	Color string `yaml:"color,omitempty"`

	// Format is the output format of the CLI: sh, json or yaml.
	// Defaults to sh.
	Format string `yaml:"format,omitempty"`

	History History `yaml:"history,omitempty"`
	Server  Server  `yaml:"server,omitempty"`
}

// History configures the invocation history database.
type History struct {
	// Path is the SQLite database file. Empty disables history.
	// Relative paths are resolved against the config file's directory.
	Path string `yaml:"path,omitempty"`

	// Retention is how long records are kept (Go duration syntax).
	Retention string `yaml:"retention,omitempty"`

	// PruneEvery is how often the server deletes expired records.
	PruneEvery string `yaml:"prune_every,omitempty"`
}

// Server configures argbind-server.
type Server struct {
	GRPC string `yaml:"grpc,omitempty"`
	HTTP string `yaml:"http,omitempty"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses an argbind.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data, path)
	if err != nil {
		return nil, err
	}
	if cfg.History.Path != "" && !filepath.IsAbs(cfg.History.Path) {
		cfg.History.Path = filepath.Join(filepath.Dir(path), cfg.History.Path)
	}
	return cfg, nil
}

// ParseConfig parses argbind.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for argbind.yaml starting from dir and walking up
// to parent directories. It returns an empty path and nil error if no file
// is found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Resolve picks the configuration for a process: an explicit path wins,
// then $ARGBIND_CONFIG, then the nearest argbind.yaml above the working
// directory, then the defaults.
func Resolve(explicit string) (*Config, error) {
	path := explicit
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		found, err := FindConfig(wd)
		if err != nil {
			return nil, err
		}
		path = found
	}
	if path == "" {
		return Default(), nil
	}
	return LoadConfig(path)
}

func (c *Config) validate(path string) error {
	switch c.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%s: color: unknown mode %q (want auto, always or never)", path, c.Color)
	}

	if c.Format != "" {
		if err := ValidateFormat(c.Format); err != nil {
			return fmt.Errorf("%s: format: %w", path, err)
		}
	}

	for i, name := range c.Reserved {
		if name == "" {
			return fmt.Errorf("%s: reserved[%d]: empty name", path, i)
		}
	}

	if c.History.Retention != "" {
		if d, err := time.ParseDuration(c.History.Retention); err != nil || d <= 0 {
			return fmt.Errorf("%s: history.retention: invalid duration %q", path, c.History.Retention)
		}
	}
	if c.History.PruneEvery != "" {
		if d, err := time.ParseDuration(c.History.PruneEvery); err != nil || d <= 0 {
			return fmt.Errorf("%s: history.prune_every: invalid duration %q", path, c.History.PruneEvery)
		}
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Color == "" {
		c.Color = ColorAuto
	}
	if c.Format == "" {
		c.Format = FormatShell
	}
	if c.History.Retention == "" {
		c.History.Retention = DefaultRetention
	}
	if c.History.PruneEvery == "" {
		c.History.PruneEvery = DefaultPruneEvery
	}
	if c.Server.GRPC == "" {
		c.Server.GRPC = DefaultGRPCAddr
	}
	if c.Server.HTTP == "" {
		c.Server.HTTP = DefaultHTTPAddr
	}
}

// ValidateFormat checks an output format name.
func ValidateFormat(format string) error {
	switch format {
	case FormatShell, FormatJSON, FormatYAML:
		return nil
	}
	return fmt.Errorf("unknown format %q (want sh, json or yaml)", format)
}

// RetentionDuration returns the parsed retention period.
func (h History) RetentionDuration() time.Duration {
	d, _ := time.ParseDuration(h.Retention)
	return d
}

// PruneInterval returns the parsed pruning interval.
func (h History) PruneInterval() time.Duration {
	d, _ := time.ParseDuration(h.PruneEvery)
	return d
}
