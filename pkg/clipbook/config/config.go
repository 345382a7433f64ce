// Package config loads clipbook settings from a YAML file, CLIPBOOK_
// environment variables, and command-line flags bound by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"github.com/dustin/go-humanize"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/jamesainslie/clipbook/pkg/clipbook/logging"
	"github.com/jamesainslie/clipbook/pkg/clipbook/settings"
)

// LibraryConfig selects where clips are stored.
type LibraryConfig struct {
	Backend  string `mapstructure:"backend" yaml:"backend"`
	Path     string `mapstructure:"path" yaml:"path"`
	Examples string `mapstructure:"examples" yaml:"examples"` // template file for empty libraries; empty uses the bundled one
}

// BackupConfig configures snapshots taken before saves.
type BackupConfig struct {
	Enabled       bool   `mapstructure:"enabled" yaml:"enabled"`
	RetentionDays int    `mapstructure:"retention_days" yaml:"retention_days"`
	Path          string `mapstructure:"path" yaml:"path"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Path       string `mapstructure:"path" yaml:"path"`
	MaxSize    string `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
}

// MaxSizeBytes parses MaxSize ("5MB", "512KiB").
func (l LoggingConfig) MaxSizeBytes() (int64, error) {
	n, err := humanize.ParseBytes(l.MaxSize)
	if err != nil {
		return 0, fmt.Errorf("logging.max_size: %w", err)
	}
	return int64(n), nil
}

// OutputConfig configures listing output.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
}

// Config represents the application configuration.
type Config struct {
	Library LibraryConfig `mapstructure:"library" yaml:"library"`
	Backup  BackupConfig  `mapstructure:"backup" yaml:"backup"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
}

// New returns a viper instance with defaults, config search paths and
// environment binding set up. Callers may bind flags to it before Load.
// Environment variables are prefixed with CLIPBOOK_ (e.g.
// CLIPBOOK_LIBRARY_BACKEND).
func New() (*viper.Viper, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	v.AddConfigPath(dir)

	v.SetEnvPrefix("CLIPBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("library.backend", DefaultBackend)
	v.SetDefault("library.path", DefaultLibraryPath())
	v.SetDefault("library.examples", "")

	v.SetDefault("backup.enabled", true)
	v.SetDefault("backup.retention_days", DefaultRetentionDays)
	v.SetDefault("backup.path", DefaultBackupDir())

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "") // Empty means logging.DefaultLogPath
	v.SetDefault("logging.max_size", DefaultLogMaxSize)
	v.SetDefault("logging.max_backups", DefaultLogMaxBackups)

	v.SetDefault("output.format", DefaultFormat)

	return v, nil
}

// Load reads configuration into v and decodes it. An empty configFile
// searches the config directory; a missing file there is not an error, but a
// missing explicit file is.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		path, err := homedir.Expand(configFile)
		if err != nil {
			return nil, err
		}
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for _, p := range []*string{&cfg.Library.Path, &cfg.Library.Examples, &cfg.Backup.Path, &cfg.Logging.Path} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return nil, err
		}
		*p = expanded
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault is Load on a fresh instance from New.
func LoadDefault() (*Config, error) {
	v, err := New()
	if err != nil {
		return nil, err
	}
	return Load(v, "")
}

// Validate checks values that cannot be checked by decoding.
func (c *Config) Validate() error {
	if !slices.Contains(settings.Backends(), c.Library.Backend) {
		return fmt.Errorf("library.backend: %w: %q", settings.ErrUnknownBackend, c.Library.Backend)
	}
	if c.Library.Path == "" {
		return errors.New("library.path must not be empty")
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if _, err := c.Logging.MaxSizeBytes(); err != nil {
		return err
	}
	if c.Backup.RetentionDays < 0 {
		return errors.New("backup.retention_days must not be negative")
	}
	return nil
}

// LoggingSetup converts the logging section for logging.Init.
func (c *Config) LoggingSetup() (logging.Config, error) {
	size, err := c.Logging.MaxSizeBytes()
	if err != nil {
		return logging.Config{}, err
	}
	return logging.Config{
		Level:      c.Logging.Level,
		Path:       c.Logging.Path,
		MaxSize:    size,
		MaxBackups: c.Logging.MaxBackups,
	}, nil
}

// ConfigDir returns $XDG_CONFIG_HOME/clipbook, or ~/.config/clipbook when
// XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "clipbook"), nil
	}

	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", "clipbook"), nil
}

// ConfigPath returns the default config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DataDir returns $XDG_DATA_HOME/clipbook.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "clipbook")
}

// DefaultLibraryPath returns the default library file.
func DefaultLibraryPath() string {
	return filepath.Join(DataDir(), DefaultLibraryFile)
}

// DefaultBackupDir returns the default snapshot directory.
func DefaultBackupDir() string {
	return filepath.Join(DataDir(), "backups")
}

// WriteDefault writes a commented default config file to path, or to
// ConfigPath when path is empty. It returns the path written and leaves an
// existing file alone.
func WriteDefault(path string) (string, bool, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return "", false, err
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !os.IsNotExist(err) {
		return "", false, fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	content := fmt.Sprintf(`# clipbook configuration

library:
  # Storage backend: file, badger, diskv, sqlite
  backend: %s
  # Library location. For file the extension picks the format
  # (.yaml, .yml, .toml, .json); other backends use a directory or database file.
  path: %s
  # Record file used to seed an empty library (empty means built-in examples)
  examples: ""

# Snapshots of the library taken before every save
backup:
  enabled: true
  retention_days: %d
  path: %s

logging:
  # Log level: debug, info, warn, error
  level: %s
  # Log file path (empty means $XDG_STATE_HOME/clipbook/clipbook.log)
  path: ""
  max_size: %s
  max_backups: %d

output:
  # Default list format: tree, plain, json, yaml, toml, csv, tsv, markdown, table, template
  format: %s
`, DefaultBackend, DefaultLibraryPath(), DefaultRetentionDays, DefaultBackupDir(),
		DefaultLogLevel, DefaultLogMaxSize, DefaultLogMaxBackups, DefaultFormat)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write default config: %w", err)
	}
	return path, true, nil
}
