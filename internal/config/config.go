package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/thinkscript-sync/internal/logger"
)

// Config holds the tool options shared by every step of a synchronization run.
type Config struct {
	// SettingsFile is the path to the key=value application settings.
	SettingsFile string `yaml:"config_file"`
	// ScriptsFile is the path to the key=value script name to URL mapping.
	ScriptsFile string `yaml:"scripts_file"`
	// DownloadDir is where downloaded scripts are stored.
	DownloadDir string `yaml:"download_dir"`
	// Timeout bounds every HTTP request. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum level of printed messages.
	LogLevel string `yaml:"log_level"`
	// LogFile is an optional rotating log file written next to stdout.
	LogFile string `yaml:"log_file,omitempty"`
	// ProcessName is the trading application executable name. When it is
	// running a warning is logged, since the application rewrites its cache on exit.
	ProcessName string `yaml:"process_name,omitempty"`
	// DryRun disables writing the cache file.
	DryRun bool `yaml:"dry_run"`
}

const (
	// DefaultConfigFilename is the default filename for tool options.
	DefaultConfigFilename = "thinkscript-sync.yaml"

	// DefaultSettingsFilename is the default application settings file.
	DefaultSettingsFilename = "config.ini"

	// DefaultScriptsFilename is the default script settings file.
	DefaultScriptsFilename = "scripts.ini"

	// DefaultDownloadDir is the default folder for downloaded scripts.
	DefaultDownloadDir = "DownloadedScripts"

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNegativeTimeout is returned when the timeout is below zero.
	errNegativeTimeout = errors.New("timeout must not be negative")
	// errUnknownLogLevel is returned for an unsupported log level.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Default returns options with every field set to its default value.
func Default() *Config {
	return &Config{
		SettingsFile: DefaultSettingsFilename,
		ScriptsFile:  DefaultScriptsFilename,
		DownloadDir:  DefaultDownloadDir,
		LogLevel:     DefaultLogLevel,
	}
}

// Load reads options from the provided path and validates them.
// A missing file at the default location is not an error: defaults are returned.
func Load(path string) (*Config, error) {
	explicit := path != "" && path != DefaultConfigFilename
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			cfg := Default()
			return cfg, Validate(cfg)
		}

		return nil, fmt.Errorf("read options: %w", err)
	}

	cfg := Default()
	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal options: %w", err)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes options to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write options: %w", err)
	}

	return nil
}

// Validate checks the options and fills empty fields with defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Timeout < 0 {
		return errNegativeTimeout
	}

	if cfg.SettingsFile == "" {
		cfg.SettingsFile = DefaultSettingsFilename
	}

	if cfg.ScriptsFile == "" {
		cfg.ScriptsFile = DefaultScriptsFilename
	}

	if cfg.DownloadDir == "" {
		cfg.DownloadDir = DefaultDownloadDir
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %s", errUnknownLogLevel, cfg.LogLevel)
	}

	return nil
}
