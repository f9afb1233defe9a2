package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	fserrors "github.com/alexjbarnes/folder-sync/internal/errors"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the settings for a folder-sync run. Values come from
// environment variables, then an optional YAML file, then positional
// command-line arguments, each overriding the previous.
type Config struct {
	// Directory treated as ground truth. Must exist.
	SourceFolder string `env:"SOURCE_FOLDER"`

	// Directory mutated to mirror SourceFolder. Created by the entry
	// point if missing.
	ReplicaFolder string `env:"REPLICA_FOLDER"`

	// Minutes between the starts of consecutive passes.
	Interval int `env:"SYNC_INTERVAL"`

	// Log lines are appended here. Empty means stdout only.
	LogFile string `env:"LOG_FILE"`

	// How often the scheduler checks whether Interval has elapsed.
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"1s"`

	// Start a pass early when the source directory changes.
	WatchSource bool `env:"WATCH_SOURCE" envDefault:"false"`

	// Environment controls log format
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	// Optional YAML file with the same settings.
	ConfigFile string `env:"CONFIG_FILE"`
}

// fileConfig mirrors the YAML layout. Pointer fields distinguish unset
// keys from zero values so the file only overrides what it names.
type fileConfig struct {
	SourceFolder  *string `yaml:"source_folder"`
	ReplicaFolder *string `yaml:"replica_folder"`
	Interval      *int    `yaml:"interval"`
	LogFile       *string `yaml:"log_file"`
	PollInterval  *string `yaml:"poll_interval"`
	WatchSource   *bool   `yaml:"watch_source"`
}

// Load builds a Config. args are the positional command-line arguments:
// either none, or exactly source_folder, replica_folder, interval, and
// log_file. All returned errors wrap errors.ErrConfig.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing environment: %w", fserrors.ErrConfig, err)
	}

	if cfg.ConfigFile != "" {
		if err := cfg.loadFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyArgs(args); err != nil {
		return nil, err
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(os.ExpandEnv(path))
	if err != nil {
		return fmt.Errorf("%w: reading config file: %w", fserrors.ErrConfig, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("%w: parsing config file: %w", fserrors.ErrConfig, err)
	}

	if fc.SourceFolder != nil {
		c.SourceFolder = *fc.SourceFolder
	}

	if fc.ReplicaFolder != nil {
		c.ReplicaFolder = *fc.ReplicaFolder
	}

	if fc.Interval != nil {
		c.Interval = *fc.Interval
	}

	if fc.LogFile != nil {
		c.LogFile = *fc.LogFile
	}

	if fc.PollInterval != nil {
		d, err := time.ParseDuration(*fc.PollInterval)
		if err != nil {
			return fmt.Errorf("%w: invalid poll_interval %q: %w", fserrors.ErrConfig, *fc.PollInterval, err)
		}

		c.PollInterval = d
	}

	if fc.WatchSource != nil {
		c.WatchSource = *fc.WatchSource
	}

	return nil
}

func (c *Config) applyArgs(args []string) error {
	switch len(args) {
	case 0:
		return nil
	case 4:
	default:
		return fmt.Errorf("%w: expected 4 arguments (source_folder replica_folder interval log_file), got %d", fserrors.ErrConfig, len(args))
	}

	interval, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("%w: interval must be an integer number of minutes, got %q", fserrors.ErrConfig, args[2])
	}

	c.SourceFolder = args[0]
	c.ReplicaFolder = args[1]
	c.Interval = interval
	c.LogFile = args[3]

	return nil
}

// resolvePaths makes the folder and log paths absolute so log lines and
// the source/replica comparison are unambiguous.
func (c *Config) resolvePaths() error {
	for _, p := range []*string{&c.SourceFolder, &c.ReplicaFolder, &c.LogFile} {
		if *p == "" {
			continue
		}

		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("%w: resolving %s to absolute path: %w", fserrors.ErrConfig, *p, err)
		}

		*p = abs
	}

	return nil
}

// Validate checks the settings. It does not create anything.
func (c *Config) Validate() error {
	if c.SourceFolder == "" {
		return fmt.Errorf("%w: SOURCE_FOLDER is required", fserrors.ErrConfig)
	}

	info, err := os.Stat(c.SourceFolder)
	if err != nil {
		return fmt.Errorf("%w: source folder: %w", fserrors.ErrConfig, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: source folder %s is not a directory", fserrors.ErrConfig, c.SourceFolder)
	}

	if c.ReplicaFolder == "" {
		return fmt.Errorf("%w: REPLICA_FOLDER is required", fserrors.ErrConfig)
	}

	if filepath.Clean(c.ReplicaFolder) == filepath.Clean(c.SourceFolder) {
		return fmt.Errorf("%w: source and replica folders must differ", fserrors.ErrConfig)
	}

	if info, err := os.Stat(c.ReplicaFolder); err == nil && !info.IsDir() {
		return fmt.Errorf("%w: replica folder %s is not a directory", fserrors.ErrConfig, c.ReplicaFolder)
	}

	if c.Interval <= 0 {
		return fmt.Errorf("%w: SYNC_INTERVAL must be a positive number of minutes, got %d", fserrors.ErrConfig, c.Interval)
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: POLL_INTERVAL must be positive, got %s", fserrors.ErrConfig, c.PollInterval)
	}

	return nil
}

// SyncInterval returns Interval as a duration.
func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.Interval) * time.Minute
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
