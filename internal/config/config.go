// Package config provides hierarchical configuration management for gxctl
// itself (not for the data-context project, which lives in
// great_expectations.yml and is handled by package project).
//
// Settings are loaded with koanf in priority order:
// environment variables (GXCTL_*) > user config ($XDG_CONFIG_HOME/gxctl/config.yml) > defaults.
// A user config with a .json extension is read with the JSON parser.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment variable overrides.
// Nested keys use a double underscore: GXCTL_PROFILER__MAX_COLUMNS=3.
const EnvPrefix = "GXCTL_"

// Configuration represents the gxctl tool settings.
type Configuration struct {
	// DefaultSuiteName is offered when naming the first expectation suite.
	DefaultSuiteName string `koanf:"default_suite_name" validate:"required,excludesall=/\\"`

	// LogLevel is the minimum level for stderr logs: debug | info | warn | error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// NoColor disables colored output. NO_COLOR is honoured as well.
	NoColor bool `koanf:"no_color"`

	Datasource DatasourceSettings `koanf:"datasource"`
	Profiler   ProfilerSettings   `koanf:"profiler"`
	DataDocs   DataDocsSettings   `koanf:"data_docs"`
}

// DatasourceSettings configures datasource connectivity checks.
type DatasourceSettings struct {
	// ProbeTimeout bounds the eager connection probe run before a datasource is saved.
	ProbeTimeout time.Duration `koanf:"probe_timeout"`
}

// ProfilerSettings configures the basic profiler.
type ProfilerSettings struct {
	// MaxColumns is how many columns get column-level expectations.
	MaxColumns int `koanf:"max_columns" validate:"min=1,max=50"`
	// SampleRows is how many rows are read from the data asset.
	SampleRows int `koanf:"sample_rows" validate:"min=10"`
}

// DataDocsSettings configures documentation site viewing.
type DataDocsSettings struct {
	// OpenCommand overrides the platform browser opener (e.g. "firefox").
	OpenCommand string `koanf:"open_command"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// UserConfigPath overrides the user config path (default: UserConfigPath()).
	UserConfigPath string
	// SkipUserConfig ignores the user config file entirely.
	SkipUserConfig bool
}

// Load loads configuration from defaults, the user config file and the environment.
func Load() (*Configuration, error) {
	return LoadWithOptions(LoadOptions{})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")

	loadDefaults(k)

	if !opts.SkipUserConfig {
		if err := loadUserConfig(k, opts.UserConfigPath); err != nil {
			return nil, err
		}
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	return finalizeConfig(k)
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadUserConfig loads the user-level YAML config when it exists.
func loadUserConfig(k *koanf.Koanf, customPath string) error {
	path := customPath
	if path == "" {
		var err error
		if path, err = UserConfigPath(); err != nil {
			// No resolvable config dir (e.g. HOME unset): defaults apply.
			return nil
		}
	}

	if !fileExists(path) {
		return nil
	}

	var parser koanf.Parser = yaml.Parser()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		parser = json.Parser()
	} else if err := checkSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for user config: %w", err)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("failed to load user config %s: %w", path, err)
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals, validates, and applies final transformations
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateSettings(&cfg, "settings"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if os.Getenv("NO_COLOR") != "" {
		cfg.NoColor = true
	}

	return &cfg, nil
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys
// Example: GXCTL_PROFILER__MAX_COLUMNS -> profiler.max_columns
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}
