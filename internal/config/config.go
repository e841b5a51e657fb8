// Package config provides configuration management for keelson.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the configuration file searched for by Load
const FileName = ".keelson.yaml"

// EnvPrefix prefixes the environment variables that override the file
const EnvPrefix = "KEELSON"

// Config represents the application configuration.
type Config struct {
	// Workers bounds the number of files parsed concurrently; 0 uses
	// GOMAXPROCS
	Workers int `mapstructure:"workers" yaml:"workers"`

	// MaxDepth bounds ONBUILD nesting
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"`

	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`

	// BuildArgs are KEY=VALUE bindings used when resolving arguments
	BuildArgs []string `mapstructure:"build_args" yaml:"build_args"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// Output is the default report format of the check command
	Output string `mapstructure:"output" yaml:"output"`
}

// CacheConfig contains AST cache settings.
type CacheConfig struct {
	Entries int           `mapstructure:"entries"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// MarshalYAML writes the TTL as a duration string
func (c CacheConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Entries int    `yaml:"entries"`
		TTL     string `yaml:"ttl"`
	}{c.Entries, c.TTL.String()}, nil
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the configuration used when no file or environment
// override is present
func Default() *Config {
	return &Config{
		Workers:  0,
		MaxDepth: 32,
		Cache: CacheConfig{
			Entries: 100,
			TTL:     5 * time.Minute,
		},
		BuildArgs: []string{},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Output: "terminal",
	}
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	return LoadFs(afero.NewOsFs(), configPath)
}

// LoadFs loads configuration from fs. An empty configPath searches the
// current and home directories for .keelson.yaml and falls back to the
// defaults when none exists.
func LoadFs(fs afero.Fs, configPath string) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)

	// Set defaults
	def := Default()
	v.SetDefault("workers", def.Workers)
	v.SetDefault("max_depth", def.MaxDepth)
	v.SetDefault("cache.entries", def.Cache.Entries)
	v.SetDefault("cache.ttl", def.Cache.TTL)
	v.SetDefault("build_args", def.BuildArgs)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("output", def.Output)

	// Configure viper for environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Configure config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(homeDir())
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the value ranges of the configuration
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.MaxDepth < 1 {
		return errors.Errorf("max_depth must be at least 1, got %d", c.MaxDepth)
	}
	if c.Cache.Entries < 1 {
		return errors.Errorf("cache.entries must be at least 1, got %d", c.Cache.Entries)
	}
	if c.Cache.TTL <= 0 {
		return errors.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if _, err := c.BuildArgMap(); err != nil {
		return err
	}
	return nil
}

// BuildArgMap returns the build arguments keyed by name
func (c *Config) BuildArgMap() (map[string]string, error) {
	return ParseBuildArgs(c.BuildArgs)
}

// ParseBuildArgs parses KEY=VALUE pairs. A pair without "=" binds the value
// of the environment variable of that name, as docker build does.
func ParseBuildArgs(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if name == "" {
			return nil, errors.Errorf("invalid build argument %q: missing name", p)
		}
		if !ok {
			env, found := os.LookupEnv(name)
			if !found {
				continue
			}
			value = env
		}
		out[name] = value
	}
	return out, nil
}

// WriteDefault writes the default configuration to path. It refuses to
// overwrite an existing file.
func WriteDefault(fs afero.Fs, path string) error {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return errors.Wrapf(err, "failed to stat %s", path)
	}
	if exists {
		return errors.Errorf("%s already exists", path)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return errors.Wrap(err, "failed to encode default config")
	}
	content := "# keelson configuration file\n" +
		"# Every key can be overridden with a " + EnvPrefix + "_ environment variable,\n" +
		"# for example " + EnvPrefix + "_CACHE_TTL=1m.\n\n" + string(data)

	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return home
}
