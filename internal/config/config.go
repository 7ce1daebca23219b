// Package config loads bioquery settings from YAML files and BIOQUERY_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// BIOQUERY_PROVIDER_MODEL=llama3.
const EnvPrefix = "BIOQUERY"

// Config is the complete application configuration.
type Config struct {
	Provider  ProviderConfig  `mapstructure:"provider" yaml:"provider"`
	Parser    ParserConfig    `mapstructure:"parser" yaml:"parser"`
	Extractor ExtractorConfig `mapstructure:"extractor" yaml:"extractor"`
	Toolkit   ToolkitConfig   `mapstructure:"toolkit" yaml:"toolkit"`
	NCBI      NCBIConfig      `mapstructure:"ncbi" yaml:"ncbi"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// ProviderConfig selects the reasoning service.
type ProviderConfig struct {
	Name    string `mapstructure:"name" yaml:"name"` // ollama, openai or none
	Model   string `mapstructure:"model" yaml:"model"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	APIKey  string `mapstructure:"api_key" yaml:"api_key,omitempty"`
}

// ParserConfig bounds the primary parser.
type ParserConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Retries int           `mapstructure:"retries" yaml:"retries"`
	Debug   bool          `mapstructure:"debug" yaml:"debug"`
}

// ExtractorConfig tunes sequence extraction.
type ExtractorConfig struct {
	MinRunLength int `mapstructure:"min_run_length" yaml:"min_run_length"`
}

// ToolkitConfig selects the analysis backend.
type ToolkitConfig struct {
	Name      string        `mapstructure:"name" yaml:"name"` // native or emboss
	EmbossDir string        `mapstructure:"emboss_dir" yaml:"emboss_dir"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// NCBIConfig enables remote reference lookup.
type NCBIConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	APIKey    string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Organism  string `mapstructure:"organism" yaml:"organism"`
	MaxLength int    `mapstructure:"max_length" yaml:"max_length"`
}

// LogConfig controls CLI logging.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text or json
}

// Provider names.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

// Toolkit names.
const (
	ToolkitNative = "native"
	ToolkitEmboss = "emboss"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:    ProviderOllama,
			Model:   "phi3:mini",
			BaseURL: "http://localhost:11434",
		},
		Parser: ParserConfig{
			Timeout: 10 * time.Second,
			Retries: 1,
		},
		Extractor: ExtractorConfig{
			MinRunLength: 10,
		},
		Toolkit: ToolkitConfig{
			Name:    ToolkitNative,
			Timeout: 30 * time.Second,
		},
		NCBI: NCBIConfig{
			MaxLength: 10000,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// setDefaults registers every key so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("provider.name", d.Provider.Name)
	v.SetDefault("provider.model", d.Provider.Model)
	v.SetDefault("provider.base_url", d.Provider.BaseURL)
	v.SetDefault("provider.api_key", d.Provider.APIKey)
	v.SetDefault("parser.timeout", d.Parser.Timeout)
	v.SetDefault("parser.retries", d.Parser.Retries)
	v.SetDefault("parser.debug", d.Parser.Debug)
	v.SetDefault("extractor.min_run_length", d.Extractor.MinRunLength)
	v.SetDefault("toolkit.name", d.Toolkit.Name)
	v.SetDefault("toolkit.emboss_dir", d.Toolkit.EmbossDir)
	v.SetDefault("toolkit.timeout", d.Toolkit.Timeout)
	v.SetDefault("ncbi.enabled", d.NCBI.Enabled)
	v.SetDefault("ncbi.api_key", d.NCBI.APIKey)
	v.SetDefault("ncbi.organism", d.NCBI.Organism)
	v.SetDefault("ncbi.max_length", d.NCBI.MaxLength)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads path (or the first bioquery.yaml found in the working directory
// or the user config directory when path is empty), applies environment
// overrides and validates the result. A missing default file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
	} else {
		v.SetConfigName("bioquery")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "bioquery"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks enumerated values and ranges.
func (c *Config) Validate() error {
	var errs []error
	switch c.Provider.Name {
	case ProviderOllama, ProviderOpenAI, ProviderNone:
	default:
		errs = append(errs, fmt.Errorf("provider.name must be one of ollama, openai, none; got %q", c.Provider.Name))
	}
	switch c.Toolkit.Name {
	case ToolkitNative, ToolkitEmboss:
	default:
		errs = append(errs, fmt.Errorf("toolkit.name must be native or emboss; got %q", c.Toolkit.Name))
	}
	if c.Parser.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("parser.timeout must be positive; got %s", c.Parser.Timeout))
	}
	if c.Parser.Retries < 0 {
		errs = append(errs, fmt.Errorf("parser.retries must not be negative; got %d", c.Parser.Retries))
	}
	if c.Extractor.MinRunLength < 1 {
		errs = append(errs, fmt.Errorf("extractor.min_run_length must be at least 1; got %d", c.Extractor.MinRunLength))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error; got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json; got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// YAML renders the configuration with secrets masked.
func (c *Config) YAML() (string, error) {
	masked := *c
	if masked.Provider.APIKey != "" {
		masked.Provider.APIKey = "********"
	}
	if masked.NCBI.APIKey != "" {
		masked.NCBI.APIKey = "********"
	}
	out, err := yaml.Marshal(&masked)
	if err != nil {
		return "", fmt.Errorf("failed to render config: %w", err)
	}
	return string(out), nil
}
