package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/amosWeiskopf/linksieve/pkg/reporter"
)

// EnvPrefix prefixes every environment override, e.g. LINKSIEVE_CRAWLER_TIMEOUT.
const EnvPrefix = "LINKSIEVE"

// Config holds all application configuration
type Config struct {
	Crawler CrawlerConfig `mapstructure:"crawler"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlerConfig holds crawler-specific configuration
type CrawlerConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	UserAgent     string        `mapstructure:"user_agent"`
	KeepSelfLinks bool          `mapstructure:"keep_self_links"`
	MaxTokenBytes int           `mapstructure:"max_token_bytes"`
	MaxIdleConns  int           `mapstructure:"max_idle_conns"`
}

// OutputConfig controls where results go and how the run summary looks.
type OutputConfig struct {
	Path    string `mapstructure:"path"`
	Pretty  bool   `mapstructure:"pretty"`
	Summary string `mapstructure:"summary"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load reads configuration into v from, in increasing priority: defaults,
// the config file, a .env file, and LINKSIEVE_* environment variables. Flags
// bound to v by the caller win over all of these. An explicit configPath that
// cannot be read is an error; a missing default config file is not.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.linksieve")
	}

	setDefaults(v)
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.timeout", "10s")
	v.SetDefault("crawler.user_agent", "")
	v.SetDefault("crawler.keep_self_links", false)
	v.SetDefault("crawler.max_token_bytes", 0)
	v.SetDefault("crawler.max_idle_conns", 50)

	v.SetDefault("output.path", "output.txt")
	v.SetDefault("output.pretty", false)
	v.SetDefault("output.summary", reporter.FormatTable)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)
}

func bindEnvVars(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Crawler.Timeout <= 0 {
		return fmt.Errorf("crawler.timeout must be positive")
	}
	if c.Crawler.MaxTokenBytes < 0 {
		return fmt.Errorf("crawler.max_token_bytes must not be negative")
	}
	if c.Crawler.MaxIdleConns < 0 {
		return fmt.Errorf("crawler.max_idle_conns must not be negative")
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output.path must be set")
	}
	if !reporter.ValidFormat(c.Output.Summary) {
		return fmt.Errorf("output.summary must be one of %s", strings.Join(reporter.Formats, ", "))
	}
	return nil
}
