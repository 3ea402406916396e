package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/username/bizday-calc/internal/calendar"
	"github.com/username/bizday-calc/pkg/dateutil"
)

// Holiday sources
const (
	SourceRules     = "rules"
	SourceFile      = "file"
	SourceRemote    = "remote"
	SourceComposite = "composite"
)

// Config represents application configuration
type Config struct {
	Holidays HolidaysConfig `mapstructure:"holidays"`
	Closures []string       `mapstructure:"closures"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Log      LogConfig      `mapstructure:"log"`
}

// HolidaysConfig selects and configures the holiday source
type HolidaysConfig struct {
	Source    string `mapstructure:"source"` // rules, file, remote or composite (remote, then rules)
	Region    string `mapstructure:"region"` // rules region: jp, us
	File      string `mapstructure:"file"`   // holiday table for the file source
	RemoteURL string `mapstructure:"remote_url"`
	CacheTTL  string `mapstructure:"cache_ttl"`
}

// EngineConfig holds the business-day engine iteration limits
type EngineConfig struct {
	MaxOffset int `mapstructure:"max_offset"`
	MaxGap    int `mapstructure:"max_gap"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"` // empty logs to the console
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("holidays.source", SourceComposite)
	v.SetDefault("holidays.region", "jp")
	v.SetDefault("holidays.remote_url", calendar.DefaultRemoteURL)
	v.SetDefault("holidays.cache_ttl", "24h")
	v.SetDefault("closures", []string{})
	v.SetDefault("engine.max_offset", 36500)
	v.SetDefault("engine.max_gap", 366)
	v.SetDefault("log.level", "info")
}

// Load loads configuration. An explicit configPath must exist; without one
// the usual locations are searched and defaults apply if nothing is found.
// Environment variables prefixed with BIZDAY_ override file values
// (BIZDAY_HOLIDAYS_SOURCE, BIZDAY_LOG_LEVEL, ...).
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.bizday")
		v.AddConfigPath("/etc/bizday")
	}

	v.SetEnvPrefix("BIZDAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Holidays.Source {
	case SourceRules, SourceComposite:
		if !isRegion(c.Holidays.Region) {
			return fmt.Errorf("holidays.region must be one of %v, got '%s'", calendar.Regions(), c.Holidays.Region)
		}
	case SourceFile:
		if c.Holidays.File == "" {
			return fmt.Errorf("holidays.file is required for file source")
		}
	case SourceRemote:
	default:
		return fmt.Errorf("holidays.source must be 'rules', 'file', 'remote' or 'composite', got '%s'", c.Holidays.Source)
	}

	if c.Holidays.Source == SourceRemote || c.Holidays.Source == SourceComposite {
		if !strings.Contains(c.Holidays.RemoteURL, "{year}") {
			return fmt.Errorf("holidays.remote_url must contain the {year} placeholder")
		}
	}

	if c.Holidays.CacheTTL != "" {
		ttl, err := time.ParseDuration(c.Holidays.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid holidays.cache_ttl: %w", err)
		}
		if ttl <= 0 {
			return fmt.Errorf("holidays.cache_ttl must be positive")
		}
	}

	if c.Engine.MaxOffset <= 0 {
		return fmt.Errorf("engine.max_offset must be positive")
	}
	if c.Engine.MaxGap <= 0 {
		return fmt.Errorf("engine.max_gap must be positive")
	}

	if _, err := c.ClosureDates(); err != nil {
		return err
	}

	return nil
}

func isRegion(region string) bool {
	for _, r := range calendar.Regions() {
		if r == region {
			return true
		}
	}
	return false
}

// ClosureDates parses the configured closure days
func (c *Config) ClosureDates() ([]dateutil.CalendarDate, error) {
	dates, err := dateutil.ParseDates(c.Closures)
	if err != nil {
		return nil, fmt.Errorf("closures: %w", err)
	}
	return dates, nil
}

// GetCacheTTL returns cache TTL duration
func (c *HolidaysConfig) GetCacheTTL() time.Duration {
	if c.CacheTTL == "" {
		return 24 * time.Hour
	}
	duration, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return duration
}
