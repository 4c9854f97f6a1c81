package config

import (
	"fmt"
	"strings"

	"github.com/3rs4lg4d0/mailpulse/mailrec"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MAILPULSE_SAMPLE_RATE
// or MAILPULSE_IGNORE_TO (comma separated).
const EnvPrefix = "MAILPULSE"

// Config mirrors the configuration file layout.
type Config struct {
	SampleRate      float64      `mapstructure:"sample_rate"`
	Ignore          IgnoreConfig `mapstructure:"ignore"`
	IgnoreMailables []string     `mapstructure:"ignore_mailables"`
	Limit           int          `mapstructure:"limit"`
}

type IgnoreConfig struct {
	To []string `mapstructure:"to"`
}

// Settings converts the configuration into recorder settings.
func (c *Config) Settings() mailrec.Settings {
	return mailrec.Settings{
		SampleRate:        c.SampleRate,
		IgnoredRecipients: c.Ignore.To,
		IgnoredMailables:  c.IgnoreMailables,
		Limit:             c.Limit,
	}
}

// LoadConfig reads the optional YAML file at configFile and applies the
// environment overrides on top of it. An empty path only uses defaults and
// environment.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigType("yaml")
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Ignore.To = cleanList(cfg.Ignore.To)
	cfg.IgnoreMailables = cleanList(cfg.IgnoreMailables)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadSettings is a shortcut for LoadConfig followed by Settings.
func LoadSettings(configFile string) (mailrec.Settings, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return mailrec.Settings{}, err
	}
	return cfg.Settings(), nil
}

func setDefaults(v *viper.Viper) {
	d := mailrec.DefaultSettings()
	v.SetDefault("sample_rate", d.SampleRate)
	v.SetDefault("ignore.to", d.IgnoredRecipients)
	v.SetDefault("ignore_mailables", d.IgnoredMailables)
	v.SetDefault("limit", d.Limit)
}

// Validate rejects values the recorder would otherwise clamp silently.
func Validate(cfg *Config) error {
	if cfg.SampleRate < 0 || cfg.SampleRate > 1 {
		return fmt.Errorf("sample_rate must be between 0 and 1, got %v", cfg.SampleRate)
	}
	if cfg.Limit < 1 {
		return fmt.Errorf("limit must be positive, got %d", cfg.Limit)
	}
	return nil
}

// cleanList trims the entries and drops the empty ones.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
