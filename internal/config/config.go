package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// Host modes.
const (
	ModeHass   = "hass"
	ModeHeater = "heater"
)

// Config holds application configuration.
type Config struct {
	Hass   HassConfig   `mapstructure:"hass"`
	Host   HostConfig   `mapstructure:"host"`
	Heater HeaterConfig `mapstructure:"heater"`
	Log    LogConfig    `mapstructure:"log"`
	UI     UIConfig     `mapstructure:"ui"`
	// Card holds the raw card options, passed through untouched.
	Card map[string]any `mapstructure:"card"`
}

// HassConfig holds Home Assistant connection settings.
type HassConfig struct {
	URL      string `mapstructure:"url"`
	TokenEnv string `mapstructure:"token_env"`
	Token    string `mapstructure:"token"`
}

// HostConfig selects where entities come from.
type HostConfig struct {
	Mode string `mapstructure:"mode"`
}

// HeaterConfig holds the direct controller address.
type HeaterConfig struct {
	Address string `mapstructure:"address"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	TrendPoints int `mapstructure:"trend_points"`
}

// Path returns the config file location. WEBASTOCARD_CONFIG overrides it.
func Path() string {
	if p := os.Getenv("WEBASTOCARD_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "webastocard", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix WEBASTOCARD_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("hass.url", "http://homeassistant.local:8123")
	v.SetDefault("hass.token_env", "HASS_TOKEN")
	v.SetDefault("hass.token", "")
	v.SetDefault("host.mode", ModeHass)
	v.SetDefault("heater.address", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("ui.trend_points", 60)
	v.SetDefault("card.entity_prefix", "")

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix("WEBASTOCARD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Host.Mode = strings.ToLower(strings.TrimSpace(c.Host.Mode))
	if c.Host.Mode != ModeHass && c.Host.Mode != ModeHeater {
		return Config{}, fmt.Errorf("host.mode %q: want %q or %q", c.Host.Mode, ModeHass, ModeHeater)
	}
	if c.Card == nil {
		c.Card = map[string]any{}
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// The token is written in plain text; prefer the env var or the token store.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("hass.url", cfg.Hass.URL)
	v.Set("hass.token_env", cfg.Hass.TokenEnv)
	v.Set("hass.token", cfg.Hass.Token)
	v.Set("host.mode", cfg.Host.Mode)
	v.Set("heater.address", cfg.Heater.Address)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)
	v.Set("ui.trend_points", cfg.UI.TrendPoints)
	for k, val := range cfg.Card {
		v.Set("card."+k, val)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

type sampleFile struct {
	Hass struct {
		URL      string `toml:"url"`
		TokenEnv string `toml:"token_env"`
	} `toml:"hass"`
	Host struct {
		Mode string `toml:"mode"`
	} `toml:"host"`
	Heater struct {
		Address string `toml:"address"`
	} `toml:"heater"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
	UI struct {
		TrendPoints int `toml:"trend_points"`
	} `toml:"ui"`
	Card map[string]any `toml:"card"`
}

// Sample renders a starter config file with the given card options.
func Sample(card map[string]any) (string, error) {
	var s sampleFile
	s.Hass.URL = "http://homeassistant.local:8123"
	s.Hass.TokenEnv = "HASS_TOKEN"
	s.Host.Mode = ModeHass
	s.Heater.Address = "webasto.local"
	s.Log.Level = "info"
	s.UI.TrendPoints = 60
	s.Card = card

	var buf bytes.Buffer
	buf.WriteString("# webastocard configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return "", fmt.Errorf("encode sample: %w", err)
	}
	return buf.String(), nil
}
