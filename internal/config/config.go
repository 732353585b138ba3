package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all mnemo configuration.
type Config struct {
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Search SearchConfig `yaml:"search" mapstructure:"search"`
}

type ServerConfig struct {
	Bind string `yaml:"bind" mapstructure:"bind"`
	Port int    `yaml:"port" mapstructure:"port"`
}

type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit" mapstructure:"default_limit"`
	DefaultDepth int `yaml:"default_depth" mapstructure:"default_depth"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37780,
		},
		Search: SearchConfig{
			DefaultLimit: 20,
			DefaultDepth: 2,
		},
	}
}

// Load reads config.yaml from the usual locations, layered over the
// defaults, with MNEMO_* environment overrides. A missing file is not
// an error.
func Load() (*Config, error) {
	cfg := Default()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		viper.AddConfigPath(filepath.Join(xdg, "mnemo"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "mnemo"))
	}

	viper.SetEnvPrefix("MNEMO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
