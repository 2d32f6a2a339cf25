package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Inputs         []string `toml:"inputs"`
	DBPath         string   `toml:"db_path"`
	LogLevel       string   `toml:"log_level"`
	LogJSON        bool     `toml:"log_json"`
	ListenAddr     string   `toml:"listen_addr"`
	Topics         int      `toml:"topics"`
	Passes         int      `toml:"passes"`
	Seed           int64    `toml:"seed"`
	TopN           int      `toml:"top_n"`
	ExtraStopwords []string `toml:"extra_stopwords"`
}

// Path returns the location of the config file, honoring $WCA_CONFIG.
func Path() (string, error) {
	if p := os.Getenv("WCA_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "wca", "config.toml"), nil
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := Default(home)

	cfgPath, err := Path()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	// expand ~ in paths
	cfg.DBPath = expandHome(cfg.DBPath, home)
	for i, in := range cfg.Inputs {
		cfg.Inputs[i] = expandHome(in, home)
	}

	cfg.fillZero()
	return cfg, nil
}

// Default returns the built-in configuration rooted at home.
func Default(home string) *Config {
	return &Config{
		DBPath:     filepath.Join(home, ".config", "wca", "wca.db"),
		LogLevel:   "info",
		ListenAddr: "127.0.0.1:5200",
		Topics:     5,
		Passes:     15,
		Seed:       100,
		TopN:       20,
	}
}

// fillZero restores defaults for numeric fields a config file zeroed out.
func (c *Config) fillZero() {
	if c.Topics <= 0 {
		c.Topics = 5
	}
	if c.Passes <= 0 {
		c.Passes = 15
	}
	if c.TopN <= 0 {
		c.TopN = 20
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
