package config

import (
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config provides configuration for the blackjack observer
type Config struct {
	loaded bool

	// GatewayURL is the base URL of the wallet/transport sidecar
	GatewayURL string `yaml:"gatewayUrl" envconfig:"gateway_url"`

	// Identity is the local player's address; polling refuses to start
	// until the gateway's wallet signs for the same address
	Identity string `yaml:"identity" envconfig:"identity"`

	// PollIntervalSeconds is the fixed snapshot poll interval
	PollIntervalSeconds int `yaml:"pollIntervalSeconds" envconfig:"poll_interval_seconds"`

	// round economics, in minor units / whole percent
	Bet          int64 `yaml:"bet" envconfig:"bet"`
	RakePercent  int64 `yaml:"rakePercent" envconfig:"rake_percent"`
	BonusPercent int64 `yaml:"bonusPercent" envconfig:"bonus_percent"`

	Log struct {
		Level             string `yaml:"level" envconfig:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	} `yaml:"log"`
}

// PollInterval returns the poll interval as a duration
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

var config Config

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration. The yaml file is optional; environment
// variables always overlay it.
func Load() error {
	config = Config{
		GatewayURL:          "http://localhost:8090",
		PollIntervalSeconds: 5,
		Bet:                 10_000_000,
		RakePercent:         90,
		BonusPercent:        125,
	}

	configFile := os.Getenv("BJO_CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	file, err := os.Open(configFile)
	if err == nil {
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&config); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := envconfig.Process("bjo", &config); err != nil {
		return err
	}

	config.loaded = true
	return nil
}
