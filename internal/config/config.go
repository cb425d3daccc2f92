// Package config loads the lottery configuration.
//
// Values come from built-in defaults, then an optional TOML file, then the
// environment, each layer overriding the previous one.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

type Configs struct {
	Verbose bool `toml:"verbose" env:"LOTTERY_VERBOSE"`

	Forum   ForumConfigs   `toml:"forum"`
	Drand   DrandConfigs   `toml:"drand"`
	Policy  PolicyConfigs  `toml:"policy"`
	Server  ServerConfigs  `toml:"server"`
	Redis   RedisConfigs   `toml:"redis"`
	Storage StorageConfigs `toml:"storage"`
}

type ForumConfigs struct {
	BaseURL     string        `toml:"base_url" env:"BASE_URL"`
	ConnectURL  string        `toml:"connect_url" env:"CONNECT_URL"`
	CookiesFile string        `toml:"cookies_file" env:"COOKIES_FILE"`
	Timeout     time.Duration `toml:"timeout" env:"FORUM_TIMEOUT"`
}

type DrandConfigs struct {
	Server      string        `toml:"server" env:"DRAND_SERVER"`
	Hash        string        `toml:"hash" env:"DRAND_HASH"`
	Period      int64         `toml:"period" env:"DRAND_PERIOD"`
	GenesisTime int64         `toml:"genesis_time" env:"DRAND_GENESIS_TIME"`
	Timeout     time.Duration `toml:"timeout" env:"DRAND_TIMEOUT"`
}

type PolicyConfigs struct {
	// StrictCount rejects draws asking for more winners than eligible
	// floors; otherwise the count is clamped.
	StrictCount bool `toml:"strict_count" env:"STRICT_COUNT"`
	// IncludeCreator adds the topic creator's username to the seed material.
	IncludeCreator bool `toml:"include_creator" env:"INCLUDE_CREATOR"`
	// AllowedCategories restricts draws to these category ids; empty allows all.
	AllowedCategories []int `toml:"allowed_categories" env:"ALLOWED_CATEGORIES" envSeparator:","`
	MinEligibleFloors int   `toml:"min_eligible_floors" env:"MIN_ELIGIBLE_FLOORS"`
}

type ServerConfigs struct {
	Host string `toml:"host" env:"LOTTERY_HOST"`
	Port string `toml:"port" env:"LOTTERY_PORT"`
}

type RedisConfigs struct {
	Addr string `toml:"addr" env:"REDIS_ADDR"`
}

type StorageConfigs struct {
	// Path of the sqlite draw ledger; empty disables it.
	Path string `toml:"path" env:"STORAGE_PATH"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Configs {
	return Configs{
		Forum: ForumConfigs{
			BaseURL:     "https://linux.do",
			ConnectURL:  "https://connect.linux.do",
			CookiesFile: "cookies.txt",
			Timeout:     15 * time.Second,
		},
		Drand: DrandConfigs{
			Server:      "https://api.drand.sh",
			Hash:        "52db9ba70e0cc0f6eaf7803dd07447a1f5477735fd3f661792ba94600c84e971",
			Period:      3,
			GenesisTime: 1692803367,
			Timeout:     10 * time.Second,
		},
		Policy: PolicyConfigs{
			StrictCount:       true,
			IncludeCreator:    true,
			MinEligibleFloors: 2,
		},
		Server: ServerConfigs{
			Port: "5000",
		},
	}
}

// Load builds the configuration from defaults, the TOML file at path (if
// path is non-empty) and the environment.
func Load(path string) (Configs, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return cfg, fmt.Errorf("config file %s not found", path)
			}
			return cfg, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the draw cannot run with.
func (c Configs) Validate() error {
	if c.Forum.BaseURL == "" || c.Forum.ConnectURL == "" {
		return errors.New("forum base_url and connect_url are required")
	}
	if c.Drand.Period <= 0 {
		return fmt.Errorf("drand period must be positive, got %d", c.Drand.Period)
	}
	if c.Policy.MinEligibleFloors < 1 {
		return fmt.Errorf("min_eligible_floors must be at least 1, got %d", c.Policy.MinEligibleFloors)
	}
	return nil
}

// Addr returns the listen address of the HTTP server.
func (s ServerConfigs) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}
