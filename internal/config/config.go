// Package config loads the channel layer configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config is the full application configuration.
type Config struct {
	ListenAddr string `yaml:"listen_addr" env:"LISTEN_ADDR"`
	LedgerID   string `yaml:"ledger_id" env:"LEDGER_ID"`

	RPC      RPCConfig      `yaml:"rpc"`
	Store    StoreConfig    `yaml:"store"`
	Registry RegistryConfig `yaml:"registry"`
	Payments PaymentConfig  `yaml:"payments"`
	HTTP     HTTPConfig     `yaml:"http"`
}

// RPCConfig configures the ledger node connection.
type RPCConfig struct {
	URL     string        `yaml:"url" env:"NEO_RPC_URL"`
	Network uint32        `yaml:"network" env:"NEO_NETWORK"`
	Timeout time.Duration `yaml:"timeout" env:"NEO_RPC_TIMEOUT"`
}

// StoreConfig selects and configures the record store backend.
type StoreConfig struct {
	Backend     string `yaml:"backend" env:"STORE_BACKEND"`
	Path        string `yaml:"path" env:"STORE_PATH"`
	PostgresDSN string `yaml:"postgres_dsn" env:"STORE_POSTGRES_DSN"`
}

// RegistryConfig holds registration policy.
type RegistryConfig struct {
	DefaultCoverImage   string   `yaml:"default_cover_image" env:"DEFAULT_COVER_IMAGE"`
	LinkMode            string   `yaml:"link_mode" env:"LINK_MODE"`
	BaseURL             string   `yaml:"base_url" env:"BASE_URL"`
	ContactAllowedHosts []string `yaml:"contact_allowed_hosts" env:"CONTACT_ALLOWED_HOSTS"`
}

// PaymentConfig holds transaction construction policy.
type PaymentConfig struct {
	SkipBalanceCheck    bool   `yaml:"skip_balance_check" env:"SKIP_BALANCE_CHECK"`
	ValidUntilIncrement uint32 `yaml:"valid_until_increment" env:"VALID_UNTIL_INCREMENT"`
}

// HTTPConfig holds the outer HTTP surface settings.
type HTTPConfig struct {
	CORSOrigins       []string `yaml:"cors_origins" env:"CORS_ORIGINS"`
	RateLimitRequests int      `yaml:"rate_limit_requests" env:"RATE_LIMIT_REQUESTS"`
	RateLimitBurst    int      `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
}

// Default returns the configuration defaults for a TestNet deployment.
func Default() Config {
	return Config{
		ListenAddr: ":8080",
		LedgerID:   "neo-n3-testnet",
		RPC: RPCConfig{
			URL:     "http://localhost:20332",
			Network: 894710606,
			Timeout: 15 * time.Second,
		},
		Store: StoreConfig{
			Backend: StoreFile,
			Path:    "data/channels.json",
		},
		Registry: RegistryConfig{
			LinkMode: "derived",
			BaseURL:  "http://localhost:8080",
		},
		Payments: PaymentConfig{
			ValidUntilIncrement: 5760,
		},
		HTTP: HTTPConfig{
			RateLimitRequests: 20,
			RateLimitBurst:    40,
		},
	}
}

// Load reads the configuration. Defaults apply first, then the YAML file at
// path (if path is non-empty), then environment variables on top.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envdecode.Decode(&cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store.Backend {
	case StoreFile:
		if c.Store.Path == "" {
			return fmt.Errorf("store: path required for file backend")
		}
	case StorePostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("store: postgres_dsn required for postgres backend")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("store: unknown backend %q", c.Store.Backend)
	}

	if c.RPC.URL == "" {
		return fmt.Errorf("rpc: url required")
	}
	return nil
}
