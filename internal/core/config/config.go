// Package config loads the faucet configuration from YAML.
package config

import (
	"fmt"
	"time"

	redisclient "github.com/sabdarana/faucet/internal/infra/redis"
	"github.com/sabdarana/faucet/internal/infra/storage/postgres"
)

// Duration is a time.Duration that unmarshals from strings like "24h".
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Chain    ChainConfig        `yaml:"chain"`
	Faucet   FaucetConfig       `yaml:"faucet"`
	Redis    redisclient.Config `yaml:"redis"`
	Logging  LoggingConfig      `yaml:"logging"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// ChainConfig holds settings for the Sabdarana network.
type ChainConfig struct {
	ChainID       uint64           `yaml:"id"`
	Network       string           `yaml:"network"`
	TokenAddress  string           `yaml:"token_address"`
	FaucetAccount string           `yaml:"faucet_account"`
	Providers     []ProviderConfig `yaml:"providers"`
}

// ProviderConfig holds settings for an RPC provider.
type ProviderConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// FaucetConfig holds the claim parameters.
type FaucetConfig struct {
	EthAmount         string   `yaml:"eth_amount"`   // ether-scaled, e.g. "0.1"
	WidyaAmount       string   `yaml:"widya_amount"` // ether-scaled, e.g. "100"
	CooldownWindow    Duration `yaml:"cooldown_window"`
	ClaimTimeout      Duration `yaml:"claim_timeout"`
	MintTimeout       Duration `yaml:"mint_timeout"`
	PollInterval      Duration `yaml:"poll_interval"`
	InterRequestPause Duration `yaml:"inter_request_pause"`
	RetentionPeriod   Duration `yaml:"retention_period"` // 0 = keep forever
}
