package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if len(cfg.Chain.Providers) == 0 {
		return nil, fmt.Errorf("at least one RPC provider is required")
	}
	if cfg.Chain.TokenAddress == "" {
		return nil, fmt.Errorf("chain.token_address is required")
	}
	if cfg.Chain.FaucetAccount == "" {
		return nil, fmt.Errorf("chain.faucet_account is required")
	}

	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Chain.ChainID == 0 {
		cfg.Chain.ChainID = 31337
	}
	if cfg.Chain.Network == "" {
		cfg.Chain.Network = "Sabdarana Global Network"
	}
	if cfg.Faucet.EthAmount == "" {
		cfg.Faucet.EthAmount = "0.1"
	}
	if cfg.Faucet.WidyaAmount == "" {
		cfg.Faucet.WidyaAmount = "100"
	}
	if cfg.Faucet.CooldownWindow == 0 {
		cfg.Faucet.CooldownWindow = Duration(24 * time.Hour)
	}
	if cfg.Faucet.ClaimTimeout == 0 {
		cfg.Faucet.ClaimTimeout = Duration(60 * time.Second)
	}
	if cfg.Faucet.MintTimeout == 0 {
		cfg.Faucet.MintTimeout = Duration(30 * time.Second)
	}
	if cfg.Faucet.PollInterval == 0 {
		cfg.Faucet.PollInterval = Duration(2 * time.Second)
	}
	if cfg.Faucet.InterRequestPause == 0 {
		cfg.Faucet.InterRequestPause = Duration(1 * time.Second)
	}
}
