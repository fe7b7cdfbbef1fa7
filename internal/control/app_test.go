package control

import (
	"context"
	"testing"
	"time"

	"github.com/sabdarana/faucet/internal/core/config"
	"github.com/sabdarana/faucet/internal/infra/chain"
	"github.com/sabdarana/faucet/internal/infra/rpc/routing"
)

func testConfig() *config.AppConfig {
	cfg := &config.AppConfig{}
	cfg.Chain.ChainID = 31337
	cfg.Chain.Network = "Sabdarana Global Network"
	cfg.Chain.TokenAddress = "0x663f3ad617193148711d28f5334ee4ed07016602"
	cfg.Chain.FaucetAccount = "0x0000000000000000000000000000000000000009"
	cfg.Faucet.EthAmount = "0.1"
	cfg.Faucet.WidyaAmount = "100"
	cfg.Faucet.CooldownWindow = config.Duration(24 * time.Hour)
	cfg.Faucet.ClaimTimeout = config.Duration(60 * time.Second)
	cfg.Faucet.MintTimeout = config.Duration(30 * time.Second)
	cfg.Faucet.PollInterval = config.Duration(2 * time.Second)
	return cfg
}

func TestBuildPipelines_SeparateTimeouts(t *testing.T) {
	cfg := testConfig()
	client := chain.NewClient(nil, routing.DefaultRetryConfig)

	pipes := buildPipelines(client, cfg)

	if pipes.queue == pipes.claim {
		t.Fatal("queue and claim share a chain")
	}
	if got := pipes.queue.PollerConfig().Timeout; got != 30*time.Second {
		t.Errorf("queue settlement timeout = %v, want 30s", got)
	}
	if got := pipes.claim.PollerConfig().Timeout; got != 60*time.Second {
		t.Errorf("claim settlement timeout = %v, want 60s", got)
	}
	if pipes.claimPoller == nil {
		t.Fatal("claim poller not built")
	}
}

func TestNewApp_MemoryMode(t *testing.T) {
	app, err := NewApp(testConfig())
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		t.Errorf("Stop: %v", err)
	}
}
