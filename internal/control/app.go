// Package control wires the faucet application together and manages
// its lifecycle.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sabdarana/faucet/internal/core/config"
	"github.com/sabdarana/faucet/internal/core/domain"
	"github.com/sabdarana/faucet/internal/core/worker"
	"github.com/sabdarana/faucet/internal/faucet"
	"github.com/sabdarana/faucet/internal/infra/chain"
	redisclient "github.com/sabdarana/faucet/internal/infra/redis"
	"github.com/sabdarana/faucet/internal/infra/rpc/provider"
	"github.com/sabdarana/faucet/internal/infra/rpc/routing"
	"github.com/sabdarana/faucet/internal/infra/storage"
	"github.com/sabdarana/faucet/internal/infra/storage/memory"
	"github.com/sabdarana/faucet/internal/infra/storage/postgres"
	"github.com/sabdarana/faucet/internal/transfer"
)

const rpcTimeout = 10 * time.Second

// App is the assembled faucet service.
type App struct {
	cfg       *config.AppConfig
	server    *faucet.Server
	scheduler *transfer.Scheduler
	ledger    *faucet.Ledger
	pruner    *worker.Pruner
	db        *postgres.DB
	redis     *redisclient.Client
	providers []provider.Provider
	cancel    context.CancelFunc
	log       *slog.Logger
}

// NewApp creates the application with all dependencies initialized.
func NewApp(cfg *config.AppConfig) (*App, error) {
	ethAmount, err := domain.ParseUnits(cfg.Faucet.EthAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid eth_amount: %w", err)
	}
	widyaAmount, err := domain.ParseUnits(cfg.Faucet.WidyaAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid widya_amount: %w", err)
	}

	// Storage
	var (
		claimRepo    storage.ClaimRepository
		transferRepo storage.TransferRepository
		db           *postgres.DB
	)
	if cfg.Database.URL != "" {
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := db.Migrate("migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}
		claimRepo = postgres.NewClaimRepo(db)
		transferRepo = postgres.NewTransferRepo(db)
		slog.Info("Using PostgreSQL storage")
	} else {
		store := memory.NewStore()
		claimRepo = store
		transferRepo = store
		slog.Info("Using Memory storage")
	}

	// Cooldown persistence
	var (
		redisClient   *redisclient.Client
		cooldownStore faucet.CooldownStore
	)
	if cfg.Redis.URL != "" {
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("Failed to connect to Redis, cooldowns are in-memory only", "error", err)
		} else {
			cooldownStore = redisClient
		}
	}
	ledger := faucet.NewLedger(cfg.Faucet.CooldownWindow.Std(), cooldownStore)

	// Chain client
	providers := make([]provider.Provider, 0, len(cfg.Chain.Providers))
	for _, p := range cfg.Chain.Providers {
		providers = append(providers, provider.NewHTTPProvider(p.Name, p.URL, rpcTimeout))
	}
	client := chain.NewClient(providers, routing.DefaultRetryConfig)

	pipes := buildPipelines(client, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	scheduler := transfer.NewScheduler(ctx, pipes.queue, transfer.SchedulerConfig{
		InterRequestPause: cfg.Faucet.InterRequestPause.Std(),
		OnResult: func(req *domain.TransferRequest, res domain.SubmissionResult) {
			rec := domain.TransferRecord{
				RequestID: req.ID,
				Recipient: req.Recipient,
				Amount:    req.Amount.String(),
				Strategy:  res.Strategy,
				Status:    domain.TxStatusSuccess,
				TxHash:    res.TxHash,
				ErrorKind: res.ErrorKind,
				CreatedAt: req.CreatedAt,
			}
			if !res.Success {
				rec.Status = domain.TxStatusFailed
			}
			if err := transferRepo.SaveTransfer(ctx, rec); err != nil {
				slog.Warn("Failed to persist transfer record", "id", req.ID, "error", err)
			}
		},
	})

	service := faucet.NewService(faucet.ServiceConfig{
		ChainID:       cfg.Chain.ChainID,
		NetworkName:   cfg.Chain.Network,
		TokenAddress:  cfg.Chain.TokenAddress,
		FaucetAccount: cfg.Chain.FaucetAccount,
		EthAmount:     ethAmount,
		WidyaAmount:   widyaAmount,
	}, client, pipes.claim, ledger, pipes.claimPoller, claimRepo)

	server := faucet.NewServer(service, scheduler, auditReader{claimRepo, transferRepo}, cfg.Server.Port)
	pruner := worker.NewPruner(cfg.Faucet.RetentionPeriod.Std(), claimRepo, transferRepo)

	return &App{
		cfg:       cfg,
		server:    server,
		scheduler: scheduler,
		ledger:    ledger,
		pruner:    pruner,
		db:        db,
		redis:     redisClient,
		providers: providers,
		cancel:    cancel,
		log:       slog.Default(),
	}, nil
}

// auditReader joins the two repositories behind the read-only audit
// endpoints.
type auditReader struct {
	storage.ClaimRepository
	storage.TransferRepository
}

// pipelines holds the two settlement paths. Queued mints confirm
// against the mint timeout; interactive claims confirm both legs
// against the longer claim timeout.
type pipelines struct {
	queue       *transfer.Chain
	claim       *transfer.Chain
	claimPoller *transfer.Poller
}

func buildPipelines(client *chain.Client, cfg *config.AppConfig) pipelines {
	mintCfg := transfer.MintConfig{
		TokenAddress:  cfg.Chain.TokenAddress,
		FaucetAccount: cfg.Chain.FaucetAccount,
	}
	zeroFee := transfer.NewZeroFeeStrategy(client, mintCfg)
	wallet := transfer.NewWalletStrategy(client, mintCfg)

	queuePoller := transfer.NewPoller(client, transfer.PollerConfig{
		Interval: cfg.Faucet.PollInterval.Std(),
		Timeout:  cfg.Faucet.MintTimeout.Std(),
	})
	claimPoller := transfer.NewPoller(client, transfer.PollerConfig{
		Interval: cfg.Faucet.PollInterval.Std(),
		Timeout:  cfg.Faucet.ClaimTimeout.Std(),
	})

	return pipelines{
		queue:       transfer.NewChain(queuePoller, zeroFee, wallet),
		claim:       transfer.NewChain(claimPoller, zeroFee, wallet),
		claimPoller: claimPoller,
	}
}

// Start warms the cooldown ledger and starts serving.
func (a *App) Start(ctx context.Context) error {
	if err := a.ledger.Warm(ctx); err != nil {
		a.log.Warn("Failed to warm cooldown ledger", "error", err)
	}

	go a.pruner.Start(ctx)

	go func() {
		if err := a.server.Start(); err != nil {
			a.log.Error("HTTP server failed", "error", err)
		}
	}()
	return nil
}

// Stop shuts the application down.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping faucet...")

	a.cancel()
	a.scheduler.Clear()

	for _, p := range a.providers {
		if err := p.Close(); err != nil {
			a.log.Warn("Failed to close provider", "provider", p.GetName(), "error", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	}

	return a.server.Stop(ctx)
}
