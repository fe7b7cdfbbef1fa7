package transfer

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/sabdarana/faucet/internal/core/domain"
	"github.com/sabdarana/faucet/internal/infra/chain"
)

// Strategy is one concrete method of submitting a mint to the node.
// Submit returns the transaction hash on acceptance; an error means
// the submission itself failed and the next strategy may be tried.
type Strategy interface {
	Name() string
	Submit(ctx context.Context, recipient string, amount *big.Int) (string, error)
}

// Chain tries strategies in priority order. Only submission failures
// trigger fallback; once a strategy yields a hash, the outcome of
// confirmation is terminal and never retried with another strategy
// (retrying a reverted transfer risks duplicate side effects).
type Chain struct {
	strategies []Strategy
	poller     *Poller
	log        *slog.Logger
}

// NewChain creates a strategy chain ending in the given poller.
func NewChain(poller *Poller, strategies ...Strategy) *Chain {
	return &Chain{
		strategies: strategies,
		poller:     poller,
		log:        slog.Default(),
	}
}

// PollerConfig reports the settlement polling settings of the chain.
func (c *Chain) PollerConfig() PollerConfig { return c.poller.cfg }

// Execute runs the transfer through the chain and waits for settlement.
func (c *Chain) Execute(ctx context.Context, recipient string, amount *big.Int) domain.SubmissionResult {
	var lastErr error

	for _, st := range c.strategies {
		hash, err := st.Submit(ctx, recipient, amount)
		if err != nil {
			lastErr = err
			c.log.Warn("Submission failed, trying next strategy",
				"strategy", st.Name(), "error", err)
			continue
		}

		// Submitted: settlement outcome is final for this request.
		status, err := c.poller.Await(ctx, hash)
		if err != nil {
			return domain.SubmissionResult{
				Success:   false,
				TxHash:    hash,
				Strategy:  st.Name(),
				ErrorKind: domain.Classify(err),
			}
		}

		switch status {
		case domain.StatusConfirmed:
			return domain.SubmissionResult{
				Success:  true,
				TxHash:   hash,
				Strategy: st.Name(),
			}
		case domain.StatusTimedOut:
			return domain.SubmissionResult{
				Success:   false,
				TxHash:    hash,
				Strategy:  st.Name(),
				ErrorKind: domain.ErrKindTimeout,
			}
		default: // StatusFailed
			return domain.SubmissionResult{
				Success:   false,
				TxHash:    hash,
				Strategy:  st.Name(),
				ErrorKind: domain.ErrKindContractReverted,
			}
		}
	}

	return domain.SubmissionResult{
		Success:   false,
		ErrorKind: domain.Classify(lastErr),
	}
}

// MintSubmitter is the subset of the chain client strategies need.
type MintSubmitter interface {
	SendTransaction(ctx context.Context, tx chain.TxParams) (string, error)
}

// MintConfig identifies the token contract and faucet account.
type MintConfig struct {
	TokenAddress  string
	FaucetAccount string
}

// ZeroFeeStrategy submits a mint with an explicit zero gas price and a
// fixed gas limit. Dev networks accept free transactions; public ones
// reject them at submission time, which falls through to the next
// strategy.
type ZeroFeeStrategy struct {
	client MintSubmitter
	cfg    MintConfig
}

func NewZeroFeeStrategy(client MintSubmitter, cfg MintConfig) *ZeroFeeStrategy {
	return &ZeroFeeStrategy{client: client, cfg: cfg}
}

func (s *ZeroFeeStrategy) Name() string { return "zero_fee" }

func (s *ZeroFeeStrategy) Submit(ctx context.Context, recipient string, amount *big.Int) (string, error) {
	data, err := chain.EncodeMint(recipient, amount)
	if err != nil {
		return "", err
	}
	return s.client.SendTransaction(ctx, chain.TxParams{
		From:     s.cfg.FaucetAccount,
		To:       s.cfg.TokenAddress,
		Data:     data,
		Gas:      200000,
		GasPrice: big.NewInt(0),
	})
}

// WalletStrategy submits a standard mint and lets the node price gas.
type WalletStrategy struct {
	client MintSubmitter
	cfg    MintConfig
}

func NewWalletStrategy(client MintSubmitter, cfg MintConfig) *WalletStrategy {
	return &WalletStrategy{client: client, cfg: cfg}
}

func (s *WalletStrategy) Name() string { return "wallet" }

func (s *WalletStrategy) Submit(ctx context.Context, recipient string, amount *big.Int) (string, error) {
	data, err := chain.EncodeMint(recipient, amount)
	if err != nil {
		return "", err
	}
	return s.client.SendTransaction(ctx, chain.TxParams{
		From: s.cfg.FaucetAccount,
		To:   s.cfg.TokenAddress,
		Data: data,
	})
}
