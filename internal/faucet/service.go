package faucet

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/sabdarana/faucet/internal/core/domain"
	"github.com/sabdarana/faucet/internal/infra/chain"
	"github.com/sabdarana/faucet/internal/metrics"
)

// fallbackTransferGas is used when the node refuses to estimate.
const fallbackTransferGas = 21000

// Node is the chain surface the claim service needs.
type Node interface {
	ChainID(ctx context.Context) (uint64, error)
	GetBalance(ctx context.Context, address string) (*big.Int, error)
	TokenBalance(ctx context.Context, token, holder string) (*big.Int, error)
	EstimateGas(ctx context.Context, from, to string, value *big.Int) (uint64, error)
	SendTransaction(ctx context.Context, tx chain.TxParams) (string, error)
}

// Minter submits a token mint and waits for settlement.
type Minter interface {
	Execute(ctx context.Context, recipient string, amount *big.Int) domain.SubmissionResult
}

// ClaimSink persists claim audit rows. May be a no-op.
type ClaimSink interface {
	SaveClaim(ctx context.Context, rec domain.ClaimRecord) error
}

// ClaimError is a claim rejection carrying the HTTP status and the
// user-facing message.
type ClaimError struct {
	Status         int
	Message        string
	RemainingHours int                       // set on cooldown rejections
	Partial        []domain.ClaimTransaction // settled transfers before the failure
}

func (e *ClaimError) Error() string { return e.Message }

// ClaimResult is a fully successful claim.
type ClaimResult struct {
	Transactions []domain.ClaimTransaction
	To           string
	Message      string
}

// StatusResult is the read-only view of an address.
type StatusResult struct {
	Address       string
	BalanceETH    string
	BalanceWDC    string
	CanClaim      bool
	RemainingTime time.Duration
	EthAmount     string
	WidyaAmount   string
	Network       string
	TokenAddress  string
}

// ServiceConfig holds the claim parameters.
type ServiceConfig struct {
	ChainID       uint64
	NetworkName   string
	TokenAddress  string
	FaucetAccount string
	EthAmount     *big.Int // wei per claim
	WidyaAmount   *big.Int // wei per claim
}

// Service runs faucet claims end to end: validation, cooldown
// admission, chain id verification, sequential ETH send and WDC mint,
// then cooldown commit.
type Service struct {
	cfg    ServiceConfig
	node   Node
	minter Minter
	ledger *Ledger
	poller Awaiter
	sink   ClaimSink // may be nil
	log    *slog.Logger
}

// Awaiter waits for a submitted transaction to settle.
type Awaiter interface {
	Await(ctx context.Context, hash string) (domain.ConfirmationStatus, error)
}

// NewService creates the claim service.
func NewService(cfg ServiceConfig, node Node, minter Minter, ledger *Ledger, poller Awaiter, sink ClaimSink) *Service {
	return &Service{
		cfg:    cfg,
		node:   node,
		minter: minter,
		ledger: ledger,
		poller: poller,
		sink:   sink,
		log:    slog.Default(),
	}
}

// Claim dispenses the requested assets to address. On failure the error
// is always a *ClaimError. A claim that settled at least one transfer
// before failing commits the cooldown and reports the settled part.
func (s *Service) Claim(ctx context.Context, address string, tokenType domain.TokenType) (*ClaimResult, error) {
	if !domain.ValidAddress(address) {
		return nil, &ClaimError{Status: http.StatusBadRequest, Message: "Invalid address"}
	}
	if tokenType == "" {
		tokenType = domain.TokenBoth
	}
	if !tokenType.Valid() {
		return nil, &ClaimError{Status: http.StatusBadRequest, Message: "Invalid token type"}
	}

	allowed, remaining := s.ledger.CheckAndReserve(address)
	if !allowed {
		metrics.CooldownRejections.Inc()
		hours := int(math.Ceil(remaining.Hours()))
		return nil, &ClaimError{
			Status:         http.StatusTooManyRequests,
			Message:        fmt.Sprintf("Please wait %d more hours before claiming again", hours),
			RemainingHours: hours,
		}
	}

	res, err := s.claim(ctx, address, tokenType)
	s.record(ctx, address, tokenType, res, err)
	if err != nil {
		metrics.ClaimsTotal.WithLabelValues(string(domain.ClaimStatusFailed)).Inc()
		return nil, err
	}
	metrics.ClaimsTotal.WithLabelValues(string(domain.ClaimStatusSuccess)).Inc()
	return res, nil
}

// claim runs the transfer sequence under an admitted reservation. Every
// return path resolves the reservation: Commit when something settled,
// Release otherwise.
func (s *Service) claim(ctx context.Context, address string, tokenType domain.TokenType) (*ClaimResult, error) {
	id, err := s.node.ChainID(ctx)
	if err != nil || id != s.cfg.ChainID {
		s.ledger.Release(address)
		if err != nil {
			s.log.Error("Chain id lookup failed", "error", err)
		} else {
			s.log.Error("Unexpected chain id", "got", id, "want", s.cfg.ChainID)
		}
		return nil, &ClaimError{
			Status:  http.StatusServiceUnavailable,
			Message: "Unable to connect to Sabdarana network",
		}
	}

	var txs []domain.ClaimTransaction

	if tokenType.WantsETH() {
		hash, cerr := s.sendETH(ctx, address)
		if cerr != nil {
			s.ledger.Release(address)
			return nil, cerr
		}
		txs = append(txs, domain.ClaimTransaction{
			Type:   "ETH",
			Hash:   hash,
			Amount: domain.FormatUnits(s.cfg.EthAmount),
		})
		metrics.TransfersTotal.WithLabelValues("ETH", string(domain.TxStatusSuccess)).Inc()
	}

	if tokenType.WantsWidya() {
		res := s.minter.Execute(ctx, address, s.cfg.WidyaAmount)
		if !res.Success {
			s.log.Error("Widya mint failed", "address", address, "errorKind", res.ErrorKind)
			if len(txs) > 0 {
				// ETH already settled; the claim counts against the window.
				s.ledger.Commit(ctx, address)
				return nil, &ClaimError{
					Status:  http.StatusInternalServerError,
					Message: "Failed to mint Widya tokens",
					Partial: txs,
				}
			}
			s.ledger.Release(address)
			return nil, &ClaimError{
				Status:  http.StatusInternalServerError,
				Message: "Failed to mint Widya tokens",
			}
		}
		txs = append(txs, domain.ClaimTransaction{
			Type:   "WDC",
			Hash:   res.TxHash,
			Amount: domain.FormatUnits(s.cfg.WidyaAmount),
		})
	}

	s.ledger.Commit(ctx, address)
	s.log.Info("Claim completed", "address", address, "tokenType", tokenType, "transfers", len(txs))

	return &ClaimResult{
		Transactions: txs,
		To:           domain.NormalizeAddress(address),
		Message:      claimMessage(txs),
	}, nil
}

// sendETH transfers the configured ETH amount and waits for settlement.
func (s *Service) sendETH(ctx context.Context, address string) (string, *ClaimError) {
	balance, err := s.node.GetBalance(ctx, s.cfg.FaucetAccount)
	if err != nil {
		s.log.Error("Faucet balance lookup failed", "error", err)
		return "", &ClaimError{
			Status:  http.StatusServiceUnavailable,
			Message: domain.Classify(err).Message(),
		}
	}
	if balance.Cmp(s.cfg.EthAmount) < 0 {
		s.log.Error("Faucet account exhausted", "balance", domain.FormatUnits(balance))
		return "", &ClaimError{
			Status:  http.StatusServiceUnavailable,
			Message: "ETH faucet is empty, please contact administrator",
		}
	}

	gas, err := s.node.EstimateGas(ctx, s.cfg.FaucetAccount, address, s.cfg.EthAmount)
	if err != nil {
		s.log.Warn("Gas estimation failed, using fallback", "error", err)
		gas = fallbackTransferGas
	}
	gas = gas * 12 / 10 // 1.2x buffer

	hash, err := s.node.SendTransaction(ctx, chain.TxParams{
		From:  s.cfg.FaucetAccount,
		To:    address,
		Value: s.cfg.EthAmount,
		Gas:   gas,
	})
	if err != nil {
		s.log.Error("ETH send failed", "error", err)
		metrics.TransfersTotal.WithLabelValues("ETH", string(domain.TxStatusFailed)).Inc()
		return "", &ClaimError{Status: http.StatusInternalServerError, Message: "Failed to send ETH"}
	}

	status, err := s.poller.Await(ctx, hash)
	if err != nil || status != domain.StatusConfirmed {
		s.log.Error("ETH transfer did not settle", "hash", hash, "status", status, "error", err)
		metrics.TransfersTotal.WithLabelValues("ETH", string(domain.TxStatusFailed)).Inc()
		return "", &ClaimError{Status: http.StatusInternalServerError, Message: "Failed to send ETH"}
	}

	return hash, nil
}

// Status reports balances and cooldown state for an address without
// reserving anything.
func (s *Service) Status(ctx context.Context, address string) (*StatusResult, error) {
	if !domain.ValidAddress(address) {
		return nil, &ClaimError{Status: http.StatusBadRequest, Message: "Invalid address parameter"}
	}

	ethBalance, err := s.node.GetBalance(ctx, address)
	if err != nil {
		s.log.Error("Balance lookup failed", "address", address, "error", err)
		return nil, &ClaimError{
			Status:  http.StatusInternalServerError,
			Message: "Failed to check balances on Sabdarana network",
		}
	}

	// Token balance degrades to zero when the contract is unreachable.
	wdcBalance, err := s.node.TokenBalance(ctx, s.cfg.TokenAddress, address)
	if err != nil {
		s.log.Warn("Token balance lookup failed", "address", address, "error", err)
		wdcBalance = big.NewInt(0)
	}

	canClaim, remaining := s.ledger.Status(address)

	return &StatusResult{
		Address:       domain.NormalizeAddress(address),
		BalanceETH:    domain.FormatUnits(ethBalance),
		BalanceWDC:    domain.FormatUnits(wdcBalance),
		CanClaim:      canClaim,
		RemainingTime: remaining,
		EthAmount:     domain.FormatUnits(s.cfg.EthAmount),
		WidyaAmount:   domain.FormatUnits(s.cfg.WidyaAmount),
		Network:       s.cfg.NetworkName,
		TokenAddress:  s.cfg.TokenAddress,
	}, nil
}

// record persists the audit row for a finished claim attempt.
func (s *Service) record(ctx context.Context, address string, tokenType domain.TokenType, res *ClaimResult, claimErr error) {
	if s.sink == nil {
		return
	}

	rec := domain.ClaimRecord{
		Address:   domain.NormalizeAddress(address),
		TokenType: tokenType,
		CreatedAt: time.Now(),
	}
	switch {
	case claimErr == nil:
		rec.Status = domain.ClaimStatusSuccess
		for _, tx := range res.Transactions {
			rec.TxHashes = append(rec.TxHashes, tx.Hash)
		}
	default:
		rec.Status = domain.ClaimStatusFailed
		if ce, ok := claimErr.(*ClaimError); ok && len(ce.Partial) > 0 {
			rec.Status = domain.ClaimStatusPartial
			for _, tx := range ce.Partial {
				rec.TxHashes = append(rec.TxHashes, tx.Hash)
			}
		}
	}

	if err := s.sink.SaveClaim(ctx, rec); err != nil {
		s.log.Warn("Failed to persist claim record", "address", rec.Address, "error", err)
	}
}

func claimMessage(txs []domain.ClaimTransaction) string {
	parts := make([]string, 0, len(txs))
	for _, tx := range txs {
		parts = append(parts, fmt.Sprintf("%s %s", tx.Amount, tx.Type))
	}
	if len(parts) == 0 {
		return "Nothing to send"
	}
	return fmt.Sprintf("Successfully sent %s", strings.Join(parts, " and "))
}
