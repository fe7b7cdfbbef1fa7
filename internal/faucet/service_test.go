package faucet

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"testing"
	"time"

	"github.com/sabdarana/faucet/internal/core/domain"
	"github.com/sabdarana/faucet/internal/infra/chain"
)

const (
	claimAddr  = "0x1111111111111111111111111111111111111111"
	tokenAddr  = "0x663f3ad617193148711d28f5334ee4ed07016602"
	faucetAddr = "0x0000000000000000000000000000000000000009"
)

type fakeNode struct {
	chainID    uint64
	chainErr   error
	balance    *big.Int
	balanceErr error
	tokenBal   *big.Int
	tokenErr   error
	estimate   uint64
	sendHash   string
	sendErr    error
	sentTx     chain.TxParams
}

func (n *fakeNode) ChainID(ctx context.Context) (uint64, error) {
	return n.chainID, n.chainErr
}

func (n *fakeNode) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	if n.balanceErr != nil {
		return nil, n.balanceErr
	}
	return n.balance, nil
}

func (n *fakeNode) TokenBalance(ctx context.Context, token, holder string) (*big.Int, error) {
	if n.tokenErr != nil {
		return nil, n.tokenErr
	}
	return n.tokenBal, nil
}

func (n *fakeNode) EstimateGas(ctx context.Context, from, to string, value *big.Int) (uint64, error) {
	if n.estimate == 0 {
		return 0, errors.New("estimate unavailable")
	}
	return n.estimate, nil
}

func (n *fakeNode) SendTransaction(ctx context.Context, tx chain.TxParams) (string, error) {
	n.sentTx = tx
	return n.sendHash, n.sendErr
}

type fakeMinter struct {
	result domain.SubmissionResult
	calls  int
}

func (m *fakeMinter) Execute(ctx context.Context, recipient string, amount *big.Int) domain.SubmissionResult {
	m.calls++
	return m.result
}

type fakeAwaiter struct {
	status domain.ConfirmationStatus
	err    error
}

func (a *fakeAwaiter) Await(ctx context.Context, hash string) (domain.ConfirmationStatus, error) {
	return a.status, a.err
}

func ether(t *testing.T, amount string) *big.Int {
	t.Helper()
	wei, err := domain.ParseUnits(amount)
	if err != nil {
		t.Fatalf("ParseUnits(%q): %v", amount, err)
	}
	return wei
}

func newTestService(t *testing.T, node *fakeNode, minter *fakeMinter, awaiter *fakeAwaiter) *Service {
	t.Helper()
	cfg := ServiceConfig{
		ChainID:       31337,
		NetworkName:   "Sabdarana Global Network",
		TokenAddress:  tokenAddr,
		FaucetAccount: faucetAddr,
		EthAmount:     ether(t, "0.1"),
		WidyaAmount:   ether(t, "100"),
	}
	return NewService(cfg, node, minter, NewLedger(24*time.Hour, nil), awaiter, nil)
}

func claimError(t *testing.T, err error) *ClaimError {
	t.Helper()
	var ce *ClaimError
	if !errors.As(err, &ce) {
		t.Fatalf("error %v is not a *ClaimError", err)
	}
	return ce
}

func TestService_ClaimBoth(t *testing.T) {
	node := &fakeNode{chainID: 31337, balance: ether(t, "10"), estimate: 21000, sendHash: "0xeth"}
	minter := &fakeMinter{result: domain.SubmissionResult{Success: true, TxHash: "0xwdc", Strategy: "zero_fee"}}
	svc := newTestService(t, node, minter, &fakeAwaiter{status: domain.StatusConfirmed})

	res, err := svc.Claim(context.Background(), claimAddr, domain.TokenBoth)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}

	if len(res.Transactions) != 2 {
		t.Fatalf("got %d transactions, want 2", len(res.Transactions))
	}
	if res.Transactions[0].Type != "ETH" || res.Transactions[0].Hash != "0xeth" || res.Transactions[0].Amount != "0.1" {
		t.Errorf("ETH transaction = %+v", res.Transactions[0])
	}
	if res.Transactions[1].Type != "WDC" || res.Transactions[1].Hash != "0xwdc" || res.Transactions[1].Amount != "100" {
		t.Errorf("WDC transaction = %+v", res.Transactions[1])
	}
	if res.To != claimAddr {
		t.Errorf("To = %s, want %s", res.To, claimAddr)
	}
	if res.Message != "Successfully sent 0.1 ETH and 100 WDC" {
		t.Errorf("Message = %q", res.Message)
	}

	// ETH send carries the 1.2x gas buffer.
	if node.sentTx.Gas != 25200 {
		t.Errorf("Gas = %d, want 25200", node.sentTx.Gas)
	}
}

func TestService_CooldownAppliesAcrossCase(t *testing.T) {
	node := &fakeNode{chainID: 31337, balance: ether(t, "10"), estimate: 21000, sendHash: "0xeth"}
	minter := &fakeMinter{result: domain.SubmissionResult{Success: true, TxHash: "0xwdc"}}
	svc := newTestService(t, node, minter, &fakeAwaiter{status: domain.StatusConfirmed})

	if _, err := svc.Claim(context.Background(), "0xAABBccddAABBccddAABBccddAABBccddAABBccdd", domain.TokenETH); err != nil {
		t.Fatalf("first claim: %v", err)
	}

	// Same recipient, different hex casing.
	_, err := svc.Claim(context.Background(), "0xaabbCCDDaabbCCDDaabbCCDDaabbCCDDaabbCCDD", domain.TokenETH)
	ce := claimError(t, err)
	if ce.Status != http.StatusTooManyRequests {
		t.Fatalf("Status = %d, want 429", ce.Status)
	}
	if ce.RemainingHours != 24 {
		t.Errorf("RemainingHours = %d, want 24", ce.RemainingHours)
	}
	if ce.Message != "Please wait 24 more hours before claiming again" {
		t.Errorf("Message = %q", ce.Message)
	}
}

func TestService_InvalidAddress(t *testing.T) {
	svc := newTestService(t, &fakeNode{}, &fakeMinter{}, &fakeAwaiter{})

	_, err := svc.Claim(context.Background(), "not-an-address", domain.TokenBoth)
	ce := claimError(t, err)
	if ce.Status != http.StatusBadRequest || ce.Message != "Invalid address" {
		t.Errorf("got %d %q", ce.Status, ce.Message)
	}
}

func TestService_WrongChainReleasesReservation(t *testing.T) {
	node := &fakeNode{chainID: 1, balance: ether(t, "10")}
	svc := newTestService(t, node, &fakeMinter{}, &fakeAwaiter{})

	_, err := svc.Claim(context.Background(), claimAddr, domain.TokenBoth)
	ce := claimError(t, err)
	if ce.Status != http.StatusServiceUnavailable {
		t.Fatalf("Status = %d, want 503", ce.Status)
	}
	if ce.Message != "Unable to connect to Sabdarana network" {
		t.Errorf("Message = %q", ce.Message)
	}

	// The failed claim must not consume the cooldown window.
	node.chainID = 31337
	node.estimate = 21000
	node.sendHash = "0xeth"
	svc.minter = &fakeMinter{result: domain.SubmissionResult{Success: true, TxHash: "0xwdc"}}
	svc.poller = &fakeAwaiter{status: domain.StatusConfirmed}
	if _, err := svc.Claim(context.Background(), claimAddr, domain.TokenBoth); err != nil {
		t.Errorf("retry after network failure: %v", err)
	}
}

func TestService_EmptyFaucet(t *testing.T) {
	node := &fakeNode{chainID: 31337, balance: big.NewInt(0)}
	svc := newTestService(t, node, &fakeMinter{}, &fakeAwaiter{})

	_, err := svc.Claim(context.Background(), claimAddr, domain.TokenETH)
	ce := claimError(t, err)
	if ce.Status != http.StatusServiceUnavailable {
		t.Fatalf("Status = %d, want 503", ce.Status)
	}
	if ce.Message != "ETH faucet is empty, please contact administrator" {
		t.Errorf("Message = %q", ce.Message)
	}
}

func TestService_EthSettlementFailure(t *testing.T) {
	node := &fakeNode{chainID: 31337, balance: ether(t, "10"), estimate: 21000, sendHash: "0xeth"}
	svc := newTestService(t, node, &fakeMinter{}, &fakeAwaiter{status: domain.StatusTimedOut})

	_, err := svc.Claim(context.Background(), claimAddr, domain.TokenETH)
	ce := claimError(t, err)
	if ce.Status != http.StatusInternalServerError || ce.Message != "Failed to send ETH" {
		t.Errorf("got %d %q", ce.Status, ce.Message)
	}
	if len(ce.Partial) != 0 {
		t.Errorf("Partial = %+v, want empty", ce.Partial)
	}
}

func TestService_PartialSuccessCommitsCooldown(t *testing.T) {
	node := &fakeNode{chainID: 31337, balance: ether(t, "10"), estimate: 21000, sendHash: "0xeth"}
	minter := &fakeMinter{result: domain.SubmissionResult{Success: false, ErrorKind: domain.ErrKindContractReverted}}
	svc := newTestService(t, node, minter, &fakeAwaiter{status: domain.StatusConfirmed})

	_, err := svc.Claim(context.Background(), claimAddr, domain.TokenBoth)
	ce := claimError(t, err)
	if ce.Status != http.StatusInternalServerError {
		t.Fatalf("Status = %d, want 500", ce.Status)
	}
	if ce.Message != "Failed to mint Widya tokens" {
		t.Errorf("Message = %q", ce.Message)
	}
	if len(ce.Partial) != 1 || ce.Partial[0].Type != "ETH" {
		t.Errorf("Partial = %+v, want the settled ETH transfer", ce.Partial)
	}

	// The settled ETH half counts as a claim: the window applies.
	_, err = svc.Claim(context.Background(), claimAddr, domain.TokenBoth)
	if ce := claimError(t, err); ce.Status != http.StatusTooManyRequests {
		t.Errorf("Status = %d, want 429 after partial success", ce.Status)
	}
}

func TestService_MintOnlyFailureReleases(t *testing.T) {
	node := &fakeNode{chainID: 31337}
	minter := &fakeMinter{result: domain.SubmissionResult{Success: false, ErrorKind: domain.ErrKindTimeout}}
	svc := newTestService(t, node, minter, &fakeAwaiter{})

	_, err := svc.Claim(context.Background(), claimAddr, domain.TokenWidya)
	ce := claimError(t, err)
	if ce.Status != http.StatusInternalServerError || len(ce.Partial) != 0 {
		t.Fatalf("got %d Partial=%+v", ce.Status, ce.Partial)
	}

	// Nothing settled, so a retry is admitted immediately.
	minter.result = domain.SubmissionResult{Success: true, TxHash: "0xwdc"}
	if _, err := svc.Claim(context.Background(), claimAddr, domain.TokenWidya); err != nil {
		t.Errorf("retry after failed mint: %v", err)
	}
}

func TestService_Status(t *testing.T) {
	node := &fakeNode{chainID: 31337, balance: ether(t, "2.5"), tokenBal: ether(t, "40")}
	svc := newTestService(t, node, &fakeMinter{}, &fakeAwaiter{})

	st, err := svc.Status(context.Background(), claimAddr)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.BalanceETH != "2.5" || st.BalanceWDC != "40" {
		t.Errorf("balances = %s/%s, want 2.5/40", st.BalanceETH, st.BalanceWDC)
	}
	if !st.CanClaim || st.RemainingTime != 0 {
		t.Errorf("CanClaim=%v RemainingTime=%v, want true/0", st.CanClaim, st.RemainingTime)
	}
	if st.TokenAddress != tokenAddr || st.Network != "Sabdarana Global Network" {
		t.Errorf("network identity = %s/%s", st.Network, st.TokenAddress)
	}
}

func TestService_StatusTokenBalanceDegrades(t *testing.T) {
	node := &fakeNode{chainID: 31337, balance: ether(t, "1"), tokenErr: errors.New("execution reverted")}
	svc := newTestService(t, node, &fakeMinter{}, &fakeAwaiter{})

	st, err := svc.Status(context.Background(), claimAddr)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.BalanceWDC != "0" {
		t.Errorf("BalanceWDC = %s, want 0 on token lookup failure", st.BalanceWDC)
	}
}

func TestService_StatusBalanceFailure(t *testing.T) {
	node := &fakeNode{chainID: 31337, balanceErr: errors.New("connection refused")}
	svc := newTestService(t, node, &fakeMinter{}, &fakeAwaiter{})

	_, err := svc.Status(context.Background(), claimAddr)
	ce := claimError(t, err)
	if ce.Status != http.StatusInternalServerError {
		t.Fatalf("Status = %d, want 500", ce.Status)
	}
	if ce.Message != "Failed to check balances on Sabdarana network" {
		t.Errorf("Message = %q", ce.Message)
	}
}
