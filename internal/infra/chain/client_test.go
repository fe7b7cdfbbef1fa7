package chain

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sabdarana/faucet/internal/infra/rpc/provider"
	"github.com/sabdarana/faucet/internal/infra/rpc/routing"
)

// newStubNode serves canned JSON-RPC responses keyed by method.
func newStubNode(t *testing.T, responses map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			ID     int    `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		result, ok := responses[req.Method]
		if !ok {
			json.NewEncoder(w).Encode(map[string]any{
				"jsonrpc": "2.0", "id": req.ID,
				"error": map[string]any{"code": -32601, "message": "Method not found"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": req.ID, "result": result,
		})
	}))
}

func newTestClient(url string) *Client {
	p := provider.NewHTTPProvider("test", url, 5*time.Second)
	cfg := routing.RetryConfig{MaxAttempts: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffMultiple: 1}
	return NewClient([]provider.Provider{p}, cfg)
}

func TestChainID(t *testing.T) {
	node := newStubNode(t, map[string]any{"eth_chainId": "0x7a69"})
	defer node.Close()

	id, err := newTestClient(node.URL).ChainID(context.Background())
	if err != nil {
		t.Fatalf("ChainID: %v", err)
	}
	if id != 31337 {
		t.Errorf("ChainID = %d, want 31337", id)
	}
}

func TestGetBalance(t *testing.T) {
	node := newStubNode(t, map[string]any{"eth_getBalance": "0xde0b6b3a7640000"})
	defer node.Close()

	balance, err := newTestClient(node.URL).GetBalance(context.Background(), "0x663F3ad617193148711d28f5334eE4Ed07016602")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	want, _ := new(big.Int).SetString("1000000000000000000", 10)
	if balance.Cmp(want) != 0 {
		t.Errorf("balance = %s, want %s", balance, want)
	}
}

func TestSendTransaction(t *testing.T) {
	hash := "0xabc123def456abc123def456abc123def456abc123def456abc123def456abcd"
	node := newStubNode(t, map[string]any{"eth_sendTransaction": hash})
	defer node.Close()

	got, err := newTestClient(node.URL).SendTransaction(context.Background(), TxParams{
		From:  "0x0000000000000000000000000000000000000001",
		To:    "0x0000000000000000000000000000000000000002",
		Value: big.NewInt(1),
	})
	if err != nil {
		t.Fatalf("SendTransaction: %v", err)
	}
	if got != hash {
		t.Errorf("hash = %s, want %s", got, hash)
	}
}

func TestTransactionReceipt_NotFound(t *testing.T) {
	node := newStubNode(t, map[string]any{"eth_getTransactionReceipt": nil})
	defer node.Close()

	_, err := newTestClient(node.URL).TransactionReceipt(context.Background(), "0xdead")
	if err != ErrReceiptNotFound {
		t.Errorf("err = %v, want ErrReceiptNotFound", err)
	}
}

func TestTransactionReceipt_Success(t *testing.T) {
	node := newStubNode(t, map[string]any{
		"eth_getTransactionReceipt": map[string]any{
			"status":      "0x1",
			"blockNumber": "0x10",
		},
	})
	defer node.Close()

	receipt, err := newTestClient(node.URL).TransactionReceipt(context.Background(), "0xbeef")
	if err != nil {
		t.Fatalf("TransactionReceipt: %v", err)
	}
	if !receipt.Success {
		t.Error("receipt.Success = false, want true")
	}
	if receipt.BlockNumber != 16 {
		t.Errorf("blockNumber = %d, want 16", receipt.BlockNumber)
	}
}

func TestEncodeMint(t *testing.T) {
	data, err := EncodeMint("0x663F3ad617193148711d28f5334eE4Ed07016602", big.NewInt(5))
	if err != nil {
		t.Fatalf("EncodeMint: %v", err)
	}
	if len(data) != 4+32+32 {
		t.Fatalf("call data length = %d, want 68", len(data))
	}
	if data[0] != 0x40 || data[1] != 0xc1 || data[2] != 0x0f || data[3] != 0x19 {
		t.Errorf("selector = %x, want 40c10f19", data[:4])
	}
	if data[67] != 0x05 {
		t.Errorf("amount word ends with %x, want 05", data[67])
	}
}

func TestEncodeMint_AmountBounds(t *testing.T) {
	addr := "0x663F3ad617193148711d28f5334eE4Ed07016602"

	maxWord := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	if _, err := EncodeMint(addr, maxWord); err != nil {
		t.Errorf("EncodeMint(2^256-1): %v, want nil", err)
	}

	for _, amount := range []*big.Int{
		new(big.Int).Lsh(big.NewInt(1), 256),
		new(big.Int).Lsh(big.NewInt(1), 260),
		big.NewInt(-1),
		nil,
	} {
		if _, err := EncodeMint(addr, amount); err == nil {
			t.Errorf("EncodeMint(%v) expected error", amount)
		}
	}
}
