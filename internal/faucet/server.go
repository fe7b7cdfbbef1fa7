package faucet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sabdarana/faucet/internal/core/domain"
)

// Enqueuer is the scheduler surface the auto-mint endpoint needs.
type Enqueuer interface {
	Enqueue(amount *big.Int, recipient string, delay time.Duration) string
	QueueLength() int
}

// AuditReader surfaces stored audit rows for operators.
type AuditReader interface {
	RecentClaims(ctx context.Context, limit int) ([]domain.ClaimRecord, error)
	TransferByRequestID(ctx context.Context, requestID string) (*domain.TransferRecord, error)
}

// Server exposes the faucet HTTP API.
type Server struct {
	service   *Service
	scheduler Enqueuer
	audit     AuditReader
	server    *http.Server
	log       *slog.Logger
}

// NewServer creates the HTTP server on the given port.
func NewServer(service *Service, scheduler Enqueuer, audit AuditReader, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		service:   service,
		scheduler: scheduler,
		audit:     audit,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
		log: slog.Default(),
	}

	mux.HandleFunc("/faucet-claim", s.handleClaim)
	mux.HandleFunc("/auto-mint", s.handleAutoMint)
	mux.HandleFunc("/queue", s.handleQueue)
	mux.HandleFunc("/claims", s.handleClaims)
	mux.HandleFunc("/transfers", s.handleTransfer)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info("Faucet API listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the underlying handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

type claimRequest struct {
	Address   string `json:"address"`
	TokenType string `json:"tokenType"`
}

type autoMintRequest struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	DelayMs   int64  `json:"delayMs"`
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.postClaim(w, r)
	case http.MethodGet:
		s.getClaim(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "Method not allowed"})
	}
}

func (s *Server) postClaim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		return
	}

	result, err := s.service.Claim(r.Context(), req.Address, domain.TokenType(req.TokenType))
	if err != nil {
		s.writeClaimError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"transactions": result.Transactions,
		"to":           result.To,
		"message":      result.Message,
	})
}

func (s *Server) getClaim(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")

	status, err := s.service.Status(r.Context(), address)
	if err != nil {
		s.writeClaimError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"address": status.Address,
		"balances": map[string]string{
			"ETH": status.BalanceETH,
			"WDC": status.BalanceWDC,
		},
		"canClaim":      status.CanClaim,
		"remainingTime": status.RemainingTime.Milliseconds(),
		"faucetAmounts": map[string]string{
			"ETH": status.EthAmount,
			"WDC": status.WidyaAmount,
		},
		"network":      status.Network,
		"tokenAddress": status.TokenAddress,
	})
}

func (s *Server) handleAutoMint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "Method not allowed"})
		return
	}

	var req autoMintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		return
	}
	if !domain.ValidAddress(req.Recipient) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid recipient"})
		return
	}
	amount, err := domain.ParseUnits(req.Amount)
	if err != nil || amount.Sign() == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid amount"})
		return
	}

	id := s.scheduler.Enqueue(amount, req.Recipient, time.Duration(req.DelayMs)*time.Millisecond)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"queued":    true,
		"requestId": id,
	})
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"length": s.scheduler.QueueLength()})
}

// handleClaims lists recent claim attempts, newest first. The limit
// parameter defaults to 20 and is capped at 100.
func (s *Server) handleClaims(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "Method not allowed"})
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid limit parameter"})
			return
		}
		limit = n
	}
	if limit > 100 {
		limit = 100
	}

	claims, err := s.audit.RecentClaims(r.Context(), limit)
	if err != nil {
		s.log.Error("Failed to load claims", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to load claims"})
		return
	}

	out := make([]map[string]any, 0, len(claims))
	for _, c := range claims {
		out = append(out, map[string]any{
			"address":   c.Address,
			"tokenType": c.TokenType,
			"status":    c.Status,
			"txHashes":  c.TxHashes,
			"createdAt": c.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"claims": out})
}

// handleTransfer looks up one queued mint by its request id.
func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "Method not allowed"})
		return
	}

	requestID := r.URL.Query().Get("requestId")
	if requestID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Missing requestId parameter"})
		return
	}

	rec, err := s.audit.TransferByRequestID(r.Context(), requestID)
	if err != nil {
		s.log.Error("Failed to load transfer", "requestId", requestID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to load transfer"})
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "Transfer not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"requestId": rec.RequestID,
		"recipient": rec.Recipient,
		"amount":    rec.Amount,
		"strategy":  rec.Strategy,
		"status":    rec.Status,
		"txHash":    rec.TxHash,
		"errorKind": rec.ErrorKind,
		"createdAt": rec.CreatedAt.Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// writeClaimError maps a service error onto the wire contract. Anything
// that is not a *ClaimError is an internal fault.
func (s *Server) writeClaimError(w http.ResponseWriter, err error) {
	var ce *ClaimError
	if !errors.As(err, &ce) {
		s.log.Error("Unclassified claim failure", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Transaction failed"})
		return
	}

	body := map[string]any{"error": ce.Message}
	if ce.Status == http.StatusTooManyRequests {
		body["remainingHours"] = ce.RemainingHours
	}
	if len(ce.Partial) > 0 {
		body["partialSuccess"] = ce.Partial
	}
	writeJSON(w, ce.Status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
