// Package transfer implements the queued mint pipeline: a FIFO
// scheduler with a single serial worker, an ordered chain of
// submission strategies, and a bounded confirmation poller.
package transfer

import (
	"context"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/sabdarana/faucet/internal/core/domain"
	"github.com/sabdarana/faucet/internal/metrics"
)

// Executor runs a single transfer to completion.
type Executor interface {
	Execute(ctx context.Context, recipient string, amount *big.Int) domain.SubmissionResult
}

// SchedulerConfig holds scheduler settings.
type SchedulerConfig struct {
	// InterRequestPause is the fixed delay between processed requests,
	// protecting the downstream node from back-to-back submissions.
	InterRequestPause time.Duration

	// OnResult, if set, is called after each request completes.
	OnResult func(req *domain.TransferRequest, res domain.SubmissionResult)
}

// Scheduler is a FIFO queue of transfer requests drained by a single
// serial worker. Enqueue is safe under concurrent callers; only the
// worker dequeues, and at most one request is in flight at a time.
type Scheduler struct {
	executor Executor
	cfg      SchedulerConfig
	log      *slog.Logger

	mu         sync.Mutex
	queue      []*domain.TransferRequest
	processing bool
	ctx        context.Context
}

// NewScheduler creates a scheduler. The worker runs under ctx: delays
// and pauses abort when ctx is cancelled.
func NewScheduler(ctx context.Context, executor Executor, cfg SchedulerConfig) *Scheduler {
	if cfg.InterRequestPause == 0 {
		cfg.InterRequestPause = 1 * time.Second
	}
	return &Scheduler{
		executor: executor,
		cfg:      cfg,
		log:      slog.Default(),
		ctx:      ctx,
	}
}

// Enqueue appends a transfer request and returns its generated id
// immediately. The worker is activated if it is not already running;
// activation is idempotent, so concurrent enqueues never spawn a
// second worker.
func (s *Scheduler) Enqueue(amount *big.Int, recipient string, delay time.Duration) string {
	req := domain.NewTransferRequest(recipient, amount, delay)

	s.mu.Lock()
	s.queue = append(s.queue, req)
	depth := len(s.queue)
	activate := !s.processing
	if activate {
		s.processing = true
	}
	s.mu.Unlock()

	metrics.QueueDepth.Set(float64(depth))
	s.log.Debug("Transfer enqueued", "id", req.ID, "recipient", req.Recipient, "delay", delay)

	if activate {
		go s.drain()
	}
	return req.ID
}

// QueueLength returns the number of requests waiting to be processed.
func (s *Scheduler) QueueLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Clear discards all not-yet-processed requests. A request already
// handed to the executor is not affected.
func (s *Scheduler) Clear() {
	s.mu.Lock()
	n := len(s.queue)
	s.queue = nil
	s.mu.Unlock()

	metrics.QueueDepth.Set(0)
	if n > 0 {
		s.log.Info("Transfer queue cleared", "dropped", n)
	}
}

// drain processes the queue front-to-back and deactivates when empty.
// Runs on its own goroutine; at most one drain is active at a time.
func (s *Scheduler) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 || s.ctx.Err() != nil {
			s.processing = false
			s.mu.Unlock()
			return
		}
		req := s.queue[0]
		s.queue = s.queue[1:]
		depth := len(s.queue)
		s.mu.Unlock()

		metrics.QueueDepth.Set(float64(depth))

		if req.EnqueueDelay > 0 {
			if !s.sleep(req.EnqueueDelay) {
				continue // cancelled; loop exits on next iteration
			}
		}

		res := s.executor.Execute(s.ctx, req.Recipient, req.Amount)

		status := domain.TxStatusSuccess
		if !res.Success {
			status = domain.TxStatusFailed
		}
		metrics.TransfersTotal.WithLabelValues("WDC", string(status)).Inc()

		if res.Success {
			s.log.Info("Transfer completed", "id", req.ID, "hash", res.TxHash, "strategy", res.Strategy)
		} else {
			s.log.Error("Transfer failed", "id", req.ID, "errorKind", res.ErrorKind)
		}

		if s.cfg.OnResult != nil {
			s.cfg.OnResult(req, res)
		}

		s.sleep(s.cfg.InterRequestPause)
	}
}

// sleep waits for d or until shutdown; reports whether the full wait
// elapsed.
func (s *Scheduler) sleep(d time.Duration) bool {
	select {
	case <-s.ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
