package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClaimsTotal tracks faucet claims by outcome
	ClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faucet_claims_total",
			Help: "Total number of faucet claims",
		},
		[]string{"status"},
	)

	// TransfersTotal tracks executed transfers by type and outcome
	TransfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faucet_transfers_total",
			Help: "Total number of transfers executed",
		},
		[]string{"type", "status"},
	)

	// QueueDepth tracks the pending transfer queue length
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "faucet_queue_depth",
			Help: "Number of transfer requests waiting in the scheduler queue",
		},
	)

	// ConfirmationSeconds tracks time spent waiting for settlement
	ConfirmationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "faucet_confirmation_seconds",
			Help:    "Time from submission to terminal confirmation status",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
		},
	)

	// RPCCallsTotal tracks RPC calls per provider
	RPCCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faucet_rpc_calls_total",
			Help: "Total number of RPC calls",
		},
		[]string{"provider", "method"},
	)

	// RPCErrorsTotal tracks RPC errors per provider
	RPCErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faucet_rpc_errors_total",
			Help: "Total number of RPC errors",
		},
		[]string{"provider", "method"},
	)

	// RPCLatency tracks RPC call latency
	RPCLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "faucet_rpc_latency_seconds",
			Help:    "RPC call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "method"},
	)

	// CooldownRejections tracks claims rejected by the cooldown ledger
	CooldownRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "faucet_cooldown_rejections_total",
			Help: "Claims rejected because the cooldown window has not elapsed",
		},
	)
)
