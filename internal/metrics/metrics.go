// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"context"
	"errors"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Senpai outcomes.
const (
	SenpaiPosted           = "posted"
	SenpaiSkippedDisabled  = "skipped_disabled"
	SenpaiSkippedFrequency = "skipped_frequency"
	SenpaiFailed           = "failed"
)

var (
	RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crewchat_rpc_requests_total",
		Help: "RPCs handled, by procedure and connect code.",
	}, []string{"procedure", "code"})

	RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crewchat_rpc_duration_seconds",
		Help:    "RPC latency by procedure.",
		Buckets: prometheus.DefBuckets,
	}, []string{"procedure"})

	ReactionsAdded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crewchat_reactions_added_total",
		Help: "Reactions added, by emoji class (pin, trophy, other).",
	}, []string{"kind"})

	Pins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crewchat_pins_total",
		Help: "Messages pinned.",
	})

	Enshrinements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crewchat_hall_of_fame_enshrinements_total",
		Help: "Messages enshrined in a Hall of Fame.",
	})

	Settlements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crewchat_settlements_total",
		Help: "Settlement runs.",
	})

	BalanceRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crewchat_balance_rows_total",
		Help: "Balance rows written by settlement runs.",
	})

	SenpaiResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crewchat_senpai_responses_total",
		Help: "Senpai trigger outcomes.",
	}, []string{"trigger", "outcome"})

	ScheduledTriggers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crewchat_senpai_scheduled_triggers_total",
		Help: "Senpai triggers handed to the queue.",
	}, []string{"trigger"})

	ArchivedChannels = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crewchat_archived_event_channels_total",
		Help: "Event channels archived by the daily sweep.",
	})
)

// NewInterceptor records RPC counts and latency.
func NewInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			procedure := req.Spec().Procedure
			RPCDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
			RPCRequests.WithLabelValues(procedure, codeOf(err)).Inc()
			return resp, err
		}
	}
}

func codeOf(err error) string {
	if err == nil {
		return "ok"
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr.Code().String()
	}
	return connect.CodeUnknown.String()
}
