package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Delivery paths.
const (
	PathAllBroadcast     = "all_broadcast"
	PathPremiumBroadcast = "premium_broadcast"
	PathRelay            = "relay"
	PathReply            = "reply"
	PathInvite           = "invite"
)

// Results.
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
)

var (
	// DeliveriesTotal counts outbound messages by path and result.
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "premium_bot_deliveries_total",
			Help: "Total number of outbound message deliveries",
		},
		[]string{"path", "result"},
	)

	// BroadcastRecipients counts broadcast recipients by broadcast type and result.
	BroadcastRecipients = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "premium_bot_broadcast_recipients_total",
			Help: "Total number of broadcast recipients by outcome",
		},
		[]string{"path", "result"},
	)

	BroadcastDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "premium_bot_broadcast_duration_seconds",
			Help:    "Duration of broadcast fan-outs",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"path"},
	)

	// InvitesTotal counts channel invitation outcomes.
	InvitesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "premium_bot_invites_total",
			Help: "Total number of channel invitation attempts by outcome",
		},
		[]string{"result"},
	)

	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "premium_bot_updates_total",
			Help: "Total number of processed Telegram updates",
		},
		[]string{"type"},
	)

	HandlerErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "premium_bot_handler_errors_total",
		Help: "Total number of handler errors",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "premium_bot_broadcast_sessions_active",
		Help: "Number of broadcast sessions currently collecting messages",
	})
)

// Delivery records one outbound delivery on path.
func Delivery(path string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailed
	}
	DeliveriesTotal.WithLabelValues(path, result).Inc()
}
