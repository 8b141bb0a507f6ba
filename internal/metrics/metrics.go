package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appmodels "github.com/mixelka/gamebot/pkg/models"
)

// LaunchCounter counts recorded game launches per command
type LaunchCounter interface {
	CountLaunches(ctx context.Context, command appmodels.Command) (int64, error)
}

// Update results
const (
	ResultProcessed = "processed"
	ResultDuplicate = "duplicate"
	ResultRejected  = "rejected"
	ResultMalformed = "malformed"
)

// Reply statuses
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Metrics holds the bot's Prometheus collectors
type Metrics struct {
	registry *prometheus.Registry
	updates  *prometheus.CounterVec
	replies  *prometheus.CounterVec
}

// New creates collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamebot",
			Name:      "updates_total",
			Help:      "Webhook updates received, by result.",
		}, []string{"result"}),
		replies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamebot",
			Name:      "replies_total",
			Help:      "Game link replies, by command and status.",
		}, []string{"command", "status"}),
	}

	m.registry.MustRegister(
		m.updates,
		m.replies,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveUpdate counts a webhook update
func (m *Metrics) ObserveUpdate(result string) {
	m.updates.WithLabelValues(result).Inc()
}

// ObserveReply counts a reply attempt
func (m *Metrics) ObserveReply(command, status string) {
	m.replies.WithLabelValues(command, status).Inc()
}

// TrackLaunches exposes gamebot_launches{command} read from the launch log on each scrape
func (m *Metrics) TrackLaunches(counter LaunchCounter, logger *slog.Logger) {
	for _, cmd := range []appmodels.Command{appmodels.CommandStart, appmodels.CommandPlay} {
		m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   "gamebot",
			Name:        "launches",
			Help:        "Game links recorded in the launch log, by command.",
			ConstLabels: prometheus.Labels{"command": string(cmd)},
		}, func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			n, err := counter.CountLaunches(ctx, cmd)
			if err != nil {
				logger.Warn("failed to count launches", "error", err, "command", cmd)
				return 0
			}
			return float64(n)
		}))
	}
}

// Handler serves the registry in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
