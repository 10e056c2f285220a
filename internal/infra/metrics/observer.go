package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"nova-assistant/internal/application"
)

const noAction = "none"

// Observer records every assistant cycle as Prometheus metrics.
type Observer struct {
	cycles   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewObserver registers the cycle metrics on reg.
func NewObserver(reg prometheus.Registerer) *Observer {
	factory := promauto.With(reg)
	return &Observer{
		cycles: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nova_cycles_total",
			Help: "Assistant cycles by outcome and recognized action",
		}, []string{"outcome", "action"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nova_cycle_duration_seconds",
			Help:    "Time from wake to notification",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
}

func (o *Observer) Observe(_ context.Context, report application.CycleReport) {
	action := noAction
	if report.Recognized() {
		action = string(report.Command.Action)
	}
	outcome := string(report.Outcome)

	o.cycles.WithLabelValues(outcome, action).Inc()
	o.duration.WithLabelValues(outcome).Observe(report.Duration.Seconds())
}
