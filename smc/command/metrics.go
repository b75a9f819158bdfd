package command

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// commandsTotal counts commands by operation and outcome status.
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smckit",
		Subsystem: "command",
		Name:      "requests_total",
		Help:      "Commands handled by operation and status",
	}, []string{"op", "status"})

	// commandLatency measures time spent handling commands, provider reads
	// included.
	commandLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "smckit",
		Subsystem: "command",
		Name:      "duration_seconds",
		Help:      "Command handling latency in seconds",
		Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
	}, []string{"op"})
)

// observe records one command and returns its status.
func observe(op string, start time.Time, err error) Status {
	st := StatusOf(err)
	commandsTotal.WithLabelValues(op, st.String()).Inc()
	commandLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	return st
}
