package enumerate

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/2767mr/duccipaths/internal/ducci"
)

const metricsNamespace = "duccipaths"

// Metrics records per-search counters. The zero value is not usable; create
// with NewMetrics. A nil *Metrics records nothing.
type Metrics struct {
	StatesTotal prometheus.Counter
	LeavesTotal *prometheus.CounterVec
	SearchNodes prometheus.Histogram
	SearchDepth prometheus.Histogram
	ErrorsTotal *prometheus.CounterVec
}

// NewMetrics registers the enumerator metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		StatesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "states_total",
			Help:      "Starting quadruples searched",
		}),
		LeavesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "leaves_total",
			Help:      "Terminal states recorded by convergence kind",
		}, []string{"convergence"}),
		SearchNodes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "search_nodes",
			Help:      "States stepped per starting quadruple",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 12),
		}),
		SearchDepth: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "search_depth",
			Help:      "Deepest swap branch per starting quadruple",
			Buckets:   prometheus.LinearBuckets(0, 2, 16),
		}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "search_errors_total",
			Help:      "Searches aborted by reason",
		}, []string{"reason"}),
	}
}

func (m *Metrics) observe(results []ducci.PathResult, stats ducci.Stats) {
	if m == nil {
		return
	}
	m.StatesTotal.Inc()
	m.SearchNodes.Observe(float64(stats.Nodes))
	m.SearchDepth.Observe(float64(stats.MaxDepth))
	for _, r := range results {
		m.LeavesTotal.WithLabelValues(r.Terminal.Classify().String()).Inc()
	}
}

func (m *Metrics) failed(err error) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorReason(err)).Inc()
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, ducci.ErrDepthExceeded):
		return "depth"
	case errors.Is(err, ducci.ErrNodeLimit):
		return "nodes"
	case errors.Is(err, ducci.ErrOverflow):
		return "overflow"
	case errors.Is(err, ducci.ErrInvariant):
		return "invariant"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "sink"
}

// WriteTextfile dumps every metric gathered by g in the node exporter
// textfile format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
