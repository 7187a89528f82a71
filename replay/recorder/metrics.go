package recorder

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Fidelio-foundation/Fidelio/replay"
)

// Metrics counts the actions flowing through the listener. All
// collectors are registered on construction; pass a private registry
// in tests to avoid collisions on the default one.
type Metrics struct {
	actions      *prometheus.CounterVec
	blocks       prometheus.Counter
	lastBlock    prometheus.Gauge
	payloadSizes prometheus.Histogram
}

// NewMetrics creates the recorder and registers its collectors. A nil
// registerer selects the process-wide default registry.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fidelio",
				Name:      "context_actions_total",
				Help:      "Number of context actions processed, by kind.",
			},
			[]string{"kind"},
		),
		blocks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "fidelio",
				Name:      "blocks_committed_total",
				Help:      "Number of block commits processed.",
			},
		),
		lastBlock: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "fidelio",
				Name:      "last_block_timestamp_seconds",
				Help:      "Timestamp of the most recently committed block.",
			},
		),
		payloadSizes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "fidelio",
				Name:      "context_action_value_bytes",
				Help:      "Size distribution of values carried by set actions.",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
		),
	}
	for _, collector := range []prometheus.Collector{m.actions, m.blocks, m.lastBlock, m.payloadSizes} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Record(action *replay.Action) error {
	m.actions.WithLabelValues(string(action.Kind)).Inc()
	switch action.Kind {
	case replay.KindSet:
		m.payloadSizes.Observe(float64(len(action.Value)))
	case replay.KindCommit:
		if action.BlockHash != nil {
			m.blocks.Inc()
			m.lastBlock.Set(float64(action.Date))
		}
	}
	return nil
}

func (m *Metrics) Close() error { return nil }
