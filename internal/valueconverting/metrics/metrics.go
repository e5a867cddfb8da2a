package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup outcomes.
const (
	OutcomeHit     = "hit"
	OutcomeMiss    = "miss"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Lookup sources.
const (
	SourceHTTP   = "http"
	SourceBroker = "broker"
)

// Metrics provides observability for the value converting module.
type Metrics struct {
	// Point lookups by entry point and outcome
	Lookups *prometheus.CounterVec

	// Broker round trip from request receipt to reply produced
	ReplyLatency prometheus.Histogram

	// Cache hits and misses on the read-through cache
	CacheRequests *prometheus.CounterVec

	// Saved records
	Saves prometheus.Counter
}

// New creates a Metrics instance registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Lookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "value_converting_lookups_total",
			Help: "Total point lookups by source and outcome",
		}, []string{"source", "outcome"}),

		ReplyLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "value_converting_broker_reply_duration_seconds",
			Help:    "Duration from receiving a broker lookup request to producing its reply",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		CacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "value_converting_cache_requests_total",
			Help: "Read-through cache lookups by result",
		}, []string{"result"}), // result: "hit", "miss", "error"

		Saves: f.NewCounter(prometheus.CounterOpts{
			Name: "value_converting_saves_total",
			Help: "Total records saved",
		}),
	}
}

// IncrementLookup records a point lookup outcome.
func (m *Metrics) IncrementLookup(source, outcome string) {
	if m != nil {
		m.Lookups.WithLabelValues(source, outcome).Inc()
	}
}

// ObserveReplyLatency records one broker request/reply round.
func (m *Metrics) ObserveReplyLatency(d time.Duration) {
	if m != nil {
		m.ReplyLatency.Observe(d.Seconds())
	}
}

// IncrementCache records a cache result.
func (m *Metrics) IncrementCache(result string) {
	if m != nil {
		m.CacheRequests.WithLabelValues(result).Inc()
	}
}

// IncrementSaves counts a saved record.
func (m *Metrics) IncrementSaves() {
	if m != nil {
		m.Saves.Inc()
	}
}
