package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementLookup(SourceBroker, OutcomeHit)
	m.IncrementLookup(SourceBroker, OutcomeHit)
	m.IncrementLookup(SourceHTTP, OutcomeMiss)
	m.IncrementCache("hit")
	m.IncrementSaves()
	m.ObserveReplyLatency(5 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Lookups.WithLabelValues(SourceBroker, OutcomeHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Lookups.WithLabelValues(SourceHTTP, OutcomeMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Saves))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ReplyLatency))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementLookup(SourceHTTP, OutcomeError)
		m.IncrementCache("miss")
		m.IncrementSaves()
		m.ObserveReplyLatency(time.Second)
	})
}
