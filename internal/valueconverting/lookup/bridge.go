// Package lookup serves ValueConverting records over broker request/reply.
// Requests carry a record id; replies carry the record or a tombstone.
package lookup

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"valueconverting/internal/platform/config"
	"valueconverting/internal/platform/kafka"
	"valueconverting/internal/platform/kafka/consumer"
	"valueconverting/internal/platform/kafka/requestreply"
	"valueconverting/internal/valueconverting/metrics"
	"valueconverting/internal/valueconverting/models"
)

const (
	Resource  = "value-converting"
	Parameter = "value-converting-id"
	Retention = 5 * time.Minute
)

// Finder loads a record by id, reporting absence through found.
type Finder interface {
	FindRecord(ctx context.Context, id int64) (*models.ValueConverting, bool, error)
}

// Bridge is the consumer.Handler for the request topic.
type Bridge struct {
	finder   Finder
	listener *requestreply.Listener[int64, models.ValueConverting]
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// NewBridge wires finder to producer. Replies are produced synchronously
// before the request offset is marked.
func NewBridge(finder Finder, producer requestreply.Producer, logger *slog.Logger, m *metrics.Metrics) *Bridge {
	b := &Bridge{
		finder:  finder,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("valueconverting/lookup"),
	}
	b.listener = requestreply.New[int64, models.ValueConverting](producer, b.Lookup, logger)
	return b
}

// TopicSpec describes the request topic for cfg.
func TopicSpec(cfg config.Kafka) kafka.TopicSpec {
	return kafka.TopicSpec{
		Name:              kafka.RequestTopicName(cfg.OrgID, cfg.DomainContext, Resource, Parameter),
		Partitions:        cfg.RequestTopicPartitions,
		ReplicationFactor: cfg.RequestTopicReplication,
		Retention:         Retention,
	}
}

// Provision ensures the request topic exists and returns its name.
func Provision(ctx context.Context, admin kafka.TopicAdmin, cfg config.Kafka, logger *slog.Logger) (string, error) {
	spec := TopicSpec(cfg)
	created, err := kafka.EnsureTopic(ctx, admin, spec)
	if err != nil {
		return "", err
	}
	logger.InfoContext(ctx, "request topic ready",
		"topic", spec.Name,
		"created", created,
		"retention", spec.Retention.String(),
	)
	return spec.Name, nil
}

// Lookup returns the record for id, or nil when there is none. Store errors
// are returned unchanged so the request is skipped without a reply.
func (b *Bridge) Lookup(ctx context.Context, id int64) (*models.ValueConverting, error) {
	ctx, span := b.tracer.Start(ctx, "valueconverting.lookup", trace.WithAttributes(attribute.Int64("id", id)))
	defer span.End()

	vc, found, err := b.finder.FindRecord(ctx, id)
	switch {
	case err != nil:
		b.metrics.IncrementLookup(metrics.SourceBroker, metrics.OutcomeError)
		return nil, err
	case !found:
		b.metrics.IncrementLookup(metrics.SourceBroker, metrics.OutcomeMiss)
		return nil, nil
	}
	b.metrics.IncrementLookup(metrics.SourceBroker, metrics.OutcomeHit)
	return vc, nil
}

// Handle answers one request message. Failures are counted as skipped and
// returned for the consumer to log; they are never retried.
func (b *Bridge) Handle(ctx context.Context, msg *consumer.Message) error {
	start := time.Now()
	if err := b.listener.Handle(ctx, msg); err != nil {
		b.metrics.IncrementLookup(metrics.SourceBroker, metrics.OutcomeSkipped)
		return err
	}
	b.metrics.ObserveReplyLatency(time.Since(start))
	return nil
}
