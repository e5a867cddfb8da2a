// Package requestreply answers correlated request messages with a single
// reply record, using the header conventions of Spring Kafka's
// ReplyingKafkaTemplate so JVM requesters interoperate.
package requestreply

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"valueconverting/internal/platform/kafka/consumer"
)

// Request/reply headers.
const (
	HeaderReplyTopic     = "kafka_replyTopic"
	HeaderReplyPartition = "kafka_replyPartition"
	HeaderCorrelationID  = "kafka_correlationId"
)

// ErrNoReplyTopic marks a request that cannot be answered.
var ErrNoReplyTopic = errors.New("request has no reply topic header")

// Producer is the subset of *kgo.Client used to send replies.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Func resolves a request into a reply value. A nil result is sent as a
// tombstone, the "no value" marker. An error suppresses the reply.
type Func[R, T any] func(ctx context.Context, req R) (*T, error)

// Listener decodes request payloads as JSON R, calls fn and publishes the
// JSON encoded *T to the requester's reply topic.
type Listener[R, T any] struct {
	producer Producer
	fn       Func[R, T]
	logger   *slog.Logger
}

// New creates a Listener.
func New[R, T any](producer Producer, fn Func[R, T], logger *slog.Logger) *Listener[R, T] {
	return &Listener[R, T]{producer: producer, fn: fn, logger: logger}
}

// Handle implements consumer.Handler. Any error means the request was skipped
// without a reply; the consumer logs it and moves on.
func (l *Listener[R, T]) Handle(ctx context.Context, msg *consumer.Message) error {
	replyTopic, ok := msg.Header(HeaderReplyTopic)
	if !ok || len(replyTopic) == 0 {
		return ErrNoReplyTopic
	}

	var req R
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return fmt.Errorf("decode request payload: %w", err)
	}

	result, err := l.fn(ctx, req)
	if err != nil {
		return fmt.Errorf("resolve request: %w", err)
	}

	reply, err := buildReply(msg, string(replyTopic), result)
	if err != nil {
		return err
	}
	if err := l.producer.ProduceSync(ctx, reply).FirstErr(); err != nil {
		return fmt.Errorf("produce reply to %s: %w", reply.Topic, err)
	}

	l.logger.DebugContext(ctx, "reply sent",
		"reply_topic", reply.Topic,
		"request_offset", msg.Offset,
		"empty", result == nil,
	)
	return nil
}

func buildReply[T any](msg *consumer.Message, replyTopic string, result *T) (*kgo.Record, error) {
	rec := &kgo.Record{
		Topic:     replyTopic,
		Key:       msg.Key,
		Partition: -1,
	}
	if raw, ok := msg.Header(HeaderReplyPartition); ok && len(raw) == 4 {
		rec.Partition = int32(binary.BigEndian.Uint32(raw))
	}
	if id, ok := msg.Header(HeaderCorrelationID); ok {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: HeaderCorrelationID, Value: id})
	}
	if result != nil {
		value, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("encode reply: %w", err)
		}
		rec.Value = value
	}
	return rec, nil
}
