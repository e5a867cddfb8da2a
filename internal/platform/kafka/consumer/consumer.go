// Package consumer runs a group consumer that hands every assigned partition
// to its own worker goroutine. Records within a partition are processed in
// order; partitions are processed in parallel.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Message is a consumed record, detached from the client library.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string][]byte
	Timestamp time.Time
}

// Header returns the value of header key. When a key repeats the last value wins.
func (m *Message) Header(key string) ([]byte, bool) {
	v, ok := m.Headers[key]
	return v, ok
}

// Handler processes one message. A returned error is logged and the message
// is skipped; it is never redelivered.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg *Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg *Message) error {
	return f(ctx, msg)
}

// Config describes the subscription.
type Config struct {
	Group  string
	Topics []string
	// ClientOptions are base options such as seed brokers.
	ClientOptions []kgo.Opt
}

type topicPartition struct {
	topic     string
	partition int32
}

// Consumer owns one franz-go group client.
type Consumer struct {
	client  *kgo.Client
	handler Handler
	logger  *slog.Logger

	closeOnce sync.Once

	mu sync.Mutex
	// ctx is handed to partition workers; set by Run.
	ctx     context.Context
	workers map[topicPartition]*partitionWorker
}

// New builds the consumer. Nothing is fetched until Run is called.
func New(cfg Config, handler Handler, logger *slog.Logger) (*Consumer, error) {
	c := &Consumer{
		handler: handler,
		logger:  logger,
		ctx:     context.Background(),
		workers: make(map[topicPartition]*partitionWorker),
	}

	opts := append([]kgo.Opt{}, cfg.ClientOptions...)
	opts = append(opts,
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(cfg.Topics...),
		kgo.OnPartitionsAssigned(c.assigned),
		kgo.OnPartitionsRevoked(c.revoked),
		kgo.OnPartitionsLost(c.lost),
		kgo.AutoCommitMarks(),
		kgo.BlockRebalanceOnPoll(),
	)
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create consumer client: %w", err)
	}
	c.client = client
	return c, nil
}

// Run polls until ctx is cancelled or the client is closed. On return the
// client has left the group and committed every processed offset.
func (c *Consumer) Run(ctx context.Context) error {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()
	defer c.Close()

	for {
		fetches := c.client.PollRecords(ctx, 500)
		if fetches.IsClientClosed() {
			return nil
		}
		if ctx.Err() != nil {
			c.client.AllowRebalance()
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			if errors.Is(err, context.Canceled) {
				return
			}
			c.logger.ErrorContext(ctx, "fetch failed",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})
		fetches.EachPartition(func(p kgo.FetchTopicPartition) {
			if len(p.Records) == 0 {
				return
			}
			c.mu.Lock()
			w := c.workers[topicPartition{p.Topic, p.Partition}]
			c.mu.Unlock()
			if w == nil {
				return
			}
			w.records <- p.Records
		})
		c.client.AllowRebalance()
	}
}

// Close leaves the group. Run returns shortly after.
func (c *Consumer) Close() {
	c.closeOnce.Do(c.client.Close)
}

func (c *Consumer) assigned(_ context.Context, cl *kgo.Client, assigned map[string][]int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for topic, partitions := range assigned {
		for _, partition := range partitions {
			w := &partitionWorker{
				consumer:  c,
				client:    cl,
				topic:     topic,
				partition: partition,
				quit:      make(chan struct{}),
				done:      make(chan struct{}),
				records:   make(chan []*kgo.Record, 5),
			}
			c.workers[topicPartition{topic, partition}] = w
			go w.run(c.ctx)
		}
	}
	c.logger.Info("partitions assigned", "partitions", assigned)
}

func (c *Consumer) revoked(ctx context.Context, cl *kgo.Client, revoked map[string][]int32) {
	c.stopWorkers(revoked)
	if err := cl.CommitMarkedOffsets(ctx); err != nil {
		c.logger.ErrorContext(ctx, "commit on revoke failed", "error", err)
	}
	c.logger.Info("partitions revoked", "partitions", revoked)
}

func (c *Consumer) lost(_ context.Context, _ *kgo.Client, lost map[string][]int32) {
	c.stopWorkers(lost)
	c.logger.Warn("partitions lost", "partitions", lost)
}

func (c *Consumer) stopWorkers(partitions map[string][]int32) {
	c.mu.Lock()
	var stopping []*partitionWorker
	for topic, ps := range partitions {
		for _, partition := range ps {
			tp := topicPartition{topic, partition}
			if w, ok := c.workers[tp]; ok {
				delete(c.workers, tp)
				close(w.quit)
				stopping = append(stopping, w)
			}
		}
	}
	c.mu.Unlock()

	for _, w := range stopping {
		<-w.done
	}
}

type partitionWorker struct {
	consumer  *Consumer
	client    *kgo.Client
	topic     string
	partition int32

	quit    chan struct{}
	done    chan struct{}
	records chan []*kgo.Record
}

func (w *partitionWorker) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-w.quit:
			return
		case batch := <-w.records:
			for _, rec := range batch {
				w.process(ctx, rec)
			}
		}
	}
}

func (w *partitionWorker) process(ctx context.Context, rec *kgo.Record) {
	msg := FromRecord(rec)
	if err := w.consumer.handler.Handle(ctx, msg); err != nil {
		w.consumer.logger.ErrorContext(ctx, "skipping message after handler failure",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
	}
	w.client.MarkCommitRecords(rec)
}

// FromRecord converts a franz-go record into a Message.
func FromRecord(rec *kgo.Record) *Message {
	headers := make(map[string][]byte, len(rec.Headers))
	for _, h := range rec.Headers {
		headers[h.Key] = h.Value
	}
	return &Message{
		Topic:     rec.Topic,
		Partition: rec.Partition,
		Offset:    rec.Offset,
		Key:       rec.Key,
		Value:     rec.Value,
		Headers:   headers,
		Timestamp: rec.Timestamp,
	}
}
