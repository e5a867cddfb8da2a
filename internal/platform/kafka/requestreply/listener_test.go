package requestreply

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"valueconverting/internal/platform/kafka/consumer"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.records = append(f.records, rs...)
	results := make(kgo.ProduceResults, len(rs))
	for i, r := range rs {
		results[i] = kgo.ProduceResult{Record: r, Err: f.err}
	}
	return results
}

type reply struct {
	Name string `json:"name"`
}

func lookup(_ context.Context, id int64) (*reply, error) {
	switch id {
	case 1:
		return &reply{Name: "one"}, nil
	case 13:
		return nil, errors.New("store down")
	default:
		return nil, nil
	}
}

func newListener(p Producer) *Listener[int64, reply] {
	return New[int64, reply](p, lookup, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func request(value string, headers map[string][]byte) *consumer.Message {
	return &consumer.Message{Topic: "requests", Value: []byte(value), Headers: headers}
}

func TestListenerReplies(t *testing.T) {
	partition := make([]byte, 4)
	binary.BigEndian.PutUint32(partition, 2)

	t.Run("hit is encoded and correlated", func(t *testing.T) {
		p := &fakeProducer{}
		err := newListener(p).Handle(context.Background(), request("1", map[string][]byte{
			HeaderReplyTopic:     []byte("replies"),
			HeaderCorrelationID:  []byte("corr-1"),
			HeaderReplyPartition: partition,
		}))
		require.NoError(t, err)
		require.Len(t, p.records, 1)

		rec := p.records[0]
		assert.Equal(t, "replies", rec.Topic)
		assert.Equal(t, int32(2), rec.Partition)
		assert.JSONEq(t, `{"name":"one"}`, string(rec.Value))
		require.Len(t, rec.Headers, 1)
		assert.Equal(t, HeaderCorrelationID, rec.Headers[0].Key)
		assert.Equal(t, "corr-1", string(rec.Headers[0].Value))
	})

	t.Run("miss is a tombstone", func(t *testing.T) {
		p := &fakeProducer{}
		err := newListener(p).Handle(context.Background(), request("999", map[string][]byte{
			HeaderReplyTopic: []byte("replies"),
		}))
		require.NoError(t, err)
		require.Len(t, p.records, 1)
		assert.Nil(t, p.records[0].Value)
		assert.Equal(t, int32(-1), p.records[0].Partition)
	})
}

func TestListenerSkips(t *testing.T) {
	t.Run("no reply topic", func(t *testing.T) {
		p := &fakeProducer{}
		err := newListener(p).Handle(context.Background(), request("1", nil))
		assert.ErrorIs(t, err, ErrNoReplyTopic)
		assert.Empty(t, p.records)
	})

	t.Run("undecodable payload", func(t *testing.T) {
		p := &fakeProducer{}
		err := newListener(p).Handle(context.Background(), request(`"abc"`, map[string][]byte{HeaderReplyTopic: []byte("r")}))
		assert.Error(t, err)
		assert.Empty(t, p.records)
	})

	t.Run("lookup failure sends nothing", func(t *testing.T) {
		p := &fakeProducer{}
		err := newListener(p).Handle(context.Background(), request("13", map[string][]byte{HeaderReplyTopic: []byte("r")}))
		assert.ErrorContains(t, err, "store down")
		assert.Empty(t, p.records)
	})

	t.Run("produce failure is reported", func(t *testing.T) {
		p := &fakeProducer{err: errors.New("broker unavailable")}
		err := newListener(p).Handle(context.Background(), request("1", map[string][]byte{HeaderReplyTopic: []byte("r")}))
		assert.ErrorContains(t, err, "broker unavailable")
	})
}

func TestReplyPartitioner(t *testing.T) {
	tp := ReplyPartitioner().ForTopic("replies")

	assert.Equal(t, 3, tp.Partition(&kgo.Record{Partition: 3}, 6))

	rec := &kgo.Record{Partition: -1, Headers: []kgo.RecordHeader{{Key: HeaderCorrelationID, Value: []byte("abc")}}}
	first := tp.Partition(rec, 6)
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, 6)
	assert.Equal(t, first, tp.Partition(rec, 6), "hashing is stable")
}
