package lookup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"valueconverting/internal/platform/config"
	"valueconverting/internal/platform/kafka/consumer"
	"valueconverting/internal/platform/kafka/requestreply"
	"valueconverting/internal/valueconverting/metrics"
	"valueconverting/internal/valueconverting/models"
	tu "valueconverting/pkg/testutil"
)

type stubFinder struct {
	records map[int64]models.ValueConverting
	err     error
}

func (f stubFinder) FindRecord(_ context.Context, id int64) (*models.ValueConverting, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	vc, ok := f.records[id]
	if !ok {
		return nil, false, nil
	}
	return &vc, true, nil
}

type recordingProducer struct {
	records []*kgo.Record
}

func (p *recordingProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	p.records = append(p.records, rs...)
	out := make(kgo.ProduceResults, len(rs))
	for i, r := range rs {
		out[i] = kgo.ProduceResult{Record: r}
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func requestFor(id string) *consumer.Message {
	return &consumer.Message{
		Topic: "fintlabs-no.flyt.request.value-converting.by.value-converting-id",
		Value: []byte(id),
		Headers: map[string][]byte{
			requestreply.HeaderReplyTopic:    []byte("replies"),
			requestreply.HeaderCorrelationID: []byte("c-1"),
		},
	}
}

func TestBridge(t *testing.T) {
	finder := stubFinder{records: map[int64]models.ValueConverting{
		1: {ID: 1, DisplayName: "Status", FromApplicationID: 1, FromTypeID: "a", ToApplicationID: "b", ToTypeID: "c",
			ConvertingMap: map[string]string{"A": "1"}},
	}}

	tu.Given(t, "a stored record", func(t *testing.T) {
		tu.When(t, "it is requested", func(t *testing.T) {
			m := metrics.New(prometheus.NewRegistry())
			p := &recordingProducer{}
			require.NoError(t, NewBridge(finder, p, discardLogger(), m).Handle(context.Background(), requestFor("1")))

			tu.Then(t, "the raw record is replied without its id", func(t *testing.T) {
				require.Len(t, p.records, 1)
				assert.JSONEq(t, `{"displayName":"Status","fromApplicationId":1,"fromTypeId":"a",
					"toApplicationId":"b","toTypeId":"c","convertingMap":{"A":"1"}}`, string(p.records[0].Value))
				assert.Equal(t, 1.0, testutil.ToFloat64(m.Lookups.WithLabelValues(metrics.SourceBroker, metrics.OutcomeHit)))
			})
		})
	})

	tu.Given(t, "no record with the id", func(t *testing.T) {
		m := metrics.New(prometheus.NewRegistry())
		p := &recordingProducer{}
		require.NoError(t, NewBridge(finder, p, discardLogger(), m).Handle(context.Background(), requestFor("999")))

		tu.Then(t, "the reply carries the absent marker", func(t *testing.T) {
			require.Len(t, p.records, 1)
			assert.Nil(t, p.records[0].Value)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.Lookups.WithLabelValues(metrics.SourceBroker, metrics.OutcomeMiss)))
		})
	})

	tu.Given(t, "a failing store", func(t *testing.T) {
		m := metrics.New(prometheus.NewRegistry())
		p := &recordingProducer{}
		err := NewBridge(stubFinder{err: errors.New("db down")}, p, discardLogger(), m).
			Handle(context.Background(), requestFor("1"))

		tu.Then(t, "the request is skipped without a reply", func(t *testing.T) {
			assert.Error(t, err)
			assert.Empty(t, p.records)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.Lookups.WithLabelValues(metrics.SourceBroker, metrics.OutcomeSkipped)))
		})
	})
}

type fakeAdmin struct {
	topic string
}

func (f *fakeAdmin) CreateTopic(_ context.Context, _ int32, _ int16, _ map[string]*string, topic string) (kadm.CreateTopicResponse, error) {
	f.topic = topic
	return kadm.CreateTopicResponse{Topic: topic}, nil
}

func (f *fakeAdmin) AlterTopicConfigs(context.Context, []kadm.AlterConfig, ...string) (kadm.AlterConfigsResponses, error) {
	return nil, nil
}

func TestProvision(t *testing.T) {
	admin := &fakeAdmin{}
	cfg := config.Kafka{OrgID: "fintlabs.no", DomainContext: "flyt", RequestTopicPartitions: -1, RequestTopicReplication: -1}

	name, err := Provision(context.Background(), admin, cfg, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, "fintlabs-no.flyt.request.value-converting.by.value-converting-id", name)
	assert.Equal(t, name, admin.topic)
}
