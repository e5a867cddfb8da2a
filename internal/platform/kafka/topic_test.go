package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
)

type fakeAdmin struct {
	createErr   error
	alterErr    error
	alterResp   kadm.AlterConfigsResponses
	created     map[string]*string
	partitions  int32
	replication int16
	altered     []kadm.AlterConfig
}

func (f *fakeAdmin) CreateTopic(_ context.Context, partitions int32, replicationFactor int16, configs map[string]*string, topic string) (kadm.CreateTopicResponse, error) {
	f.created = configs
	f.partitions = partitions
	f.replication = replicationFactor
	return kadm.CreateTopicResponse{Topic: topic, Err: f.createErr}, nil
}

func (f *fakeAdmin) AlterTopicConfigs(_ context.Context, configs []kadm.AlterConfig, _ ...string) (kadm.AlterConfigsResponses, error) {
	f.altered = configs
	return f.alterResp, f.alterErr
}

func TestRequestTopicName(t *testing.T) {
	assert.Equal(t,
		"fintlabs-no.flyt.request.value-converting.by.value-converting-id",
		RequestTopicName("fintlabs.no", "flyt", "value-converting", "value-converting-id"))
}

func TestEnsureTopic(t *testing.T) {
	spec := TopicSpec{Name: "t", Partitions: -1, ReplicationFactor: -1, Retention: 5 * time.Minute}

	t.Run("creates a missing topic with retention", func(t *testing.T) {
		admin := &fakeAdmin{}
		created, err := EnsureTopic(context.Background(), admin, spec)
		require.NoError(t, err)
		assert.True(t, created)
		require.Contains(t, admin.created, "retention.ms")
		assert.Equal(t, "300000", *admin.created["retention.ms"])
		assert.Equal(t, int32(-1), admin.partitions)
		assert.Nil(t, admin.altered)
	})

	t.Run("reconciles retention of an existing topic", func(t *testing.T) {
		admin := &fakeAdmin{createErr: kerr.TopicAlreadyExists}
		created, err := EnsureTopic(context.Background(), admin, spec)
		require.NoError(t, err)
		assert.False(t, created)
		require.Len(t, admin.altered, 1)
		assert.Equal(t, kadm.SetConfig, admin.altered[0].Op)
		assert.Equal(t, "retention.ms", admin.altered[0].Name)
		assert.Equal(t, "300000", *admin.altered[0].Value)
	})

	t.Run("create failure", func(t *testing.T) {
		admin := &fakeAdmin{createErr: kerr.TopicAuthorizationFailed}
		_, err := EnsureTopic(context.Background(), admin, spec)
		require.Error(t, err)
		assert.ErrorIs(t, err, kerr.TopicAuthorizationFailed)
	})

	t.Run("per-topic alter failure", func(t *testing.T) {
		admin := &fakeAdmin{
			createErr: kerr.TopicAlreadyExists,
			alterResp: kadm.AlterConfigsResponses{{Name: "t", Err: errors.New("denied")}},
		}
		_, err := EnsureTopic(context.Background(), admin, spec)
		assert.ErrorContains(t, err, "denied")
	})
}
