package kafka

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
)

const retentionConfig = "retention.ms"

// TopicAdmin is the subset of *kadm.Client used for provisioning.
type TopicAdmin interface {
	CreateTopic(ctx context.Context, partitions int32, replicationFactor int16, configs map[string]*string, topic string) (kadm.CreateTopicResponse, error)
	AlterTopicConfigs(ctx context.Context, configs []kadm.AlterConfig, topics ...string) (kadm.AlterConfigsResponses, error)
}

// RequestTopicName builds "<org>.<domain>.request.<resource>.by.<parameter>".
// Dots in the organisation id become dashes so it stays a single segment.
func RequestTopicName(orgID, domainContext, resource, parameter string) string {
	return strings.Join([]string{
		strings.ReplaceAll(orgID, ".", "-"),
		domainContext,
		"request",
		resource,
		"by",
		parameter,
	}, ".")
}

// TopicSpec describes a topic to provision. Partitions and ReplicationFactor
// of -1 defer to the broker defaults.
type TopicSpec struct {
	Name              string
	Partitions        int32
	ReplicationFactor int16
	Retention         time.Duration
}

// EnsureTopic creates the topic with its retention, or, when it already
// exists, sets only the retention and leaves every other setting untouched.
// It is safe to call repeatedly. created reports which path was taken.
func EnsureTopic(ctx context.Context, admin TopicAdmin, spec TopicSpec) (created bool, err error) {
	retention := strconv.FormatInt(spec.Retention.Milliseconds(), 10)

	resp, err := admin.CreateTopic(ctx, spec.Partitions, spec.ReplicationFactor,
		map[string]*string{retentionConfig: &retention}, spec.Name)
	if err == nil {
		err = resp.Err
	}
	switch {
	case err == nil:
		return true, nil
	case !errors.Is(err, kerr.TopicAlreadyExists):
		return false, fmt.Errorf("create topic %s: %w", spec.Name, err)
	}

	resps, err := admin.AlterTopicConfigs(ctx, []kadm.AlterConfig{{
		Op:    kadm.SetConfig,
		Name:  retentionConfig,
		Value: &retention,
	}}, spec.Name)
	if err != nil {
		return false, fmt.Errorf("alter topic %s config: %w", spec.Name, err)
	}
	for _, r := range resps {
		if r.Err != nil {
			return false, fmt.Errorf("alter topic %s config: %w", r.Name, r.Err)
		}
	}
	return false, nil
}
