// Package kafka holds broker client construction and topic provisioning
// shared by producers and consumers.
package kafka

import (
	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"valueconverting/internal/platform/config"
)

// ClientOptions returns the base options every client of this service uses.
// The client id carries a per-process suffix so broker logs can tell
// instances apart.
func ClientOptions(cfg config.Kafka) []kgo.Opt {
	return []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ApplicationID + "-" + uuid.NewString()[:8]),
	}
}
