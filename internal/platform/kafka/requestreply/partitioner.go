package requestreply

import (
	"hash/fnv"

	"github.com/twmb/franz-go/pkg/kgo"
)

// ReplyPartitioner honours an explicit record partition (the requester's
// kafka_replyPartition) and otherwise hashes the correlation id, so replies
// without a requested partition still spread deterministically.
func ReplyPartitioner() kgo.Partitioner {
	return kgo.BasicConsistentPartitioner(func(string) func(r *kgo.Record, n int) int {
		return func(r *kgo.Record, n int) int {
			if r.Partition >= 0 && int(r.Partition) < n {
				return int(r.Partition)
			}
			h := fnv.New32a()
			for _, hdr := range r.Headers {
				if hdr.Key == HeaderCorrelationID {
					_, _ = h.Write(hdr.Value)
				}
			}
			_, _ = h.Write(r.Key)
			return int(h.Sum32() % uint32(n))
		}
	})
}
