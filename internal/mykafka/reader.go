package mykafka

import (
	"time"

	"github.com/segmentio/kafka-go"
)

// NewReader builds a consumer-group reader for a topic. Offsets are
// committed explicitly by the consumer after a message is handled, which
// is what gives the queue its at-least-once semantics.
func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
}
