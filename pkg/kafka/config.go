package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"
)

// ReaderOption configures a topic reader.
type ReaderOption func(*ReaderConfig)

// ReaderConfig holds consumer-side configuration.
type ReaderConfig struct {
	Brokers        []string
	GroupID        string
	MinBytes       int
	MaxBytes       int
	MaxWait        time.Duration
	CommitInterval time.Duration
	StartOffset    int64
}

// WithBrokers sets Kafka brokers.
func WithBrokers(brokers []string) ReaderOption {
	return func(c *ReaderConfig) {
		c.Brokers = brokers
	}
}

// WithGroupID sets the consumer group. Without one the reader starts at
// StartOffset of partition 0 and commits nothing.
func WithGroupID(id string) ReaderOption {
	return func(c *ReaderConfig) {
		c.GroupID = id
	}
}

// WithFetchBytes sets fetch size bounds.
func WithFetchBytes(min, max int) ReaderOption {
	return func(c *ReaderConfig) {
		c.MinBytes = min
		c.MaxBytes = max
	}
}

func WithMaxWait(d time.Duration) ReaderOption {
	return func(c *ReaderConfig) {
		c.MaxWait = d
	}
}

// WithLatest makes a fresh group start from the newest offset, so a new
// session never replays history.
func WithLatest() ReaderOption {
	return func(c *ReaderConfig) {
		c.StartOffset = kafka.LastOffset
	}
}

// NewReader builds a kafka-go reader for topic.
func NewReader(topic string, opts ...ReaderOption) *kafka.Reader {
	cfg := &ReaderConfig{
		MinBytes:       1,
		MaxBytes:       1 << 20,
		MaxWait:        500 * time.Millisecond,
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          topic,
		GroupID:        cfg.GroupID,
		MinBytes:       cfg.MinBytes,
		MaxBytes:       cfg.MaxBytes,
		MaxWait:        cfg.MaxWait,
		CommitInterval: cfg.CommitInterval,
		StartOffset:    cfg.StartOffset,
	})
}
