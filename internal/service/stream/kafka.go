package stream

import (
	"context"
	"errors"
	"fmt"
	"io"

	drepo "DeskStream/internal/domain/repository"
	pkgkafka "DeskStream/pkg/kafka"

	"github.com/segmentio/kafka-go"
)

// KafkaTransport consumes a per-scope topic; one message value is one payload.
type KafkaTransport struct {
	topicTemplate string
	opts          []pkgkafka.ReaderOption
}

func NewKafkaTransport(topicTemplate string, opts ...pkgkafka.ReaderOption) *KafkaTransport {
	return &KafkaTransport{topicTemplate: topicTemplate, opts: opts}
}

// Dial creates the reader. kafka-go connects lazily, so broker failures
// surface from the first Next.
func (t *KafkaTransport) Dial(_ context.Context, scope string) (drepo.Stream, error) {
	return &kafkaStream{reader: pkgkafka.NewReader(expand(t.topicTemplate, scope), t.opts...)}, nil
}

type kafkaStream struct {
	reader *kafka.Reader
}

func (s *kafkaStream) Next(ctx context.Context) (string, error) {
	msg, err := s.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", ErrConnectionClosed
		}
		return "", fmt.Errorf("kafka read %s: %w", s.reader.Config().Topic, err)
	}
	return string(msg.Value), nil
}

func (s *kafkaStream) Close() error {
	return s.reader.Close()
}
