// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaSink produces notifications to Kafka, one topic per "<kind>.<action>".
type KafkaSink struct {
	client *kgo.Client
}

/*
NewKafkaSink connects a franz-go client to the given brokers.

Parameters:
  - brokers: []string (seed broker addresses)
  - logger: *slog.Logger

Returns:
  - *KafkaSink: Ready sink, to be closed on shutdown
  - error: Client construction failures
*/
func NewKafkaSink(brokers []string, logger *slog.Logger) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka: failed to create client: %w", err)
	}

	logger.Info("kafka producer configured", slog.Any("brokers", brokers))
	return &KafkaSink{client: client}, nil
}

// Publish produces payload synchronously; the dispatcher already runs it off
// the request goroutine.
func (sink *KafkaSink) Publish(context context.Context, topic string, payload []byte) error {
	record := &kgo.Record{Topic: topic, Value: payload}
	if err := sink.client.ProduceSync(context, record).FirstErr(); err != nil {
		return fmt.Errorf("kafka_notify_produce_failed: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying client.
func (sink *KafkaSink) Close() {
	sink.client.Close()
}
