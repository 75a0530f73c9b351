// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSink publishes notifications on Redis Pub/Sub channels named after
// the topic.
type RedisSink struct {
	client *redis.Client
}

// NewRedisSink constructs a [RedisSink].
func NewRedisSink(client *redis.Client) *RedisSink {
	return &RedisSink{client: client}
}

func (sink *RedisSink) Publish(context context.Context, topic string, payload []byte) error {
	if err := sink.client.Publish(context, topic, payload).Err(); err != nil {
		return fmt.Errorf("redis_notify_publish_failed: %w", err)
	}
	return nil
}
