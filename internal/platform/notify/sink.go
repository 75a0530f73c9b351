// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

/*
Package notify delivers public-mirror notifications to downstream consumers.

Delivery is fire-and-forget: a mirror write never waits for, and is never
rolled back by, a notification. Consumers must tolerate missed and duplicate
messages.

Topics are named "<resourceKind>.<action>" where action is one of create,
update or delete.
*/
package notify

import (
	"context"
	"log/slog"
)

// # Topic Actions

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Topic builds the topic name for a resource kind and action.
func Topic(kind, action string) string {
	return kind + "." + action
}

// Sink is the outbound transport for notifications.
type Sink interface {
	Publish(context context.Context, topic string, payload []byte) error
}

// LogSink writes notifications to the structured log. Used in development
// and when no broker is configured.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink constructs a [LogSink].
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (sink *LogSink) Publish(context context.Context, topic string, payload []byte) error {
	sink.logger.InfoContext(context, "notification_published",
		slog.String("topic", topic),
		slog.Int("bytes", len(payload)),
	)
	return nil
}
