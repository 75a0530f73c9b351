// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/metrics"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/safego"
)

const publishTimeout = 5 * time.Second

// Dispatcher serialises payloads and hands them to a [Sink] in the
// background. Failures are logged and counted, never returned.
type Dispatcher struct {
	sink    Sink
	group   *safego.Group
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewDispatcher constructs a [Dispatcher]. m may be nil.
func NewDispatcher(sink Sink, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		sink:    sink,
		group:   safego.NewGroup(logger),
		logger:  logger,
		metrics: m,
	}
}

/*
Emit publishes payload on topic without blocking the caller.

Description: The payload is encoded as JSON on the calling goroutine so the
caller may mutate its value afterwards. Request-scoped values of ctx are
kept but its cancellation is not, so a finished HTTP request does not abort
delivery.

Parameters:
  - ctx: context.Context
  - topic: string ("<kind>.<action>")
  - payload: any (JSON-encodable)
*/
func (dispatcher *Dispatcher) Emit(ctx context.Context, topic string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		dispatcher.fail(ctx, topic, err)
		return
	}

	detached := context.WithoutCancel(ctx)
	dispatcher.group.Go(func() {
		publishCtx, cancel := context.WithTimeout(detached, publishTimeout)
		defer cancel()

		if err := dispatcher.sink.Publish(publishCtx, topic, body); err != nil {
			dispatcher.fail(publishCtx, topic, err)
		}
	})
}

// Wait blocks until in-flight notifications are delivered or ctx expires.
func (dispatcher *Dispatcher) Wait(ctx context.Context) error {
	return dispatcher.group.Wait(ctx)
}

func (dispatcher *Dispatcher) fail(ctx context.Context, topic string, err error) {
	dispatcher.logger.WarnContext(ctx, "notification_failed",
		slog.String("topic", topic),
		slog.Any("error", err),
	)
	dispatcher.metrics.ObserveNotificationFailure(topic)
}
