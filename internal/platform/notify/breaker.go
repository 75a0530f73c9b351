// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerSink guards a [Sink] with a circuit breaker. While the breaker is
// open, Publish fails immediately with [gobreaker.ErrOpenState] instead of
// waiting on a broker that is known to be down.
type BreakerSink struct {
	next    Sink
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerSink wraps next. The breaker opens after five consecutive
// failures and retries after thirty seconds.
func NewBreakerSink(name string, next Sink, logger *slog.Logger) *BreakerSink {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("notification_breaker_state_changed",
				slog.String("sink", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	return &BreakerSink{next: next, breaker: gobreaker.NewCircuitBreaker(settings)}
}

func (sink *BreakerSink) Publish(context context.Context, topic string, payload []byte) error {
	_, err := sink.breaker.Execute(func() (interface{}, error) {
		return nil, sink.next.Publish(context, topic, payload)
	})
	return err
}

// State exposes the breaker state for readiness reporting.
func (sink *BreakerSink) State() gobreaker.State {
	return sink.breaker.State()
}
