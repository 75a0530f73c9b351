// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

// Package safego provides panic-recovering goroutine launchers for
// fire-and-forget work such as mirror notifications.
package safego

import (
	"context"
	"log/slog"
	"sync"
)

// Go launches fn in a new goroutine. A panic inside fn is recovered and
// logged instead of crashing the process.
func Go(logger *slog.Logger, fn func()) {
	go run(logger, fn)
}

// Group launches recovered goroutines and lets shutdown code wait for the
// ones still in flight.
type Group struct {
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewGroup creates an empty [Group].
func NewGroup(logger *slog.Logger) *Group {
	return &Group{logger: logger}
}

// Go runs fn in the background, tracked by the group.
func (g *Group) Go(fn func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		run(g.logger, fn)
	}()
}

// Wait blocks until every tracked goroutine returned or ctx is done.
func (g *Group) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func run(logger *slog.Logger, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if logger == nil {
				logger = slog.Default()
			}
			logger.Error("recovered panic in background goroutine", slog.Any("panic", r))
		}
	}()
	fn()
}
