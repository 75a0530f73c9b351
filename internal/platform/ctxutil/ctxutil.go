// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

// Package ctxutil carries per-request values (correlation id, logger and
// caller claims) through [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/sec"
)

// key is unexported so no other package can read or overwrite these values.
type key int

const (
	keyRequestID key = iota
	keyLogger
	keyClaims
)

// # Request Tracing

// WithRequestID attaches the X-Request-ID correlation value.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

// GetRequestID returns the correlation value, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(keyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger attaches the request scoped logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, keyLogger, logger)
}

// GetLogger returns the request scoped logger, or [slog.Default].
func GetLogger(ctx context.Context) *slog.Logger {
	return LoggerOr(ctx, slog.Default())
}

// LoggerOr returns the request scoped logger, or fallback for work that
// runs outside a request.
func LoggerOr(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(keyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return fallback
}

// # Identity

// WithAuthUser attaches the verified token claims of the caller.
func WithAuthUser(ctx context.Context, claims *sec.AuthClaims) context.Context {
	return context.WithValue(ctx, keyClaims, claims)
}

// GetAuthUser returns the caller's claims, or nil when the request is
// anonymous.
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, _ := ctx.Value(keyClaims).(*sec.AuthClaims)
	return claims
}

// IsStaff reports whether the caller in ctx is an administrator or an
// onboarding team member.
func IsStaff(ctx context.Context) bool {
	return GetAuthUser(ctx).IsStaff()
}
