// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package ctxutil_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/ctxutil"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/sec"
)

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	ctx = ctxutil.WithRequestID(ctx, "req-42")
	assert.Equal(t, "req-42", ctxutil.GetRequestID(ctx))
}

func TestLoggerFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	assert.Same(t, slog.Default(), ctxutil.GetLogger(ctx))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Same(t, logger, ctxutil.GetLogger(ctxutil.WithLogger(ctx, logger)))
}

func TestAuthUser(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, ctxutil.GetAuthUser(ctx))
	assert.False(t, ctxutil.IsStaff(ctx))

	ctx = ctxutil.WithAuthUser(ctx, &sec.AuthClaims{
		UserID:    "u-1",
		Role:      string(sec.RoleProvider),
		Providers: []string{"eosc.acme"},
	})

	claims := ctxutil.GetAuthUser(ctx)
	require.NotNil(t, claims)
	assert.Equal(t, "u-1", claims.UserID)
	assert.True(t, claims.AdministersProvider("eosc.acme"))
	assert.False(t, ctxutil.IsStaff(ctx))

	staff := ctxutil.WithAuthUser(context.Background(), &sec.AuthClaims{Role: string(sec.RoleEPOT)})
	assert.True(t, ctxutil.IsStaff(staff))
}
