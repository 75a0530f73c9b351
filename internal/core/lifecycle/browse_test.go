// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package lifecycle_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/lifecycle"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/record"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/cache"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/pkg/pointer"
)

// seedServices registers count approved services under an approved provider.
func seedServices(t *testing.T, f *fixture, count int) {
	t.Helper()
	f.approvedProvider(t, "prov")
	for i := range count {
		f.resource(t, record.KindService, fmt.Sprintf("svc-%02d", i), "prov")
	}
}

func TestBrowse_Index(t *testing.T) {
	f := newFixture(t, lifecycle.Options{})
	seedServices(t, f, 4)
	ctx := adminContext()

	query := lifecycle.BrowseQuery{
		Filter:   record.Filter{Kind: record.KindService, Active: pointer.To(true)},
		From:     1,
		Quantity: 2,
	}

	page, err := f.service.Browse(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 1, page.From)
	assert.Equal(t, 3, page.To)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "svc-00", page.Results[0].ID)

	_, err = f.service.Browse(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheLookups.WithLabelValues("hit")))

	_, err = f.service.Publish(ctx, record.KindService, "", "svc-00", false)
	require.NoError(t, err)
	assert.Equal(t, 0, f.cache.Len(cache.ScopeRecords))

	page, err = f.service.Browse(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
}

func TestBrowse_AuditState(t *testing.T) {
	f := newFixture(t, lifecycle.Options{})
	seedServices(t, f, 5)
	ctx := adminContext()

	for _, id := range []string{"svc-01", "svc-03"} {
		_, err := f.service.Audit(ctx, record.KindService, "", id, "", record.ActionInvalid)
		require.NoError(t, err)
	}

	query := lifecycle.BrowseQuery{
		Filter:     record.Filter{Kind: record.KindService},
		From:       0,
		Quantity:   10,
		AuditState: record.AuditInvalidAndNotUpdated,
	}

	page, err := f.service.Browse(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.To)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "svc-01", page.Results[0].ID)
	assert.Equal(t, "svc-03", page.Results[1].ID)

	query.From = 5
	page, err = f.service.Browse(ctx, query)
	require.NoError(t, err)
	assert.Empty(t, page.Results)
	assert.Equal(t, 2, page.To)

	query.AuditState = record.AuditNotAudited
	query.From = 0
	page, err = f.service.Browse(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total, "prov-first and three unaudited seeds")
}

func TestBrowse_AuditScanTruncated(t *testing.T) {
	f := newFixture(t, lifecycle.Options{AuditScanLimit: 3})
	seedServices(t, f, 5)

	page, err := f.service.Browse(adminContext(), lifecycle.BrowseQuery{
		Filter:     record.Filter{Kind: record.KindService},
		Quantity:   10,
		AuditState: record.AuditNotAudited,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AuditScanTruncations))
}

func TestRandomForAudit(t *testing.T) {
	f := newFixture(t, lifecycle.Options{})
	seedServices(t, f, 4)
	ctx := adminContext()

	_, err := f.service.Audit(ctx, record.KindService, "", "svc-00", "", record.ActionValid)
	require.NoError(t, err)
	_, err = f.service.Publish(ctx, record.KindService, "", "svc-01", false)
	require.NoError(t, err)

	page, err := f.service.RandomForAudit(ctx, record.KindService, "", 0, 10, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)

	ids := make([]string, 0, len(page.Results))
	for _, r := range page.Results {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{"prov-first", "svc-02", "svc-03"}, ids)

	page, err = f.service.RandomForAudit(ctx, record.KindService, "", 1, 1, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Results, 1)
	assert.Equal(t, 2, page.To)

	page, err = f.service.RandomForAudit(ctx, record.KindService, "", 0, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total, "a zero interval makes every audit stale")
}
