// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package lifecycle_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/lifecycle"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/record"
)

// refusingRepository fails every Update and Delete of one record id.
type refusingRepository struct {
	record.Repository
	refuse string
}

func (repository *refusingRepository) Update(ctx context.Context, r *record.Record) error {
	if r.ID == repository.refuse {
		return errors.New("update refused")
	}
	return repository.Repository.Update(ctx, r)
}

func (repository *refusingRepository) Delete(ctx context.Context, key record.Key) error {
	if key.ID == repository.refuse {
		return errors.New("delete refused")
	}
	return repository.Repository.Delete(ctx, key)
}

func newRefusingFixture(t *testing.T, id string) *fixture {
	t.Helper()
	return newFixtureWith(t, lifecycle.Options{}, func(inner record.Repository) record.Repository {
		return &refusingRepository{Repository: inner, refuse: id}
	})
}

func TestCascade_FailedStepSkipsOnlyThatDependent(t *testing.T) {
	f := newRefusingFixture(t, "svc-a")
	f.provider(t, "prov")
	f.resource(t, record.KindService, "svc-a", "prov")
	f.resource(t, record.KindService, "svc-b", "prov")

	suspended, err := f.service.Suspend(adminContext(), record.KindProvider, "", "prov", true)
	require.NoError(t, err)
	assert.True(t, suspended.Suspended)

	assert.True(t, f.get(t, record.KindProvider, "prov").Suspended)
	assert.False(t, f.get(t, record.KindService, "svc-a").Suspended)
	assert.True(t, f.get(t, record.KindService, "svc-b").Suspended)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CascadeSteps.WithLabelValues("suspend", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CascadeSteps.WithLabelValues("suspend", "applied")))
}

func TestCascadeDelete_FailedStepSkipsOnlyThatDependent(t *testing.T) {
	f := newRefusingFixture(t, "svc-a")
	f.provider(t, "prov")
	f.resource(t, record.KindService, "svc-a", "prov")
	f.resource(t, record.KindService, "svc-b", "prov")

	require.NoError(t, f.service.Delete(adminContext(), record.KindProvider, "", "prov"))

	for id, want := range map[string]bool{"prov": false, "svc-a": true, "svc-b": false} {
		kind := record.KindService
		if id == "prov" {
			kind = record.KindProvider
		}
		exists, err := f.records.Exists(context.Background(), record.Key{Kind: kind, CatalogueID: "eosc", ID: id})
		require.NoError(t, err)
		assert.Equal(t, want, exists, id)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CascadeSteps.WithLabelValues("delete", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CascadeSteps.WithLabelValues("delete", "applied")))
}
