// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package record_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/core/record"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/apperr"
	"github.com/EOSC-Lot-1/resource-catalogue-sub000/pkg/pointer"
)

func newService(id, owner string, status record.Status) *record.Record {
	return &record.Record{
		Kind:        record.KindService,
		ID:          id,
		CatalogueID: "eosc",
		Name:        "Service " + id,
		Status:      status,
		References:  record.References{Owner: owner},
	}
}

func TestMemoryRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repository := record.NewMemoryRepository()

	svc := newService("svc-1", "prov-1", record.StatusPending)
	require.NoError(t, repository.Create(ctx, svc))
	assert.Equal(t, int64(1), svc.Version)

	// Duplicate create
	err := repository.Create(ctx, newService("svc-1", "prov-1", record.StatusPending))
	assert.True(t, apperr.IsConflict(err))

	loaded, err := repository.Get(ctx, svc.Key())
	require.NoError(t, err)
	loaded.Active = true
	require.NoError(t, repository.Update(ctx, loaded))
	assert.Equal(t, int64(2), loaded.Version)

	// Stale write against version 1
	svc.Suspended = true
	err = repository.Update(ctx, svc)
	assert.True(t, apperr.IsConflict(err))

	require.NoError(t, repository.Delete(ctx, svc.Key()))
	_, err = repository.Get(ctx, svc.Key())
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, apperr.IsNotFound(repository.Delete(ctx, svc.Key())))
}

func TestMemoryRepository_NoAliasing(t *testing.T) {
	ctx := context.Background()
	repository := record.NewMemoryRepository()

	svc := newService("svc-1", "prov-1", record.StatusPending)
	require.NoError(t, repository.Create(ctx, svc))
	svc.Name = "mutated after create"

	loaded, err := repository.Get(ctx, svc.Key())
	require.NoError(t, err)
	assert.Equal(t, "Service svc-1", loaded.Name)
}

func TestMemoryRepository_ListAndSearch(t *testing.T) {
	ctx := context.Background()
	repository := record.NewMemoryRepository()

	require.NoError(t, repository.Create(ctx, newService("c", "prov-1", record.StatusApproved)))
	require.NoError(t, repository.Create(ctx, newService("a", "prov-1", record.StatusPending)))
	require.NoError(t, repository.Create(ctx, newService("b", "prov-2", record.StatusApproved)))

	owned, err := repository.ListByOwner(ctx, record.KindService, "eosc", "prov-1")
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, "a", owned[0].ID)
	assert.Equal(t, "c", owned[1].ID)

	page, err := repository.Search(ctx, record.Filter{Kind: record.KindService, Status: []record.Status{record.StatusApproved}}, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, page.To)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "b", page.Results[0].ID)

	page, err = repository.Search(ctx, record.Filter{Kind: record.KindService, Active: pointer.To(true)}, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	page, err = repository.Search(ctx, record.Filter{Keyword: "SERVICE A"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	page, err = repository.Search(ctx, record.Filter{Kind: record.KindService}, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 3, page.To)
	assert.Empty(t, page.Results)
}
