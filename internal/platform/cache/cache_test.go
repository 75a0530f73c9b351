// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/cache"
)

type filter struct {
	Kind   string   `json:"kind"`
	Status []string `json:"status"`
}

/*
TestHashKey_Stable verifies equal filters map to the same key.
*/
func TestHashKey_Stable(t *testing.T) {
	a, err := cache.HashKey("list", filter{Kind: "service", Status: []string{"approved"}})
	require.NoError(t, err)
	b, err := cache.HashKey("list", filter{Kind: "service", Status: []string{"approved"}})
	require.NoError(t, err)
	c, err := cache.HashKey("list", filter{Kind: "tool"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "list:")
}

/*
TestMemory_InvalidateClearsScope checks that invalidation is a full clear.
*/
func TestMemory_InvalidateClearsScope(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemory(0)

	require.NoError(t, store.Set(ctx, cache.ScopeRecords, "a", map[string]int{"v": 1}))
	require.NoError(t, store.Set(ctx, cache.ScopeRecords, "b", map[string]int{"v": 2}))
	assert.Equal(t, 2, store.Len(cache.ScopeRecords))

	var got map[string]int
	hit, err := store.Get(ctx, cache.ScopeRecords, "a", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, got["v"])

	require.NoError(t, store.Invalidate(ctx, cache.ScopeRecords))
	assert.Equal(t, 0, store.Len(cache.ScopeRecords))

	hit, err = store.Get(ctx, cache.ScopeRecords, "b", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

/*
TestMemory_TTL ensures expired entries read as misses.
*/
func TestMemory_TTL(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemory(time.Nanosecond)

	require.NoError(t, store.Set(ctx, cache.ScopeRecords, "a", 1))
	time.Sleep(time.Millisecond)

	var got int
	hit, err := store.Get(ctx, cache.ScopeRecords, "a", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

/*
TestMemory_SetIfGeneration ensures a fill started before an invalidation is
discarded.
*/
func TestMemory_SetIfGeneration(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemory(0)

	before, err := store.Generation(ctx, cache.ScopeRecords)
	require.NoError(t, err)

	require.NoError(t, store.Invalidate(ctx, cache.ScopeRecords))

	stored, err := store.SetIfGeneration(ctx, cache.ScopeRecords, before, "a", "stale")
	require.NoError(t, err)
	assert.False(t, stored)
	assert.Equal(t, 0, store.Len(cache.ScopeRecords))

	current, err := store.Generation(ctx, cache.ScopeRecords)
	require.NoError(t, err)
	assert.Equal(t, before+1, current)

	stored, err = store.SetIfGeneration(ctx, cache.ScopeRecords, current, "a", "fresh")
	require.NoError(t, err)
	assert.True(t, stored)

	var got string
	hit, err := store.Get(ctx, cache.ScopeRecords, "a", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "fresh", got)
}

func TestNop(t *testing.T) {
	var c cache.Cache = cache.Nop{}
	hit, err := c.Get(context.Background(), cache.ScopeRecords, "k", new(int))
	assert.NoError(t, err)
	assert.False(t, hit)
}
