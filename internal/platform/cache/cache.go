// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

/*
Package cache defines the read-cache port that sits in front of the lifecycle
read path, plus its Redis and in-memory adapters.

Entries are grouped by [Scope]. Invalidation always clears a whole scope:
writers call [Cache.Invalidate] synchronously at the end of every write path
instead of evicting individual keys, because a single write can change the
result of any cached filter query.

Every invalidation starts a new generation of the scope. A reader that fills
the cache after a miss captures the generation with [Cache.Generation] before
it reads the source of truth, and stores with [Cache.SetIfGeneration]. A
write that lands between the two makes the store a no-op, so a slow reader
never puts pre-write data back.
*/
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Scope names a group of cache entries that are invalidated together.
type Scope string

const (
	// ScopeRecords holds single-record lookups and filtered list pages.
	ScopeRecords Scope = "records"
)

// Cache is the read-cache port.
type Cache interface {
	// Get loads the entry into dest. It reports false on a miss.
	Get(context context.Context, scope Scope, key string, dest any) (bool, error)

	// Set stores value under key in the current generation.
	Set(context context.Context, scope Scope, key string, value any) error

	// Generation returns the current generation of the scope.
	Generation(context context.Context, scope Scope) (uint64, error)

	// SetIfGeneration stores value only while the scope is still at
	// generation. It reports whether the value was stored.
	SetIfGeneration(context context.Context, scope Scope, generation uint64, key string, value any) (bool, error)

	// Invalidate drops every entry of the scope.
	Invalidate(context context.Context, scope Scope) error
}

// Key joins key parts with ':'.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// HashKey returns a stable key for an arbitrary filter value.
//
// The value is JSON encoded (map keys are sorted by encoding/json) and hashed
// with xxhash, so equal filters always produce the same key.
func HashKey(prefix string, value any) (string, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return Key(prefix, strconv.FormatUint(xxhash.Sum64(raw), 16)), nil
}

// Nop is a [Cache] that never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, Scope, string, any) (bool, error) { return false, nil }
func (Nop) Set(context.Context, Scope, string, any) error         { return nil }
func (Nop) Invalidate(context.Context, Scope) error               { return nil }

func (Nop) Generation(context.Context, Scope) (uint64, error) { return 0, nil }

func (Nop) SetIfGeneration(context.Context, Scope, uint64, string, any) (bool, error) {
	return false, nil
}
