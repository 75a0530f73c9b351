// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/constants"
)

// Redis implements [Cache] on a shared Redis instance so every API replica
// sees the same invalidations.
//
// # Full-scope invalidation
//
// Each scope has a generation counter. Entry keys embed the current
// generation, so [Redis.Invalidate] is a single INCR: older entries become
// unreachable at once and expire through their TTL. [Redis.SetIfGeneration]
// WATCHes the counter, so a fill that races an invalidation is discarded.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis constructs a Redis-backed [Cache].
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

/*
Get loads a cached entry.

Parameters:
  - context: context.Context
  - scope: Scope
  - key: string
  - dest: any (pointer the JSON value is decoded into)

Returns:
  - bool: false on a miss
  - error: Redis or decoding failures
*/
func (cache *Redis) Get(context context.Context, scope Scope, key string, dest any) (bool, error) {
	fullKey, err := cache.entryKey(context, scope, key)
	if err != nil {
		return false, err
	}

	raw, err := cache.client.Get(context, fullKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis_cache_get_failed: %w", err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("redis_cache_decode_failed: %w", err)
	}
	return true, nil
}

// Set stores value as JSON under the current scope generation.
func (cache *Redis) Set(context context.Context, scope Scope, key string, value any) error {
	fullKey, err := cache.entryKey(context, scope, key)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis_cache_encode_failed: %w", err)
	}

	if err := cache.client.Set(context, fullKey, raw, cache.ttl).Err(); err != nil {
		return fmt.Errorf("redis_cache_set_failed: %w", err)
	}
	return nil
}

// Generation reads the scope counter. A scope never invalidated is at 0.
func (cache *Redis) Generation(context context.Context, scope Scope) (uint64, error) {
	generation, err := cache.client.Get(context, generationKey(scope)).Uint64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("redis_cache_generation_failed: %w", err)
	}
	return generation, nil
}

/*
SetIfGeneration stores value under key only while the scope is still at
generation.

Description: The counter is WATCHed for the duration of the transaction. An
INCR from a concurrent [Redis.Invalidate] aborts the EXEC, which is reported
as not stored rather than as an error.
*/
func (cache *Redis) SetIfGeneration(context context.Context, scope Scope, generation uint64, key string, value any) (bool, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("redis_cache_encode_failed: %w", err)
	}

	counter := generationKey(scope)
	fullKey := entryKeyAt(scope, generation, key)
	stored := false

	err = cache.client.Watch(context, func(tx *redis.Tx) error {
		current, err := tx.Get(context, counter).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return nil
		}

		_, err = tx.TxPipelined(context, func(pipe redis.Pipeliner) error {
			pipe.Set(context, fullKey, raw, cache.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, counter)

	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis_cache_set_failed: %w", err)
	}
	return stored, nil
}

// Invalidate bumps the scope generation.
func (cache *Redis) Invalidate(context context.Context, scope Scope) error {
	if err := cache.client.Incr(context, generationKey(scope)).Err(); err != nil {
		return fmt.Errorf("redis_cache_invalidate_failed: %w", err)
	}
	return nil
}

// entryKey resolves the generation-qualified key of an entry.
func (cache *Redis) entryKey(context context.Context, scope Scope, key string) (string, error) {
	generation, err := cache.Generation(context, scope)
	if err != nil {
		return "", err
	}
	return entryKeyAt(scope, generation, key), nil
}

func entryKeyAt(scope Scope, generation uint64, key string) string {
	return constants.RedisPrefixCache + Key(string(scope), strconv.FormatUint(generation, 10), key)
}

func generationKey(scope Scope) string {
	return constants.RedisPrefixGeneration + string(scope)
}
