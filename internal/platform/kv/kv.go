// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package kv defines the key-value store service behind every piece of persisted
reader state.

Core Responsibilities:

  - Abstraction: Services depend on [Store], never on a concrete backend.
  - Backends: in-memory (tests, process-scoped sessions), Redis (sessions that
    expire after a TTL) and bbolt (durable local file).
  - Semantics: Last writer wins. Values are opaque byte slices, usually JSON.

Swapping the backend never changes the behaviour seen by the services.
*/
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by [Store.Get] when the key holds no value.
var ErrNotFound = errors.New("kv: key not found")

// Store is a minimal read/write key-value contract.
type Store interface {
	// Get returns the value stored under key, or [ErrNotFound].
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// # JSON Helpers

// GetJSON decodes the value under key into dest.
//
// It reports found=false on a miss. A value that fails to decode is treated
// as a miss as well, so a corrupted entry never blocks the caller.
func GetJSON(ctx context.Context, store Store, key string, dest any) (found bool, err error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, nil
	}

	return true, nil
}

// SetJSON encodes value as JSON and stores it under key.
func SetJSON(ctx context.Context, store Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv: encode %q: %w", key, err)
	}
	return store.Set(ctx, key, raw)
}
