// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package kv_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-drive/internal/platform/kv"
)

// exerciseStore runs the shared [kv.Store] contract against one backend.
func exerciseStore(t *testing.T, store kv.Store) {
	t.Helper()
	ctx := context.Background()

	// 1. Miss
	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	// 2. Write then read
	require.NoError(t, store.Set(ctx, "k", []byte("v1")))
	value, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), value)

	// 3. Last writer wins
	require.NoError(t, store.Set(ctx, "k", []byte("v2")))
	value, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), value)

	// 4. Delete, including a missing key
	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestMemory_Contract(t *testing.T) {
	exerciseStore(t, kv.NewMemory())
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()

	input := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", input))
	input[0] = 'x'

	value, err := store.Get(ctx, "k")
	require.NoError(t, err)
	value[1] = 'y'

	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestBolt_Contract(t *testing.T) {
	store, err := kv.OpenBolt(filepath.Join(t.TempDir(), "nested", "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	exerciseStore(t, store)
}

/*
TestBolt_Durable verifies that values survive a close and reopen.
*/
func TestBolt_Durable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	store, err := kv.OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "pdf-reader:lastPages", []byte(`{"docA":7}`)))
	require.NoError(t, store.Close())

	reopened, err := kv.OpenBolt(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	value, err := reopened.Get(ctx, "pdf-reader:lastPages")
	require.NoError(t, err)
	assert.JSONEq(t, `{"docA":7}`, string(value))
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()

	var out map[string]int
	found, err := kv.GetJSON(ctx, store, "m", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.SetJSON(ctx, store, "m", map[string]int{"a": 1}))
	found, err = kv.GetJSON(ctx, store, "m", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, map[string]int{"a": 1}, out)

	// Corrupted values read as a miss.
	require.NoError(t, store.Set(ctx, "m", []byte("{not json")))
	found, err = kv.GetJSON(ctx, store, "m", &out)
	require.NoError(t, err)
	assert.False(t, found)
}
