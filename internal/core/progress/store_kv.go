// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progress

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/taibuivan/yomira-drive/internal/platform/constants"
	"github.com/taibuivan/yomira-drive/internal/platform/kv"
)

// KVStore implements [Store] on a key-value backend.
//
// The whole map is one JSON object under [constants.KeyLastPages]. When a
// limit is set, recency is tracked under [constants.KeyLastPagesOrder], oldest first.
type KVStore struct {
	store      kv.Store
	maxEntries int

	mu sync.Mutex
}

// NewKVStore creates a position store. maxEntries <= 0 means unbounded.
func NewKVStore(store kv.Store, maxEntries int) *KVStore {
	return &KVStore{store: store, maxEntries: max(maxEntries, 0)}
}

// LastPage implements [Store].
func (s *KVStore) LastPage(ctx context.Context, documentID string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pages, err := s.pages(ctx)
	if err != nil {
		return 0, false, err
	}

	page, ok := pages[documentID]
	if !ok || page < 1 {
		return 0, false, nil
	}
	return page, true, nil
}

// Remember implements [Store].
func (s *KVStore) Remember(ctx context.Context, documentID string, page int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pages, err := s.pages(ctx)
	if err != nil {
		return err
	}
	pages[documentID] = page

	if s.maxEntries > 0 {
		order, err := s.order(ctx, pages)
		if err != nil {
			return err
		}

		order = append(slices.DeleteFunc(order, func(id string) bool { return id == documentID }), documentID)
		for len(order) > s.maxEntries {
			delete(pages, order[0])
			order = order[1:]
		}

		if err := kv.SetJSON(ctx, s.store, constants.KeyLastPagesOrder, order); err != nil {
			return fmt.Errorf("progress: save order: %w", err)
		}
	}

	if err := kv.SetJSON(ctx, s.store, constants.KeyLastPages, pages); err != nil {
		return fmt.Errorf("progress: save %q: %w", documentID, err)
	}
	return nil
}

func (s *KVStore) pages(ctx context.Context) (map[string]int, error) {
	pages := map[string]int{}
	found, err := kv.GetJSON(ctx, s.store, constants.KeyLastPages, &pages)
	if err != nil {
		return nil, fmt.Errorf("progress: load: %w", err)
	}
	if !found || pages == nil {
		pages = map[string]int{}
	}
	return pages, nil
}

// order loads the recency list and reconciles it with pages. Entries written
// while the store was unbounded are treated as the oldest, in id order.
func (s *KVStore) order(ctx context.Context, pages map[string]int) ([]string, error) {
	var order []string
	if _, err := kv.GetJSON(ctx, s.store, constants.KeyLastPagesOrder, &order); err != nil {
		return nil, fmt.Errorf("progress: load order: %w", err)
	}

	order = slices.DeleteFunc(order, func(id string) bool {
		_, ok := pages[id]
		return !ok
	})

	var untracked []string
	for id := range pages {
		if !slices.Contains(order, id) {
			untracked = append(untracked, id)
		}
	}
	slices.Sort(untracked)

	return append(untracked, order...), nil
}
