// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/yomira-drive/internal/platform/constants"
	"github.com/taibuivan/yomira-drive/internal/platform/kv"
)

// # Session Chapter Index

// IndexedChapter is the projection of a [Chapter] kept in the session index.
type IndexedChapter struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Slug        string `json:"slug"`
}

// ChapterIndex is the fully drained chapter list of one story.
type ChapterIndex struct {
	UpdatedAt time.Time        `json:"updatedAt"`
	Chapters  []IndexedChapter `json:"chapters"`
}

// SessionIndex persists one [ChapterIndex] per story slug for the session.
//
// Entries are snapshots: they are replaced wholesale by a fresh drain and never
// patched. The whole map lives under [constants.KeyChapterIndex].
type SessionIndex struct {
	store  kv.Store
	maxAge time.Duration
	now    func() time.Time
	logger *slog.Logger

	// mu serializes the read-modify-write of the shared map within this process.
	mu sync.Mutex
}

// SessionIndexOption customizes a [SessionIndex].
type SessionIndexOption func(*SessionIndex)

// WithMaxAge treats entries older than maxAge as missing. Zero disables the check.
func WithMaxAge(maxAge time.Duration) SessionIndexOption {
	return func(s *SessionIndex) { s.maxAge = maxAge }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) SessionIndexOption {
	return func(s *SessionIndex) { s.now = now }
}

// NewSessionIndex constructs a session index over store.
func NewSessionIndex(store kv.Store, logger *slog.Logger, opts ...SessionIndexOption) *SessionIndex {
	index := &SessionIndex{
		store:  store,
		now:    time.Now,
		logger: logger.With(slog.String("component", "session_index")),
	}
	for _, opt := range opts {
		opt(index)
	}
	return index
}

/*
Save stores the chapter list of storySlug, replacing any previous entry.

Parameters:
  - ctx: context.Context
  - storySlug: string
  - chapters: []Chapter (already drained and ordered)

Returns:
  - error: Store failures
*/
func (s *SessionIndex) Save(ctx context.Context, storySlug string, chapters []Chapter) error {
	projected := indexed(chapters)

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadAll(ctx)
	if err != nil {
		return err
	}

	all[storySlug] = ChapterIndex{UpdatedAt: s.now(), Chapters: projected}

	if err := kv.SetJSON(ctx, s.store, constants.KeyChapterIndex, all); err != nil {
		return fmt.Errorf("session index: save %q: %w", storySlug, err)
	}

	s.logger.DebugContext(ctx, "session_index_saved",
		slog.String("story_slug", storySlug),
		slog.Int("chapters", len(projected)),
	)

	return nil
}

/*
Load returns the entry of storySlug.

Returns:
  - *ChapterIndex: nil on a miss or when the entry is older than the max age
  - error: Store failures
*/
func (s *SessionIndex) Load(ctx context.Context, storySlug string) (*ChapterIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	entry, ok := all[storySlug]
	if !ok {
		return nil, nil
	}

	if s.maxAge > 0 && s.now().Sub(entry.UpdatedAt) > s.maxAge {
		return nil, nil
	}

	return &entry, nil
}

// Forget drops the entry of storySlug.
func (s *SessionIndex) Forget(ctx context.Context, storySlug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadAll(ctx)
	if err != nil {
		return err
	}
	if _, ok := all[storySlug]; !ok {
		return nil
	}

	delete(all, storySlug)
	return kv.SetJSON(ctx, s.store, constants.KeyChapterIndex, all)
}

// loadAll reads the whole map. A missing or corrupted value reads as empty.
func (s *SessionIndex) loadAll(ctx context.Context) (map[string]ChapterIndex, error) {
	all := map[string]ChapterIndex{}
	found, err := kv.GetJSON(ctx, s.store, constants.KeyChapterIndex, &all)
	if err != nil {
		return nil, fmt.Errorf("session index: load: %w", err)
	}
	if !found || all == nil {
		all = map[string]ChapterIndex{}
	}
	return all, nil
}
