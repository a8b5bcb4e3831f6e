// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-drive/internal/drive"
	"github.com/taibuivan/yomira-drive/internal/platform/apperr"
)

func chapterSlugs(chapters []Chapter) []string {
	slugs := make([]string, 0, len(chapters))
	for _, chapter := range chapters {
		slugs = append(slugs, chapter.Slug)
	}
	return slugs
}

func testURL(fileID string) string { return "https://files.test/" + fileID }

func TestChapterDirectory_NothingSelected(t *testing.T) {
	lister := newFakeLister(20)
	directory := NewChapterDirectory(lister, testURL, discardLogger())

	require.NoError(t, directory.FetchFirstPage(context.Background()))
	require.NoError(t, directory.FetchNextPage(context.Background()))
	assert.Zero(t, lister.calls())
}

func TestChapterDirectory_FirstAndNextPage(t *testing.T) {
	lister := newFakeLister(20).withChapters("story-a", numberedChapters(45)...)
	directory := NewChapterDirectory(lister, testURL, discardLogger())
	ctx := context.Background()

	assert.True(t, directory.Select("story-a"))
	require.NoError(t, directory.FetchFirstPage(ctx))

	snapshot := directory.Snapshot()
	require.Len(t, snapshot.Items, 20)
	assert.True(t, snapshot.Loaded)
	assert.True(t, snapshot.HasMore)

	first := snapshot.Items[0]
	assert.Equal(t, "ch-1", first.ID)
	assert.Equal(t, "Chapter 1", first.DisplayName)
	assert.Equal(t, "chapter-1", first.Slug)
	assert.Equal(t, "https://files.test/ch-1", first.DownloadURL)
	require.NotNil(t, first.Size)
	assert.EqualValues(t, 1024, *first.Size)

	require.NoError(t, directory.FetchNextPage(ctx))
	snapshot = directory.Snapshot()
	assert.Len(t, snapshot.Items, 40)
	assert.Equal(t, "chapter-2", snapshot.Items[1].Slug)
	assert.Equal(t, "chapter-40", snapshot.Items[39].Slug)

	// A fresh first page replaces the accumulated collection
	require.NoError(t, directory.FetchFirstPage(ctx))
	assert.Len(t, directory.Snapshot().Items, 20)

	assert.Equal(t, drive.DocumentQuery("story-a"), lister.requests[0].Query)
	assert.Equal(t, drive.FieldsDocument, lister.requests[0].Fields)
}

func TestChapterDirectory_FolderSwitchResets(t *testing.T) {
	lister := newFakeLister(20).
		withChapters("story-a", numberedChapters(30)...).
		withChapters("story-b", drive.File{ID: "b-1", Name: "Prologue.pdf"})
	lister.setFail(failOn(&drive.StatusError{StatusCode: 403}, 2))
	directory := NewChapterDirectory(lister, testURL, discardLogger())
	ctx := context.Background()

	directory.Select("story-a")
	require.NoError(t, directory.FetchFirstPage(ctx))
	require.Error(t, directory.FetchNextPage(ctx))
	assert.Equal(t, apperr.CodeTransport, directory.Snapshot().Error.Code)

	assert.False(t, directory.Select("story-a"))
	assert.True(t, directory.Select("story-b"))

	snapshot := directory.Snapshot()
	assert.Equal(t, "story-b", snapshot.FolderID)
	assert.Empty(t, snapshot.Items)
	assert.False(t, snapshot.Loaded)
	assert.False(t, snapshot.HasMore)
	assert.Nil(t, snapshot.Error)

	require.NoError(t, directory.FetchFirstPage(ctx))
	assert.Equal(t, []string{"prologue"}, chapterSlugs(directory.Snapshot().Items))
}

func TestChapterDirectory_StalePageDropped(t *testing.T) {
	lister := newFakeLister(20).
		withChapters("story-a", numberedChapters(5)...).
		withChapters("story-b", drive.File{ID: "b-1", Name: "Prologue.pdf"})
	lister.gate = make(chan struct{})
	directory := NewChapterDirectory(lister, testURL, discardLogger())
	ctx := context.Background()

	directory.Select("story-a")
	done := make(chan error, 1)
	go func() { done <- directory.FetchFirstPage(ctx) }()
	<-lister.entered

	directory.Select("story-b")
	lister.gate <- struct{}{}
	require.NoError(t, <-done)

	snapshot := directory.Snapshot()
	assert.Equal(t, "story-b", snapshot.FolderID)
	assert.Empty(t, snapshot.Items)
	assert.False(t, snapshot.Loading)

	close(lister.gate)
	require.NoError(t, directory.FetchFirstPage(ctx))
	assert.Equal(t, []string{"b-1"}, []string{directory.Snapshot().Items[0].ID})
}

func TestChapterDirectory_BusyWhileLoading(t *testing.T) {
	lister := newFakeLister(20).withChapters("story-a", numberedChapters(5)...)
	lister.gate = make(chan struct{})
	directory := NewChapterDirectory(lister, testURL, discardLogger())
	ctx := context.Background()

	directory.Select("story-a")
	done := make(chan error, 1)
	go func() { done <- directory.FetchFirstPage(ctx) }()
	<-lister.entered

	assert.True(t, apperr.HasCode(directory.FetchFirstPage(ctx), apperr.CodeBusy))

	close(lister.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, lister.calls())
}

func TestChapterDirectory_PrefetchAllRequestCount(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		pageSize int
		requests int
	}{
		{"partial_last_page", 45, 20, 3},
		{"exact_multiple", 40, 20, 2},
		{"single_page", 7, 20, 1},
		{"one_per_page", 3, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := newFakeLister(tt.pageSize).withChapters("story-a", numberedChapters(tt.total)...)
			directory := NewChapterDirectory(lister, testURL, discardLogger())
			directory.Select("story-a")

			chapters := directory.PrefetchAll(context.Background())

			assert.Len(t, chapters, tt.total)
			assert.Equal(t, tt.requests, lister.calls())
			assert.Equal(t, "chapter-1", chapters[0].Slug)
			assert.Equal(t, "ch-1", chapters[0].ID)
		})
	}
}

func TestChapterDirectory_PrefetchAllLeavesVisibleStateAlone(t *testing.T) {
	lister := newFakeLister(20).withChapters("story-a", numberedChapters(45)...)
	directory := NewChapterDirectory(lister, testURL, discardLogger())
	ctx := context.Background()

	directory.Select("story-a")
	require.NoError(t, directory.FetchFirstPage(ctx))
	before := directory.Snapshot()

	// Second drain request fails: nothing is returned and no error is shown
	lister.setFail(failOn(&drive.StatusError{StatusCode: 500}, 3))
	assert.Nil(t, directory.PrefetchAll(ctx))

	after := directory.Snapshot()
	assert.Equal(t, before.Items, after.Items)
	assert.Nil(t, after.Error)
	assert.False(t, after.Prefetching)

	// A successful drain does not replace the visible collection either
	lister.setFail(nil)
	assert.Len(t, directory.PrefetchAll(ctx), 45)
	assert.Len(t, directory.Snapshot().Items, 20)
}

func TestChapterDirectory_PrefetchAllWithoutSelection(t *testing.T) {
	lister := newFakeLister(20)
	directory := NewChapterDirectory(lister, testURL, discardLogger())

	assert.Nil(t, directory.PrefetchAll(context.Background()))
	assert.Zero(t, lister.calls())
}
