// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slugOf(chapter *IndexedChapter) string {
	if chapter == nil {
		return ""
	}
	return chapter.Slug
}

func TestNavigate(t *testing.T) {
	chapters := []IndexedChapter{
		{ID: "id1", Slug: "c1"},
		{ID: "id2", Slug: "c2"},
		{ID: "id3", Slug: "c3"},
	}

	tests := []struct {
		name      string
		key       string
		wantPrev  string
		wantCur   string
		wantNext  string
		wantIndex int
	}{
		{"middle", "c2", "c1", "c2", "c3", 1},
		{"first", "c1", "", "c1", "c2", 0},
		{"last", "c3", "c2", "c3", "", 2},
		{"unknown", "c9", "", "", "", -1},
		{"by_id", "id3", "c2", "c3", "", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev, current, next, index := Navigate(chapters, tt.key)

			assert.Equal(t, tt.wantPrev, slugOf(prev))
			assert.Equal(t, tt.wantCur, slugOf(current))
			assert.Equal(t, tt.wantNext, slugOf(next))
			assert.Equal(t, tt.wantIndex, index)
		})
	}
}

func TestNavigate_SlugBeforeID(t *testing.T) {
	// A chapter whose slug equals another chapter's id still wins by slug
	chapters := []IndexedChapter{
		{ID: "x", Slug: "a"},
		{ID: "y", Slug: "x"},
	}

	_, current, _, index := Navigate(chapters, "x")
	require.NotNil(t, current)
	assert.Equal(t, "y", current.ID)
	assert.Equal(t, 1, index)
}

func TestNavigate_CollisionFirstMatch(t *testing.T) {
	chapters := []IndexedChapter{
		{ID: "a", Slug: "chapter-1"},
		{ID: "b", Slug: "chapter-1"},
		{ID: "c", Slug: "chapter-2"},
	}

	_, current, next, _ := Navigate(chapters, "chapter-1")
	assert.Equal(t, "a", current.ID)
	assert.Equal(t, "b", next.ID)

	// The durable id reaches the shadowed chapter
	prev, current, _, _ := Navigate(chapters, "b")
	assert.Equal(t, "b", current.ID)
	assert.Equal(t, "a", prev.ID)
}

func TestNavigate_Empty(t *testing.T) {
	prev, current, next, index := Navigate(nil, "c1")
	assert.Nil(t, prev)
	assert.Nil(t, current)
	assert.Nil(t, next)
	assert.Equal(t, -1, index)
}
