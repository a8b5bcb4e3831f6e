// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

// # Navigation Model

// Source names where a navigation's chapter list came from.
type Source string

const (
	// SourceSession is a complete list from the session index.
	SourceSession Source = "session"
	// SourceLive is whatever the chapter directory has fetched so far.
	SourceLive Source = "live"
)

// ChapterRef is a chapter as seen by the reader view.
type ChapterRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Slug        string `json:"slug"`
	DownloadURL string `json:"download_url"`
	DocumentURL string `json:"document_url"`
}

// Navigation is the resolved position of a chapter inside its story.
//
// Current is nil while the chapter is not resolvable yet (still loading, or
// beyond the pages fetched so far). The viewer shows a placeholder then.
type Navigation struct {
	Story    Story       `json:"story"`
	Current  *ChapterRef `json:"current"`
	Prev     *ChapterRef `json:"prev"`
	Next     *ChapterRef `json:"next"`
	Index    int         `json:"index"`
	Total    int         `json:"total"`
	Source   Source      `json:"source"`
	LastPage *int        `json:"last_page,omitempty"`
}

/*
Navigate locates chapterKey in an ordered chapter list.

Description: The first chapter whose slug equals chapterKey wins. When no slug
matches, chapterKey is tried as a durable file id, which is always unambiguous.

Returns:
  - prev, current, next: nil when absent
  - index: position of current, or -1 when not found
*/
func Navigate(chapters []IndexedChapter, chapterKey string) (prev, current, next *IndexedChapter, index int) {
	index = -1
	for i := range chapters {
		if chapters[i].Slug == chapterKey {
			index = i
			break
		}
	}

	if index < 0 {
		for i := range chapters {
			if chapters[i].ID == chapterKey {
				index = i
				break
			}
		}
	}

	if index < 0 {
		return nil, nil, nil, -1
	}

	current = &chapters[index]
	if index > 0 {
		prev = &chapters[index-1]
	}
	if index < len(chapters)-1 {
		next = &chapters[index+1]
	}

	return prev, current, next, index
}

// indexed projects live chapters to the session index shape.
func indexed(chapters []Chapter) []IndexedChapter {
	projected := make([]IndexedChapter, 0, len(chapters))
	for _, chapter := range chapters {
		projected = append(projected, IndexedChapter{
			ID:          chapter.ID,
			Name:        chapter.Name,
			DisplayName: chapter.DisplayName,
			Slug:        chapter.Slug,
		})
	}
	return projected
}
