// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package library provides the story and chapter index of the reader.

Stories are the top-level folders of the configured root folder; chapters are
the PDF documents inside one story folder. Both are listed page by page from
the remote storage backend and accumulated into slug-addressable collections.

# Core Responsibility

  - Accumulation: [StoryDirectory] and [ChapterDirectory] merge remote pages
    into one deduplicated, naturally ordered collection.
  - Session Index: [SessionIndex] keeps a fully drained chapter list per story
    so navigation does not wait on pagination.
  - Navigation: [Service.Resolve] finds the current, previous and next chapter
    of a story from a pair of slugs.

All derived names and slugs come from [slug.From], [slug.Chapter] and
[slug.ChapterTitle], never from ad hoc string handling.
*/
package library

import (
	"strconv"
	"time"

	"github.com/taibuivan/yomira-drive/internal/drive"
	"github.com/taibuivan/yomira-drive/pkg/slug"
)

// # Story Aggregate

// Story is one folder under the root folder.
type Story struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	ModifiedTime time.Time `json:"modified_time"`
}

func (s Story) entryID() string   { return s.ID }
func (s Story) entryName() string { return s.Name }

// newStory maps a listing entry to a [Story].
func newStory(file drive.File) Story {
	return Story{
		ID:           file.ID,
		Name:         file.Name,
		Slug:         slug.From(file.Name),
		ModifiedTime: file.ModifiedTime,
	}
}

// # Chapter Aggregate

// Chapter is one PDF document inside a story folder.
//
// DisplayName and Slug are pure functions of Name, so a chapter rebuilt from
// the session index always agrees with one fetched live.
type Chapter struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	DisplayName  string    `json:"display_name"`
	Slug         string    `json:"slug"`
	Size         *int64    `json:"size,omitempty"`
	ModifiedTime time.Time `json:"modified_time"`
	DownloadURL  string    `json:"download_url"`
}

func (c Chapter) entryID() string   { return c.ID }
func (c Chapter) entryName() string { return c.Name }

// URLBuilder returns the media URL of a file.
type URLBuilder func(fileID string) string

// newChapter maps a listing entry to a [Chapter].
func newChapter(file drive.File, downloadURL URLBuilder) Chapter {
	chapter := Chapter{
		ID:           file.ID,
		Name:         file.Name,
		DisplayName:  slug.ChapterTitle(file.Name),
		Slug:         slug.Chapter(file.Name),
		ModifiedTime: file.ModifiedTime,
	}

	if downloadURL != nil {
		chapter.DownloadURL = downloadURL(file.ID)
	}

	// The backend reports sizes as decimal strings.
	if size, err := strconv.ParseInt(file.Size, 10, 64); err == nil {
		chapter.Size = &size
	}

	return chapter
}

// # Directory State

// State is the bootstrap phase of a directory.
type State string

const (
	StateNotStarted State = "not_started"
	StateStarting   State = "starting"
	StateReady      State = "ready"
)
