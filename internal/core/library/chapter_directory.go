// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/taibuivan/yomira-drive/internal/drive"
	"github.com/taibuivan/yomira-drive/internal/platform/apperr"
)

var tracer = otel.Tracer("yomira-drive/library")

// # Chapter Directory

// ChapterDirectory accumulates the chapter documents of one story folder.
//
// # Staleness
//
// Every fetch is tagged with the generation it was issued under. Selecting
// another folder bumps the generation, so a response for the previous folder
// that completes afterwards is dropped instead of polluting the new list.
type ChapterDirectory struct {
	lister      Lister
	downloadURL URLBuilder
	logger      *slog.Logger

	mu          sync.Mutex
	folderID    string
	generation  uint64
	items       []Chapter
	nextToken   string
	loaded      bool
	loading     bool
	prefetching int
	err         *apperr.AppError
}

// ChapterSnapshot is a point-in-time copy of a [ChapterDirectory].
type ChapterSnapshot struct {
	FolderID    string           `json:"folder_id"`
	Items       []Chapter        `json:"items"`
	Loaded      bool             `json:"loaded"`
	HasMore     bool             `json:"has_more"`
	Loading     bool             `json:"loading"`
	Prefetching bool             `json:"prefetching"`
	Error       *apperr.AppError `json:"error,omitempty"`
}

// NewChapterDirectory constructs an empty directory with no folder selected.
func NewChapterDirectory(lister Lister, downloadURL URLBuilder, logger *slog.Logger) *ChapterDirectory {
	return &ChapterDirectory{
		lister:      lister,
		downloadURL: downloadURL,
		logger:      logger.With(slog.String("component", "chapter_directory")),
	}
}

// # Target Folder

// Select targets folderID. Switching to a different folder resets the
// collection, token, loading flag and error slot. It reports whether a switch happened.
func (d *ChapterDirectory) Select(folderID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.folderID == folderID {
		return false
	}

	d.folderID = folderID
	d.generation++
	d.items = nil
	d.nextToken = ""
	d.loaded = false
	d.loading = false
	d.err = nil

	return true
}

// # Pagination

/*
FetchFirstPage loads exactly one page and replaces the collection with it.

Returns:
  - error: apperr.Busy while a page is in flight, or the mapped fetch failure
*/
func (d *ChapterDirectory) FetchFirstPage(ctx context.Context) error {
	return d.fetchPage(ctx, true)
}

/*
FetchNextPage loads the page after the stored continuation token and merges it.

Description: A no-op when no token is stored (nothing selected, first page not
loaded yet, or listing exhausted).
*/
func (d *ChapterDirectory) FetchNextPage(ctx context.Context) error {
	return d.fetchPage(ctx, false)
}

func (d *ChapterDirectory) fetchPage(ctx context.Context, first bool) error {
	d.mu.Lock()
	if d.folderID == "" {
		d.mu.Unlock()
		return nil
	}
	if d.loading {
		d.mu.Unlock()
		return apperr.Busy("Chapters are already loading")
	}
	if !first && d.nextToken == "" {
		d.mu.Unlock()
		return nil
	}

	folderID, generation := d.folderID, d.generation
	token := d.nextToken
	if first {
		token = ""
	}
	d.loading = true
	d.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	page, err := d.listPage(ctx, folderID, token)

	d.mu.Lock()
	defer d.mu.Unlock()

	if generation != d.generation {
		d.logger.DebugContext(ctx, "chapters_stale_page_dropped", slog.String("folder_id", folderID))
		return nil
	}

	d.loading = false

	if err != nil {
		d.err = remoteError(err)
		d.logger.WarnContext(ctx, "chapters_page_failed",
			slog.String("folder_id", folderID),
			slog.String("code", d.err.Code),
			slog.Any("error", err),
		)
		return d.err
	}

	if first {
		d.items = mergeSorted(nil, page.chapters)
	} else {
		d.items = mergeSorted(d.items, page.chapters)
	}
	d.nextToken = page.nextToken
	d.loaded = true
	d.err = nil

	d.logger.InfoContext(ctx, "chapters_page_loaded",
		slog.String("folder_id", folderID),
		slog.Int("received", len(page.chapters)),
		slog.Int("total", len(d.items)),
		slog.Bool("has_more", d.nextToken != ""),
	)

	return nil
}

// # Background Drain

/*
PrefetchAll drains every page of the selected folder and returns the full,
ordered collection.

Description: It neither reads nor writes the directory's collection or error
slot. Failures are logged and yield nil, never a partial list.
*/
func (d *ChapterDirectory) PrefetchAll(ctx context.Context) []Chapter {
	d.mu.Lock()
	folderID := d.folderID
	d.mu.Unlock()

	if folderID == "" {
		return nil
	}

	chapters, err := d.DrainFolder(ctx, folderID)
	if err != nil {
		return nil
	}
	return chapters
}

// DrainFolder lists every page of folderID, merging as it goes.
//
// The returned error is already logged.
func (d *ChapterDirectory) DrainFolder(ctx context.Context, folderID string) ([]Chapter, error) {
	ctx, span := tracer.Start(ctx, "chapters.drain",
		trace.WithAttributes(attribute.String("folder_id", folderID)),
	)
	defer span.End()

	d.mu.Lock()
	d.prefetching++
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.prefetching--
		d.mu.Unlock()
	}()

	var (
		all   = []Chapter{}
		token string
		pages int
	)

	for {
		page, err := d.listPage(ctx, folderID, token)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "page failed")
			d.logger.WarnContext(ctx, "chapter_prefetch_failed",
				slog.String("folder_id", folderID),
				slog.Int("pages_done", pages),
				slog.Any("error", err),
			)
			return nil, remoteError(err)
		}

		pages++
		all = mergeSorted(all, page.chapters)
		token = page.nextToken

		if token == "" {
			break
		}
	}

	span.SetAttributes(attribute.Int("pages", pages), attribute.Int("chapters", len(all)))

	d.logger.InfoContext(ctx, "chapter_prefetch_done",
		slog.String("folder_id", folderID),
		slog.Int("pages", pages),
		slog.Int("chapters", len(all)),
	)

	return all, nil
}

type chapterPage struct {
	chapters  []Chapter
	nextToken string
}

func (d *ChapterDirectory) listPage(ctx context.Context, folderID, token string) (chapterPage, error) {
	response, err := d.lister.List(ctx, drive.ListRequest{
		Query:     drive.DocumentQuery(folderID),
		Fields:    drive.FieldsDocument,
		PageToken: token,
	})
	if err != nil {
		return chapterPage{}, err
	}

	chapters := make([]Chapter, 0, len(response.Files))
	for _, file := range response.Files {
		chapters = append(chapters, newChapter(file, d.downloadURL))
	}

	return chapterPage{chapters: chapters, nextToken: response.NextPageToken}, nil
}

// # Lookup

// Snapshot returns a copy of the current state.
func (d *ChapterDirectory) Snapshot() ChapterSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	return ChapterSnapshot{
		FolderID:    d.folderID,
		Items:       slices.Clone(d.items),
		Loaded:      d.loaded,
		HasMore:     d.nextToken != "",
		Loading:     d.loading,
		Prefetching: d.prefetching > 0,
		Error:       d.err,
	}
}
