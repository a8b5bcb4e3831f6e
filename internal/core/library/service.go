// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/taibuivan/yomira-drive/internal/drive"
	"github.com/taibuivan/yomira-drive/internal/platform/apperr"
)

// DocumentRoute is the path prefix the reader streams chapter documents from.
const DocumentRoute = "/api/v1/documents/"

// pdfMagic is the signature every readable document starts with.
var pdfMagic = []byte("%PDF-")

// warmTimeout bounds one background drain.
const warmTimeout = 5 * time.Minute

// PositionReader exposes the last viewed page of a document.
type PositionReader interface {
	LastPage(ctx context.Context, documentID string) (int, bool, error)
}

// # Service Layer

// Service orchestrates the directories, the session index and the document
// source behind the reader API.
type Service struct {
	stories   *StoryDirectory
	chapters  *ChapterDirectory
	index     *SessionIndex
	documents DocumentSource
	positions PositionReader
	logger    *slog.Logger

	warmMu     sync.Mutex
	warming    map[string]struct{}
	background sync.WaitGroup
}

// NewService constructs a new [Service]. positions may be nil.
func NewService(
	stories *StoryDirectory,
	chapters *ChapterDirectory,
	index *SessionIndex,
	documents DocumentSource,
	positions PositionReader,
	logger *slog.Logger,
) *Service {
	return &Service{
		stories:   stories,
		chapters:  chapters,
		index:     index,
		documents: documents,
		positions: positions,
		logger:    logger,
		warming:   map[string]struct{}{},
	}
}

// StoryPage is a story together with its chapter directory state.
type StoryPage struct {
	Story    Story           `json:"story"`
	Chapters ChapterSnapshot `json:"chapters"`
	Indexed  bool            `json:"indexed"`
}

// # Story Operations

/*
Stories returns the story directory, bootstrapping it on first use.

Parameters:
  - ctx: context.Context
  - query: string (optional fuzzy filter on the story name)

Returns:
  - StorySnapshot: Items are filtered when query is set
  - error: ctx.Err() if the bootstrap wait was abandoned
*/
func (service *Service) Stories(ctx context.Context, query string) (StorySnapshot, error) {
	if err := service.stories.EnsureStarted(ctx); err != nil {
		return StorySnapshot{}, err
	}

	snapshot := service.stories.Snapshot()
	if query == "" {
		return snapshot, nil
	}

	filtered := make([]Story, 0, len(snapshot.Items))
	for _, story := range snapshot.Items {
		if fuzzy.MatchNormalizedFold(query, story.Name) {
			filtered = append(filtered, story)
		}
	}
	snapshot.Items = filtered

	return snapshot, nil
}

/*
NextStories loads one more page of stories.

Description: Fetch failures stay in the snapshot's error slot next to the
entries already loaded. Only a repeated click while a page is in flight is
reported as an error.

Returns:
  - StorySnapshot: The directory after the fetch
  - error: apperr.Busy, or ctx.Err() if the bootstrap wait was abandoned
*/
func (service *Service) NextStories(ctx context.Context) (StorySnapshot, error) {
	err := service.stories.FetchNextPage(ctx)
	if err != nil && (apperr.HasCode(err, apperr.CodeBusy) || !apperr.IsAppError(err)) {
		return StorySnapshot{}, err
	}
	return service.stories.Snapshot(), nil
}

// story resolves a slug or fails with a typed error.
func (service *Service) story(ctx context.Context, storySlug string) (Story, error) {
	story, ok, err := service.stories.Lookup(ctx, storySlug)
	if err != nil {
		return Story{}, err
	}
	if !ok {
		return Story{}, apperr.NotFound("Story")
	}
	return story, nil
}

// # Chapter Operations

/*
OpenStory selects a story and makes sure its first chapter page is loaded.

Description: When the session index holds no complete list for the story yet,
a background drain is started to warm it.

Returns:
  - *StoryPage: The story with the chapter directory state
  - error: NotFound, or the story directory's error
*/
func (service *Service) OpenStory(ctx context.Context, storySlug string) (*StoryPage, error) {
	story, err := service.story(ctx, storySlug)
	if err != nil {
		return nil, err
	}

	service.liveChapters(ctx, story)

	indexed := service.cached(ctx, story.Slug) != nil
	if !indexed {
		service.warm(ctx, story)
	}

	return &StoryPage{Story: story, Chapters: service.folderSnapshot(ctx, story), Indexed: indexed}, nil
}

/*
NextChapters loads the next chapter page of a story.

Returns:
  - *StoryPage: The story with the chapter directory state
  - error: NotFound, or apperr.Busy while a page is in flight
*/
func (service *Service) NextChapters(ctx context.Context, storySlug string) (*StoryPage, error) {
	story, err := service.story(ctx, storySlug)
	if err != nil {
		return nil, err
	}

	if service.chapters.Select(story.ID) {
		err = service.chapters.FetchFirstPage(ctx)
	} else {
		err = service.chapters.FetchNextPage(ctx)
	}
	if apperr.HasCode(err, apperr.CodeBusy) {
		return nil, err
	}

	return &StoryPage{
		Story:    story,
		Chapters: service.folderSnapshot(ctx, story),
		Indexed:  service.cached(ctx, story.Slug) != nil,
	}, nil
}

/*
Refresh rebuilds the session index of a story from a fresh full drain.

Description: The previous entry is dropped first, so a failed drain leaves the
story uncached and navigation falls back to the live directory.

Returns:
  - *ChapterIndex: The new entry
  - error: NotFound or the mapped drain failure
*/
func (service *Service) Refresh(ctx context.Context, storySlug string) (*ChapterIndex, error) {
	story, err := service.story(ctx, storySlug)
	if err != nil {
		return nil, err
	}

	if err := service.index.Forget(ctx, story.Slug); err != nil {
		return nil, apperr.Internal(err)
	}

	chapters, err := service.chapters.DrainFolder(ctx, story.ID)
	if err != nil {
		return nil, err
	}

	if err := service.index.Save(ctx, story.Slug, chapters); err != nil {
		return nil, apperr.Internal(err)
	}

	service.logger.InfoContext(ctx, "session_index_refreshed",
		slog.String("story_slug", story.Slug),
		slog.Int("chapters", len(chapters)),
	)

	entry, err := service.index.Load(ctx, story.Slug)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return entry, nil
}

// # Navigation

/*
Resolve finds the current, previous and next chapter of a story.

Description: A non-empty session index entry is preferred. Otherwise the live
chapter directory is used, which may only cover the first page, and a
background drain is started. Prev and next are re-resolved on every call from
their slugs, never from a remembered index.

Parameters:
  - ctx: context.Context
  - storySlug: string
  - chapterKey: string (chapter slug, or the chapter's file id)

Returns:
  - *Navigation: Current is nil when the chapter is not resolvable yet
  - error: NotFound for an unknown story, or the story directory's error
*/
func (service *Service) Resolve(ctx context.Context, storySlug, chapterKey string) (*Navigation, error) {
	story, err := service.story(ctx, storySlug)
	if err != nil {
		return nil, err
	}

	chapters, source := []IndexedChapter(nil), SourceSession
	if entry := service.cached(ctx, story.Slug); entry != nil {
		chapters = entry.Chapters
	} else {
		source = SourceLive
		chapters = indexed(service.liveChapters(ctx, story))
		service.warm(ctx, story)
	}

	prev, current, next, index := Navigate(chapters, chapterKey)

	navigation := &Navigation{
		Story:   story,
		Current: service.ref(current),
		Prev:    service.ref(prev),
		Next:    service.ref(next),
		Index:   index,
		Total:   len(chapters),
		Source:  source,
	}

	if current != nil && service.positions != nil {
		page, ok, err := service.positions.LastPage(ctx, current.ID)
		switch {
		case err != nil:
			service.logger.WarnContext(ctx, "last_page_read_failed",
				slog.String("document_id", current.ID),
				slog.Any("error", err),
			)
		case ok:
			navigation.LastPage = &page
		}
	}

	return navigation, nil
}

// cached returns a non-empty index entry, or nil. Store failures read as a miss.
func (service *Service) cached(ctx context.Context, storySlug string) *ChapterIndex {
	entry, err := service.index.Load(ctx, storySlug)
	if err != nil {
		service.logger.WarnContext(ctx, "session_index_read_failed",
			slog.String("story_slug", storySlug),
			slog.Any("error", err),
		)
		return nil
	}
	if entry == nil || len(entry.Chapters) == 0 {
		return nil
	}
	return entry
}

// liveChapters selects the story folder, loads its first page if needed and
// returns what the directory holds. Fetch failures stay in the directory.
// It returns nil when another request retargeted the directory meanwhile.
func (service *Service) liveChapters(ctx context.Context, story Story) []Chapter {
	service.chapters.Select(story.ID)

	if snapshot := service.chapters.Snapshot(); snapshot.FolderID == story.ID && !snapshot.Loaded && !snapshot.Loading {
		_ = service.chapters.FetchFirstPage(ctx)
	}

	return service.folderSnapshot(ctx, story).Items
}

// folderSnapshot returns the chapter directory state when it still targets
// the story's folder, and an empty placeholder for that folder otherwise.
func (service *Service) folderSnapshot(ctx context.Context, story Story) ChapterSnapshot {
	snapshot := service.chapters.Snapshot()
	if snapshot.FolderID != story.ID {
		service.logger.DebugContext(ctx, "chapters_target_switched",
			slog.String("story_slug", story.Slug),
			slog.String("folder_id", snapshot.FolderID),
		)
		return ChapterSnapshot{FolderID: story.ID}
	}
	return snapshot
}

func (service *Service) ref(chapter *IndexedChapter) *ChapterRef {
	if chapter == nil {
		return nil
	}
	return &ChapterRef{
		ID:          chapter.ID,
		Name:        chapter.Name,
		DisplayName: chapter.DisplayName,
		Slug:        chapter.Slug,
		DownloadURL: service.documents.DownloadURL(chapter.ID),
		DocumentURL: DocumentRoute + chapter.ID,
	}
}

// # Background Warm-up

// warm drains the story folder in the background and saves the result to the
// session index. At most one drain runs per story.
func (service *Service) warm(ctx context.Context, story Story) {
	service.warmMu.Lock()
	if _, running := service.warming[story.Slug]; running {
		service.warmMu.Unlock()
		return
	}
	service.warming[story.Slug] = struct{}{}
	service.warmMu.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), warmTimeout)

	service.background.Add(1)
	go func() {
		defer service.background.Done()
		defer cancel()
		defer func() {
			service.warmMu.Lock()
			delete(service.warming, story.Slug)
			service.warmMu.Unlock()
		}()

		chapters, err := service.chapters.DrainFolder(ctx, story.ID)
		if err != nil {
			return
		}

		if err := service.index.Save(ctx, story.Slug, chapters); err != nil {
			service.logger.WarnContext(ctx, "session_index_save_failed",
				slog.String("story_slug", story.Slug),
				slog.Any("error", err),
			)
		}
	}()
}

// Wait blocks until background drains finish or ctx is done.
func (service *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		service.background.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// # Documents

// Document is a chapter document stream that starts with a PDF signature.
type Document struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

type peekedBody struct {
	io.Reader
	io.Closer
}

/*
OpenDocument streams a chapter document.

Description: The payload is sniffed before anything is returned, so a
malformed document fails with a decode error instead of a broken stream.

Returns:
  - *Document: The caller must close Body
  - error: Transport, Network or Decode errors
*/
func (service *Service) OpenDocument(ctx context.Context, documentID string) (*Document, error) {
	source, err := service.documents.Open(ctx, documentID)
	if err != nil {
		return nil, remoteError(err)
	}

	reader := bufio.NewReader(source.Body)
	head, err := reader.Peek(len(pdfMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		_ = source.Body.Close()
		return nil, remoteError(&drive.NetworkError{Err: err})
	}
	if !bytes.Equal(head, pdfMagic) {
		_ = source.Body.Close()
		service.logger.WarnContext(ctx, "document_not_pdf", slog.String("document_id", documentID))
		return nil, apperr.Decode("Document is not a readable PDF")
	}

	contentType := source.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}

	return &Document{
		Body:          peekedBody{Reader: reader, Closer: source.Body},
		ContentType:   contentType,
		ContentLength: source.ContentLength,
	}, nil
}
