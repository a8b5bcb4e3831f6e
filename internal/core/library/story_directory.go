// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/taibuivan/yomira-drive/internal/drive"
	"github.com/taibuivan/yomira-drive/internal/platform/apperr"
)

// MissingConfigMessage is reported when the credential or root folder is absent.
const MissingConfigMessage = "Missing API key or root folder ID (DRIVE_API_KEY, DRIVE_ROOT_FOLDER_ID)"

// # Story Directory

// StoryDirectory accumulates the story folders of the root folder.
//
// It bootstraps exactly once per process through [StoryDirectory.EnsureStarted]
// (NotStarted -> Starting -> Ready). Later pages are added by
// [StoryDirectory.FetchNextPage]. Failures land in a single error slot and never
// clear previously loaded stories.
type StoryDirectory struct {
	lister       Lister
	rootFolderID string
	configured   bool
	logger       *slog.Logger

	mu        sync.Mutex
	state     State
	ready     chan struct{}
	items     []Story
	nextToken string
	loaded    bool
	loading   bool
	settled   chan struct{}
	err       *apperr.AppError
}

// StorySnapshot is a point-in-time copy of a [StoryDirectory].
type StorySnapshot struct {
	State   State            `json:"state"`
	Items   []Story          `json:"items"`
	HasMore bool             `json:"has_more"`
	Loading bool             `json:"loading"`
	Error   *apperr.AppError `json:"error,omitempty"`
}

// NewStoryDirectory constructs a directory over rootFolderID.
//
// When configured is false no request is ever issued and the directory reports
// a configuration error instead.
func NewStoryDirectory(lister Lister, rootFolderID string, configured bool, logger *slog.Logger) *StoryDirectory {
	return &StoryDirectory{
		lister:       lister,
		rootFolderID: rootFolderID,
		configured:   configured && rootFolderID != "",
		logger:       logger.With(slog.String("component", "story_directory")),
		state:        StateNotStarted,
		ready:        make(chan struct{}),
	}
}

// # Lifecycle

/*
EnsureStarted runs the bootstrap fetch the first time it is called.

Description: Concurrent and repeated calls never issue a second bootstrap.
Callers arriving while it is in flight wait for it to finish. The fetch outlives
the caller's cancellation so the latch always settles.

Parameters:
  - ctx: context.Context (bounds only the wait)

Returns:
  - error: ctx.Err() if the wait was abandoned. Fetch outcomes go to the error slot.
*/
func (d *StoryDirectory) EnsureStarted(ctx context.Context) error {
	d.mu.Lock()

	switch d.state {
	case StateReady:
		d.mu.Unlock()
		return nil

	case StateStarting:
		ready := d.ready
		d.mu.Unlock()
		select {
		case <-ready:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	d.state = StateStarting

	if !d.configured {
		d.err = apperr.Configuration(MissingConfigMessage)
		d.logger.Error("stories_configuration_missing")
		d.markReady()
		d.mu.Unlock()
		return nil
	}

	d.beginLoad()
	d.mu.Unlock()

	_ = d.fetch(context.WithoutCancel(ctx), "")

	d.mu.Lock()
	d.markReady()
	d.mu.Unlock()

	return nil
}

// markReady settles the bootstrap latch. Callers hold d.mu.
func (d *StoryDirectory) markReady() {
	d.state = StateReady
	close(d.ready)
}

// # Pagination

/*
FetchNextPage loads one more page of stories.

Description: A no-op once the listing is exhausted. After a failed bootstrap it
re-issues the first page, which is the recovery path for the user.

Returns:
  - error: apperr.Busy while another page is loading, the configuration error,
    or the mapped fetch failure (also stored in the error slot)
*/
func (d *StoryDirectory) FetchNextPage(ctx context.Context) error {
	if err := d.EnsureStarted(ctx); err != nil {
		return err
	}

	d.mu.Lock()
	if !d.configured {
		err := d.err
		d.mu.Unlock()
		return err
	}
	if d.loading {
		d.mu.Unlock()
		return apperr.Busy("Stories are already loading")
	}
	if d.loaded && d.nextToken == "" {
		d.mu.Unlock()
		return nil
	}

	token := d.nextToken
	d.beginLoad()
	d.mu.Unlock()

	if err := d.fetch(context.WithoutCancel(ctx), token); err != nil {
		return err
	}
	return nil
}

// beginLoad marks a page as in flight. Callers hold d.mu.
func (d *StoryDirectory) beginLoad() {
	d.loading = true
	d.settled = make(chan struct{})
}

// waitSettled blocks until no page is in flight or ctx is done.
func (d *StoryDirectory) waitSettled(ctx context.Context) error {
	d.mu.Lock()
	if !d.loading {
		d.mu.Unlock()
		return nil
	}
	settled := d.settled
	d.mu.Unlock()

	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fetch requests one page and folds it in. The caller has called beginLoad.
func (d *StoryDirectory) fetch(ctx context.Context, token string) *apperr.AppError {
	page, err := d.lister.List(ctx, drive.ListRequest{
		Query:     drive.FolderQuery(d.rootFolderID),
		Fields:    drive.FieldsFolder,
		PageToken: token,
	})

	d.mu.Lock()
	defer d.mu.Unlock()

	d.loading = false
	close(d.settled)

	if err != nil {
		d.err = remoteError(err)
		d.logger.WarnContext(ctx, "stories_page_failed",
			slog.String("code", d.err.Code),
			slog.Any("error", err),
		)
		return d.err
	}

	incoming := make([]Story, 0, len(page.Files))
	for _, file := range page.Files {
		incoming = append(incoming, newStory(file))
	}

	d.items = mergeSorted(d.items, incoming)
	d.nextToken = page.NextPageToken
	d.loaded = true
	d.err = nil

	d.logger.InfoContext(ctx, "stories_page_loaded",
		slog.Int("received", len(incoming)),
		slog.Int("total", len(d.items)),
		slog.Bool("has_more", d.nextToken != ""),
	)

	return nil
}

// # Lookup

// Snapshot returns a copy of the current state.
func (d *StoryDirectory) Snapshot() StorySnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	return StorySnapshot{
		State:   d.state,
		Items:   slices.Clone(d.items),
		HasMore: d.nextToken != "",
		Loading: d.loading,
		Error:   d.err,
	}
}

// FindBySlug returns the first story, in collection order, whose slug matches.
func (d *StoryDirectory) FindBySlug(storySlug string) (Story, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, story := range d.items {
		if story.Slug == storySlug {
			return story, true
		}
	}
	return Story{}, false
}

/*
Lookup resolves a story slug, loading further pages while it is not found.

Description: A page already in flight for another caller is awaited rather
than reported as busy.

Returns:
  - Story: The first match in collection order
  - bool: false when the listing is exhausted without a match
  - error: The directory's error when it prevents a match, or a fetch failure
*/
func (d *StoryDirectory) Lookup(ctx context.Context, storySlug string) (Story, bool, error) {
	if err := d.EnsureStarted(ctx); err != nil {
		return Story{}, false, err
	}

	for {
		if story, ok := d.FindBySlug(storySlug); ok {
			return story, true, nil
		}

		snapshot := d.Snapshot()
		if snapshot.Error != nil {
			return Story{}, false, snapshot.Error
		}
		if !snapshot.HasMore {
			return Story{}, false, nil
		}

		err := d.FetchNextPage(ctx)
		if apperr.HasCode(err, apperr.CodeBusy) {
			if err := d.waitSettled(ctx); err != nil {
				return Story{}, false, err
			}
			continue
		}
		if err != nil {
			return Story{}, false, err
		}
	}
}
