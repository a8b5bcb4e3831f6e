// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/taibuivan/yomira-drive/internal/drive"
)

// fakeLister serves fixed folder contents in pages and records every request.
// Continuation tokens are decimal offsets.
type fakeLister struct {
	mu       sync.Mutex
	pageSize int
	files    map[string][]drive.File
	requests []drive.ListRequest

	// fail, when set, decides the outcome of the n-th request (1-based).
	fail func(n int) error

	// gate, when set, blocks each request until a value is received.
	gate chan struct{}
	// entered receives a value every time a request starts.
	entered chan struct{}
}

func newFakeLister(pageSize int) *fakeLister {
	return &fakeLister{
		pageSize: pageSize,
		files:    map[string][]drive.File{},
		entered:  make(chan struct{}, 64),
	}
}

func (f *fakeLister) withStories(root string, files ...drive.File) *fakeLister {
	f.files[drive.FolderQuery(root)] = files
	return f
}

func (f *fakeLister) withChapters(folderID string, files ...drive.File) *fakeLister {
	f.files[drive.DocumentQuery(folderID)] = files
	return f
}

func (f *fakeLister) List(ctx context.Context, request drive.ListRequest) (*drive.ListResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, request)
	n := len(f.requests)
	fail, gate := f.fail, f.gate
	f.mu.Unlock()

	select {
	case f.entered <- struct{}{}:
	default:
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if fail != nil {
		if err := fail(n); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	all := f.files[request.Query]
	offset := 0
	if request.PageToken != "" {
		offset, _ = strconv.Atoi(request.PageToken)
	}
	end := min(offset+f.pageSize, len(all))

	response := &drive.ListResponse{Files: append([]drive.File(nil), all[offset:end]...)}
	if end < len(all) {
		response.NextPageToken = strconv.Itoa(end)
	}
	return response, nil
}

func (f *fakeLister) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeLister) setFail(fail func(n int) error) {
	f.mu.Lock()
	f.fail = fail
	f.mu.Unlock()
}

// failOn fails exactly the listed requests with err.
func failOn(err error, requests ...int) func(int) error {
	return func(n int) error {
		for _, r := range requests {
			if r == n {
				return err
			}
		}
		return nil
	}
}

// fakeDocuments serves document bodies from memory.
type fakeDocuments struct {
	bodies map[string]string
	closed int
	mu     sync.Mutex
}

func (f *fakeDocuments) DownloadURL(fileID string) string {
	return "https://files.test/" + fileID + "?alt=media"
}

func (f *fakeDocuments) Open(_ context.Context, fileID string) (*drive.Document, error) {
	body, ok := f.bodies[fileID]
	if !ok {
		return nil, &drive.StatusError{StatusCode: 404, Body: "not found"}
	}
	return &drive.Document{
		Body:          &trackedBody{Reader: strings.NewReader(body), owner: f},
		ContentType:   "application/pdf",
		ContentLength: int64(len(body)),
	}, nil
}

type trackedBody struct {
	io.Reader
	owner *fakeDocuments
}

func (b *trackedBody) Close() error {
	b.owner.mu.Lock()
	b.owner.closed++
	b.owner.mu.Unlock()
	return nil
}

// fakePositions is a fixed last-page table.
type fakePositions map[string]int

func (f fakePositions) LastPage(_ context.Context, documentID string) (int, bool, error) {
	page, ok := f[documentID]
	return page, ok, nil
}

func folder(id, name string) drive.File {
	return drive.File{ID: id, Name: name}
}

// numberedChapters returns "Chapter 1.pdf" .. "Chapter n.pdf" with ids ch-1 .. ch-n.
func numberedChapters(n int) []drive.File {
	files := make([]drive.File, 0, n)
	for i := 1; i <= n; i++ {
		files = append(files, drive.File{ID: fmt.Sprintf("ch-%d", i), Name: fmt.Sprintf("Chapter %d.pdf", i), Size: "1024"})
	}
	return files
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
