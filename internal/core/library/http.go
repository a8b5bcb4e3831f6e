// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-drive/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/yomira-drive/internal/platform/request"
	"github.com/taibuivan/yomira-drive/internal/platform/respond"
	"github.com/taibuivan/yomira-drive/internal/platform/validate"
	"github.com/taibuivan/yomira-drive/pkg/pagination"
)

const (
	FieldSlug        = "slug"
	FieldChapterSlug = "chapter_slug"
	FieldDocumentID  = "id"

	maxSlugLength = 512
)

// # Handler Implementation

// Handler implements the HTTP layer for stories, chapters and documents.
type Handler struct {
	service *Service
}

// NewHandler constructs a new library [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches the JSON endpoints to the API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/stories", handler.ListStories)
	api.Post("/stories/next", handler.NextStories)
	api.Get("/stories/{slug}", handler.GetStory)
	api.Post("/stories/{slug}/next", handler.NextChapters)
	api.Post("/stories/{slug}/refresh", handler.RefreshIndex)
	api.Get("/reader/{slug}/{chapterSlug}", handler.Resolve)
}

// RegisterStreamRoutes attaches the streaming endpoints. They must not sit
// behind the JSON request timeout.
func (handler *Handler) RegisterStreamRoutes(api chi.Router) {
	api.Get("/documents/{id}", handler.StreamDocument)
}

// # Stories

/*
GET /api/v1/stories.

Description: Returns the story directory, bootstrapping it on first call.

Request:
  - q: string (optional fuzzy name filter)

Response:
  - 200: StorySnapshot: Entries plus the directory's error slot, with a meta block
*/
func (handler *Handler) ListStories(writer http.ResponseWriter, request *http.Request) {
	snapshot, err := handler.service.Stories(request.Context(), requestutil.Query(request, "q"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, snapshot, pagination.NewMeta(len(snapshot.Items), snapshot.HasMore))
}

/*
POST /api/v1/stories/next.

Response:
  - 200: StorySnapshot: Directory after loading one more page
  - 409: BUSY: A page is already loading
*/
func (handler *Handler) NextStories(writer http.ResponseWriter, request *http.Request) {
	snapshot, err := handler.service.NextStories(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, snapshot, pagination.NewMeta(len(snapshot.Items), snapshot.HasMore))
}

// # Chapters

/*
GET /api/v1/stories/{slug}.

Description: Selects the story and returns its first chapter page.

Response:
  - 200: StoryPage
  - 404: NOT_FOUND: No story with this slug
  - 503: CONFIGURATION_ERROR: Missing credential or root folder
*/
func (handler *Handler) GetStory(writer http.ResponseWriter, request *http.Request) {
	storySlug, ok := handler.storySlug(writer, request)
	if !ok {
		return
	}

	page, err := handler.service.OpenStory(request.Context(), storySlug)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, page)
}

/*
POST /api/v1/stories/{slug}/next.

Response:
  - 200: StoryPage: Chapters after loading one more page
  - 404: NOT_FOUND: No story with this slug
  - 409: BUSY: A page is already loading
*/
func (handler *Handler) NextChapters(writer http.ResponseWriter, request *http.Request) {
	storySlug, ok := handler.storySlug(writer, request)
	if !ok {
		return
	}

	page, err := handler.service.NextChapters(request.Context(), storySlug)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, page)
}

/*
POST /api/v1/stories/{slug}/refresh.

Description: Drains every chapter page and replaces the session index entry.

Response:
  - 200: ChapterIndex
  - 404: NOT_FOUND: No story with this slug
  - 502: TRANSPORT_ERROR/NETWORK_ERROR: The drain failed
*/
func (handler *Handler) RefreshIndex(writer http.ResponseWriter, request *http.Request) {
	storySlug, ok := handler.storySlug(writer, request)
	if !ok {
		return
	}

	entry, err := handler.service.Refresh(request.Context(), storySlug)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entry)
}

// # Reader

/*
GET /api/v1/reader/{slug}/{chapterSlug}.

Description: Resolves the current, previous and next chapter. The chapter
segment is a chapter slug or a chapter file id.

Response:
  - 200: Navigation: current is null while the chapter is not resolvable yet
  - 404: NOT_FOUND: No story with this slug
*/
func (handler *Handler) Resolve(writer http.ResponseWriter, request *http.Request) {
	storySlug, ok := handler.storySlug(writer, request)
	if !ok {
		return
	}

	chapterKey := requestutil.Param(request, "chapterSlug")

	v := &validate.Validator{}
	v.Required(FieldChapterSlug, chapterKey)
	v.MaxLen(FieldChapterSlug, chapterKey, maxSlugLength)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	navigation, err := handler.service.Resolve(request.Context(), storySlug, chapterKey)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, navigation)
}

// # Documents

/*
GET /api/v1/documents/{id}.

Description: Streams a chapter PDF from the storage backend.

Response:
  - 200: application/pdf
  - 400: VALIDATION_ERROR: Malformed file id
  - 422: DECODE_ERROR: Payload is not a PDF
  - 502: TRANSPORT_ERROR/NETWORK_ERROR: Download failed
*/
func (handler *Handler) StreamDocument(writer http.ResponseWriter, request *http.Request) {
	documentID := requestutil.Param(request, "id")

	v := &validate.Validator{}
	v.FileID(FieldDocumentID, documentID)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	document, err := handler.service.OpenDocument(request.Context(), documentID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer document.Body.Close()

	writer.Header().Set("Content-Type", document.ContentType)
	if document.ContentLength > 0 {
		writer.Header().Set("Content-Length", strconv.FormatInt(document.ContentLength, 10))
	}
	writer.WriteHeader(http.StatusOK)

	if _, err := io.Copy(writer, document.Body); err != nil {
		// Headers are gone; the client sees a truncated body.
		ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "document_stream_interrupted",
			slog.String("document_id", documentID),
			slog.Any("error", err),
		)
	}
}

// storySlug extracts and validates the {slug} segment.
func (handler *Handler) storySlug(writer http.ResponseWriter, request *http.Request) (string, bool) {
	storySlug := requestutil.Param(request, "slug")

	v := &validate.Validator{}
	v.MaxLen(FieldSlug, storySlug, maxSlugLength)
	v.Slug(FieldSlug, storySlug)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return "", false
	}

	return storySlug, true
}
