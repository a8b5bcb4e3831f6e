// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-drive/internal/platform/apperr"
)

func newTestRouter(service *Service) http.Handler {
	handler := NewHandler(service)
	router := chi.NewRouter()
	router.Route("/api/v1", func(api chi.Router) {
		handler.RegisterRoutes(api)
		handler.RegisterStreamRoutes(api)
	})
	return router
}

func serve(t *testing.T, router http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(method, target, nil))
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), target))
}

func TestHandler_ListStories(t *testing.T) {
	f := newFixture(t, 20, 3, nil)
	router := newTestRouter(f.service)

	recorder := serve(t, router, http.MethodGet, "/api/v1/stories")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data StorySnapshot `json:"data"`
		Meta struct {
			Count   int  `json:"count"`
			HasMore bool `json:"has_more"`
		} `json:"meta"`
	}
	decodeBody(t, recorder, &body)
	assert.Len(t, body.Data.Items, 3)
	assert.Equal(t, 3, body.Meta.Count)
	assert.False(t, body.Meta.HasMore)
	assert.Equal(t, StateReady, body.Data.State)

	recorder = serve(t, router, http.MethodGet, "/api/v1/stories?q=piece")
	decodeBody(t, recorder, &body)
	assert.Len(t, body.Data.Items, 1)
}

func TestHandler_GetStoryNotFound(t *testing.T) {
	f := newFixture(t, 20, 3, nil)
	router := newTestRouter(f.service)

	recorder := serve(t, router, http.MethodGet, "/api/v1/stories/missing")
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	var body struct {
		Code string `json:"code"`
	}
	decodeBody(t, recorder, &body)
	assert.Equal(t, apperr.CodeNotFound, body.Code)
}

func TestHandler_InvalidStorySlug(t *testing.T) {
	f := newFixture(t, 20, 3, nil)
	router := newTestRouter(f.service)

	tests := []struct {
		name   string
		method string
		target string
	}{
		{"uppercase_and_underscore", http.MethodGet, "/api/v1/stories/Story_A"},
		{"double_hyphen", http.MethodPost, "/api/v1/stories/story--a/next"},
		{"leading_hyphen", http.MethodGet, "/api/v1/reader/-story-a/chapter-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := serve(t, router, tt.method, tt.target)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)

			var body struct {
				Code string `json:"code"`
			}
			decodeBody(t, recorder, &body)
			assert.Equal(t, apperr.CodeValidation, body.Code)
		})
	}

	// Rejected before any listing call
	assert.Equal(t, 0, f.lister.calls())
}

func TestHandler_Resolve(t *testing.T) {
	f := newFixture(t, 20, 3, fakePositions{"ch-2": 4})
	router := newTestRouter(f.service)

	recorder := serve(t, router, http.MethodGet, "/api/v1/reader/story-a/chapter-2")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data Navigation `json:"data"`
	}
	decodeBody(t, recorder, &body)
	require.NotNil(t, body.Data.Current)
	assert.Equal(t, "ch-2", body.Data.Current.ID)
	assert.Equal(t, "chapter-1", body.Data.Prev.Slug)
	assert.Equal(t, "chapter-3", body.Data.Next.Slug)
	assert.Equal(t, 4, *body.Data.LastPage)
}

func TestHandler_Refresh(t *testing.T) {
	f := newFixture(t, 2, 5, nil)
	router := newTestRouter(f.service)

	recorder := serve(t, router, http.MethodPost, "/api/v1/stories/story-a/refresh")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data ChapterIndex `json:"data"`
	}
	decodeBody(t, recorder, &body)
	assert.Len(t, body.Data.Chapters, 5)
}

func TestHandler_StreamDocument(t *testing.T) {
	f := newFixture(t, 20, 1, nil)
	router := newTestRouter(f.service)

	recorder := serve(t, router, http.MethodGet, "/api/v1/documents/ch-1")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/pdf", recorder.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.7\nbody", recorder.Body.String())

	recorder = serve(t, router, http.MethodGet, "/api/v1/documents/ch-2")
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

	recorder = serve(t, router, http.MethodGet, "/api/v1/documents/bad.id")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = serve(t, router, http.MethodGet, "/api/v1/documents/missing")
	assert.Equal(t, http.StatusBadGateway, recorder.Code)
}
