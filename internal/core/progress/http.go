// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progress

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/yomira-drive/internal/platform/request"
	"github.com/taibuivan/yomira-drive/internal/platform/respond"
)

// # Handler Implementation

// Handler implements the HTTP layer for reading positions.
type Handler struct {
	service *Service
}

// NewHandler constructs a new progress [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches position endpoints to the API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/positions/{id}", handler.GetPosition)
	api.Put("/positions/{id}", handler.PutPosition)
}

/*
GET /api/v1/positions/{id}.

Response:
  - 200: Position: last_page is null for a document never opened
  - 400: VALIDATION_ERROR: Malformed file id
*/
func (handler *Handler) GetPosition(writer http.ResponseWriter, request *http.Request) {
	position, err := handler.service.Get(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, position)
}

// putPositionRequest defines the inbound JSON schema of a position update.
type putPositionRequest struct {
	Page int `json:"page"`
}

/*
PUT /api/v1/positions/{id}.

Request:
  - body: putPositionRequest

Response:
  - 200: Position: The stored position
  - 400: ErrInvalidJSON/Validation: Invalid payload or page < 1
*/
func (handler *Handler) PutPosition(writer http.ResponseWriter, request *http.Request) {
	var input putPositionRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	position, err := handler.service.Remember(request.Context(), requestutil.Param(request, "id"), input.Page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, position)
}
