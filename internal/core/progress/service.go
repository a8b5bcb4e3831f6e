// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progress

import (
	"context"
	"log/slog"

	"github.com/taibuivan/yomira-drive/internal/platform/apperr"
	"github.com/taibuivan/yomira-drive/internal/platform/validate"
)

const (
	FieldDocumentID = "document_id"
	FieldPage       = "page"
)

// # Service Layer

// Service validates and records reading positions.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService constructs a new [Service].
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

/*
Get returns the position of a document.

Returns:
  - *Position: LastPage is nil for a document never opened
  - error: VALIDATION_ERROR for a malformed id, INTERNAL_ERROR on storage failure
*/
func (service *Service) Get(ctx context.Context, documentID string) (*Position, error) {
	if err := (&validate.Validator{}).FileID(FieldDocumentID, documentID).Err(); err != nil {
		return nil, err
	}

	page, ok, err := service.store.LastPage(ctx, documentID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	position := &Position{DocumentID: documentID}
	if ok {
		position.LastPage = &page
	}
	return position, nil
}

// LastPage exposes the raw store lookup to the navigation resolver.
func (service *Service) LastPage(ctx context.Context, documentID string) (int, bool, error) {
	return service.store.LastPage(ctx, documentID)
}

/*
Remember records page as the last viewed page of a document.

Parameters:
  - ctx: context.Context
  - documentID: string (durable file id, never derived from content)
  - page: int (>= 1)

Returns:
  - *Position: The stored position
  - error: Validation or storage errors
*/
func (service *Service) Remember(ctx context.Context, documentID string, page int) (*Position, error) {
	validator := &validate.Validator{}
	validator.FileID(FieldDocumentID, documentID)
	validator.Min(FieldPage, page, 1)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.store.Remember(ctx, documentID, page); err != nil {
		return nil, apperr.Internal(err)
	}

	service.logger.DebugContext(ctx, "position_remembered",
		slog.String("document_id", documentID),
		slog.Int("page", page),
	)

	return &Position{DocumentID: documentID, LastPage: &page}, nil
}
