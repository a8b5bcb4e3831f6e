// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"errors"

	"github.com/taibuivan/yomira-drive/internal/drive"
	"github.com/taibuivan/yomira-drive/internal/platform/apperr"
)

// # Remote Access

// Lister defines the remote listing contract the directories page through.
type Lister interface {

	/*
		List fetches one page of a folder listing.

		Parameters:
		  - ctx: context.Context
		  - request: drive.ListRequest (query, projection, continuation token)

		Returns:
		  - *drive.ListResponse: Entries and the next continuation token
		  - error: *drive.StatusError, *drive.NetworkError or decode failures
	*/
	List(ctx context.Context, request drive.ListRequest) (*drive.ListResponse, error)
}

// DocumentSource defines how chapter documents are located and streamed.
type DocumentSource interface {

	// DownloadURL returns the deterministic media URL of a file.
	DownloadURL(fileID string) string

	// Open starts streaming a file's media. The caller closes the body.
	Open(ctx context.Context, fileID string) (*drive.Document, error)
}

// # Error Mapping

// remoteError converts a listing or download failure into an [apperr.AppError].
func remoteError(err error) *apperr.AppError {
	if err == nil {
		return nil
	}

	if appErr := apperr.As(err); appErr != nil {
		return appErr
	}

	var statusErr *drive.StatusError
	if errors.As(err, &statusErr) {
		return apperr.Transport(statusErr.StatusCode, err)
	}

	var networkErr *drive.NetworkError
	if errors.As(err, &networkErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.Network(err)
	}

	return apperr.Internal(err)
}
