// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package drive

import (
	"errors"
	"fmt"
	"net/url"
)

// StatusError reports a non-2xx response from the backend.
type StatusError struct {
	StatusCode int
	// Body is a truncated copy of the response body, for logs only.
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("drive: HTTP %d", e.StatusCode)
}

// NetworkError reports a request that never produced a response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "drive: request failed: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// newNetworkError strips the request URL from transport errors. The URL
// carries the API key and must never reach a log line.
func newNetworkError(err error) *NetworkError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &NetworkError{Err: fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)}
	}
	return &NetworkError{Err: err}
}
