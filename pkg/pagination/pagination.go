// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for cursor-paginated lists.
//
// # Overview
//
// Remote listings are paged with opaque continuation tokens rather than page
// numbers. This package standardizes how that state is reported in the API
// response envelope and how page sizes are bounded.
package pagination

const (
	// DefaultLimit is the number of items requested per remote page if not specified.
	DefaultLimit = 100
	// MaxLimit is the upper bound accepted by the storage backend for one page.
	MaxLimit = 1000
)

// Meta is the pagination metadata included in API list responses.
type Meta struct {
	Count   int  `json:"count"`
	HasMore bool `json:"has_more"`
}

// NewMeta constructs pagination metadata for a response.
//
// hasMore reports whether the remote listing still holds a continuation token.
func NewMeta(count int, hasMore bool) Meta {
	return Meta{
		Count:   count,
		HasMore: hasMore,
	}
}

// ClampLimit bounds a requested page size to [1, MaxLimit], using
// [DefaultLimit] for non-positive input.
func ClampLimit(limit int) int {
	if limit < 1 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
