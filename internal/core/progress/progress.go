// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package progress provides the reading-position store of the reader.

It remembers the last viewed page of every chapter document, keyed by the
storage backend's durable file id. Positions survive restarts when the store
is backed by a file.

# Bounded Growth

By default the store grows by one entry per document ever opened. A positive
entry limit turns it into a least-recently-remembered cache.
*/
package progress

// Position is the last viewed page of one document.
type Position struct {
	DocumentID string `json:"document_id"`
	// LastPage is nil when the document has never been opened.
	LastPage *int `json:"last_page"`
}
