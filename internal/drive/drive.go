// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package drive is the client for the remote file storage listing API
(Google Drive v3 "files" endpoint, read-only, API-key authenticated).

Core Responsibilities:

  - Listing: One page of "children of folder X" per call, always ordered
    by natural name and bounded by a fixed page size.
  - Download: Deterministic media URLs and a streaming fetch for documents.
  - Failure: Non-success statuses surface as [*StatusError], connection
    failures as [*NetworkError]. Nothing is retried here.

The package knows nothing about stories or chapters; it only speaks the
backend's query language and JSON shapes.
*/
package drive

import (
	"strings"
	"time"
)

// # Backend Vocabulary

const (
	// MimeFolder is the backend's mime type for folders.
	MimeFolder = "application/vnd.google-apps.folder"
	// MimePDF is the mime type of chapter documents.
	MimePDF = "application/pdf"

	// OrderNatural sorts results by name, numeric-aware.
	OrderNatural = "name_natural"

	// FieldsFolder projects the attributes stored for a story folder.
	FieldsFolder = "files(id,name,modifiedTime)"
	// FieldsDocument projects the attributes stored for a chapter document.
	FieldsDocument = "files(id,name,modifiedTime,size)"
)

// # Wire Types

// File is one entry of a listing response.
type File struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ModifiedTime time.Time `json:"modifiedTime"`
	// Size is the byte size as a decimal string. Folders have none.
	Size string `json:"size,omitempty"`
}

// ListRequest describes one page request.
type ListRequest struct {
	// Query is a backend filter expression, see [ChildrenQuery].
	Query string
	// Fields is the response projection. "nextPageToken" is always appended.
	Fields string
	// PageToken continues a previous listing. Empty requests the first page.
	PageToken string
}

// ListResponse is one page of results.
type ListResponse struct {
	Files []File `json:"files"`
	// NextPageToken is empty when no further pages exist.
	NextPageToken string `json:"nextPageToken,omitempty"`
}

// # Query Builders

// ChildrenQuery builds the filter "non-trashed children of parentID with mimeType".
func ChildrenQuery(parentID, mimeType string) string {
	return "'" + escape(parentID) + "' in parents and mimeType='" + escape(mimeType) + "' and trashed=false"
}

// FolderQuery lists the sub-folders of parentID.
func FolderQuery(parentID string) string {
	return ChildrenQuery(parentID, MimeFolder)
}

// DocumentQuery lists the PDF documents of parentID.
func DocumentQuery(parentID string) string {
	return ChildrenQuery(parentID, MimePDF)
}

// escape quotes a value for use inside a single-quoted query literal.
func escape(value string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
}
