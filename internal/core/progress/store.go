// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progress

import "context"

// # Repository Interfaces

// Store defines the persistence contract for reading positions.
type Store interface {

	/*
		LastPage returns the remembered page of a document.

		Returns:
		  - int: The page number (>= 1)
		  - bool: false when nothing is remembered for documentID
		  - error: Storage failures
	*/
	LastPage(ctx context.Context, documentID string) (int, bool, error)

	// Remember stores page as the last viewed page of documentID. Last writer wins.
	Remember(ctx context.Context, documentID string, page int) error
}
