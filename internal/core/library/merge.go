// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// entry is anything with a remote identity and a sortable name.
type entry interface {
	entryID() string
	entryName() string
}

// newCollator returns the natural-order comparator: case-insensitive,
// accent-insensitive and numeric-aware ("Chapter 2" < "Chapter 10").
//
// A [collate.Collator] keeps internal buffers, so each merge builds its own.
func newCollator() *collate.Collator {
	return collate.New(language.Vietnamese, collate.IgnoreCase, collate.IgnoreDiacritics, collate.Numeric)
}

// compareEntries orders entries by collated name, then raw name, then id.
// The two tie-breaks make the order total, so it never depends on arrival order.
func compareEntries[T entry](collator *collate.Collator) func(a, b T) int {
	return func(a, b T) int {
		if c := collator.CompareString(a.entryName(), b.entryName()); c != 0 {
			return c
		}
		if c := cmp.Compare(a.entryName(), b.entryName()); c != 0 {
			return c
		}
		return cmp.Compare(a.entryID(), b.entryID())
	}
}

/*
mergeSorted folds incoming into existing by identity and returns a new,
naturally ordered slice.

Semantics:
  - Entries are keyed by id; an incoming entry replaces a stored one with the same id.
  - Applying the same incoming page twice yields the same result as once.
  - Neither input is modified.
*/
func mergeSorted[T entry](existing, incoming []T) []T {
	byID := make(map[string]T, len(existing)+len(incoming))
	for _, item := range existing {
		byID[item.entryID()] = item
	}
	for _, item := range incoming {
		byID[item.entryID()] = item
	}

	merged := make([]T, 0, len(byID))
	for _, item := range byID {
		merged = append(merged, item)
	}

	slices.SortFunc(merged, compareEntries[T](newCollator()))
	return merged
}
