// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug generates ASCII URL slugs from arbitrary Unicode strings.
//
// # Usage
//
// Slugs address stories ("tay-du-ky") and chapters ("chuong-5") in reader
// URLs. This package owns the one normalization pipeline every caller uses,
// plus the chapter-specific title and slug derivation from raw PDF file names.
//
// Slugs are not reversible and distinct names may collide.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ChapterFallback is the slug used when a chapter title has no ASCII content.
const ChapterFallback = "chuong"

var (
	// nonAlphanumeric matches any run of characters outside [a-z0-9].
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// pdfExtension matches a trailing ".pdf", any case.
	pdfExtension = regexp.MustCompile(`(?i)\.pdf$`)
	// titleSeparator matches the first series/episode separator of a file name.
	titleSeparator = regexp.MustCompile(`\s*[-–—:|]\s*`)

	// stroked letters have no canonical decomposition, so NFD keeps them.
	stroked = strings.NewReplacer("đ", "d", "Đ", "d")
)

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// # Transformation Pipeline
//
// 1. Converts to lowercase and folds "đ" to "d".
// 2. Normalizes to NFD (decomposes accented chars: ở → o + horn + hook above).
// 3. Removes combining marks (accents).
// 4. Replaces every run of characters outside [a-z0-9] with a single hyphen.
// 5. Trims leading/trailing hyphens.
//
// Empty or all-punctuation input yields "".
func From(s string) string {
	result := stroked.Replace(strings.ToLower(s))

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, result); err == nil {
		result = folded
	}

	result = nonAlphanumeric.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// ChapterTitle derives the short display title of a chapter from its raw file name.
//
// The ".pdf" extension is stripped and only the text before the first
// separator ("-", "–", "—", ":" or "|", with any surrounding whitespace) is
// kept, so "Chapter 12 - Finale.pdf" becomes "Chapter 12". When the leading
// part is empty the whole extension-stripped name is used.
func ChapterTitle(raw string) string {
	noExt := pdfExtension.ReplaceAllString(strings.TrimSpace(raw), "")

	first := titleSeparator.Split(noExt, 2)[0]
	if first == "" {
		first = noExt
	}

	return strings.TrimSpace(first)
}

// Chapter returns the URL slug of a chapter derived from its raw file name.
//
// It never returns an empty string: titles without ASCII content fall back
// to [ChapterFallback].
func Chapter(raw string) string {
	if s := From(ChapterTitle(raw)); s != "" {
		return s
	}
	return ChapterFallback
}
