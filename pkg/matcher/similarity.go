// Shelfmark
// Copyright (c) 2026 The Shelfmark Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Shelfmark.
//
// Shelfmark is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Shelfmark is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Shelfmark.  If not, see <http://www.gnu.org/licenses/>.

// Package matcher implements approximate title matching against the catalog:
// a normalized Levenshtein similarity score, a match classifier with
// exact/fuzzy/none confidence tiers, a concurrent batch resolver, and a
// duplicate grouper for full-catalog scans.
package matcher

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

// Similarity returns a normalized Levenshtein similarity between a and b in
// [0, 1]. Both strings are lower-cased first; whitespace and punctuation are
// significant. With d the edit distance and L the rune length of the longer
// string, the score is (L - d) / L, or 1.0 when both strings are empty.
//
// Comparison is by code point, so multi-byte input scores the same as Latin
// text. Time complexity is O(|a|*|b|), fine for human-entered titles.
func Similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	longest := len([]rune(a))
	if lb := len([]rune(b)); lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1.0
	}

	dist := edlib.LevenshteinDistance(a, b)

	// Division in float64 keeps threshold comparisons exact for the short
	// strings this is used on.
	return float64(longest-dist) / float64(longest)
}
