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

// Package refs extracts [[Title]] references from pasted free text for the
// smart-paste resolution flow.
package refs

import (
	"regexp"
	"strings"
)

var refPattern = regexp.MustCompile(`\[\[([^\[\]]+)\]\]`)

// Extract returns every [[...]] reference in text, trimmed, in order of
// appearance. Duplicates are kept; batch resolution deduplicates lookups
// itself. References that trim to nothing are dropped.
func Extract(text string) []string {
	matches := refPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		title := strings.TrimSpace(m[1])
		if title == "" {
			continue
		}
		out = append(out, title)
	}
	if len(out) == 0 {
		// All found references trimmed to nothing; same as finding none.
		return nil
	}
	return out
}
