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

package refs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestExtract covers reference extraction from pasted text.
func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		reason string
		want   []string
	}{
		{
			name:   "no references",
			text:   "just some prose about books",
			want:   nil,
			reason: "plain text yields nothing",
		},
		{
			name:   "single reference",
			text:   "currently reading [[Dune]] again",
			want:   []string{"Dune"},
			reason: "basic [[...]] markup",
		},
		{
			name:   "multiple references keep order and duplicates",
			text:   "loved [[1984]], then [[Nineteen Eighty Four]], then [[1984]] again",
			want:   []string{"1984", "Nineteen Eighty Four", "1984"},
			reason: "duplicates are preserved for the resolver to dedupe",
		},
		{
			name:   "inner whitespace trimmed",
			text:   "see [[  The Great Gatsby ]]",
			want:   []string{"The Great Gatsby"},
			reason: "stray padding inside the brackets is not part of the title",
		},
		{
			name:   "empty reference dropped",
			text:   "broken markup [[   ]] here",
			want:   nil,
			reason: "references that trim to nothing are useless",
		},
		{
			name:   "only empty references yield nil",
			text:   "[[ ]] and [[\t]] but no titles",
			want:   nil,
			reason: "all-empty markup is the same as no markup at all",
		},
		{
			name:   "empty reference dropped among real ones",
			text:   "[[Dune]] [[  ]] [[Hyperion]]",
			want:   []string{"Dune", "Hyperion"},
			reason: "empty references drop without disturbing their neighbors",
		},
		{
			name:   "unclosed brackets ignored",
			text:   "half markup [[Dune and more text",
			want:   nil,
			reason: "only complete [[...]] pairs count",
		},
		{
			name:   "multiline text",
			text:   "[[Dune]]\nsome notes\n[[Hyperion]]",
			want:   []string{"Dune", "Hyperion"},
			reason: "references found across lines",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text), tt.reason)
		})
	}
}
