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

package matcher

import (
	"strings"
	"testing"

	"github.com/ShelfmarkProject/shelfmark-core/pkg/catalog"
	"pgregory.net/rapid"
)

// ============================================================================
// Generators
// ============================================================================

// titleGen generates realistic book-title strings with word boundaries.
func titleGen() *rapid.Generator[string] {
	words := []string{
		"The", "Dune", "Stone", "Shadow", "Night", "House", "Winter",
		"Garden", "Secret", "Last", "First", "Dragon", "Crown", "River",
		"Blood", "Silent", "Lost", "Dark", "Light", "Empire",
	}
	return rapid.Custom(func(t *rapid.T) string {
		count := rapid.IntRange(1, 5).Draw(t, "wordCount")
		parts := make([]string, count)
		for i := 0; i < count; i++ {
			parts[i] = rapid.SampledFrom(words).Draw(t, "word")
		}
		return strings.Join(parts, " ")
	})
}

// asciiGen generates printable ASCII strings whose case folding round-trips.
func asciiGen() *rapid.Generator[string] {
	return rapid.StringMatching(`[ -~]{0,40}`)
}

// recordGen generates catalog records with plausible fields.
func recordGen() *rapid.Generator[catalog.Record] {
	authors := []string{"Frank Herbert", "Ursula K. Le Guin", "Gene Wolfe", "N. K. Jemisin"}
	return rapid.Custom(func(t *rapid.T) catalog.Record {
		return catalog.Record{
			ID:           rapid.StringMatching(`[a-z0-9]{4,12}`).Draw(t, "id"),
			Title:        titleGen().Draw(t, "title"),
			Authors:      rapid.SliceOfN(rapid.SampledFrom(authors), 0, 3).Draw(t, "authors"),
			EditionCount: rapid.IntRange(0, 5).Draw(t, "editionCount"),
		}
	})
}

// recordSliceGen generates a slice of catalog records.
func recordSliceGen() *rapid.Generator[[]catalog.Record] {
	return rapid.SliceOfN(recordGen(), 0, 20)
}

// ============================================================================
// Similarity Property Tests
// ============================================================================

// TestPropertySimilarityReflexive verifies similarity(s, s) == 1.0.
func TestPropertySimilarityReflexive(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")

		if sim := Similarity(s, s); sim != 1.0 {
			t.Fatalf("Similarity(%q, %q) = %v, want 1.0", s, s, sim)
		}
	})
}

// TestPropertySimilaritySymmetric verifies argument order independence.
func TestPropertySimilaritySymmetric(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.String().Draw(t, "a")
		b := rapid.String().Draw(t, "b")

		if Similarity(a, b) != Similarity(b, a) {
			t.Fatalf("Similarity(%q, %q) != Similarity(%q, %q)", a, b, b, a)
		}
	})
}

// TestPropertySimilarityBounds verifies scores stay in [0, 1].
func TestPropertySimilarityBounds(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.String().Draw(t, "a")
		b := rapid.String().Draw(t, "b")

		sim := Similarity(a, b)
		if sim < 0.0 || sim > 1.0 {
			t.Fatalf("Similarity(%q, %q) = %v out of bounds [0, 1]", a, b, sim)
		}
	})
}

// TestPropertySimilarityCaseInsensitive verifies case never lowers the score
// for ASCII input.
func TestPropertySimilarityCaseInsensitive(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		s := asciiGen().Draw(t, "s")

		if sim := Similarity(s, strings.ToUpper(s)); sim != 1.0 {
			t.Fatalf("Similarity(%q, upper) = %v, want 1.0", s, sim)
		}
	})
}

// ============================================================================
// Classifier Property Tests
// ============================================================================

// TestPropertyClassifyNoneHasNoMatch verifies the none-confidence invariant.
func TestPropertyClassifyNoneHasNoMatch(t *testing.T) {
	t.Parallel()
	classifier, _ := NewClassifier(DefaultThreshold)
	rapid.Check(t, func(t *rapid.T) {
		query := rapid.String().Draw(t, "query")
		candidates := recordSliceGen().Draw(t, "candidates")

		result := classifier.Classify(query, candidates)
		if result.Confidence != ConfidenceNone {
			return
		}
		if result.MatchedID != "" || result.MatchedTitle != "" || result.Similarity != 0 {
			t.Fatalf("none result must carry no match data: %+v", result)
		}
	})
}

// TestPropertyClassifyExactImpliesEquality verifies the exact-tier invariant.
func TestPropertyClassifyExactImpliesEquality(t *testing.T) {
	t.Parallel()
	classifier, _ := NewClassifier(DefaultThreshold)
	rapid.Check(t, func(t *rapid.T) {
		query := titleGen().Draw(t, "query")
		candidates := recordSliceGen().Draw(t, "candidates")

		result := classifier.Classify(query, candidates)
		if result.Confidence != ConfidenceExact {
			return
		}
		if !strings.EqualFold(query, result.MatchedTitle) {
			t.Fatalf("exact match %q is not case-insensitively equal to query %q",
				result.MatchedTitle, query)
		}
		if result.Similarity != 1.0 {
			t.Fatalf("exact match must report similarity 1.0, got %v", result.Similarity)
		}
	})
}

// TestPropertyClassifyFuzzyMeetsThreshold verifies fuzzy results clear the
// configured threshold.
func TestPropertyClassifyFuzzyMeetsThreshold(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		threshold := rapid.Float64Range(0.1, 1.0).Draw(t, "threshold")
		classifier, err := NewClassifier(threshold)
		if err != nil {
			t.Fatalf("unexpected constructor error: %v", err)
		}
		query := titleGen().Draw(t, "query")
		candidates := recordSliceGen().Draw(t, "candidates")

		result := classifier.Classify(query, candidates)
		if result.Confidence == ConfidenceFuzzy && result.Similarity < threshold {
			t.Fatalf("fuzzy similarity %v below threshold %v", result.Similarity, threshold)
		}
	})
}

// TestPropertyClassifyDeterministic verifies same inputs produce same outputs.
func TestPropertyClassifyDeterministic(t *testing.T) {
	t.Parallel()
	classifier, _ := NewClassifier(DefaultThreshold)
	rapid.Check(t, func(t *rapid.T) {
		query := rapid.String().Draw(t, "query")
		candidates := recordSliceGen().Draw(t, "candidates")

		r1 := classifier.Classify(query, candidates)
		r2 := classifier.Classify(query, candidates)
		if r1 != r2 {
			t.Fatalf("non-deterministic classify: %+v vs %+v", r1, r2)
		}
	})
}

// ============================================================================
// Grouper Property Tests
// ============================================================================

// TestPropertyFindDuplicatesNoSingletons verifies every group has 2+ members.
func TestPropertyFindDuplicatesNoSingletons(t *testing.T) {
	t.Parallel()
	grouper, _ := NewGrouper(DefaultThreshold)
	rapid.Check(t, func(t *rapid.T) {
		records := recordSliceGen().Draw(t, "records")

		for _, group := range grouper.FindDuplicates(records) {
			if len(group.Members) < 2 {
				t.Fatalf("group with %d member(s) returned", len(group.Members))
			}
		}
	})
}

// TestPropertyFindDuplicatesExactFirst verifies tier ordering.
func TestPropertyFindDuplicatesExactFirst(t *testing.T) {
	t.Parallel()
	grouper, _ := NewGrouper(DefaultThreshold)
	rapid.Check(t, func(t *rapid.T) {
		records := recordSliceGen().Draw(t, "records")

		groups := grouper.FindDuplicates(records)
		seenSimilar := false
		for _, group := range groups {
			if group.MatchType == MatchTypeSimilar {
				seenSimilar = true
			} else if seenSimilar {
				t.Fatal("exact group found after a similar group")
			}
		}
	})
}

// TestPropertyFindDuplicatesDeterministic verifies scans are reproducible.
func TestPropertyFindDuplicatesDeterministic(t *testing.T) {
	t.Parallel()
	grouper, _ := NewGrouper(DefaultThreshold)
	rapid.Check(t, func(t *rapid.T) {
		records := recordSliceGen().Draw(t, "records")

		g1 := grouper.FindDuplicates(records)
		g2 := grouper.FindDuplicates(records)
		if len(g1) != len(g2) {
			t.Fatalf("non-deterministic scan: %d vs %d groups", len(g1), len(g2))
		}
		for i := range g1 {
			if len(g1[i].Members) != len(g2[i].Members) ||
				g1[i].Members[0].ID != g2[i].Members[0].ID {
				t.Fatalf("non-deterministic group at index %d", i)
			}
		}
	})
}

// TestPropertyFindDuplicatesNeverPanics verifies arbitrary input is safe.
func TestPropertyFindDuplicatesNeverPanics(t *testing.T) {
	t.Parallel()
	grouper, _ := NewGrouper(DefaultThreshold)
	rapid.Check(t, func(t *rapid.T) {
		records := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) catalog.Record {
			return catalog.Record{
				ID:      rapid.String().Draw(t, "id"),
				Title:   rapid.String().Draw(t, "title"),
				Authors: rapid.SliceOfN(rapid.String(), 0, 3).Draw(t, "authors"),
			}
		}), 0, 15).Draw(t, "records")

		_ = grouper.FindDuplicates(records)
	})
}
