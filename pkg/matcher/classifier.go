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
	"fmt"
	"strings"

	"github.com/ShelfmarkProject/shelfmark-core/pkg/catalog"
	"github.com/rs/zerolog/log"
)

// DefaultThreshold is the minimum similarity for a fuzzy match. Chosen
// empirically: it separates punctuation/typo variance from genuinely
// different titles at typical book-title lengths. Very short titles saturate
// the metric quickly, so callers matching 3-4 character titles may want to
// tune it via config.
const DefaultThreshold = 0.85

// Confidence classifies how certain a title match is.
type Confidence string

const (
	ConfidenceExact Confidence = "exact"
	ConfidenceFuzzy Confidence = "fuzzy"
	ConfidenceNone  Confidence = "none"
)

// MatchResult is the outcome of classifying one query against a candidate
// set. MatchedID and MatchedTitle are empty when Confidence is none.
// Similarity is only meaningful for fuzzy matches; exact matches report 1.0.
type MatchResult struct {
	Query        string     `json:"query"`
	MatchedID    string     `json:"matchedRecordId,omitempty"`
	MatchedTitle string     `json:"matchedTitle,omitempty"`
	Confidence   Confidence `json:"confidence"`
	Similarity   float64    `json:"similarity"`
}

// Classifier decides whether a query string refers to one of a set of
// candidate records. It is stateless and safe for concurrent use.
type Classifier struct {
	threshold float64
}

// NewClassifier creates a Classifier with the given fuzzy-match threshold.
// Thresholds outside (0, 1] are a configuration bug and rejected up front.
func NewClassifier(threshold float64) (*Classifier, error) {
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("similarity threshold must be in (0, 1], got %v", threshold)
	}
	return &Classifier{threshold: threshold}, nil
}

// Threshold returns the configured fuzzy-match threshold.
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// Classify returns the best candidate for query with a confidence tier.
//
// A case-insensitive exact title match wins outright (first in input order on
// the unlikely tie). Otherwise the candidate with the highest similarity is
// selected, and reported as fuzzy only if it reaches the threshold; a
// best-but-below-threshold candidate is not reported at all, to avoid
// implying a match. Candidates with empty titles never fault, they just
// score zero.
func (c *Classifier) Classify(query string, candidates []catalog.Record) MatchResult {
	if strings.TrimSpace(query) == "" || len(candidates) == 0 {
		return noMatch(query)
	}

	queryLower := strings.ToLower(query)
	for i := range candidates {
		if strings.ToLower(candidates[i].Title) == queryLower {
			return MatchResult{
				Query:        query,
				MatchedID:    candidates[i].ID,
				MatchedTitle: candidates[i].Title,
				Confidence:   ConfidenceExact,
				Similarity:   1.0,
			}
		}
	}

	best := -1
	bestSim := 0.0
	for i := range candidates {
		sim := Similarity(query, candidates[i].Title)
		if best == -1 || sim > bestSim {
			best = i
			bestSim = sim
		}
	}

	// Debug logging for close calls (helps tune the threshold)
	if bestSim > 0.7 && bestSim < c.threshold {
		log.Debug().
			Str("query", query).
			Str("candidate", candidates[best].Title).
			Float64("similarity", bestSim).
			Float64("threshold", c.threshold).
			Msg("best candidate below fuzzy threshold")
	}

	if bestSim >= c.threshold {
		return MatchResult{
			Query:        query,
			MatchedID:    candidates[best].ID,
			MatchedTitle: candidates[best].Title,
			Confidence:   ConfidenceFuzzy,
			Similarity:   bestSim,
		}
	}

	return noMatch(query)
}

func noMatch(query string) MatchResult {
	return MatchResult{
		Query:      query,
		Confidence: ConfidenceNone,
		Similarity: 0,
	}
}
