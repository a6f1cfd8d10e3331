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
	"context"
	"fmt"
	"strings"

	"github.com/ShelfmarkProject/shelfmark-core/pkg/catalog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultLookupConcurrency caps how many catalog lookups a batch runs at
// once. Batches are typically tens of queries against a lightweight search
// endpoint, so latency is bounded by the slowest lookup rather than the sum.
const DefaultLookupConcurrency = 8

// BatchResult holds one classified result per original query string.
// Duplicate queries share a single result. FailedLookups counts queries
// whose catalog lookup errored; those degrade to a none-confidence result
// instead of failing the batch.
type BatchResult struct {
	Results       map[string]MatchResult
	FailedLookups int
}

// Resolver resolves batches of free-text title references against the
// catalog search collaborator.
type Resolver struct {
	classifier  *Classifier
	searcher    catalog.Searcher
	concurrency int
}

// NewResolver creates a Resolver. concurrency bounds parallel lookups and
// must be at least 1.
func NewResolver(classifier *Classifier, searcher catalog.Searcher, concurrency int) (*Resolver, error) {
	if classifier == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	if searcher == nil {
		return nil, fmt.Errorf("searcher is required")
	}
	if concurrency < 1 {
		return nil, fmt.Errorf("lookup concurrency must be at least 1, got %d", concurrency)
	}
	return &Resolver{
		classifier:  classifier,
		searcher:    searcher,
		concurrency: concurrency,
	}, nil
}

// ResolveAll resolves every query against the catalog. Identical queries
// (case-sensitive) are deduplicated before lookups are issued, so repeated
// references cost one search call. Lookups run concurrently up to the
// configured cap; a failed lookup is logged, counted, and degraded to a
// none-confidence result without aborting sibling lookups.
//
// The returned map is keyed by the original query strings and has no
// meaningful iteration order.
func (r *Resolver) ResolveAll(ctx context.Context, queries []string) BatchResult {
	distinct := make([]string, 0, len(queries))
	seen := make(map[string]struct{}, len(queries))
	for _, q := range queries {
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		distinct = append(distinct, q)
	}

	type lookupOutcome struct {
		result MatchResult
		failed bool
	}

	// One slot per distinct query, so workers never share state.
	outcomes := make([]lookupOutcome, len(distinct))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, q := range distinct {
		i, q := i, q
		g.Go(func() error {
			if strings.TrimSpace(q) == "" {
				outcomes[i] = lookupOutcome{result: noMatch(q)}
				return nil
			}

			candidates, err := r.searcher.Search(gctx, q)
			if err != nil {
				log.Warn().
					Err(err).
					Str("query", q).
					Msg("catalog lookup failed, degrading to no match")
				outcomes[i] = lookupOutcome{result: noMatch(q), failed: true}
				return nil
			}

			outcomes[i] = lookupOutcome{result: r.classifier.Classify(q, candidates)}
			return nil
		})
	}

	// Workers capture their own failures, so Wait only synchronizes.
	_ = g.Wait()

	batch := BatchResult{Results: make(map[string]MatchResult, len(distinct))}
	for i, q := range distinct {
		batch.Results[q] = outcomes[i].result
		if outcomes[i].failed {
			batch.FailedLookups++
		}
	}
	return batch
}
