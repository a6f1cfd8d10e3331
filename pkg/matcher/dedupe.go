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
	"sort"
	"strings"

	"github.com/ShelfmarkProject/shelfmark-core/pkg/catalog"
	"github.com/rs/zerolog/log"
)

// MatchType classifies a duplicate group: exact means every member title is
// case-insensitively identical, similar means the group was linked through
// above-threshold similarity.
type MatchType string

const (
	MatchTypeExact   MatchType = "exact"
	MatchTypeSimilar MatchType = "similar"
)

// DuplicateGroup is a transitively-closed cluster of records believed to be
// the same underlying work. Members keep catalog input order and carry their
// catalog-supplied edition counts through unchanged.
type DuplicateGroup struct {
	MatchType  MatchType
	SameAuthor bool
	Members    []catalog.Record
}

// Grouper partitions a catalog snapshot into groups of probable duplicates.
type Grouper struct {
	threshold float64
}

// NewGrouper creates a Grouper with the given similarity threshold.
// Thresholds outside (0, 1] are rejected up front.
func NewGrouper(threshold float64) (*Grouper, error) {
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("similarity threshold must be in (0, 1], got %v", threshold)
	}
	return &Grouper{threshold: threshold}, nil
}

// FindDuplicates compares every pair of records by title similarity and
// groups connected records via a disjoint set, so duplicate detection is
// transitive: A~B and B~C puts A, B and C in one group even when A and C
// alone fall under the threshold. Groups of one are discarded.
//
// The pairwise comparison is O(n^2) by design; this runs as an on-demand
// maintenance scan over a materialized snapshot, not on every page load.
// Records with empty titles are skipped with a warning. The returned order
// is deterministic: exact groups first, then by descending size, then by the
// first member's title.
func (g *Grouper) FindDuplicates(records []catalog.Record) []DuplicateGroup {
	valid := make([]int, 0, len(records))
	for i := range records {
		if strings.TrimSpace(records[i].Title) == "" {
			log.Warn().
				Str("id", records[i].ID).
				Msg("skipping catalog record with empty title in duplicate scan")
			continue
		}
		valid = append(valid, i)
	}

	ds := newDisjointSet(len(valid))
	for i := 0; i < len(valid); i++ {
		for j := i + 1; j < len(valid); j++ {
			sim := Similarity(records[valid[i]].Title, records[valid[j]].Title)
			if sim >= g.threshold {
				ds.union(i, j)
			}
		}
	}

	// Collect members per root in first-seen order for determinism.
	memberIdx := make(map[int][]int)
	roots := make([]int, 0)
	for i := range valid {
		root := ds.find(i)
		if _, ok := memberIdx[root]; !ok {
			roots = append(roots, root)
		}
		memberIdx[root] = append(memberIdx[root], valid[i])
	}

	groups := make([]DuplicateGroup, 0)
	for _, root := range roots {
		idx := memberIdx[root]
		if len(idx) < 2 {
			continue
		}
		members := make([]catalog.Record, len(idx))
		for i, recIdx := range idx {
			members[i] = records[recIdx]
		}
		groups = append(groups, DuplicateGroup{
			MatchType:  groupMatchType(members),
			SameAuthor: sharedAuthor(members),
			Members:    members,
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].MatchType != groups[j].MatchType {
			return groups[i].MatchType == MatchTypeExact
		}
		if len(groups[i].Members) != len(groups[j].Members) {
			return len(groups[i].Members) > len(groups[j].Members)
		}
		return strings.ToLower(groups[i].Members[0].Title) <
			strings.ToLower(groups[j].Members[0].Title)
	})

	return groups
}

// groupMatchType is exact only when every pairwise relation in the group is
// exact, which holds iff all titles fold to the same string.
func groupMatchType(members []catalog.Record) MatchType {
	first := strings.ToLower(members[0].Title)
	for i := 1; i < len(members); i++ {
		if strings.ToLower(members[i].Title) != first {
			return MatchTypeSimilar
		}
	}
	return MatchTypeExact
}

// sharedAuthor reports whether all members share at least one author,
// case-insensitively. Records with no authors break the overlap.
func sharedAuthor(members []catalog.Record) bool {
	shared := make(map[string]struct{}, len(members[0].Authors))
	for _, a := range members[0].Authors {
		if name := strings.ToLower(strings.TrimSpace(a)); name != "" {
			shared[name] = struct{}{}
		}
	}

	for i := 1; i < len(members) && len(shared) > 0; i++ {
		next := make(map[string]struct{}, len(shared))
		for _, a := range members[i].Authors {
			name := strings.ToLower(strings.TrimSpace(a))
			if _, ok := shared[name]; ok {
				next[name] = struct{}{}
			}
		}
		shared = next
	}

	return len(shared) > 0
}

// disjointSet is a union-find over record indices with path compression and
// union by rank.
type disjointSet struct {
	parent []int
	rank   []int
}

func newDisjointSet(n int) *disjointSet {
	ds := &disjointSet{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range ds.parent {
		ds.parent[i] = i
	}
	return ds
}

func (ds *disjointSet) find(x int) int {
	for ds.parent[x] != x {
		ds.parent[x] = ds.parent[ds.parent[x]]
		x = ds.parent[x]
	}
	return x
}

func (ds *disjointSet) union(a, b int) {
	ra, rb := ds.find(a), ds.find(b)
	if ra == rb {
		return
	}
	if ds.rank[ra] < ds.rank[rb] {
		ra, rb = rb, ra
	}
	ds.parent[rb] = ra
	if ds.rank[ra] == ds.rank[rb] {
		ds.rank[ra]++
	}
}
