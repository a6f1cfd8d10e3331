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

// Package catalog defines the record types shared between the matching core
// and the external catalog service, and the interfaces the core consumes the
// service through.
package catalog

import "context"

// AcquisitionStatus marks whether a record is owned or only wished for.
type AcquisitionStatus string

const (
	StatusOwned    AcquisitionStatus = "owned"
	StatusWishlist AcquisitionStatus = "wishlist"
)

// Record is a read-only snapshot of a catalog entry as returned by the
// catalog service. The matching core never mutates records.
type Record struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Status       AcquisitionStatus `json:"acquisitionStatus"`
	Authors      []string          `json:"authors,omitempty"`
	EditionCount int               `json:"editionCount"`
}

// Searcher is the catalog text-search collaborator. Implementations return a
// small ranked candidate set for a free-text query; the core evaluates all
// candidates regardless of their order.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Record, error)
}

// Lister provides a full catalog listing, materialized before duplicate
// scanning begins.
type Lister interface {
	ListAll(ctx context.Context) ([]Record, error)
}
