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

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ShelfmarkProject/shelfmark-core/pkg/config"
	"github.com/rs/zerolog/log"
)

// defaultTransport pools connections and applies sane network timeouts for
// the catalog backend.
var defaultTransport = &http.Transport{
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ResponseHeaderTimeout: 30 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
}

// Client is the default HTTP implementation of Searcher and Lister against
// the catalog backend's REST API.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

// NewClient creates a catalog client from the api config section.
func NewClient(cfg config.API) *Client {
	return &Client{
		http: &http.Client{
			Transport: defaultTransport,
			Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.BearerToken,
	}
}

// Search queries the backend's text-search endpoint and returns its ranked
// candidate set.
func (c *Client) Search(ctx context.Context, query string) ([]Record, error) {
	endpoint := c.baseURL + "/api/v1/books/search?" + url.Values{
		"query": []string{query},
	}.Encode()
	return c.getRecords(ctx, endpoint)
}

// ListAll fetches the full catalog listing for a duplicate scan.
func (c *Client) ListAll(ctx context.Context) ([]Record, error) {
	return c.getRecords(ctx, c.baseURL+"/api/v1/books")
}

func (c *Client) getRecords(ctx context.Context, endpoint string) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing catalog request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("error closing response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("invalid status code: %d", resp.StatusCode)
	}

	var records []Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("error decoding catalog response: %w", err)
	}

	return records, nil
}
