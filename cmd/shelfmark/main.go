/*
Shelfmark
Copyright (c) 2026 The Shelfmark Project Contributors.

This file is part of Shelfmark.

Shelfmark is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Shelfmark is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Shelfmark.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command shelfmark runs catalog maintenance flows from the terminal:
// duplicate scans over the full catalog and batch resolution of [[Title]]
// references in pasted text.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ShelfmarkProject/shelfmark-core/pkg/catalog"
	"github.com/ShelfmarkProject/shelfmark-core/pkg/catalog/snapshotdb"
	"github.com/ShelfmarkProject/shelfmark-core/pkg/config"
	"github.com/ShelfmarkProject/shelfmark-core/pkg/helpers"
	"github.com/ShelfmarkProject/shelfmark-core/pkg/matcher"
	"github.com/ShelfmarkProject/shelfmark-core/pkg/refs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	configDir := flag.String("config-dir", defaultConfigDir(), "config directory")
	doDupes := flag.Bool("dupes", false, "scan the catalog for duplicate titles")
	doResolve := flag.Bool("resolve", false, "resolve [[Title]] references from stdin")
	cached := flag.Bool("cached", false, "use the locally cached catalog snapshot for -dupes")
	flag.Parse()

	if err := helpers.InitLogging(*configDir, nil); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	cfg, err := config.Load(afero.NewOsFs(), config.Path(*configDir))
	if err != nil {
		return err
	}

	if cfg.DebugLogging {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx := context.Background()
	client := catalog.NewClient(cfg.API)

	switch {
	case *doDupes:
		return runDupes(ctx, cfg, client, *configDir, *cached)
	case *doResolve:
		return runResolve(ctx, cfg, client, os.Stdin)
	default:
		flag.Usage()
		return errors.New("no action given, pass -dupes or -resolve")
	}
}

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "shelfmark")
}

// runDupes materializes a catalog snapshot (from the backend or the local
// cache) and prints duplicate groups.
func runDupes(
	ctx context.Context,
	cfg config.Values,
	client *catalog.Client,
	configDir string,
	cached bool,
) error {
	db, err := snapshotdb.Open(filepath.Join(configDir, "snapshot.db"))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing snapshot database")
		}
	}()

	var records []catalog.Record
	if cached {
		var takenAt time.Time
		records, takenAt, err = db.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load cached snapshot: %w", err)
		}
		fmt.Printf("Using cached snapshot from %s (%d records)\n",
			takenAt.Local().Format("2006-01-02 15:04"), len(records))
	} else {
		records, err = client.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to list catalog: %w", err)
		}
		if err := db.Store(ctx, records); err != nil {
			log.Warn().Err(err).Msg("failed to cache catalog snapshot")
		}
		fmt.Printf("Fetched %d catalog records\n", len(records))
	}

	grouper, err := matcher.NewGrouper(cfg.Matching.Threshold)
	if err != nil {
		return err
	}

	groups := grouper.FindDuplicates(records)
	if len(groups) == 0 {
		fmt.Println("No duplicates found.")
		return nil
	}

	for i, group := range groups {
		author := "different authors"
		if group.SameAuthor {
			author = "same author"
		}
		fmt.Printf("Group %d (%s match, %s):\n", i+1, group.MatchType, author)
		for _, member := range group.Members {
			fmt.Printf("  %-40q  %d edition(s)  [%s]\n",
				member.Title, member.EditionCount, member.Status)
		}
	}

	return nil
}

// runResolve extracts [[Title]] references from input and resolves them
// against the catalog search endpoint.
func runResolve(
	ctx context.Context,
	cfg config.Values,
	client *catalog.Client,
	input io.Reader,
) error {
	text, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	queries := refs.Extract(string(text))
	if len(queries) == 0 {
		fmt.Println("No [[Title]] references found.")
		return nil
	}

	classifier, err := matcher.NewClassifier(cfg.Matching.Threshold)
	if err != nil {
		return err
	}
	resolver, err := matcher.NewResolver(classifier, client, cfg.Matching.LookupConcurrency)
	if err != nil {
		return err
	}

	batch := resolver.ResolveAll(ctx, queries)

	for _, q := range queries {
		result := batch.Results[q]
		switch result.Confidence {
		case matcher.ConfidenceExact:
			fmt.Printf("%-40q  exact match: %q\n", q, result.MatchedTitle)
		case matcher.ConfidenceFuzzy:
			fmt.Printf("%-40q  close match: %q (%.0f%% similar)\n",
				q, result.MatchedTitle, result.Similarity*100)
		case matcher.ConfidenceNone:
			fmt.Printf("%-40q  no match, will be inserted as typed\n", q)
		}
	}

	if batch.FailedLookups > 0 {
		fmt.Printf("%d lookup(s) failed, results for those shown as no match\n",
			batch.FailedLookups)
	}

	return nil
}
