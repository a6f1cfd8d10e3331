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

// Package config loads and saves the Shelfmark TOML configuration. Values
// are validated on load so a bad matching threshold fails at startup rather
// than mid-scan.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	SchemaVersion = 1
	CfgEnv        = "SHELFMARK_CFG"
	CfgFile       = "shelfmark.toml"
	LogFile       = "shelfmark.log"
)

// Values is the full configuration file shape.
type Values struct {
	API          API      `toml:"api"`
	Matching     Matching `toml:"matching"`
	ConfigSchema int      `toml:"config_schema"`
	DebugLogging bool     `toml:"debug_logging"`
}

// API configures the catalog backend the matching core talks to.
type API struct {
	BaseURL        string `toml:"base_url"               validate:"required,url"`
	BearerToken    string `toml:"bearer_token,omitempty"`
	TimeoutSeconds int    `toml:"timeout_seconds"        validate:"gte=1,lte=300"`
}

// Matching configures the title matcher. Threshold is the minimum
// similarity for a fuzzy match; LookupConcurrency bounds parallel catalog
// lookups during batch resolution.
type Matching struct {
	Threshold         float64 `toml:"threshold"          validate:"gt=0,lte=1"`
	LookupConcurrency int     `toml:"lookup_concurrency" validate:"gte=1,lte=64"`
}

// BaseDefaults are the values written on first run and used for any field
// missing from the config file.
var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	API: API{
		BaseURL:        "http://localhost:8337",
		TimeoutSeconds: 30,
	},
	Matching: Matching{
		Threshold:         0.85,
		LookupConcurrency: 8,
	},
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Path returns the config file path: the SHELFMARK_CFG env var if set,
// otherwise CfgFile inside configDir.
func Path(configDir string) string {
	if envPath := os.Getenv(CfgEnv); envPath != "" {
		return envPath
	}
	return filepath.Join(configDir, CfgFile)
}

// Load reads the config file at path, overlaying file values on top of
// BaseDefaults so missing fields keep their defaults, then validates the
// result. A missing file is saved with defaults first.
func Load(fs afero.Fs, path string) (Values, error) {
	if path == "" {
		return Values{}, errors.New("config path not set")
	}

	if _, err := fs.Stat(path); os.IsNotExist(err) {
		log.Info().Str("path", path).Msg("saving new default config to disk")
		if err := Save(fs, path, BaseDefaults); err != nil {
			return Values{}, err
		}
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Values{}, fmt.Errorf("failed to read config file: %w", err)
	}

	vals := BaseDefaults
	if err := toml.Unmarshal(data, &vals); err != nil {
		return Values{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(vals); err != nil {
		return Values{}, err
	}

	return vals, nil
}

// Save writes vals to path as TOML, creating parent directories as needed.
func Save(fs afero.Fs, path string, vals Values) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(vals)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := afero.WriteFile(fs, path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks configuration ranges. Out-of-range values are logic bugs
// in the config, so callers should treat an error here as fatal.
func Validate(vals Values) error {
	if err := validate.Struct(vals); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
