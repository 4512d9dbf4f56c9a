// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/blte/lib/casc"
)

// EnvironmentVariable names the variable [Load] reads the config
// path from.
const EnvironmentVariable = "BLTE_CONFIG"

// DefaultEntryHeaderSize matches the 30-byte entry header of CASC
// data archives.
const DefaultEntryHeaderSize = casc.EntryHeaderSize

// Config describes one extraction job.
type Config struct {
	Paths   PathsConfig   `yaml:"paths" json:"paths"`
	Decode  DecodeConfig  `yaml:"decode" json:"decode"`
	Extract ExtractConfig `yaml:"extract" json:"extract"`

	// Entries lists what to extract, in order.
	Entries []Entry `yaml:"entries" json:"entries"`
}

// PathsConfig configures file locations.
type PathsConfig struct {
	// Archives is the directory holding the data.NNN files.
	Archives string `yaml:"archives" json:"archives"`

	// Output is the root directory extracted files are written under.
	Output string `yaml:"output" json:"output"`

	// Report is where the extraction report is written. Empty means
	// no report. A .zst suffix compresses it.
	Report string `yaml:"report" json:"report"`
}

// DecodeConfig tunes the BLTE decoder.
type DecodeConfig struct {
	// EntryHeaderSize is the size of the container header that sits
	// between one envelope and the next. Default: 30.
	EntryHeaderSize int64 `yaml:"entry_header_size" json:"entry_header_size"`
}

// ExtractConfig controls failure handling.
type ExtractConfig struct {
	// KeepGoing continues with the next entry after a failure instead
	// of stopping the job.
	KeepGoing bool `yaml:"keep_going" json:"keep_going"`

	// KeepPartial leaves partially written output files in place when
	// an entry fails. By default they are removed.
	KeepPartial bool `yaml:"keep_partial" json:"keep_partial"`
}

// Entry names one envelope to extract.
type Entry struct {
	// Name is the output path relative to Paths.Output, using
	// forward slashes.
	Name string `yaml:"name" json:"name"`

	// Archive is the NNN of the data.NNN file holding the entry.
	Archive int `yaml:"archive" json:"archive"`

	// Offset is where the entry header starts in the archive.
	Offset int64 `yaml:"offset" json:"offset"`

	// Size is the entry size from the archive index, header
	// included. Zero means read it from the entry header.
	Size int64 `yaml:"size" json:"size"`
}

// Default returns the configuration every loaded file is merged
// over.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Output: ".",
		},
		Decode: DecodeConfig{
			EntryHeaderSize: DefaultEntryHeaderSize,
		},
	}
}

// Load loads configuration from the file named by BLTE_CONFIG. There
// is no fallback: if the variable is unset, Load fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your extraction config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path, expands variables in path
// fields and validates the result.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return json.Unmarshal(jsonc.ToJSON(data), c)
	default:
		return yaml.Unmarshal(data, c)
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Paths.Archives = expandVars(c.Paths.Archives, vars)
	c.Paths.Output = expandVars(c.Paths.Output, vars)
	c.Paths.Report = expandVars(c.Paths.Report, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Paths.Archives == "" {
		errs = append(errs, errors.New("paths.archives is required"))
	}
	if c.Paths.Output == "" {
		errs = append(errs, errors.New("paths.output is required"))
	}
	if c.Decode.EntryHeaderSize <= 0 {
		errs = append(errs, fmt.Errorf("decode.entry_header_size must be positive, got %d", c.Decode.EntryHeaderSize))
	}

	seen := make(map[string]int, len(c.Entries))
	for i, entry := range c.Entries {
		if entry.Name == "" {
			errs = append(errs, fmt.Errorf("entries[%d]: name is required", i))
		} else if !filepath.IsLocal(filepath.FromSlash(entry.Name)) {
			errs = append(errs, fmt.Errorf("entries[%d]: name %q must be a relative path inside the output directory", i, entry.Name))
		} else if previous, duplicate := seen[entry.Name]; duplicate {
			errs = append(errs, fmt.Errorf("entries[%d]: name %q already used by entries[%d]", i, entry.Name, previous))
		} else {
			seen[entry.Name] = i
		}
		if entry.Archive < 0 {
			errs = append(errs, fmt.Errorf("entries[%d]: archive must not be negative", i))
		}
		if entry.Offset < 0 {
			errs = append(errs, fmt.Errorf("entries[%d]: offset must not be negative", i))
		}
		if entry.Size < 0 {
			errs = append(errs, fmt.Errorf("entries[%d]: size must not be negative", i))
		}
	}

	return errors.Join(errs...)
}

// ArchivePath returns the path of data archive index under
// Paths.Archives.
func (c *Config) ArchivePath(index int) string {
	return filepath.Join(c.Paths.Archives, casc.ArchiveName(index))
}
