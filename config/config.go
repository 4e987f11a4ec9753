// Package config loads engine settings from a YAML file and LATTICE_-prefixed
// environment variables, on top of the built-in defaults.
//
// Precedence (highest to lowest):
//
//  1. Environment variables (LATTICE_MERGE_OVERLAP_THRESHOLD, ...)
//  2. YAML config file
//  3. Defaults
//
// Environment variables map to YAML keys by lowercasing, stripping the
// prefix, and treating the first segment as the section:
//
//	LATTICE_DETECTION_MIN_ROWS        -> detection.min_rows
//	LATTICE_MERGE_OVERLAP_THRESHOLD   -> merge.overlap_threshold
//	LATTICE_HEADERS_MAX_DEPTH         -> headers.max_depth
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/tsawler/lattice/tables"
)

// envPrefix is the prefix for environment variable overrides.
const envPrefix = "LATTICE_"

// defaultYAML seeds the koanf tree with the engine defaults so a partial
// config file or environment only overrides what it names.
const defaultYAML = `
detection:
  min_rows: 2
  min_cols: 2
  cluster_tolerance: 3.0
  gutter_min_width: 8.0
  gutter_row_fraction: 0.5
  edge_dark_threshold: 128
  edge_min_run_fraction: 0.5
  edge_max_dimension: 1600
merge:
  overlap_threshold: 0.6
headers:
  max_depth: 5
  include: true
score:
  agreement: 0.35
  regularity: 0.30
  fill: 0.15
  header: 0.20
limits:
  min_confidence: 0.0
  max_tables_per_page: 10
  workers: 0
`

// Settings is the full file/env configuration surface.
type Settings struct {
	Detection DetectionSettings `koanf:"detection"`
	Merge     MergeSettings     `koanf:"merge"`
	Headers   HeaderSettings    `koanf:"headers"`
	Score     ScoreSettings     `koanf:"score"`
	Limits    LimitSettings     `koanf:"limits"`
}

// DetectionSettings tunes the candidate detectors.
type DetectionSettings struct {
	MinRows            int     `koanf:"min_rows"`
	MinCols            int     `koanf:"min_cols"`
	ClusterTolerance   float64 `koanf:"cluster_tolerance"`
	GutterMinWidth     float64 `koanf:"gutter_min_width"`
	GutterRowFraction  float64 `koanf:"gutter_row_fraction"`
	EdgeDarkThreshold  int     `koanf:"edge_dark_threshold"`
	EdgeMinRunFraction float64 `koanf:"edge_min_run_fraction"`
	EdgeMaxDimension   int     `koanf:"edge_max_dimension"`
}

// MergeSettings tunes the candidate merger.
type MergeSettings struct {
	OverlapThreshold float64 `koanf:"overlap_threshold"`
}

// HeaderSettings tunes header consolidation.
type HeaderSettings struct {
	MaxDepth int  `koanf:"max_depth"`
	Include  bool `koanf:"include"`
}

// ScoreSettings holds the confidence weights. They must sum to 1.
type ScoreSettings struct {
	Agreement  float64 `koanf:"agreement"`
	Regularity float64 `koanf:"regularity"`
	Fill       float64 `koanf:"fill"`
	Header     float64 `koanf:"header"`
}

// LimitSettings bounds the run.
type LimitSettings struct {
	MinConfidence    float64 `koanf:"min_confidence"`
	MaxTablesPerPage int     `koanf:"max_tables_per_page"`
	Workers          int     `koanf:"workers"`
}

// Load reads settings from the given YAML file (optional; empty path skips
// the file) and the environment. Unknown keys in the file are ignored.
func Load(path string) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider([]byte(defaultYAML)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("unmarshaling settings: %w", err)
	}

	if err := s.validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// envTransform maps LATTICE_SECTION_SOME_KEY to section.some_key.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	parts := strings.SplitN(key, "_", 2)
	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + "." + parts[1]
}

// validate rejects settings the engine cannot run with.
func (s *Settings) validate() error {
	if s.Detection.MinRows < 2 || s.Detection.MinCols < 2 {
		return fmt.Errorf("detection.min_rows/min_cols must be at least 2, got %d/%d",
			s.Detection.MinRows, s.Detection.MinCols)
	}
	if s.Merge.OverlapThreshold <= 0 || s.Merge.OverlapThreshold >= 1 {
		return fmt.Errorf("merge.overlap_threshold must be in (0,1), got %f", s.Merge.OverlapThreshold)
	}
	if s.Headers.MaxDepth < 0 {
		return fmt.Errorf("headers.max_depth must not be negative, got %d", s.Headers.MaxDepth)
	}
	sum := s.Score.Agreement + s.Score.Regularity + s.Score.Fill + s.Score.Header
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("score weights must sum to 1, got %f", sum)
	}
	return nil
}

// EngineConfig converts the settings into the engine's configuration type.
func (s *Settings) EngineConfig() tables.Config {
	return tables.Config{
		MinRows:            s.Detection.MinRows,
		MinCols:            s.Detection.MinCols,
		ClusterTolerance:   s.Detection.ClusterTolerance,
		OverlapThreshold:   s.Merge.OverlapThreshold,
		MaxHeaderDepth:     s.Headers.MaxDepth,
		Weights: tables.ScoreWeights{
			Agreement:  s.Score.Agreement,
			Regularity: s.Score.Regularity,
			Fill:       s.Score.Fill,
			Header:     s.Score.Header,
		},
		MinConfidence:      s.Limits.MinConfidence,
		MaxTablesPerPage:   s.Limits.MaxTablesPerPage,
		IncludeHeaders:     s.Headers.Include,
		GutterMinWidth:     s.Detection.GutterMinWidth,
		GutterRowFraction:  s.Detection.GutterRowFraction,
		EdgeDarkThreshold:  uint8(s.Detection.EdgeDarkThreshold),
		EdgeMinRunFraction: s.Detection.EdgeMinRunFraction,
		EdgeMaxDimension:   s.Detection.EdgeMaxDimension,
	}
}
