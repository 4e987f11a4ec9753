package lattice

import (
	"go.uber.org/zap"

	"github.com/tsawler/lattice/tables"
)

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the whole engine configuration.
func WithConfig(config tables.Config) Option {
	return func(e *Engine) {
		e.config = config
	}
}

// WithLogger sets the logger used for skipped pages and detector anomalies.
// The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.log = logger
		}
	}
}

// WithWorkers bounds how many pages are processed concurrently. Zero or
// negative means unbounded.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithMinGridSize sets the minimum row and column count for a valid grid;
// undersized candidates are discarded.
func WithMinGridSize(rows, cols int) Option {
	return func(e *Engine) {
		e.config.MinRows = rows
		e.config.MinCols = cols
	}
}

// WithOverlapThreshold sets the intersection-over-union above which two
// candidates merge into one region.
func WithOverlapThreshold(threshold float64) Option {
	return func(e *Engine) {
		e.config.OverlapThreshold = threshold
	}
}

// WithMaxHeaderDepth bounds how many leading rows may be classified as
// header rows.
func WithMaxHeaderDepth(depth int) Option {
	return func(e *Engine) {
		e.config.MaxHeaderDepth = depth
	}
}

// WithWeights tunes the confidence score factors. Weights must sum to 1;
// otherwise the defaults are used.
func WithWeights(weights tables.ScoreWeights) Option {
	return func(e *Engine) {
		e.config.Weights = weights
	}
}

// WithMinConfidence drops finished tables scoring below the given value.
func WithMinConfidence(min float64) Option {
	return func(e *Engine) {
		e.config.MinConfidence = min
	}
}

// WithIncludeHeaders sets the export hint callers read back from Config().
// Headers are always computed internally for column alignment; when false,
// the caller's export step may omit them from its output.
func WithIncludeHeaders(include bool) Option {
	return func(e *Engine) {
		e.config.IncludeHeaders = include
	}
}
