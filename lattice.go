// Package lattice reconstructs logical tables - rows, columns, and
// multi-level column headers - from the positioned-text and ruling-line
// output of a PDF page. It reconciles the signals of three independent
// detection strategies (ruling-line grids, whitespace alignment, and
// rendered-image edges) into one ranked table structure per region, and
// flattens header cells spanning multiple raw columns into unambiguous
// column names.
//
// Basic usage:
//
//	engine := lattice.New(backend)
//	tables, summary, err := engine.Extract()
//	if err != nil {
//	    // handle error
//	}
//	fmt.Println(summary.TotalTables, "tables on", summary.PagesProcessed, "pages")
//
// With options:
//
//	engine := lattice.New(backend,
//	    lattice.WithOverlapThreshold(0.7),
//	    lattice.WithMaxHeaderDepth(3),
//	    lattice.WithLogger(logger),
//	)
//
// The backend (see the source package) owns PDF parsing and rendering; this
// package consumes its per-page layouts and guarantees the same semantic
// table content regardless of which export format the caller chooses
// downstream.
package lattice

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/lattice/model"
	"github.com/tsawler/lattice/source"
	"github.com/tsawler/lattice/tables"
)

// Engine runs the table reconstruction pipeline over a document.
type Engine struct {
	backend source.Backend
	config  tables.Config
	log     *zap.Logger
	workers int
}

// New creates an Engine over a layout backend, applying any options on top
// of the default configuration.
func New(backend source.Backend, opts ...Option) *Engine {
	e := &Engine{
		backend: backend,
		config:  tables.DefaultConfig(),
		log:     zap.NewNop(),
		workers: 0, // 0 lets errgroup run unbounded
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine's effective configuration, including the
// IncludeHeaders export hint for callers.
func (e *Engine) Config() tables.Config {
	return e.config
}

// pageResult carries one page's outcome across the join point.
type pageResult struct {
	tables  []model.Table
	skipped bool
}

// Extract runs the full pipeline over every page of the document and returns
// the tables in page order plus a summary of the run.
//
// Pages are processed concurrently; within each page the detectors also run
// concurrently over the page's immutable layout, joined before merging. A
// page the backend cannot produce a layout for is skipped, recorded in the
// summary, and never aborts the remaining pages. A document with no
// qualifying tables returns an empty slice and a summary with TotalTables 0;
// that is not an error.
func (e *Engine) Extract() ([]model.Table, model.ExtractionSummary, error) {
	pageCount := e.backend.PageCount()
	results := make([]pageResult, pageCount)

	g := new(errgroup.Group)
	if e.workers > 0 {
		g.SetLimit(e.workers)
	}

	for i := 0; i < pageCount; i++ {
		idx := i
		page := i + 1
		g.Go(func() error {
			raw, err := e.backend.PageLayout(page)
			if err != nil {
				e.log.Warn("skipping page, backend produced no layout",
					zap.Int("page", page),
					zap.Error(err))
				results[idx] = pageResult{skipped: true}
				return nil
			}
			results[idx] = pageResult{tables: e.extractPage(source.Normalize(raw))}
			return nil
		})
	}

	// Page failures are absorbed above, so the group never errors.
	_ = g.Wait()

	var all []model.Table
	var skipped []int
	for i, r := range results {
		if r.skipped {
			skipped = append(skipped, i+1)
			continue
		}
		all = append(all, r.tables...)
	}

	return all, model.BuildSummary(all, pageCount, skipped), nil
}

// ExtractPage runs the pipeline over a single already-extracted layout. The
// layout is normalized first; the input is not modified.
func (e *Engine) ExtractPage(raw *model.PageLayout) []model.Table {
	return e.extractPage(source.Normalize(raw))
}

// extractPage is the per-page pipeline: detectors in parallel, join, merge,
// consolidate headers, score, assemble.
func (e *Engine) extractPage(layout *model.PageLayout) []model.Table {
	detectors := tables.DetectorsFor(layout, e.config)

	// One output slot per detector; no detector touches another's output.
	candidateSets := make([][]tables.RawCandidate, len(detectors))
	var wg sync.WaitGroup
	for i, d := range detectors {
		wg.Add(1)
		go func(i int, d tables.Detector) {
			defer wg.Done()
			candidates, err := d.Detect(layout)
			if err != nil {
				e.log.Warn("detector failed",
					zap.String("detector", d.Name()),
					zap.Int("page", layout.PageNumber),
					zap.Error(err))
				return
			}
			candidateSets[i] = candidates
		}(i, d)
	}
	wg.Wait()

	var candidates []tables.RawCandidate
	for _, set := range candidateSets {
		candidates = append(candidates, set...)
	}
	if len(candidates) == 0 {
		return nil
	}

	merger := tables.NewMerger(e.config, e.log)
	consolidator := tables.NewConsolidator(e.config)
	scorer := tables.NewScorer(e.config.Weights)
	assembler := tables.NewAssembler(e.config)

	var out []model.Table
	index := 0
	for _, mc := range merger.Merge(candidates, len(detectors)) {
		header, body := consolidator.Consolidate(mc.Grid)

		if mc.Spurious(body.RowCount()) {
			e.log.Debug("discarding spurious region",
				zap.Int("page", layout.PageNumber),
				zap.Int("body_rows", body.RowCount()))
			continue
		}

		confidence := scorer.Score(&mc, header.Depth, body)
		if confidence < e.config.MinConfidence {
			continue
		}

		if e.config.MaxTablesPerPage > 0 && index >= e.config.MaxTablesPerPage {
			break
		}

		out = append(out, assembler.Assemble(layout.PageNumber, index, header, body, confidence))
		index++
	}

	return out
}
