// Package tables implements the table reconstruction engine: multi-strategy
// candidate detection, cross-detector merging, multi-level header
// consolidation, and confidence scoring.
//
// # Detectors
//
// Detection is performed by a closed set of types implementing the [Detector]
// interface:
//
//   - [RulingGridDetector] - grids from drawn ruling lines
//   - [WhitespaceDetector] - borderless tables from text alignment
//   - [ImageEdgeDetector] - lines found in a rendered pixel map
//
// [DetectorsFor] returns the set to run on a page; the image-edge detector
// joins only when the page carries a pixel map. Each detector reads the
// page's immutable layout and nothing else, so the set runs concurrently.
//
// # Merging
//
// [Merger.Merge] deduplicates overlapping candidates across detectors into
// one [MergedCandidate] per table region, resolving cell conflicts and
// recording how many detectors agree and how regular the rows are.
//
// # Headers
//
// [Consolidator.Consolidate] classifies the leading non-numeric rows as
// header rows, builds the spanning-cell hierarchy, and flattens it into one
// unique label per body column ("Revenue - Q1" style paths).
//
// # Confidence
//
// [Scorer.Score] combines detector agreement, row regularity, body fill, and
// header presence into a score in [0,1]. Weights are configurable through
// [ScoreWeights] and default to emphasizing agreement and regularity.
//
// # Configuration
//
// Engine behavior is controlled by [Config]:
//
//	config := tables.DefaultConfig()
//	config.MinRows = 3
//	config.OverlapThreshold = 0.7
package tables
