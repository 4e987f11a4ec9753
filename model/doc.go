// Package model defines the data types shared across the lattice pipeline:
// page-level layout signals (text tokens, ruling segments, pixel maps),
// geometric primitives, and the reconstructed table types handed to callers.
//
// A PageLayout is immutable once built and owned by the detection pass for
// its page. A Table is immutable once assembled. ExtractionSummary is always
// derived from the current table set via BuildSummary, never mutated
// independently.
package model
