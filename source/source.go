// Package source defines the boundary to the text/layout backend and
// normalizes its per-page output into a model.PageLayout the detection
// pipeline can consume. The backend owns PDF parsing, page rendering, and
// coordinate conversion; this package only cleans and orders what it reports.
package source

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/tsawler/lattice/model"
)

// Backend supplies page layouts for one document. Implementations wrap a PDF
// text/line extractor and, optionally, a page renderer. PageLayout returns an
// error when the backend cannot produce a layout for that page; the pipeline
// skips the page and continues.
type Backend interface {
	// PageCount returns the number of pages in the document.
	PageCount() int

	// PageLayout returns the raw layout for the given 1-based page number.
	PageLayout(page int) (*model.PageLayout, error)
}

// Static is a Backend over pre-built layouts, keyed by position. Useful in
// tests and for callers that already hold extracted layouts.
type Static struct {
	Layouts []*model.PageLayout
}

// PageCount returns the number of layouts.
func (s *Static) PageCount() int {
	return len(s.Layouts)
}

// PageLayout returns the layout for the given 1-based page number. A nil
// entry reports the page as unavailable.
func (s *Static) PageLayout(page int) (*model.PageLayout, error) {
	if page < 1 || page > len(s.Layouts) {
		return nil, fmt.Errorf("page %d out of range [1,%d]", page, len(s.Layouts))
	}
	layout := s.Layouts[page-1]
	if layout == nil {
		return nil, fmt.Errorf("no layout for page %d", page)
	}
	return layout, nil
}

// Normalize returns a cleaned copy of a raw backend layout: token text is
// NFKC-normalized with full-width forms folded, surrounding whitespace
// trimmed, and tokens with no remaining text dropped. Tokens are ordered
// top-to-bottom then left-to-right, and rulings by orientation, position, and
// extent, so downstream stages see a deterministic sequence regardless of
// backend emission order. The input is not modified.
func Normalize(raw *model.PageLayout) *model.PageLayout {
	out := &model.PageLayout{
		PageNumber: raw.PageNumber,
		Width:      raw.Width,
		Height:     raw.Height,
		PixelMap:   raw.PixelMap,
	}

	for _, tok := range raw.Tokens {
		text := normalizeText(tok.Text)
		if text == "" {
			continue
		}
		tok.Text = text
		out.Tokens = append(out.Tokens, tok)
	}

	sort.SliceStable(out.Tokens, func(i, j int) bool {
		a, b := out.Tokens[i].BBox, out.Tokens[j].BBox
		if a.Top() != b.Top() {
			return a.Top() > b.Top()
		}
		return a.Left() < b.Left()
	})

	out.Rulings = make([]model.RulingSegment, len(raw.Rulings))
	copy(out.Rulings, raw.Rulings)
	sort.SliceStable(out.Rulings, func(i, j int) bool {
		a, b := out.Rulings[i], out.Rulings[j]
		if a.Orientation != b.Orientation {
			return a.Orientation < b.Orientation
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.Start < b.Start
	})

	return out
}

// normalizeText folds full-width compatibility forms and collapses internal
// runs of whitespace to single spaces.
func normalizeText(s string) string {
	s = width.Fold.String(norm.NFKC.String(s))
	return strings.Join(strings.Fields(s), " ")
}
