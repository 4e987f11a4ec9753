package model

import (
	"fmt"
	"sort"
	"strings"
)

// Cell is one cell of a reconstructed grid. Row and Col are 0-based indices
// into the grid; RowSpan and ColSpan are at least 1.
type Cell struct {
	Text    string
	Row     int
	Col     int
	RowSpan int
	ColSpan int
}

// Grid is a row-major rectangular grid of cells.
type Grid [][]Cell

// NewGrid creates a rows x cols grid with every cell initialized to an empty
// cell at its own position with span 1x1.
func NewGrid(rows, cols int) Grid {
	g := make(Grid, rows)
	for i := range g {
		g[i] = make([]Cell, cols)
		for j := range g[i] {
			g[i][j] = Cell{Row: i, Col: j, RowSpan: 1, ColSpan: 1}
		}
	}
	return g
}

// RowCount returns the number of rows.
func (g Grid) RowCount() int {
	return len(g)
}

// ColCount returns the number of columns in the first row.
func (g Grid) ColCount() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Validate checks that the grid is rectangular, that every cell's indices
// match its position, and that spans are at least 1.
func (g Grid) Validate() error {
	cols := g.ColCount()
	for i, row := range g {
		if len(row) != cols {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), cols)
		}
		for j, cell := range row {
			if cell.Row != i || cell.Col != j {
				return fmt.Errorf("cell at (%d,%d) claims position (%d,%d)", i, j, cell.Row, cell.Col)
			}
			if cell.RowSpan < 1 || cell.ColSpan < 1 {
				return fmt.Errorf("cell at (%d,%d) has span %dx%d", i, j, cell.RowSpan, cell.ColSpan)
			}
		}
	}
	return nil
}

// IsEmpty reports whether every cell's text is empty.
func (g Grid) IsEmpty() bool {
	for _, row := range g {
		for _, cell := range row {
			if strings.TrimSpace(cell.Text) != "" {
				return false
			}
		}
	}
	return true
}

// HeaderCell is one node in a table's header hierarchy. Cells live in a flat
// arena per table; Parent is the arena index of the header cell directly above
// this one in a spanning column, or -1 for a top-level cell. The link is a
// lookup relation only, never ownership.
type HeaderCell struct {
	Content string
	Level   int // 0 = top header row
	Col     int // first raw column the cell covers
	ColSpan int
	RowSpan int
	Parent  int
}

// Shape is the row and column count of a table body.
type Shape struct {
	Rows int
	Cols int
}

// Table is one fully reconstructed table. It is immutable once assembled.
type Table struct {
	// ID is "table_{page}_{index}", with index 0-based within the page.
	ID         string
	PageNumber int

	// Headers holds one unique flattened label per body column.
	Headers []string

	// Rows maps each header label to the cell text of that row. Missing cells
	// map to the empty string.
	Rows []map[string]string

	// Confidence is the detection confidence in [0,1].
	Confidence float64

	Shape Shape
}

// Text renders the table as tab-separated plain text, headers first. Intended
// for debugging and logging, not for export.
func (t *Table) Text() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(t.Headers, "\t"))
	sb.WriteString("\n")
	for _, row := range t.Rows {
		for j, h := range t.Headers {
			sb.WriteString(row[h])
			if j < len(t.Headers)-1 {
				sb.WriteString("\t")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// TableDetail is the per-table record carried in an ExtractionSummary.
type TableDetail struct {
	ID         string
	PageNumber int
	Shape      Shape
	Confidence float64
	Headers    []string
}

// ExtractionSummary aggregates the results of one extraction run. It is
// derived from the table set and recomputed whenever that set changes.
type ExtractionSummary struct {
	TotalTables       int
	PagesProcessed    int
	TablesByPage      map[int]int
	AverageConfidence float64

	// SkippedPages lists pages the backend failed to produce a layout for,
	// in ascending order.
	SkippedPages []int

	Details []TableDetail
}

// BuildSummary computes a summary from the full ordered table set. totalPages
// is the page count of the document if the caller knows it, or 0; when 0,
// PagesProcessed falls back to the count of distinct page numbers among the
// tables. skippedPages lists pages with no layout; they are excluded from
// PagesProcessed.
func BuildSummary(tables []Table, totalPages int, skippedPages []int) ExtractionSummary {
	summary := ExtractionSummary{
		TablesByPage: make(map[int]int),
	}

	summary.TotalTables = len(tables)

	sum := 0.0
	pages := make(map[int]bool)
	for _, t := range tables {
		pages[t.PageNumber] = true
		summary.TablesByPage[t.PageNumber]++
		sum += t.Confidence

		headers := make([]string, len(t.Headers))
		copy(headers, t.Headers)
		summary.Details = append(summary.Details, TableDetail{
			ID:         t.ID,
			PageNumber: t.PageNumber,
			Shape:      t.Shape,
			Confidence: t.Confidence,
			Headers:    headers,
		})
	}

	if len(tables) > 0 {
		summary.AverageConfidence = sum / float64(len(tables))
	}

	if totalPages > 0 {
		summary.PagesProcessed = totalPages - len(skippedPages)
	} else {
		summary.PagesProcessed = len(pages)
	}

	if len(skippedPages) > 0 {
		summary.SkippedPages = make([]int, len(skippedPages))
		copy(summary.SkippedPages, skippedPages)
		sort.Ints(summary.SkippedPages)
	}

	return summary
}
