package tables

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tsawler/lattice/model"
)

// labelSeparator joins header hierarchy levels into one flattened label.
const labelSeparator = " - "

// ConsolidatedHeader is the flattened header of one table: exactly one unique
// label per raw body column, derived from the header cell hierarchy.
type ConsolidatedHeader struct {
	// Labels holds one label per body column, pairwise distinct.
	Labels []string

	// Depth is the number of rows classified as header rows.
	Depth int

	// Cells is the arena of header cells the labels were derived from.
	// Parent references in the cells index into this slice.
	Cells []model.HeaderCell
}

// Consolidator classifies header rows within a merged candidate, builds the
// header hierarchy, and flattens it into unique column labels.
type Consolidator struct {
	config Config
}

// NewConsolidator creates a consolidator.
func NewConsolidator(config Config) *Consolidator {
	return &Consolidator{config: config}
}

// Consolidate splits a merged grid into its consolidated header and body
// rows. A candidate with no classifiable header rows keeps its full grid as
// body and receives "Column {n}" labels. The returned body grid is reindexed
// so cell positions stay within bounds.
func (c *Consolidator) Consolidate(grid model.Grid) (ConsolidatedHeader, model.Grid) {
	depth := c.classifyHeaderRows(grid)

	header := ConsolidatedHeader{Depth: depth}
	if depth > 0 {
		header.Cells = c.buildArena(grid, depth)
	}
	header.Labels = c.flatten(header.Cells, depth, grid.ColCount())

	body := model.NewGrid(grid.RowCount()-depth, grid.ColCount())
	for i := depth; i < grid.RowCount(); i++ {
		for j := range grid[i] {
			body[i-depth][j].Text = grid[i][j].Text
		}
	}

	return header, body
}

// classifyHeaderRows scans rows from the top. A row stays a header row while
// it has text and its non-empty cells are not numeric-dominant; scanning
// stops at the first failing row, at the configured maximum depth, or when
// only one row would remain as body.
func (c *Consolidator) classifyHeaderRows(grid model.Grid) int {
	limit := grid.RowCount() - 1
	if c.config.MaxHeaderDepth < limit {
		limit = c.config.MaxHeaderDepth
	}

	depth := 0
	for depth < limit && c.isHeaderRow(grid[depth]) {
		depth++
	}
	return depth
}

// isHeaderRow reports whether the majority of the row's non-empty cells do
// not parse as a number, percentage, or currency amount. Empty rows are not
// header rows.
func (c *Consolidator) isHeaderRow(row []model.Cell) bool {
	nonEmpty, numeric := 0, 0
	for _, cell := range row {
		if isBlank(cell.Text) {
			continue
		}
		nonEmpty++
		if looksNumeric(cell.Text) {
			numeric++
		}
	}
	if nonEmpty == 0 {
		return false
	}
	return float64(numeric)/float64(nonEmpty) < 0.5
}

// looksNumeric reports whether a cell value parses as a number after removing
// currency symbols, percent signs, digit grouping, and accounting-style
// negative parentheses.
func looksNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = s[1 : len(s)-1]
	}
	s = strings.TrimLeft(s, "$€£¥+-")
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// buildArena constructs the header cell arena from the classified header
// rows. Within a row, a non-empty cell spans itself plus the run of blank
// cells to its right (bounded by any span the detector already recorded); a
// cell below a spanning cell links to it through its Parent index.
func (c *Consolidator) buildArena(grid model.Grid, depth int) []model.HeaderCell {
	cols := grid.ColCount()
	var arena []model.HeaderCell

	// owner[level][col] is the arena index of the header cell covering that
	// column at that level, or -1.
	owner := make([][]int, depth)
	for level := range owner {
		owner[level] = make([]int, cols)
		for j := range owner[level] {
			owner[level][j] = -1
		}
	}

	for level := 0; level < depth; level++ {
		for j := 0; j < cols; {
			cell := grid[level][j]
			if isBlank(cell.Text) {
				j++
				continue
			}

			span := 1
			for j+span < cols && isBlank(grid[level][j+span].Text) {
				span++
			}
			if cell.ColSpan > span && j+cell.ColSpan <= cols {
				span = cell.ColSpan
			}

			parent := -1
			if level > 0 {
				parent = owner[level-1][j]
			}

			idx := len(arena)
			arena = append(arena, model.HeaderCell{
				Content: strings.TrimSpace(cell.Text),
				Level:   level,
				Col:     j,
				ColSpan: span,
				RowSpan: 1,
				Parent:  parent,
			})
			for k := j; k < j+span; k++ {
				owner[level][k] = idx
			}

			j += span
		}
	}

	return arena
}

// flatten derives one label per column: the path from the column's deepest
// header cell up through its parents, joined top to bottom. Columns with no
// header cell at any level, and tables with no header rows at all, get
// "Column {n}" labels. Duplicate labels receive a 1-based occurrence suffix.
func (c *Consolidator) flatten(arena []model.HeaderCell, depth, cols int) []string {
	// Rebuild column ownership from the arena; leaf is the deepest owner.
	leaf := make([]int, cols)
	for j := range leaf {
		leaf[j] = -1
	}
	for idx, cell := range arena {
		for k := cell.Col; k < cell.Col+cell.ColSpan && k < cols; k++ {
			if leaf[k] == -1 || arena[leaf[k]].Level < cell.Level {
				leaf[k] = idx
			}
		}
	}

	labels := make([]string, cols)
	for j := 0; j < cols; j++ {
		if leaf[j] == -1 {
			labels[j] = fmt.Sprintf("Column %d", j+1)
			continue
		}

		var parts []string
		for idx := leaf[j]; idx != -1; idx = arena[idx].Parent {
			if arena[idx].Content != "" {
				parts = append(parts, arena[idx].Content)
			}
		}
		// parts are leaf-first; reverse into top-down order.
		for l, r := 0, len(parts)-1; l < r; l, r = l+1, r-1 {
			parts[l], parts[r] = parts[r], parts[l]
		}

		if len(parts) == 0 {
			labels[j] = fmt.Sprintf("Column %d", j+1)
		} else {
			labels[j] = strings.Join(parts, labelSeparator)
		}
	}

	return dedupeLabels(labels)
}

// dedupeLabels makes labels pairwise distinct by appending a 1-based
// occurrence suffix to the second and later duplicates.
func dedupeLabels(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	counts := make(map[string]int)

	for i, label := range labels {
		base := label
		for seen[label] {
			counts[base]++
			label = fmt.Sprintf("%s (%d)", base, counts[base])
		}
		seen[label] = true
		labels[i] = label
	}

	return labels
}
