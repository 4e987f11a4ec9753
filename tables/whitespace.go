package tables

import (
	"sort"

	"github.com/tsawler/lattice/model"
)

// blockGap is the vertical distance, in layout units, separating independent
// blocks of text on a page. Tokens further apart than this are never part of
// the same table.
const blockGap = 50.0

// WhitespaceDetector reconstructs tables from text alignment alone, handling
// borderless tables. Tokens are grouped into rows by clustering their
// vertical centers; column boundaries are the horizontal gaps ("gutters")
// that recur across a majority of rows.
type WhitespaceDetector struct {
	config Config
}

// NewWhitespaceDetector creates a whitespace-alignment detector with default
// configuration.
func NewWhitespaceDetector() *WhitespaceDetector {
	return &WhitespaceDetector{config: DefaultConfig()}
}

// Name returns "whitespace".
func (d *WhitespaceDetector) Name() string {
	return DetectorWhitespace
}

// Configure sets the detector configuration.
func (d *WhitespaceDetector) Configure(config Config) error {
	d.config = config
	return nil
}

// Detect finds table candidates among the page's text tokens. Tokens are
// first split into vertically separated blocks; each block is analyzed
// independently.
func (d *WhitespaceDetector) Detect(page *model.PageLayout) ([]RawCandidate, error) {
	if len(page.Tokens) == 0 {
		return nil, nil
	}

	var candidates []RawCandidate
	for _, block := range d.splitBlocks(page.Tokens) {
		if candidate, ok := d.detectInBlock(block); ok {
			candidates = append(candidates, candidate)
		}
	}

	return candidates, nil
}

// splitBlocks groups tokens into vertically contiguous blocks. A gap wider
// than blockGap between consecutive tokens starts a new block.
func (d *WhitespaceDetector) splitBlocks(tokens []model.TextToken) [][]model.TextToken {
	sorted := make([]model.TextToken, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BBox.Top() > sorted[j].BBox.Top()
	})

	var blocks [][]model.TextToken
	current := []model.TextToken{sorted[0]}
	lowest := sorted[0].BBox.Bottom()

	for _, tok := range sorted[1:] {
		if lowest-tok.BBox.Top() > blockGap {
			blocks = append(blocks, current)
			current = nil
			lowest = tok.BBox.Bottom()
		} else if tok.BBox.Bottom() < lowest {
			lowest = tok.BBox.Bottom()
		}
		current = append(current, tok)
	}
	blocks = append(blocks, current)

	return blocks
}

// detectInBlock attempts to reconstruct a table from one block of tokens.
func (d *WhitespaceDetector) detectInBlock(tokens []model.TextToken) (RawCandidate, bool) {
	rows := d.clusterRows(tokens)
	if len(rows) < d.config.MinRows {
		return RawCandidate{}, false
	}

	colBounds := d.columnBoundaries(rows)
	if len(colBounds) < d.config.MinCols+1 {
		return RawCandidate{}, false
	}

	rowBounds := d.rowBoundaries(rows)

	return buildGridCandidate(DetectorWhitespace, rowBounds, colBounds, tokens, d.config)
}

// clusterRows groups tokens into text rows by clustering their vertical
// centers within the alignment tolerance. Rows are returned top to bottom,
// each row's tokens ordered left to right.
func (d *WhitespaceDetector) clusterRows(tokens []model.TextToken) [][]model.TextToken {
	sorted := make([]model.TextToken, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BBox.Center().Y > sorted[j].BBox.Center().Y
	})

	tolerance := d.rowTolerance(sorted)

	var rows [][]model.TextToken
	current := []model.TextToken{sorted[0]}
	centerY := sorted[0].BBox.Center().Y

	for _, tok := range sorted[1:] {
		y := tok.BBox.Center().Y
		if centerY-y > tolerance {
			rows = append(rows, current)
			current = nil
			centerY = y
		}
		current = append(current, tok)
	}
	rows = append(rows, current)

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].BBox.Left() < row[j].BBox.Left()
		})
	}

	return rows
}

// rowTolerance derives the vertical clustering tolerance from the median
// token height, floored at the configured cluster tolerance, so tall fonts
// do not split single text rows.
func (d *WhitespaceDetector) rowTolerance(tokens []model.TextToken) float64 {
	heights := make([]float64, 0, len(tokens))
	for _, tok := range tokens {
		if tok.BBox.Height > 0 {
			heights = append(heights, tok.BBox.Height)
		}
	}
	if len(heights) == 0 {
		return d.config.ClusterTolerance
	}

	sort.Float64s(heights)
	median := heights[len(heights)/2]

	if half := median / 2; half > d.config.ClusterTolerance {
		return half
	}
	return d.config.ClusterTolerance
}

// gutter is one horizontal gap observed in a text row.
type gutter struct {
	mid float64
	row int
}

// columnBoundaries finds the X coordinates separating columns: the gutters
// wider than the configured minimum that recur, at a consistent position, in
// at least the configured fraction of rows. The block's outer edges complete
// the boundary set.
func (d *WhitespaceDetector) columnBoundaries(rows [][]model.TextToken) []float64 {
	var gutters []gutter
	left, right := rows[0][0].BBox.Left(), rows[0][0].BBox.Right()

	for rowIdx, row := range rows {
		for i, tok := range row {
			if tok.BBox.Left() < left {
				left = tok.BBox.Left()
			}
			if tok.BBox.Right() > right {
				right = tok.BBox.Right()
			}
			if i == 0 {
				continue
			}
			gap := tok.BBox.Left() - row[i-1].BBox.Right()
			if gap >= d.config.GutterMinWidth {
				gutters = append(gutters, gutter{
					mid: row[i-1].BBox.Right() + gap/2,
					row: rowIdx,
				})
			}
		}
	}

	if len(gutters) == 0 {
		return nil
	}

	sort.SliceStable(gutters, func(i, j int) bool {
		return gutters[i].mid < gutters[j].mid
	})

	// Cluster gutter midpoints; a cluster becomes a column boundary when
	// enough distinct rows contributed to it.
	needed := int(d.config.GutterRowFraction*float64(len(rows))) + 1
	if needed < 2 {
		needed = 2
	}

	bounds := []float64{left}

	clusterMid := gutters[0].mid
	clusterRows := map[int]bool{gutters[0].row: true}
	count := 1

	flush := func() {
		if len(clusterRows) >= needed {
			bounds = append(bounds, clusterMid)
		}
	}

	for _, g := range gutters[1:] {
		if g.mid-clusterMid <= d.config.GutterMinWidth {
			clusterMid = (clusterMid*float64(count) + g.mid) / float64(count+1)
			count++
			clusterRows[g.row] = true
		} else {
			flush()
			clusterMid = g.mid
			clusterRows = map[int]bool{g.row: true}
			count = 1
		}
	}
	flush()

	bounds = append(bounds, right)
	return bounds
}

// rowBoundaries converts clustered text rows into Y boundaries: the top of
// the first row, the midline between each adjacent pair of rows, and the
// bottom of the last row.
func (d *WhitespaceDetector) rowBoundaries(rows [][]model.TextToken) []float64 {
	tops := make([]float64, len(rows))
	bottoms := make([]float64, len(rows))
	for i, row := range rows {
		tops[i] = row[0].BBox.Top()
		bottoms[i] = row[0].BBox.Bottom()
		for _, tok := range row[1:] {
			if tok.BBox.Top() > tops[i] {
				tops[i] = tok.BBox.Top()
			}
			if tok.BBox.Bottom() < bottoms[i] {
				bottoms[i] = tok.BBox.Bottom()
			}
		}
	}

	bounds := make([]float64, 0, len(rows)+1)
	bounds = append(bounds, tops[0])
	for i := 0; i < len(rows)-1; i++ {
		bounds = append(bounds, (bottoms[i]+tops[i+1])/2)
	}
	bounds = append(bounds, bottoms[len(rows)-1])

	return bounds
}
