package tables

import (
	"sort"
	"strings"

	"github.com/tsawler/lattice/model"
)

// Detector names, used to tag candidates and resolve merge conflicts.
const (
	DetectorRulingGrid = "ruling-grid"
	DetectorWhitespace = "whitespace"
	DetectorImageEdge  = "image-edge"
)

// Detector is the capability shared by all table detection strategies. Each
// detector reads one page's immutable layout and emits zero or more raw
// candidates; detectors never see each other's state, so the set can run
// concurrently over the same layout.
type Detector interface {
	// Detect finds table candidates on a page.
	Detect(page *model.PageLayout) ([]RawCandidate, error)

	// Name returns the detector's identifier.
	Name() string

	// Configure sets detector parameters.
	Configure(config Config) error
}

// RawCandidate is one detector's proposal for a table region: the bounding
// region and a row-major cell grid.
type RawCandidate struct {
	Detector string
	Region   model.BBox
	Grid     model.Grid
}

// ScoreWeights are the relative weights of the confidence factors. They must
// sum to 1.
type ScoreWeights struct {
	Agreement  float64
	Regularity float64
	Fill       float64
	Header     float64
}

// Config holds the tunable parameters of the reconstruction engine.
type Config struct {
	// Minimum rows and columns for a valid grid; undersized candidates are
	// discarded.
	MinRows int
	MinCols int

	// ClusterTolerance is the distance in layout units within which ruling
	// coordinates and token edges are merged, absorbing sub-pixel jitter.
	ClusterTolerance float64

	// OverlapThreshold is the minimum intersection-over-union for two
	// candidates to merge into one region.
	OverlapThreshold float64

	// MaxHeaderDepth bounds how many leading rows may be classified as
	// header rows.
	MaxHeaderDepth int

	// Weights tunes the confidence score.
	Weights ScoreWeights

	// MinConfidence drops finished tables scoring below it. Zero keeps
	// everything.
	MinConfidence float64

	// MaxTablesPerPage caps how many tables one page may yield.
	MaxTablesPerPage int

	// IncludeHeaders is an export hint for callers. The assembler always
	// computes headers for column alignment; when false the caller's export
	// step may omit them from its output.
	IncludeHeaders bool

	// GutterMinWidth is the minimum horizontal gap, in layout units, for the
	// whitespace detector to consider a gap a potential column gutter.
	GutterMinWidth float64

	// GutterRowFraction is the fraction of rows that must share a gutter for
	// it to become a column boundary.
	GutterRowFraction float64

	// EdgeDarkThreshold is the grayscale value (0-255) below which a pixel
	// counts as part of a drawn line.
	EdgeDarkThreshold uint8

	// EdgeMinRunFraction is the minimum fraction of the image dimension a
	// dark run must span to register as a line.
	EdgeMinRunFraction float64

	// EdgeMaxDimension is the working resolution cap for the image-edge
	// detector; larger pixel maps are downsampled before scanning.
	EdgeMaxDimension int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		MinRows:            2,
		MinCols:            2,
		ClusterTolerance:   3.0,
		OverlapThreshold:   0.6,
		MaxHeaderDepth:     5,
		Weights:            DefaultWeights(),
		MinConfidence:      0,
		MaxTablesPerPage:   10,
		IncludeHeaders:     true,
		GutterMinWidth:     8.0,
		GutterRowFraction:  0.5,
		EdgeDarkThreshold:  128,
		EdgeMinRunFraction: 0.5,
		EdgeMaxDimension:   1600,
	}
}

// DefaultWeights returns the default confidence weights. Agreement and
// regularity dominate: borderless sparse tables can be legitimate, so fill
// carries less weight.
func DefaultWeights() ScoreWeights {
	return ScoreWeights{
		Agreement:  0.35,
		Regularity: 0.30,
		Fill:       0.15,
		Header:     0.20,
	}
}

// DetectorsFor returns the detector set to run on a page. The set is closed:
// the ruling-grid and whitespace detectors always run; the image-edge
// detector runs only when the backend rendered a pixel map for the page.
func DetectorsFor(page *model.PageLayout, config Config) []Detector {
	detectors := []Detector{
		NewRulingGridDetector(),
		NewWhitespaceDetector(),
	}
	if page.PixelMap != nil {
		detectors = append(detectors, NewImageEdgeDetector())
	}
	for _, d := range detectors {
		d.Configure(config)
	}
	return detectors
}

// clusterCoords merges sorted-or-unsorted coordinate values lying within
// tolerance of each other into single representative coordinates, averaging
// each cluster. The result is ascending.
func clusterCoords(values []float64, tolerance float64) []float64 {
	if len(values) == 0 {
		return nil
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	clustered := []float64{sorted[0]}
	count := 1

	for _, v := range sorted[1:] {
		last := clustered[len(clustered)-1]
		if v-last <= tolerance {
			// Fold into the running average of the current cluster.
			clustered[len(clustered)-1] = (last*float64(count) + v) / float64(count+1)
			count++
		} else {
			clustered = append(clustered, v)
			count = 1
		}
	}

	return clustered
}

// buildGridCandidate constructs a candidate from row boundaries (Y, any
// order) and column boundaries (X, ascending), assigning each token to the
// cell containing its center. It returns the zero candidate and false when
// the grid is undersized or no cell receives any text.
func buildGridCandidate(detector string, rowBounds, colBounds []float64, tokens []model.TextToken, config Config) (RawCandidate, bool) {
	if len(rowBounds) < config.MinRows+1 || len(colBounds) < config.MinCols+1 {
		return RawCandidate{}, false
	}

	// Rows descend in PDF coordinates: row 0 is the topmost band.
	rows := make([]float64, len(rowBounds))
	copy(rows, rowBounds)
	sort.Sort(sort.Reverse(sort.Float64Slice(rows)))

	cols := make([]float64, len(colBounds))
	copy(cols, colBounds)
	sort.Float64s(cols)

	grid := model.NewGrid(len(rows)-1, len(cols)-1)

	for _, tok := range tokens {
		row, col := locateCell(tok.BBox.Center(), rows, cols)
		if row < 0 || col < 0 {
			continue
		}
		cell := &grid[row][col]
		cell.Text = joinCellText(cell.Text, tok.Text)
	}

	if grid.IsEmpty() {
		return RawCandidate{}, false
	}

	region := model.BBox{
		X:      cols[0],
		Y:      rows[len(rows)-1],
		Width:  cols[len(cols)-1] - cols[0],
		Height: rows[0] - rows[len(rows)-1],
	}

	return RawCandidate{Detector: detector, Region: region, Grid: grid}, true
}

// locateCell returns the grid indices of the cell containing p, or -1,-1 when
// p falls outside the grid. rows are descending Y boundaries, cols ascending X.
func locateCell(p model.Point, rows, cols []float64) (row, col int) {
	row, col = -1, -1

	for i := 0; i < len(rows)-1; i++ {
		if p.Y <= rows[i] && p.Y >= rows[i+1] {
			row = i
			break
		}
	}
	for j := 0; j < len(cols)-1; j++ {
		if p.X >= cols[j] && p.X <= cols[j+1] {
			col = j
			break
		}
	}

	return row, col
}

// joinCellText appends text to existing cell text with a space separator.
func joinCellText(existing, text string) string {
	if existing == "" {
		return text
	}
	if text == "" {
		return existing
	}
	return existing + " " + text
}

// isBlank reports whether a cell's text is empty after trimming.
func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
