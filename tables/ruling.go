package tables

import (
	"github.com/tsawler/lattice/model"
)

// RulingGridDetector reconstructs tables from drawn ruling lines. Horizontal
// and vertical segments are clustered into coordinate sets; the cross product
// of consecutive coordinates defines the cell grid, and each text token is
// assigned to the cell containing its center. This is the most structurally
// reliable detector, so its cells win merge conflicts.
type RulingGridDetector struct {
	config Config
}

// NewRulingGridDetector creates a ruling-grid detector with default
// configuration.
func NewRulingGridDetector() *RulingGridDetector {
	return &RulingGridDetector{config: DefaultConfig()}
}

// Name returns "ruling-grid".
func (d *RulingGridDetector) Name() string {
	return DetectorRulingGrid
}

// Configure sets the detector configuration.
func (d *RulingGridDetector) Configure(config Config) error {
	d.config = config
	return nil
}

// Detect builds at most one candidate from the page's ruling lines. Pages
// with too few distinct coordinates in either direction, or whose grid holds
// no text at all, yield no candidate.
func (d *RulingGridDetector) Detect(page *model.PageLayout) ([]RawCandidate, error) {
	horizontals, verticals := page.RulingsByOrientation()
	if len(horizontals) < d.config.MinRows+1 || len(verticals) < d.config.MinCols+1 {
		return nil, nil
	}

	hPositions := make([]float64, 0, len(horizontals))
	for _, r := range horizontals {
		hPositions = append(hPositions, r.Position)
	}
	vPositions := make([]float64, 0, len(verticals))
	for _, r := range verticals {
		vPositions = append(vPositions, r.Position)
	}

	rowBounds := clusterCoords(hPositions, d.config.ClusterTolerance)
	colBounds := clusterCoords(vPositions, d.config.ClusterTolerance)

	candidate, ok := buildGridCandidate(DetectorRulingGrid, rowBounds, colBounds, page.Tokens, d.config)
	if !ok {
		return nil, nil
	}

	return []RawCandidate{candidate}, nil
}
