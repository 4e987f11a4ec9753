package tables

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/tsawler/lattice/model"
)

// MergedCandidate is one table region after cross-detector consolidation.
type MergedCandidate struct {
	Region model.BBox
	Grid   model.Grid

	// AgreementCount is the number of distinct detectors that contributed
	// non-empty cells to the merged grid.
	AgreementCount int

	// RegularityScore is the fraction of rows whose non-empty cell count
	// equals the grid's modal row length, in [0,1].
	RegularityScore float64

	// DetectorsRun is how many detectors ran on the page, for the scorer's
	// agreement ratio.
	DetectorsRun int

	// Contributors lists the contributing detector names, sorted.
	Contributors []string
}

// Spurious reports whether the region should be discarded: a single
// contributing detector backing fewer than two data rows is more likely
// noise than a table. bodyRows is the row count after header removal.
func (mc *MergedCandidate) Spurious(bodyRows int) bool {
	return mc.AgreementCount <= 1 && bodyRows < 2
}

// Merger deduplicates and merges raw candidates from independent detectors
// into one candidate per distinct table region.
type Merger struct {
	config Config
	log    *zap.Logger
}

// NewMerger creates a merger. A nil logger disables anomaly logging.
func NewMerger(config Config, logger *zap.Logger) *Merger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Merger{config: config, log: logger}
}

// Merge consolidates all raw candidates for one page. Candidates whose
// bounding regions overlap above the configured intersection-over-union
// threshold merge into one region; grid conflicts are resolved cell by cell.
// Malformed candidates are dropped and logged, never surfaced as errors.
// detectorsRun is the number of detectors that ran on the page.
func (m *Merger) Merge(candidates []RawCandidate, detectorsRun int) []MergedCandidate {
	valid := candidates[:0:0]
	for _, c := range candidates {
		if err := m.validate(c); err != nil {
			m.log.Warn("discarding malformed candidate",
				zap.String("detector", c.Detector),
				zap.Error(err))
			continue
		}
		valid = append(valid, c)
	}
	if len(valid) == 0 {
		return nil
	}

	groups := m.groupByOverlap(valid)

	merged := make([]MergedCandidate, 0, len(groups))
	for _, group := range groups {
		merged = append(merged, m.mergeGroup(valid, group, detectorsRun))
	}

	// Page order: top to bottom, then left to right.
	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i].Region, merged[j].Region
		if a.Top() != b.Top() {
			return a.Top() > b.Top()
		}
		return a.Left() < b.Left()
	})

	return merged
}

// validate rejects candidates with inconsistent grids or degenerate regions.
func (m *Merger) validate(c RawCandidate) error {
	if err := c.Grid.Validate(); err != nil {
		return err
	}
	if c.Grid.RowCount() < m.config.MinRows || c.Grid.ColCount() < m.config.MinCols {
		return fmt.Errorf("grid %dx%d below minimum %dx%d",
			c.Grid.RowCount(), c.Grid.ColCount(), m.config.MinRows, m.config.MinCols)
	}
	return nil
}

// groupByOverlap partitions candidate indices into groups whose regions
// overlap transitively above the threshold.
func (m *Merger) groupByOverlap(candidates []RawCandidate) [][]int {
	parent := make([]int, len(candidates))
	for i := range parent {
		parent[i] = i
	}

	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			if candidates[i].Region.IoU(candidates[j].Region) > m.config.OverlapThreshold {
				parent[find(j)] = find(i)
			}
		}
	}

	groupIdx := make(map[int]int)
	var groups [][]int
	for i := range candidates {
		root := find(i)
		gi, ok := groupIdx[root]
		if !ok {
			gi = len(groups)
			groupIdx[root] = gi
			groups = append(groups, nil)
		}
		groups[gi] = append(groups[gi], i)
	}

	return groups
}

// mergeGroup combines the candidates of one region group into a single
// merged candidate, resolving cell conflicts and computing agreement and
// regularity.
func (m *Merger) mergeGroup(candidates []RawCandidate, group []int, detectorsRun int) MergedCandidate {
	rows, cols := 0, 0
	region := candidates[group[0]].Region
	contributors := make(map[string]bool)

	for _, idx := range group {
		c := candidates[idx]
		if c.Grid.RowCount() > rows {
			rows = c.Grid.RowCount()
		}
		if c.Grid.ColCount() > cols {
			cols = c.Grid.ColCount()
		}
		region = region.Union(c.Region)
		if !c.Grid.IsEmpty() {
			contributors[c.Detector] = true
		}
	}

	grid := model.NewGrid(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			grid[i][j].Text = m.resolveCell(candidates, group, i, j)
		}
	}

	names := make([]string, 0, len(contributors))
	for name := range contributors {
		names = append(names, name)
	}
	sort.Strings(names)

	return MergedCandidate{
		Region:          region,
		Grid:            grid,
		AgreementCount:  len(names),
		RegularityScore: regularity(grid),
		DetectorsRun:    detectorsRun,
		Contributors:    names,
	}
}

// resolveCell picks the text for one merged cell. Non-empty beats empty;
// between differing non-empty values the ruling-grid detector wins as the
// most structurally reliable source, then the longer text, then the
// lexicographically smaller.
func (m *Merger) resolveCell(candidates []RawCandidate, group []int, row, col int) string {
	winner := ""
	winnerRuling := false

	for _, idx := range group {
		c := candidates[idx]
		if row >= c.Grid.RowCount() || col >= c.Grid.ColCount() {
			continue
		}
		text := c.Grid[row][col].Text
		if isBlank(text) {
			continue
		}
		fromRuling := c.Detector == DetectorRulingGrid

		switch {
		case winner == "":
			winner, winnerRuling = text, fromRuling
		case text == winner:
			winnerRuling = winnerRuling || fromRuling
		case fromRuling && !winnerRuling:
			winner, winnerRuling = text, true
		case winnerRuling && !fromRuling:
			// keep winner
		case len(text) > len(winner):
			winner = text
		case len(text) == len(winner) && text < winner:
			winner = text
		}
	}

	return winner
}

// regularity returns the fraction of rows whose non-empty cell count equals
// the grid's modal row length.
func regularity(grid model.Grid) float64 {
	if grid.RowCount() == 0 {
		return 0
	}

	counts := make([]int, grid.RowCount())
	for i, row := range grid {
		for _, cell := range row {
			if !isBlank(cell.Text) {
				counts[i]++
			}
		}
	}

	freq := make(map[int]int)
	for _, c := range counts {
		freq[c]++
	}

	modal, modalFreq := 0, 0
	for c, f := range freq {
		if f > modalFreq || (f == modalFreq && c > modal) {
			modal, modalFreq = c, f
		}
	}

	matching := 0
	for _, c := range counts {
		if c == modal {
			matching++
		}
	}

	return float64(matching) / float64(grid.RowCount())
}
