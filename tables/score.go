package tables

import "github.com/tsawler/lattice/model"

// Scorer computes a confidence score for a finalized table from structural
// and cross-detector agreement signals.
type Scorer struct {
	weights ScoreWeights
}

// NewScorer creates a scorer. Weights that do not sum to 1 are replaced by
// the defaults.
func NewScorer(weights ScoreWeights) *Scorer {
	sum := weights.Agreement + weights.Regularity + weights.Fill + weights.Header
	if sum < 0.999 || sum > 1.001 {
		weights = DefaultWeights()
	}
	return &Scorer{weights: weights}
}

// Score computes the confidence of a merged candidate given its finalized
// header/body split. The score is the weighted sum of the agreement ratio
// (detectors agreeing out of detectors run), the merge regularity score, the
// body fill ratio, and a header-presence bonus, clamped to [0,1]. Holding the
// other signals fixed, more detector agreement never lowers the score.
func (s *Scorer) Score(mc *MergedCandidate, headerDepth int, body model.Grid) float64 {
	score := 0.0

	if mc.DetectorsRun > 0 {
		agreement := float64(mc.AgreementCount) / float64(mc.DetectorsRun)
		if agreement > 1 {
			agreement = 1
		}
		score += agreement * s.weights.Agreement
	}

	score += mc.RegularityScore * s.weights.Regularity
	score += fillRatio(body) * s.weights.Fill

	if headerDepth > 0 {
		score += s.weights.Header
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// fillRatio returns the fraction of body cells holding text.
func fillRatio(body model.Grid) float64 {
	total := body.RowCount() * body.ColCount()
	if total == 0 {
		return 0
	}

	filled := 0
	for _, row := range body {
		for _, cell := range row {
			if !isBlank(cell.Text) {
				filled++
			}
		}
	}

	return float64(filled) / float64(total)
}
