package media

import (
	"math"
	"sort"
)

// phaseWeights reflect how relevant each phase is to the final report.
// The operative phase carries the most report-worthy content; preparation
// the least. Values mirror the upstream ranking model.
var phaseWeights = map[Phase]float64{
	PhasePreparation:   0.2,
	PhasePortPlacement: 0.4,
	PhaseExploration:   0.6,
	PhaseOperative:     1.0,
	PhaseClosure:       0.5,
}

const (
	qualityWeight    = 0.4
	phaseWeightShare = 0.35
	aiBonus          = 0.1
)

// Importance combines quality and phase relevance into a single 0-100
// score, with a small bonus for items the upstream classifier suggested.
// Used for "best first" grid sorting; never for swipe candidate order,
// which is frozen at session start.
func Importance(it Item) int {
	w, ok := phaseWeights[it.Phase]
	if !ok {
		w = 0.3
	}
	score := qualityWeight*float64(it.QualityScore)/100.0 + phaseWeightShare*w
	if it.AISuggested {
		score += aiBonus
	}
	score = math.Max(0, math.Min(1, score))
	return int(math.Round(score * 100))
}

// RankByImportance returns a copy of items sorted by descending importance.
// Ties keep the input order, so repeated calls over the same slice are
// deterministic.
func RankByImportance(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return Importance(out[i]) > Importance(out[j])
	})
	return out
}
