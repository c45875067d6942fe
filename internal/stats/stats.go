// Package stats derives triage counters from the catalog and the current
// selection. Compute is a pure function recomputed from scratch on every
// call; there are no cached counters that could drift from the selection
// store after a mutation.
package stats

import (
	"math"

	"github.com/opnote/mediatriage/internal/media"
)

// PhaseBreakdown is the per-phase slice of the summary.
type PhaseBreakdown struct {
	Phase         media.Phase `json:"phase"`
	DisplayName   string      `json:"displayName"`
	ItemCount     int         `json:"itemCount"`
	SelectedCount int         `json:"selectedCount"`
}

// Stats summarizes one session's triage state.
type Stats struct {
	Total          int `json:"total"`
	Selected       int `json:"selected"`
	Suggested      int `json:"suggested"`
	AverageQuality int `json:"averageQuality"`

	Phases []PhaseBreakdown `json:"phases"`
}

// Compute derives Stats from the catalog and a snapshot of selected ids.
// Suggested counts AI-suggested catalog items regardless of selection.
// AverageQuality is the rounded mean quality over the whole catalog, and
// 0 for an empty catalog so callers always get a number.
func Compute(catalog *media.Catalog, selected []string) Stats {
	sel := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		sel[id] = struct{}{}
	}

	st := Stats{Total: catalog.Len(), Selected: len(sel)}

	qualitySum := 0
	for _, it := range catalog.All() {
		qualitySum += it.QualityScore
		if it.AISuggested {
			st.Suggested++
		}
	}
	if st.Total > 0 {
		st.AverageQuality = int(math.Round(float64(qualitySum) / float64(st.Total)))
	}

	for _, p := range media.Phases() {
		items := catalog.ByPhase(p)
		pb := PhaseBreakdown{
			Phase:       p,
			DisplayName: p.DisplayName(),
			ItemCount:   len(items),
		}
		for _, it := range items {
			if _, ok := sel[it.ID]; ok {
				pb.SelectedCount++
			}
		}
		st.Phases = append(st.Phases, pb)
	}

	return st
}
