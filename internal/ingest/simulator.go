package ingest

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/opnote/mediatriage/internal/media"
)

// qualityFloor is the score below which the upstream pipeline filters a
// frame out of review entirely.
const qualityFloor = 35

// suggestedPerPhase caps how many items per phase the simulated
// classifier marks as AI-suggested.
const suggestedPerPhase = 2

// phaseTimeline is each phase's share of the session duration, in
// procedure order. Sums to 1.
var phaseTimeline = []float64{0.10, 0.12, 0.18, 0.45, 0.15}

// Simulator fabricates a plausible session's worth of analyzed media.
// Output is deterministic per session id, so repeated loads of the same
// session produce the same catalog; tests and demos rely on that.
type Simulator struct {
	// ItemCount is the number of extracted items including filtered ones.
	// Zero means the default of 48.
	ItemCount int

	// SessionStart anchors the capture timestamps. Zero means a fixed
	// reference instant (kept stable for determinism).
	SessionStart time.Time

	// Duration is the simulated procedure length. Zero means 90 minutes.
	Duration time.Duration
}

// Ingest generates the item list for sessionID.
func (s *Simulator) Ingest(ctx context.Context, sessionID string) ([]media.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	count := s.ItemCount
	if count <= 0 {
		count = 48
	}
	start := s.SessionStart
	if start.IsZero() {
		start = time.Date(2026, 3, 14, 8, 30, 0, 0, time.UTC)
	}
	duration := s.Duration
	if duration <= 0 {
		duration = 90 * time.Minute
	}

	rng := rand.New(rand.NewSource(seed(sessionID)))
	phases := media.Phases()

	items := make([]media.Item, 0, count)
	for i := 0; i < count; i++ {
		// Position in the session decides the phase via the timeline.
		pos := float64(i) / float64(count)
		phase := phases[phaseAt(pos)]

		// Jitter timestamps so extraction order is not capture order.
		offset := time.Duration((pos + (rng.Float64()-0.5)*0.02) * float64(duration))
		if offset < 0 {
			offset = 0
		}

		kind := media.KindImage
		if rng.Float64() < 0.2 {
			kind = media.KindVideo
		}

		quality := clampScore(40 + rng.Intn(61) - rng.Intn(15))
		it := media.Item{
			ID:              fmt.Sprintf("m%03d", i+1),
			SessionID:       sessionID,
			Kind:            kind,
			ContentURL:      fmt.Sprintf("media/%s/%03d.%s", sessionID, i+1, ext(kind)),
			ThumbnailURL:    fmt.Sprintf("media/%s/thumbs/%03d.jpg", sessionID, i+1),
			Timestamp:       start.Add(offset),
			Phase:           phase,
			QualityScore:    quality,
			BlurScore:       clampScore(quality + rng.Intn(21) - 10),
			BrightnessScore: clampScore(55 + rng.Intn(41) - 20),
			NoiseScore:      clampScore(quality + rng.Intn(15) - 7),
			IsFiltered:      quality < qualityFloor,
		}
		items = append(items, it)
	}

	markSuggested(items)

	filtered := 0
	for _, it := range items {
		if it.IsFiltered {
			filtered++
		}
	}
	log.Info().
		Str("sessionId", sessionID).
		Int("items", len(items)).
		Int("filtered", filtered).
		Msg("Simulated ingestion complete")
	return items, nil
}

// markSuggested flags the top items per phase by importance, skipping
// filtered ones. Mirrors the upstream classifier proposing the most
// report-worthy frames.
func markSuggested(items []media.Item) {
	type ref struct {
		idx        int
		importance int
	}
	perPhase := make(map[media.Phase][]ref)
	for i, it := range items {
		if it.IsFiltered {
			continue
		}
		perPhase[it.Phase] = append(perPhase[it.Phase], ref{i, media.Importance(it)})
	}
	for _, refs := range perPhase {
		for n := 0; n < suggestedPerPhase && n < len(refs); n++ {
			best := n
			for j := n + 1; j < len(refs); j++ {
				if refs[j].importance > refs[best].importance {
					best = j
				}
			}
			refs[n], refs[best] = refs[best], refs[n]
			items[refs[n].idx].AISuggested = true
		}
	}
}

// phaseAt maps a 0-1 session position onto the phase timeline.
func phaseAt(pos float64) int {
	acc := 0.0
	for i, share := range phaseTimeline {
		acc += share
		if pos < acc {
			return i
		}
	}
	return len(phaseTimeline) - 1
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func ext(k media.Kind) string {
	if k == media.KindVideo {
		return "mp4"
	}
	return "jpg"
}

func seed(sessionID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(sessionID))
	return int64(h.Sum64())
}
