// Package media holds the immutable media model for one surgical session:
// the item type produced by the upstream ingestion/quality pipeline, the
// fixed phase enumeration, the catalog that indexes non-filtered items,
// and the importance ranking derived from quality and phase relevance.
//
// Items are created once at session start and never mutated afterwards.
// Quality metrics come pre-computed from the upstream classifier and are
// never recomputed here.
package media

import (
	"sort"
	"time"
)

// Kind distinguishes extracted still frames from short clips.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Item is one extracted frame or clip. All score fields are integers in
// [0,100] where higher is better, including BlurScore and NoiseScore
// (100 = no blur / no noise).
type Item struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"sessionId"`
	Kind         Kind      `json:"kind"`
	ContentURL   string    `json:"contentUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Timestamp    time.Time `json:"timestamp"`
	Phase        Phase     `json:"phase"`

	QualityScore    int `json:"qualityScore"`
	BlurScore       int `json:"blurScore"`
	BrightnessScore int `json:"brightnessScore"`
	NoiseScore      int `json:"noiseScore"`

	// IsFiltered marks items the upstream pipeline excluded from review.
	// Filtered items never enter a Catalog.
	IsFiltered bool `json:"isFiltered"`

	// AISuggested marks items the upstream classifier proposed for the report.
	AISuggested bool `json:"aiSuggested"`
}

// SortByTimestamp sorts items chronologically in place. Capture timestamps
// are not guaranteed monotonic across the session, so display code must
// sort explicitly rather than rely on extraction order.
func SortByTimestamp(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.Before(items[j].Timestamp)
	})
}
