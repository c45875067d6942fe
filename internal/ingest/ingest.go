// Package ingest is the boundary to the upstream video-processing
// pipeline: frame extraction, quality scoring, phase classification and
// pre-filtering all happen upstream; this package only delivers the
// resulting media items for a session. The simulator stands in for the
// real pipeline during development and tests.
package ingest

import (
	"context"

	"github.com/opnote/mediatriage/internal/media"
)

// Ingestor supplies the analyzed media items for a session. Scores arrive
// pre-computed in [0,100] and the IsFiltered/AISuggested flags are
// already decided upstream; the core never re-scores.
type Ingestor interface {
	Ingest(ctx context.Context, sessionID string) ([]media.Item, error)
}
