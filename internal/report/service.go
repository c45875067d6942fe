package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/opnote/mediatriage/internal/media"
)

// ErrServiceFailure wraps any error the external report service returns.
// Service failures are the one error kind expected during normal
// operation: always recoverable, surfaced as retryable state, never
// fatal to the process.
var ErrServiceFailure = errors.New("report service failure")

func serviceFailure(err error) error {
	return fmt.Errorf("%w: %v", ErrServiceFailure, err)
}

// Service is the narrow contract with the external report generator. The
// orchestrator treats both calls as opaque remote operations with only
// success or failure observable; retries, if any, are the service's own
// concern.
type Service interface {
	// GenerateReport produces narrative report content for the selected
	// items. The returned report's snapshot fields (ID, SessionID,
	// GeneratedAt, SelectedMedia) are overwritten by the orchestrator.
	GenerateReport(ctx context.Context, sessionID string, items []media.Item) (*Report, error)

	// ExportReport renders a ready report into the requested format.
	ExportReport(ctx context.Context, rep *Report, format Format) ([]byte, error)
}
