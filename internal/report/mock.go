package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/opnote/mediatriage/internal/media"
)

// MockService is the in-process report service used by the default server
// wiring and by tests. It renders a deterministic narrative from the
// selected items' phases and timestamps. Latency and failure injection
// are configurable so the orchestrator's in-flight and failure paths can
// be exercised without a network.
type MockService struct {
	// Latency is slept before each call returns, simulating the remote
	// round trip. Zero means immediate.
	Latency time.Duration

	// FailGenerate / FailExport, when non-nil, are returned instead of a
	// result.
	FailGenerate error
	FailExport   error
}

// GenerateReport builds a phase-ordered narrative over the selected items.
func (m *MockService) GenerateReport(ctx context.Context, sessionID string, items []media.Item) (*Report, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.FailGenerate != nil {
		return nil, m.FailGenerate
	}

	byPhase := make(map[media.Phase][]media.Item)
	for _, it := range items {
		byPhase[it.Phase] = append(byPhase[it.Phase], it)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Operative Report - Session %s\n\n", sessionID)
	fmt.Fprintf(&b, "Documented with %d selected media items.\n\n", len(items))
	for _, p := range media.Phases() {
		phaseItems := byPhase[p]
		if len(phaseItems) == 0 {
			continue
		}
		media.SortByTimestamp(phaseItems)
		fmt.Fprintf(&b, "## %s\n%s.\n", p.DisplayName(), p.Description())
		for _, it := range phaseItems {
			fmt.Fprintf(&b, "- %s at %s (quality %d)\n",
				it.Kind, it.Timestamp.Format("15:04:05"), it.QualityScore)
		}
		b.WriteString("\n")
	}

	return &Report{Content: b.String()}, nil
}

// ExportReport renders the report as plain bytes in the requested format.
func (m *MockService) ExportReport(ctx context.Context, rep *Report, format Format) ([]byte, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.FailExport != nil {
		return nil, m.FailExport
	}
	if !format.Valid() {
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	switch format {
	case FormatHTML:
		var b strings.Builder
		b.WriteString("<!DOCTYPE html>\n<html><body>\n<pre>\n")
		b.WriteString(rep.Content)
		b.WriteString("\n</pre>\n</body></html>\n")
		return []byte(b.String()), nil
	default:
		// PDF and markdown exports share the text rendering in the mock.
		return []byte(rep.Content), nil
	}
}

func (m *MockService) wait(ctx context.Context) error {
	if m.Latency <= 0 {
		return nil
	}
	select {
	case <-time.After(m.Latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
