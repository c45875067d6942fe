package report

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/opnote/mediatriage/internal/media"
)

// State is the orchestrator's lifecycle position.
type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StateReady      State = "ready"
	StateExporting  State = "exporting"
)

var (
	// ErrEmptySelection is returned when generation is requested with no
	// selected items. Rejected before any service call is made.
	ErrEmptySelection = errors.New("selection is empty")

	// ErrGenerationInFlight is returned when a generation is requested
	// while one is already pending.
	ErrGenerationInFlight = errors.New("report generation already in flight")

	// ErrExportInFlight is returned when an async operation is requested
	// while an export is pending.
	ErrExportInFlight = errors.New("report export already in flight")

	// ErrNoReport is returned by export and edit when no ready report
	// exists yet.
	ErrNoReport = errors.New("no report generated")

	// ErrSuperseded is returned to a caller whose service response
	// arrived after the orchestrator moved on (new session context). The
	// late result is discarded, never applied.
	ErrSuperseded = errors.New("request superseded")
)

// Status is a snapshot of the orchestrator for display: current state,
// the last service error (cleared once a later operation succeeds), and
// the ready report if one exists.
type Status struct {
	State     State   `json:"state"`
	LastError string  `json:"lastError,omitempty"`
	Report    *Report `json:"report,omitempty"`
}

// Orchestrator drives report generation and export for one session.
//
// Lifecycle: idle -> generating -> ready, with a failed generation
// falling back to idle, or to ready when a prior report exists: a
// failed regeneration never blanks out content the user already has.
// Export runs ready -> exporting -> ready; an export failure leaves the
// ready report intact.
//
// At most one generation or export is in flight at a time; a second
// request is rejected, not queued, so two overlapping responses can
// never race to set conflicting states. While an operation is pending
// the catalog and selection stay fully usable; the user keeps triaging.
//
// Every request carries a stamp. Abandon invalidates outstanding stamps,
// so a late response from an abandoned session is discarded instead of
// overwriting the new session's state.
type Orchestrator struct {
	mu sync.Mutex

	svc       Service
	sessionID string

	state   State
	stamp   string
	report  *Report
	lastErr string
}

// NewOrchestrator returns an idle orchestrator for the given session.
func NewOrchestrator(sessionID string, svc Service) *Orchestrator {
	return &Orchestrator{
		svc:       svc,
		sessionID: sessionID,
		state:     StateIdle,
	}
}

// Generate requests a report for the given selection snapshot and blocks
// until the service responds; run it from its own goroutine (an HTTP
// handler's is fine). Preconditions are checked synchronously before any
// service call: an empty selection and an operation already in flight
// are rejected immediately. On success the orchestrator holds the new
// ready report; regeneration is a full replace, including any local
// content edits. On service failure the previous ready report, if any,
// remains visible and exportable.
func (o *Orchestrator) Generate(ctx context.Context, items []media.Item) (*Report, error) {
	o.mu.Lock()
	if len(items) == 0 {
		o.mu.Unlock()
		return nil, ErrEmptySelection
	}
	switch o.state {
	case StateGenerating:
		o.mu.Unlock()
		return nil, ErrGenerationInFlight
	case StateExporting:
		o.mu.Unlock()
		return nil, ErrExportInFlight
	}

	snapshot := make([]media.Item, len(items))
	copy(snapshot, items)
	stamp := generateID("rep-")
	o.stamp = stamp
	o.state = StateGenerating
	o.mu.Unlock()

	log.Info().
		Str("sessionId", o.sessionID).
		Str("requestId", stamp).
		Int("mediaCount", len(snapshot)).
		Msg("Report generation started")

	rep, err := o.svc.GenerateReport(ctx, o.sessionID, snapshot)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.stamp != stamp {
		// The session moved on while we were suspended. Drop the result.
		log.Warn().
			Str("sessionId", o.sessionID).
			Str("requestId", stamp).
			Msg("Discarding stale report generation response")
		return nil, ErrSuperseded
	}

	if err != nil {
		o.lastErr = err.Error()
		if o.report != nil {
			o.state = StateReady
		} else {
			o.state = StateIdle
		}
		log.Error().
			Err(err).
			Str("sessionId", o.sessionID).
			Str("requestId", stamp).
			Msg("Report generation failed")
		return nil, serviceFailure(err)
	}

	out := *rep
	out.ID = stamp
	out.SessionID = o.sessionID
	out.GeneratedAt = timeNow()
	out.SelectedMedia = snapshot

	o.report = &out
	o.lastErr = ""
	o.state = StateReady

	log.Info().
		Str("sessionId", o.sessionID).
		Str("reportId", out.ID).
		Int("contentLength", len(out.Content)).
		Msg("Report ready")
	return &out, nil
}

// EditContent overwrites the ready report's narrative locally. The edit
// is not re-sent to the generator and GeneratedAt is untouched; only an
// explicit regeneration replaces edited content.
func (o *Orchestrator) EditContent(content string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.state {
	case StateGenerating:
		return ErrGenerationInFlight
	case StateExporting:
		return ErrExportInFlight
	}
	if o.report == nil {
		return ErrNoReport
	}
	o.report.Content = content
	return nil
}

// Export renders the ready report in the requested format, blocking until
// the service responds. Valid only when a ready report exists; guarded
// against concurrent generation and export the same way Generate is. An
// export failure surfaces as an error and in Status, but the ready
// report is never discarded.
func (o *Orchestrator) Export(ctx context.Context, format Format) ([]byte, error) {
	o.mu.Lock()
	switch o.state {
	case StateGenerating:
		o.mu.Unlock()
		return nil, ErrGenerationInFlight
	case StateExporting:
		o.mu.Unlock()
		return nil, ErrExportInFlight
	}
	if o.report == nil {
		o.mu.Unlock()
		return nil, ErrNoReport
	}
	rep := *o.report
	stamp := generateID("exp-")
	o.stamp = stamp
	o.state = StateExporting
	o.mu.Unlock()

	log.Info().
		Str("sessionId", o.sessionID).
		Str("reportId", rep.ID).
		Str("format", string(format)).
		Msg("Report export started")

	blob, err := o.svc.ExportReport(ctx, &rep, format)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.stamp != stamp {
		log.Warn().
			Str("sessionId", o.sessionID).
			Str("requestId", stamp).
			Msg("Discarding stale report export response")
		return nil, ErrSuperseded
	}

	o.state = StateReady
	if err != nil {
		o.lastErr = err.Error()
		log.Error().
			Err(err).
			Str("sessionId", o.sessionID).
			Str("reportId", rep.ID).
			Msg("Report export failed")
		return nil, serviceFailure(err)
	}
	o.lastErr = ""
	return blob, nil
}

// Status returns a display snapshot. The report is a copy; the caller
// cannot mutate orchestrator state through it.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	st := Status{State: o.state, LastError: o.lastErr}
	if o.report != nil {
		rep := *o.report
		st.Report = &rep
	}
	return st
}

// Abandon invalidates any in-flight request so its late response is
// dropped. Called when the session is replaced or deleted. The
// orchestrator itself stays usable; a fresh Generate issues a new stamp.
func (o *Orchestrator) Abandon() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stamp = ""
	if o.state == StateGenerating || o.state == StateExporting {
		if o.report != nil {
			o.state = StateReady
		} else {
			o.state = StateIdle
		}
	}
}
