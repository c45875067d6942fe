package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/opnote/mediatriage/internal/media"
	"github.com/opnote/mediatriage/internal/report"
	"github.com/opnote/mediatriage/internal/session"
)

// fixedIngestor returns a small deterministic catalog so tests can refer
// to item ids directly.
type fixedIngestor struct{}

func (fixedIngestor) Ingest(ctx context.Context, sessionID string) ([]media.Item, error) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	mk := func(id string, phase media.Phase, minute, quality int, filtered bool) media.Item {
		return media.Item{
			ID:           id,
			SessionID:    sessionID,
			Kind:         media.KindImage,
			Timestamp:    base.Add(time.Duration(minute) * time.Minute),
			Phase:        phase,
			QualityScore: quality,
			IsFiltered:   filtered,
		}
	}
	return []media.Item{
		mk("m1", media.PhaseOperative, 10, 80, false),
		mk("m2", media.PhaseOperative, 20, 70, false),
		mk("m3", media.PhaseOperative, 30, 60, false),
		mk("m4", media.PhaseClosure, 40, 90, false),
		mk("m5", media.PhaseClosure, 50, 10, true), // filtered upstream
	}, nil
}

func newTestHandler() http.Handler {
	manager := session.NewManager(fixedIngestor{}, &report.MockService{})
	return NewRouter(&App{Sessions: manager})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rr.Body.String(), err)
	}
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rr := doJSON(t, h, http.MethodPost, "/api/session", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create session: expected 201, got %d (%s)", rr.Code, rr.Body.String())
	}
	var resp struct {
		ID string `json:"id"`
	}
	decode(t, rr, &resp)
	if resp.ID == "" {
		t.Fatal("create session returned no id")
	}
	return resp.ID
}

// --- Session Tests ---

func TestCreateSession_FiltersUpstreamItems(t *testing.T) {
	h := newTestHandler()
	id := createSession(t, h)

	rr := doJSON(t, h, http.MethodGet, "/api/session/"+id+"/media", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp struct {
		Media []media.Item `json:"media"`
	}
	decode(t, rr, &resp)
	if len(resp.Media) != 4 {
		t.Errorf("expected 4 catalog items (m5 filtered), got %d", len(resp.Media))
	}
	for _, it := range resp.Media {
		if it.ID == "m5" {
			t.Error("filtered item m5 leaked into the catalog")
		}
	}
}

func TestUnknownSession(t *testing.T) {
	h := newTestHandler()
	rr := doJSON(t, h, http.MethodGet, "/api/session/nope/stats", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	h := newTestHandler()
	id := createSession(t, h)

	rr := doJSON(t, h, http.MethodDelete, "/api/session/"+id, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	rr = doJSON(t, h, http.MethodGet, "/api/session/"+id+"/stats", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("deleted session should 404, got %d", rr.Code)
	}
}

// --- Selection Tests ---

func TestToggle_UpdatesStats(t *testing.T) {
	h := newTestHandler()
	id := createSession(t, h)

	rr := doJSON(t, h, http.MethodPost, "/api/session/"+id+"/selection/toggle",
		map[string]string{"id": "m1"})
	if rr.Code != http.StatusOK {
		t.Fatalf("toggle: expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, h, http.MethodGet, "/api/session/"+id+"/stats", nil)
	var st struct {
		Total    int `json:"total"`
		Selected int `json:"selected"`
	}
	decode(t, rr, &st)
	if st.Total != 4 || st.Selected != 1 {
		t.Errorf("expected total=4 selected=1, got %+v", st)
	}
}

func TestToggle_UnknownID(t *testing.T) {
	h := newTestHandler()
	id := createSession(t, h)

	rr := doJSON(t, h, http.MethodPost, "/api/session/"+id+"/selection/toggle",
		map[string]string{"id": "bogus"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown id, got %d", rr.Code)
	}
}

func TestReplaceSelection_AtomicFailure(t *testing.T) {
	h := newTestHandler()
	id := createSession(t, h)

	rr := doJSON(t, h, http.MethodPut, "/api/session/"+id+"/selection",
		map[string][]string{"ids": {"m1", "m2"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("replace: expected 200, got %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodPut, "/api/session/"+id+"/selection",
		map[string][]string{"ids": {"m1", "bogus"}})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid replace, got %d", rr.Code)
	}

	// Prior selection untouched.
	rr = doJSON(t, h, http.MethodGet, "/api/session/"+id+"/selection", nil)
	var sel struct {
		IDs []string `json:"ids"`
	}
	decode(t, rr, &sel)
	if len(sel.IDs) != 2 {
		t.Errorf("expected 2 ids after failed replace, got %v", sel.IDs)
	}
}

func TestGetSelection_TimestampOrder(t *testing.T) {
	h := newTestHandler()
	id := createSession(t, h)

	doJSON(t, h, http.MethodPut, "/api/session/"+id+"/selection",
		map[string][]string{"ids": {"m4", "m1"}})

	rr := doJSON(t, h, http.MethodGet, "/api/session/"+id+"/selection", nil)
	var sel struct {
		IDs []string `json:"ids"`
	}
	decode(t, rr, &sel)
	if len(sel.IDs) != 2 || sel.IDs[0] != "m1" || sel.IDs[1] != "m4" {
		t.Errorf("expected chronological [m1 m4], got %v", sel.IDs)
	}
}

// --- Swipe Tests ---

func TestSwipeFlow(t *testing.T) {
	h := newTestHandler()
	id := createSession(t, h)
	base := "/api/session/" + id + "/swipe"

	rr := doJSON(t, h, http.MethodPost, base+"/start", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	var prog struct {
		Total int `json:"total"`
	}
	decode(t, rr, &prog)
	if prog.Total != 4 {
		t.Fatalf("expected 4 candidates, got %d", prog.Total)
	}

	decisions := []string{"accept", "reject", "accept", "reject"}
	for _, d := range decisions {
		rr = doJSON(t, h, http.MethodPost, base+"/decide", map[string]string{"direction": d})
		if rr.Code != http.StatusOK {
			t.Fatalf("decide %s: expected 200, got %d (%s)", d, rr.Code, rr.Body.String())
		}
	}

	var state struct {
		Complete bool `json:"complete"`
	}
	rr = doJSON(t, h, http.MethodGet, base+"/current", nil)
	decode(t, rr, &state)
	if !state.Complete {
		t.Error("expected complete session after 4 decisions")
	}

	// Decide-after-complete conflicts.
	rr = doJSON(t, h, http.MethodPost, base+"/decide", map[string]string{"direction": "accept"})
	if rr.Code != http.StatusConflict {
		t.Errorf("expected 409 after completion, got %d", rr.Code)
	}

	// accept m1, reject m2, accept m3, reject m4 -> selected {m1, m3}
	rr = doJSON(t, h, http.MethodGet, "/api/session/"+id+"/selection", nil)
	var sel struct {
		IDs []string `json:"ids"`
	}
	decode(t, rr, &sel)
	if len(sel.IDs) != 2 || sel.IDs[0] != "m1" || sel.IDs[1] != "m3" {
		t.Errorf("expected selection [m1 m3], got %v", sel.IDs)
	}
}

func TestSwipeDecide_InvalidDirection(t *testing.T) {
	h := newTestHandler()
	id := createSession(t, h)

	doJSON(t, h, http.MethodPost, "/api/session/"+id+"/swipe/start", nil)
	rr := doJSON(t, h, http.MethodPost, "/api/session/"+id+"/swipe/decide",
		map[string]string{"direction": "sideways"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestSwipeDecide_NoSession(t *testing.T) {
	h := newTestHandler()
	id := createSession(t, h)

	rr := doJSON(t, h, http.MethodPost, "/api/session/"+id+"/swipe/decide",
		map[string]string{"direction": "accept"})
	if rr.Code != http.StatusConflict {
		t.Errorf("expected 409 without a started session, got %d", rr.Code)
	}
}

func TestSwipeReplacement(t *testing.T) {
	h := newTestHandler()
	id := createSession(t, h)

	doJSON(t, h, http.MethodPut, "/api/session/"+id+"/selection",
		map[string][]string{"ids": {"m1"}})

	rr := doJSON(t, h, http.MethodPost, "/api/session/"+id+"/swipe/start",
		map[string]string{"anchorId": "m1"})
	if rr.Code != http.StatusOK {
		t.Fatalf("replacement start: expected 200, got %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodPost, "/api/session/"+id+"/swipe/decide",
		map[string]string{"direction": "accept"})
	if rr.Code != http.StatusOK {
		t.Fatalf("replacement accept: expected 200, got %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodGet, "/api/session/"+id+"/selection", nil)
	var sel struct {
		IDs []string `json:"ids"`
	}
	decode(t, rr, &sel)
	// Swapped m1 for the first same-phase candidate, m2.
	if len(sel.IDs) != 1 || sel.IDs[0] != "m2" {
		t.Errorf("expected [m2] after replacement, got %v", sel.IDs)
	}
}

func TestSwipeReplacement_NoAlternatives(t *testing.T) {
	h := newTestHandler()
	id := createSession(t, h)

	// m4 is the only non-filtered closure item.
	rr := doJSON(t, h, http.MethodPost, "/api/session/"+id+"/swipe/start",
		map[string]string{"anchorId": "m4"})
	if rr.Code != http.StatusConflict {
		t.Errorf("expected 409 for no alternatives, got %d (%s)", rr.Code, rr.Body.String())
	}
}

// --- Report Tests ---

func TestReportLifecycle(t *testing.T) {
	h := newTestHandler()
	id := createSession(t, h)
	base := "/api/session/" + id + "/report"

	// Empty selection rejected before any service work.
	rr := doJSON(t, h, http.MethodPost, base+"/generate", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty selection, got %d", rr.Code)
	}

	doJSON(t, h, http.MethodPut, "/api/session/"+id+"/selection",
		map[string][]string{"ids": {"m1", "m4"}})

	rr = doJSON(t, h, http.MethodPost, base+"/generate", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("generate: expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	var rep report.Report
	decode(t, rr, &rep)
	if rep.Content == "" || len(rep.SelectedMedia) != 2 {
		t.Errorf("unexpected report: content=%d bytes, media=%d", len(rep.Content), len(rep.SelectedMedia))
	}

	// Edit locally.
	rr = doJSON(t, h, http.MethodPut, base+"/content", map[string]string{"content": "edited"})
	if rr.Code != http.StatusOK {
		t.Fatalf("edit: expected 200, got %d", rr.Code)
	}
	rr = doJSON(t, h, http.MethodGet, base, nil)
	var st report.Status
	decode(t, rr, &st)
	if st.State != report.StateReady || st.Report == nil || st.Report.Content != "edited" {
		t.Errorf("unexpected status after edit: %+v", st)
	}

	// Export produces a ZIP bundle.
	rr = doJSON(t, h, http.MethodPost, base+"/export", map[string]string{"format": "pdf"})
	if rr.Code != http.StatusOK {
		t.Fatalf("export: expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("expected zip content type, got %s", ct)
	}
	if rr.Body.Len() == 0 {
		t.Error("export body is empty")
	}
}

func TestReport_UnsupportedFormat(t *testing.T) {
	h := newTestHandler()
	id := createSession(t, h)

	doJSON(t, h, http.MethodPut, "/api/session/"+id+"/selection",
		map[string][]string{"ids": {"m1"}})
	doJSON(t, h, http.MethodPost, "/api/session/"+id+"/report/generate", nil)

	rr := doJSON(t, h, http.MethodPost, "/api/session/"+id+"/report/export",
		map[string]string{"format": "docx"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unsupported format, got %d", rr.Code)
	}
}

func TestReport_ServiceFailureSurfaced(t *testing.T) {
	manager := session.NewManager(fixedIngestor{}, &report.MockService{
		FailGenerate: fmt.Errorf("model unavailable"),
	})
	h := NewRouter(&App{Sessions: manager})
	id := createSession(t, h)

	doJSON(t, h, http.MethodPut, "/api/session/"+id+"/selection",
		map[string][]string{"ids": {"m1"}})

	rr := doJSON(t, h, http.MethodPost, "/api/session/"+id+"/report/generate", nil)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}

	// Failure is retryable state, not a wedged orchestrator.
	rr = doJSON(t, h, http.MethodGet, "/api/session/"+id+"/report", nil)
	var st report.Status
	decode(t, rr, &st)
	if st.State != report.StateIdle || st.LastError == "" {
		t.Errorf("expected idle with surfaced error, got %+v", st)
	}
}

func TestPing(t *testing.T) {
	h := newTestHandler()
	rr := doJSON(t, h, http.MethodGet, "/ping", nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "pong" {
		t.Errorf("unexpected ping response: %d %q", rr.Code, rr.Body.String())
	}
}
