package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/opnote/mediatriage/internal/export"
	"github.com/opnote/mediatriage/internal/media"
	"github.com/opnote/mediatriage/internal/report"
	"github.com/opnote/mediatriage/internal/session"
	"github.com/opnote/mediatriage/internal/stats"
	"github.com/opnote/mediatriage/internal/swipe"
)

func (app *App) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	s, err := app.Sessions.Get(id)
	if err != nil {
		respondError(w, err)
		return nil, false
	}
	return s, true
}

// --- Session ---

// POST /api/session
func (app *App) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	s, err := app.Sessions.Create(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":    s.ID,
		"stats": stats.Compute(s.Catalog, s.Selection.Current()),
	})
}

// DELETE /api/session/{sessionID}
func (app *App) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.Sessions.Delete(chi.URLParam(r, "sessionID")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GET /api/session/{sessionID}/media?sort=timestamp|importance
func (app *App) ListMediaHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.lookup(w, r)
	if !ok {
		return
	}
	items := s.Catalog.All()
	switch r.URL.Query().Get("sort") {
	case "importance":
		items = media.RankByImportance(items)
	default:
		media.SortByTimestamp(items)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"media": items})
}

// GET /api/session/{sessionID}/stats
func (app *App) StatsHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.lookup(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, stats.Compute(s.Catalog, s.Selection.Current()))
}

// --- Selection ---

// GET /api/session/{sessionID}/selection
func (app *App) GetSelectionHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.lookup(w, r)
	if !ok {
		return
	}
	items := s.Selection.Items()
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ids":   ids,
		"items": items,
	})
}

// PUT /api/session/{sessionID}/selection
// Body: {"ids": ["m001", "m002"]}
func (app *App) ReplaceSelectionHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.lookup(w, r)
	if !ok {
		return
	}
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.Selection.ReplaceAll(req.IDs); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"selected": s.Selection.Count()})
}

// POST /api/session/{sessionID}/selection/toggle
// Body: {"id": "m001"}
func (app *App) ToggleSelectionHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.lookup(w, r)
	if !ok {
		return
	}
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.Selection.Toggle(req.ID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":       req.ID,
		"selected": s.Selection.Has(req.ID),
		"count":    s.Selection.Count(),
	})
}

// --- Swipe ---

// POST /api/session/{sessionID}/swipe/start
// Optional body: {"anchorId": "m001"} starts the replacement sub-mode.
func (app *App) SwipeStartHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.lookup(w, r)
	if !ok {
		return
	}
	var req struct {
		AnchorID string `json:"anchorId"`
	}
	// An empty body starts the default "triage the rest" flow.
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	if req.AnchorID == "" {
		req.AnchorID = r.URL.Query().Get("anchorId")
	}

	var done, total int
	err := s.Swipe(func(e *swipe.Engine) error {
		if req.AnchorID != "" {
			if err := e.StartReplacement(req.AnchorID); err != nil {
				return err
			}
		} else {
			e.StartRemaining()
		}
		done, total = e.Progress()
		return nil
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"done": done, "total": total})
}

// GET /api/session/{sessionID}/swipe/current
func (app *App) SwipeCurrentHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.lookup(w, r)
	if !ok {
		return
	}
	var resp map[string]interface{}
	s.Swipe(func(e *swipe.Engine) error {
		done, total := e.Progress()
		resp = map[string]interface{}{
			"complete": e.Complete(),
			"done":     done,
			"total":    total,
		}
		if item, active := e.Current(); active {
			resp["item"] = item
		}
		return nil
	})
	respondJSON(w, http.StatusOK, resp)
}

// POST /api/session/{sessionID}/swipe/decide
// Body: {"direction": "accept"|"reject"}
func (app *App) SwipeDecideHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.lookup(w, r)
	if !ok {
		return
	}
	var req struct {
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dir, err := swipe.ParseDirection(req.Direction)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	var resp map[string]interface{}
	err = s.Swipe(func(e *swipe.Engine) error {
		if err := e.Decide(dir); err != nil {
			return err
		}
		done, total := e.Progress()
		resp = map[string]interface{}{
			"complete": e.Complete(),
			"done":     done,
			"total":    total,
			"count":    s.Selection.Count(),
		}
		return nil
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// --- Report ---

// POST /api/session/{sessionID}/report/generate
func (app *App) GenerateReportHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.lookup(w, r)
	if !ok {
		return
	}
	rep, err := s.Reports.Generate(r.Context(), s.Selection.Items())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

// GET /api/session/{sessionID}/report
func (app *App) ReportStatusHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.lookup(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.Reports.Status())
}

// PUT /api/session/{sessionID}/report/content
// Body: {"content": "..."}
func (app *App) EditReportHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.lookup(w, r)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.Reports.EditContent(req.Content); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// POST /api/session/{sessionID}/report/export
// Body: {"format": "pdf"|"html"|"markdown"}
// Responds with a ZIP bundle: the rendered report plus a media manifest.
func (app *App) ExportReportHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.lookup(w, r)
	if !ok {
		return
	}
	var req struct {
		Format string `json:"format"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	format := report.Format(req.Format)
	if !format.Valid() {
		httpError(w, http.StatusBadRequest, "unsupported format")
		return
	}

	blob, err := s.Reports.Export(r.Context(), format)
	if err != nil {
		respondError(w, err)
		return
	}

	st := s.Reports.Status()
	if st.Report == nil {
		// Export succeeded, so a ready report must exist.
		httpError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.ArchiveName(s.ID)+`"`)
	if err := export.WriteArchive(w, st.Report, blob, format); err != nil {
		log.Error().Err(err).Str("sessionId", s.ID).Msg("Failed to write export archive")
	}
}
