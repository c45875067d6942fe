package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/opnote/mediatriage/internal/media"
	"github.com/opnote/mediatriage/internal/report"
	"github.com/opnote/mediatriage/internal/selection"
	"github.com/opnote/mediatriage/internal/session"
	"github.com/opnote/mediatriage/internal/swipe"
)

// --- JSON Helpers ---

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// httpError sends a JSON error response. The clientMsg is returned to the
// caller. Optional internalDetails are logged server-side but never sent
// to the client.
func httpError(w http.ResponseWriter, status int, clientMsg string, internalDetails ...string) {
	if len(internalDetails) > 0 {
		log.Error().
			Int("status", status).
			Str("clientMsg", clientMsg).
			Strs("internalDetails", internalDetails).
			Msg("HTTP error with internal details")
	}
	respondJSON(w, status, map[string]string{"error": clientMsg})
}

// respondError maps domain errors onto HTTP statuses. Precondition
// violations surface as client errors; only a report service failure
// maps to a gateway error.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, media.ErrNotFound):
		httpError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, selection.ErrInvalidSelection),
		errors.Is(err, report.ErrEmptySelection),
		errors.Is(err, report.ErrNoReport):
		httpError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, swipe.ErrSessionComplete),
		errors.Is(err, swipe.ErrNoSession),
		errors.Is(err, swipe.ErrNoAlternatives),
		errors.Is(err, report.ErrGenerationInFlight),
		errors.Is(err, report.ErrExportInFlight),
		errors.Is(err, report.ErrSuperseded):
		httpError(w, http.StatusConflict, err.Error())
	case errors.Is(err, report.ErrServiceFailure):
		httpError(w, http.StatusBadGateway, err.Error())
	default:
		httpError(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}
