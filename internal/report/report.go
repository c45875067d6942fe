// Package report turns a finalized media selection into a narrative
// operative report through an external report service, and tracks the
// generation/export lifecycle with a one-operation-in-flight guard.
package report

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/opnote/mediatriage/internal/media"
)

// Format selects an export rendering.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// Valid reports whether f is a supported export format.
func (f Format) Valid() bool {
	switch f {
	case FormatPDF, FormatHTML, FormatMarkdown:
		return true
	}
	return false
}

// Report is one generated operative report. SelectedMedia is frozen at
// generation time: later selection changes never retroactively alter an
// existing report, only a fresh generation reflects them.
type Report struct {
	ID            string       `json:"id"`
	SessionID     string       `json:"sessionId"`
	Content       string       `json:"content"`
	GeneratedAt   time.Time    `json:"generatedAt"`
	SelectedMedia []media.Item `json:"selectedMedia"`
}

// timeNow is swapped out by tests that pin GeneratedAt.
var timeNow = time.Now

// generateID creates a cryptographically random id with the given prefix.
// The prefix should include a trailing dash, e.g. "rep-".
func generateID(prefix string) string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		log.Fatal().Err(err).Msgf("Failed to generate random %s id", prefix)
	}
	return prefix + hex.EncodeToString(b)
}
