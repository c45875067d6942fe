// Package export writes delivery bundles for exported reports: a ZIP
// containing the rendered report plus a JSON manifest of the media it
// was built from. The archive uses Zstandard compression inside the ZIP
// container for the report body.
package export

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/opnote/mediatriage/internal/report"
)

// zipMethodZstd is the ZIP compression method ID for Zstandard
// (APPNOTE 6.3.7). Registered in init with the default encoder level.
const zipMethodZstd uint16 = 93

func init() {
	zip.RegisterCompressor(zipMethodZstd, func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w)
	})
}

// manifestEntry is one selected media item in the bundle manifest.
type manifestEntry struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	Phase        string    `json:"phase"`
	Timestamp    time.Time `json:"timestamp"`
	ContentURL   string    `json:"contentUrl"`
	QualityScore int       `json:"qualityScore"`
}

// ArchiveName returns the download filename for a session's bundle.
func ArchiveName(sessionID string) string {
	return fmt.Sprintf("report-%s.zip", sessionID)
}

// WriteArchive streams a bundle to w: the exported report blob under
// report.<ext> and the selection manifest under manifest.json.
func WriteArchive(w io.Writer, rep *report.Report, blob []byte, format report.Format) error {
	zw := zip.NewWriter(w)

	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:     "report." + extension(format),
		Method:   zipMethodZstd,
		Modified: rep.GeneratedAt,
	})
	if err != nil {
		return fmt.Errorf("create report entry: %w", err)
	}
	if _, err := fw.Write(blob); err != nil {
		return fmt.Errorf("write report entry: %w", err)
	}

	entries := make([]manifestEntry, 0, len(rep.SelectedMedia))
	for _, it := range rep.SelectedMedia {
		entries = append(entries, manifestEntry{
			ID:           it.ID,
			Kind:         string(it.Kind),
			Phase:        string(it.Phase),
			Timestamp:    it.Timestamp,
			ContentURL:   it.ContentURL,
			QualityScore: it.QualityScore,
		})
	}
	mw, err := zw.CreateHeader(&zip.FileHeader{
		Name:     "manifest.json",
		Method:   zip.Deflate,
		Modified: rep.GeneratedAt,
	})
	if err != nil {
		return fmt.Errorf("create manifest entry: %w", err)
	}
	if err := json.NewEncoder(mw).Encode(entries); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}

	log.Debug().
		Str("reportId", rep.ID).
		Int("mediaCount", len(entries)).
		Int("blobSize", len(blob)).
		Msg("Export archive written")
	return nil
}

func extension(f report.Format) string {
	switch f {
	case report.FormatHTML:
		return "html"
	case report.FormatMarkdown:
		return "md"
	default:
		return "pdf"
	}
}
