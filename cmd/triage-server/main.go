// Command triage-server runs the media triage and report API for one
// reviewer: session creation over simulated ingestion, grid and swipe
// selection, triage statistics, and report generation/export against
// either the in-process mock service or Gemini.
package main

import (
	"context"
	"net/http"
	"os"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/opnote/mediatriage/internal/api"
	"github.com/opnote/mediatriage/internal/ingest"
	"github.com/opnote/mediatriage/internal/logging"
	"github.com/opnote/mediatriage/internal/report"
	"github.com/opnote/mediatriage/internal/session"
)

// CLI flags
var (
	addrFlag      string
	logLevelFlag  string
	useGeminiFlag bool
	modelFlag     string
	itemCountFlag int
)

var rootCmd = &cobra.Command{
	Use:   "triage-server",
	Short: "Surgical media triage and report generation API",
	Long: `Triage Server hosts the review workflow for one surgical session's
extracted media: build a catalog from the ingestion pipeline, curate a
selection through grid toggling or the swipe stack, and turn the final
selection into an operative report.

Report generation uses an in-process mock service by default. With
--use-gemini and GEMINI_API_KEY set, narratives are generated by the
Gemini API instead.

Examples:
  triage-server
  triage-server --addr :9090 --log-level debug
  triage-server --use-gemini --model gemini-3-pro-preview`,
	Run: runServer,
}

func init() {
	rootCmd.Flags().StringVar(&addrFlag, "addr", ":8080", "Listen address")
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error (overrides TRIAGE_LOG_LEVEL)")
	rootCmd.Flags().BoolVar(&useGeminiFlag, "use-gemini", false, "Generate reports with the Gemini API (requires GEMINI_API_KEY)")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", report.DefaultModelName, "Gemini model to use")
	rootCmd.Flags().IntVar(&itemCountFlag, "item-count", 0, "Simulated media items per session (0 = default)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) {
	logging.Init()
	if logLevelFlag != "" {
		logging.SetLevel(logLevelFlag)
	}

	svc, cleanup, err := buildReportService()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure report service")
	}
	defer cleanup()

	manager := session.NewManager(
		&ingest.Simulator{ItemCount: itemCountFlag},
		svc,
	)
	router := api.NewRouter(&api.App{Sessions: manager})

	log.Info().
		Str("addr", addrFlag).
		Bool("gemini", useGeminiFlag).
		Msg("Triage server listening")
	if err := http.ListenAndServe(addrFlag, router); err != nil {
		log.Fatal().Err(err).Msg("Server exited")
	}
}

func buildReportService() (report.Service, func(), error) {
	if !useGeminiFlag {
		return &report.MockService{}, func() {}, nil
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal().Msg("GEMINI_API_KEY must be set with --use-gemini")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, nil, err
	}
	return report.NewGeminiService(client, modelFlag), func() { client.Close() }, nil
}
