package report

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"

	"github.com/opnote/mediatriage/internal/media"
)

// DefaultModelName is the Gemini model used when none is configured.
const DefaultModelName = "gemini-3-flash-preview"

// GeminiService generates report narratives with the Gemini API. Export
// is rendered locally; only generation needs the model.
type GeminiService struct {
	client *genai.Client
	model  string

	// local renders export blobs; reused from the mock so both services
	// produce identical export output for a given report.
	local MockService
}

// NewGeminiService wraps an existing genai client. An empty model name
// selects DefaultModelName.
func NewGeminiService(client *genai.Client, model string) *GeminiService {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiService{client: client, model: model}
}

// GenerateReport asks the model for an operative-report narrative built
// from the selected items' phase/timestamp/quality summary.
func (g *GeminiService) GenerateReport(ctx context.Context, sessionID string, items []media.Item) (*Report, error) {
	prompt := buildReportPrompt(sessionID, items)
	log.Debug().Int("promptLength", len(prompt)).Str("model", g.model).Msg("Sending report prompt to Gemini")

	model := g.client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate report content")
		return nil, fmt.Errorf("failed to generate report content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		log.Warn().Msg("Received empty response from Gemini")
		return nil, fmt.Errorf("received empty response from Gemini API")
	}

	var result strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					result.WriteString(string(text))
				}
			}
		}
	}

	content := result.String()
	log.Debug().Int("contentLength", len(content)).Msg("Received report content from Gemini")
	return &Report{Content: content}, nil
}

// ExportReport renders locally; the model is not involved in export.
func (g *GeminiService) ExportReport(ctx context.Context, rep *Report, format Format) ([]byte, error) {
	return g.local.ExportReport(ctx, rep, format)
}

func buildReportPrompt(sessionID string, items []media.Item) string {
	ordered := make([]media.Item, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Phase != ordered[j].Phase {
			return ordered[i].Phase.Ordinal() < ordered[j].Phase.Ordinal()
		}
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	var b strings.Builder
	b.WriteString("You are drafting a surgical operative report from reviewed media.\n")
	b.WriteString("Write a concise clinical narrative organized by procedure phase.\n")
	fmt.Fprintf(&b, "Session: %s. Selected media, in phase order:\n", sessionID)
	for _, it := range ordered {
		fmt.Fprintf(&b, "- phase=%s kind=%s time=%s quality=%d\n",
			it.Phase, it.Kind, it.Timestamp.Format("15:04:05"), it.QualityScore)
	}
	b.WriteString("Do not invent findings beyond what the listed media implies.\n")
	return b.String()
}
