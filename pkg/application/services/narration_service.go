package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vsinha/sop/pkg/application/dto"
	"github.com/vsinha/sop/pkg/domain/entities"
)

// Fixed narration replies for requests that did not produce text
const (
	MissingCredentialMessage    = "Gemini API Key is missing. Please check your environment configuration."
	AuthenticationFailedMessage = "Authentication Error: Please check your API Key settings."
	ServiceUnavailableMessage   = "AI Analysis service is currently unavailable. Please try again later."
	EmptyResponseMessage        = "Unable to generate analysis at this time."
)

// Narration outcomes reported to MetricsRecorder.NarrationCompleted
const (
	OutcomeSuccess           = "success"
	OutcomeMissingCredential = "missing_credential"
	OutcomeAuthFailed        = "auth_failed"
	OutcomeUnavailable       = "unavailable"
	OutcomeEmpty             = "empty"
)

// TextGenerator produces prose for a prompt
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Narrator turns a derived chart into an executive summary
type Narrator interface {
	Narrate(ctx context.Context, chart []entities.ChartDataPoint, productLabel string) dto.NarrationResult
}

// NarrationService builds the capacity risk prompt and maps generator
// failures to fixed replies. It never retries.
type NarrationService struct {
	generator TextGenerator
	logger    zerolog.Logger
}

// NewNarrationService creates a narrator. A nil generator means no
// credential is configured.
func NewNarrationService(generator TextGenerator, logger zerolog.Logger) *NarrationService {
	return &NarrationService{generator: generator, logger: logger}
}

// Analyze returns the narration text for chart
func (s *NarrationService) Analyze(ctx context.Context, chart []entities.ChartDataPoint, productLabel string) string {
	return s.Narrate(ctx, chart, productLabel).Text
}

// Narrate returns the narration text and how it was obtained
func (s *NarrationService) Narrate(ctx context.Context, chart []entities.ChartDataPoint, productLabel string) dto.NarrationResult {
	if s.generator == nil {
		return dto.NarrationResult{Text: MissingCredentialMessage, Outcome: OutcomeMissingCredential}
	}

	prompt, err := BuildPrompt(chart, productLabel)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to build narration prompt")
		return dto.NarrationResult{Text: ServiceUnavailableMessage, Outcome: OutcomeUnavailable}
	}

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error().Err(err).Str("product_line", productLabel).Msg("narration request failed")
		if strings.Contains(err.Error(), "401") {
			return dto.NarrationResult{Text: AuthenticationFailedMessage, Outcome: OutcomeAuthFailed}
		}
		return dto.NarrationResult{Text: ServiceUnavailableMessage, Outcome: OutcomeUnavailable}
	}
	if strings.TrimSpace(text) == "" {
		return dto.NarrationResult{Text: EmptyResponseMessage, Outcome: OutcomeEmpty}
	}
	return dto.NarrationResult{Text: text, Outcome: OutcomeSuccess}
}

type promptRow struct {
	Month          string            `json:"month"`
	ActualCapacity entities.Quantity `json:"actualCapacity"`
	NewOrders      entities.Quantity `json:"newOrders"`
	BacklogToClear entities.Quantity `json:"backlogToClear"`
	TotalRequired  entities.Quantity `json:"totalRequired"`
	Gap            entities.Quantity `json:"gap"`
	TheoreticalMax entities.Quantity `json:"theoreticalMax"`
}

const promptTemplate = `
You are a Manufacturing Operations Manager. Analyze the following S&OP data for a discrete manufacturing plant.

Product Line: %s

Data (Next %d Months):
%s

Task:
Identify the critical months where Total Requirement (Orders + Backlog) exceeds Actual Capacity.
Note that Actual Capacity may vary month-to-month based on user simulation.
Analyze if the pressure is coming from new orders or backlog.
Provide 3 concise, actionable recommendations to close the gap (e.g., increase shifts in specific months, prioritize backlog, or push out orders).
Keep the tone professional and executive-brief style. Max 100 words.
`

// BuildPrompt renders the analysis prompt. The gap always includes backlog,
// whatever the session's view mode.
func BuildPrompt(chart []entities.ChartDataPoint, productLabel string) (string, error) {
	rows := make([]promptRow, 0, len(chart))
	for _, p := range chart {
		rows = append(rows, promptRow{
			Month:          p.Month,
			ActualCapacity: p.ActualCapacity,
			NewOrders:      p.Demand,
			BacklogToClear: p.Backlog,
			TotalRequired:  p.TotalRequirement,
			Gap:            p.ActualCapacity - p.TotalRequirement,
			TheoreticalMax: p.TheoreticalMax,
		})
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode chart rows: %w", err)
	}
	return fmt.Sprintf(promptTemplate, productLabel, len(chart), data), nil
}
