package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/vsinha/sop/pkg/domain/entities"
)

type stubGenerator struct {
	text    string
	err     error
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}

func sampleChart() []entities.ChartDataPoint {
	return []entities.ChartDataPoint{
		{Month: "Jan N", TheoreticalMax: 22500, ActualCapacity: 10500, Demand: 45000, Backlog: 5000, TotalRequirement: 50000},
	}
}

func TestNarrationService_Outcomes(t *testing.T) {
	tests := []struct {
		name      string
		generator TextGenerator
		wantText  string
		outcome   string
	}{
		{"missing credential", nil, MissingCredentialMessage, OutcomeMissingCredential},
		{"success", &stubGenerator{text: "Increase shifts in Jan."}, "Increase shifts in Jan.", OutcomeSuccess},
		{"unauthorized", &stubGenerator{err: errors.New("Error 401: API key not valid")}, AuthenticationFailedMessage, OutcomeAuthFailed},
		{"other failure", &stubGenerator{err: errors.New("connection reset")}, ServiceUnavailableMessage, OutcomeUnavailable},
		{"blank text", &stubGenerator{text: "  \n"}, EmptyResponseMessage, OutcomeEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewNarrationService(tt.generator, zerolog.Nop())
			result := svc.Narrate(context.Background(), sampleChart(), "Standard Series")
			if result.Text != tt.wantText {
				t.Errorf("Expected %q, got %q", tt.wantText, result.Text)
			}
			if result.Outcome != tt.outcome {
				t.Errorf("Expected outcome %s, got %s", tt.outcome, result.Outcome)
			}
			if got := svc.Analyze(context.Background(), sampleChart(), "Standard Series"); got != tt.wantText {
				t.Errorf("Expected Analyze to return %q, got %q", tt.wantText, got)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt(sampleChart(), "Premium Series")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "Product Line: Premium Series") {
		t.Error("Expected prompt to name the product line")
	}

	start := strings.Index(prompt, "[")
	end := strings.LastIndex(prompt, "]")
	if start < 0 || end < start {
		t.Fatalf("Expected JSON rows in prompt:\n%s", prompt)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal([]byte(prompt[start:end+1]), &rows); err != nil {
		t.Fatalf("Failed to decode prompt rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	for _, field := range []string{"month", "actualCapacity", "newOrders", "backlogToClear", "totalRequired", "gap", "theoreticalMax"} {
		if _, ok := row[field]; !ok {
			t.Errorf("Expected prompt row field %s", field)
		}
	}
	if row["gap"].(float64) != -39500 {
		t.Errorf("Expected gap -39500, got %v", row["gap"])
	}
}
