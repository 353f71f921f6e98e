package narration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// GeminiConfig selects the model used for capacity narration
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// GeminiGenerator calls the Gemini API for a single completion per prompt
type GeminiGenerator struct {
	cfg      GeminiConfig
	generate generateFunc
}

// NewGeminiGenerator creates a generator. An empty API key is an error;
// callers that want the missing-credential reply pass no generator instead.
func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return newGeminiGenerator(cfg, client.Models.GenerateContent), nil
}

func newGeminiGenerator(cfg GeminiConfig, generate generateFunc) *GeminiGenerator {
	return &GeminiGenerator{cfg: cfg, generate: generate}
}

// Generate sends prompt as a single user turn and returns the response text
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	resp, err := g.generate(ctx, g.cfg.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.cfg.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", g.cfg.Model, err)
	}
	if resp == nil {
		return "", nil
	}
	return resp.Text(), nil
}
