package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vsinha/sop/pkg/application/services"
	"github.com/vsinha/sop/pkg/domain/entities"
	"github.com/vsinha/sop/pkg/infrastructure/config"
	"github.com/vsinha/sop/pkg/infrastructure/narration"
)

// loadConfig loads .env and the YAML config file
func loadConfig(path string) (*config.Config, error) {
	if err := config.LoadEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(config.ResolvePath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// resolveContext picks the starting scenario from flags, then config, then the clock
func resolveContext(product, month string, cfg *config.Config, now time.Time) (entities.ProductLine, entities.PlanningMonth, error) {
	if product == "" {
		product = cfg.Planning.DefaultProduct
	}
	line := entities.Standard
	if product != "" {
		parsed, err := entities.ParseProductLine(product)
		if err != nil {
			return 0, entities.PlanningMonth{}, err
		}
		line = parsed
	}

	if month == "" {
		month = cfg.Planning.DefaultMonth
	}
	planning := entities.NewPlanningMonth(now)
	if month != "" {
		parsed, err := entities.ParsePlanningMonth(month)
		if err != nil {
			return 0, entities.PlanningMonth{}, err
		}
		planning = parsed
	}

	return line, planning, nil
}

// newNarrator builds the narration service. Without a credential the
// service answers with the missing-key message and makes no call.
func newNarrator(ctx context.Context, cfg config.NarrationConfig, logger zerolog.Logger) (*services.NarrationService, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		logger.Warn().Msg("no Gemini API key configured; narration disabled")
		return services.NewNarrationService(nil, logger), nil
	}

	generator, err := narration.NewGeminiGenerator(ctx, narration.GeminiConfig{
		APIKey:      apiKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Timeout:     cfg.GetTimeoutDuration(),
	})
	if err != nil {
		return nil, err
	}
	return services.NewNarrationService(generator, logger), nil
}
