package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vsinha/sop/pkg/application/services"
	"github.com/vsinha/sop/pkg/infrastructure/config"
	"github.com/vsinha/sop/pkg/infrastructure/events"
	"github.com/vsinha/sop/pkg/infrastructure/logging"
	"github.com/vsinha/sop/pkg/infrastructure/metrics"
	"github.com/vsinha/sop/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/sop/pkg/interfaces/api"
)

// ServeConfig holds configuration for the HTTP server command
type ServeConfig struct {
	ConfigFile string
	Addr       string
	Verbose    bool
}

// ServeCommand runs the planner session behind the HTTP API until ctx is cancelled
type ServeCommand struct {
	config ServeConfig
	now    func() time.Time
}

// NewServeCommand creates a new serve command
func NewServeCommand(config ServeConfig) *ServeCommand {
	return &ServeCommand{config: config, now: time.Now}
}

// Execute starts the server and blocks until shutdown completes
func (c *ServeCommand) Execute(ctx context.Context) error {
	cfg, err := loadConfig(c.config.ConfigFile)
	if err != nil {
		return err
	}
	if c.config.Verbose {
		cfg.Logging.Level = "debug"
	}
	logger := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	handler, cleanup, err := c.buildHandler(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	addr := c.config.Addr
	if addr == "" {
		addr = cfg.Server.Address()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("starting S&OP planner server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GetShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

// buildHandler wires store, session and forwarder into the HTTP handler
func (c *ServeCommand) buildHandler(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (http.Handler, func(), error) {
	cleanup := func() {}

	line, month, err := resolveContext("", "", cfg, c.now())
	if err != nil {
		return nil, cleanup, fmt.Errorf("invalid planning defaults: %w", err)
	}

	eventStore := events.NewInMemoryEventStore(logger)
	if cfg.Kafka.Enabled {
		forwarder, err := events.NewKafkaForwarder(events.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			WriteTimeout: cfg.Kafka.GetWriteTimeout(),
		}, logger)
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to create kafka forwarder: %w", err)
		}
		if err := eventStore.Subscribe(events.SavedScenarioEvents, forwarder); err != nil {
			return nil, cleanup, err
		}
		cleanup = func() {
			// drains queued saves before the writer closes
			if err := eventStore.Unsubscribe(forwarder); err != nil {
				logger.Warn().Err(err).Msg("failed to unsubscribe kafka forwarder")
			}
			if err := forwarder.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close kafka forwarder")
			}
		}
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("forwarding saved scenarios to kafka")
	}

	m := metrics.NewMetrics()
	store := services.NewScenarioStore(memory.NewScenarioRepository(),
		services.WithEventStore(eventStore),
		services.WithStoreMetrics(m),
		services.WithStoreLogger(logger),
	)

	narrator, err := newNarrator(ctx, cfg.Narration, logger)
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to set up narration: %w", err)
	}

	session, err := services.NewPlannerSession(store, narrator,
		services.WithLogger(logger),
		services.WithSessionEvents(eventStore),
		services.WithMetrics(m),
		services.WithDefaultContext(line, month),
	)
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to open default scenario: %w", err)
	}

	return api.NewServer(session, m, logger).Handler(), cleanup, nil
}
