package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vsinha/sop/pkg/application/dto"
	"github.com/vsinha/sop/pkg/domain/entities"
	"github.com/vsinha/sop/pkg/domain/repositories"
	domainservices "github.com/vsinha/sop/pkg/domain/services"
	"github.com/vsinha/sop/pkg/infrastructure/events"
)

// ScenarioStore resolves demand series and device configurations per
// scenario key. It fronts the authoritative cache (written only by explicit
// saves) and owns the working copy of the active key's configurations.
type ScenarioStore struct {
	repo       repositories.ScenarioRepository
	eventStore events.EventStore
	metrics    MetricsRecorder
	logger     zerolog.Logger

	// one mutex over both caches and the working copy
	mu         sync.Mutex
	workingKey entities.ScenarioKey
	working    entities.DeviceConfigMap
}

// StoreOption configures a ScenarioStore
type StoreOption func(*ScenarioStore)

// WithEventStore publishes save and adjustment events to es
func WithEventStore(es events.EventStore) StoreOption {
	return func(s *ScenarioStore) { s.eventStore = es }
}

// WithStoreMetrics records saves on m
func WithStoreMetrics(m MetricsRecorder) StoreOption {
	return func(s *ScenarioStore) { s.metrics = m }
}

// WithStoreLogger sets the store logger
func WithStoreLogger(logger zerolog.Logger) StoreOption {
	return func(s *ScenarioStore) { s.logger = logger }
}

// NewScenarioStore creates a store over repo
func NewScenarioStore(repo repositories.ScenarioRepository, opts ...StoreOption) *ScenarioStore {
	s := &ScenarioStore{
		repo:    repo,
		metrics: noopMetrics{},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveDemand returns the saved series for key, or a generated baseline.
// Baselines are not cached.
func (s *ScenarioStore) ResolveDemand(key entities.ScenarioKey) ([]entities.DemandForecast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.resolveDemandLocked(key)
}

func (s *ScenarioStore) resolveDemandLocked(key entities.ScenarioKey) ([]entities.DemandForecast, error) {
	series, err := s.repo.GetDemand(key)
	if err == nil {
		return series, nil
	}
	if !errors.Is(err, repositories.ErrScenarioNotFound) {
		return nil, fmt.Errorf("failed to load demand for %s: %w", key, err)
	}

	line, month, err := key.Parse()
	if err != nil {
		return nil, err
	}
	return domainservices.GenerateDemand(line, month.Month), nil
}

// ResolveConfigs returns the saved configuration map for key, or a generated
// baseline, backfilled so every month of series has an entry. The result
// becomes the working copy for key.
func (s *ScenarioStore) ResolveConfigs(key entities.ScenarioKey, series []entities.DemandForecast) (entities.DeviceConfigMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, _, err := key.Parse()
	if err != nil {
		return nil, err
	}

	configs, err := s.repo.GetDeviceConfigs(key)
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrScenarioNotFound):
		configs = domainservices.GenerateDeviceConfigs(line, series)
	default:
		return nil, fmt.Errorf("failed to load device configs for %s: %w", key, err)
	}

	backfill(line, configs, series)

	s.workingKey = key
	s.working = configs
	return configs.Clone(), nil
}

// backfill adds default devices for months of series absent from configs
func backfill(line entities.ProductLine, configs entities.DeviceConfigMap, series []entities.DemandForecast) int {
	added := 0
	for _, forecast := range series {
		if _, ok := configs[forecast.Month]; !ok {
			configs[forecast.Month] = domainservices.DefaultDevices(line)
			added++
		}
	}
	return added
}

// SaveDemand overwrites the cached series for key
func (s *ScenarioStore) SaveDemand(key entities.ScenarioKey, series []entities.DemandForecast) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveDemand(key, series); err != nil {
		return fmt.Errorf("failed to save demand for %s: %w", key, err)
	}
	s.metrics.ScenarioSaved(SaveKindDemand)
	s.publish(key, events.NewDemandSavedEvent(key, series))
	s.logger.Info().Str("key", string(key)).Int("months", len(series)).Msg("demand saved")
	return nil
}

// SaveConfigs overwrites the cached configuration map for key
func (s *ScenarioStore) SaveConfigs(key entities.ScenarioKey, configs entities.DeviceConfigMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveDeviceConfigs(key, configs); err != nil {
		return fmt.Errorf("failed to save device configs for %s: %w", key, err)
	}
	s.metrics.ScenarioSaved(SaveKindConfigs)
	s.publish(key, events.NewConfigsSavedEvent(key, configs))
	s.logger.Info().Str("key", string(key)).Int("months", len(configs)).Msg("device configs saved")
	return nil
}

// SetMonthConfig replaces one month of the working copy. The cache is not touched.
func (s *ScenarioStore) SetMonthConfig(key entities.ScenarioKey, month string, devices []entities.DeviceConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key != s.workingKey || s.working == nil {
		return fmt.Errorf("%w: %s", ErrInactiveScenario, key)
	}

	clamped := make([]entities.DeviceConfig, len(devices))
	for i, d := range devices {
		clamped[i] = d.Clamp()
	}
	s.working[month] = clamped
	s.publish(key, events.NewMonthAdjustedEvent(key, month, clamped))
	return nil
}

// WorkingConfigs returns a copy of the working map of key
func (s *ScenarioStore) WorkingConfigs(key entities.ScenarioKey) (entities.DeviceConfigMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key != s.workingKey || s.working == nil {
		return nil, fmt.Errorf("%w: %s", ErrInactiveScenario, key)
	}
	return s.working.Clone(), nil
}

// BackfillWorking adds default devices to the working copy for months of
// series it does not cover yet. Existing entries, edited or not, are kept.
func (s *ScenarioStore) BackfillWorking(key entities.ScenarioKey, series []entities.DemandForecast) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key != s.workingKey || s.working == nil {
		return fmt.Errorf("%w: %s", ErrInactiveScenario, key)
	}
	line, _, err := key.Parse()
	if err != nil {
		return err
	}
	if added := backfill(line, s.working, series); added > 0 {
		s.logger.Debug().Str("key", string(key)).Int("months", added).Msg("working configs backfilled")
	}
	return nil
}

// HasSavedDemand reports whether key has a cached demand series
func (s *ScenarioStore) HasSavedDemand(key entities.ScenarioKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.repo.GetDemand(key)
	return err == nil
}

// HasSavedConfigs reports whether key has a cached configuration map
func (s *ScenarioStore) HasSavedConfigs(key entities.ScenarioKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.repo.GetDeviceConfigs(key)
	return err == nil
}

// publish appends an event to the key's stream. Failures are logged only.
func (s *ScenarioStore) publish(key entities.ScenarioKey, event events.Event) {
	if s.eventStore == nil {
		return
	}
	if err := s.eventStore.AppendEvent(string(key), event); err != nil {
		s.logger.Warn().Err(err).Str("event_type", event.Type()).Msg("failed to publish scenario event")
	}
}

// SavedScenarios lists every key with a cached entry, sorted by key
func (s *ScenarioStore) SavedScenarios() ([]dto.ScenarioSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.repo.ListKeys()
	if err != nil {
		return nil, err
	}

	out := make([]dto.ScenarioSummary, 0, len(keys))
	for _, key := range keys {
		line, month, err := key.Parse()
		if err != nil {
			s.logger.Warn().Err(err).Str("key", string(key)).Msg("skipping unparsable scenario key")
			continue
		}
		_, demandErr := s.repo.GetDemand(key)
		_, configsErr := s.repo.GetDeviceConfigs(key)
		out = append(out, dto.ScenarioSummary{
			Key:           key,
			ProductLine:   line,
			PlanningMonth: month,
			SavedDemand:   demandErr == nil,
			SavedConfigs:  configsErr == nil,
		})
	}
	return out, nil
}

// History returns the retained events of key's stream from fromVersion on.
// Without an event store the history is empty.
func (s *ScenarioStore) History(key entities.ScenarioKey, fromVersion int) ([]events.Event, error) {
	if s.eventStore == nil {
		return []events.Event{}, nil
	}
	return s.eventStore.ReadEvents(string(key), fromVersion)
}

// EventLog returns the retained events of every scenario from fromPosition on
func (s *ScenarioStore) EventLog(fromPosition int) ([]events.Event, error) {
	if s.eventStore == nil {
		return []events.Event{}, nil
	}
	return s.eventStore.ReadAllEvents(fromPosition)
}
