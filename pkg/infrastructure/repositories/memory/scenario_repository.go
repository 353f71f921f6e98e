package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vsinha/sop/pkg/domain/entities"
	"github.com/vsinha/sop/pkg/domain/repositories"
)

// ScenarioRepository provides in-memory storage of saved scenarios.
// Values are copied on the way in and out so callers never share backing arrays with the cache.
type ScenarioRepository struct {
	mu      sync.RWMutex
	demand  map[entities.ScenarioKey][]entities.DemandForecast
	configs map[entities.ScenarioKey]entities.DeviceConfigMap
}

// NewScenarioRepository creates a new in-memory scenario repository
func NewScenarioRepository() *ScenarioRepository {
	return &ScenarioRepository{
		demand:  make(map[entities.ScenarioKey][]entities.DemandForecast),
		configs: make(map[entities.ScenarioKey]entities.DeviceConfigMap),
	}
}

// Verify interface compliance
var _ repositories.ScenarioRepository = (*ScenarioRepository)(nil)

// GetDemand returns the saved demand series for a key
func (r *ScenarioRepository) GetDemand(key entities.ScenarioKey) ([]entities.DemandForecast, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	series, exists := r.demand[key]
	if !exists {
		return nil, fmt.Errorf("demand for %s: %w", key, repositories.ErrScenarioNotFound)
	}
	return entities.CloneDemand(series), nil
}

// SaveDemand overwrites the saved demand series for a key
func (r *ScenarioRepository) SaveDemand(key entities.ScenarioKey, series []entities.DemandForecast) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := entities.CloneDemand(series)
	if stored == nil {
		stored = []entities.DemandForecast{}
	}
	r.demand[key] = stored
	return nil
}

// GetDeviceConfigs returns the saved configuration map for a key
func (r *ScenarioRepository) GetDeviceConfigs(key entities.ScenarioKey) (entities.DeviceConfigMap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	configs, exists := r.configs[key]
	if !exists {
		return nil, fmt.Errorf("device configs for %s: %w", key, repositories.ErrScenarioNotFound)
	}
	return configs.Clone(), nil
}

// SaveDeviceConfigs overwrites the saved configuration map for a key
func (r *ScenarioRepository) SaveDeviceConfigs(key entities.ScenarioKey, configs entities.DeviceConfigMap) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := configs.Clone()
	if stored == nil {
		stored = entities.DeviceConfigMap{}
	}
	r.configs[key] = stored
	return nil
}

// ListKeys returns all keys with saved data, sorted
func (r *ScenarioRepository) ListKeys() ([]entities.ScenarioKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[entities.ScenarioKey]struct{}, len(r.demand)+len(r.configs))
	for key := range r.demand {
		seen[key] = struct{}{}
	}
	for key := range r.configs {
		seen[key] = struct{}{}
	}

	keys := make([]entities.ScenarioKey, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys, nil
}
