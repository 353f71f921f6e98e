package repositories

import (
	"errors"

	"github.com/vsinha/sop/pkg/domain/entities"
)

// ErrScenarioNotFound is returned when no saved entry exists for a scenario key
var ErrScenarioNotFound = errors.New("scenario not found")

// ScenarioRepository holds the authoritative, explicitly saved scenarios.
// Entries are never evicted; a save overwrites the previous entry for its key.
type ScenarioRepository interface {
	GetDemand(key entities.ScenarioKey) ([]entities.DemandForecast, error)
	SaveDemand(key entities.ScenarioKey, series []entities.DemandForecast) error
	GetDeviceConfigs(key entities.ScenarioKey) (entities.DeviceConfigMap, error)
	SaveDeviceConfigs(key entities.ScenarioKey, configs entities.DeviceConfigMap) error

	// ListKeys returns every key with a saved demand series or configuration map
	ListKeys() ([]entities.ScenarioKey, error)
}
