package testing

import (
	"time"

	"github.com/vsinha/sop/pkg/domain/entities"
	"github.com/vsinha/sop/pkg/infrastructure/repositories/memory"
)

func mustSave(repo *memory.ScenarioRepository, key entities.ScenarioKey, series []entities.DemandForecast, configs entities.DeviceConfigMap) {
	if err := repo.SaveDemand(key, series); err != nil {
		panic(err)
	}
	if err := repo.SaveDeviceConfigs(key, configs); err != nil {
		panic(err)
	}
}

// BuildSimpleScenario seeds one month with one device for Standard Series, January 2024.
// Stacked: actual 33,000 against a 45,000 requirement; theoretical max 45,000.
func BuildSimpleScenario() (*memory.ScenarioRepository, entities.ScenarioKey) {
	repo := memory.NewScenarioRepository()
	key := entities.NewScenarioKey(entities.Standard, entities.PlanningMonth{Year: 2024, Month: time.January})

	series := []entities.DemandForecast{
		{Month: "Jan N", Value: 40000, BackOrder: 5000},
	}
	configs := entities.DeviceConfigMap{
		"Jan N": {
			{ID: 1, Name: "Stamping Press 01", Shifts: 3, MaintenanceDays: 2, OvertimeDays: 2, BaseCapacity: 500},
		},
	}

	mustSave(repo, key, series, configs)
	return repo, key
}

// BuildPeakSeasonScenario seeds a four-month Industrial Heavy-Duty window that
// runs short every month, with the presses down for maintenance in December.
func BuildPeakSeasonScenario() (*memory.ScenarioRepository, entities.ScenarioKey) {
	repo := memory.NewScenarioRepository()
	key := entities.NewScenarioKey(entities.Industrial, entities.PlanningMonth{Year: 2024, Month: time.October})

	series := []entities.DemandForecast{
		{Month: "Oct N", Value: 72000, BackOrder: 9000},
		{Month: "Nov N", Value: 78000, BackOrder: 12000},
		{Month: "Dec N", Value: 81000, BackOrder: 15000},
		{Month: "Jan N+1", Value: 69000, BackOrder: 10000},
	}

	presses := func(maintenance, overtime int) []entities.DeviceConfig {
		return []entities.DeviceConfig{
			{ID: 1, Name: "Stamping Press 01", Shifts: 3, MaintenanceDays: maintenance, OvertimeDays: overtime, BaseCapacity: 420},
			{ID: 2, Name: "Stamping Press 02", Shifts: 2, MaintenanceDays: maintenance, OvertimeDays: overtime, BaseCapacity: 380},
			{ID: 3, Name: "Trim Line 03", Shifts: 2, MaintenanceDays: 0, OvertimeDays: overtime, BaseCapacity: 310},
		}
	}
	configs := entities.DeviceConfigMap{
		"Oct N":   presses(0, 2),
		"Nov N":   presses(1, 4),
		"Dec N":   presses(6, 4),
		"Jan N+1": presses(0, 0),
	}

	mustSave(repo, key, series, configs)
	return repo, key
}
