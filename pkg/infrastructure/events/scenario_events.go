package events

import (
	"github.com/vsinha/sop/pkg/domain/entities"
)

const (
	ContextSwitchedEvent    = "scenario.context.switched"
	DemandSavedEvent        = "scenario.demand.saved"
	ConfigsSavedEvent       = "scenario.configs.saved"
	MonthAdjustedEvent      = "scenario.month.adjusted"
	NarrationCompletedEvent = "scenario.narration.completed"
)

// SavedScenarioEvents are the event types that change the authoritative cache
var SavedScenarioEvents = []string{DemandSavedEvent, ConfigsSavedEvent}

type ContextSwitched struct {
	From entities.ScenarioKey `json:"from,omitempty"`
	To   entities.ScenarioKey `json:"to"`
}

type DemandSaved struct {
	Key    entities.ScenarioKey      `json:"key"`
	Series []entities.DemandForecast `json:"series"`
}

type ConfigsSaved struct {
	Key     entities.ScenarioKey     `json:"key"`
	Configs entities.DeviceConfigMap `json:"configs"`
}

type MonthAdjusted struct {
	Key     entities.ScenarioKey    `json:"key"`
	Month   string                  `json:"month"`
	Devices []entities.DeviceConfig `json:"devices"`
}

type NarrationCompleted struct {
	Key      entities.ScenarioKey `json:"key"`
	Fallback bool                 `json:"fallback"`
}

func NewContextSwitchedEvent(from, to entities.ScenarioKey) Event {
	return NewEvent(ContextSwitchedEvent, string(to), ContextSwitched{From: from, To: to})
}

func NewDemandSavedEvent(key entities.ScenarioKey, series []entities.DemandForecast) Event {
	return NewEvent(DemandSavedEvent, string(key), DemandSaved{
		Key:    key,
		Series: entities.CloneDemand(series),
	})
}

func NewConfigsSavedEvent(key entities.ScenarioKey, configs entities.DeviceConfigMap) Event {
	return NewEvent(ConfigsSavedEvent, string(key), ConfigsSaved{
		Key:     key,
		Configs: configs.Clone(),
	})
}

func NewMonthAdjustedEvent(key entities.ScenarioKey, month string, devices []entities.DeviceConfig) Event {
	return NewEvent(MonthAdjustedEvent, string(key), MonthAdjusted{
		Key:     key,
		Month:   month,
		Devices: entities.CloneDevices(devices),
	})
}

func NewNarrationCompletedEvent(key entities.ScenarioKey, fallback bool) Event {
	return NewEvent(NarrationCompletedEvent, string(key), NarrationCompleted{Key: key, Fallback: fallback})
}
