package dto

import (
	"github.com/vsinha/sop/pkg/domain/entities"
)

// PlanResult is the derived view of one scenario: chart series and KPIs
type PlanResult struct {
	Key           entities.ScenarioKey      `json:"key"`
	ProductLine   entities.ProductLine      `json:"productLine"`
	PlanningMonth entities.PlanningMonth    `json:"planningMonth"`
	ViewMode      entities.ViewMode         `json:"viewMode"`
	GapLabel      string                    `json:"gapLabel"`
	Chart         []entities.ChartDataPoint `json:"chart"`
	// MonthlyGaps[i] is the gap of Chart[i] under ViewMode
	MonthlyGaps []entities.Quantity `json:"monthlyGaps"`
	KPI         entities.KPI        `json:"kpi"`
}

// SessionSnapshot is the read-only state of a planner session
type SessionSnapshot struct {
	Key             entities.ScenarioKey   `json:"key"`
	ProductLine     entities.ProductLine   `json:"productLine"`
	PlanningMonth   entities.PlanningMonth `json:"planningMonth"`
	ViewMode        entities.ViewMode      `json:"viewMode"`
	Months          []string               `json:"months"`
	SimulationMonth string                 `json:"simulationMonth"`
	Narration       string                 `json:"narration,omitempty"`
	Analyzing       bool                   `json:"analyzing"`
	EditorOpen      bool                   `json:"editorOpen"`
	SavedDemand     bool                   `json:"savedDemand"`
	SavedConfigs    bool                   `json:"savedConfigs"`
}

// DemandEditorRow is one month of the demand edit buffer
type DemandEditorRow struct {
	Index            int               `json:"index"`
	Month            string            `json:"month"`
	Value            entities.Quantity `json:"value"`
	BackOrder        entities.Quantity `json:"backOrder"`
	TotalRequirement entities.Quantity `json:"totalRequirement"`
	Edited           bool              `json:"edited"`
}

// DemandTotals sums the edit buffer
type DemandTotals struct {
	NewOrders   entities.Quantity `json:"newOrders"`
	Backlog     entities.Quantity `json:"backlog"`
	TotalDemand entities.Quantity `json:"totalDemand"`
}

// DemandEditorView is the presentation state of the demand edit buffer
type DemandEditorView struct {
	Rows       []DemandEditorRow `json:"rows"`
	Totals     DemandTotals      `json:"totals"`
	HasChanges bool              `json:"hasChanges"`
}

// NarrationResult is the outcome of an analysis request
type NarrationResult struct {
	Text    string `json:"text"`
	Outcome string `json:"outcome"`
	// Stale marks a result for a scenario that was switched away from while it ran
	Stale bool `json:"stale,omitempty"`
}

// ScenarioSummary describes one saved scenario key
type ScenarioSummary struct {
	Key           entities.ScenarioKey   `json:"key"`
	ProductLine   entities.ProductLine   `json:"productLine"`
	PlanningMonth entities.PlanningMonth `json:"planningMonth"`
	SavedDemand   bool                   `json:"savedDemand"`
	SavedConfigs  bool                   `json:"savedConfigs"`
}
